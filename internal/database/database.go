package database

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors returned by the store backends. Repositories translate
// driver failures into these so callers can match with errors.Is.
var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("duplicate record")
	ErrConnection = errors.New("database connection error")
	ErrQuery      = errors.New("query error")
)

// Database is the SurrealQL surface the Surreal user repository runs on.
// vars are bound as query parameters, never interpolated.
type Database interface {
	Connect(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error

	// Query returns every row of the last statement's result set
	Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error)
	// QueryOne returns the first row, or ErrNotFound
	QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error)
	// Execute runs a write and discards its result
	Execute(ctx context.Context, query string, vars map[string]interface{}) error
}

// Config locates and authenticates a SurrealDB instance
type Config struct {
	Host      string
	Port      string
	User      string
	Password  string
	Namespace string
	Database  string

	// ConnectAttempts bounds dial retries in Connect (default 5)
	ConnectAttempts int
	// RetryDelay is the first backoff delay, doubled per attempt (default 500ms)
	RetryDelay time.Duration
}
