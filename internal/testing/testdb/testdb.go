// Package testdb provides test database utilities for integration testing.
//
// This package creates isolated SurrealDB, PostgreSQL and Redis test
// environments that run real queries against real instances. Each
// constructor skips the calling test when its environment variable is unset.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t)
//	    defer tdb.Close()
//
//	    result, err := tdb.DB.Query(tdb.Ctx(), "SELECT * FROM user", nil)
//	}
package testdb

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/ead/authuser/internal/database"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// TestDB provides an isolated SurrealDB environment for testing.
// Each TestDB instance gets a unique namespace to ensure test isolation.
type TestDB struct {
	DB        database.Database
	Namespace string
	Database  string
	t         *testing.T
}

var (
	// counterMu protects the namespace counter
	counterMu sync.Mutex
	counter   int64

	// migrateMu serializes goose runs, which use package-level state
	migrateMu sync.Mutex
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getTestConfig returns database config from environment or defaults
func getTestConfig() database.Config {
	return database.Config{
		Host:     os.Getenv("TEST_DB_HOST"),
		Port:     getEnv("TEST_DB_PORT", "8000"),
		User:     getEnv("TEST_DB_USER", "root"),
		Password: getEnv("TEST_DB_PASSWORD", "root"),
	}
}

// uniqueNamespace generates a unique namespace for test isolation
func uniqueNamespace() string {
	counterMu.Lock()
	defer counterMu.Unlock()
	counter++
	return fmt.Sprintf("test_%d_%d", time.Now().UnixNano(), counter)
}

// New creates a new isolated SurrealDB test database with the user schema
// defined. Skips the test when TEST_DB_HOST is unset.
// Call Close() when done to clean up the namespace.
func New(t *testing.T) *TestDB {
	t.Helper()

	cfg := getTestConfig()
	if cfg.Host == "" {
		t.Skip("testdb: TEST_DB_HOST not set, skipping SurrealDB integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	namespace := uniqueNamespace()
	dbName := "test"
	cfg.Namespace = namespace
	cfg.Database = dbName

	db := database.NewSurrealDB(cfg)
	if err := db.Connect(ctx); err != nil {
		t.Fatalf("testdb: failed to connect: %v", err)
	}

	if err := database.DefineSurrealSchema(ctx, db); err != nil {
		db.Close()
		t.Fatalf("testdb: failed to define schema: %v", err)
	}

	return &TestDB{
		DB:        db,
		Namespace: namespace,
		Database:  dbName,
		t:         t,
	}
}

// Close cleans up the test database by removing the namespace.
func (tdb *TestDB) Close() {
	if tdb.DB == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	query := fmt.Sprintf("REMOVE NAMESPACE %s", tdb.Namespace)
	_ = tdb.DB.Execute(ctx, query, nil) // Ignore errors on cleanup

	tdb.DB.Close()
}

// Reset clears all user records while preserving schema.
func (tdb *TestDB) Reset(t *testing.T) {
	t.Helper()
	if err := tdb.DB.Execute(tdb.Ctx(), "DELETE user", nil); err != nil {
		t.Fatalf("testdb: failed to clear users: %v", err)
	}
}

// Ctx returns a context with a reasonable timeout for test operations.
func (tdb *TestDB) Ctx() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	tdb.t.Cleanup(cancel)
	return ctx
}

// MustExec executes a query and fails the test on error.
func (tdb *TestDB) MustExec(query string, vars map[string]interface{}) {
	tdb.t.Helper()
	if err := tdb.DB.Execute(tdb.Ctx(), query, vars); err != nil {
		tdb.t.Fatalf("testdb: exec failed: %v\nQuery: %s", err, query)
	}
}

// ============================================================================
// PostgreSQL
// ============================================================================

// NewPostgres opens a pool on TEST_DATABASE_URL, applies the goose
// migrations and empties tb_users. Skips the test when the variable is unset.
func NewPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("testdb: TEST_DATABASE_URL not set, skipping PostgreSQL integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	migrateMu.Lock()
	err := database.MigratePostgres(ctx, dsn)
	migrateMu.Unlock()
	if err != nil {
		t.Fatalf("testdb: failed to migrate: %v", err)
	}

	pool, err := database.ConnectPostgres(ctx, database.PostgresConfig{URL: dsn})
	if err != nil {
		t.Fatalf("testdb: failed to connect: %v", err)
	}
	if _, err := pool.Exec(ctx, "TRUNCATE tb_users"); err != nil {
		pool.Close()
		t.Fatalf("testdb: failed to truncate: %v", err)
	}

	t.Cleanup(pool.Close)
	return pool
}

// ============================================================================
// Redis
// ============================================================================

// NewRedis connects to TEST_REDIS_ADDR using TEST_REDIS_DB (default 15) and
// flushes that database. Skips the test when TEST_REDIS_ADDR is unset.
func NewRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("testdb: TEST_REDIS_ADDR not set, skipping Redis integration test")
	}
	db, err := strconv.Atoi(getEnv("TEST_REDIS_DB", "15"))
	if err != nil {
		t.Fatalf("testdb: invalid TEST_REDIS_DB: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := database.ConnectRedis(ctx, database.RedisConfig{Addr: addr, DB: db})
	if err != nil {
		t.Fatalf("testdb: failed to connect: %v", err)
	}
	if err := client.FlushDB(ctx).Err(); err != nil {
		client.Close()
		t.Fatalf("testdb: failed to flush: %v", err)
	}

	t.Cleanup(func() { _ = client.Close() })
	return client
}
