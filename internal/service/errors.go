package service

import "errors"

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.

// ===== User Errors =====
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserListNotFound  = errors.New("list users not found")
	ErrUserAlreadyExists = errors.New("user name or email already registered")
)

// ===== Listing Errors =====
var (
	ErrInvalidSortField     = errors.New("invalid sort field")
	ErrInvalidSortDirection = errors.New("invalid sort direction")
	ErrInvalidFilter        = errors.New("invalid filter value")
)

// ===== Seeder Errors =====
var (
	ErrSeedCountOutOfRange = errors.New("count must be between 1 and 1000")
)
