// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation
	// (e.g., a concurrent insert won the token row).
	ErrAlreadyExists = errors.New("already exists")

	// ErrMalformedHash indicates a stored password hash that does not parse.
	// It is data corruption, never a failed login.
	ErrMalformedHash = errors.New("malformed password hash")
)
