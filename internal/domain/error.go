package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound          = errors.New("entity not found")
	ErrAlreadyExists     = errors.New("entity already exists")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrStaleTransition   = errors.New("status transition precondition not met")
	ErrInvalidTransition = errors.New("illegal status transition")
	ErrSignature         = errors.New("webhook signature verification failed")

	// Infrastructure-facing errors surfaced by repositories
	ErrOperationFailed    = errors.New("database operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid executor context")
)
