package store

import "github.com/cockroachdb/errors"

// Common errors that may be returned by store operations
var (
	// ErrInvalidKey is returned for an empty key
	ErrInvalidKey = errors.New("store: invalid key")

	// ErrContextCanceled is returned when the context is done before the operation starts
	ErrContextCanceled = errors.New("store: operation canceled")

	// ErrNoSerializer is returned when a store is created without an adapter
	ErrNoSerializer = errors.New("store: serializer is required")

	// ErrNoClient is returned when a Redis store is created without a client
	ErrNoClient = errors.New("store: redis client is required")
)
