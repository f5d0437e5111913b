// Package store persists values under string keys through a serializer backend.
//
// Values are encoded with the configured adapter before they are stored, so a store is
// also a round-trip check for the backend: what comes back from Get has been through
// Serialize and Unserialize.
package store

import (
	"context"
	"time"

	"github.com/MichaelAJay/go-logger"

	"github.com/MichaelAJay/go-serial/value"
)

// Store defines the interface for keyed value storage
type Store interface {
	// Put encodes v and stores it under key
	Put(ctx context.Context, key string, v value.Value) error

	// Get returns the value stored under key. The bool is false when the key is absent.
	Get(ctx context.Context, key string) (value.Value, bool, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Option defines a function type for configuring a store
type Option func(*Options)

// Options represents configuration options for store instances
type Options struct {
	// TTL is applied to every Put. Zero means entries do not expire.
	TTL time.Duration

	// KeyPrefix is prepended to every key. Redis stores default to "serial:".
	KeyPrefix string

	Logger logger.Logger
}

// WithTTL sets the time-to-live for stored entries
func WithTTL(ttl time.Duration) Option {
	return func(o *Options) {
		o.TTL = ttl
	}
}

// WithKeyPrefix sets the prefix prepended to every key
func WithKeyPrefix(prefix string) Option {
	return func(o *Options) {
		o.KeyPrefix = prefix
	}
}

// WithLogger sets the logger for the store
func WithLogger(log logger.Logger) Option {
	return func(o *Options) {
		o.Logger = log
	}
}

func applyOptions(defaults Options, opts ...Option) Options {
	o := defaults
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// checkCall validates the key and context shared by every operation
func checkCall(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if ctx.Err() != nil {
		return ErrContextCanceled
	}
	return nil
}
