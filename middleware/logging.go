package middleware

import (
	"time"

	"github.com/MichaelAJay/go-logger"

	"github.com/MichaelAJay/go-serial/interfaces"
	"github.com/MichaelAJay/go-serial/value"
)

// loggingAdapter wraps an Adapter with logging capabilities
type loggingAdapter struct {
	adapter interfaces.Adapter
	logger  logger.Logger
}

// NewLoggingMiddleware creates a new logging middleware.
// Successful calls are logged at debug level, failures at error level. Errors are returned
// unchanged.
func NewLoggingMiddleware(log logger.Logger) interfaces.Middleware {
	return func(next interfaces.Adapter) interfaces.Adapter {
		return &loggingAdapter{
			adapter: next,
			logger:  log,
		}
	}
}

// Name returns the wrapped adapter's name
func (a *loggingAdapter) Name() string {
	return a.adapter.Name()
}

// Serialize encodes v with logging
func (a *loggingAdapter) Serialize(v value.Value) ([]byte, error) {
	start := time.Now()
	data, err := a.adapter.Serialize(v)
	duration := time.Since(start)

	if err != nil {
		a.logger.Error("Serialize error",
			logger.Field{Key: "backend", Value: a.adapter.Name()},
			logger.Field{Key: "kind", Value: v.Kind().String()},
			logger.Field{Key: "error", Value: err})
		return nil, err
	}

	a.logger.Debug("Serialize",
		logger.Field{Key: "backend", Value: a.adapter.Name()},
		logger.Field{Key: "size", Value: len(data)},
		logger.Field{Key: "duration", Value: duration})
	return data, nil
}

// Unserialize decodes data with logging
func (a *loggingAdapter) Unserialize(data []byte) (value.Value, error) {
	start := time.Now()
	v, err := a.adapter.Unserialize(data)
	duration := time.Since(start)

	if err != nil {
		a.logger.Error("Unserialize error",
			logger.Field{Key: "backend", Value: a.adapter.Name()},
			logger.Field{Key: "size", Value: len(data)},
			logger.Field{Key: "error", Value: err})
		return v, err
	}

	a.logger.Debug("Unserialize",
		logger.Field{Key: "backend", Value: a.adapter.Name()},
		logger.Field{Key: "size", Value: len(data)},
		logger.Field{Key: "kind", Value: v.Kind().String()},
		logger.Field{Key: "duration", Value: duration})
	return v, nil
}
