package interfaces

import (
	"github.com/MichaelAJay/go-logger"
	"github.com/MichaelAJay/go-serial/metrics"
)

// Option defines a function type for configuring a serializer
type Option func(*Options)

// Options represents configuration for a serializer facade
type Options struct {
	// Registry resolves the backend; nil means the default registry
	Registry Creator

	// BackendOptions is handed to the backend constructor unchanged
	BackendOptions map[string]any

	Logger     logger.Logger
	Metrics    metrics.Metrics
	Middleware []Middleware
}

// WithRegistry sets the registry used to resolve backends
func WithRegistry(registry Creator) Option {
	return func(o *Options) {
		o.Registry = registry
	}
}

// WithOptions sets the backend options. Keys are merged over earlier calls.
func WithOptions(options map[string]any) Option {
	return func(o *Options) {
		if o.BackendOptions == nil {
			o.BackendOptions = make(map[string]any, len(options))
		}
		for k, v := range options {
			o.BackendOptions[k] = v
		}
	}
}

// WithOption sets a single backend option
func WithOption(key string, val any) Option {
	return WithOptions(map[string]any{key: val})
}

// WithLogger sets the logger for the serializer
func WithLogger(logger logger.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithMetrics sets the metrics sink
func WithMetrics(m metrics.Metrics) Option {
	return func(o *Options) {
		o.Metrics = m
	}
}

// WithMiddleware appends adapter middleware. The first middleware is the outermost.
func WithMiddleware(middleware ...Middleware) Option {
	return func(o *Options) {
		o.Middleware = append(o.Middleware, middleware...)
	}
}

// Apply builds Options from a list of Option
func Apply(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}
