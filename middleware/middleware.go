package middleware

import (
	"github.com/MichaelAJay/go-serial/interfaces"
)

// Chain applies multiple middleware functions to an adapter in order
// The middleware are applied from right to left (last to first)
// so the rightmost middleware wraps the adapter directly
func Chain(adapter interfaces.Adapter, middlewares ...interfaces.Middleware) interfaces.Adapter {
	// Apply middleware in reverse order so the first middleware in the list
	// is the outermost (executed first)
	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i] == nil {
			continue
		}
		adapter = middlewares[i](adapter)
	}
	return adapter
}

// Compose creates a single middleware from multiple middleware functions
// This is useful when you want to create a reusable middleware stack
func Compose(middlewares ...interfaces.Middleware) interfaces.Middleware {
	return func(adapter interfaces.Adapter) interfaces.Adapter {
		return Chain(adapter, middlewares...)
	}
}
