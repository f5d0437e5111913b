package middleware

import (
	"time"

	"github.com/MichaelAJay/go-serial/interfaces"
	"github.com/MichaelAJay/go-serial/metrics"
	"github.com/MichaelAJay/go-serial/value"
)

// metricsAdapter wraps an Adapter with metrics capabilities
type metricsAdapter struct {
	adapter interfaces.Adapter
	metrics metrics.Metrics
}

// NewMetricsMiddleware creates a new metrics middleware
func NewMetricsMiddleware(m metrics.Metrics) interfaces.Middleware {
	return func(next interfaces.Adapter) interfaces.Adapter {
		return &metricsAdapter{
			adapter: next,
			metrics: m,
		}
	}
}

// Name returns the wrapped adapter's name
func (a *metricsAdapter) Name() string {
	return a.adapter.Name()
}

// Serialize encodes v and records the output size and latency
func (a *metricsAdapter) Serialize(v value.Value) ([]byte, error) {
	start := time.Now()
	data, err := a.adapter.Serialize(v)
	a.metrics.RecordOperation(a.adapter.Name(), string(interfaces.OpSerialize), result(err), len(data), time.Since(start))
	return data, err
}

// Unserialize decodes data and records the input size and latency
func (a *metricsAdapter) Unserialize(data []byte) (value.Value, error) {
	start := time.Now()
	v, err := a.adapter.Unserialize(data)
	a.metrics.RecordOperation(a.adapter.Name(), string(interfaces.OpUnserialize), result(err), len(data), time.Since(start))
	return v, err
}

// result maps an error to its metric label
func result(err error) string {
	if err == nil {
		return metrics.ResultOK
	}
	if kind, ok := interfaces.KindOf(err); ok {
		return kind.String()
	}
	return "error"
}
