package serial

import (
	"github.com/MichaelAJay/go-serial/metrics"
)

// Re-exported metrics constructors

// NewMetrics creates a new in-memory metrics instance
var NewMetrics = metrics.NewMetrics

// NewPrometheusMetrics creates a new metrics instance using Prometheus
var NewPrometheusMetrics = metrics.NewPrometheusMetrics

// StartPrometheusServer starts a HTTP server to expose metrics
var StartPrometheusServer = metrics.StartPrometheusServer

// PrometheusExposer is an interface for types that can expose a Prometheus HTTP handler
type PrometheusExposer = metrics.PrometheusExposer
