package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	labelBackend = "backend"
	labelOp      = "op"
	labelResult  = "result"
)

// sizeBuckets spans 16B to 16MiB
var sizeBuckets = prometheus.ExponentialBuckets(16, 4, 11)

// prometheusMetrics implements Metrics with client_golang collectors
type prometheusMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	payload    *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// NewPrometheusMetrics creates metrics registered on registerer under namespace.
// A nil registerer uses a fresh registry, which is then also used for exposition.
func NewPrometheusMetrics(namespace string, registerer prometheus.Registerer) (*prometheusMetrics, error) {
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if registerer == nil {
		reg := prometheus.NewRegistry()
		registerer, gatherer = reg, reg
	} else if g, ok := registerer.(prometheus.Gatherer); ok {
		gatherer = g
	}

	m := &prometheusMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "serializer",
			Name:      "operations_total",
			Help:      "Total number of serialize and unserialize calls",
		}, []string{labelBackend, labelOp, labelResult}),

		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "serializer",
			Name:      "duration_seconds",
			Help:      "Latency of serialize and unserialize calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{labelBackend, labelOp}),

		payload: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "serializer",
			Name:      "payload_bytes",
			Help:      "Size of encoded payloads",
			Buckets:   sizeBuckets,
		}, []string{labelBackend, labelOp}),

		gatherer: gatherer,
	}

	for _, c := range []prometheus.Collector{m.operations, m.duration, m.payload} {
		if err := registerer.Register(c); err != nil {
			return nil, errors.Wrap(err, "register serializer metrics")
		}
	}
	return m, nil
}

// RecordOperation records one call
func (m *prometheusMetrics) RecordOperation(backend, op, result string, size int, duration time.Duration) {
	m.operations.WithLabelValues(backend, op, result).Inc()
	m.duration.WithLabelValues(backend, op).Observe(duration.Seconds())
	if result == ResultOK {
		m.payload.WithLabelValues(backend, op).Observe(float64(size))
	}
}

// Handler returns the HTTP handler exposing the collected metrics
func (m *prometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// PrometheusExposer is implemented by metrics that can expose an HTTP handler
type PrometheusExposer interface {
	Handler() http.Handler
}

// StartPrometheusServer starts a HTTP server exposing metrics on /metrics
func StartPrometheusServer(m Metrics, address string) (*http.Server, error) {
	exposer, ok := m.(PrometheusExposer)
	if !ok {
		return nil, errors.New("metrics does not support Prometheus exposition")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", exposer.Handler())

	server := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Prometheus server error: %v\n", err)
		}
	}()

	return server, nil
}
