package metrics

import (
	"time"

	"github.com/MichaelAJay/go-serial/internal/sync"
)

// Result labels recorded for a successful operation. Failures are recorded with the
// error kind name, e.g. "malformed_input".
const ResultOK = "ok"

// Metrics defines the interface for serializer metrics
type Metrics interface {
	// RecordOperation records one serialize or unserialize call.
	// size is the encoded byte length, zero when encoding failed.
	RecordOperation(backend, op, result string, size int, duration time.Duration)
}

// Snapshotter is implemented by metrics that can report their current totals
type Snapshotter interface {
	GetMetrics() *Snapshot
}

// OperationStats aggregates calls for one backend and operation
type OperationStats struct {
	Calls       int64
	Failures    int64
	Bytes       int64
	LastLatency time.Duration
	Results     map[string]int64
}

// Snapshot represents a point-in-time copy of the collected metrics keyed by backend then op
type Snapshot struct {
	Operations map[string]map[string]OperationStats
}

// Stats returns the stats for backend and op, zero when none were recorded
func (s *Snapshot) Stats(backend, op string) OperationStats {
	if s == nil || s.Operations[backend] == nil {
		return OperationStats{}
	}
	return s.Operations[backend][op]
}

// defaultMetrics implements Metrics in memory
type defaultMetrics struct {
	ops map[string]map[string]*OperationStats
	mu  sync.RWMutex
}

// NewMetrics creates a new in-memory metrics instance
func NewMetrics() *defaultMetrics {
	return &defaultMetrics{
		ops: make(map[string]map[string]*OperationStats),
	}
}

// RecordOperation records one call
func (m *defaultMetrics) RecordOperation(backend, op, result string, size int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byOp, ok := m.ops[backend]
	if !ok {
		byOp = make(map[string]*OperationStats)
		m.ops[backend] = byOp
	}
	stats, ok := byOp[op]
	if !ok {
		stats = &OperationStats{Results: make(map[string]int64)}
		byOp[op] = stats
	}

	stats.Calls++
	if result != ResultOK {
		stats.Failures++
	}
	stats.Bytes += int64(size)
	stats.LastLatency = duration
	stats.Results[result]++
}

// GetMetrics returns the current metrics snapshot
func (m *defaultMetrics) GetMetrics() *Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := &Snapshot{Operations: make(map[string]map[string]OperationStats, len(m.ops))}
	for backend, byOp := range m.ops {
		out := make(map[string]OperationStats, len(byOp))
		for op, stats := range byOp {
			cp := *stats
			cp.Results = make(map[string]int64, len(stats.Results))
			for k, v := range stats.Results {
				cp.Results[k] = v
			}
			out[op] = cp
		}
		snap.Operations[backend] = out
	}
	return snap
}

// noopMetrics discards everything
type noopMetrics struct{}

// NewNoopMetrics returns metrics that record nothing
func NewNoopMetrics() Metrics { return noopMetrics{} }

func (noopMetrics) RecordOperation(string, string, string, int, time.Duration) {}
