// Package metric wires the engine's throughput counters into Prometheus,
// mirroring the teacher's metric.MetricsRegistry pattern but scoped to a
// single running pipeline: one Metrics value per process, registered
// once at startup and served over /metrics by cmd/proxy.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every Prometheus collector the engine updates. A nil
// *Metrics disables instrumentation entirely (checked at every call
// site in internal/engine), matching the teacher's "nil input = nil
// feature" convention so metrics stay opt-in.
type Metrics struct {
	ChunksPulled  prometheus.Counter
	BytesPulled   prometheus.Counter
	DispatchCalls *prometheus.CounterVec
	FatalErrors   prometheus.Counter
}

// New creates and registers the engine's metrics against reg. Pass
// prometheus.NewRegistry() for an isolated registry (as tests do) or
// prometheus.DefaultRegisterer to expose them process-wide.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		ChunksPulled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "proxy",
			Subsystem: "engine",
			Name:      "chunks_pulled_total",
			Help:      "Total chunks returned by the source stage's Pull.",
		}),
		BytesPulled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "proxy",
			Subsystem: "engine",
			Name:      "bytes_pulled_total",
			Help:      "Total bytes returned by the source stage's Pull.",
		}),
		DispatchCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "proxy",
			Subsystem: "engine",
			Name:      "dispatch_calls_total",
			Help:      "Total Push calls made to each stage, labeled by stage index.",
		}, []string{"stage"}),
		FatalErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "proxy",
			Subsystem: "engine",
			Name:      "fatal_errors_total",
			Help:      "Total fatal errors that aborted the pipeline.",
		}),
	}

	for _, c := range []prometheus.Collector{m.ChunksPulled, m.BytesPulled, m.DispatchCalls, m.FatalErrors} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
