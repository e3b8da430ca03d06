// Package logstage implements the "log" stage: forwards input unchanged,
// recording state and a monotonic counter to the diagnostic stream
// (stderr via log/slog), never to the sink. Each instance gets its own
// run id (google/uuid) so interleaved pipelines in the same log stream
// (e.g. during tests) stay distinguishable.
package logstage

import (
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/mjwatson/stream-proxy/internal/registry"
	"github.com/mjwatson/stream-proxy/internal/stage"
)

// Register adds "log".
func Register(reg *registry.Registry) error {
	return reg.Register(registry.Registration{
		Name:        "log",
		Factory:     newStage,
		Description: "passthrough logging a diagnostic line per call",
	})
}

func newStage(_ int, options string) (stage.Stage, error) {
	return &logStage{
		label: options,
		runID: uuid.NewString(),
	}, nil
}

type logStage struct {
	label   string
	runID   string
	counter atomic.Int64
}

func (l *logStage) Push(state stage.State, input []byte) (emitted, remainder []byte, err error) {
	n := l.counter.Add(1)
	slog.Info("log stage",
		"run_id", l.runID,
		"label", l.label,
		"state", state.String(),
		"count", n,
		"bytes", len(input),
	)
	if len(input) == 0 {
		return nil, nil, nil
	}
	return input, nil, nil
}
