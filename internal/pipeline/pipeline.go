// Package pipeline holds the ordered stage sequence the engine drives. It
// owns stage lifetime (construction happens once, in internal/specparse;
// teardown happens here) but not the residual cache, which is the
// engine's to mutate (see internal/engine).
package pipeline

import (
	"io"

	"github.com/mjwatson/stream-proxy/internal/perr"
	"github.com/mjwatson/stream-proxy/internal/stage"
)

// Pipeline is an ordered, validated stage sequence: stage 0 is the
// source, stages [1,N) are transformers/sinks.
type Pipeline struct {
	Stages []stage.Stage
}

// New validates stages and returns a Pipeline. Length must be at least
// two, stage 0 must implement Puller, and every other stage must
// implement Pusher.
func New(stages []stage.Stage) (*Pipeline, error) {
	if len(stages) < 2 {
		return nil, perr.WrapInvalidOption(
			errInsufficientStages, "pipeline", "New", "stage count validation")
	}
	if _, ok := stages[0].(stage.Puller); !ok {
		return nil, perr.WrapInvalidOption(
			errSourceNotPuller, "pipeline", "New", "source capability validation")
	}
	for i := 1; i < len(stages); i++ {
		if _, ok := stages[i].(stage.Pusher); !ok {
			return nil, perr.WrapInvalidOption(
				errStageNotPusher, "pipeline", "New", "stage capability validation")
		}
	}
	return &Pipeline{Stages: stages}, nil
}

// Len returns the number of stages, N.
func (p *Pipeline) Len() int { return len(p.Stages) }

// Source returns stage 0 as a Puller. Safe to call only after New
// succeeded.
func (p *Pipeline) Source() stage.Puller {
	return p.Stages[0].(stage.Puller)
}

// At returns the Pusher at position i, i in [1, N).
func (p *Pipeline) At(i int) stage.Pusher {
	return p.Stages[i].(stage.Pusher)
}

// Close releases every stage that owns a resource (sockets, file
// handles). Each stage is closed independently; the first error is
// returned but every Close is still attempted, since each stage's
// resources are exclusively its own (SPEC_FULL.md §3).
func (p *Pipeline) Close() error {
	var first error
	for _, s := range p.Stages {
		closer, ok := s.(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
