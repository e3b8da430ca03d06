// Package engine implements the pipeline execution engine: the core of
// this repository. It drives a pipeline.Pipeline source-to-sink with a
// per-stage residual cache, applies the fixed-point rule to know when a
// stage needs more input, and performs the end-of-stream flush pass.
//
// Scheduling is single-threaded and synchronous: Pull is the only
// blocking call, and no stage is ever invoked concurrently with itself
// or any other stage (SPEC_FULL.md §8).
package engine

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mjwatson/stream-proxy/internal/metric"
	"github.com/mjwatson/stream-proxy/internal/perr"
	"github.com/mjwatson/stream-proxy/internal/pipeline"
	"github.com/mjwatson/stream-proxy/internal/stage"
)

// Engine drives a single pipeline from source exhaustion to flush.
type Engine struct {
	logger  *slog.Logger
	metrics *metric.Metrics

	state stage.State
	cache map[int][]byte
}

// New returns an Engine ready to Run a pipeline. logger and metrics may
// be nil; a nil logger falls back to slog.Default(), a nil metrics
// disables instrumentation (nil-feature pattern, matching the teacher's
// "nil input = nil feature" convention).
func New(logger *slog.Logger, metrics *metric.Metrics) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		logger:  logger,
		metrics: metrics,
		state:   stage.StateActive,
		cache:   make(map[int][]byte),
	}
}

// Run drives p to completion: pull from the source until end-of-transport,
// dispatching every chunk through the transformer/sink chain, then
// performs one flush pass and returns. Any error other than normal
// end-of-transport aborts the run: the engine logs one diagnostic line
// and returns the error (per SPEC_FULL.md §10, unclassified errors are
// coerced to Fatal at the boundary, so the caller never has to guess
// what an escaped error means).
func (e *Engine) Run(p *pipeline.Pipeline) error {
	source := p.Source()

	for {
		chunk, err := source.Pull()
		if err != nil {
			if errors.Is(err, perr.ErrEndOfTransport) {
				return e.flush(p)
			}
			fatal := perr.AsFatal(err, "engine", "Run", "pull from source")
			e.logFatal(fatal)
			return fatal
		}
		if e.metrics != nil {
			e.metrics.ChunksPulled.Inc()
			e.metrics.BytesPulled.Add(float64(len(chunk)))
		}
		if len(chunk) == 0 {
			// "no data this round" — skip dispatch, pull again.
			continue
		}
		if err := e.dispatch(p, chunk, 1); err != nil {
			fatal := perr.AsFatal(err, "engine", "Run", "dispatch chunk")
			e.logFatal(fatal)
			return fatal
		}
	}
}

// flush performs the single end-of-transport traversal: dispatch is
// called once for every stage index in ascending order with no new
// input, so each stage sees state==end and a chance to emit buffered
// data. Stages with nothing to flush return (nil, nil) and their
// dispatch call terminates immediately.
func (e *Engine) flush(p *pipeline.Pipeline) error {
	e.state = stage.StateEnd
	for i := 1; i < p.Len(); i++ {
		if err := e.dispatch(p, nil, i); err != nil {
			fatal := perr.AsFatal(err, "engine", "flush", fmt.Sprintf("flush stage %d", i))
			e.logFatal(fatal)
			return fatal
		}
	}
	return nil
}

// dispatch implements SPEC_FULL.md §4.E step by step: coalesce the
// residual cache with input, loop Push until the fixed point, recursing
// any emitted bytes into stage i+1, and persist whatever remains back
// into the cache.
func (e *Engine) dispatch(p *pipeline.Pipeline, input []byte, i int) error {
	if i == p.Len() {
		// Past the sink: discard. The terminal stage's emission (if any)
		// was already consumed by its own Push call; there is nothing
		// downstream of it to hand bytes to.
		return nil
	}

	cached := e.cache[i]
	delete(e.cache, i)
	if len(cached) > 0 {
		if len(input) > 0 {
			combined := make([]byte, 0, len(cached)+len(input))
			combined = append(combined, cached...)
			combined = append(combined, input...)
			input = combined
		} else {
			input = cached
		}
	}

	s := p.At(i)
	for e.state == stage.StateEnd || len(input) > 0 {
		emitted, remainder, err := s.Push(e.state, input)
		if err != nil {
			// Stages classify their own errors (invalid-data for a codec
			// that cannot frame/parse, fatal for an I/O failure); the
			// engine only coerces whatever is left unclassified, at the
			// boundary in Run/flush.
			return fmt.Errorf("stage %d: %w", i, err)
		}

		if e.metrics != nil {
			e.metrics.DispatchCalls.WithLabelValues(fmt.Sprintf("%d", i)).Inc()
		}

		if emitted != nil {
			// Non-nil but zero-length emitted bytes are a real, empty
			// message (e.g. two adjacent delimiters): presence, not
			// length, decides whether something was produced this call.
			if err := e.dispatch(p, emitted, i+1); err != nil {
				return err
			}
		}

		if bytes.Equal(remainder, input) {
			input = remainder
			break
		}
		input = remainder
	}

	if len(input) > 0 {
		e.cache[i] = input
	}
	return nil
}

func (e *Engine) logFatal(err error) {
	if e.metrics != nil {
		e.metrics.FatalErrors.Inc()
	}
	e.logger.Error("fatal error: run loop terminated", "error", err)
}
