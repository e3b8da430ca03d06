// Package rate implements the "rate" stage: a bonus domain-stack
// addition (SPEC_FULL.md §4.C) throttling throughput with a token
// bucket, grounded on the teacher's processor/graph use of
// golang.org/x/time/rate. It consumes every byte it is handed — one
// token per byte, capped at the burst size per chunk (see clampBurst) —
// blocking Push until the bucket can afford it, then forwards the input
// unchanged.
package rate

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/mjwatson/stream-proxy/internal/perr"
	"github.com/mjwatson/stream-proxy/internal/registry"
	"github.com/mjwatson/stream-proxy/internal/stage"
)

// Register adds "rate".
func Register(reg *registry.Registry) error {
	return reg.Register(registry.Registration{
		Name:        "rate",
		Factory:     newStage,
		Description: "throttle throughput to N bytes/sec",
	})
}

func newStage(_ int, options string) (stage.Stage, error) {
	if options == "" {
		return nil, fmt.Errorf("rate requires a bytes/sec option, e.g. rate:65536")
	}
	n, err := strconv.Atoi(options)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("rate: invalid bytes/sec %q", options)
	}
	return &throttle{limiter: rate.NewLimiter(rate.Limit(n), n)}, nil
}

type throttle struct {
	limiter *rate.Limiter
}

func (t *throttle) Push(_ stage.State, input []byte) (emitted, remainder []byte, err error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	if err := t.limiter.WaitN(context.Background(), clampBurst(len(input), t.limiter.Burst())); err != nil {
		return nil, nil, perr.WrapFatal(err, "codec/rate", "Push", "wait for token bucket")
	}
	return input, nil, nil
}

// clampBurst keeps WaitN's request within the limiter's burst size,
// since x/time/rate rejects requests larger than the bucket itself; a
// chunk bigger than the configured rate waits for a full bucket and is
// then allowed through rather than failing the pipeline.
func clampBurst(n, burst int) int {
	if n > burst {
		return burst
	}
	return n
}
