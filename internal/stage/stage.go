// Package stage defines the contract every pipeline node implements. A
// stage is either a source (Puller, position 0) or a transformer/sink
// (Pusher, every other position); codec stages may be both, since wiring a
// codec at position 0 never happens but nothing stops a transport from
// also implementing Pusher if it is reused downstream.
package stage

// State is the two-valued engine state a Pusher observes. There is no
// separate "start" value: no stage is dispatched to before the first Pull,
// so Active covers it.
type State int

const (
	// StateActive is normal operation: more input may still arrive.
	StateActive State = iota
	// StateEnd is the flush pass following source exhaustion: a Pusher
	// sees this once per stage, with the coalesced residual as input (or
	// no input at all if nothing was buffered), and should emit any
	// trailing buffered data.
	StateEnd
)

func (s State) String() string {
	if s == StateEnd {
		return "end"
	}
	return "active"
}

// Puller is the source capability. Pull blocks until a chunk is
// available and returns perr.ErrEndOfTransport once the source is
// exhausted. An empty, non-nil chunk is valid and means "no data this
// round"; the engine treats it as such and loops again.
type Puller interface {
	Pull() ([]byte, error)
}

// Pusher is the transformer/sink capability. Push must not block longer
// than its own I/O requires: it is not handed a context because the
// contract forbids cooperative cancellation mid-pipeline (see
// SPEC_FULL.md §8).
//
// emitted is the bytes to forward downstream, or nil for "nothing to
// forward this call". remainder is the suffix of input the stage did not
// consume (or all of input, verbatim, if it consumed none). The fixed
// point rule lives in the engine: if remainder is byte-identical to
// input and emitted is nil, the stage is declaring it needs more input
// and must not be called again until the residual cache grows.
type Pusher interface {
	Push(state State, input []byte) (emitted, remainder []byte, err error)
}

// Stage is the union every registry factory returns. Concrete stages
// implement Puller, Pusher, or (rarely) both; which is required depends
// on position, enforced by internal/pipeline at build time.
type Stage interface{}
