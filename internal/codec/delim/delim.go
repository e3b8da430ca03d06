// Package delim implements the delimiter-framed codec: encode inserts
// the delimiter between messages (never before the first), decode splits
// on the first occurrence of the delimiter per call. +lines/-lines are
// the same codec with the delimiter fixed to "\n".
package delim

import (
	"bytes"
	"fmt"

	"github.com/mjwatson/stream-proxy/internal/registry"
	"github.com/mjwatson/stream-proxy/internal/stage"
)

// Register adds +delim/-delim (arbitrary delimiter option) and
// +lines/-lines (delimiter fixed to "\n").
func Register(reg *registry.Registry) error {
	if err := reg.Register(registry.Registration{
		Name:        "+delim",
		Factory:     newEncoderOption,
		Description: "insert a delimiter between messages",
	}); err != nil {
		return err
	}
	if err := reg.Register(registry.Registration{
		Name:        "-delim",
		Factory:     newDecoderOption,
		Description: "split on the first occurrence of a delimiter",
	}); err != nil {
		return err
	}
	if err := reg.Register(registry.Registration{
		Name:        "+lines",
		Factory:     func(int, string) (stage.Stage, error) { return NewEncoder([]byte("\n")), nil },
		Description: "insert \"\\n\" between messages",
	}); err != nil {
		return err
	}
	return reg.Register(registry.Registration{
		Name:        "-lines",
		Factory:     func(int, string) (stage.Stage, error) { return NewDecoder([]byte("\n")), nil },
		Description: "split on \"\\n\"",
	})
}

func newEncoderOption(_ int, options string) (stage.Stage, error) {
	if options == "" {
		return nil, fmt.Errorf("+delim requires a delimiter option, e.g. +delim:|")
	}
	return NewEncoder([]byte(options)), nil
}

func newDecoderOption(_ int, options string) (stage.Stage, error) {
	if options == "" {
		return nil, fmt.Errorf("-delim requires a delimiter option, e.g. -delim:|")
	}
	return NewDecoder([]byte(options)), nil
}

// Encoder inserts delim between successive messages: each Push call is
// one message, so the first call emits it verbatim and every call after
// emits delim+message.
type Encoder struct {
	delim []byte
	sent  bool
}

// NewEncoder returns an Encoder using delim as the separator.
func NewEncoder(delim []byte) *Encoder { return &Encoder{delim: delim} }

func (e *Encoder) Push(_ stage.State, input []byte) (emitted, remainder []byte, err error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	if !e.sent {
		e.sent = true
		return input, nil, nil
	}
	out := make([]byte, 0, len(e.delim)+len(input))
	out = append(out, e.delim...)
	out = append(out, input...)
	return out, nil, nil
}

// Decoder splits its accumulated input on the first occurrence of delim
// per call, buffering whatever follows as remainder until either another
// delimiter arrives or the stream ends.
type Decoder struct {
	delim []byte
}

// NewDecoder returns a Decoder splitting on delim.
func NewDecoder(delim []byte) *Decoder { return &Decoder{delim: delim} }

func (d *Decoder) Push(state stage.State, input []byte) (emitted, remainder []byte, err error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	if idx := bytes.Index(input, d.delim); idx >= 0 {
		msg := input[:idx]
		rest := input[idx+len(d.delim):]
		return msg, rest, nil
	}
	if state == stage.StateEnd {
		// No trailing delimiter: the buffered bytes are the final
		// message.
		return input, nil, nil
	}
	return nil, input, nil
}
