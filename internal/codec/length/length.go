// Package length implements the 4-byte length-prefix codec: encode
// prepends a little-endian uint32 length, decode reads that header then
// returns exactly that many payload bytes with anything past it as
// remainder. Endianness is pinned to little-endian here (SPEC_FULL.md
// §4.C); DESIGN.md's "Open Question resolutions" records the choice.
package length

import (
	"encoding/binary"
	"fmt"

	"github.com/mjwatson/stream-proxy/internal/registry"
	"github.com/mjwatson/stream-proxy/internal/stage"
)

const headerSize = 4

// Register adds +length (encoder) and -length (decoder).
func Register(reg *registry.Registry) error {
	if err := reg.Register(registry.Registration{
		Name:        "+length",
		Factory:     newEncoder,
		Description: "prepend a 4-byte little-endian length header",
	}); err != nil {
		return err
	}
	return reg.Register(registry.Registration{
		Name:        "-length",
		Factory:     newDecoder,
		Description: "strip a 4-byte little-endian length header",
	})
}

type encoder struct{}

func newEncoder(int, string) (stage.Stage, error) { return encoder{}, nil }

// Push frames the entire input as one message: header + payload,
// verbatim. The length codec is one-shot on encode — it never buffers
// partial messages, since its caller hands it complete messages to
// frame (this mirrors how the teacher's one-shot text transforms
// always consume everything).
func (encoder) Push(_ stage.State, input []byte) (emitted, remainder []byte, err error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	out := make([]byte, headerSize+len(input))
	binary.LittleEndian.PutUint32(out[:headerSize], uint32(len(input)))
	copy(out[headerSize:], input)
	return out, nil, nil
}

// Encode is the pure function version used directly by tests asserting
// the encode/decode round-trip property from SPEC_FULL.md §11.
func Encode(msg []byte) []byte {
	out := make([]byte, headerSize+len(msg))
	binary.LittleEndian.PutUint32(out[:headerSize], uint32(len(msg)))
	copy(out[headerSize:], msg)
	return out
}

type decoder struct{}

func newDecoder(int, string) (stage.Stage, error) { return decoder{}, nil }

// Push reads a 4-byte length header, then waits until the full payload
// has arrived. If fewer than header+length bytes are available, it
// emits nothing and returns the whole input as remainder — the fixed
// point rule then blocks further calls until more input arrives.
func (decoder) Push(_ stage.State, input []byte) (emitted, remainder []byte, err error) {
	if len(input) < headerSize {
		return nil, input, nil
	}
	msgLen := binary.LittleEndian.Uint32(input[:headerSize])
	total := headerSize + int(msgLen)
	if len(input) < total {
		return nil, input, nil
	}
	return input[headerSize:total], input[total:], nil
}

// Decode is the pure function form: returns the message and whatever
// trailing bytes were not consumed, or an error if input is too short
// to contain a full frame.
func Decode(input []byte) (msg, rest []byte, err error) {
	if len(input) < headerSize {
		return nil, input, fmt.Errorf("length: need at least %d bytes for header, got %d", headerSize, len(input))
	}
	msgLen := binary.LittleEndian.Uint32(input[:headerSize])
	total := headerSize + int(msgLen)
	if len(input) < total {
		return nil, input, fmt.Errorf("length: need %d bytes for frame, got %d", total, len(input))
	}
	return input[headerSize:total], input[total:], nil
}
