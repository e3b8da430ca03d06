// Package escape implements the +n/-n newline-escape transform:
// '\\' -> "\\\\", LF -> "\\n", CR -> "\\r" on encode, the inverse on
// decode. Both directions are one-shot: they always consume the whole
// input.
package escape

import (
	"bytes"

	"github.com/mjwatson/stream-proxy/internal/perr"
	"github.com/mjwatson/stream-proxy/internal/registry"
	"github.com/mjwatson/stream-proxy/internal/stage"
)

// Register adds +n (escape) and -n (unescape).
func Register(reg *registry.Registry) error {
	if err := reg.Register(registry.Registration{
		Name:        "+n",
		Factory:     func(int, string) (stage.Stage, error) { return encoder{}, nil },
		Description: `escape \, \n, \r`,
	}); err != nil {
		return err
	}
	return reg.Register(registry.Registration{
		Name:        "-n",
		Factory:     func(int, string) (stage.Stage, error) { return decoder{}, nil },
		Description: `unescape \\, \n, \r`,
	})
}

// Escape applies the encode direction.
func Escape(in []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(in))
	for _, c := range in {
		switch c {
		case '\\':
			out.WriteString(`\\`)
		case '\n':
			out.WriteString(`\n`)
		case '\r':
			out.WriteString(`\r`)
		default:
			out.WriteByte(c)
		}
	}
	return out.Bytes()
}

// Unescape applies the decode direction. A trailing lone backslash (no
// following escape character) is invalid data.
func Unescape(in []byte) ([]byte, error) {
	var out bytes.Buffer
	out.Grow(len(in))
	for i := 0; i < len(in); i++ {
		c := in[i]
		if c != '\\' {
			out.WriteByte(c)
			continue
		}
		if i+1 >= len(in) {
			return nil, errTrailingBackslash
		}
		i++
		switch in[i] {
		case '\\':
			out.WriteByte('\\')
		case 'n':
			out.WriteByte('\n')
		case 'r':
			out.WriteByte('\r')
		default:
			return nil, errUnknownEscape
		}
	}
	return out.Bytes(), nil
}

type encoder struct{}

func (encoder) Push(_ stage.State, input []byte) (emitted, remainder []byte, err error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	return Escape(input), nil, nil
}

type decoder struct{}

func (decoder) Push(_ stage.State, input []byte) (emitted, remainder []byte, err error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	out, err := Unescape(input)
	if err != nil {
		return nil, nil, perr.WrapInvalidData(err, "codec/escape", "Push", "unescape")
	}
	return out, nil, nil
}
