// Package urlenc implements the +url/-url one-shot percent-encoding
// transform. Unlike net/url's QueryEscape (which encodes space as '+',
// a form-encoding convention this wire format does not want), every
// byte outside RFC 3986's unreserved set is percent-encoded, space
// included, so "a b&c" becomes "a%20b%26c".
package urlenc

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mjwatson/stream-proxy/internal/perr"
	"github.com/mjwatson/stream-proxy/internal/registry"
	"github.com/mjwatson/stream-proxy/internal/stage"
)

// Register adds +url (encode) and -url (decode).
func Register(reg *registry.Registry) error {
	if err := reg.Register(registry.Registration{
		Name:        "+url",
		Factory:     func(int, string) (stage.Stage, error) { return encoder{}, nil },
		Description: "percent-encode the input",
	}); err != nil {
		return err
	}
	return reg.Register(registry.Registration{
		Name:        "-url",
		Factory:     func(int, string) (stage.Stage, error) { return decoder{}, nil },
		Description: "percent-decode the input",
	})
}

func isUnreserved(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_' || c == '.' || c == '~':
		return true
	default:
		return false
	}
}

// Encode percent-encodes every byte outside the unreserved set.
func Encode(in []byte) []byte {
	var b strings.Builder
	b.Grow(len(in))
	for _, c := range in {
		if isUnreserved(c) {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return []byte(b.String())
}

// Decode reverses Encode. It uses url.PathUnescape, which (unlike
// QueryUnescape) leaves a literal '+' alone, matching the encoder's
// choice to percent-encode space rather than use '+' for it.
func Decode(in []byte) ([]byte, error) {
	out, err := url.PathUnescape(string(in))
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

type encoder struct{}

func (encoder) Push(_ stage.State, input []byte) (emitted, remainder []byte, err error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	return Encode(input), nil, nil
}

type decoder struct{}

func (decoder) Push(_ stage.State, input []byte) (emitted, remainder []byte, err error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	out, err := Decode(input)
	if err != nil {
		return nil, nil, perr.WrapInvalidData(err, "codec/urlenc", "Push", "percent-decode")
	}
	return out, nil, nil
}
