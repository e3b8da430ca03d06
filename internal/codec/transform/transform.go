// Package transform implements the three pure-function byte transforms:
// null (passthrough), strip (trim surrounding whitespace), and skip (drop
// or keep a fixed prefix). All three are one-shot: they always consume
// the whole input and never buffer, so their Push always returns a nil
// remainder.
package transform

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/mjwatson/stream-proxy/internal/perr"
	"github.com/mjwatson/stream-proxy/internal/registry"
	"github.com/mjwatson/stream-proxy/internal/stage"
)

// Register adds null, strip, and skip to reg.
func Register(reg *registry.Registry) error {
	if err := reg.Register(registry.Registration{
		Name:        "null",
		Factory:     newNull,
		Description: "passthrough transform",
	}); err != nil {
		return err
	}
	if err := reg.Register(registry.Registration{
		Name:        "strip",
		Factory:     newStrip,
		Description: "trim surrounding whitespace",
	}); err != nil {
		return err
	}
	return reg.Register(registry.Registration{
		Name:        "skip",
		Factory:     newSkip,
		Description: "drop (n>=0) or keep (n<0) the first n bytes",
	})
}

// null is the identity transform.
type null struct{}

func newNull(int, string) (stage.Stage, error) { return null{}, nil }

func (null) Push(_ stage.State, input []byte) (emitted, remainder []byte, err error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	return input, nil, nil
}

// strip trims ASCII/Unicode whitespace from both ends of each chunk.
type strip struct{}

func newStrip(int, string) (stage.Stage, error) { return strip{}, nil }

func (strip) Push(_ stage.State, input []byte) (emitted, remainder []byte, err error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	return bytes.TrimSpace(input), nil, nil
}

// skip drops the first n bytes when n >= 0, or keeps only the first |n|
// bytes when n < 0.
type skip struct {
	n int
}

func newSkip(_ int, options string) (stage.Stage, error) {
	if options == "" {
		return nil, fmt.Errorf("skip requires an integer option, e.g. skip:4 or skip:-4")
	}
	n, err := strconv.Atoi(options)
	if err != nil {
		return nil, perr.WrapInvalidOption(err, "codec/transform", "newSkip", "parse skip count")
	}
	return &skip{n: n}, nil
}

func (s *skip) Push(_ stage.State, input []byte) (emitted, remainder []byte, err error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	if s.n >= 0 {
		if s.n >= len(input) {
			return nil, nil, nil
		}
		return input[s.n:], nil, nil
	}
	keep := -s.n
	if keep >= len(input) {
		return input, nil, nil
	}
	return input[:keep], nil, nil
}
