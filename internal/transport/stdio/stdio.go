// Package stdio implements the "-"/"std" transport: stdin as a source
// reading in chunks until EOF, stdout as a sink writing each push
// verbatim.
package stdio

import (
	"bufio"
	"errors"
	"io"
	"os"

	"github.com/mjwatson/stream-proxy/internal/perr"
	"github.com/mjwatson/stream-proxy/internal/registry"
	"github.com/mjwatson/stream-proxy/internal/stage"
)

const chunkSize = 64 * 1024

// Register adds "-" and "std", both aliases for the same factory.
func Register(reg *registry.Registry) error {
	for _, name := range []string{"-", "std"} {
		if err := reg.Register(registry.Registration{
			Name:        name,
			Factory:     newStage,
			Description: "stdin (source) / stdout (sink)",
		}); err != nil {
			return err
		}
	}
	return nil
}

func newStage(position int, _ string) (stage.Stage, error) {
	if position == 0 {
		return &source{r: bufio.NewReader(os.Stdin)}, nil
	}
	return &sink{w: os.Stdout}, nil
}

type source struct {
	r *bufio.Reader
}

func (s *source) Pull() ([]byte, error) {
	buf := make([]byte, chunkSize)
	n, err := s.r.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if errors.Is(err, io.EOF) {
		return nil, perr.ErrEndOfTransport
	}
	if err != nil {
		return nil, perr.WrapFatal(err, "transport/stdio", "Pull", "read stdin")
	}
	return []byte{}, nil
}

type sink struct {
	w io.Writer
}

func (s *sink) Push(_ stage.State, input []byte) (emitted, remainder []byte, err error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	if _, err := s.w.Write(input); err != nil {
		return nil, nil, perr.WrapFatal(err, "transport/stdio", "Push", "write stdout")
	}
	return nil, nil, nil
}
