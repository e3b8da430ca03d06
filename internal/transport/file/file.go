// Package file implements the "file" transport: at position 0 it reads
// the whole file once and returns end-of-transport on the next Pull; as
// a sink it appends every push to the file, creating it if necessary.
package file

import (
	"fmt"
	"os"

	"github.com/mjwatson/stream-proxy/internal/perr"
	"github.com/mjwatson/stream-proxy/internal/registry"
	"github.com/mjwatson/stream-proxy/internal/stage"
)

// Register adds "file".
func Register(reg *registry.Registry) error {
	return reg.Register(registry.Registration{
		Name:        "file",
		Factory:     newStage,
		Description: "read whole file once (source) / append (sink)",
	})
}

func newStage(position int, options string) (stage.Stage, error) {
	if options == "" {
		return nil, fmt.Errorf("file requires a path option, e.g. file:/tmp/in")
	}
	if position == 0 {
		return &source{path: options}, nil
	}
	return &sink{path: options}, nil
}

type source struct {
	path string
	sent bool
}

func (s *source) Pull() ([]byte, error) {
	if s.sent {
		return nil, perr.ErrEndOfTransport
	}
	s.sent = true
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, perr.WrapFatal(err, "transport/file", "Pull", fmt.Sprintf("read %s", s.path))
	}
	return data, nil
}

type sink struct {
	path string
	f    *os.File
}

func (s *sink) Push(_ stage.State, input []byte) (emitted, remainder []byte, err error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	if s.f == nil {
		f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, perr.WrapFatal(err, "transport/file", "Push", fmt.Sprintf("open %s", s.path))
		}
		s.f = f
	}
	if _, err := s.f.Write(input); err != nil {
		return nil, nil, perr.WrapFatal(err, "transport/file", "Push", fmt.Sprintf("write %s", s.path))
	}
	return nil, nil, nil
}

func (s *sink) Close() error {
	if s.f == nil {
		return nil
	}
	return s.f.Close()
}
