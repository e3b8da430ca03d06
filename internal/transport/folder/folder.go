// Package folder implements the "folder" transport: at position 0 it
// iterates the directory's files in lexical filename order, one Pull per
// file, signalling end-of-transport after the last one (DESIGN.md's
// "Open Question resolutions" settles the ordering by sorting, since a stable
// order is needed for deterministic tests and the source gives none). As
// a sink it writes one file per push with a monotonically increasing
// numeric suffix, or a uuid suffix when the "id" option is set — a
// domain-stack addition so more than one writer can safely share a
// folder without suffix collisions.
package folder

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/mjwatson/stream-proxy/internal/perr"
	"github.com/mjwatson/stream-proxy/internal/registry"
	"github.com/mjwatson/stream-proxy/internal/stage"
)

// Register adds "folder".
func Register(reg *registry.Registry) error {
	return reg.Register(registry.Registration{
		Name:        "folder",
		Factory:     newStage,
		Description: "iterate files (source) / one file per message (sink)",
	})
}

func newStage(position int, options string) (stage.Stage, error) {
	path, rest, _ := strings.Cut(options, ":")
	if path == "" {
		return nil, fmt.Errorf("folder requires a path option, e.g. folder:/tmp/in")
	}
	if position == 0 {
		return &source{dir: path}, nil
	}
	return &sink{dir: path, useUUID: rest == "id"}, nil
}

type source struct {
	dir     string
	files   []string
	loaded  bool
	nextIdx int
}

func (s *source) load() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	s.files = names
	s.loaded = true
	return nil
}

func (s *source) Pull() ([]byte, error) {
	if !s.loaded {
		if err := s.load(); err != nil {
			return nil, perr.WrapFatal(err, "transport/folder", "Pull", fmt.Sprintf("read dir %s", s.dir))
		}
	}
	if s.nextIdx >= len(s.files) {
		return nil, perr.ErrEndOfTransport
	}
	name := s.files[s.nextIdx]
	s.nextIdx++
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, perr.WrapFatal(err, "transport/folder", "Pull", fmt.Sprintf("read %s", name))
	}
	return data, nil
}

type sink struct {
	dir     string
	useUUID bool
	seq     int
}

func (s *sink) Push(_ stage.State, input []byte) (emitted, remainder []byte, err error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	var name string
	if s.useUUID {
		name = uuid.NewString()
	} else {
		s.seq++
		name = fmt.Sprintf("%06d", s.seq)
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, input, 0o644); err != nil {
		return nil, nil, perr.WrapFatal(err, "transport/folder", "Push", fmt.Sprintf("write %s", path))
	}
	return nil, nil, nil
}
