// Package registry provides the stage factory registry: a name ->
// construction function map, following the same RegisterFactory /
// Registration shape as the teacher's component.Registry, trimmed to what
// a static CLI pipeline needs (no instance tracking, no resource
// conflict detection — each stage owns its own resources and there is
// never more than one pipeline per process).
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mjwatson/stream-proxy/internal/perr"
	"github.com/mjwatson/stream-proxy/internal/stage"
)

// Factory builds a stage from its position in the pipeline and its raw
// option string (the part after the first ':' in the CLI token, or ""
// if the token had no options). Factories whose meaning depends on
// position (tcp, udp, folder, nats, zmq, websocket) inspect position
// themselves; position 0 means "I am the source".
type Factory func(position int, options string) (stage.Stage, error)

// Registration holds a factory plus the metadata that describes it.
type Registration struct {
	Name        string
	Factory     Factory
	Description string
}

// Registry is a thread-safe name -> Registration map. Safe for
// concurrent registration during init(), though in practice every
// Register call happens sequentially from internal/builtins before the
// engine runs.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]*Registration
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{factories: make(map[string]*Registration)}
}

// Register adds a named factory. Re-registering an existing name is a
// programming error (fatal), not a user input error.
func (r *Registry) Register(reg Registration) error {
	if reg.Name == "" {
		return perr.WrapFatal(fmt.Errorf("registration name must not be empty"),
			"registry", "Register", "name validation")
	}
	if reg.Factory == nil {
		return perr.WrapFatal(fmt.Errorf("registration %q has nil factory", reg.Name),
			"registry", "Register", "factory validation")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[reg.Name]; exists {
		return perr.WrapFatal(fmt.Errorf("factory %q already registered", reg.Name),
			"registry", "Register", "duplicate check")
	}
	cp := reg
	r.factories[reg.Name] = &cp
	return nil
}

// Build constructs the stage named name at the given position with the
// given raw option string. An unknown name is an invalid-option error.
func (r *Registry) Build(name string, position int, options string) (stage.Stage, error) {
	r.mu.RLock()
	reg, ok := r.factories[name]
	var known []string
	if !ok {
		known = r.names()
	}
	r.mu.RUnlock()
	if !ok {
		return nil, perr.WrapInvalidOption(
			fmt.Errorf("unknown stage %q (known: %v)", name, known),
			"registry", "Build", "stage name lookup")
	}
	s, err := reg.Factory(position, options)
	if err != nil {
		return nil, perr.WrapInvalidOption(err, "registry", "Build", fmt.Sprintf("construct stage %q", name))
	}
	return s, nil
}

// names returns every registered stage name, sorted, for "unknown stage"
// error messages. The caller must hold r.mu.
func (r *Registry) names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
