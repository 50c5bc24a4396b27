package postprocessors

import (
	"errors"
	"fmt"
	"sort"

	"github.com/custodia-labs/prepkit/internal/core/ports/driven"
)

// ErrUnknownProcessor is returned by Build for unregistered names.
var ErrUnknownProcessor = errors.New("unknown processor")

// Builder creates a PostProcessor from the ingest settings it reads.
// Values arrive untyped because they may come from TOML or JSON.
type Builder func(cfg map[string]any) (driven.PostProcessor, error)

// Registry maps processor names to builders so the ingest pipeline can be
// assembled by name.
type Registry struct {
	builders map[string]Builder
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]Builder)}
}

// Register adds or replaces the builder for name.
func (r *Registry) Register(name string, b Builder) {
	r.builders[name] = b
}

// Build creates the named processor from cfg.
func (r *Registry) Build(name string, cfg map[string]any) (driven.PostProcessor, error) {
	b, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProcessor, name)
	}
	p, err := b(cfg)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", name, err)
	}
	return p, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
