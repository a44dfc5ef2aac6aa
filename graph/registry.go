package graph

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kbukum/imageflow/errors"
)

// Registry provides node type lookup for graph construction. It is
// populated once at startup; after that every method is read-only, so
// graphs can share one registry freely.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*Type
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*Type)}
}

// Register adds a node type to the registry. It rejects malformed
// declarations and duplicate names.
func (r *Registry) Register(t *Type) error {
	if t == nil {
		return fmt.Errorf("graph: cannot register nil type")
	}
	if err := t.validate(); err != nil {
		return fmt.Errorf("graph: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[t.Name]; exists {
		return fmt.Errorf("graph: node type %q already registered", t.Name)
	}
	r.types[t.Name] = t
	return nil
}

// Get retrieves a node type by tag. An unknown tag is an UNKNOWN_NODE_TYPE
// error.
func (r *Registry) Get(name string) (*Type, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	if !ok {
		return nil, errors.UnknownNodeType(name)
	}
	return t, nil
}

// Has reports whether a tag is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.types[name]
	return ok
}

// Names returns the sorted tags of all registered types.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Types returns all registered types sorted by tag, for catalogs and UIs.
func (r *Registry) Types() []*Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Type, 0, len(r.types))
	for _, t := range r.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Wrap replaces every registered type with mw(type). It exists so startup
// code can layer middleware (tracing, metrics, logging) over a populated
// registry; calling it after graphs are built leaves those graphs on the
// unwrapped types.
func (r *Registry) Wrap(mw func(*Type) *Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, t := range r.types {
		if wrapped := mw(t); wrapped != nil {
			r.types[name] = wrapped
		}
	}
}
