package action

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps action kinds to their describers.
// It is safe for concurrent reads; Register should only be called at startup.
type Registry struct {
	mu         sync.RWMutex
	describers map[string]Describer
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{describers: make(map[string]Describer)}
}

// Register adds a describer. Panics on duplicate kind to surface misconfiguration early.
func (r *Registry) Register(d Describer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.describers[d.Kind()]; exists {
		panic(fmt.Sprintf("action registry: duplicate kind %q", d.Kind()))
	}
	r.describers[d.Kind()] = d
}

// Get returns the describer for the given kind.
func (r *Registry) Get(kind string) (Describer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.describers[kind]
	if !ok {
		return nil, fmt.Errorf("no describer registered for action kind %q", kind)
	}
	return d, nil
}

// Kinds returns all registered action kinds, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.describers))
	for k := range r.describers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
