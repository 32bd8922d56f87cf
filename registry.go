package loom

import (
	"sync"

	"github.com/threadworks/loom/internal/guard"
)

// Registry holds the named capabilities available to the runtime. Lookups
// are read-mostly; a single lock guards the underlying map and is never held
// across a capability invocation.
type Registry struct {
	mu    sync.RWMutex
	items map[string]Capability
	order []string
}

// NewRegistry creates an empty capability registry.
func NewRegistry() *Registry {
	return &Registry{items: make(map[string]Capability)}
}

// Register adds a capability. Registering a name that already exists is a
// silent no-op, never an overwrite. Names must match the identifier grammar.
func (r *Registry) Register(c Capability) error {
	name := c.Name()
	if !guard.ValidName(name) {
		return NewInvalidNameError("registration", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[name]; exists {
		return nil
	}
	r.items[name] = c
	r.order = append(r.order, name)
	return nil
}

// Get returns the capability registered under name. The not-found error
// enumerates the currently registered names to aid diagnosis.
func (r *Registry) Get(name string) (Capability, error) {
	r.mu.RLock()
	c, exists := r.items[name]
	r.mu.RUnlock()
	if !exists {
		return nil, NewNotFoundError("lookup", name, r.List())
	}
	return c, nil
}

// Has reports whether a capability is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.items[name]
	return exists
}

// List returns the registered capability names in registration order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Unregister removes a capability by name, reporting whether it was present.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[name]; !exists {
		return false
	}
	delete(r.items, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of registered capabilities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Schemas returns a map of capability names to their schemas, suitable for
// feeding a planner prompt.
func (r *Registry) Schemas() map[string]map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	schemas := make(map[string]map[string]any, len(r.items))
	for name, c := range r.items {
		schemas[name] = c.Schema()
	}
	return schemas
}
