package actdb

import (
	"fmt"
	"slices"
	"sync"
)

// Registry maps action names to functions.
//
// Action functions cannot be serialized, so a durable log records the
// name instead and a Registry resolves it again on replay. The same names
// must map to the same pure functions in every process that replays a log.
//
// Thread-safety: Registry is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]Action
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{actions: make(map[string]Action)}
}

// Register adds an action under name.
// Returns an error for an empty name, a nil action, or a duplicate name.
func (r *Registry) Register(name string, action Action) error {
	if name == "" {
		return fmt.Errorf("register action: empty name")
	}
	if action == nil {
		return fmt.Errorf("register action %q: nil function", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.actions[name]; exists {
		return fmt.Errorf("register action %q: already registered", name)
	}
	r.actions[name] = action
	return nil
}

// MustRegister is like Register but panics on error.
// Use only at program start or in tests.
func (r *Registry) MustRegister(name string, action Action) {
	if err := r.Register(name, action); err != nil {
		panic(err)
	}
}

// Lookup returns the action registered under name.
func (r *Registry) Lookup(name string) (Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actions[name]
	return a, ok
}

// Names returns all registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
