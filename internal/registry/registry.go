package registry

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/junioryono/inject/internal/reflection"
)

// Binding associates an interface type with the implementation that
// satisfies it.
type Binding struct {
	// Interface is the lookup key
	Interface reflect.Type

	// Implementation is the analysed constructor or instance
	Implementation *reflection.Constructor

	// Lifetime determines instance caching behavior
	Lifetime Lifetime
}

// String returns a string representation of the binding
func (b Binding) String() string {
	return fmt.Sprintf("%v -> %v", b.Interface, b.Implementation)
}

// Registry holds at most one binding per interface type.
type Registry struct {
	mu       sync.RWMutex
	bindings map[reflect.Type]Binding
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		bindings: make(map[reflect.Type]Binding),
	}
}

// Register inserts b, replacing any binding for the same interface. It
// reports whether a previous binding was replaced.
func (r *Registry) Register(b Binding) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, replaced := r.bindings[b.Interface]
	r.bindings[b.Interface] = b
	return replaced
}

// Lookup returns the binding for t.
func (r *Registry) Lookup(t reflect.Type) (Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bindings[t]
	return b, ok
}

// Has reports whether t is bound.
func (r *Registry) Has(t reflect.Type) bool {
	_, ok := r.Lookup(t)
	return ok
}

// Bindings returns a snapshot of all bindings ordered by interface name.
func (r *Registry) Bindings() []Binding {
	r.mu.RLock()
	out := make([]Binding, 0, len(r.bindings))
	for _, b := range r.bindings {
		out = append(out, b)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Interface.String() < out[j].Interface.String()
	})
	return out
}

// Len returns the number of bindings.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bindings)
}
