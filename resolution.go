package inject

import "reflect"

// resolution records the interfaces in flight for one top-level Resolve or
// Invoke call. It is created per call and threaded through the recursion,
// so concurrent calls never observe each other.
type resolution struct {
	path  []reflect.Type
	index map[reflect.Type]int
}

func newResolution() *resolution {
	return &resolution{index: make(map[reflect.Type]int)}
}

// check fails with a CircularDependencyError if t is already being resolved.
// The chain runs from the first occurrence of t to the current position.
func (r *resolution) check(t reflect.Type) error {
	i, ok := r.index[t]
	if !ok {
		return nil
	}

	chain := make([]reflect.Type, len(r.path)-i)
	copy(chain, r.path[i:])
	return CircularDependencyError{Interface: t, Chain: chain}
}

func (r *resolution) push(t reflect.Type) {
	r.index[t] = len(r.path)
	r.path = append(r.path, t)
}

// pop removes the most recently pushed type.
func (r *resolution) pop() {
	last := r.path[len(r.path)-1]
	delete(r.index, last)
	r.path = r.path[:len(r.path)-1]
}

func (r *resolution) depth() int {
	return len(r.path)
}
