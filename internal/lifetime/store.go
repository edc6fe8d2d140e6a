package lifetime

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"
)

// ErrClosed is returned by GetOrCreate once the store has been closed.
var ErrClosed = errors.New("lifetime store is closed")

// Store caches singleton instances for the lifetime of one injector.
// Construction of a given key happens at most once, even when many
// goroutines ask for it at the same time.
type Store struct {
	mu    sync.Mutex
	slots map[reflect.Type]*slot
	order []*slot // creation order, for disposal

	constructions atomic.Int64
	closed        atomic.Bool
}

// slot serializes construction for one key. ready is published after the
// instance is built so cache hits never take the slot lock.
type slot struct {
	mu    sync.Mutex
	key   reflect.Type
	ready atomic.Pointer[box]
}

type box struct {
	instance any
}

// New creates an empty store.
func New() *Store {
	return &Store{
		slots: make(map[reflect.Type]*slot),
	}
}

// Get returns the cached instance for key without constructing anything.
func (s *Store) Get(key reflect.Type) (any, bool) {
	s.mu.Lock()
	sl, ok := s.slots[key]
	s.mu.Unlock()

	if !ok {
		return nil, false
	}
	if b := sl.ready.Load(); b != nil {
		return b.instance, true
	}
	return nil, false
}

// GetOrCreate returns the cached instance for key, or calls factory, caches
// and returns its result. created reports whether this call ran the factory.
// A failing factory leaves nothing cached.
func (s *Store) GetOrCreate(key reflect.Type, factory func() (any, error)) (instance any, created bool, err error) {
	if s.closed.Load() {
		return nil, false, ErrClosed
	}

	s.mu.Lock()
	sl, ok := s.slots[key]
	if !ok {
		sl = &slot{key: key}
		s.slots[key] = sl
	}
	s.mu.Unlock()

	if b := sl.ready.Load(); b != nil {
		return b.instance, false, nil
	}

	sl.mu.Lock()
	defer sl.mu.Unlock()

	// Another caller may have finished while we waited.
	if b := sl.ready.Load(); b != nil {
		return b.instance, false, nil
	}

	instance, err = factory()
	if err != nil {
		return nil, false, err
	}
	s.constructions.Add(1)

	// Close may have run while the factory was building. The instance is
	// then disposed here since Close has already taken the order.
	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		return nil, false, multierr.Append(ErrClosed, dispose(key, instance))
	}
	sl.ready.Store(&box{instance: instance})
	s.order = append(s.order, sl)
	s.mu.Unlock()

	return instance, true, nil
}

// Forget drops the slot for key so the next GetOrCreate constructs again.
// An instance already built stays owned by the store and is still disposed
// by Close.
func (s *Store) Forget(key reflect.Type) {
	s.mu.Lock()
	delete(s.slots, key)
	s.mu.Unlock()
}

// Len returns the number of cached instances.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, sl := range s.slots {
		if sl.ready.Load() != nil {
			n++
		}
	}
	return n
}

// Constructions returns how many instances the store has built.
func (s *Store) Constructions() int64 {
	return s.constructions.Load()
}

// Close disposes every constructed instance in reverse creation order.
// Instances implementing Disposable or DisposableWithContext are closed;
// failures are combined. Close is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	if !s.closed.CompareAndSwap(false, true) {
		s.mu.Unlock()
		return nil
	}
	order := s.order
	s.order = nil
	s.slots = make(map[reflect.Type]*slot)
	s.mu.Unlock()

	var err error
	for i := len(order) - 1; i >= 0; i-- {
		b := order[i].ready.Load()
		if b == nil {
			continue
		}
		err = multierr.Append(err, dispose(order[i].key, b.instance))
	}

	return err
}

// IsClosed reports whether Close has been called.
func (s *Store) IsClosed() bool {
	return s.closed.Load()
}

func dispose(key reflect.Type, instance any) error {
	var err error
	switch d := instance.(type) {
	case DisposableWithContext:
		err = d.Close(context.Background())
	case Disposable:
		err = d.Close()
	default:
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to dispose %v (%T): %w", key, instance, err)
	}
	return nil
}
