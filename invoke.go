package inject

import (
	"fmt"

	"github.com/junioryono/inject/internal/reflection"
)

// Prepare resolves the parameters of fn now and returns a function that
// calls fn with them. fn may return anything; a trailing error result is
// returned by the prepared call and other results are discarded.
//
//	run, err := inj.Prepare(func(logger Logger, clock Clock) error {
//	    logger.Log(clock.Now().String())
//	    return nil
//	})
func (inj *Injector) Prepare(fn any) (func() error, error) {
	if inj.store.IsClosed() {
		return nil, ErrInjectorClosed
	}

	impl, err := inj.analyzer.Callable(fn)
	if err != nil {
		return nil, fmt.Errorf("invalid function %T: %w", fn, err)
	}

	owner := impl.Type
	args, err := inj.arguments(owner, impl, newResolution())
	if err != nil {
		if inj.onError != nil {
			inj.onError(owner, err)
		}
		return nil, err
	}

	return func() error {
		_, err := impl.Invoke(args)
		if p, ok := err.(*reflection.PanicError); ok {
			return ConstructorPanicError{Interface: owner, Implementation: impl, Panic: p.Value, Stack: p.Stack}
		}
		return err
	}, nil
}

// Invoke resolves the parameters of fn and calls it, returning fn's error
// result if it has one.
func (inj *Injector) Invoke(fn any) error {
	call, err := inj.Prepare(fn)
	if err != nil {
		return err
	}
	return call()
}
