package inject

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/junioryono/inject/internal/lifetime"
	"github.com/junioryono/inject/internal/metrics"
	"github.com/junioryono/inject/internal/reflection"
	"github.com/junioryono/inject/internal/registry"
)

// Injector resolves interface types to instances built from registered
// constructors. An Injector is safe for concurrent use once its bindings are
// registered. Registering while other goroutines resolve is not supported.
//
// Constructors must not call back into the Injector. Cycles are only seen
// through constructor parameters; a Singleton constructor that resolves a
// type depending on itself blocks on its own construction. Take the
// dependency as a parameter, or resolve it with Invoke after startup.
type Injector struct {
	id string

	registry  *registry.Registry
	store     *lifetime.Store
	analyzer  *reflection.Analyzer
	describer Describer

	logger  *zap.Logger
	metrics *metrics.Recorder

	onResolved func(iface reflect.Type, instance any, duration time.Duration)
	onError    func(iface reflect.Type, err error)
}

// New creates an empty Injector.
func New(opts ...Option) (*Injector, error) {
	options := injectorOptions{
		logger:    zap.NewNop(),
		describer: reflectDescriber{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(&options)
		}
	}

	inj := &Injector{
		id:         uuid.NewString(),
		registry:   registry.New(),
		store:      lifetime.New(),
		analyzer:   reflection.New(),
		describer:  options.describer,
		onResolved: options.onResolved,
		onError:    options.onError,
	}
	inj.logger = options.logger.With(zap.String("injector", inj.id))

	if options.registerer != nil {
		rec, err := metrics.New(options.registerer, inj.id)
		if err != nil {
			return nil, err
		}
		inj.metrics = rec
	}

	return inj, nil
}

// ID returns the unique identifier of the injector, as used in log fields
// and metric labels.
func (inj *Injector) ID() string {
	return inj.id
}

// Register binds iface to constructor. The constructor is a function whose
// parameters are resolved from other bindings and which returns the
// implementation, optionally followed by an error. Only malformed
// constructors are rejected here; missing dependencies surface on Resolve
// or Validate. Registering iface again replaces the previous binding and
// drops its cached singleton. The constructor must not call Resolve on the
// same Injector; see Injector.
func (inj *Injector) Register(iface reflect.Type, constructor any, opts ...RegisterOption) error {
	if iface == nil {
		return RegistrationError{Cause: ErrInterfaceNil}
	}
	if inj.store.IsClosed() {
		return RegistrationError{Interface: iface, Cause: ErrInjectorClosed}
	}

	options := registerOptions{lifetime: Scoped}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(&options)
		}
	}

	if !options.lifetime.IsValid() {
		return RegistrationError{Interface: iface, Cause: LifetimeError{Value: options.lifetime}}
	}

	impl, err := inj.analyzer.Analyze(constructor)
	if err != nil {
		return RegistrationError{Interface: iface, Cause: err}
	}

	if len(options.paramNames) > 0 {
		if err := impl.SetParamNames(options.paramNames...); err != nil {
			return RegistrationError{Interface: iface, Cause: err}
		}
	}
	for _, d := range options.defaults {
		if err := impl.SetDefault(d.name, d.value); err != nil {
			return RegistrationError{Interface: iface, Cause: err}
		}
	}

	inj.bind(registry.Binding{Interface: iface, Implementation: impl, Lifetime: options.lifetime})
	return nil
}

// RegisterInstance binds iface to a ready-made instance. The instance is
// returned by every resolution and is not closed by the injector.
func (inj *Injector) RegisterInstance(iface reflect.Type, instance any) error {
	if iface == nil {
		return RegistrationError{Cause: ErrInterfaceNil}
	}
	if inj.store.IsClosed() {
		return RegistrationError{Interface: iface, Cause: ErrInjectorClosed}
	}

	impl, err := inj.analyzer.Instance(instance)
	if err != nil {
		return RegistrationError{Interface: iface, Cause: err}
	}

	inj.bind(registry.Binding{Interface: iface, Implementation: impl, Lifetime: Singleton})
	return nil
}

func (inj *Injector) bind(b registry.Binding) {
	replaced := inj.registry.Register(b)
	if replaced {
		inj.store.Forget(b.Interface)
	}

	inj.logger.Debug("binding registered",
		zap.Stringer("interface", b.Interface),
		zap.Stringer("implementation", b.Implementation),
		zap.Stringer("lifetime", b.Lifetime),
		zap.Bool("replaced", replaced),
	)
}

// Lookup returns the binding registered for iface.
func (inj *Injector) Lookup(iface reflect.Type) (Binding, bool) {
	if iface == nil {
		return Binding{}, false
	}
	return inj.registry.Lookup(iface)
}

// Interface returns the registered interface type called name. name is
// matched against the qualified type name ("app.Logger") first and then
// against the bare name ("Logger"). A bare name bound in two packages
// matches the one whose qualified name sorts first.
func (inj *Injector) Interface(name string) (reflect.Type, bool) {
	bindings := inj.registry.Bindings()
	for _, b := range bindings {
		if b.Interface.String() == name {
			return b.Interface, true
		}
	}
	for _, b := range bindings {
		if b.Interface.Name() == name {
			return b.Interface, true
		}
	}
	return nil, false
}

// IsRegistered reports whether iface has a binding.
func (inj *Injector) IsRegistered(iface reflect.Type) bool {
	return iface != nil && inj.registry.Has(iface)
}

// Resolve returns an instance for iface, constructing it and its
// dependencies as their lifetimes require. Every failure matches
// ErrResolution except ErrInterfaceNil and ErrInjectorClosed.
func (inj *Injector) Resolve(iface reflect.Type) (any, error) {
	if iface == nil {
		return nil, ErrInterfaceNil
	}
	if inj.store.IsClosed() {
		return nil, ErrInjectorClosed
	}

	start := time.Now()
	instance, err := inj.resolve(iface, newResolution())
	if err != nil {
		inj.logger.Debug("resolution failed", zap.Stringer("interface", iface), zap.Error(err))
		if inj.onError != nil {
			inj.onError(iface, err)
		}
		return nil, err
	}

	if inj.onResolved != nil {
		inj.onResolved(iface, instance, time.Since(start))
	}
	return instance, nil
}

// resolve is the recursive step. Errors from nested resolutions are
// returned unchanged so the caller sees the one naming the offending type.
func (inj *Injector) resolve(iface reflect.Type, res *resolution) (any, error) {
	if err := res.check(iface); err != nil {
		return nil, err
	}

	b, ok := inj.registry.Lookup(iface)
	if !ok {
		return nil, UnregisteredInterfaceError{Interface: iface}
	}

	res.push(iface)
	defer res.pop()

	start := time.Now()
	instance, outcome, err := inj.instantiate(b, res)
	inj.metrics.Resolved(iface.String(), b.Lifetime.String(), outcome, time.Since(start))

	return instance, err
}

// instantiate returns the instance for b and reports whether it came from
// the cache or was constructed.
func (inj *Injector) instantiate(b registry.Binding, res *resolution) (any, string, error) {
	impl := b.Implementation

	if instance, ok := impl.Instance(); ok {
		if err := checkProduced(b.Interface, instance); err != nil {
			return nil, metrics.OutcomeError, err
		}
		return instance, metrics.OutcomeHit, nil
	}

	if b.Lifetime == Singleton {
		if instance, ok := inj.store.Get(b.Interface); ok {
			return instance, metrics.OutcomeHit, nil
		}
	}

	// A concrete result type that cannot satisfy the interface fails before
	// any dependency is built.
	if impl.Out.Kind() != reflect.Interface && !impl.Out.AssignableTo(b.Interface) {
		return nil, metrics.OutcomeError, TypeMismatchError{Expected: b.Interface, Actual: impl.Out}
	}

	args, err := inj.arguments(b.Interface, impl, res)
	if err != nil {
		return nil, metrics.OutcomeError, err
	}

	if b.Lifetime == Scoped {
		instance, err := inj.construct(b, args)
		if err != nil {
			return nil, metrics.OutcomeError, err
		}
		return instance, metrics.OutcomeCreated, nil
	}

	// Arguments are resolved before the slot lock is taken, so the lock is
	// never held across recursion. A concurrent caller may still win the
	// slot; its instance is returned and ours is never built.
	instance, created, err := inj.store.GetOrCreate(b.Interface, func() (any, error) {
		return inj.construct(b, args)
	})
	if err != nil {
		if errors.Is(err, lifetime.ErrClosed) {
			err = ErrInjectorClosed
		}
		return nil, metrics.OutcomeError, err
	}
	if !created {
		return instance, metrics.OutcomeHit, nil
	}

	inj.logger.Debug("singleton constructed",
		zap.Stringer("interface", b.Interface),
		zap.Int("depth", res.depth()),
	)
	return instance, metrics.OutcomeCreated, nil
}

// arguments resolves the parameters of impl, built for owner, in order.
func (inj *Injector) arguments(owner reflect.Type, impl *Implementation, res *resolution) ([]any, error) {
	params, err := inj.describer.Describe(impl)
	if err != nil {
		return nil, ConstructorError{Interface: owner, Implementation: impl, Cause: fmt.Errorf("describe parameters: %w", err)}
	}

	args := make([]any, len(params))
	for i, p := range params {
		arg, err := inj.argument(owner, impl, p, res)
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}
	return args, nil
}

// argument resolves one parameter: a registered type is resolved, then a
// default is used, then the parameter fails as an unregistered interface or
// an unresolvable parameter depending on its kind.
func (inj *Injector) argument(owner reflect.Type, impl *Implementation, p Parameter, res *resolution) (any, error) {
	if p.Type != nil && inj.registry.Has(p.Type) {
		return inj.resolve(p.Type, res)
	}

	if p.HasDefault {
		return p.Default, nil
	}

	if p.Type != nil && p.Type.Kind() == reflect.Interface {
		return nil, UnregisteredInterfaceError{Interface: p.Type}
	}

	return nil, UnresolvableParameterError{
		Interface:      owner,
		Implementation: impl,
		Parameter:      p.Name,
		Type:           p.Type,
	}
}

// construct invokes the implementation and checks what it produced.
func (inj *Injector) construct(b registry.Binding, args []any) (any, error) {
	instance, err := b.Implementation.Invoke(args)
	if err != nil {
		if p, ok := err.(*reflection.PanicError); ok {
			return nil, ConstructorPanicError{
				Interface:      b.Interface,
				Implementation: b.Implementation,
				Panic:          p.Value,
				Stack:          p.Stack,
			}
		}
		return nil, ConstructorError{Interface: b.Interface, Implementation: b.Implementation, Cause: err}
	}

	inj.metrics.Constructed(b.Interface.String())

	if err := checkProduced(b.Interface, instance); err != nil {
		return nil, err
	}
	return instance, nil
}

// checkProduced verifies that instance can be used as iface. A nil result
// is accepted for interface and other nillable types.
func checkProduced(iface reflect.Type, instance any) error {
	if instance == nil {
		switch iface.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return nil
		}
		return TypeMismatchError{Expected: iface}
	}

	if actual := reflect.TypeOf(instance); !actual.AssignableTo(iface) {
		return TypeMismatchError{Expected: iface, Actual: actual}
	}
	return nil
}

// Close disposes every singleton the injector constructed, in reverse
// creation order. Singletons implementing io.Closer or
// Close(context.Context) error are closed; instances registered with
// RegisterInstance are left alone. After Close, Register and Resolve fail
// with ErrInjectorClosed. Close is idempotent.
func (inj *Injector) Close() error {
	if inj.store.IsClosed() {
		return nil
	}

	err := inj.store.Close()
	inj.logger.Debug("injector closed", zap.Int64("constructions", inj.store.Constructions()))

	if err != nil {
		return DisposalError{Errors: multierr.Errors(err)}
	}
	return nil
}

// Register binds I to constructor. See Injector.Register.
func Register[I any](inj *Injector, constructor any, opts ...RegisterOption) error {
	return inj.Register(reflect.TypeFor[I](), constructor, opts...)
}

// RegisterSingleton binds I to constructor with the Singleton lifetime.
func RegisterSingleton[I any](inj *Injector, constructor any, opts ...RegisterOption) error {
	return inj.Register(reflect.TypeFor[I](), constructor, append(slices.Clip(opts), WithLifetime(Singleton))...)
}

// RegisterScoped binds I to constructor with the Scoped lifetime.
func RegisterScoped[I any](inj *Injector, constructor any, opts ...RegisterOption) error {
	return inj.Register(reflect.TypeFor[I](), constructor, append(slices.Clip(opts), WithLifetime(Scoped))...)
}

// RegisterInstance binds I to a ready-made instance.
func RegisterInstance[I any](inj *Injector, instance I) error {
	return inj.RegisterInstance(reflect.TypeFor[I](), instance)
}

// Resolve returns an instance of I. See Injector.Resolve.
func Resolve[I any](inj *Injector) (I, error) {
	var zero I

	instance, err := inj.Resolve(reflect.TypeFor[I]())
	if err != nil {
		return zero, err
	}
	if instance == nil {
		return zero, nil
	}

	out, ok := instance.(I)
	if !ok {
		return zero, TypeMismatchError{Expected: reflect.TypeFor[I](), Actual: reflect.TypeOf(instance)}
	}
	return out, nil
}

// MustResolve is like Resolve but panics on error. It is intended for
// composition roots where a wiring error is fatal.
func MustResolve[I any](inj *Injector) I {
	out, err := Resolve[I](inj)
	if err != nil {
		panic(err)
	}
	return out
}
