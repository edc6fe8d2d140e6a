package inject

import (
	"reflect"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures an Injector.
type Option interface {
	apply(*injectorOptions)
}

// injectorOptions holds injector configuration.
type injectorOptions struct {
	logger     *zap.Logger
	describer  Describer
	registerer prometheus.Registerer

	// OnResolved is called after a successful top-level resolution
	onResolved func(iface reflect.Type, instance any, duration time.Duration)

	// OnError is called when a top-level resolution fails
	onError func(iface reflect.Type, err error)
}

// optionFunc adapts a function to Option.
type optionFunc func(*injectorOptions)

func (f optionFunc) apply(opts *injectorOptions) {
	f(opts)
}

// WithLogger sets the logger used for debug events. The default discards
// everything.
func WithLogger(logger *zap.Logger) Option {
	return optionFunc(func(opts *injectorOptions) {
		if logger != nil {
			opts.logger = logger
		}
	})
}

// WithDescriber replaces the constructor introspection used to list an
// implementation's parameters.
func WithDescriber(d Describer) Option {
	return optionFunc(func(opts *injectorOptions) {
		if d != nil {
			opts.describer = d
		}
	})
}

// WithMetrics registers resolution metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return optionFunc(func(opts *injectorOptions) {
		opts.registerer = reg
	})
}

// WithOnResolved sets a callback invoked after every successful Resolve.
func WithOnResolved(fn func(iface reflect.Type, instance any, duration time.Duration)) Option {
	return optionFunc(func(opts *injectorOptions) {
		opts.onResolved = fn
	})
}

// WithOnError sets a callback invoked when Resolve fails.
func WithOnError(fn func(iface reflect.Type, err error)) Option {
	return optionFunc(func(opts *injectorOptions) {
		opts.onError = fn
	})
}

// RegisterOption configures a single registration.
type RegisterOption interface {
	apply(*registerOptions)
}

// registerOptions holds registration configuration.
type registerOptions struct {
	lifetime   Lifetime
	paramNames []string
	defaults   []paramDefault
}

type paramDefault struct {
	name  string
	value any
}

// registerOptionFunc adapts a function to RegisterOption.
type registerOptionFunc func(*registerOptions)

func (f registerOptionFunc) apply(opts *registerOptions) {
	f(opts)
}

// WithLifetime sets the binding's lifetime. Bindings are Scoped by default.
func WithLifetime(lifetime Lifetime) RegisterOption {
	return registerOptionFunc(func(opts *registerOptions) {
		opts.lifetime = lifetime
	})
}

// WithParamNames names the constructor's parameters positionally. Names are
// used in error messages and by WithDefault; without them parameters are
// called arg0, arg1, ...
func WithParamNames(names ...string) RegisterOption {
	return registerOptionFunc(func(opts *registerOptions) {
		opts.paramNames = names
	})
}

// WithDefault supplies a value for the named parameter, used when its type
// has no binding. A nil value means the zero value of the parameter type.
func WithDefault(name string, value any) RegisterOption {
	return registerOptionFunc(func(opts *registerOptions) {
		opts.defaults = append(opts.defaults, paramDefault{name: name, value: value})
	})
}
