package inject

import (
	"github.com/junioryono/inject/internal/reflection"
	"github.com/junioryono/inject/internal/registry"
)

// Binding associates an interface type with its implementation and lifetime.
type Binding = registry.Binding

// Implementation is an analysed implementation: a constructor function or a
// ready-made instance, with its parameters in declaration order.
type Implementation = reflection.Constructor

// Parameter describes one constructor argument.
type Parameter = reflection.Parameter

// Describer lists the parameters an implementation needs, in the order they
// are passed to it. The default describer reports what reflection found at
// registration, including names and defaults set with WithParamNames and
// WithDefault.
type Describer interface {
	Describe(impl *Implementation) ([]Parameter, error)
}

// DescriberFunc adapts a function to Describer.
type DescriberFunc func(impl *Implementation) ([]Parameter, error)

func (f DescriberFunc) Describe(impl *Implementation) ([]Parameter, error) {
	return f(impl)
}

type reflectDescriber struct{}

func (reflectDescriber) Describe(impl *Implementation) ([]Parameter, error) {
	return impl.Describe(), nil
}
