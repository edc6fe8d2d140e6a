package reflection

import (
	"errors"
	"fmt"
	"reflect"
	"runtime/debug"
	"strings"
	"sync"
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

// Constructor analysis errors.
var (
	ErrConstructorNil                 = errors.New("constructor cannot be nil")
	ErrConstructorNotFunction         = errors.New("constructor must be a function")
	ErrConstructorNoReturn            = errors.New("constructor must return at least one value")
	ErrConstructorTooManyReturns      = errors.New("constructor must return at most 2 values")
	ErrConstructorInvalidSecondReturn = errors.New("constructor's second return value must be error")
	ErrConstructorVariadic            = errors.New("variadic constructors are not supported")
	ErrInstanceNil                    = errors.New("instance cannot be nil")
	ErrArgumentCount                  = errors.New("argument count does not match constructor")
)

// Parameter describes one constructor argument in declaration order.
type Parameter struct {
	Name       string
	Type       reflect.Type
	Index      int
	Default    any
	HasDefault bool
}

// String renders the parameter as "name type".
func (p Parameter) String() string {
	if p.Type == nil {
		return p.Name
	}
	return p.Name + " " + p.Type.String()
}

// Constructor is an analysed implementation: either a constructor function or
// a ready-made instance.
type Constructor struct {
	// Value is the constructor function. It is invalid for instances.
	Value reflect.Value

	// Type is the function type, nil for instances.
	Type reflect.Type

	// Out is the type the constructor produces.
	Out reflect.Type

	// Parameters lists the arguments in declaration order.
	Parameters []Parameter

	HasErrorReturn bool

	instance reflect.Value
}

// IsInstance reports whether the constructor wraps a pre-built value.
func (c *Constructor) IsInstance() bool {
	return c.instance.IsValid()
}

// Instance returns the pre-built value and true, or nil and false for a
// constructor function.
func (c *Constructor) Instance() (any, bool) {
	if !c.instance.IsValid() {
		return nil, false
	}
	return c.instance.Interface(), true
}

// Describe returns a copy of the parameters so callers cannot mutate the
// analysed constructor.
func (c *Constructor) Describe() []Parameter {
	params := make([]Parameter, len(c.Parameters))
	copy(params, c.Parameters)
	return params
}

// String renders the implementation for error messages.
func (c *Constructor) String() string {
	if c == nil {
		return "<nil>"
	}
	if c.IsInstance() {
		return "instance of " + c.Out.String()
	}
	if c.Type == nil {
		return "<invalid>"
	}
	return c.Type.String()
}

// SetParamNames renames the parameters positionally.
func (c *Constructor) SetParamNames(names ...string) error {
	if len(names) != len(c.Parameters) {
		return fmt.Errorf("%w: got %d names for %d parameters", ErrArgumentCount, len(names), len(c.Parameters))
	}
	for i, name := range names {
		c.Parameters[i].Name = name
	}
	return nil
}

// SetDefault attaches a default value to the named parameter. A nil value
// means the zero value of the parameter type.
func (c *Constructor) SetDefault(name string, value any) error {
	for i := range c.Parameters {
		p := &c.Parameters[i]
		if p.Name != name {
			continue
		}
		if value != nil && !reflect.TypeOf(value).AssignableTo(p.Type) {
			return fmt.Errorf("default for parameter %q: %s is not assignable to %s", name, reflect.TypeOf(value), p.Type)
		}
		p.Default = value
		p.HasDefault = true
		return nil
	}

	names := make([]string, len(c.Parameters))
	for i, p := range c.Parameters {
		names[i] = p.Name
	}
	return fmt.Errorf("no parameter named %q (have: %s)", name, strings.Join(names, ", "))
}

// Invoke calls the constructor with one argument per parameter. Constructor
// errors are returned unchanged; panics are recovered as *PanicError.
func (c *Constructor) Invoke(args []any) (result any, err error) {
	if instance, ok := c.Instance(); ok {
		return instance, nil
	}

	if len(args) != c.Type.NumIn() {
		return nil, fmt.Errorf("%w: %s takes %d, got %d", ErrArgumentCount, c.Type, c.Type.NumIn(), len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		want := c.Type.In(i)
		if arg == nil {
			in[i] = reflect.Zero(want)
			continue
		}

		v := reflect.ValueOf(arg)
		if !v.Type().AssignableTo(want) {
			return nil, fmt.Errorf("argument %d: %s is not assignable to %s", i, v.Type(), want)
		}
		in[i] = v
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()

	results := c.Value.Call(in)

	if c.HasErrorReturn {
		if last := results[len(results)-1]; !last.IsNil() {
			return nil, last.Interface().(error)
		}
	}

	if c.Out == nil {
		return nil, nil
	}

	return results[0].Interface(), nil
}

// PanicError carries a value recovered from a panicking constructor.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("constructor panicked: %v", e.Value)
}

// Analyzer performs reflection-based analysis of constructors.
// It caches analysis results per function pointer.
type Analyzer struct {
	mu    sync.RWMutex
	cache map[uintptr]*Constructor
}

// New creates a new Analyzer.
func New() *Analyzer {
	return &Analyzer{
		cache: make(map[uintptr]*Constructor),
	}
}

// Analyze analyses a constructor function. The returned Constructor is a
// private copy; renaming its parameters does not affect other registrations
// of the same function.
func (a *Analyzer) Analyze(constructor any) (*Constructor, error) {
	if constructor == nil {
		return nil, ErrConstructorNil
	}

	val := reflect.ValueOf(constructor)
	typ := val.Type()

	if typ.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w, got %s", ErrConstructorNotFunction, typ)
	}
	if val.IsNil() {
		return nil, ErrConstructorNil
	}

	key := val.Pointer()

	a.mu.RLock()
	cached, ok := a.cache[key]
	a.mu.RUnlock()

	// Closures share a code pointer, so the type has to match too.
	if ok && cached.Type == typ {
		return cached.clone(val), nil
	}

	info, err := analyzeFunc(val, typ)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.cache[key] = info
	a.mu.Unlock()

	return info.clone(val), nil
}

// Callable analyses an arbitrary function whose parameters should be
// injected. Its results are discarded except for a trailing error.
func (a *Analyzer) Callable(fn any) (*Constructor, error) {
	if fn == nil {
		return nil, ErrConstructorNil
	}

	val := reflect.ValueOf(fn)
	typ := val.Type()
	if typ.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w, got %s", ErrConstructorNotFunction, typ)
	}
	if val.IsNil() {
		return nil, ErrConstructorNil
	}
	if typ.IsVariadic() {
		return nil, ErrConstructorVariadic
	}

	c := &Constructor{
		Value:          val,
		Type:           typ,
		HasErrorReturn: typ.NumOut() > 0 && typ.Out(typ.NumOut()-1) == errType,
		Parameters:     parameters(typ),
	}
	return c, nil
}

// Instance wraps a pre-built value as a parameterless constructor.
func (a *Analyzer) Instance(instance any) (*Constructor, error) {
	if instance == nil {
		return nil, ErrInstanceNil
	}

	v := reflect.ValueOf(instance)
	if isNillable(v.Kind()) && v.IsNil() {
		return nil, ErrInstanceNil
	}

	return &Constructor{
		Out:        v.Type(),
		Parameters: []Parameter{},
		instance:   v,
	}, nil
}

func analyzeFunc(val reflect.Value, typ reflect.Type) (*Constructor, error) {
	if typ.IsVariadic() {
		return nil, ErrConstructorVariadic
	}

	switch typ.NumOut() {
	case 0:
		return nil, ErrConstructorNoReturn
	case 1:
	case 2:
		if typ.Out(1) != errType {
			return nil, ErrConstructorInvalidSecondReturn
		}
	default:
		return nil, ErrConstructorTooManyReturns
	}

	return &Constructor{
		Value:          val,
		Type:           typ,
		Out:            typ.Out(0),
		HasErrorReturn: typ.NumOut() == 2,
		Parameters:     parameters(typ),
	}, nil
}

func parameters(typ reflect.Type) []Parameter {
	params := make([]Parameter, typ.NumIn())
	for i := 0; i < typ.NumIn(); i++ {
		params[i] = Parameter{
			Name:  fmt.Sprintf("arg%d", i),
			Type:  typ.In(i),
			Index: i,
		}
	}
	return params
}

func (c *Constructor) clone(val reflect.Value) *Constructor {
	cp := *c
	cp.Value = val
	cp.Parameters = c.Describe()
	return &cp
}

func isNillable(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}
