package inject

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/junioryono/inject/internal/reflection"
)

// ========================================
// Core Error Values (Sentinel Errors)
// ========================================

var (
	// ErrResolution is matched by every error Resolve can return for a
	// misconfigured or failing graph: errors.Is(err, ErrResolution).
	ErrResolution = errors.New("resolution failed")

	// ErrInjectorClosed is returned once Close has been called.
	ErrInjectorClosed = errors.New("injector has been closed")

	// ErrInterfaceNil is returned when a nil reflect.Type is used as a key.
	ErrInterfaceNil = errors.New("interface type cannot be nil")

	// Registration errors, wrapped in RegistrationError.
	ErrConstructorNil                 = reflection.ErrConstructorNil
	ErrConstructorNotFunction         = reflection.ErrConstructorNotFunction
	ErrConstructorNoReturn            = reflection.ErrConstructorNoReturn
	ErrConstructorTooManyReturns      = reflection.ErrConstructorTooManyReturns
	ErrConstructorInvalidSecondReturn = reflection.ErrConstructorInvalidSecondReturn
	ErrConstructorVariadic            = reflection.ErrConstructorVariadic
	ErrInstanceNil                    = reflection.ErrInstanceNil
)

var (
	_ error = UnregisteredInterfaceError{}
	_ error = CircularDependencyError{}
	_ error = UnresolvableParameterError{}
	_ error = ConstructorError{}
	_ error = ConstructorPanicError{}
	_ error = TypeMismatchError{}
	_ error = RegistrationError{}
	_ error = ValidationError{}
	_ error = DisposalError{}
	_ error = LifetimeError{}
)

// ========================================
// Resolution Errors
// ========================================

// UnregisteredInterfaceError indicates that no binding exists for an
// interface, either the one passed to Resolve or one of the parameters
// needed to construct it.
type UnregisteredInterfaceError struct {
	Interface reflect.Type
}

func (e UnregisteredInterfaceError) Error() string {
	return fmt.Sprintf("no implementation registered for %s", formatType(e.Interface))
}

func (e UnregisteredInterfaceError) Is(target error) bool {
	return target == ErrResolution
}

// CircularDependencyError indicates that resolving Interface required
// Interface again. Chain lists the interfaces in encounter order from the
// first occurrence up to, but not including, the repeat: A -> B -> C -> A is
// reported as [A B C].
type CircularDependencyError struct {
	Interface reflect.Type
	Chain     []reflect.Type
}

func (e CircularDependencyError) Error() string {
	var b strings.Builder
	b.WriteString("circular dependency detected:\n\n")

	for _, t := range e.Chain {
		b.WriteString(fmt.Sprintf("    %s\n", formatType(t)))
		b.WriteString("      ↓\n")
	}
	b.WriteString(fmt.Sprintf("    %s (cycle)\n", formatType(e.Interface)))

	b.WriteString("\nTo resolve this:\n")
	b.WriteString("  • Depend on a narrower interface to break the cycle\n")
	b.WriteString("  • Restructure to remove the circular relationship\n")

	return b.String()
}

func (e CircularDependencyError) Is(target error) bool {
	return target == ErrResolution
}

// UnresolvableParameterError indicates that a constructor parameter is
// neither a registered type nor given a default value.
type UnresolvableParameterError struct {
	Interface      reflect.Type
	Implementation *Implementation
	Parameter      string
	Type           reflect.Type
}

func (e UnresolvableParameterError) Error() string {
	return fmt.Sprintf("cannot resolve parameter %q (%s) of %s for %s: type is not registered and has no default",
		e.Parameter, formatType(e.Type), e.Implementation, formatType(e.Interface))
}

func (e UnresolvableParameterError) Is(target error) bool {
	return target == ErrResolution
}

// ConstructorError wraps an error returned by a constructor.
type ConstructorError struct {
	Interface      reflect.Type
	Implementation *Implementation
	Cause          error
}

func (e ConstructorError) Error() string {
	return fmt.Sprintf("constructor %s for %s failed: %v", e.Implementation, formatType(e.Interface), e.Cause)
}

func (e ConstructorError) Unwrap() error {
	return e.Cause
}

func (e ConstructorError) Is(target error) bool {
	return target == ErrResolution
}

// ConstructorPanicError indicates a constructor panicked during invocation.
// It captures the panic value and stack trace for debugging.
type ConstructorPanicError struct {
	Interface      reflect.Type
	Implementation *Implementation
	Panic          any
	Stack          []byte
}

func (e ConstructorPanicError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("constructor %s for %s panicked: %v\n",
		e.Implementation, formatType(e.Interface), e.Panic))

	b.WriteString("\nTo resolve this:\n")
	b.WriteString("  • Check for nil pointer dereferences in your constructor\n")
	b.WriteString("  • Move panic-prone initialization to a separate Init() method\n")

	if len(e.Stack) > 0 {
		b.WriteString("\nStack trace:\n")
		b.Write(e.Stack)
	}

	return b.String()
}

func (e ConstructorPanicError) Is(target error) bool {
	return target == ErrResolution
}

// TypeMismatchError indicates that the value an implementation produced
// cannot be used as the interface it was bound to.
type TypeMismatchError struct {
	Expected reflect.Type
	Actual   reflect.Type
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("implementation does not satisfy interface: expected %s, got %s",
		formatType(e.Expected), formatType(e.Actual))
}

func (e TypeMismatchError) Is(target error) bool {
	return target == ErrResolution
}

// ========================================
// Registration, Validation and Disposal Errors
// ========================================

// RegistrationError wraps errors during registration. Only malformed
// constructors are rejected; dependencies are checked when resolved.
type RegistrationError struct {
	Interface reflect.Type
	Cause     error
}

func (e RegistrationError) Error() string {
	return fmt.Sprintf("failed to register %s: %v", formatType(e.Interface), e.Cause)
}

func (e RegistrationError) Unwrap() error {
	return e.Cause
}

// ValidationError reports a problem found by Validate for one binding.
type ValidationError struct {
	Interface reflect.Type
	Cause     error
}

func (e ValidationError) Error() string {
	if e.Interface != nil {
		return fmt.Sprintf("%s: %v", formatType(e.Interface), e.Cause)
	}
	return e.Cause.Error()
}

func (e ValidationError) Unwrap() error {
	return e.Cause
}

// DisposalError aggregates disposal errors
type DisposalError struct {
	Errors []error
}

func (e DisposalError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("disposal failed: %v", e.Errors[0])
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("disposal failed with %d errors:", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("\n  %d. %v", i+1, err))
	}
	return sb.String()
}

func (e DisposalError) Unwrap() []error {
	return e.Errors
}

// formatType formats a reflect.Type for error messages.
func formatType(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind() {
	case reflect.Pointer:
		// Format pointers as *Type instead of *package.Type
		elem := t.Elem()
		if elem.PkgPath() != "" && elem.Name() != "" {
			return "*" + elem.Name()
		}
		return t.String()
	case reflect.Slice:
		elem := t.Elem()
		if elem.PkgPath() != "" && elem.Name() != "" {
			return "[]" + elem.Name()
		}
		return t.String()
	case reflect.Map:
		key := t.Key()
		elem := t.Elem()
		keyStr := key.Name()
		if keyStr == "" {
			keyStr = key.String()
		}
		elemStr := elem.Name()
		if elemStr == "" {
			elemStr = elem.String()
		}
		return "map[" + keyStr + "]" + elemStr
	case reflect.Func:
		return t.String()
	default:
		// Interfaces, structs and basic types use the short name when they have one
		if t.Name() != "" {
			return t.Name()
		}
		return t.String()
	}
}
