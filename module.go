package inject

import (
	"fmt"
	"reflect"
)

// Module groups related registrations so they can be installed together.
//
// Example:
//
//	var StorageModule = inject.NewModule("storage",
//	    inject.Bind[Database](NewPostgres, inject.WithLifetime(inject.Singleton)),
//	    inject.Bind[UserRepository](NewUserRepository),
//	)
//
//	var AppModule = inject.NewModule("app",
//	    StorageModule,
//	    inject.BindInstance[*Config](cfg),
//	    inject.Bind[Service](NewService),
//	)
//
//	err := inj.Install(AppModule)
type Module func(inj *Injector) error

// ModuleError wraps errors from module registration.
type ModuleError struct {
	Module string
	Cause  error
}

func (e ModuleError) Error() string {
	return fmt.Sprintf("module %q: %v", e.Module, e.Cause)
}

func (e ModuleError) Unwrap() error {
	return e.Cause
}

// NewModule creates a named module that applies the given modules in order.
// Nil entries are skipped. The first failure stops the module.
func NewModule(name string, modules ...Module) Module {
	return func(inj *Injector) error {
		for _, m := range modules {
			if m == nil {
				continue
			}

			if err := m(inj); err != nil {
				return ModuleError{Module: name, Cause: err}
			}
		}

		return nil
	}
}

// Bind creates a Module that registers constructor for I.
func Bind[I any](constructor any, opts ...RegisterOption) Module {
	return func(inj *Injector) error {
		return inj.Register(reflect.TypeFor[I](), constructor, opts...)
	}
}

// BindInstance creates a Module that registers a ready-made instance for I.
func BindInstance[I any](instance I) Module {
	return func(inj *Injector) error {
		return RegisterInstance(inj, instance)
	}
}

// Install applies modules in order, stopping at the first error.
func (inj *Injector) Install(modules ...Module) error {
	for _, m := range modules {
		if m == nil {
			continue
		}
		if err := m(inj); err != nil {
			return err
		}
	}
	return nil
}
