// Package inject provides a constructor-injection container for Go
// applications. Interfaces are bound to constructor functions, and resolving
// an interface builds its implementation by recursively resolving the
// constructor's parameters.
//
// # Overview
//
// The package provides:
//   - Two lifetimes: Singleton and Scoped
//   - Recursive constructor-parameter resolution
//   - Cycle detection with the full dependency chain
//   - Parameter defaults for values that are not bindings
//   - Startup validation, warmup and graph rendering
//   - Thread-safe resolution with at-most-once singleton construction
//
// # Basic Usage
//
// Create an injector, register bindings and resolve:
//
//	inj, err := inject.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer inj.Close()
//
//	inject.RegisterSingleton[Logger](inj, NewConsoleLogger)
//	inject.RegisterScoped[Clock](inj, NewSystemClock)
//	inject.RegisterScoped[Service](inj, NewService)
//
//	svc, err := inject.Resolve[Service](inj)
//
// # Lifetimes
//
//   - Singleton: one instance per Injector, built on first resolution
//   - Scoped: a fresh instance on every resolution
//
// A Scoped dependency of a Singleton is built once, together with the
// Singleton, and is shared through it from then on.
//
// # Constructors
//
// A constructor is any non-variadic function returning the implementation,
// optionally followed by an error:
//
//	func NewService(logger Logger, clock Clock) (*ServiceImpl, error)
//
// Each parameter is resolved in order. A registered type is resolved
// recursively. Otherwise a default given with WithDefault is used. A
// parameter of interface type without either fails with
// UnregisteredInterfaceError; any other type fails with
// UnresolvableParameterError.
//
//	inj.Register(reflect.TypeFor[Server](), NewServer,
//	    inject.WithParamNames("logger", "port"),
//	    inject.WithDefault("port", 8080),
//	)
//
// # Errors
//
// Resolution errors are typed and all match ErrResolution:
//
//	_, err := inject.Resolve[Service](inj)
//	var cycle inject.CircularDependencyError
//	if errors.As(err, &cycle) {
//	    fmt.Println(cycle.Chain)
//	}
//
// Errors from nested resolutions are returned unchanged, so the error names
// the type that actually failed.
//
// # Validation
//
// Validate checks every binding without constructing anything and reports
// all problems at once. Warmup constructs all singletons in dependency
// order. WriteDOT and WriteText render the binding graph.
//
// # Modules
//
// Related bindings can be grouped and installed together:
//
//	var StorageModule = inject.NewModule("storage",
//	    inject.Bind[Database](NewPostgres, inject.WithLifetime(inject.Singleton)),
//	    inject.Bind[UserRepository](NewUserRepository),
//	)
//
//	err := inj.Install(StorageModule)
//
// # Observability
//
// WithLogger attaches a zap logger for debug events, WithMetrics registers
// Prometheus collectors, and WithOnResolved and WithOnError install
// callbacks for top-level resolutions.
package inject
