package inject

import "github.com/junioryono/inject/internal/registry"

// Lifetime specifies how often a binding's implementation is constructed.
// Lifetimes marshal to and from text and JSON ("Singleton", "scoped", ...),
// so they can be named in configuration files.
type Lifetime = registry.Lifetime

// LifetimeError indicates an invalid lifetime value.
type LifetimeError = registry.LifetimeError

const (
	// Singleton specifies that one instance is created per Injector. The
	// instance is built on first resolution and reused afterwards. Scoped
	// dependencies captured by a singleton are frozen at that moment.
	Singleton = registry.Singleton

	// Scoped specifies that a fresh instance is constructed on every
	// resolution. This is the default for Register.
	Scoped = registry.Scoped
)
