package inject

import (
	"errors"
	"fmt"
	"io"
	"reflect"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/junioryono/inject/internal/graph"
	"github.com/junioryono/inject/internal/registry"
)

// bindingNode adapts a binding to graph.Provider.
type bindingNode struct {
	binding registry.Binding
	deps    []reflect.Type
}

func (n bindingNode) GetType() reflect.Type           { return n.binding.Interface }
func (n bindingNode) GetDependencies() []reflect.Type { return n.deps }
func (n bindingNode) GetLifetime() string             { return n.binding.Lifetime.String() }

// buildGraph adds every binding to a dependency graph. Parameters satisfied
// by a default become edges only when their type is registered. Problems
// that can be seen without constructing anything are returned as
// ValidationErrors, combined with multierr.
func (inj *Injector) buildGraph() (*graph.DependencyGraph, error) {
	g := graph.NewDependencyGraph()

	var errs error
	for _, b := range inj.registry.Bindings() {
		node := bindingNode{binding: b}
		impl := b.Implementation

		if impl.Out != nil && impl.Out.Kind() != reflect.Interface && !impl.Out.AssignableTo(b.Interface) {
			errs = multierr.Append(errs, ValidationError{
				Interface: b.Interface,
				Cause:     TypeMismatchError{Expected: b.Interface, Actual: impl.Out},
			})
		}

		params, err := inj.describer.Describe(impl)
		if err != nil {
			errs = multierr.Append(errs, ValidationError{
				Interface: b.Interface,
				Cause:     fmt.Errorf("describe parameters: %w", err),
			})
		}

		for _, p := range params {
			if p.Type != nil && inj.registry.Has(p.Type) {
				node.deps = append(node.deps, p.Type)
				continue
			}
			if p.HasDefault {
				continue
			}

			var cause error = UnresolvableParameterError{
				Interface:      b.Interface,
				Implementation: impl,
				Parameter:      p.Name,
				Type:           p.Type,
			}
			if p.Type != nil {
				// Keep the missing type in the graph so it renders as unbound.
				node.deps = append(node.deps, p.Type)
				if p.Type.Kind() == reflect.Interface {
					cause = UnregisteredInterfaceError{Interface: p.Type}
				}
			}
			errs = multierr.Append(errs, ValidationError{Interface: b.Interface, Cause: cause})
		}

		if err := g.AddProvider(node); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return g, errs
}

// Validate checks every binding without constructing anything: each
// parameter must be registered or have a default, each concrete result type
// must satisfy its interface and the bindings must not form a cycle. All
// problems found are returned together; use multierr.Errors to split them.
func (inj *Injector) Validate() error {
	g, errs := inj.buildGraph()

	var cycle graph.CycleError
	if err := g.DetectCycles(); errors.As(err, &cycle) {
		errs = multierr.Append(errs, ValidationError{
			Interface: cycle.Path[0],
			Cause:     CircularDependencyError{Interface: cycle.Path[0], Chain: cycle.Path},
		})
	}

	if errs != nil {
		unbound := g.Unbound()
		names := make([]string, len(unbound))
		for i, n := range unbound {
			names[i] = n.Type.String()
		}

		inj.logger.Debug("validation failed",
			zap.Int("problems", len(multierr.Errors(errs))),
			zap.Int("types", g.Size()),
			zap.Strings("unbound", names),
		)
	}
	return errs
}

// Warmup constructs every singleton now, dependencies first, so that
// wiring errors and slow constructors surface at startup. It stops at the
// first failure.
func (inj *Injector) Warmup() error {
	if inj.store.IsClosed() {
		return ErrInjectorClosed
	}

	g, _ := inj.buildGraph()

	var cycle graph.CycleError
	if errors.As(g.DetectCycles(), &cycle) {
		return CircularDependencyError{Interface: cycle.Path[0], Chain: cycle.Path}
	}

	sorted, err := g.TopologicalSort()
	if err != nil {
		return err
	}

	for _, node := range sorted {
		n, ok := node.Provider.(bindingNode)
		if !ok || n.binding.Lifetime != Singleton || n.binding.Implementation.IsInstance() {
			continue
		}
		if _, err := inj.Resolve(node.Type); err != nil {
			return err
		}
	}
	return nil
}

// WriteDOT writes the binding graph in Graphviz DOT format. Types that are
// required but not registered appear as unbound nodes.
func (inj *Injector) WriteDOT(w io.Writer) error {
	g, _ := inj.buildGraph()
	return graph.NewVisualizer(g).WriteDOT(w)
}

// WriteText writes the binding graph as text grouped by dependency depth.
func (inj *Injector) WriteText(w io.Writer) error {
	g, _ := inj.buildGraph()
	return graph.NewVisualizer(g).WriteText(w)
}
