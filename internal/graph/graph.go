package graph

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Provider defines what the graph needs to know about a binding.
type Provider interface {
	// GetType returns the interface type the provider is bound to
	GetType() reflect.Type

	// GetDependencies returns the parameter types that must be resolved,
	// in declaration order
	GetDependencies() []reflect.Type

	// GetLifetime returns a display name for the provider's lifetime
	GetLifetime() string
}

// DependencyGraph manages the dependency relationships between bindings.
// It provides cycle detection, topological sorting, and dependency analysis.
type DependencyGraph struct {
	mu    sync.RWMutex
	nodes map[reflect.Type]*Node
	edges map[reflect.Type][]reflect.Type // adjacency list representation
}

// Node represents a type in the dependency graph
type Node struct {
	Type     reflect.Type
	Provider Provider // nil when the type is referenced but not bound

	// Graph metadata
	InDegree  int // number of dependents
	OutDegree int // number of dependencies
	Depth     int // longest dependency chain below this node

	Dependencies []reflect.Type // types this node depends on
	Dependents   []reflect.Type // types that depend on this node
}

// NewDependencyGraph creates a new dependency graph
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes: make(map[reflect.Type]*Node),
		edges: make(map[reflect.Type][]reflect.Type),
	}
}

// AddProvider adds a provider to the graph, replacing any provider for the
// same type. Cycles are not rejected here; call DetectCycles.
func (g *DependencyGraph) AddProvider(provider Provider) error {
	if provider == nil {
		return fmt.Errorf("provider cannot be nil")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	key := provider.GetType()
	node := g.ensureNode(key)
	node.Provider = provider

	deps := provider.GetDependencies()
	edges := make([]reflect.Type, 0, len(deps))
	for _, dep := range deps {
		g.ensureNode(dep)
		edges = append(edges, dep)
	}
	g.edges[key] = edges

	g.updateDegrees()
	return nil
}

func (g *DependencyGraph) ensureNode(t reflect.Type) *Node {
	node, ok := g.nodes[t]
	if !ok {
		node = &Node{Type: t}
		g.nodes[t] = node
	}
	return node
}

// updateDegrees recalculates in/out degrees for all nodes
func (g *DependencyGraph) updateDegrees() {
	for _, node := range g.nodes {
		node.InDegree = 0
		node.OutDegree = 0
		node.Dependencies = nil
		node.Dependents = nil
	}

	for from, tos := range g.edges {
		fromNode := g.nodes[from]
		fromNode.OutDegree = len(tos)
		fromNode.Dependencies = append([]reflect.Type(nil), tos...)

		for _, to := range tos {
			toNode := g.nodes[to]
			toNode.InDegree++
			toNode.Dependents = append(toNode.Dependents, from)
		}
	}

	for _, node := range g.nodes {
		sortTypes(node.Dependents)
	}
}

// TopologicalSort returns nodes in dependency order (dependencies first).
func (g *DependencyGraph) TopologicalSort() ([]*Node, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	// Kahn's algorithm on remaining dependency counts.
	remaining := make(map[reflect.Type]int, len(g.nodes))
	queue := make([]reflect.Type, 0)
	for _, key := range g.sortedKeys() {
		remaining[key] = g.nodes[key].OutDegree
		if remaining[key] == 0 {
			queue = append(queue, key)
		}
	}

	result := make([]*Node, 0, len(g.nodes))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		node := g.nodes[current]
		result = append(result, node)

		for _, dependent := range node.Dependents {
			remaining[dependent]--
			if remaining[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(result) != len(g.nodes) {
		return nil, fmt.Errorf("circular dependency detected: graph contains %d nodes but only %d could be sorted",
			len(g.nodes), len(result))
	}

	return result, nil
}

// DetectCycles returns a CycleError for the first cycle found by a
// depth-first walk in type-name order, or nil when the graph is acyclic.
func (g *DependencyGraph) DetectCycles() error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	visited := make(map[reflect.Type]bool)
	for _, key := range g.sortedKeys() {
		if visited[key] {
			continue
		}
		if path := g.findCycle(key, visited, nil, make(map[reflect.Type]int)); path != nil {
			return CycleError{Path: path}
		}
	}
	return nil
}

// findCycle walks from current with path holding the active chain. onPath
// maps each type on the chain to its index so the cycle can be cut out.
func (g *DependencyGraph) findCycle(
	current reflect.Type,
	visited map[reflect.Type]bool,
	path []reflect.Type,
	onPath map[reflect.Type]int,
) []reflect.Type {
	if i, ok := onPath[current]; ok {
		return append([]reflect.Type(nil), path[i:]...)
	}
	if visited[current] {
		return nil
	}

	onPath[current] = len(path)
	path = append(path, current)

	for _, dep := range g.edges[current] {
		if cycle := g.findCycle(dep, visited, path, onPath); cycle != nil {
			return cycle
		}
	}

	delete(onPath, current)
	visited[current] = true
	return nil
}

// Unbound returns the referenced types that have no provider, sorted by name.
func (g *DependencyGraph) Unbound() []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []*Node
	for _, key := range g.sortedKeys() {
		if node := g.nodes[key]; node.Provider == nil {
			out = append(out, node)
		}
	}
	return out
}

// Size returns the number of nodes in the graph
func (g *DependencyGraph) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// CalculateDepths assigns each node the length of its longest dependency
// chain. Nodes on a cycle keep depth -1.
func (g *DependencyGraph) CalculateDepths() {
	sorted, err := g.TopologicalSort()

	g.mu.Lock()
	defer g.mu.Unlock()

	for _, node := range g.nodes {
		node.Depth = -1
	}
	if err != nil {
		return
	}

	for _, node := range sorted {
		node.Depth = 0
		for _, dep := range node.Dependencies {
			if d := g.nodes[dep].Depth + 1; d > node.Depth {
				node.Depth = d
			}
		}
	}
}

// sortedKeys returns node keys ordered by type name; callers hold g.mu.
func (g *DependencyGraph) sortedKeys() []reflect.Type {
	keys := make([]reflect.Type, 0, len(g.nodes))
	for key := range g.nodes {
		keys = append(keys, key)
	}
	sortTypes(keys)
	return keys
}

func sortTypes(types []reflect.Type) {
	sort.Slice(types, func(i, j int) bool {
		return types[i].String() < types[j].String()
	})
}

// String returns a string representation of the node
func (n *Node) String() string {
	return fmt.Sprintf("Node{%v, in:%d, out:%d, depth:%d}",
		n.Type, n.InDegree, n.OutDegree, n.Depth)
}
