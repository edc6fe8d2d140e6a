package graph

import (
	"fmt"
	"io"
	"reflect"
	"strings"
)

// Visualizer provides methods to visualize the dependency graph
type Visualizer struct {
	graph *DependencyGraph
}

// NewVisualizer creates a new graph visualizer
func NewVisualizer(graph *DependencyGraph) *Visualizer {
	return &Visualizer{graph: graph}
}

// WriteDOT writes the graph in Graphviz DOT format. Output is ordered by
// type name so it is stable across runs.
func (v *Visualizer) WriteDOT(w io.Writer) error {
	v.graph.mu.RLock()
	defer v.graph.mu.RUnlock()

	var b strings.Builder
	b.WriteString("digraph dependencies {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box];\n")

	keys := v.graph.sortedKeys()
	ids := make(map[reflect.Type]string, len(keys))
	for i, key := range keys {
		id := fmt.Sprintf("n%d", i)
		ids[key] = id

		node := v.graph.nodes[key]
		fmt.Fprintf(&b, "  %s [label=\"%s\", fillcolor=\"%s\", style=filled];\n",
			id, v.formatNodeLabel(node), v.getNodeColor(node))
	}

	for _, from := range keys {
		for _, to := range v.graph.edges[from] {
			fmt.Fprintf(&b, "  %s -> %s;\n", ids[from], ids[to])
		}
	}

	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteText writes a text representation of the graph grouped by depth,
// followed by the referenced types that have no provider.
func (v *Visualizer) WriteText(w io.Writer) error {
	v.graph.CalculateDepths()
	unbound := v.graph.Unbound()

	v.graph.mu.RLock()
	defer v.graph.mu.RUnlock()

	var b strings.Builder
	b.WriteString("Dependency Graph:\n")
	b.WriteString("=================\n\n")

	levels := make(map[int][]*Node)
	maxDepth := -1
	for _, key := range v.graph.sortedKeys() {
		node := v.graph.nodes[key]
		levels[node.Depth] = append(levels[node.Depth], node)
		if node.Depth > maxDepth {
			maxDepth = node.Depth
		}
	}

	for depth := 0; depth <= maxDepth; depth++ {
		nodes, ok := levels[depth]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "Level %d:\n", depth)
		b.WriteString("--------\n")
		for _, node := range nodes {
			v.writeNodeDetails(&b, node, "  ")
		}
		b.WriteString("\n")
	}

	if cyclic, ok := levels[-1]; ok {
		b.WriteString("Nodes in Cycles:\n")
		b.WriteString("----------------\n")
		for _, node := range cyclic {
			v.writeNodeDetails(&b, node, "  ")
		}
		b.WriteString("\n")
	}

	if len(unbound) > 0 {
		b.WriteString("Unbound Types:\n")
		b.WriteString("--------------\n")
		for _, node := range unbound {
			fmt.Fprintf(&b, "  %v (required by %s)\n", node.Type, joinTypes(node.Dependents))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Total nodes: %d\n", len(v.graph.nodes))

	_, err := io.WriteString(w, b.String())
	return err
}

// formatNodeLabel creates a label for a node
func (v *Visualizer) formatNodeLabel(node *Node) string {
	typeStr := node.Type.String()

	// Drop the package qualifier for readability
	if i := strings.LastIndex(typeStr, "."); i >= 0 {
		head := typeStr[:i]
		prefixLen := len(head) - len(strings.TrimLeft(head, "*[]"))
		typeStr = head[:prefixLen] + typeStr[i+1:]
	}

	if node.Provider == nil {
		return fmt.Sprintf("%s\\n(unbound)", typeStr)
	}
	return fmt.Sprintf("%s\\n%s", typeStr, node.Provider.GetLifetime())
}

// getNodeColor determines the color for a node based on its lifetime
func (v *Visualizer) getNodeColor(node *Node) string {
	if node.Provider == nil {
		return "lightgray"
	}

	switch node.Provider.GetLifetime() {
	case "Singleton":
		return "lightblue"
	case "Scoped":
		return "lightgreen"
	default:
		return "white"
	}
}

// writeNodeDetails writes detailed information about a node
func (v *Visualizer) writeNodeDetails(b *strings.Builder, node *Node, indent string) {
	fmt.Fprintf(b, "%s%v\n", indent, node.Type)

	if node.Provider != nil {
		fmt.Fprintf(b, "%s  Lifetime: %s\n", indent, node.Provider.GetLifetime())
	} else {
		fmt.Fprintf(b, "%s  Unbound\n", indent)
	}

	if len(node.Dependencies) > 0 {
		fmt.Fprintf(b, "%s  Dependencies: [%s]\n", indent, joinTypes(node.Dependencies))
	}
}

func joinTypes(types []reflect.Type) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return strings.Join(names, ", ")
}
