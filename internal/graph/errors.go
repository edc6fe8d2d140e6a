package graph

import (
	"fmt"
	"reflect"
	"strings"
)

// CycleError reports a dependency cycle found in the graph. Path lists the
// nodes from the first occurrence up to, but not including, the repeat.
type CycleError struct {
	Path []reflect.Type
}

func (e CycleError) Error() string {
	var b strings.Builder
	b.WriteString("dependency cycle: ")
	for _, t := range e.Path {
		b.WriteString(fmt.Sprintf("%v -> ", t))
	}
	if len(e.Path) > 0 {
		b.WriteString(fmt.Sprintf("%v", e.Path[0]))
	}
	return b.String()
}
