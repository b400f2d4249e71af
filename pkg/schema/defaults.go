package schema

import (
	"github.com/goliatone/go-formbind/pkg/path"
	"github.com/goliatone/go-formbind/pkg/value"
)

// Default builds the initial model described by root. A node's own Default
// wins; objects otherwise collect the defaults of their properties, including
// properties contributed by branches that hold for those defaults. Nodes
// without any default yield nil.
func Default(root *Node) any {
	return defaultOf(root, 0)
}

// Node graphs assembled in code may be cyclic.
const maxDefaultDepth = 64

func defaultOf(n *Node, depth int) any {
	if n == nil || depth > maxDefaultDepth {
		return nil
	}
	if n.Default != nil {
		return value.Clone(n.Default)
	}
	if n.Type != TypeObject && len(n.Properties) == 0 {
		return nil
	}

	out := collectDefaults(n, nil, depth)
	if len(n.When) > 0 {
		// Branch conditions see the defaults gathered so far.
		resolved, err := resolveBranches(n, out, out, path.Root)
		if err == nil {
			out = collectDefaults(resolved, out, depth)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func collectDefaults(n *Node, into map[string]any, depth int) map[string]any {
	for _, name := range n.PropertyNames() {
		if _, done := into[name]; done {
			continue
		}
		if child := defaultOf(n.Properties[name], depth+1); child != nil {
			if into == nil {
				into = make(map[string]any)
			}
			into[name] = child
		}
	}
	return into
}
