package schema

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/goliatone/go-formbind/pkg/condition"
	"github.com/goliatone/go-formbind/pkg/path"
	"github.com/goliatone/go-formbind/pkg/value"
)

// ErrNoSchemaNode reports a path with no matching schema node.
var ErrNoSchemaNode = errors.New("schema: no schema node")

// ResolutionError describes a failed lookup. Err is set when a branch
// condition could not be evaluated; otherwise the error matches
// ErrNoSchemaNode.
type ResolutionError struct {
	Path   path.Path
	Reason string
	Err    error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("schema: resolve %s: %s: %v", display(e.Path), e.Reason, e.Err)
	}
	return fmt.Sprintf("schema: resolve %s: %s", display(e.Path), e.Reason)
}

// display quotes p for messages; the empty path reads as (root).
func display(p path.Path) string {
	if len(p) == 0 {
		return "(root)"
	}
	return strconv.Quote(p.String())
}

func (e *ResolutionError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNoSchemaNode
}

var rules = condition.New()

// Lookup walks p from root and returns the node describing it. Conditional
// branches are folded in at every level, evaluated against the model value at
// that level, so a property that only exists under a branch resolves only
// while the branch is active.
func Lookup(root *Node, model any, p path.Path) (*Node, error) {
	if root == nil {
		return nil, &ResolutionError{Path: p, Reason: "schema is empty"}
	}
	current, err := resolveBranches(root, model, model, path.Root)
	if err != nil {
		return nil, err
	}

	for i, seg := range p {
		prefix := p[:i+1]
		next := childOf(current, seg)
		if next == nil {
			return nil, &ResolutionError{
				Path:   p,
				Reason: fmt.Sprintf("%s has no child %q", display(p[:i]), seg.String()),
			}
		}
		local, _ := value.Get(model, prefix)
		current, err = resolveBranches(next, local, model, prefix)
		if err != nil {
			return nil, err
		}
	}
	return current, nil
}

// LookupString is Lookup for textual paths.
func LookupString(root *Node, model any, text string) (*Node, error) {
	return Lookup(root, model, path.Parse(text))
}

func childOf(n *Node, seg path.Segment) *Node {
	if n == nil {
		return nil
	}
	if idx, ok := seg.Position(); ok {
		if idx < len(n.PrefixItems) && n.PrefixItems[idx] != nil {
			return n.PrefixItems[idx]
		}
		if n.Items != nil {
			return n.Items
		}
	}
	if child, ok := n.Property(seg.Key()); ok {
		return child
	}
	return nil
}

// resolveBranches returns n with every active branch merged in and When
// cleared. Branches contributed by an active branch are evaluated as well.
func resolveBranches(n *Node, local, root any, at path.Path) (*Node, error) {
	if n == nil || len(n.When) == 0 {
		return n, nil
	}
	out := n.Clone()
	pending := out.When
	out.When = nil

	for i := 0; i < len(pending); i++ {
		branch := pending[i]
		ok, err := rules.Eval(branch.If, condition.Scope{Local: local, Root: root})
		if err != nil {
			return nil, &ResolutionError{Path: at, Reason: fmt.Sprintf("condition %q", branch.If), Err: err}
		}
		chosen := branch.Else
		if ok {
			chosen = branch.Then
		}
		if chosen == nil {
			continue
		}
		flat := chosen.Clone()
		pending = append(pending, flat.When...)
		flat.When = nil
		out = overlay(out, flat)
	}
	return out, nil
}

// Materialize folds every active branch of the tree into a branch-free copy
// for the given model. Arrays whose element schema carries branches get one
// PrefixItems entry per element present in the model.
func Materialize(root *Node, model any) (*Node, error) {
	return materialize(root, model, model, path.Root)
}

func materialize(n *Node, local, root any, at path.Path) (*Node, error) {
	if n == nil {
		return nil, nil
	}
	out, err := resolveBranches(n, local, root, at)
	if err != nil {
		return nil, err
	}
	if out == n {
		out = n.Clone()
	}

	for name, child := range out.Properties {
		childLocal, _ := value.Get(local, path.Of(name))
		resolved, err := materialize(child, childLocal, root, path.Join(at, path.Of(name)))
		if err != nil {
			return nil, err
		}
		out.Properties[name] = resolved
	}

	if out.Items == nil {
		return out, nil
	}
	elements, _ := local.([]any)
	if hasBranches(out.Items) && len(elements) > 0 {
		out.PrefixItems = make([]*Node, len(elements))
		for i, element := range elements {
			resolved, err := materialize(out.Items, element, root, path.Join(at, path.Of(i)))
			if err != nil {
				return nil, err
			}
			out.PrefixItems[i] = resolved
		}
	}
	items, err := materialize(out.Items, nil, root, path.Join(at, path.Of(0)))
	if err != nil {
		return nil, err
	}
	out.Items = items
	return out, nil
}

func hasBranches(n *Node) bool {
	if n == nil {
		return false
	}
	if len(n.When) > 0 {
		return true
	}
	for _, child := range n.Properties {
		if hasBranches(child) {
			return true
		}
	}
	return hasBranches(n.Items)
}
