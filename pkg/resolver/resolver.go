// Package resolver decides, for a model path, which schema node describes it
// and which widget renders it.
package resolver

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-formbind/pkg/path"
	"github.com/goliatone/go-formbind/pkg/schema"
	"github.com/goliatone/go-formbind/pkg/widgets"
)

// MetaWidget is the node metadata key carrying a widget hint.
const MetaWidget = "widget"

// ErrNoWidget is returned when neither an override, a hint nor an inference
// rule yields a widget.
var ErrNoWidget = errors.New("resolver: no widget matches")

// Descriptor is everything the binder needs to know about a path.
type Descriptor struct {
	Path     path.Path
	Widget   widgets.Widget
	Kind     widgets.Kind
	Default  any
	Metadata map[string]any
	Label    string
	// Node is the schema node for Path with active branches folded in.
	Node *schema.Node
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRegistry sets the widget registry. Defaults to widgets.Default().
func WithRegistry(reg *widgets.Registry) Option {
	return func(r *Resolver) {
		if reg != nil {
			r.registry = reg
		}
	}
}

// Resolver produces Descriptors. It holds no per-call state.
type Resolver struct {
	registry *widgets.Registry
}

// New constructs a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.registry == nil {
		r.registry = widgets.Default()
	}
	return r
}

// Registry returns the registry used for lookups.
func (r *Resolver) Registry() *widgets.Registry {
	return r.registry
}

// Resolve returns the descriptor for p. Widget precedence is: a non-zero
// override, then the node's "widget" metadata, then inference from the node
// type. A missing node is returned as *schema.ResolutionError whether or not
// an override is given; the override only picks the widget.
func (r *Resolver) Resolve(root *schema.Node, model any, p path.Path, override widgets.Ref) (Descriptor, error) {
	node, err := schema.Lookup(root, model, p)
	if err != nil {
		return Descriptor{}, err
	}
	desc := Descriptor{
		Path:     p,
		Node:     node,
		Default:  node.Default,
		Metadata: node.Meta,
	}

	w, err := r.pick(node, override)
	if err != nil {
		return Descriptor{}, fmt.Errorf("resolver: %q: %w", p.String(), err)
	}
	desc.Widget = w
	desc.Kind = w.Kind()
	desc.Label = Label(p, desc.Node)
	return desc, nil
}

func (r *Resolver) pick(node *schema.Node, override widgets.Ref) (widgets.Widget, error) {
	if !override.IsZero() {
		return r.registry.Deref(override)
	}
	if hint, ok := node.MetaString(MetaWidget); ok {
		return r.registry.Lookup(hint)
	}
	if w, ok := r.registry.Infer(node); ok {
		return w, nil
	}
	return nil, ErrNoWidget
}

var fallback = New()

// Resolve uses a Resolver backed by widgets.Default().
func Resolve(root *schema.Node, model any, p path.Path, override widgets.Ref) (Descriptor, error) {
	return fallback.Resolve(root, model, p, override)
}
