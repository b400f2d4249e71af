// Package field binds one model path to a widget.
//
// Bind is evaluated per render pass: it resolves the widget and schema node,
// derives the widget value and the active errors, and hands back callbacks
// that turn widget events into owner updates. Nothing is cached between
// calls, so conditional schema branches are always re-evaluated against the
// current model.
package field

import (
	"github.com/goliatone/go-formbind/pkg/errmap"
	"github.com/goliatone/go-formbind/pkg/mapping"
	"github.com/goliatone/go-formbind/pkg/path"
	"github.com/goliatone/go-formbind/pkg/resolver"
	"github.com/goliatone/go-formbind/pkg/schema"
	"github.com/goliatone/go-formbind/pkg/value"
	"github.com/goliatone/go-formbind/pkg/widgets"
)

// Owner receives complete replacements of the model and the error store.
type Owner interface {
	ChangeModel(model any)
	ChangeErrors(errs errmap.Store)
}

// Updater is implemented by owners that serialize updates themselves. The
// callbacks then apply their patch to the owner's latest state instead of the
// snapshot they were bound against, so concurrent reports land in arrival
// order without losing each other.
type Updater interface {
	UpdateModel(fn func(model any) any)
	UpdateErrors(fn func(errs errmap.Store) errmap.Store)
}

// Ambient is the snapshot a field is bound against.
type Ambient struct {
	Model  any
	Errors errmap.Store
	Schema *schema.Node
	// Registry defaults to widgets.Default().
	Registry *widgets.Registry
	Owner    Owner
}

// Config is the per-field configuration.
type Config struct {
	Path string
	// Type overrides widget resolution when non-zero.
	Type         widgets.Ref
	MapToValue   mapping.ToValue
	MapFromValue mapping.FromValue
	// Exclusive limits active errors to the exact path.
	Exclusive bool
	// Props are passed through to the rendering host untouched.
	Props map[string]any
}

// Binding is the widget-ready view of a field.
type Binding struct {
	Path       path.Path
	Widget     widgets.Widget
	Kind       widgets.Kind
	Value      any
	Errors     []errmap.Entry
	Valid      bool
	Invalid    bool
	Descriptor resolver.Descriptor
	Props      map[string]any
	Callbacks  Callbacks
}

// Messages returns the active error messages in path order.
func (b Binding) Messages() []string {
	out := make([]string, 0, len(b.Errors))
	for _, entry := range b.Errors {
		out = append(out, entry.Message)
	}
	return out
}

// OnChangeValue forwards a widget change. See Callbacks.OnChangeValue.
func (b Binding) OnChangeValue(args ...any) error {
	return b.Callbacks.OnChangeValue(args...)
}

// OnChangeErrors forwards a validation report. See Callbacks.OnChangeErrors.
func (b Binding) OnChangeErrors(patch errmap.Patch) {
	b.Callbacks.OnChangeErrors(patch)
}

// Bind resolves cfg against amb. Schema resolution failures
// (*schema.ResolutionError), unknown widgets and mapping configuration errors
// (*mapping.ConfigError) are returned as-is.
func Bind(amb Ambient, cfg Config) (Binding, error) {
	p := path.Parse(cfg.Path)

	desc, err := resolver.New(resolver.WithRegistry(amb.Registry)).Resolve(amb.Schema, amb.Model, p, cfg.Type)
	if err != nil {
		return Binding{}, err
	}
	if err := cfg.MapFromValue.Validate(); err != nil {
		return Binding{}, err
	}
	v, err := mapping.ToWidgetValue(amb.Model, p, cfg.MapToValue)
	if err != nil {
		return Binding{}, err
	}

	active := amb.Errors.Query(p, cfg.Exclusive)
	validity := errmap.ValidityOf(active)

	return Binding{
		Path:       p,
		Widget:     desc.Widget,
		Kind:       desc.Kind,
		Value:      v,
		Errors:     active,
		Valid:      validity.Valid,
		Invalid:    validity.Invalid,
		Descriptor: desc,
		Props:      cfg.Props,
		Callbacks: Callbacks{
			path:   p,
			owner:  amb.Owner,
			from:   cfg.MapFromValue,
			model:  amb.Model,
			errors: amb.Errors,
		},
	}, nil
}

// Callbacks pairs the change handlers of one binding with the path, owner
// and snapshot they act on.
type Callbacks struct {
	path   path.Path
	owner  Owner
	from   mapping.FromValue
	model  any
	errors errmap.Store
}

// Path returns the field path the callbacks report for.
func (c Callbacks) Path() path.Path {
	return c.path
}

// OnChangeValue maps the widget arguments to a model patch, applies it and
// sends the new model to the owner.
func (c Callbacks) OnChangeValue(args ...any) error {
	patch, err := mapping.ToModelPatch(args, c.path, c.from)
	if err != nil {
		return err
	}
	if c.owner == nil {
		return nil
	}
	if updater, ok := c.owner.(Updater); ok {
		updater.UpdateModel(func(model any) any {
			return value.Apply(model, patch)
		})
		return nil
	}
	c.owner.ChangeModel(value.Apply(c.model, patch))
	return nil
}

// OnChangeErrors replaces the field's error subtree with patch (keys relative
// to the field path) and sends the complete resulting store to the owner.
func (c Callbacks) OnChangeErrors(patch errmap.Patch) {
	if c.owner == nil {
		return
	}
	if updater, ok := c.owner.(Updater); ok {
		updater.UpdateErrors(func(errs errmap.Store) errmap.Store {
			return errmap.ApplyPatch(errs, c.path, patch, errmap.ReplaceSubtree)
		})
		return
	}
	c.owner.ChangeErrors(errmap.ApplyPatch(c.errors, c.path, patch, errmap.ReplaceSubtree))
}
