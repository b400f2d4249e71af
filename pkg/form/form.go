// Package form holds the root of a bound form: the current model and error
// store, replaced as a whole on every change.
package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-formbind/pkg/errmap"
	"github.com/goliatone/go-formbind/pkg/field"
	"github.com/goliatone/go-formbind/pkg/path"
	"github.com/goliatone/go-formbind/pkg/schema"
	"github.com/goliatone/go-formbind/pkg/widgets"
)

// ErrNoValidator is returned by Validate and ValidateField when the form was
// built without WithValidator.
var ErrNoValidator = errors.New("form: no validator configured")

// Snapshot is one consistent view of the form state.
type Snapshot struct {
	Model  any
	Errors errmap.Store
	// Version increases with every state change.
	Version uint64
}

// Form owns the (model, errors) pair and is the owner every field reports
// to. It is safe for concurrent use: updates are applied one at a time in
// arrival order, each against the latest state. Listeners run outside the
// lock and may call back into the form.
type Form struct {
	id        string
	schema    *schema.Node
	registry  *widgets.Registry
	validator Validator
	logger    *slog.Logger
	onChange  func(model any)
	onError   func(errs errmap.Store)

	controlledValue  bool
	controlledErrors bool
	hasValue         bool

	mu      sync.Mutex
	model   any
	errs    errmap.Store
	version uint64
}

var (
	_ field.Owner   = (*Form)(nil)
	_ field.Updater = (*Form)(nil)
)

// New builds a form for root. Without WithValue or WithDefaultValue the
// model starts from schema.Default(root).
func New(root *schema.Node, opts ...Option) *Form {
	f := &Form{
		schema:   root,
		registry: widgets.Default(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	if f.id == "" {
		f.id = uuid.NewString()
	}
	if !f.hasValue {
		f.model = schema.Default(root)
	}
	f.logger = f.logger.With("form", f.id)
	return f
}

// ID returns the form id used in log records.
func (f *Form) ID() string {
	return f.id
}

// Schema returns the root schema node.
func (f *Form) Schema() *schema.Node {
	return f.schema
}

// Snapshot returns the current state.
func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot{Model: f.model, Errors: f.errs, Version: f.version}
}

// Field binds cfg against the current snapshot with the form as owner.
func (f *Form) Field(cfg field.Config) (field.Binding, error) {
	snap := f.Snapshot()
	return field.Bind(field.Ambient{
		Model:    snap.Model,
		Errors:   snap.Errors,
		Schema:   f.schema,
		Registry: f.registry,
		Owner:    f,
	}, cfg)
}

// SetValue replaces the model without notifying listeners. Hosts of a
// controlled form call it from their OnChange listener.
func (f *Form) SetValue(model any) {
	f.mu.Lock()
	f.model = model
	f.version++
	f.mu.Unlock()
}

// SetErrors replaces the error store without notifying listeners.
func (f *Form) SetErrors(errs errmap.Store) {
	f.mu.Lock()
	f.errs = errs
	f.version++
	f.mu.Unlock()
}

// ChangeModel implements field.Owner.
func (f *Form) ChangeModel(model any) {
	f.UpdateModel(func(any) any { return model })
}

// ChangeErrors implements field.Owner.
func (f *Form) ChangeErrors(errs errmap.Store) {
	f.UpdateErrors(func(errmap.Store) errmap.Store { return errs })
}

// UpdateModel implements field.Updater. In controlled mode the result is
// only reported; the state changes when the host calls SetValue.
func (f *Form) UpdateModel(fn func(model any) any) {
	f.mu.Lock()
	next := fn(f.model)
	if !f.controlledValue {
		f.model = next
		f.version++
	}
	listener := f.onChange
	f.mu.Unlock()

	f.logger.Debug("model changed", "controlled", f.controlledValue)
	if listener != nil {
		listener(next)
	}
}

// UpdateErrors implements field.Updater. Controlled error stores behave like
// controlled models.
func (f *Form) UpdateErrors(fn func(errs errmap.Store) errmap.Store) {
	f.mu.Lock()
	next := fn(f.errs)
	if !f.controlledErrors {
		f.errs = next
		f.version++
	}
	listener := f.onError
	f.mu.Unlock()

	f.logger.Debug("errors changed", "controlled", f.controlledErrors, "count", next.Len())
	if listener != nil {
		listener(next)
	}
}

// ReportErrors replaces the error subtree at fieldPath with patch, whose keys
// are relative to fieldPath. Asynchronous checks use it to report back; each
// report only touches its own subtree.
func (f *Form) ReportErrors(fieldPath string, patch errmap.Patch) {
	base := path.Parse(fieldPath)
	f.UpdateErrors(func(errs errmap.Store) errmap.Store {
		return errmap.ApplyPatch(errs, base, patch, errmap.ReplaceSubtree)
	})
}

// Validate runs the validator on the current model and merges its messages
// into the error store at the root. It returns the validator's messages.
func (f *Form) Validate(ctx context.Context) (errmap.Store, error) {
	found, err := f.validate(ctx)
	if err != nil {
		return errmap.Store{}, err
	}
	f.UpdateErrors(func(errs errmap.Store) errmap.Store {
		return errs.Merge(found)
	})
	f.logger.Debug("form validated", "errors", found.Len())
	return found, nil
}

// ValidateField validates the whole model but only applies the messages at
// or below fieldPath, replacing that subtree. Stale messages of the field are
// cleared and siblings stay untouched.
func (f *Form) ValidateField(ctx context.Context, fieldPath string) (errmap.Store, error) {
	found, err := f.validate(ctx)
	if err != nil {
		return errmap.Store{}, err
	}
	base := path.Parse(fieldPath)
	patch := make(errmap.Patch)
	scoped := make(map[string]string)
	for _, entry := range found.Query(base, false) {
		rel, _ := entry.Path.Rel(base)
		patch[rel.String()] = entry.Message
		scoped[entry.Key()] = entry.Message
	}
	f.UpdateErrors(func(errs errmap.Store) errmap.Store {
		return errmap.ApplyPatch(errs, base, patch, errmap.ReplaceSubtree)
	})
	f.logger.Debug("field validated", "path", base.String(), "errors", len(patch))
	return errmap.New(scoped), nil
}

func (f *Form) validate(ctx context.Context) (errmap.Store, error) {
	if f.validator == nil {
		return errmap.Store{}, ErrNoValidator
	}
	snap := f.Snapshot()
	messages, err := f.validator.Validate(ctx, snap.Model)
	if err != nil {
		f.logger.Warn("validation failed", "error", err)
		return errmap.Store{}, fmt.Errorf("form: validate: %w", err)
	}
	return errmap.New(messages), nil
}
