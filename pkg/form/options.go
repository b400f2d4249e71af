package form

import (
	"context"
	"log/slog"

	"github.com/goliatone/go-formbind/pkg/errmap"
	"github.com/goliatone/go-formbind/pkg/widgets"
)

// Validator validates the whole model and returns path -> message. The
// JSON Schema validator in pkg/validation satisfies it.
type Validator interface {
	Validate(ctx context.Context, model any) (map[string]string, error)
}

// Option configures a Form.
type Option func(*Form)

// WithValue makes the model controlled: changes are reported through
// OnChange but only become the form's state once the host calls SetValue.
func WithValue(model any) Option {
	return func(f *Form) {
		f.model = model
		f.controlledValue = true
		f.hasValue = true
	}
}

// WithDefaultValue seeds an uncontrolled model. Without it the model starts
// from the schema defaults.
func WithDefaultValue(model any) Option {
	return func(f *Form) {
		f.model = model
		f.controlledValue = false
		f.hasValue = true
	}
}

// WithErrors makes the error store controlled, like WithValue.
func WithErrors(errs errmap.Store) Option {
	return func(f *Form) {
		f.errs = errs
		f.controlledErrors = true
	}
}

// WithDefaultErrors seeds an uncontrolled error store.
func WithDefaultErrors(errs errmap.Store) Option {
	return func(f *Form) {
		f.errs = errs
		f.controlledErrors = false
	}
}

// OnChange registers the listener receiving every new model.
func OnChange(fn func(model any)) Option {
	return func(f *Form) {
		f.onChange = fn
	}
}

// OnError registers the listener receiving every new error store.
func OnError(fn func(errs errmap.Store)) Option {
	return func(f *Form) {
		f.onError = fn
	}
}

// WithRegistry sets the widget registry used by bindings.
func WithRegistry(reg *widgets.Registry) Option {
	return func(f *Form) {
		if reg != nil {
			f.registry = reg
		}
	}
}

// WithValidator sets the whole-model validator used by Validate and
// ValidateField.
func WithValidator(v Validator) Option {
	return func(f *Form) {
		f.validator = v
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Form) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithID pins the form id used in log records. Defaults to a random UUID.
func WithID(id string) Option {
	return func(f *Form) {
		if id != "" {
			f.id = id
		}
	}
}
