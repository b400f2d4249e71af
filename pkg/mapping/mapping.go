// Package mapping translates between the model and widget values.
//
// ToValue configurations shape what a widget receives; FromValue
// configurations turn the raw arguments a widget reports on change into a
// value.Patch. Neither direction touches the model itself.
package mapping

import (
	"errors"
	"fmt"
	"sort"

	"github.com/goliatone/go-formbind/pkg/path"
	"github.com/goliatone/go-formbind/pkg/value"
)

// ErrInvalidConfig marks every configuration failure.
var ErrInvalidConfig = errors.New("mapping: invalid configuration")

// ConfigError reports which part of a mapping configuration is unusable.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("mapping: invalid configuration: %s", e.Reason)
	}
	return fmt.Sprintf("mapping: invalid configuration for %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

type toKind uint8

const (
	toPlain toKind = iota
	toFunc
	toMap
)

// Accessor produces one key of a mapped widget value.
type Accessor struct {
	at      path.Path
	compute func(model any) any
	set     bool
}

// At reads the value stored at text (root relative).
func At(text string) Accessor {
	return Accessor{at: path.Parse(text), set: true}
}

// AtPath is At for parsed paths.
func AtPath(p path.Path) Accessor {
	return Accessor{at: p, set: true}
}

// Compute derives the value from the whole model.
func Compute(fn func(model any) any) Accessor {
	return Accessor{compute: fn, set: fn != nil}
}

// ToValue configures how a widget value is derived from the model. The zero
// ToValue reads the value stored at the field path.
type ToValue struct {
	kind   toKind
	fn     func(model any) any
	fields map[string]Accessor
}

// ToValueFunc hands the whole model to fn.
func ToValueFunc(fn func(model any) any) ToValue {
	return ToValue{kind: toFunc, fn: fn}
}

// ToValueMap builds an object with the same keys as fields.
func ToValueMap(fields map[string]Accessor) ToValue {
	return ToValue{kind: toMap, fields: fields}
}

// IsZero reports whether cfg is the plain read-through configuration.
func (cfg ToValue) IsZero() bool {
	return cfg.kind == toPlain
}

// ToWidgetValue computes the value handed to the widget at p. Absent values
// are reported as nil.
func ToWidgetValue(model any, p path.Path, cfg ToValue) (any, error) {
	switch cfg.kind {
	case toPlain:
		v, _ := value.Get(model, p)
		return v, nil
	case toFunc:
		if cfg.fn == nil {
			return nil, &ConfigError{Field: "ToValueFunc", Reason: "function is nil"}
		}
		return cfg.fn(model), nil
	case toMap:
		if len(cfg.fields) == 0 {
			return nil, &ConfigError{Field: "ToValueMap", Reason: "no fields"}
		}
		out := make(map[string]any, len(cfg.fields))
		for _, key := range sortedKeys(cfg.fields) {
			accessor := cfg.fields[key]
			switch {
			case !accessor.set:
				return nil, &ConfigError{Field: fmt.Sprintf("ToValueMap[%q]", key), Reason: "accessor is empty"}
			case accessor.compute != nil:
				out[key] = accessor.compute(model)
			default:
				v, _ := value.Get(model, accessor.at)
				out[key] = v
			}
		}
		return out, nil
	}
	return nil, &ConfigError{Reason: fmt.Sprintf("unknown ToValue kind %d", cfg.kind)}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
