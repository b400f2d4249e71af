package mapping

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formbind/pkg/path"
	"github.com/goliatone/go-formbind/pkg/value"
)

// Fields is a multi-path result. When a FromFunc callback returns Fields,
// every key is treated as a root relative path instead of setting the
// result at the field path.
type Fields map[string]any

type fromKind uint8

const (
	fromPlain fromKind = iota
	fromFunc
	fromMap
	fromKey
)

// Source produces one patch entry from the change arguments.
type Source struct {
	key  string
	call func(args ...any) any
}

// Key reads name (a path) off the first change argument.
func Key(name string) Source {
	return Source{key: strings.TrimSpace(name)}
}

// Call passes every change argument to fn.
func Call(fn func(args ...any) any) Source {
	return Source{call: fn}
}

func (s Source) valid() bool {
	return s.key != "" || s.call != nil
}

func (s Source) read(args []any) any {
	if s.call != nil {
		return s.call(args...)
	}
	return property(args, s.key)
}

// FromValue configures how change arguments become a model patch. The zero
// FromValue stores the first argument at the field path.
type FromValue struct {
	kind   fromKind
	fn     func(args ...any) any
	fields map[string]Source
	key    string
}

// FromFunc stores fn's result at the field path, or merges it at the root
// when it is a Fields value.
func FromFunc(fn func(args ...any) any) FromValue {
	return FromValue{kind: fromFunc, fn: fn}
}

// FromMap builds one patch entry per key. Keys are root relative paths.
func FromMap(fields map[string]Source) FromValue {
	return FromValue{kind: fromMap, fields: fields}
}

// FromKey stores the named property of the first argument at the field path.
// A widget reporting {"value": "x"} configured with FromKey("value") writes
// "x".
func FromKey(name string) FromValue {
	return FromValue{kind: fromKey, key: strings.TrimSpace(name)}
}

// IsZero reports whether cfg is the plain first-argument configuration.
func (cfg FromValue) IsZero() bool {
	return cfg.kind == fromPlain
}

// Validate reports configuration problems without running any callback.
func (cfg FromValue) Validate() error {
	switch cfg.kind {
	case fromPlain:
		return nil
	case fromKey:
		if cfg.key == "" {
			return &ConfigError{Field: "FromKey", Reason: "key is empty"}
		}
		return nil
	case fromFunc:
		if cfg.fn == nil {
			return &ConfigError{Field: "FromFunc", Reason: "function is nil"}
		}
		return nil
	case fromMap:
		if len(cfg.fields) == 0 {
			return &ConfigError{Field: "FromMap", Reason: "no fields"}
		}
		for _, key := range sortedKeys(cfg.fields) {
			if !cfg.fields[key].valid() {
				return &ConfigError{Field: fmt.Sprintf("FromMap[%q]", key), Reason: "source is empty"}
			}
		}
		return nil
	}
	return &ConfigError{Reason: fmt.Sprintf("unknown FromValue kind %d", cfg.kind)}
}

// ToModelPatch maps the widget's change arguments for the field at p into a
// patch keyed by canonical root relative paths.
func ToModelPatch(args []any, p path.Path, cfg FromValue) (value.Patch, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	at := p.String()

	switch cfg.kind {
	case fromKey:
		return value.Patch{at: property(args, cfg.key)}, nil
	case fromFunc:
		result := cfg.fn(args...)
		fields, ok := result.(Fields)
		if !ok {
			return value.Patch{at: result}, nil
		}
		patch := make(value.Patch, len(fields))
		for key, v := range fields {
			patch[path.Canonical(key)] = v
		}
		return patch, nil
	case fromMap:
		patch := make(value.Patch, len(cfg.fields))
		for key, src := range cfg.fields {
			patch[path.Canonical(key)] = src.read(args)
		}
		return patch, nil
	}
	return value.Patch{at: first(args)}, nil
}

func first(args []any) any {
	if len(args) == 0 {
		return nil
	}
	return args[0]
}

func property(args []any, name string) any {
	v, _ := value.Lookup(first(args), name)
	return v
}
