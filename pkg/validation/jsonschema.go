// Package validation checks whole models against their schema tree and
// reports path -> message pairs ready for an errmap.Store.
package validation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-formbind/pkg/path"
	"github.com/goliatone/go-formbind/pkg/schema"
)

// Validator validates a model and returns canonical path -> message.
type Validator interface {
	Validate(ctx context.Context, model any) (map[string]string, error)
}

// RequiredMessage is reported for every missing required property.
const RequiredMessage = "is required"

const resourceURL = "mem:formbind"

// Option configures a JSONSchema validator.
type Option func(*JSONSchema)

// WithFormatAssertion toggles "format" checks (date, email, ...). Enabled by
// default.
func WithFormatAssertion(enabled bool) Option {
	return func(v *JSONSchema) {
		v.assertFormat = enabled
	}
}

// WithKeepNulls keeps nil object members when validating. By default they
// are treated as absent, since widgets commonly clear a value to nil.
func WithKeepNulls(keep bool) Option {
	return func(v *JSONSchema) {
		v.keepNulls = keep
	}
}

// JSONSchema validates models by materializing the schema tree for each
// model, rendering it as a Draft 2020-12 document and compiling it with
// santhosh-tekuri/jsonschema. Compiled schemas are cached per rendered
// document. It is safe for concurrent use.
type JSONSchema struct {
	root         *schema.Node
	assertFormat bool
	keepNulls    bool

	mu    sync.Mutex
	cache map[string]*jsonschema.Schema
}

var _ Validator = (*JSONSchema)(nil)

// NewJSONSchema builds a validator for root. The unconditional part of the
// tree is compiled eagerly so malformed schemas (bad patterns, say) fail
// here rather than on first use.
func NewJSONSchema(root *schema.Node, opts ...Option) (*JSONSchema, error) {
	if root == nil {
		return nil, errors.New("validation: schema is required")
	}
	v := &JSONSchema{
		root:         root,
		assertFormat: true,
		cache:        make(map[string]*jsonschema.Schema),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	if _, err := v.compiled(nil); err != nil {
		return nil, err
	}
	return v, nil
}

// Document returns the JSON Schema document used to validate model.
func (v *JSONSchema) Document(model any) ([]byte, error) {
	flat, err := schema.Materialize(v.root, model)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(ToJSONSchema(flat), "", "  ")
}

// Validate checks model. Validation failures are returned as messages keyed
// by canonical path; the error is reserved for schema or context problems.
func (v *JSONSchema) Validate(ctx context.Context, model any) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	instance, err := normalize(model, v.keepNulls)
	if err != nil {
		return nil, err
	}
	compiled, err := v.compiled(instance)
	if err != nil {
		return nil, err
	}

	err = compiled.Validate(instance)
	if err == nil {
		return map[string]string{}, nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return nil, fmt.Errorf("validation: %w", err)
	}
	return collect(verr), nil
}

func (v *JSONSchema) compiled(model any) (*jsonschema.Schema, error) {
	flat, err := schema.Materialize(v.root, model)
	if err != nil {
		return nil, err
	}
	doc, err := json.Marshal(ToJSONSchema(flat))
	if err != nil {
		return nil, fmt.Errorf("validation: encode schema: %w", err)
	}

	key := string(doc)
	v.mu.Lock()
	cached, ok := v.cache[key]
	v.mu.Unlock()
	if ok {
		return cached, nil
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = v.assertFormat
	if err := compiler.AddResource(resourceURL, bytes.NewReader(doc)); err != nil {
		return nil, fmt.Errorf("validation: load schema: %w", err)
	}
	compiledSchema, err := compiler.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("validation: compile schema: %w", err)
	}

	v.mu.Lock()
	v.cache[key] = compiledSchema
	v.mu.Unlock()
	return compiledSchema, nil
}

// normalize round-trips model through JSON so the validator only sees
// map[string]any, []any, float64, string, bool and nil.
func normalize(model any, keepNulls bool) (any, error) {
	data, err := json.Marshal(model)
	if err != nil {
		return nil, fmt.Errorf("validation: encode model: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("validation: decode model: %w", err)
	}
	if !keepNulls {
		out = dropNulls(out)
	}
	return out, nil
}

func dropNulls(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		for key, child := range typed {
			if child == nil {
				delete(typed, key)
				continue
			}
			typed[key] = dropNulls(child)
		}
		return typed
	case []any:
		for i, child := range typed {
			typed[i] = dropNulls(child)
		}
		return typed
	}
	return v
}

var quotedName = regexp.MustCompile(`'((?:[^'\\]|\\.)*)'|"((?:[^"\\]|\\.)*)"`)

// collect flattens the leaf causes of verr into path -> message. Several
// messages for one path are sorted and joined with "; ".
func collect(verr *jsonschema.ValidationError) map[string]string {
	grouped := make(map[string][]string)
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) > 0 {
			for _, cause := range e.Causes {
				walk(cause)
			}
			return
		}
		at := path.FromPointer(e.InstanceLocation)
		if names, ok := missingProperties(e.Message); ok {
			for _, name := range names {
				key := path.Join(at, path.Of(name)).String()
				grouped[key] = append(grouped[key], RequiredMessage)
			}
			return
		}
		key := at.String()
		grouped[key] = append(grouped[key], e.Message)
	}
	walk(verr)

	out := make(map[string]string, len(grouped))
	for key, messages := range grouped {
		sort.Strings(messages)
		out[key] = strings.Join(dedupe(messages), "; ")
	}
	return out
}

func missingProperties(message string) ([]string, bool) {
	const prefix = "missing properties:"
	if !strings.HasPrefix(message, prefix) {
		return nil, false
	}
	var names []string
	for _, match := range quotedName.FindAllStringSubmatch(message[len(prefix):], -1) {
		name := match[1]
		if name == "" {
			name = match[2]
		}
		name = strings.ReplaceAll(name, `\'`, `'`)
		name = strings.ReplaceAll(name, `\"`, `"`)
		names = append(names, name)
	}
	return names, len(names) > 0
}

func dedupe(sorted []string) []string {
	out := make([]string, 0, len(sorted))
	for _, message := range sorted {
		if len(out) > 0 && out[len(out)-1] == message {
			continue
		}
		out = append(out, message)
	}
	return out
}
