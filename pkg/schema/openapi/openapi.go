// Package openapi builds schema trees from OpenAPI 3 documents using
// kin-openapi. Component schemas and operation request bodies convert into
// schema.Node values; the x-formbind extension becomes node metadata and
// x-formbind-when becomes conditional branches.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formbind/pkg/schema"
)

const (
	// ExtensionMeta holds node metadata, e.g. {"widget": "textarea"}.
	ExtensionMeta = "x-formbind"
	// ExtensionWhen holds a list of {if, then, else} branches in the
	// schema document format.
	ExtensionWhen = "x-formbind-when"

	// MetaRef records the reference of a schema that was cut to break a cycle.
	MetaRef = "$ref"
)

var (
	// ErrNotFound is returned for unknown components or operations.
	ErrNotFound = errors.New("openapi: not found")
	// ErrNoRequestBody is returned for operations without a request schema.
	ErrNoRequestBody = errors.New("openapi: operation has no request body")
)

// preferred request body media types, in order.
var formMediaTypes = []string{
	"application/json",
	"application/x-www-form-urlencoded",
	"multipart/form-data",
}

// Option configures Load.
type Option func(*options)

type options struct {
	validate     bool
	externalRefs bool
}

// WithValidation runs kin-openapi document validation after loading.
func WithValidation(enabled bool) Option {
	return func(o *options) {
		o.validate = enabled
	}
}

// WithExternalRefs allows $ref to point outside the document.
func WithExternalRefs(enabled bool) Option {
	return func(o *options) {
		o.externalRefs = enabled
	}
}

// Spec is a loaded OpenAPI document.
type Spec struct {
	doc *openapi3.T
}

// Load parses an OpenAPI document in JSON or YAML.
func Load(ctx context.Context, data []byte, opts ...Option) (*Spec, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	loader.IsExternalRefsAllowed = cfg.externalRefs

	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if cfg.validate {
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}
	return &Spec{doc: doc}, nil
}

// Components lists the component schema names, sorted.
func (s *Spec) Components() []string {
	if s == nil || s.doc.Components == nil {
		return nil
	}
	names := make([]string, 0, len(s.doc.Components.Schemas))
	for name := range s.doc.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Operations lists operation ids, sorted. Operations without an id are
// listed as "method:path", lowercase method.
func (s *Spec) Operations() []string {
	var ids []string
	s.eachOperation(func(id string, _ *openapi3.Operation) bool {
		ids = append(ids, id)
		return true
	})
	sort.Strings(ids)
	return ids
}

// Component converts the named component schema.
func (s *Spec) Component(name string) (*schema.Node, error) {
	if s == nil || s.doc.Components == nil {
		return nil, fmt.Errorf("%w: component %q", ErrNotFound, name)
	}
	ref, ok := s.doc.Components.Schemas[name]
	if !ok || ref == nil {
		return nil, fmt.Errorf("%w: component %q", ErrNotFound, name)
	}
	return Convert(ref)
}

// RequestBody converts the request schema of an operation, preferring JSON
// and form media types.
func (s *Spec) RequestBody(operationID string) (*schema.Node, error) {
	var found *openapi3.Operation
	s.eachOperation(func(id string, op *openapi3.Operation) bool {
		if id == operationID {
			found = op
			return false
		}
		return true
	})
	if found == nil {
		return nil, fmt.Errorf("%w: operation %q", ErrNotFound, operationID)
	}
	if found.RequestBody == nil || found.RequestBody.Value == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoRequestBody, operationID)
	}

	content := found.RequestBody.Value.Content
	for _, mediaType := range formMediaTypes {
		if mt, ok := content[mediaType]; ok && mt != nil && mt.Schema != nil {
			return Convert(mt.Schema)
		}
	}
	mediaTypes := make([]string, 0, len(content))
	for mediaType := range content {
		mediaTypes = append(mediaTypes, mediaType)
	}
	sort.Strings(mediaTypes)
	for _, mediaType := range mediaTypes {
		if mt := content[mediaType]; mt != nil && mt.Schema != nil {
			return Convert(mt.Schema)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoRequestBody, operationID)
}

func (s *Spec) eachOperation(fn func(id string, op *openapi3.Operation) bool) {
	if s == nil || s.doc.Paths == nil {
		return
	}
	paths := s.doc.Paths.Map()
	keys := make([]string, 0, len(paths))
	for key := range paths {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, route := range keys {
		item := paths[route]
		if item == nil {
			continue
		}
		methods := item.Operations()
		names := make([]string, 0, len(methods))
		for method := range methods {
			names = append(names, method)
		}
		sort.Strings(names)
		for _, method := range names {
			op := methods[method]
			if op == nil {
				continue
			}
			id := op.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + route
			}
			if !fn(id, op) {
				return
			}
		}
	}
}
