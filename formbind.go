// Package formbind wires schema loading, validation and form state together
// for hosts that want the common setup in one call.
package formbind

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbind/internal/loader"
	"github.com/goliatone/go-formbind/pkg/form"
	"github.com/goliatone/go-formbind/pkg/schema"
	"github.com/goliatone/go-formbind/pkg/schema/openapi"
	"github.com/goliatone/go-formbind/pkg/validation"
)

// ErrNoSelection is returned for OpenAPI documents when neither a component
// nor an operation was selected.
var ErrNoSelection = errors.New("formbind: OpenAPI documents need WithComponent or WithOperation")

// LoadOption configures LoadSchema and ParseSchema.
type LoadOption func(*loadConfig)

type loadConfig struct {
	component string
	operation string
	loader    []loader.Option
}

// WithComponent selects an OpenAPI component schema.
func WithComponent(name string) LoadOption {
	return func(c *loadConfig) {
		c.component = name
	}
}

// WithOperation selects the request body of an OpenAPI operation.
func WithOperation(id string) LoadOption {
	return func(c *loadConfig) {
		c.operation = id
	}
}

// WithFileSystem enables schema.SourceFromFS sources.
func WithFileSystem(files fs.FS) LoadOption {
	return func(c *loadConfig) {
		c.loader = append(c.loader, loader.WithFileSystem(files))
	}
}

// WithHTTPClient enables URL sources.
func WithHTTPClient(client *http.Client) LoadOption {
	return func(c *loadConfig) {
		c.loader = append(c.loader, loader.WithHTTPClient(client))
	}
}

// WithHTTPTimeout enables URL sources with a default client and caps each
// fetch.
func WithHTTPTimeout(timeout time.Duration) LoadOption {
	return func(c *loadConfig) {
		c.loader = append(c.loader, loader.WithHTTP(), loader.WithTimeout(timeout))
	}
}

func newLoadConfig(opts []LoadOption) loadConfig {
	var cfg loadConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// LoadSchema reads src and returns its schema tree. Plain schema documents
// are decoded directly; OpenAPI documents need WithComponent or
// WithOperation.
func LoadSchema(ctx context.Context, src schema.Source, opts ...LoadOption) (*schema.Node, error) {
	cfg := newLoadConfig(opts)
	doc, err := loader.New(cfg.loader...).Load(ctx, src)
	if err != nil {
		return nil, err
	}
	return parse(ctx, doc.Raw(), cfg)
}

// ParseSchema is LoadSchema for a payload already in memory.
func ParseSchema(ctx context.Context, data []byte, opts ...LoadOption) (*schema.Node, error) {
	return parse(ctx, data, newLoadConfig(opts))
}

func parse(ctx context.Context, data []byte, cfg loadConfig) (*schema.Node, error) {
	if !isOpenAPI(data) {
		return schema.Parse(data)
	}
	spec, err := openapi.Load(ctx, data)
	if err != nil {
		return nil, err
	}
	switch {
	case cfg.component != "":
		return spec.Component(cfg.component)
	case cfg.operation != "":
		return spec.RequestBody(cfg.operation)
	default:
		return nil, ErrNoSelection
	}
}

// isOpenAPI reports whether data carries a top-level "openapi" version. YAML
// decoding covers JSON payloads too.
func isOpenAPI(data []byte) bool {
	var probe struct {
		OpenAPI string `yaml:"openapi"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return false
	}
	return probe.OpenAPI != ""
}

// NewForm builds a form over root validated by a JSON Schema validator.
// Options given later win, so a WithValidator in opts replaces the default.
func NewForm(root *schema.Node, opts ...form.Option) (*form.Form, error) {
	if root == nil {
		return nil, errors.New("formbind: schema is required")
	}
	v, err := validation.NewJSONSchema(root)
	if err != nil {
		return nil, fmt.Errorf("formbind: %w", err)
	}
	return form.New(root, append([]form.Option{form.WithValidator(v)}, opts...)...), nil
}
