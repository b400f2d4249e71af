package schema

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

var (
	// ErrEmptyDocument is returned for blank schema payloads.
	ErrEmptyDocument = errors.New("schema: document is empty")
	// ErrInvalidDocument is returned when a payload is neither JSON nor YAML.
	ErrInvalidDocument = errors.New("schema: invalid JSON or YAML document")
)

// Document is a raw schema payload together with its origin.
type Document struct {
	source Source
	raw    []byte
}

// NewDocument wraps raw. The payload is copied.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("schema: source is required")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return Document{}, fmt.Errorf("%w: %s", ErrEmptyDocument, src.Location())
	}
	return Document{source: src, raw: append([]byte(nil), raw...)}, nil
}

// MustNewDocument panics if the document cannot be created.
func MustNewDocument(src Source, raw []byte) Document {
	doc, err := NewDocument(src, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

func (d Document) Source() Source { return d.source }

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// Node decodes the payload into a schema tree.
func (d Document) Node() (*Node, error) {
	node, err := Parse(d.raw)
	if err != nil {
		return nil, fmt.Errorf("schema: %s: %w", d.Location(), err)
	}
	return node, nil
}

// Parse decodes a schema tree from JSON, falling back to YAML.
func Parse(data []byte) (*Node, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrEmptyDocument
	}

	var node Node
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &node); err == nil {
			return &node, nil
		}
	}
	if err := yaml.Unmarshal(trimmed, &node); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return &node, nil
}

// MustParse panics when data is not a valid schema document.
func MustParse(data []byte) *Node {
	node, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return node
}

// FromMap decodes a schema tree from an already-decoded JSON-like value, such
// as an OpenAPI extension payload.
func FromMap(raw map[string]any) (*Node, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyDocument
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("schema: encode node: %w", err)
	}
	var node Node
	if err := json.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return &node, nil
}
