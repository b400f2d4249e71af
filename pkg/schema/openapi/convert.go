package openapi

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formbind/pkg/schema"
)

// Convert turns a resolved kin-openapi schema into a schema tree. allOf parts
// are merged into the node. A schema that references itself, directly or
// through its children, is cut at the repeat: the repeated position becomes
// an untyped node with Meta["$ref"] set to the reference.
func Convert(ref *openapi3.SchemaRef) (*schema.Node, error) {
	c := converter{visiting: make(map[*openapi3.Schema]bool)}
	return c.convert(ref)
}

type converter struct {
	visiting map[*openapi3.Schema]bool
}

func (c converter) convert(ref *openapi3.SchemaRef) (*schema.Node, error) {
	if ref == nil {
		return nil, nil
	}
	if ref.Value == nil {
		return &schema.Node{Meta: map[string]any{MetaRef: ref.Ref}}, nil
	}
	src := ref.Value
	if c.visiting[src] {
		return &schema.Node{Meta: map[string]any{MetaRef: ref.Ref}}, nil
	}
	c.visiting[src] = true
	defer delete(c.visiting, src)

	node := &schema.Node{
		Type:        schemaType(src.Type),
		Format:      src.Format,
		Title:       src.Title,
		Description: src.Description,
		Default:     src.Default,
		Pattern:     src.Pattern,
	}
	if len(src.Enum) > 0 {
		node.Enum = append([]any(nil), src.Enum...)
	}
	if len(src.Required) > 0 {
		node.Required = append([]string(nil), src.Required...)
	}
	if src.Min != nil {
		value := *src.Min
		node.Minimum = &value
	}
	if src.Max != nil {
		value := *src.Max
		node.Maximum = &value
	}
	if src.MinLength != 0 {
		value := int(src.MinLength)
		node.MinLength = &value
	}
	if src.MaxLength != nil {
		value := int(*src.MaxLength)
		node.MaxLength = &value
	}

	if len(src.Properties) > 0 {
		node.Properties = make(map[string]*schema.Node, len(src.Properties))
		for name, prop := range src.Properties {
			child, err := c.convert(prop)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			if child != nil {
				node.Properties[name] = child
			}
		}
	}
	if src.Items != nil {
		items, err := c.convert(src.Items)
		if err != nil {
			return nil, fmt.Errorf("items: %w", err)
		}
		node.Items = items
	}

	if err := applyExtensions(node, src.Extensions); err != nil {
		return nil, err
	}
	for _, part := range src.AllOf {
		merged, err := c.convert(part)
		if err != nil {
			return nil, fmt.Errorf("allOf: %w", err)
		}
		mergeInto(node, merged)
	}
	return node, nil
}

// applyExtensions copies x-formbind into Meta and decodes x-formbind-when
// into branches.
func applyExtensions(node *schema.Node, ext map[string]any) error {
	if meta, ok := ext[ExtensionMeta].(map[string]any); ok && len(meta) > 0 {
		if node.Meta == nil {
			node.Meta = make(map[string]any, len(meta))
		}
		for key, value := range meta {
			node.Meta[key] = value
		}
	}
	raw, ok := ext[ExtensionWhen]
	if !ok || raw == nil {
		return nil
	}
	if _, ok := raw.([]any); !ok {
		return fmt.Errorf("openapi: %s must be a list", ExtensionWhen)
	}
	carrier, err := schema.FromMap(map[string]any{"when": raw})
	if err != nil {
		return fmt.Errorf("openapi: %s: %w", ExtensionWhen, err)
	}
	node.When = append(node.When, carrier.When...)
	return nil
}

// mergeInto folds an allOf part into node. Fields already set on node win;
// properties and required names are unioned.
func mergeInto(node, part *schema.Node) {
	if part == nil {
		return
	}
	if node.Type == "" {
		node.Type = part.Type
	}
	if node.Format == "" {
		node.Format = part.Format
	}
	if node.Title == "" {
		node.Title = part.Title
	}
	if node.Description == "" {
		node.Description = part.Description
	}
	if node.Default == nil {
		node.Default = part.Default
	}
	if len(node.Enum) == 0 {
		node.Enum = part.Enum
	}
	if node.Items == nil {
		node.Items = part.Items
	}
	if node.Minimum == nil {
		node.Minimum = part.Minimum
	}
	if node.Maximum == nil {
		node.Maximum = part.Maximum
	}
	if node.MinLength == nil {
		node.MinLength = part.MinLength
	}
	if node.MaxLength == nil {
		node.MaxLength = part.MaxLength
	}
	if node.Pattern == "" {
		node.Pattern = part.Pattern
	}

	for name, prop := range part.Properties {
		if node.Properties == nil {
			node.Properties = make(map[string]*schema.Node, len(part.Properties))
		}
		if _, exists := node.Properties[name]; !exists {
			node.Properties[name] = prop
		}
	}
	for _, name := range part.Required {
		if !node.IsRequired(name) {
			node.Required = append(node.Required, name)
		}
	}
	for key, value := range part.Meta {
		if node.Meta == nil {
			node.Meta = make(map[string]any, len(part.Meta))
		}
		if _, exists := node.Meta[key]; !exists {
			node.Meta[key] = value
		}
	}
	node.When = append(node.When, part.When...)
}

// schemaType picks the first non-null type; OpenAPI 3.1 documents list
// "null" alongside the value type for nullable fields.
func schemaType(types *openapi3.Types) schema.Type {
	if types == nil {
		return ""
	}
	for _, name := range types.Slice() {
		if name != openapi3.TypeNull {
			return schema.Type(name)
		}
	}
	return ""
}
