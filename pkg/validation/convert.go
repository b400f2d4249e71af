package validation

import (
	"github.com/goliatone/go-formbind/pkg/schema"
)

// Draft2020 is the dialect emitted by ToJSONSchema.
const Draft2020 = "https://json-schema.org/draft/2020-12/schema"

// ToJSONSchema renders a branch-free node tree as a JSON Schema document.
// Branches still present on n are ignored; call schema.Materialize first.
func ToJSONSchema(n *schema.Node) map[string]any {
	doc := convertNode(n)
	doc["$schema"] = Draft2020
	return doc
}

func convertNode(n *schema.Node) map[string]any {
	out := make(map[string]any)
	if n == nil {
		return out
	}

	switch n.Type {
	case "":
	case schema.TypeDate:
		out["type"] = "string"
		if n.Format == "" {
			out["format"] = "date"
		}
	default:
		out["type"] = string(n.Type)
	}
	if n.Format != "" {
		out["format"] = n.Format
	}
	if n.Title != "" {
		out["title"] = n.Title
	}
	if n.Description != "" {
		out["description"] = n.Description
	}
	if len(n.Enum) > 0 {
		out["enum"] = n.Enum
	}
	if n.Minimum != nil {
		out["minimum"] = *n.Minimum
	}
	if n.Maximum != nil {
		out["maximum"] = *n.Maximum
	}
	if n.MinLength != nil {
		out["minLength"] = *n.MinLength
	}
	if n.MaxLength != nil {
		out["maxLength"] = *n.MaxLength
	}
	if n.Pattern != "" {
		out["pattern"] = n.Pattern
	}

	if len(n.Properties) > 0 {
		props := make(map[string]any, len(n.Properties))
		for _, name := range n.PropertyNames() {
			props[name] = convertNode(n.Properties[name])
		}
		out["properties"] = props
	}
	if len(n.Required) > 0 {
		out["required"] = append([]string(nil), n.Required...)
	}
	if len(n.PrefixItems) > 0 {
		prefix := make([]any, len(n.PrefixItems))
		for i, item := range n.PrefixItems {
			prefix[i] = convertNode(item)
		}
		out["prefixItems"] = prefix
	}
	if n.Items != nil {
		out["items"] = convertNode(n.Items)
	}
	return out
}
