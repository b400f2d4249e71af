package schema

import "sort"

// Type names the value kind a node describes.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
	TypeDate    Type = "date"
	TypeObject  Type = "object"
	TypeArray   Type = "array"
)

// Node describes one position of the model tree. Objects list their children
// in Properties, arrays describe their elements through Items. When holds
// conditional branches that are folded into the node depending on the
// current value of the object it describes.
type Node struct {
	Type        Type             `json:"type,omitempty" yaml:"type,omitempty"`
	Format      string           `json:"format,omitempty" yaml:"format,omitempty"`
	Title       string           `json:"title,omitempty" yaml:"title,omitempty"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	Default     any              `json:"default,omitempty" yaml:"default,omitempty"`
	Enum        []any            `json:"enum,omitempty" yaml:"enum,omitempty"`
	Required    []string         `json:"required,omitempty" yaml:"required,omitempty"`
	Properties  map[string]*Node `json:"properties,omitempty" yaml:"properties,omitempty"`
	Items       *Node            `json:"items,omitempty" yaml:"items,omitempty"`
	// PrefixItems carries per-position element schemas. Materialize fills it
	// when element schemas depend on element values.
	PrefixItems []*Node        `json:"prefixItems,omitempty" yaml:"prefixItems,omitempty"`
	Minimum     *float64       `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum     *float64       `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	MinLength   *int           `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength   *int           `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern     string         `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Meta        map[string]any `json:"meta,omitempty" yaml:"meta,omitempty"`
	When        []Branch       `json:"when,omitempty" yaml:"when,omitempty"`
}

// Branch is a conditional overlay. If is a condition expression evaluated
// against the owning object; Then is merged when it holds, Else otherwise.
type Branch struct {
	If   string `json:"if" yaml:"if"`
	Then *Node  `json:"then,omitempty" yaml:"then,omitempty"`
	Else *Node  `json:"else,omitempty" yaml:"else,omitempty"`
}

// Property returns the named child node.
func (n *Node) Property(name string) (*Node, bool) {
	if n == nil || n.Properties == nil {
		return nil, false
	}
	child, ok := n.Properties[name]
	return child, ok && child != nil
}

// PropertyNames returns the child names in lexical order.
func (n *Node) PropertyNames() []string {
	if n == nil {
		return nil
	}
	names := make([]string, 0, len(n.Properties))
	for name := range n.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRequired reports whether name is listed in Required.
func (n *Node) IsRequired(name string) bool {
	if n == nil {
		return false
	}
	for _, candidate := range n.Required {
		if candidate == name {
			return true
		}
	}
	return false
}

// MetaString returns Meta[key] when it holds a non-empty string.
func (n *Node) MetaString(key string) (string, bool) {
	if n == nil || n.Meta == nil {
		return "", false
	}
	text, ok := n.Meta[key].(string)
	return text, ok && text != ""
}

// Clone copies the node and its descendants. Default, Enum and Meta values are
// shared.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := *n
	if n.Properties != nil {
		out.Properties = make(map[string]*Node, len(n.Properties))
		for name, child := range n.Properties {
			out.Properties[name] = child.Clone()
		}
	}
	out.Items = n.Items.Clone()
	if n.PrefixItems != nil {
		out.PrefixItems = make([]*Node, len(n.PrefixItems))
		for i, item := range n.PrefixItems {
			out.PrefixItems[i] = item.Clone()
		}
	}
	if n.Required != nil {
		out.Required = append([]string(nil), n.Required...)
	}
	if n.When != nil {
		out.When = make([]Branch, len(n.When))
		for i, branch := range n.When {
			out.When[i] = Branch{If: branch.If, Then: branch.Then.Clone(), Else: branch.Else.Clone()}
		}
	}
	if n.Meta != nil {
		out.Meta = make(map[string]any, len(n.Meta))
		for k, v := range n.Meta {
			out.Meta[k] = v
		}
	}
	return &out
}

// overlay merges top over base. Scalar attributes set on top win, properties
// are added or replaced by name, required names are unioned and branches are
// appended.
func overlay(base, top *Node) *Node {
	if top == nil {
		return base
	}
	if base == nil {
		return top.Clone()
	}
	out := base.Clone()
	if top.Type != "" {
		out.Type = top.Type
	}
	if top.Format != "" {
		out.Format = top.Format
	}
	if top.Title != "" {
		out.Title = top.Title
	}
	if top.Description != "" {
		out.Description = top.Description
	}
	if top.Default != nil {
		out.Default = top.Default
	}
	if top.Enum != nil {
		out.Enum = top.Enum
	}
	if top.Items != nil {
		out.Items = top.Items.Clone()
	}
	if top.Minimum != nil {
		out.Minimum = top.Minimum
	}
	if top.Maximum != nil {
		out.Maximum = top.Maximum
	}
	if top.MinLength != nil {
		out.MinLength = top.MinLength
	}
	if top.MaxLength != nil {
		out.MaxLength = top.MaxLength
	}
	if top.Pattern != "" {
		out.Pattern = top.Pattern
	}
	for name, child := range top.Properties {
		if out.Properties == nil {
			out.Properties = make(map[string]*Node, len(top.Properties))
		}
		out.Properties[name] = child.Clone()
	}
	for _, name := range top.Required {
		if !out.IsRequired(name) {
			out.Required = append(out.Required, name)
		}
	}
	for k, v := range top.Meta {
		if out.Meta == nil {
			out.Meta = make(map[string]any, len(top.Meta))
		}
		out.Meta[k] = v
	}
	out.When = append(out.When, top.Clone().When...)
	return out
}
