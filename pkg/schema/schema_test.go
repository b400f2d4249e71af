package schema_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbind/pkg/condition"
	"github.com/goliatone/go-formbind/pkg/path"
	"github.com/goliatone/go-formbind/pkg/schema"
)

const conditionalYAML = `
type: object
properties:
  name:
    type: string
    default: jason
  items:
    type: array
    items:
      type: object
      properties:
        foo: {type: string}
        kind: {type: string, enum: [plain, rich]}
      when:
        - if: kind == "rich"
          then:
            properties:
              body: {type: string, meta: {widget: textarea}}
when:
  - if: name == "jason"
    then:
      properties:
        more:
          type: object
          properties:
            isCool: {type: boolean, default: true}
    else:
      required: [name]
`

func TestLookup_ConditionalProperty(t *testing.T) {
	t.Parallel()

	root := schema.MustParse([]byte(conditionalYAML))

	node, err := schema.LookupString(root, map[string]any{"name": "jason"}, "more.isCool")
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if node.Type != schema.TypeBoolean {
		t.Fatalf("expected boolean node, got %q", node.Type)
	}

	_, err = schema.LookupString(root, map[string]any{"name": "john"}, "more.isCool")
	if !errors.Is(err, schema.ErrNoSchemaNode) {
		t.Fatalf("expected ErrNoSchemaNode, got %v", err)
	}
	var resolution *schema.ResolutionError
	if !errors.As(err, &resolution) || resolution.Path.String() != "more.isCool" {
		t.Fatalf("expected ResolutionError for more.isCool, got %#v", err)
	}
}

func TestResolutionError_Message(t *testing.T) {
	t.Parallel()

	root := schema.MustParse([]byte(conditionalYAML))
	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "first segment", path: "more.isCool", want: `schema: resolve "more.isCool": (root) has no child "more"`},
		{name: "nested segment", path: "name.first", want: `schema: resolve "name.first": "name" has no child "first"`},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := schema.LookupString(root, map[string]any{"name": "john"}, tc.path)
			if err == nil || err.Error() != tc.want {
				t.Fatalf("message mismatch:\nwant %s\ngot  %v", tc.want, err)
			}
		})
	}
	if got := (&schema.ResolutionError{Reason: "schema is empty"}).Error(); got != "schema: resolve (root): schema is empty" {
		t.Fatalf("root message mismatch: %s", got)
	}
}

func TestLookup_ArrayElements(t *testing.T) {
	t.Parallel()

	root := schema.MustParse([]byte(conditionalYAML))
	model := map[string]any{
		"items": []any{
			map[string]any{"kind": "plain"},
			map[string]any{"kind": "rich"},
		},
	}

	node, err := schema.Lookup(root, model, path.Parse("items[1].body"))
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if widget, _ := node.MetaString("widget"); widget != "textarea" {
		t.Fatalf("expected textarea hint, got %q", widget)
	}
	if _, err := schema.Lookup(root, model, path.Parse("items.0.body")); !errors.Is(err, schema.ErrNoSchemaNode) {
		t.Fatalf("plain element must not expose body, got %v", err)
	}
	if _, err := schema.Lookup(root, model, path.Parse("items[7].foo")); err != nil {
		t.Fatalf("items schema applies to any index: %v", err)
	}
	if _, err := schema.Lookup(root, model, path.Parse("name.first")); !errors.Is(err, schema.ErrNoSchemaNode) {
		t.Fatalf("scalar nodes have no children, got %v", err)
	}
}

func TestLookup_ConditionErrors(t *testing.T) {
	t.Parallel()

	root := &schema.Node{
		Type: schema.TypeObject,
		When: []schema.Branch{{If: `name = "x"`, Then: &schema.Node{}}},
	}
	_, err := schema.Lookup(root, nil, path.Root)
	if !errors.Is(err, condition.ErrSyntax) {
		t.Fatalf("expected condition syntax error, got %v", err)
	}
	if errors.Is(err, schema.ErrNoSchemaNode) {
		t.Fatalf("condition failures are not missing nodes")
	}

	if _, err := schema.Lookup(nil, nil, path.Root); !errors.Is(err, schema.ErrNoSchemaNode) {
		t.Fatalf("nil schema should fail with ErrNoSchemaNode, got %v", err)
	}
}

func TestMaterialize(t *testing.T) {
	t.Parallel()

	root := schema.MustParse([]byte(conditionalYAML))
	original := root.Clone()
	model := map[string]any{
		"name":  "john",
		"items": []any{map[string]any{"kind": "rich"}},
	}

	flat, err := schema.Materialize(root, model)
	if err != nil {
		t.Fatalf("Materialize returned error: %v", err)
	}
	if len(flat.When) != 0 {
		t.Fatalf("materialized root still has branches")
	}
	if _, ok := flat.Property("more"); ok {
		t.Fatalf("inactive branch leaked into the materialized tree")
	}
	if !flat.IsRequired("name") {
		t.Fatalf("else branch should require name")
	}
	items, _ := flat.Property("items")
	if len(items.PrefixItems) != 1 {
		t.Fatalf("expected one prefix item, got %d", len(items.PrefixItems))
	}
	if _, ok := items.PrefixItems[0].Property("body"); !ok {
		t.Fatalf("rich element should expose body")
	}
	if diff := cmp.Diff(original, root); diff != "" {
		t.Fatalf("Materialize mutated the input (-want +got):\n%s", diff)
	}
}

func TestDefault(t *testing.T) {
	t.Parallel()

	root := schema.MustParse([]byte(conditionalYAML))
	want := map[string]any{
		"name": "jason",
		"more": map[string]any{"isCool": true},
	}
	if diff := cmp.Diff(want, schema.Default(root)); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
	if got := schema.Default(&schema.Node{Type: schema.TypeString}); got != nil {
		t.Fatalf("expected nil default, got %v", got)
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	fromJSON, err := schema.Parse([]byte(`{"type":"object","properties":{"age":{"type":"integer","minimum":0}}}`))
	if err != nil {
		t.Fatalf("Parse JSON returned error: %v", err)
	}
	age, ok := fromJSON.Property("age")
	if !ok || age.Type != schema.TypeInteger || age.Minimum == nil || *age.Minimum != 0 {
		t.Fatalf("unexpected age node: %#v", age)
	}

	if _, err := schema.Parse([]byte("   ")); !errors.Is(err, schema.ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
	if _, err := schema.Parse([]byte("type: [unclosed")); !errors.Is(err, schema.ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}

	node, err := schema.FromMap(map[string]any{"type": "string", "meta": map[string]any{"widget": "date"}})
	if err != nil {
		t.Fatalf("FromMap returned error: %v", err)
	}
	if hint, _ := node.MetaString("widget"); hint != "date" {
		t.Fatalf("expected widget hint, got %q", hint)
	}
}

func TestDocument(t *testing.T) {
	t.Parallel()

	src := schema.SourceFromFile("testdata/../schema.yaml")
	if src.Location() != "schema.yaml" || src.Kind() != schema.SourceKindFile {
		t.Fatalf("unexpected source: %s %s", src.Kind(), src.Location())
	}
	if _, err := schema.NewDocument(src, nil); !errors.Is(err, schema.ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
	if _, err := schema.SourceFromURL("ftp://example.com/schema.json"); err == nil {
		t.Fatalf("expected unsupported scheme error")
	}

	doc := schema.MustNewDocument(src, []byte("type: string"))
	node, err := doc.Node()
	if err != nil || node.Type != schema.TypeString {
		t.Fatalf("Document.Node: %v %#v", err, node)
	}
}
