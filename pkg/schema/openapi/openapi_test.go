package openapi_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbind/pkg/schema"
	"github.com/goliatone/go-formbind/pkg/schema/openapi"
)

const petstore = `
openapi: 3.0.3
info: {title: Pets, version: 1.0.0}
paths:
  /pets:
    post:
      operationId: createPet
      requestBody:
        content:
          application/json:
            schema:
              allOf:
                - $ref: '#/components/schemas/Pet'
                - type: object
                  required: [owner]
                  properties:
                    owner: {type: string, format: email}
      responses:
        '201': {description: created}
  /pets/{id}:
    delete:
      parameters:
        - {name: id, in: path, required: true, schema: {type: string}}
      responses:
        '204': {description: gone}
components:
  schemas:
    Pet:
      type: object
      required: [name]
      properties:
        name: {type: string, minLength: 1, maxLength: 40}
        kind: {type: string, enum: [cat, dog, bird]}
        born: {type: string, format: date}
        notes:
          type: string
          x-formbind: {widget: textarea}
        chipped: {type: boolean, default: false}
        weight: {type: number, minimum: 0}
      x-formbind-when:
        - if: kind == "dog"
          then:
            required: [license]
            properties:
              license: {type: string}
    Node:
      type: object
      properties:
        label: {type: string}
        children:
          type: array
          items: {$ref: '#/components/schemas/Node'}
`

func load(t *testing.T) *openapi.Spec {
	t.Helper()
	spec, err := openapi.Load(context.Background(), []byte(petstore))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	return spec
}

func TestListing(t *testing.T) {
	t.Parallel()

	spec := load(t)
	if diff := cmp.Diff([]string{"Node", "Pet"}, spec.Components()); diff != "" {
		t.Fatalf("components mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"createPet", "delete:/pets/{id}"}, spec.Operations()); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}
}

func TestComponent(t *testing.T) {
	t.Parallel()

	pet, err := load(t).Component("Pet")
	if err != nil {
		t.Fatalf("Component returned error: %v", err)
	}
	if pet.Type != schema.TypeObject {
		t.Fatalf("expected object, got %q", pet.Type)
	}
	if diff := cmp.Diff([]string{"born", "chipped", "kind", "name", "notes", "weight"}, pet.PropertyNames()); diff != "" {
		t.Fatalf("properties mismatch (-want +got):\n%s", diff)
	}

	name := pet.Properties["name"]
	if name.MinLength == nil || *name.MinLength != 1 || name.MaxLength == nil || *name.MaxLength != 40 {
		t.Fatalf("length bounds not converted: %+v", name)
	}
	if got, _ := pet.Properties["notes"].MetaString("widget"); got != "textarea" {
		t.Fatalf("expected widget meta, got %q", got)
	}
	if got := pet.Properties["born"].Format; got != "date" {
		t.Fatalf("expected date format, got %q", got)
	}
	if len(pet.When) != 1 || pet.When[0].If != `kind == "dog"` {
		t.Fatalf("expected one branch, got %+v", pet.When)
	}

	// The branch drives lookups like any schema document.
	license, err := schema.LookupString(pet, map[string]any{"kind": "dog"}, "license")
	if err != nil || license.Type != schema.TypeString {
		t.Fatalf("expected license under the dog branch, got %+v, %v", license, err)
	}
	if _, err := schema.LookupString(pet, map[string]any{"kind": "cat"}, "license"); !errors.Is(err, schema.ErrNoSchemaNode) {
		t.Fatalf("expected ErrNoSchemaNode outside the branch, got %v", err)
	}
}

func TestRequestBodyMergesAllOf(t *testing.T) {
	t.Parallel()

	body, err := load(t).RequestBody("createPet")
	if err != nil {
		t.Fatalf("RequestBody returned error: %v", err)
	}
	if body.Type != schema.TypeObject {
		t.Fatalf("expected object, got %q", body.Type)
	}
	for _, name := range []string{"name", "owner", "license"} {
		wantRequired := name != "license"
		if body.IsRequired(name) != wantRequired {
			t.Fatalf("%s: required = %v", name, !wantRequired)
		}
	}
	if _, ok := body.Property("owner"); !ok {
		t.Fatalf("expected owner property")
	}
	if _, ok := body.Property("weight"); !ok {
		t.Fatalf("expected weight from the referenced part")
	}
	if len(body.When) != 1 {
		t.Fatalf("expected branches carried over from allOf, got %d", len(body.When))
	}
}

func TestRecursiveComponent(t *testing.T) {
	t.Parallel()

	tree, err := load(t).Component("Node")
	if err != nil {
		t.Fatalf("Component returned error: %v", err)
	}
	items := tree.Properties["children"].Items
	if items == nil {
		t.Fatalf("expected items")
	}
	if got, _ := items.MetaString(openapi.MetaRef); got != "#/components/schemas/Node" {
		t.Fatalf("expected cycle cut with a ref marker, got %+v", items)
	}
}

func TestErrors(t *testing.T) {
	t.Parallel()

	spec := load(t)
	if _, err := spec.Component("Missing"); !errors.Is(err, openapi.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := spec.RequestBody("nope"); !errors.Is(err, openapi.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := spec.RequestBody("delete:/pets/{id}"); !errors.Is(err, openapi.ErrNoRequestBody) {
		t.Fatalf("expected ErrNoRequestBody, got %v", err)
	}
	if _, err := openapi.Load(context.Background(), []byte("  ")); err == nil {
		t.Fatalf("expected error for empty payload")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := openapi.Load(ctx, []byte(petstore)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
