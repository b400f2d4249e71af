package formbind_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbind"
	"github.com/goliatone/go-formbind/pkg/field"
	"github.com/goliatone/go-formbind/pkg/path"
	"github.com/goliatone/go-formbind/pkg/schema"
)

const profileYAML = `
type: object
required: [name]
properties:
  name: {type: string, default: ""}
  email: {type: string, format: email}
`

const profileOpenAPI = `{
  "openapi": "3.0.3",
  "info": {"title": "Profiles", "version": "1.0.0"},
  "paths": {
    "/profiles": {
      "post": {
        "operationId": "createProfile",
        "requestBody": {
          "content": {
            "application/json": {"schema": {"$ref": "#/components/schemas/Profile"}}
          }
        },
        "responses": {"201": {"description": "created"}}
      }
    }
  },
  "components": {
    "schemas": {
      "Profile": {
        "type": "object",
        "required": ["name"],
        "properties": {"name": {"type": "string"}}
      }
    }
  }
}`

func TestLoadSchemaFromFS(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{
		"profile.yaml": {Data: []byte(profileYAML)},
		"api.json":     {Data: []byte(profileOpenAPI)},
	}

	node, err := formbind.LoadSchema(context.Background(), schema.SourceFromFS("profile.yaml"), formbind.WithFileSystem(files))
	if err != nil {
		t.Fatalf("LoadSchema returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"email", "name"}, node.PropertyNames()); diff != "" {
		t.Fatalf("properties mismatch (-want +got):\n%s", diff)
	}

	body, err := formbind.LoadSchema(context.Background(), schema.SourceFromFS("api.json"),
		formbind.WithFileSystem(files), formbind.WithOperation("createProfile"))
	if err != nil {
		t.Fatalf("LoadSchema returned error: %v", err)
	}
	if !body.IsRequired("name") {
		t.Fatalf("expected name to be required")
	}
}

func TestParseSchemaOpenAPISelection(t *testing.T) {
	t.Parallel()

	if _, err := formbind.ParseSchema(context.Background(), []byte(profileOpenAPI)); !errors.Is(err, formbind.ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
	node, err := formbind.ParseSchema(context.Background(), []byte(profileOpenAPI), formbind.WithComponent("Profile"))
	if err != nil {
		t.Fatalf("ParseSchema returned error: %v", err)
	}
	if node.Type != schema.TypeObject {
		t.Fatalf("expected object, got %q", node.Type)
	}
}

func TestNewFormValidates(t *testing.T) {
	t.Parallel()

	root := schema.MustParse([]byte(profileYAML))
	f, err := formbind.NewForm(root)
	if err != nil {
		t.Fatalf("NewForm returned error: %v", err)
	}

	binding, err := f.Field(field.Config{Path: "email"})
	if err != nil {
		t.Fatalf("Field returned error: %v", err)
	}
	if err := binding.OnChangeValue("not-an-email"); err != nil {
		t.Fatalf("OnChangeValue returned error: %v", err)
	}

	found, err := f.Validate(context.Background())
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if _, ok := found.Get(path.Of("email")); !ok {
		t.Fatalf("expected an email message, got %v", found.Map())
	}
	if _, ok := found.Get(path.Of("name")); ok {
		t.Fatalf("name has a default and should pass, got %v", found.Map())
	}

	if _, err := formbind.NewForm(nil); err == nil {
		t.Fatalf("expected error for nil schema")
	}
}
