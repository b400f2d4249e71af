package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-formbind/pkg/schema"
)

const doc = "type: object\nproperties:\n  name: {type: string}\n"

func TestLoadFile(t *testing.T) {
	t.Parallel()

	name := filepath.Join(t.TempDir(), "form.yaml")
	if err := os.WriteFile(name, []byte(doc), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	got, err := New().Load(context.Background(), schema.SourceFromFile(name))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	node, err := got.Node()
	if err != nil {
		t.Fatalf("Node returned error: %v", err)
	}
	if _, ok := node.Property("name"); !ok {
		t.Fatalf("expected name property")
	}
	if got.Location() != name {
		t.Fatalf("location = %q, want %q", got.Location(), name)
	}

	if _, err := New().Load(context.Background(), schema.SourceFromFile(filepath.Join(t.TempDir(), "missing.yaml"))); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestLoadFS(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{
		"schemas/form.yaml":  {Data: []byte(doc)},
		"schemas/empty.yaml": {Data: []byte("  \n")},
	}
	l := New(WithFileSystem(files))

	if _, err := l.Load(context.Background(), schema.SourceFromFS("/schemas/form.yaml")); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if _, err := l.Load(context.Background(), schema.SourceFromFS("schemas/empty.yaml")); !errors.Is(err, schema.ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
	if _, err := New().Load(context.Background(), schema.SourceFromFS("schemas/form.yaml")); err == nil {
		t.Fatalf("expected error without a file system")
	}
}

func TestLoadHTTP(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/form.yaml" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(doc))
	}))
	t.Cleanup(server.Close)

	src := schema.MustSourceFromURL(server.URL + "/form.yaml")
	if _, err := New().Load(context.Background(), src); !errors.Is(err, ErrHTTPDisabled) {
		t.Fatalf("expected ErrHTTPDisabled, got %v", err)
	}

	l := New(WithHTTPClient(server.Client()))
	if _, err := l.Load(context.Background(), src); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if _, err := l.Load(context.Background(), schema.MustSourceFromURL(server.URL+"/missing")); err == nil {
		t.Fatalf("expected error for 404")
	}
}

func TestLoadCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().Load(ctx, schema.SourceFromFile("form.yaml")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := New().Load(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil source")
	}
}
