package errmap_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbind/pkg/errmap"
	"github.com/goliatone/go-formbind/pkg/path"
)

func keys(entries []errmap.Entry) []string {
	out := make([]string, len(entries))
	for i, entry := range entries {
		out[i] = entry.Key()
	}
	return out
}

func TestQuery_InclusiveAndExclusive(t *testing.T) {
	t.Parallel()

	name := path.Parse("name")

	exact := errmap.New(map[string]string{"name": "required"})
	for _, exclusive := range []bool{false, true} {
		if got := keys(exact.Query(name, exclusive)); !cmp.Equal(got, []string{"name"}) {
			t.Fatalf("exclusive=%v: expected [name], got %v", exclusive, got)
		}
	}

	nested := errmap.New(map[string]string{"name.first": "too short"})
	if got := keys(nested.Query(name, false)); !cmp.Equal(got, []string{"name.first"}) {
		t.Fatalf("inclusive should include descendants, got %v", got)
	}
	if got := nested.Query(name, true); len(got) != 0 {
		t.Fatalf("exclusive must ignore descendants, got %v", keys(got))
	}

	indexed := errmap.New(map[string]string{"name[1].foo": "bad", "names": "other", "name": "self"})
	if got := keys(indexed.Query(name, false)); !cmp.Equal(got, []string{"name", "name[1].foo"}) {
		t.Fatalf("unexpected inclusive matches: %v", got)
	}
	if got := keys(indexed.Query(name, true)); !cmp.Equal(got, []string{"name"}) {
		t.Fatalf("exclusive keeps only the exact entry, got %v", got)
	}
}

func TestValidityOf(t *testing.T) {
	t.Parallel()

	if v := errmap.ValidityOf(nil); !v.Valid || v.Invalid {
		t.Fatalf("no entries means valid, got %+v", v)
	}
	if v := errmap.ValidityOf([]errmap.Entry{{Path: path.Parse("a"), Message: "x"}}); v.Valid || !v.Invalid {
		t.Fatalf("entries mean invalid, got %+v", v)
	}
}

func TestApplyPatch_ReplaceSubtreeIsolation(t *testing.T) {
	t.Parallel()

	store := errmap.New(map[string]string{"name": "foo", "name.first": "old", "bar": "baz"})
	got := errmap.ApplyPatch(store, path.Parse("name"), errmap.Patch{}, errmap.ReplaceSubtree)

	if diff := cmp.Diff(map[string]string{"bar": "baz"}, got.Map()); diff != "" {
		t.Fatalf("store mismatch (-want +got):\n%s", diff)
	}
	if store.Len() != 3 {
		t.Fatalf("ApplyPatch mutated its input")
	}
}

func TestApplyPatch_MergePreservesAndAugments(t *testing.T) {
	t.Parallel()

	store := errmap.New(map[string]string{"name": "foo", "bar": "baz"})
	got := errmap.ApplyPatch(store, path.Parse("name"), errmap.Patch{"": "foo", "first": "baz"}, errmap.ReplaceSubtree)

	want := map[string]string{"name": "foo", "name.first": "baz", "bar": "baz"}
	if diff := cmp.Diff(want, got.Map()); diff != "" {
		t.Fatalf("store mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyPatch_RelativeKeys(t *testing.T) {
	t.Parallel()

	base := path.Parse("name")
	cases := []struct {
		name  string
		store map[string]string
		patch errmap.Patch
		mode  errmap.Mode
		want  map[string]string
	}{
		{
			name:  "replace drops stale descendants",
			store: map[string]string{"name": "err", "name.first": "stale"},
			patch: errmap.Patch{"": "err"},
			mode:  errmap.ReplaceSubtree,
			want:  map[string]string{"name": "err"},
		},
		{
			name:  "merge keeps stale descendants",
			store: map[string]string{"name": "err", "name.first": "stale"},
			patch: errmap.Patch{"": "err"},
			mode:  errmap.Merge,
			want:  map[string]string{"name": "err", "name.first": "stale"},
		},
		{
			name:  "indexed keys continue the base",
			store: map[string]string{"foo": "keep"},
			patch: errmap.Patch{"[1].foo": "bad", "[1].baz.foo": "worse"},
			mode:  errmap.ReplaceSubtree,
			want:  map[string]string{"foo": "keep", "name[1].foo": "bad", "name[1].baz.foo": "worse"},
		},
		{
			name:  "blank messages remove",
			store: map[string]string{"name": "err", "name.first": "x"},
			patch: errmap.Patch{"first": " "},
			mode:  errmap.Merge,
			want:  map[string]string{"name": "err"},
		},
		{
			name:  "siblings with other names survive",
			store: map[string]string{"foo": "bar", "text": "baz", "name": "old"},
			patch: errmap.Patch{"": "new"},
			mode:  errmap.ReplaceSubtree,
			want:  map[string]string{"foo": "bar", "text": "baz", "name": "new"},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := errmap.ApplyPatch(errmap.New(tc.store), base, tc.patch, tc.mode)
			if diff := cmp.Diff(tc.want, got.Map()); diff != "" {
				t.Fatalf("store mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApplyPatch_RootBase(t *testing.T) {
	t.Parallel()

	store := errmap.New(map[string]string{"a": "1", "b": "2"})
	got := errmap.ApplyPatch(store, path.Root, errmap.Patch{"c": "3"}, errmap.ReplaceSubtree)
	if diff := cmp.Diff(map[string]string{"c": "3"}, got.Map()); diff != "" {
		t.Fatalf("replacing the root subtree replaces everything (-want +got):\n%s", diff)
	}
}

func TestStoreHelpers(t *testing.T) {
	t.Parallel()

	store := errmap.New(map[string]string{
		"items.10": "ten",
		"items[2]": "two",
		"name":     "name",
		"name.a":   "nested",
		"zip":      "zip",
		"blank":    "  ",
	})

	if store.Len() != 5 {
		t.Fatalf("blank messages should be skipped, got %d entries", store.Len())
	}
	if diff := cmp.Diff([]string{"two", "ten", "name", "nested", "zip"}, store.Summary()); diff != "" {
		t.Fatalf("summary order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"name", "nested", "zip"}, store.Messages(path.Parse("zip"), path.Parse("name"), path.Parse("name.a"))); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
	if msg, ok := store.Get(path.Parse("items[10]")); !ok || msg != "ten" {
		t.Fatalf("canonical lookup failed: %q %v", msg, ok)
	}

	updated := store.Set(path.Parse("zip"), "")
	if _, ok := updated.Get(path.Parse("zip")); ok {
		t.Fatalf("blank Set should remove the entry")
	}
	if _, ok := store.Get(path.Parse("zip")); !ok {
		t.Fatalf("Set mutated the receiver")
	}

	merged := errmap.New(map[string]string{"a": "1"}).Merge(errmap.New(map[string]string{"a": "2", "b": "3"}))
	if !merged.Equal(errmap.New(map[string]string{"a": "2", "b": "3"})) {
		t.Fatalf("unexpected merge result: %v", merged.Map())
	}

	var zero errmap.Store
	if !zero.IsEmpty() || zero.Query(path.Root, false) != nil {
		t.Fatalf("zero store should be empty")
	}
}
