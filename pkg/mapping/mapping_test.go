package mapping_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbind/pkg/mapping"
	"github.com/goliatone/go-formbind/pkg/path"
	"github.com/goliatone/go-formbind/pkg/value"
)

func TestToWidgetValue(t *testing.T) {
	t.Parallel()

	model := map[string]any{"name": "foo", "lastName": "bar"}
	name := path.Parse("name")

	cases := []struct {
		name string
		cfg  mapping.ToValue
		want any
	}{
		{name: "plain", want: "foo"},
		{
			name: "func",
			cfg: mapping.ToValueFunc(func(model any) any {
				v, _ := value.Lookup(model, "lastName")
				return v
			}),
			want: "bar",
		},
		{
			name: "accessor map",
			cfg: mapping.ToValueMap(map[string]mapping.Accessor{
				"first": mapping.At("name"),
				"last":  mapping.At("lastName"),
			}),
			want: map[string]any{"first": "foo", "last": "bar"},
		},
		{
			name: "computed entry",
			cfg: mapping.ToValueMap(map[string]mapping.Accessor{
				"full": mapping.Compute(func(model any) any {
					m := model.(map[string]any)
					return m["name"].(string) + " " + m["lastName"].(string)
				}),
				"missing": mapping.At("nope"),
			}),
			want: map[string]any{"full": "foo bar", "missing": nil},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := mapping.ToWidgetValue(model, name, tc.cfg)
			if err != nil {
				t.Fatalf("ToWidgetValue returned error: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("widget value mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if got, err := mapping.ToWidgetValue(model, path.Parse("absent"), mapping.ToValue{}); err != nil || got != nil {
		t.Fatalf("absent values should be nil, got %v (%v)", got, err)
	}
}

func TestToModelPatch(t *testing.T) {
	t.Parallel()

	name := path.Parse("name")
	event := map[string]any{"value": "john", "target": map[string]any{"checked": true}}

	cases := []struct {
		name string
		args []any
		cfg  mapping.FromValue
		want value.Patch
	}{
		{name: "identity", args: []any{"john"}, want: value.Patch{"name": "john"}},
		{name: "no args", want: value.Patch{"name": nil}},
		{name: "key", args: []any{event}, cfg: mapping.FromKey("value"), want: value.Patch{"name": "john"}},
		{name: "nested key", args: []any{event}, cfg: mapping.FromKey("target.checked"), want: value.Patch{"name": true}},
		{
			name: "func bare value",
			args: []any{"a", "b"},
			cfg: mapping.FromFunc(func(args ...any) any {
				return args[0].(string) + args[1].(string)
			}),
			want: value.Patch{"name": "ab"},
		},
		{
			name: "func fields merge at root",
			args: []any{"a", "b"},
			cfg: mapping.FromFunc(func(args ...any) any {
				return mapping.Fields{"name": args[0], "text": args[1]}
			}),
			want: value.Patch{"name": "a", "text": "b"},
		},
		{
			name: "func plain map is a value",
			args: []any{"a"},
			cfg: mapping.FromFunc(func(args ...any) any {
				return map[string]any{"first": args[0]}
			}),
			want: value.Patch{"name": map[string]any{"first": "a"}},
		},
		{
			name: "map",
			args: []any{event, "extra"},
			cfg: mapping.FromMap(map[string]mapping.Source{
				"name":        mapping.Key("value"),
				"more.isCool": mapping.Key("target.checked"),
				"items.0":     mapping.Call(func(args ...any) any { return args[1] }),
			}),
			want: value.Patch{"name": "john", "more.isCool": true, "items[0]": "extra"},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := mapping.ToModelPatch(tc.args, name, tc.cfg)
			if err != nil {
				t.Fatalf("ToModelPatch returned error: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("patch mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIdentityPatchTouchesOnlyTheField(t *testing.T) {
	t.Parallel()

	model := map[string]any{"name": "jason", "bar": 1}
	patch, err := mapping.ToModelPatch([]any{"john"}, path.Parse("name"), mapping.FromValue{})
	if err != nil {
		t.Fatalf("ToModelPatch returned error: %v", err)
	}
	want := map[string]any{"name": "john", "bar": 1}
	if diff := cmp.Diff(want, value.Apply(model, patch)); diff != "" {
		t.Fatalf("model mismatch (-want +got):\n%s", diff)
	}
}

func TestInvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := mapping.ToWidgetValue(nil, path.Root, mapping.ToValueFunc(nil))
	assertConfigError(t, err, "ToValueFunc")

	_, err = mapping.ToWidgetValue(nil, path.Root, mapping.ToValueMap(map[string]mapping.Accessor{"x": {}}))
	assertConfigError(t, err, `ToValueMap["x"]`)

	_, err = mapping.ToModelPatch(nil, path.Root, mapping.FromFunc(nil))
	assertConfigError(t, err, "FromFunc")

	_, err = mapping.ToModelPatch(nil, path.Root, mapping.FromKey("  "))
	assertConfigError(t, err, "FromKey")

	_, err = mapping.ToModelPatch(nil, path.Root, mapping.FromMap(map[string]mapping.Source{"x": {}}))
	assertConfigError(t, err, `FromMap["x"]`)

	for _, fields := range []map[string]mapping.Source{nil, {}} {
		_, err = mapping.ToModelPatch([]any{"x"}, path.Parse("name"), mapping.FromMap(fields))
		assertConfigError(t, err, "FromMap")
	}
	for _, fields := range []map[string]mapping.Accessor{nil, {}} {
		_, err = mapping.ToWidgetValue(map[string]any{"name": "x"}, path.Parse("name"), mapping.ToValueMap(fields))
		assertConfigError(t, err, "ToValueMap")
	}
}

func assertConfigError(t *testing.T, err error, field string) {
	t.Helper()
	if !errors.Is(err, mapping.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	var cfgErr *mapping.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Field != field {
		t.Fatalf("expected ConfigError for %s, got %#v", field, err)
	}
}
