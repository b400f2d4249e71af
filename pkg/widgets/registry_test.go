package widgets

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbind/pkg/schema"
)

func TestInfer_Builtins(t *testing.T) {
	t.Parallel()

	reg := Default()
	cases := []struct {
		name   string
		node   schema.Node
		expect Widget
	}{
		{name: "string", node: schema.Node{Type: schema.TypeString}, expect: Input},
		{name: "integer", node: schema.Node{Type: schema.TypeInteger}, expect: Number},
		{name: "number", node: schema.Node{Type: schema.TypeNumber}, expect: Number},
		{name: "boolean", node: schema.Node{Type: schema.TypeBoolean}, expect: Toggle},
		{name: "date type", node: schema.Node{Type: schema.TypeDate}, expect: DatePicker},
		{name: "date format", node: schema.Node{Type: schema.TypeString, Format: "date-time"}, expect: DatePicker},
		{name: "enum", node: schema.Node{Type: schema.TypeString, Enum: []any{"a", "b"}}, expect: Select},
		{name: "array", node: schema.Node{Type: schema.TypeArray}, expect: Select},
		{name: "object falls back", node: schema.Node{Type: schema.TypeObject}, expect: Input},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := reg.Infer(&tc.node)
			if !ok || got != tc.expect {
				t.Fatalf("expected %v, got %v (ok=%v)", tc.expect, got, ok)
			}
		})
	}
}

func TestInfer_PriorityAndOrder(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	first := New("first", KindText)
	second := New("second", KindText)
	urgent := New("urgent", KindText)
	reg.Register("first", first)
	reg.Register("second", second)
	reg.Register("urgent", urgent)

	always := func(*schema.Node) bool { return true }
	reg.Match("first", 1, always)
	reg.Match("second", 1, always)
	if got, _ := reg.Infer(&schema.Node{}); got != first {
		t.Fatalf("ties should keep registration order, got %v", got)
	}

	reg.Match("urgent", 5, always)
	if got, _ := reg.Infer(&schema.Node{}); got != urgent {
		t.Fatalf("higher priority should win, got %v", got)
	}

	reg.Match("missing", 10, always)
	if got, _ := reg.Infer(&schema.Node{}); got != urgent {
		t.Fatalf("rules pointing at unregistered keys are skipped, got %v", got)
	}

	if _, ok := NewRegistry().Infer(&schema.Node{}); ok {
		t.Fatalf("an empty registry never infers")
	}
}

func TestRegister_ReplacesInferredWidget(t *testing.T) {
	t.Parallel()

	reg := Default()
	custom := New("fancy-toggle", KindToggle)
	reg.Register(WidgetToggle, custom)
	if got, _ := reg.Infer(&schema.Node{Type: schema.TypeBoolean}); got != custom {
		t.Fatalf("expected replaced toggle, got %v", got)
	}
}

func TestDeref(t *testing.T) {
	t.Parallel()

	reg := Default()
	custom := New("custom", KindDate)

	if got, err := reg.Deref(Concrete(custom)); err != nil || got != custom {
		t.Fatalf("concrete refs are used as-is: %v %v", got, err)
	}
	if got, err := reg.Deref(Named("textarea")); err != nil || got != TextArea {
		t.Fatalf("named lookup: %v %v", got, err)
	}
	if _, err := reg.Deref(Named("nope")); !errors.Is(err, ErrUnknownWidget) {
		t.Fatalf("expected ErrUnknownWidget, got %v", err)
	}
	if _, err := reg.Deref(Ref{}); err == nil {
		t.Fatalf("zero ref must fail")
	}
	if !(Ref{}).IsZero() || !Named(" ").IsZero() {
		t.Fatalf("blank refs should be zero")
	}
}

func TestKeys(t *testing.T) {
	t.Parallel()

	want := []string{"date", "input", "number", "select", "textarea", "toggle"}
	if diff := cmp.Diff(want, Default().Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}
