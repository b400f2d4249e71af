package condition

import (
	"errors"
	"testing"
)

func TestEvalComparisons(t *testing.T) {
	t.Parallel()

	local := map[string]any{
		"name":    "jason",
		"age":     21,
		"score":   "7.5",
		"enabled": "true",
		"more":    map[string]any{"isCool": true},
		"tags":    []any{"a", "b"},
	}
	scope := Scope{Local: local, Root: map[string]any{"mode": "edit", "form": local}}

	cases := []struct {
		rule string
		want bool
	}{
		{rule: `name == "jason"`, want: true},
		{rule: `name == 'jason'`, want: true},
		{rule: `name != "john"`, want: true},
		{rule: `name == jason`, want: true},
		{rule: `age >= 18`, want: true},
		{rule: `age < 18`, want: false},
		{rule: `score > 7`, want: true},
		{rule: `score <= 7.5`, want: true},
		{rule: `enabled == true`, want: true},
		{rule: `more.isCool`, want: true},
		{rule: `!more.isCool`, want: false},
		{rule: `tags[1] == "b"`, want: true},
		{rule: `missing`, want: false},
		{rule: `missing == null`, want: true},
		{rule: `missing > 3`, want: false},
		{rule: `$root.mode == "edit"`, want: true},
		{rule: `$root.form.age == 21`, want: true},
		{rule: `name == "jason" && (age < 10 || more.isCool)`, want: true},
		{rule: `!(name == "jason") || missing`, want: false},
		{rule: `   `, want: true},
	}

	eval := New()
	for _, tc := range cases {
		got, err := eval.Eval(tc.rule, scope)
		if err != nil {
			t.Fatalf("Eval(%q) returned error: %v", tc.rule, err)
		}
		if got != tc.want {
			t.Fatalf("Eval(%q): want %v, got %v", tc.rule, tc.want, got)
		}
	}
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()

	rules := []string{
		`name = "x"`,
		`name == "x`,
		`(name == "x"`,
		`name ==`,
		`&& name`,
		`name & other`,
		`"x" == name`,
		`a b`,
	}
	for _, rule := range rules {
		if _, err := Compile(rule); !errors.Is(err, ErrSyntax) {
			t.Fatalf("Compile(%q): expected ErrSyntax, got %v", rule, err)
		}
	}
}

func TestEvalOrderingOnBool(t *testing.T) {
	t.Parallel()

	expr, err := Compile(`flag > true`)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if _, err := expr.Eval(Scope{Local: map[string]any{"flag": true}}); err == nil {
		t.Fatalf("expected an error ordering booleans")
	}
}

func TestEvaluatorCachesCompiledRules(t *testing.T) {
	t.Parallel()

	eval := New()
	if _, err := eval.Eval("a", Scope{}); err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if _, ok := eval.cache["a"]; !ok {
		t.Fatalf("expected compiled rule to be cached")
	}

	var nilEval *Evaluator
	ok, err := nilEval.Eval("a", Scope{Local: map[string]any{"a": 1}})
	if err != nil || !ok {
		t.Fatalf("nil evaluator should still evaluate: ok=%v err=%v", ok, err)
	}
}
