// Package condition evaluates the small boolean rules attached to
// conditional schema branches.
//
// Supported forms:
//   - truthiness: `enabled`, `!enabled`
//   - comparisons: `name == "jason"`, `count != 3`, `age >= 18`
//   - composition: `a && (b || !c)`
//
// Identifiers are paths (`more.isCool`, `items[0].name`) read from the scope's
// Local value; the `$root.` prefix reads from the whole model instead.
package condition

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-formbind/pkg/path"
	"github.com/goliatone/go-formbind/pkg/value"
)

// RootPrefix addresses the whole model instead of the local object.
const RootPrefix = "$root."

// ErrSyntax wraps every parse failure.
var ErrSyntax = errors.New("condition: syntax error")

// Scope carries the values a rule can see. Local is usually the object that
// owns the conditional branch; Root is the complete model.
type Scope struct {
	Local any
	Root  any
}

func (s Scope) lookup(identifier string) (any, bool) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, false
	}
	if strings.HasPrefix(identifier, RootPrefix) {
		return value.Get(s.Root, path.Parse(identifier[len(RootPrefix):]))
	}
	if identifier == "$root" {
		return s.Root, s.Root != nil
	}
	return value.Get(s.Local, path.Parse(identifier))
}

// Expr is a compiled rule.
type Expr struct {
	source string
	root   node
}

// Source returns the rule text the expression was compiled from.
func (e Expr) Source() string {
	return e.source
}

// Eval evaluates the compiled rule. An empty rule is always true.
func (e Expr) Eval(scope Scope) (bool, error) {
	if e.root == nil {
		return true, nil
	}
	return e.root.eval(scope)
}

// Compile parses rule into a reusable expression.
func Compile(rule string) (Expr, error) {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return Expr{source: rule}, nil
	}
	tokens, err := tokenize(trimmed)
	if err != nil {
		return Expr{}, err
	}
	root, err := parse(tokens)
	if err != nil {
		return Expr{}, err
	}
	return Expr{source: rule, root: root}, nil
}

// Evaluator compiles rules once and caches them by source text. It is safe
// for concurrent use.
type Evaluator struct {
	mu    sync.RWMutex
	cache map[string]Expr
}

// New returns an Evaluator with an empty cache.
func New() *Evaluator {
	return &Evaluator{cache: make(map[string]Expr)}
}

// Eval compiles (or reuses) rule and evaluates it against scope.
func (e *Evaluator) Eval(rule string, scope Scope) (bool, error) {
	expr, err := e.compile(rule)
	if err != nil {
		return false, err
	}
	return expr.Eval(scope)
}

func (e *Evaluator) compile(rule string) (Expr, error) {
	if e == nil {
		return Compile(rule)
	}
	e.mu.RLock()
	expr, ok := e.cache[rule]
	e.mu.RUnlock()
	if ok {
		return expr, nil
	}
	expr, err := Compile(rule)
	if err != nil {
		return Expr{}, err
	}
	e.mu.Lock()
	if e.cache == nil {
		e.cache = make(map[string]Expr)
	}
	e.cache[rule] = expr
	e.mu.Unlock()
	return expr, nil
}

func syntaxErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSyntax, fmt.Sprintf(format, args...))
}
