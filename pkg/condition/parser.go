package condition

import (
	"fmt"
	"strconv"
	"strings"
)

type node interface {
	eval(scope Scope) (bool, error)
}

type orNode struct{ left, right node }

func (n orNode) eval(scope Scope) (bool, error) {
	ok, err := n.left.eval(scope)
	if err != nil || ok {
		return ok, err
	}
	return n.right.eval(scope)
}

type andNode struct{ left, right node }

func (n andNode) eval(scope Scope) (bool, error) {
	ok, err := n.left.eval(scope)
	if err != nil || !ok {
		return false, err
	}
	return n.right.eval(scope)
}

type notNode struct{ inner node }

func (n notNode) eval(scope Scope) (bool, error) {
	ok, err := n.inner.eval(scope)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

type truthyNode struct{ identifier string }

func (n truthyNode) eval(scope Scope) (bool, error) {
	v, ok := scope.lookup(n.identifier)
	if !ok {
		return false, nil
	}
	return truthy(v), nil
}

type compareNode struct {
	identifier string
	op         tokenKind
	literal    token
}

func (n compareNode) eval(scope Scope) (bool, error) {
	v, _ := scope.lookup(n.identifier)

	switch n.literal.kind {
	case tokNull:
		return equality(n.op, v == nil)
	case tokBool:
		got, _ := coerceBool(v)
		return equality(n.op, got == (n.literal.text == "true"))
	case tokNumber:
		want, err := strconv.ParseFloat(n.literal.text, 64)
		if err != nil {
			return false, syntaxErr("invalid number literal %q", n.literal.text)
		}
		got, ok := coerceNumber(v)
		if !ok {
			if n.op == tokEq || n.op == tokNeq {
				return equality(n.op, false)
			}
			return false, nil
		}
		return ordered(n.op, compareFloat(got, want))
	default:
		if v == nil && n.op != tokEq && n.op != tokNeq {
			return false, nil
		}
		return ordered(n.op, strings.Compare(coerceString(v), n.literal.text))
	}
}

func equality(op tokenKind, equal bool) (bool, error) {
	switch op {
	case tokEq:
		return equal, nil
	case tokNeq:
		return !equal, nil
	default:
		return false, fmt.Errorf("condition: operator %s needs a number or string operand", opText(op))
	}
}

func ordered(op tokenKind, cmp int) (bool, error) {
	switch op {
	case tokEq:
		return cmp == 0, nil
	case tokNeq:
		return cmp != 0, nil
	case tokLt:
		return cmp < 0, nil
	case tokLte:
		return cmp <= 0, nil
	case tokGt:
		return cmp > 0, nil
	case tokGte:
		return cmp >= 0, nil
	}
	return false, fmt.Errorf("condition: unsupported operator %s", opText(op))
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func opText(op tokenKind) string {
	switch op {
	case tokEq:
		return "=="
	case tokNeq:
		return "!="
	case tokLt:
		return "<"
	case tokLte:
		return "<="
	case tokGt:
		return ">"
	case tokGte:
		return ">="
	}
	return "?"
}

func isComparison(kind tokenKind) bool {
	switch kind {
	case tokEq, tokNeq, tokLt, tokLte, tokGt, tokGte:
		return true
	}
	return false
}

type stream struct {
	tokens []token
	pos    int
}

func parse(tokens []token) (node, error) {
	s := &stream{tokens: tokens}
	root, err := s.parseOr()
	if err != nil {
		return nil, err
	}
	if s.pos < len(s.tokens) {
		return nil, syntaxErr("unexpected token %q", s.tokens[s.pos].text)
	}
	return root, nil
}

func (s *stream) parseOr() (node, error) {
	left, err := s.parseAnd()
	if err != nil {
		return nil, err
	}
	for s.match(tokOr) {
		right, err := s.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orNode{left: left, right: right}
	}
	return left, nil
}

func (s *stream) parseAnd() (node, error) {
	left, err := s.parseUnary()
	if err != nil {
		return nil, err
	}
	for s.match(tokAnd) {
		right, err := s.parseUnary()
		if err != nil {
			return nil, err
		}
		left = andNode{left: left, right: right}
	}
	return left, nil
}

func (s *stream) parseUnary() (node, error) {
	if s.match(tokNot) {
		inner, err := s.parseUnary()
		if err != nil {
			return nil, err
		}
		return notNode{inner: inner}, nil
	}
	return s.parsePrimary()
}

func (s *stream) parsePrimary() (node, error) {
	if s.match(tokLParen) {
		inner, err := s.parseOr()
		if err != nil {
			return nil, err
		}
		if !s.match(tokRParen) {
			return nil, syntaxErr("missing closing ')'")
		}
		return inner, nil
	}

	if s.pos >= len(s.tokens) {
		return nil, syntaxErr("unexpected end of expression")
	}
	ident := s.tokens[s.pos]
	if ident.kind != tokIdent {
		return nil, syntaxErr("expected identifier, got %q", ident.text)
	}
	s.pos++

	if s.pos < len(s.tokens) && isComparison(s.tokens[s.pos].kind) {
		op := s.tokens[s.pos].kind
		s.pos++
		lit, err := s.literal()
		if err != nil {
			return nil, err
		}
		return compareNode{identifier: ident.text, op: op, literal: lit}, nil
	}
	return truthyNode{identifier: ident.text}, nil
}

func (s *stream) match(kind tokenKind) bool {
	if s.pos < len(s.tokens) && s.tokens[s.pos].kind == kind {
		s.pos++
		return true
	}
	return false
}

func (s *stream) literal() (token, error) {
	if s.pos >= len(s.tokens) {
		return token{}, syntaxErr("missing literal")
	}
	tok := s.tokens[s.pos]
	s.pos++
	switch tok.kind {
	case tokString, tokNumber, tokBool, tokNull:
		return tok, nil
	case tokIdent:
		// bare words compare as strings
		return token{kind: tokString, text: tok.text}, nil
	}
	return token{}, syntaxErr("expected literal, got %q", tok.text)
}

func truthy(v any) bool {
	switch typed := v.(type) {
	case nil:
		return false
	case bool:
		return typed
	case string:
		return strings.TrimSpace(typed) != ""
	case []any:
		return len(typed) > 0
	case map[string]any:
		return len(typed) > 0
	}
	if n, ok := coerceNumber(v); ok {
		return n != 0
	}
	return true
}

func coerceBool(v any) (bool, bool) {
	switch typed := v.(type) {
	case nil:
		return false, false
	case bool:
		return typed, true
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(typed)); err == nil {
			return parsed, true
		}
	}
	return truthy(v), true
}

func coerceNumber(v any) (float64, bool) {
	switch typed := v.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case uint:
		return float64(typed), true
	case uint64:
		return float64(typed), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		return f, err == nil
	}
	return 0, false
}

func coerceString(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case []byte:
		return string(typed)
	}
	return fmt.Sprint(v)
}
