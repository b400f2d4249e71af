package condition

import (
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokNumber
	tokBool
	tokNull
	tokEq
	tokNeq
	tokLt
	tokLte
	tokGt
	tokGte
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDelimiter(ch byte) bool {
	if isSpace(ch) {
		return true
	}
	switch ch {
	case '(', ')', '!', '=', '&', '|', '<', '>':
		return true
	}
	return false
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	pos := 0

	peek := func(offset int) byte {
		if pos+offset >= len(input) {
			return 0
		}
		return input[pos+offset]
	}
	emit := func(kind tokenKind, text string) {
		tokens = append(tokens, token{kind: kind, text: text})
		pos += len(text)
	}

	for pos < len(input) {
		ch := input[pos]
		switch {
		case isSpace(ch):
			pos++
		case ch == '(':
			emit(tokLParen, "(")
		case ch == ')':
			emit(tokRParen, ")")
		case ch == '!' && peek(1) == '=':
			emit(tokNeq, "!=")
		case ch == '!':
			emit(tokNot, "!")
		case ch == '=' && peek(1) == '=':
			emit(tokEq, "==")
		case ch == '=':
			return nil, syntaxErr("unexpected '=' at %d; use '=='", pos)
		case ch == '<' && peek(1) == '=':
			emit(tokLte, "<=")
		case ch == '<':
			emit(tokLt, "<")
		case ch == '>' && peek(1) == '=':
			emit(tokGte, ">=")
		case ch == '>':
			emit(tokGt, ">")
		case ch == '&' && peek(1) == '&':
			emit(tokAnd, "&&")
		case ch == '|' && peek(1) == '|':
			emit(tokOr, "||")
		case ch == '&' || ch == '|':
			return nil, syntaxErr("unexpected %q at %d", string(ch), pos)
		case ch == '"' || ch == '\'':
			text, consumed, err := scanString(input[pos:])
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokString, text: text})
			pos += consumed
		default:
			start := pos
			for pos < len(input) && !isDelimiter(input[pos]) {
				pos++
			}
			tokens = append(tokens, classify(input[start:pos]))
		}
	}
	return tokens, nil
}

func scanString(input string) (string, int, error) {
	quote := input[0]
	escaped := false
	for i := 1; i < len(input); i++ {
		ch := input[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' {
			escaped = true
			continue
		}
		if ch != quote {
			continue
		}
		body := input[1:i]
		if quote == '\'' {
			body = strings.ReplaceAll(body, `"`, `\"`)
			body = strings.ReplaceAll(body, `\'`, `'`)
		}
		text, err := strconv.Unquote(`"` + body + `"`)
		if err != nil {
			return "", 0, syntaxErr("invalid string literal %s", input[:i+1])
		}
		return text, i + 1, nil
	}
	return "", 0, syntaxErr("unterminated string literal")
}

func classify(raw string) token {
	switch strings.ToLower(raw) {
	case "true", "false":
		return token{kind: tokBool, text: strings.ToLower(raw)}
	case "null", "nil":
		return token{kind: tokNull, text: "null"}
	}
	if _, err := strconv.ParseFloat(raw, 64); err == nil {
		return token{kind: tokNumber, text: raw}
	}
	return token{kind: tokIdent, text: raw}
}
