package path

import (
	"strconv"
	"strings"
)

// Parse converts dotted and bracketed path text into segments. It never
// fails: ill-formed input resolves segment by segment. Empty names are
// skipped, purely numeric names become index segments (so `a.1` and `a[1]`
// are the same path), quoted bracket contents are always names and an
// unclosed bracket consumes the rest of the text.
func Parse(text string) Path {
	text = strings.TrimSpace(text)
	if text == "" {
		return Root
	}

	var out Path
	i := 0
	for i < len(text) {
		switch text[i] {
		case '.':
			i++
		case '[':
			raw, next := scanBracket(text, i+1)
			out = appendBracket(out, raw)
			i = next
		default:
			j := i
			for j < len(text) && text[j] != '.' && text[j] != '[' {
				j++
			}
			out = appendName(out, text[i:j])
			i = j
		}
	}
	return out
}

func appendName(out Path, raw string) Path {
	name := strings.TrimSpace(raw)
	if name == "" {
		return out
	}
	if idx, ok := parseIndex(name); ok {
		return append(out, Index(idx))
	}
	return append(out, Name(name))
}

func appendBracket(out Path, raw string) Path {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return out
	}
	if name, ok := unquote(trimmed); ok {
		return append(out, Name(name))
	}
	return appendName(out, trimmed)
}

// scanBracket returns the raw bracket contents starting at i (just after the
// opening bracket) and the position following the closing bracket. Quoted
// contents may contain ']'.
func scanBracket(text string, i int) (string, int) {
	j := i
	for j < len(text) && text[j] == ' ' {
		j++
	}
	if j < len(text) && (text[j] == '"' || text[j] == '\'') {
		quote := text[j]
		k := j + 1
		for k < len(text) {
			if text[k] == '\\' {
				k += 2
				continue
			}
			if text[k] == quote {
				break
			}
			k++
		}
		if k >= len(text) {
			return text[i:], len(text)
		}
		end := strings.IndexByte(text[k+1:], ']')
		if end < 0 {
			return text[i:], len(text)
		}
		return text[i : k+1+end], k + 1 + end + 1
	}

	end := strings.IndexByte(text[i:], ']')
	if end < 0 {
		return text[i:], len(text)
	}
	return text[i : i+end], i + end + 1
}

func unquote(raw string) (string, bool) {
	if len(raw) < 2 {
		return "", false
	}
	first, last := raw[0], raw[len(raw)-1]
	switch {
	case first == '"' && last == '"':
		if value, err := strconv.Unquote(raw); err == nil {
			return value, true
		}
		return raw[1 : len(raw)-1], true
	case first == '\'' && last == '\'':
		return raw[1 : len(raw)-1], true
	default:
		return "", false
	}
}
