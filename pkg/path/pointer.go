package path

import "strings"

// FromPointer converts an RFC 6901 JSON pointer (optionally prefixed with a
// URI fragment '#') into a path. Numeric reference tokens become index
// segments.
func FromPointer(pointer string) Path {
	trimmed := strings.TrimSpace(pointer)
	trimmed = strings.TrimPrefix(trimmed, "#")
	if trimmed == "" {
		return Root
	}
	trimmed = strings.TrimPrefix(trimmed, "/")

	tokens := strings.Split(trimmed, "/")
	out := make(Path, 0, len(tokens))
	for _, token := range tokens {
		token = strings.ReplaceAll(token, "~1", "/")
		token = strings.ReplaceAll(token, "~0", "~")
		if idx, ok := parseIndex(token); ok {
			out = append(out, Index(idx))
			continue
		}
		out = append(out, Name(token))
	}
	return out
}

// Pointer renders the path as an RFC 6901 JSON pointer. The root renders as
// the empty string.
func (p Path) Pointer() string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	for _, seg := range p {
		b.WriteByte('/')
		token := seg.Key()
		token = strings.ReplaceAll(token, "~", "~0")
		token = strings.ReplaceAll(token, "/", "~1")
		b.WriteString(token)
	}
	return b.String()
}
