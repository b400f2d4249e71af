package path

import (
	"strconv"
	"strings"
)

// Segment is a single step into the model: either a field name or a numeric
// index. The zero value is an empty name segment.
type Segment struct {
	name    string
	index   int
	isIndex bool
}

// Name returns a field-name segment.
func Name(name string) Segment {
	return Segment{name: name}
}

// Index returns a numeric index segment. Negative indices are clamped to 0.
func Index(idx int) Segment {
	if idx < 0 {
		idx = 0
	}
	return Segment{index: idx, isIndex: true}
}

// IsIndex reports whether the segment addresses a sequence position.
func (s Segment) IsIndex() bool {
	return s.isIndex
}

// Position returns the index for index segments.
func (s Segment) Position() (int, bool) {
	if !s.isIndex {
		return 0, false
	}
	return s.index, true
}

// Key returns the map key this segment addresses. Index segments render their
// decimal form so numeric keys in objects stay reachable.
func (s Segment) Key() string {
	if s.isIndex {
		return strconv.Itoa(s.index)
	}
	return s.name
}

func (s Segment) String() string {
	if s.isIndex {
		return "[" + strconv.Itoa(s.index) + "]"
	}
	if needsQuoting(s.name) {
		return "[" + strconv.Quote(s.name) + "]"
	}
	return s.name
}

// Path is an ordered list of segments. The empty path addresses the model
// root.
type Path []Segment

// Root is the empty path.
var Root Path

// Of builds a path from names and indices. Strings become name segments and
// ints become index segments; other values are ignored.
func Of(parts ...any) Path {
	out := make(Path, 0, len(parts))
	for _, part := range parts {
		switch v := part.(type) {
		case string:
			out = append(out, Name(v))
		case int:
			out = append(out, Index(v))
		case Segment:
			out = append(out, v)
		}
	}
	return out
}

// IsRoot reports whether the path addresses the model root.
func (p Path) IsRoot() bool {
	return len(p) == 0
}

// String renders the path in dotted notation with bracketed indices, for
// example `items[1].foo`. Names that would not survive a Parse round trip are
// quoted inside brackets.
func (p Path) String() string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	for i, seg := range p {
		text := seg.String()
		if i > 0 && !strings.HasPrefix(text, "[") {
			b.WriteByte('.')
		}
		b.WriteString(text)
	}
	return b.String()
}

// Equal compares two paths segment-wise.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix is p itself or one of its ancestors.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	return p[:len(prefix)].Equal(prefix)
}

// IsDescendantOf reports whether p sits strictly below ancestor.
func (p Path) IsDescendantOf(ancestor Path) bool {
	return len(p) > len(ancestor) && p.HasPrefix(ancestor)
}

// Parent returns the path without its last segment. The root is its own
// parent.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return Root
	}
	return p[: len(p)-1 : len(p)-1]
}

// Last returns the final segment, if any.
func (p Path) Last() (Segment, bool) {
	if len(p) == 0 {
		return Segment{}, false
	}
	return p[len(p)-1], true
}

// Rel returns the segments of p below base. ok is false when base is not a
// prefix of p.
func (p Path) Rel(base Path) (Path, bool) {
	if !p.HasPrefix(base) {
		return nil, false
	}
	return append(Path(nil), p[len(base):]...), true
}

// Compare orders paths segment by segment: indices sort numerically and
// before names, names sort lexically, and a prefix sorts before its
// descendants. It returns -1, 0 or +1.
func Compare(a, b Path) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := compareSegment(a[i], b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

func compareSegment(a, b Segment) int {
	switch {
	case a.isIndex && b.isIndex:
		return compareInt(a.index, b.index)
	case a.isIndex:
		return -1
	case b.isIndex:
		return 1
	}
	return strings.Compare(a.name, b.name)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Join appends rel to base without aliasing either input.
func Join(base Path, rel ...Path) Path {
	size := len(base)
	for _, r := range rel {
		size += len(r)
	}
	out := make(Path, 0, size)
	out = append(out, base...)
	for _, r := range rel {
		out = append(out, r...)
	}
	return out
}

// JoinString joins two textual paths. A relative path starting with a
// bracket continues the base's last segment; a bare name is dot-joined. The
// result is in canonical form.
func JoinString(base, rel string) string {
	return Join(Parse(base), Parse(rel)).String()
}

// Canonical parses and re-renders text, yielding the single textual form
// used for map keys.
func Canonical(text string) string {
	return Parse(text).String()
}

func needsQuoting(name string) bool {
	if name == "" || strings.TrimSpace(name) != name {
		return true
	}
	if strings.ContainsAny(name, ".[]\"'") {
		return true
	}
	_, numeric := parseIndex(name)
	return numeric
}

func parseIndex(raw string) (int, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
