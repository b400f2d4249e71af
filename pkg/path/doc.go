// Package path parses and composes field paths such as `name`,
// `more.isCool` or `items[1].foo`. Dotted and bracketed notations normalize
// to the same segment list, so `a.b`, `a["b"]`, `a.1` and `a[1]` compare
// equal structurally. Parsing is total: malformed input degrades segment by
// segment instead of failing, which keeps hand-authored field markup
// forgiving.
package path
