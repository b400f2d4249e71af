package value

import (
	"sort"

	"github.com/goliatone/go-formbind/pkg/path"
)

// Patch maps textual paths (relative to the model root) to the values that
// should be written there.
type Patch map[string]any

// Get resolves p inside model. Missing intermediates, out of range indices and
// scalar intermediates all report ok=false; Get never panics.
func Get(model any, p path.Path) (any, bool) {
	current := model
	for _, seg := range p {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[seg.Key()]
			if !ok {
				return nil, false
			}
			current = next
		case map[string]string:
			next, ok := node[seg.Key()]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, ok := seg.Position()
			if !ok || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// Lookup is Get for textual paths.
func Lookup(model any, text string) (any, bool) {
	return Get(model, path.Parse(text))
}

// MaxPadding bounds how many nil elements Set may add in front of an index
// segment, counted from the current length of the slice (zero when the slice
// does not exist yet).
const MaxPadding = 1 << 16

// Set returns a new model with v written at p. Containers along p are copied
// (the input is never mutated) and missing ones are materialized: maps for
// name segments, slices padded with nil for index segments. Subtrees off the
// path are shared with the input. When an index along p lies more than
// MaxPadding past the end of its slice the write is dropped and model is
// returned unchanged.
func Set(model any, p path.Path, v any) any {
	if tooFar(model, p) {
		return model
	}
	return set(model, p, v)
}

func set(model any, p path.Path, v any) any {
	if len(p) == 0 {
		return v
	}
	seg, rest := p[0], p[1:]

	switch node := model.(type) {
	case map[string]any:
		key := seg.Key()
		out := make(map[string]any, len(node)+1)
		for k, existing := range node {
			out[k] = existing
		}
		out[key] = set(node[key], rest, v)
		return out
	case []any:
		if idx, ok := seg.Position(); ok {
			size := len(node)
			if idx >= size {
				size = idx + 1
			}
			out := make([]any, size)
			copy(out, node)
			out[idx] = set(out[idx], rest, v)
			return out
		}
	}

	if idx, ok := seg.Position(); ok {
		out := make([]any, idx+1)
		out[idx] = set(nil, rest, v)
		return out
	}
	return map[string]any{seg.Key(): set(nil, rest, v)}
}

// tooFar reports whether writing p into model would pad some slice by more
// than MaxPadding elements.
func tooFar(model any, p path.Path) bool {
	current := model
	for _, seg := range p {
		idx, isIndex := seg.Position()
		switch node := current.(type) {
		case map[string]any:
			current = node[seg.Key()]
			continue
		case []any:
			if isIndex {
				if idx-len(node) > MaxPadding {
					return true
				}
				if idx < len(node) {
					current = node[idx]
				} else {
					current = nil
				}
				continue
			}
		}
		if isIndex && idx > MaxPadding {
			return true
		}
		current = nil
	}
	return false
}

// Remove returns a new model without the value at p. Map keys are deleted and
// slice elements spliced out. When p does not exist the input is returned
// unchanged. Removing the root yields nil.
func Remove(model any, p path.Path) any {
	if len(p) == 0 {
		return nil
	}
	out, _ := remove(model, p)
	return out
}

func remove(model any, p path.Path) (any, bool) {
	seg, rest := p[0], p[1:]

	switch node := model.(type) {
	case map[string]any:
		key := seg.Key()
		child, ok := node[key]
		if !ok {
			return model, false
		}
		var next any
		if len(rest) > 0 {
			updated, changed := remove(child, rest)
			if !changed {
				return model, false
			}
			next = updated
		}
		out := make(map[string]any, len(node))
		for k, existing := range node {
			out[k] = existing
		}
		if len(rest) == 0 {
			delete(out, key)
		} else {
			out[key] = next
		}
		return out, true
	case []any:
		idx, ok := seg.Position()
		if !ok || idx >= len(node) {
			return model, false
		}
		if len(rest) == 0 {
			out := make([]any, 0, len(node)-1)
			out = append(out, node[:idx]...)
			out = append(out, node[idx+1:]...)
			return out, true
		}
		updated, changed := remove(node[idx], rest)
		if !changed {
			return model, false
		}
		out := make([]any, len(node))
		copy(out, node)
		out[idx] = updated
		return out, true
	default:
		return model, false
	}
}

// Apply writes every patch entry into model with Set, parents before
// children, and returns the new model.
func Apply(model any, patch Patch) any {
	if len(patch) == 0 {
		return model
	}
	keys := make([]string, 0, len(patch))
	for key := range patch {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		pi, pj := path.Parse(keys[i]), path.Parse(keys[j])
		if len(pi) != len(pj) {
			return len(pi) < len(pj)
		}
		return keys[i] < keys[j]
	})

	out := model
	for _, key := range keys {
		out = Set(out, path.Parse(key), patch[key])
	}
	return out
}

// Clone deep-copies maps and slices; scalars are returned as-is.
func Clone(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, child := range typed {
			out[k] = Clone(child)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, child := range typed {
			out[i] = Clone(child)
		}
		return out
	default:
		return typed
	}
}
