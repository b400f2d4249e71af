package errmap

import (
	"fmt"

	"github.com/goliatone/go-formbind/pkg/path"
)

// Mode selects how ApplyPatch treats entries already stored under the base
// path.
type Mode int

const (
	// Merge upserts the patch and keeps everything else.
	Merge Mode = iota
	// ReplaceSubtree drops the base path and its descendants before merging.
	// Fields use it when reporting their own validation outcome.
	ReplaceSubtree
)

func (m Mode) String() string {
	switch m {
	case Merge:
		return "merge"
	case ReplaceSubtree:
		return "replace-subtree"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Patch maps paths relative to a base path to messages. The empty key
// addresses the base itself; `first` and `[1].foo` address descendants. A
// blank message removes the entry.
type Patch map[string]string

// ApplyPatch joins every patch key onto base and applies it to s according to
// mode. Entries outside base's subtree are never touched.
func ApplyPatch(s Store, base path.Path, patch Patch, mode Mode) Store {
	out := s
	if mode == ReplaceSubtree {
		out = out.RemoveSubtree(base)
	}
	if len(patch) == 0 {
		return out
	}

	out = out.clone(len(patch))
	for _, key := range sortedKeys(patch) {
		put(out.entries, path.Join(base, path.Parse(key)), patch[key])
	}
	return out
}

// Merge applies every entry of other on top of s.
func (s Store) Merge(other Store) Store {
	if other.IsEmpty() {
		return s
	}
	out := s.clone(other.Len())
	for key, entry := range other.entries {
		out.entries[key] = entry
	}
	return out
}
