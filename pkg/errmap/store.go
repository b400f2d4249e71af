// Package errmap keeps validation messages keyed by model path.
//
// A Store is immutable: every update returns a new Store and leaves the
// receiver untouched, so a snapshot can be shared freely between readers.
package errmap

import (
	"sort"
	"strings"

	"github.com/goliatone/go-formbind/pkg/path"
)

// Entry is one message attached to a path.
type Entry struct {
	Path    path.Path
	Message string
}

// Key returns the canonical textual path of the entry.
func (e Entry) Key() string {
	return e.Path.String()
}

// Validity is the per-field summary derived from active entries.
type Validity struct {
	Valid   bool
	Invalid bool
}

// ValidityOf reports a field invalid when it has at least one active entry.
func ValidityOf(entries []Entry) Validity {
	invalid := len(entries) > 0
	return Validity{Valid: !invalid, Invalid: invalid}
}

// Store maps canonical paths to a single message. The zero Store is empty
// and ready to use.
type Store struct {
	entries map[string]Entry
}

// New builds a Store from textual paths. Keys are canonicalized, so `a.1`
// and `a[1]` collapse into one entry; blank messages are skipped.
func New(messages map[string]string) Store {
	if len(messages) == 0 {
		return Store{}
	}
	entries := make(map[string]Entry, len(messages))
	for _, key := range sortedKeys(messages) {
		message := strings.TrimSpace(messages[key])
		if message == "" {
			continue
		}
		p := path.Parse(key)
		entries[p.String()] = Entry{Path: p, Message: message}
	}
	return Store{entries: entries}
}

// Len returns the number of entries.
func (s Store) Len() int {
	return len(s.entries)
}

// IsEmpty reports whether the store holds no entries.
func (s Store) IsEmpty() bool {
	return len(s.entries) == 0
}

// Get returns the message stored exactly at p.
func (s Store) Get(p path.Path) (string, bool) {
	entry, ok := s.entries[p.String()]
	return entry.Message, ok
}

// Entries returns every entry in path order.
func (s Store) Entries() []Entry {
	out := make([]Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		out = append(out, entry)
	}
	sortEntries(out)
	return out
}

// Map returns a copy of the store as canonical path -> message.
func (s Store) Map() map[string]string {
	out := make(map[string]string, len(s.entries))
	for key, entry := range s.entries {
		out[key] = entry.Message
	}
	return out
}

// Equal reports whether both stores hold the same messages.
func (s Store) Equal(other Store) bool {
	if len(s.entries) != len(other.entries) {
		return false
	}
	for key, entry := range s.entries {
		theirs, ok := other.entries[key]
		if !ok || theirs.Message != entry.Message {
			return false
		}
	}
	return true
}

// Query returns the entries active for a field at p. Exclusive queries match
// the exact path only; inclusive queries also match every strict descendant,
// even when p itself has no entry.
func (s Store) Query(p path.Path, exclusive bool) []Entry {
	if exclusive {
		entry, ok := s.entries[p.String()]
		if !ok {
			return nil
		}
		return []Entry{entry}
	}
	var out []Entry
	for _, entry := range s.entries {
		if entry.Path.HasPrefix(p) {
			out = append(out, entry)
		}
	}
	sortEntries(out)
	return out
}

// Messages returns the inclusive messages of every listed path in path order,
// without duplicates. It backs group-level message displays.
func (s Store) Messages(paths ...path.Path) []string {
	seen := make(map[string]struct{})
	var matched []Entry
	for _, p := range paths {
		for _, entry := range s.Query(p, false) {
			if _, ok := seen[entry.Key()]; ok {
				continue
			}
			seen[entry.Key()] = struct{}{}
			matched = append(matched, entry)
		}
	}
	sortEntries(matched)
	return messagesOf(matched)
}

// Summary returns every message in path order.
func (s Store) Summary() []string {
	return messagesOf(s.Entries())
}

// Set returns a store with message stored at p. A blank message removes the
// entry.
func (s Store) Set(p path.Path, message string) Store {
	out := s.clone(1)
	put(out.entries, p, message)
	return out
}

// RemoveSubtree returns a store without p and its descendants.
func (s Store) RemoveSubtree(p path.Path) Store {
	out := s.clone(0)
	for key, entry := range out.entries {
		if entry.Path.HasPrefix(p) {
			delete(out.entries, key)
		}
	}
	return out
}

func (s Store) clone(extra int) Store {
	entries := make(map[string]Entry, len(s.entries)+extra)
	for key, entry := range s.entries {
		entries[key] = entry
	}
	return Store{entries: entries}
}

func put(entries map[string]Entry, p path.Path, message string) {
	key := p.String()
	message = strings.TrimSpace(message)
	if message == "" {
		delete(entries, key)
		return
	}
	entries[key] = Entry{Path: p, Message: message}
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return path.Compare(entries[i].Path, entries[j].Path) < 0
	})
}

func messagesOf(entries []Entry) []string {
	if len(entries) == 0 {
		return nil
	}
	out := make([]string, len(entries))
	for i, entry := range entries {
		out[i] = entry.Message
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
