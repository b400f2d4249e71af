package widgets

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formbind/pkg/schema"
)

// Matcher decides whether a widget should render the supplied schema node.
type Matcher func(node *schema.Node) bool

type rule struct {
	key      string
	priority int
	match    Matcher
	order    int
}

// Registry maps widget keys to widgets and infers a widget for schema nodes
// from registered matchers. Higher priority matchers win; ties fall back to
// registration order. A Registry is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	widgets map[string]Widget
	rules   []rule
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{widgets: make(map[string]Widget)}
}

// Default returns a registry holding the built-in widgets and the standard
// inference rules: enum and array nodes select, dates use the date picker,
// booleans toggle, numbers use the number input and everything else falls
// back to the text input.
func Default() *Registry {
	reg := NewRegistry()
	for _, w := range []Widget{Input, TextArea, Number, Toggle, DatePicker, Select} {
		reg.Register(w.Name(), w)
	}
	reg.registerInference()
	return reg
}

// Register stores w under key. Later registrations replace earlier ones.
// Blank keys and nil widgets are ignored.
func (r *Registry) Register(key string, w Widget) {
	key = strings.TrimSpace(key)
	if r == nil || key == "" || w == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.widgets == nil {
		r.widgets = make(map[string]Widget)
	}
	r.widgets[key] = w
}

// Match adds an inference rule resolving to the widget registered under key.
// The key is looked up when the rule fires, so replacing the widget later
// also changes what the rule infers.
func (r *Registry) Match(key string, priority int, matcher Matcher) {
	key = strings.TrimSpace(key)
	if r == nil || key == "" || matcher == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, rule{key: key, priority: priority, match: matcher, order: len(r.rules)})
}

// Lookup returns the widget registered under key.
func (r *Registry) Lookup(key string) (Widget, error) {
	trimmed := strings.TrimSpace(key)
	if r != nil {
		r.mu.RLock()
		w, ok := r.widgets[trimmed]
		r.mu.RUnlock()
		if ok {
			return w, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownWidget, key)
}

// Deref turns a Ref into a widget. Concrete refs are returned as-is; named
// refs go through Lookup.
func (r *Registry) Deref(ref Ref) (Widget, error) {
	if w, ok := ref.Widget(); ok {
		return w, nil
	}
	if key, ok := ref.Key(); ok {
		return r.Lookup(key)
	}
	return nil, errors.New("widgets: empty widget reference")
}

// Infer returns the widget chosen by the highest priority matching rule.
func (r *Registry) Infer(node *schema.Node) (Widget, bool) {
	if r == nil || node == nil {
		return nil, false
	}
	r.mu.RLock()
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()

	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if !entry.match(node) {
			continue
		}
		if w, err := r.Lookup(entry.key); err == nil {
			return w, true
		}
	}
	return nil, false
}

// Keys lists the registered widget keys in lexical order.
func (r *Registry) Keys() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.widgets))
	for key := range r.widgets {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (r *Registry) registerInference() {
	r.Match(WidgetSelect, 100, func(node *schema.Node) bool {
		return len(node.Enum) > 0
	})
	r.Match(WidgetDate, 90, isDate)
	r.Match(WidgetToggle, 80, func(node *schema.Node) bool {
		return node.Type == schema.TypeBoolean
	})
	r.Match(WidgetNumber, 70, func(node *schema.Node) bool {
		return node.Type == schema.TypeNumber || node.Type == schema.TypeInteger
	})
	r.Match(WidgetSelect, 60, func(node *schema.Node) bool {
		return node.Type == schema.TypeArray
	})
	r.Match(WidgetInput, 10, func(node *schema.Node) bool {
		return node.Type == schema.TypeString
	})
	r.Match(WidgetInput, -100, func(*schema.Node) bool { return true })
}

func isDate(node *schema.Node) bool {
	if node.Type == schema.TypeDate {
		return true
	}
	if node.Type != schema.TypeString && node.Type != "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(node.Format)) {
	case "date", "date-time":
		return true
	}
	return false
}
