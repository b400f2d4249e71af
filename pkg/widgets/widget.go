package widgets

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the value family a widget edits.
type Kind string

const (
	KindText   Kind = "text"
	KindNumber Kind = "number"
	KindToggle Kind = "toggle"
	KindDate   Kind = "date"
	KindSelect Kind = "select"
)

// Built-in widget keys registered by Default.
const (
	WidgetInput    = "input"
	WidgetTextArea = "textarea"
	WidgetNumber   = "number"
	WidgetToggle   = "toggle"
	WidgetDate     = "date"
	WidgetSelect   = "select"
)

// ErrUnknownWidget is returned when a widget key has no registry entry.
var ErrUnknownWidget = errors.New("widgets: unknown widget")

// Widget is an opaque handle to a renderer. The binding engine only reads its
// name and kind; everything else belongs to the rendering host.
type Widget interface {
	Name() string
	Kind() Kind
}

type builtin struct {
	name string
	kind Kind
}

func (w builtin) Name() string { return w.name }
func (w builtin) Kind() Kind   { return w.kind }

func (w builtin) String() string {
	return fmt.Sprintf("%s(%s)", w.name, w.kind)
}

// New returns a plain widget handle with the given name and kind.
func New(name string, kind Kind) Widget {
	return builtin{name: strings.TrimSpace(name), kind: kind}
}

var (
	Input      = New(WidgetInput, KindText)
	TextArea   = New(WidgetTextArea, KindText)
	Number     = New(WidgetNumber, KindNumber)
	Toggle     = New(WidgetToggle, KindToggle)
	DatePicker = New(WidgetDate, KindDate)
	Select     = New(WidgetSelect, KindSelect)
)

// Ref is either a registry key or a concrete widget. The zero Ref refers to
// nothing.
type Ref struct {
	key    string
	widget Widget
}

// Named refers to a widget by registry key.
func Named(key string) Ref {
	return Ref{key: strings.TrimSpace(key)}
}

// Concrete wraps a widget that is used as-is.
func Concrete(w Widget) Ref {
	return Ref{widget: w}
}

// IsZero reports whether the ref points at nothing.
func (r Ref) IsZero() bool {
	return r.widget == nil && r.key == ""
}

// Key returns the registry key for named refs.
func (r Ref) Key() (string, bool) {
	return r.key, r.widget == nil && r.key != ""
}

// Widget returns the widget for concrete refs.
func (r Ref) Widget() (Widget, bool) {
	return r.widget, r.widget != nil
}

func (r Ref) String() string {
	switch {
	case r.widget != nil:
		return r.widget.Name()
	case r.key != "":
		return r.key
	}
	return "<none>"
}
