package errmap

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formbind/pkg/path"
)

var (
	messagePolicy     *bluemonday.Policy
	messagePolicyOnce sync.Once
)

func sanitizer() *bluemonday.Policy {
	messagePolicyOnce.Do(func() {
		messagePolicy = bluemonday.StrictPolicy()
	})
	return messagePolicy
}

// Payload is the result of normalizing an external error payload.
type Payload struct {
	// Fields holds field-level messages.
	Fields Store
	// Form holds messages that do not address a field.
	Form []string
}

// FromPayload normalizes server or validator error payloads. Keys may be
// dotted paths, bracketed paths, JSON pointers (`/items/0/name`, `#/name`) or
// `$.`-prefixed paths. Messages are stripped of markup, trimmed and
// de-duplicated; several messages for one path are joined with "; ".
// Keys such as "", "form" or "__all__" are collected as form-level messages.
func FromPayload(payload map[string][]string) Payload {
	var out Payload
	if len(payload) == 0 {
		return out
	}

	grouped := make(map[string][]string)
	for _, raw := range sortedKeys(payload) {
		messages := cleanMessages(payload[raw])
		if len(messages) == 0 {
			continue
		}
		if isFormLevelKey(raw) {
			out.Form = append(out.Form, messages...)
			continue
		}
		p := payloadPath(raw)
		if p.IsRoot() {
			out.Form = append(out.Form, messages...)
			continue
		}
		key := p.String()
		grouped[key] = append(grouped[key], messages...)
	}

	fields := make(map[string]string, len(grouped))
	for key, messages := range grouped {
		fields[key] = strings.Join(cleanMessages(messages), "; ")
	}
	out.Fields = New(fields)
	out.Form = cleanMessages(out.Form)
	return out
}

func payloadPath(raw string) path.Path {
	trimmed := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(trimmed, "#"), strings.HasPrefix(trimmed, "/"):
		return path.FromPointer(trimmed)
	case strings.HasPrefix(trimmed, "$"):
		return path.Parse(strings.TrimLeft(trimmed, "$."))
	}
	return path.Parse(trimmed)
}

func cleanMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	policy := sanitizer()
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		// Sanitize escapes entities; messages are plain text.
		cleaned := strings.TrimSpace(html.UnescapeString(policy.Sanitize(message)))
		if cleaned == "" {
			continue
		}
		if _, dup := seen[cleaned]; dup {
			continue
		}
		seen[cleaned] = struct{}{}
		out = append(out, cleaned)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "__all__", "non_field_errors", "non-field-errors":
		return true
	}
	return false
}
