package prompt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formbind/pkg/errmap"
	"github.com/goliatone/go-formbind/pkg/field"
	"github.com/goliatone/go-formbind/pkg/form"
	"github.com/goliatone/go-formbind/pkg/path"
	"github.com/goliatone/go-formbind/pkg/schema"
	"github.com/goliatone/go-formbind/pkg/widgets"
)

const defaultRounds = 3

// FillOption configures a Filler.
type FillOption func(*Filler)

// WithRounds caps how many times invalid fields are asked again after the
// first pass. Zero validates once and stops.
func WithRounds(rounds int) FillOption {
	return func(f *Filler) {
		if rounds >= 0 {
			f.rounds = rounds
		}
	}
}

// WithLogger sets the logger for fill progress.
func WithLogger(logger *slog.Logger) FillOption {
	return func(f *Filler) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// Filler walks the leaf fields of a form and asks a Driver for each value.
// Fields revealed by conditional branches are asked as they appear.
type Filler struct {
	driver Driver
	rounds int
	logger *slog.Logger
}

// NewFiller returns a Filler backed by driver.
func NewFiller(driver Driver, opts ...FillOption) *Filler {
	f := &Filler{driver: driver, rounds: defaultRounds, logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Fill asks every leaf once, then validates and asks again for the fields
// that have errors. It returns the final validation result.
func (f *Filler) Fill(ctx context.Context, target *form.Form) (errmap.Store, error) {
	if f.driver == nil {
		return errmap.Store{}, errors.New("prompt: driver is required")
	}

	asked := make(map[string]bool)
	for {
		leaf, ok, err := f.nextLeaf(target, asked)
		if err != nil {
			return errmap.Store{}, err
		}
		if !ok {
			break
		}
		asked[leaf.String()] = true
		if err := f.ask(ctx, target, leaf); err != nil {
			return errmap.Store{}, err
		}
	}

	for round := 0; ; round++ {
		found, err := target.ValidateField(ctx, "")
		if err != nil {
			return errmap.Store{}, err
		}
		f.logger.Debug("fill round validated", "round", round, "errors", found.Len())
		if found.IsEmpty() || round >= f.rounds {
			return found, nil
		}
		for _, line := range found.Entries() {
			if err := f.driver.Info(ctx, fmt.Sprintf("%s: %s", label(line.Path, nil), line.Message)); err != nil {
				return errmap.Store{}, err
			}
		}
		leaves, err := leavesOf(target)
		if err != nil {
			return errmap.Store{}, err
		}
		for _, leaf := range leaves {
			if len(found.Query(leaf, false)) == 0 {
				continue
			}
			if err := f.ask(ctx, target, leaf); err != nil {
				return errmap.Store{}, err
			}
		}
	}
}

func (f *Filler) nextLeaf(target *form.Form, asked map[string]bool) (path.Path, bool, error) {
	leaves, err := leavesOf(target)
	if err != nil {
		return nil, false, err
	}
	for _, leaf := range leaves {
		if !asked[leaf.String()] {
			return leaf, true, nil
		}
	}
	return nil, false, nil
}

func leavesOf(target *form.Form) ([]path.Path, error) {
	return Leaves(target.Schema(), target.Snapshot().Model)
}

// Leaves lists the non-object positions of root for model, in path order.
// Arrays are leaves; conditional branches are folded in first.
func Leaves(root *schema.Node, model any) ([]path.Path, error) {
	flat, err := schema.Materialize(root, model)
	if err != nil {
		return nil, err
	}
	var out []path.Path
	var walk func(n *schema.Node, at path.Path)
	walk = func(n *schema.Node, at path.Path) {
		if n == nil {
			return
		}
		if len(n.Properties) == 0 || n.Type == schema.TypeArray {
			out = append(out, at)
			return
		}
		for _, name := range n.PropertyNames() {
			walk(n.Properties[name], path.Join(at, path.Of(name)))
		}
	}
	walk(flat, path.Root)
	sort.SliceStable(out, func(i, j int) bool { return path.Compare(out[i], out[j]) < 0 })
	return out, nil
}

func (f *Filler) ask(ctx context.Context, target *form.Form, at path.Path) error {
	binding, err := target.Field(field.Config{Path: at.String()})
	if err != nil {
		return err
	}
	node := binding.Descriptor.Node
	message := binding.Descriptor.Label
	if message == "" {
		message = label(at, node)
	}
	help := ""
	if node != nil {
		help = node.Description
	}
	if binding.Invalid {
		message += " (" + strings.Join(binding.Messages(), "; ") + ")"
	}
	f.logger.Debug("asking field", "path", at.String(), "widget", binding.Widget.Name())

	var value any
	switch binding.Kind {
	case widgets.KindToggle:
		current, _ := binding.Value.(bool)
		value, err = f.driver.Confirm(ctx, ConfirmConfig{Path: at.String(), Message: message, Default: current, Help: help})
	case widgets.KindNumber:
		value, err = f.askNumber(ctx, at, node, message, help, binding.Value)
	case widgets.KindDate:
		value, err = f.askDate(ctx, at, message, help, binding.Value)
	case widgets.KindSelect:
		value, err = f.askSelect(ctx, at, node, message, help, binding.Value)
	default:
		value, err = f.askText(ctx, at, binding.Widget, message, help, binding.Value)
	}
	if err != nil {
		return err
	}
	return binding.OnChangeValue(value)
}

func (f *Filler) askText(ctx context.Context, at path.Path, w widgets.Widget, message, help string, current any) (any, error) {
	var (
		out string
		err error
	)
	if w != nil && w.Name() == widgets.WidgetTextArea {
		out, err = f.driver.TextArea(ctx, TextAreaConfig{Path: at.String(), Message: message, Default: display(current), Help: help})
	} else {
		out, err = f.driver.Input(ctx, InputConfig{Path: at.String(), Message: message, Default: display(current), Help: help})
	}
	if err != nil || out == "" {
		return nil, err
	}
	return out, nil
}

func (f *Filler) askNumber(ctx context.Context, at path.Path, node *schema.Node, message, help string, current any) (any, error) {
	integer := node != nil && node.Type == schema.TypeInteger
	parse := func(text string) (any, error) {
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, nil
		}
		if integer {
			n, err := strconv.Atoi(text)
			if err != nil {
				return nil, fmt.Errorf("%q is not a whole number", text)
			}
			return n, nil
		}
		n, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", text)
		}
		return n, nil
	}
	out, err := f.driver.Input(ctx, InputConfig{
		Path:    at.String(),
		Message: message,
		Default: display(current),
		Help:    help,
		Validator: func(text string) error {
			_, err := parse(text)
			return err
		},
	})
	if err != nil {
		return nil, err
	}
	return parse(out)
}

func (f *Filler) askDate(ctx context.Context, at path.Path, message, help string, current any) (any, error) {
	out, err := f.driver.Input(ctx, InputConfig{
		Path:    at.String(),
		Message: message + " [YYYY-MM-DD]",
		Default: display(current),
		Help:    help,
		Validator: func(text string) error {
			if strings.TrimSpace(text) == "" {
				return nil
			}
			if _, err := time.Parse(time.DateOnly, strings.TrimSpace(text)); err != nil {
				return fmt.Errorf("%q is not a date", text)
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	if out = strings.TrimSpace(out); out == "" {
		return nil, nil
	}
	return out, nil
}

func (f *Filler) askSelect(ctx context.Context, at path.Path, node *schema.Node, message, help string, current any) (any, error) {
	values := enumOf(node)
	multiple := node != nil && node.Type == schema.TypeArray
	if len(values) == 0 {
		return f.askList(ctx, at, message, help, current, multiple)
	}
	options := make([]string, len(values))
	for i, v := range values {
		options[i] = fmt.Sprint(v)
	}

	if !multiple {
		idx, err := f.driver.Select(ctx, SelectConfig{
			Path:         at.String(),
			Message:      message,
			Options:      options,
			DefaultIndex: indexOf(options, display(current)),
			Help:         help,
		})
		if err != nil || idx < 0 || idx >= len(values) {
			return nil, err
		}
		return values[idx], nil
	}

	var defaults []int
	if list, ok := current.([]any); ok {
		for _, item := range list {
			if idx := indexOf(options, fmt.Sprint(item)); idx >= 0 {
				defaults = append(defaults, idx)
			}
		}
	}
	picked, err := f.driver.MultiSelect(ctx, SelectConfig{
		Path:         at.String(),
		Message:      message,
		Options:      options,
		DefaultIndex: -1,
		Defaults:     defaults,
		Help:         help,
	})
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(picked))
	for _, idx := range picked {
		if idx >= 0 && idx < len(values) {
			out = append(out, values[idx])
		}
	}
	return out, nil
}

// askList reads a comma separated list for arrays without enumerated items.
func (f *Filler) askList(ctx context.Context, at path.Path, message, help string, current any, multiple bool) (any, error) {
	if !multiple {
		return f.askText(ctx, at, nil, message, help, current)
	}
	var parts []string
	if list, ok := current.([]any); ok {
		for _, item := range list {
			parts = append(parts, fmt.Sprint(item))
		}
	}
	out, err := f.driver.Input(ctx, InputConfig{
		Path:    at.String(),
		Message: message + " (comma separated)",
		Default: strings.Join(parts, ", "),
		Help:    help,
	})
	if err != nil {
		return nil, err
	}
	items := []any{}
	for _, part := range strings.Split(out, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items, nil
}

func enumOf(node *schema.Node) []any {
	if node == nil {
		return nil
	}
	if len(node.Enum) > 0 {
		return node.Enum
	}
	if node.Items != nil {
		return node.Items.Enum
	}
	return nil
}

func label(at path.Path, node *schema.Node) string {
	if node != nil && node.Title != "" {
		return node.Title
	}
	if at.IsRoot() {
		return "value"
	}
	return at.String()
}

func display(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
