package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goliatone/go-formbind/pkg/path"
)

// ErrInvalidAnswer is returned when a scripted answer does not fit its
// prompt.
var ErrInvalidAnswer = errors.New("prompt: invalid answer")

// Answers is a non-interactive Driver that replies from a map keyed by
// canonical field path. Unanswered prompts take their default.
type Answers struct {
	values map[string]any
	out    io.Writer
}

var _ Driver = (*Answers)(nil)

// NewAnswers builds a scripted driver. Keys are canonicalized; Info messages
// go to out (discarded when nil).
func NewAnswers(values map[string]any, out io.Writer) *Answers {
	canonical := make(map[string]any, len(values))
	for key, value := range values {
		canonical[path.Canonical(key)] = value
	}
	if out == nil {
		out = io.Discard
	}
	return &Answers{values: canonical, out: out}
}

func (a *Answers) lookup(p string) (any, bool) {
	v, ok := a.values[path.Canonical(p)]
	return v, ok
}

func (a *Answers) text(ctx context.Context, p, fallback string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	v, ok := a.lookup(p)
	if !ok || v == nil {
		return fallback, nil
	}
	return fmt.Sprint(v), nil
}

func (a *Answers) Input(ctx context.Context, cfg InputConfig) (string, error) {
	out, err := a.text(ctx, cfg.Path, cfg.Default)
	if err != nil {
		return "", err
	}
	if cfg.Validator != nil {
		if err := cfg.Validator(out); err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrInvalidAnswer, cfg.Path, err)
		}
	}
	return out, nil
}

func (a *Answers) TextArea(ctx context.Context, cfg TextAreaConfig) (string, error) {
	return a.text(ctx, cfg.Path, cfg.Default)
}

func (a *Answers) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	v, ok := a.lookup(cfg.Path)
	if !ok || v == nil {
		return cfg.Default, nil
	}
	switch typed := v.(type) {
	case bool:
		return typed, nil
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(typed))
		if err != nil {
			return false, fmt.Errorf("%w: %s: %v", ErrInvalidAnswer, cfg.Path, err)
		}
		return parsed, nil
	}
	return false, fmt.Errorf("%w: %s: expected a boolean, got %T", ErrInvalidAnswer, cfg.Path, v)
}

func (a *Answers) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	v, ok := a.lookup(cfg.Path)
	if !ok || v == nil {
		return cfg.DefaultIndex, nil
	}
	idx := indexOf(cfg.Options, fmt.Sprint(v))
	if idx < 0 {
		return 0, fmt.Errorf("%w: %s: %v is not one of %s", ErrInvalidAnswer, cfg.Path, v, strings.Join(cfg.Options, ", "))
	}
	return idx, nil
}

func (a *Answers) MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, ok := a.lookup(cfg.Path)
	if !ok || v == nil {
		return cfg.Defaults, nil
	}
	list, ok := v.([]any)
	if !ok {
		list = []any{v}
	}
	out := make([]int, 0, len(list))
	for _, item := range list {
		idx := indexOf(cfg.Options, fmt.Sprint(item))
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s: %v is not one of %s", ErrInvalidAnswer, cfg.Path, item, strings.Join(cfg.Options, ", "))
		}
		out = append(out, idx)
	}
	return out, nil
}

func (a *Answers) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(a.out, msg)
	return err
}
