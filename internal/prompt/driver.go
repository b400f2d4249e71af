// Package prompt fills a form field by field through an interactive driver.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted signals the user aborted input (Ctrl+C).
var ErrAborted = errors.New("prompt: aborted")

// InputConfig configures a single-line text prompt.
type InputConfig struct {
	Path      string
	Message   string
	Default   string
	Help      string
	Validator func(string) error
}

// TextAreaConfig configures a multi-line text prompt.
type TextAreaConfig struct {
	Path    string
	Message string
	Default string
	Help    string
}

// ConfirmConfig configures a yes/no prompt.
type ConfirmConfig struct {
	Path    string
	Message string
	Default bool
	Help    string
}

// SelectConfig configures single and multi-select prompts. DefaultIndex is
// -1 for no default.
type SelectConfig struct {
	Path         string
	Message      string
	Options      []string
	DefaultIndex int
	Defaults     []int
	Help         string
}

// Driver asks the questions. Implementations can be swapped so the fill flow
// runs without a terminal.
type Driver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	TextArea(ctx context.Context, cfg TextAreaConfig) (string, error)
	Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error)
	Select(ctx context.Context, cfg SelectConfig) (int, error)
	MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error)
	Info(ctx context.Context, msg string) error
}

// Survey drives a terminal with AlecAivazis/survey.
type Survey struct {
	out  io.Writer
	opts []survey.AskOpt
}

var _ Driver = (*Survey)(nil)

// NewSurvey returns a terminal driver on the process stdio.
func NewSurvey() *Survey {
	return &Survey{out: os.Stdout}
}

// NewSurveyStdio returns a terminal driver bound to the given streams.
func NewSurveyStdio(in terminal.FileReader, out terminal.FileWriter, errOut io.Writer) *Survey {
	return &Survey{
		out:  out,
		opts: []survey.AskOpt{survey.WithStdio(in, out, errOut)},
	}
}

func (d *Survey) ask(prompt survey.Prompt, response any, extra ...survey.AskOpt) error {
	opts := append(append([]survey.AskOpt(nil), d.opts...), extra...)
	if err := survey.AskOne(prompt, response, opts...); err != nil {
		return translateSurveyErr(err)
	}
	return nil
}

func (d *Survey) Input(ctx context.Context, cfg InputConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Input{Message: cfg.Message, Help: cfg.Help, Default: cfg.Default}
	var extra []survey.AskOpt
	if cfg.Validator != nil {
		validate := cfg.Validator
		extra = append(extra, survey.WithValidator(func(ans any) error {
			text, _ := ans.(string)
			return validate(text)
		}))
	}
	if err := d.ask(prompt, &out, extra...); err != nil {
		return "", err
	}
	return out, nil
}

func (d *Survey) TextArea(ctx context.Context, cfg TextAreaConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Multiline{Message: cfg.Message, Help: cfg.Help, Default: cfg.Default}
	if err := d.ask(prompt, &out); err != nil {
		return "", err
	}
	return out, nil
}

func (d *Survey) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var out bool
	prompt := &survey.Confirm{Message: cfg.Message, Help: cfg.Help, Default: cfg.Default}
	if err := d.ask(prompt, &out); err != nil {
		return false, err
	}
	return out, nil
}

func (d *Survey) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var out string
	prompt := &survey.Select{Message: cfg.Message, Options: cfg.Options, Help: cfg.Help}
	if cfg.DefaultIndex >= 0 && cfg.DefaultIndex < len(cfg.Options) {
		prompt.Default = cfg.Options[cfg.DefaultIndex]
	}
	if err := d.ask(prompt, &out); err != nil {
		return 0, err
	}
	return indexOf(cfg.Options, out), nil
}

func (d *Survey) MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []string
	prompt := &survey.MultiSelect{Message: cfg.Message, Options: cfg.Options, Help: cfg.Help}
	if len(cfg.Defaults) > 0 {
		prompt.Default = optionsAt(cfg.Options, cfg.Defaults)
	}
	if err := d.ask(prompt, &out); err != nil {
		return nil, err
	}
	return indicesOf(cfg.Options, out), nil
}

func (d *Survey) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

func indexOf(options []string, value string) int {
	for i, option := range options {
		if option == value {
			return i
		}
	}
	return -1
}

func indicesOf(options, values []string) []int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	var out []int
	for i, option := range options {
		if _, ok := seen[option]; ok {
			out = append(out, i)
		}
	}
	return out
}

func optionsAt(options []string, indices []int) []string {
	var out []string
	for _, idx := range indices {
		if idx >= 0 && idx < len(options) {
			out = append(out, options[idx])
		}
	}
	return out
}
