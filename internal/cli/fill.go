package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbind"
	"github.com/goliatone/go-formbind/internal/prompt"
	"github.com/goliatone/go-formbind/pkg/form"
)

// FillOptions holds flags for the fill command.
type FillOptions struct {
	*RootOptions
	Model   string
	Answers string
	Output  string
	Rounds  int
}

// FillResult is the result of the fill command.
type FillResult struct {
	Model  any               `json:"model"`
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors,omitempty"`
}

// NewFillCommand fills a model field by field.
func NewFillCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FillOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fill <schema>",
		Short: "Fill a model interactively",
		Long:  "Asks for every field of the schema, revealing conditional fields as answers arrive, then validates and asks again for invalid fields. With --answers the prompts are answered from a file keyed by field path.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFill(cmd, opts, args[0])
		},
	}
	cmd.Flags().StringVarP(&opts.Model, "model", "m", "", "seed model file (JSON or YAML)")
	cmd.Flags().StringVarP(&opts.Answers, "answers", "a", "", "answer file keyed by field path; disables the terminal prompts")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the model to this file instead of stdout")
	cmd.Flags().IntVar(&opts.Rounds, "rounds", 3, "how many times to ask again for invalid fields")
	return cmd
}

func runFill(cmd *cobra.Command, opts *FillOptions, location string) error {
	formatter := newFormatter(cmd, opts.RootOptions)

	root, err := loadSchema(cmd.Context(), opts.RootOptions, location)
	if err != nil {
		_ = formatter.Error(ErrCodeSchema, err.Error(), nil, nil)
		return WrapExitError(ExitCommandError, "load schema", err)
	}

	var formOpts []form.Option
	if opts.Model != "" {
		seed, err := readData(cmd, opts.Model)
		if err != nil {
			_ = formatter.Error(ErrCodeModel, err.Error(), nil, nil)
			return WrapExitError(ExitCommandError, "read model", err)
		}
		formOpts = append(formOpts, form.WithDefaultValue(seed))
	}
	f, err := formbind.NewForm(root, formOpts...)
	if err != nil {
		_ = formatter.Error(ErrCodeSchema, err.Error(), nil, nil)
		return WrapExitError(ExitCommandError, "build form", err)
	}

	driver, err := driverFor(cmd, opts)
	if err != nil {
		_ = formatter.Error(ErrCodeModel, err.Error(), nil, nil)
		return WrapExitError(ExitCommandError, "read answers", err)
	}

	found, err := prompt.NewFiller(driver, prompt.WithRounds(opts.Rounds)).Fill(cmd.Context(), f)
	if err != nil {
		if errors.Is(err, prompt.ErrAborted) {
			_ = formatter.Error(ErrCodeAborted, "aborted", nil, nil)
			return WrapExitError(ExitFailure, "fill", err)
		}
		_ = formatter.Error(ErrCodeModel, err.Error(), nil, nil)
		return WrapExitError(ExitCommandError, "fill", err)
	}

	result := FillResult{Model: f.Snapshot().Model, Valid: found.IsEmpty()}
	if !result.Valid {
		result.Errors = found.Map()
	}

	if opts.Output != "" {
		data, err := json.MarshalIndent(result.Model, "", "  ")
		if err != nil {
			return WrapExitError(ExitCommandError, "encode model", err)
		}
		if err := os.WriteFile(opts.Output, append(data, '\n'), 0o644); err != nil {
			_ = formatter.Error(ErrCodeModel, err.Error(), nil, nil)
			return WrapExitError(ExitCommandError, "write model", err)
		}
		formatter.VerboseLog("model written to %s", opts.Output)
	}

	if !result.Valid {
		_ = formatter.Error(ErrCodeInvalid, fmt.Sprintf("model has %d error(s)", found.Len()), result, func(w io.Writer) {
			for _, entry := range found.Entries() {
				fmt.Fprintf(w, "  %s: %s\n", entry.Key(), entry.Message)
			}
		})
		return NewExitError(ExitFailure, fmt.Sprintf("model has %d error(s)", found.Len()))
	}
	return formatter.Success(result, func(w io.Writer) {
		if opts.Output != "" {
			fmt.Fprintf(w, "✓ Model written to %s\n", opts.Output)
			return
		}
		data, _ := json.MarshalIndent(result.Model, "", "  ")
		fmt.Fprintln(w, string(data))
	})
}

func driverFor(cmd *cobra.Command, opts *FillOptions) (prompt.Driver, error) {
	if opts.Answers != "" {
		raw, err := readData(cmd, opts.Answers)
		if err != nil {
			return nil, err
		}
		answers, ok := raw.(map[string]any)
		if !ok && raw != nil {
			return nil, fmt.Errorf("answers must be an object keyed by field path, got %T", raw)
		}
		return prompt.NewAnswers(answers, cmd.ErrOrStderr()), nil
	}
	in, inOK := cmd.InOrStdin().(*os.File)
	out, outOK := cmd.OutOrStdout().(*os.File)
	if inOK && outOK {
		return prompt.NewSurveyStdio(in, out, cmd.ErrOrStderr()), nil
	}
	return prompt.NewSurvey(), nil
}
