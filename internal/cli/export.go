package cli

import (
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbind/pkg/validation"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Model string
}

// NewExportCommand prints the JSON Schema document a model is validated
// against.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <schema>",
		Short: "Print the JSON Schema (draft 2020-12) for a schema",
		Long:  "Conditional branches are folded in for the given model; without a model only unconditional fields are exported.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts, args[0])
		},
	}
	cmd.Flags().StringVarP(&opts.Model, "model", "m", "", "model file used to resolve conditional branches")
	return cmd
}

func runExport(cmd *cobra.Command, opts *ExportOptions, location string) error {
	formatter := newFormatter(cmd, opts.RootOptions)

	root, err := loadSchema(cmd.Context(), opts.RootOptions, location)
	if err != nil {
		_ = formatter.Error(ErrCodeSchema, err.Error(), nil, nil)
		return WrapExitError(ExitCommandError, "load schema", err)
	}
	var model any
	if opts.Model != "" {
		if model, err = readData(cmd, opts.Model); err != nil {
			_ = formatter.Error(ErrCodeModel, err.Error(), nil, nil)
			return WrapExitError(ExitCommandError, "read model", err)
		}
	}

	validator, err := validation.NewJSONSchema(root)
	if err != nil {
		_ = formatter.Error(ErrCodeSchema, err.Error(), nil, nil)
		return WrapExitError(ExitCommandError, "compile schema", err)
	}
	doc, err := validator.Document(model)
	if err != nil {
		_ = formatter.Error(ErrCodeSchema, err.Error(), nil, nil)
		return WrapExitError(ExitCommandError, "export", err)
	}

	return formatter.Success(json.RawMessage(doc), func(w io.Writer) {
		_, _ = w.Write(append(doc, '\n'))
	})
}
