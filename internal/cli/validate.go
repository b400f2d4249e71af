package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbind/pkg/errmap"
	"github.com/goliatone/go-formbind/pkg/form"
	"github.com/goliatone/go-formbind/pkg/validation"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	ServerErrors string
	KeepNulls    bool
	NoFormats    bool
}

// ValidationReport is the result of the validate command.
type ValidationReport struct {
	Valid  bool              `json:"valid"`
	Fields map[string]string `json:"fields,omitempty"`
	Form   []string          `json:"form,omitempty"`
}

// NewValidateCommand validates a model file against a schema.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <schema> <model>",
		Short: "Validate a model against a schema",
		Long:  "Validates the model (JSON or YAML, - for stdin) and prints the messages per field path. Server error payloads given with --server-errors are normalized and merged in.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts, args[0], args[1])
		},
	}
	cmd.Flags().StringVar(&opts.ServerErrors, "server-errors", "", "error payload file mapping field keys to messages")
	cmd.Flags().BoolVar(&opts.KeepNulls, "keep-nulls", false, "validate null members instead of treating them as absent")
	cmd.Flags().BoolVar(&opts.NoFormats, "no-formats", false, "skip format checks (email, date, ...)")
	return cmd
}

func runValidate(cmd *cobra.Command, opts *ValidateOptions, location, modelFile string) error {
	formatter := newFormatter(cmd, opts.RootOptions)

	root, err := loadSchema(cmd.Context(), opts.RootOptions, location)
	if err != nil {
		_ = formatter.Error(ErrCodeSchema, err.Error(), nil, nil)
		return WrapExitError(ExitCommandError, "load schema", err)
	}
	model, err := readData(cmd, modelFile)
	if err != nil {
		_ = formatter.Error(ErrCodeModel, err.Error(), nil, nil)
		return WrapExitError(ExitCommandError, "read model", err)
	}

	validator, err := validation.NewJSONSchema(root,
		validation.WithKeepNulls(opts.KeepNulls),
		validation.WithFormatAssertion(!opts.NoFormats),
	)
	if err != nil {
		_ = formatter.Error(ErrCodeSchema, err.Error(), nil, nil)
		return WrapExitError(ExitCommandError, "compile schema", err)
	}

	var server errmap.Payload
	if opts.ServerErrors != "" {
		raw, err := readData(cmd, opts.ServerErrors)
		if err != nil {
			_ = formatter.Error(ErrCodeModel, err.Error(), nil, nil)
			return WrapExitError(ExitCommandError, "read server errors", err)
		}
		server = errmap.FromPayload(payloadOf(raw))
	}

	f := form.New(root,
		form.WithDefaultValue(model),
		form.WithDefaultErrors(server.Fields),
		form.WithValidator(validator),
	)
	if _, err := f.Validate(cmd.Context()); err != nil {
		_ = formatter.Error(ErrCodeSchema, err.Error(), nil, nil)
		return WrapExitError(ExitCommandError, "validate", err)
	}

	errs := f.Snapshot().Errors
	report := ValidationReport{
		Valid:  errs.IsEmpty() && len(server.Form) == 0,
		Fields: errs.Map(),
		Form:   server.Form,
	}
	if report.Valid {
		return formatter.Success(report, func(w io.Writer) {
			fmt.Fprintln(w, "✓ Model is valid")
		})
	}

	count := errs.Len() + len(server.Form)
	_ = formatter.Error(ErrCodeInvalid, fmt.Sprintf("validation failed with %d error(s)", count), report, func(w io.Writer) {
		for _, entry := range errs.Entries() {
			at := entry.Key()
			if at == "" {
				at = "(root)"
			}
			fmt.Fprintf(w, "  %s: %s\n", at, entry.Message)
		}
		for _, message := range server.Form {
			fmt.Fprintf(w, "  (form): %s\n", message)
		}
	})
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", count))
}

// payloadOf accepts {"field": "message"} and {"field": ["a", "b"]} shapes.
func payloadOf(raw any) map[string][]string {
	fields, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string][]string, len(fields))
	for key, value := range fields {
		switch typed := value.(type) {
		case string:
			out[key] = []string{typed}
		case []any:
			for _, item := range typed {
				out[key] = append(out[key], fmt.Sprint(item))
			}
		case nil:
		default:
			out[key] = []string{fmt.Sprint(typed)}
		}
	}
	return out
}
