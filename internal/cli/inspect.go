package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbind/internal/prompt"
	"github.com/goliatone/go-formbind/pkg/field"
	"github.com/goliatone/go-formbind/pkg/form"
	"github.com/goliatone/go-formbind/pkg/path"
	"github.com/goliatone/go-formbind/pkg/schema"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	Model string
}

// FieldReport describes one bound field.
type FieldReport struct {
	Path     string   `json:"path"`
	Label    string   `json:"label"`
	Widget   string   `json:"widget"`
	Kind     string   `json:"kind"`
	Required bool     `json:"required"`
	Value    any      `json:"value,omitempty"`
	Default  any      `json:"default,omitempty"`
	Errors   []string `json:"errors,omitempty"`
}

// NewInspectCommand lists every field of a schema with its resolved widget.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect <schema>",
		Short: "List fields with their resolved widgets",
		Long:  "Resolves every leaf field of the schema for the given model (conditional fields included) and prints its widget, kind and current value.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, opts, args[0])
		},
	}
	cmd.Flags().StringVarP(&opts.Model, "model", "m", "", "model file (JSON or YAML, - for stdin)")
	return cmd
}

func runInspect(cmd *cobra.Command, opts *InspectOptions, location string) error {
	formatter := newFormatter(cmd, opts.RootOptions)

	root, err := loadSchema(cmd.Context(), opts.RootOptions, location)
	if err != nil {
		_ = formatter.Error(ErrCodeSchema, err.Error(), nil, nil)
		return WrapExitError(ExitCommandError, "load schema", err)
	}
	formOpts := []form.Option{}
	if opts.Model != "" {
		model, err := readData(cmd, opts.Model)
		if err != nil {
			_ = formatter.Error(ErrCodeModel, err.Error(), nil, nil)
			return WrapExitError(ExitCommandError, "read model", err)
		}
		formOpts = append(formOpts, form.WithDefaultValue(model))
	}
	f := form.New(root, formOpts...)

	reports, err := inspect(f)
	if err != nil {
		_ = formatter.Error(ErrCodeSchema, err.Error(), nil, nil)
		return WrapExitError(ExitCommandError, "inspect", err)
	}
	formatter.VerboseLog("%d field(s) resolved", len(reports))

	return formatter.Success(reports, func(w io.Writer) {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PATH\tWIDGET\tKIND\tREQUIRED\tVALUE")
		for _, r := range reports {
			value := ""
			if r.Value != nil {
				value = fmt.Sprint(r.Value)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", r.Path, r.Widget, r.Kind, r.Required, value)
		}
		_ = tw.Flush()
	})
}

func inspect(f *form.Form) ([]FieldReport, error) {
	snap := f.Snapshot()
	leaves, err := prompt.Leaves(f.Schema(), snap.Model)
	if err != nil {
		return nil, err
	}
	reports := make([]FieldReport, 0, len(leaves))
	for _, leaf := range leaves {
		binding, err := f.Field(field.Config{Path: leaf.String()})
		if err != nil {
			return nil, err
		}
		report := FieldReport{
			Path:     leaf.String(),
			Label:    binding.Descriptor.Label,
			Widget:   binding.Widget.Name(),
			Kind:     string(binding.Kind),
			Required: isRequired(f.Schema(), snap.Model, leaf),
			Value:    binding.Value,
			Default:  binding.Descriptor.Default,
		}
		if binding.Invalid {
			report.Errors = binding.Messages()
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func isRequired(root *schema.Node, model any, p path.Path) bool {
	last, ok := p.Last()
	if !ok || last.IsIndex() {
		return false
	}
	parent, err := schema.Lookup(root, model, p.Parent())
	if err != nil {
		return false
	}
	return parent.IsRequired(last.Key())
}
