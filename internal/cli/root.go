// Package cli implements the formbind command line.
package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose   bool
	Format    string // "json" | "text"
	Component string
	Operation string
	Timeout   time.Duration
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the formbind CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "formbind",
		Short:         "Bind, inspect and validate schema-driven forms",
		Long:          "formbind resolves widgets for schema fields, fills models interactively and validates them against JSON, YAML or OpenAPI schemas.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			configureLogging(cmd, opts.Verbose)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Component, "component", "", "OpenAPI component schema to use")
	cmd.PersistentFlags().StringVar(&opts.Operation, "operation", "", "OpenAPI operation whose request body to use")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 10*time.Second, "timeout for remote schema documents")

	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewFillCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

// configureLogging sends slog output to stderr, at debug level with --verbose.
func configureLogging(cmd *cobra.Command, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
