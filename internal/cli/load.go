package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbind"
	"github.com/goliatone/go-formbind/pkg/schema"
)

func newFormatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// sourceFor maps a CLI argument to a schema source: http(s) URLs or files.
func sourceFor(raw string) (schema.Source, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("schema location is required")
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return schema.SourceFromURL(raw)
	}
	return schema.SourceFromFile(raw), nil
}

func loadSchema(ctx context.Context, opts *RootOptions, raw string) (*schema.Node, error) {
	src, err := sourceFor(raw)
	if err != nil {
		return nil, err
	}
	loadOpts := []formbind.LoadOption{formbind.WithHTTPTimeout(opts.Timeout)}
	if opts.Component != "" {
		loadOpts = append(loadOpts, formbind.WithComponent(opts.Component))
	}
	if opts.Operation != "" {
		loadOpts = append(loadOpts, formbind.WithOperation(opts.Operation))
	}
	return formbind.LoadSchema(ctx, src, loadOpts...)
}

// readData decodes a JSON or YAML file into plain maps and slices. "-" reads
// stdin.
func readData(cmd *cobra.Command, name string) (any, error) {
	var (
		data []byte
		err  error
	)
	if name == "-" {
		var buf bytes.Buffer
		_, err = buf.ReadFrom(cmd.InOrStdin())
		data = buf.Bytes()
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, err
	}
	return decodeData(data)
}

func decodeData(data []byte) (any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	var out any
	if trimmed[0] == '{' || trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &out); err == nil {
			return out, nil
		}
	}
	if err := yaml.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return out, nil
}
