package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var validateRunner = runValidate

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that an OpenAPI document resolves and models cleanly",
		Long: "Run the full load, resolve and model pipeline without writing output. " +
			"Exits non-zero with the offending JSON pointer when the document is rejected.",
		Example: strings.TrimSpace(`  openapi3-normalizer validate --input petstore.yaml
  openapi3-normalizer validate --input https://example.com/openapi.json --strict --list`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			return validateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the OpenAPI/Swagger document")
	flags.Bool("list", false, "Print every modeled method")
	addLoadFlags(cmd)

	return cmd
}

func runValidate(ctx context.Context, cfg *Config) error {
	logger := newLogger(cfg.stderr, cfg.Verbose)

	res, err := runPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}

	m := res.Model
	fmt.Fprintf(cfg.stdout, "OK: %s %s (%s)\n", m.Info.Title, m.Info.Version, res.Document.Location)
	fmt.Fprintf(cfg.stdout, "methods: %d, tags: %d, references: %d\n", len(m.Methods), len(m.Tags), res.Refs)
	if res.Document.Converted {
		fmt.Fprintln(cfg.stdout, "converted from Swagger 2.0")
	}
	if cfg.List {
		for _, method := range m.Methods {
			line := fmt.Sprintf("%-7s %s", strings.ToUpper(string(method.Method)), method.Path.String())
			if method.OperationID != "" {
				line += "  " + method.OperationID
			}
			fmt.Fprintln(cfg.stdout, line)
		}
	}
	return nil
}
