package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/olydis/openapi3-normalizer/internal/output"
)

var modelRunner = runModel

func newModelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Emit the normalized model of an OpenAPI document",
		Long: "Load an OpenAPI 3.0.0 (or Swagger 2.0) document, resolve its local references and " +
			"emit the normalized model. Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  openapi3-normalizer model --input petstore.yaml
  openapi3-normalizer model --input petstore.yaml --format yaml --out ./model --split
  openapi3-normalizer --config normalizer.yaml model --force --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			return modelRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the OpenAPI/Swagger document")
	flags.String("out", "", "Output directory (writes to stdout when omitted)")
	flags.String("format", "", "Output format (json|yaml); defaults to json")
	flags.StringSlice("include-tags", nil, "Only include operations with these tags")
	flags.StringSlice("exclude-tags", nil, "Exclude operations with these tags")
	flags.StringSlice("methods", nil, "Only include these HTTP methods")
	flags.StringSlice("paths", nil, "Only include paths matching these regular expressions")
	flags.Bool("split", false, "Also write one file per method under methods/")
	addLoadFlags(cmd)
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing output when set")

	return cmd
}

// addLoadFlags registers the flags shared by every command that loads a
// document.
func addLoadFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Bool("strict", false, "Validate the document with kin-openapi before modeling")
	flags.Duration("timeout", defaultConfig().Timeout, "HTTP timeout when --input is a URL")
	flags.Int("retries", defaultConfig().Retries, "Retries for transient HTTP failures")
}

func runModel(ctx context.Context, cfg *Config) error {
	logger := newLogger(cfg.stderr, cfg.Verbose)

	res, err := runPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}
	m, err := selectMethods(res.Model, cfg)
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(cfg.Format)
	if err != nil {
		return newUsageError(err.Error())
	}

	if cfg.Out == "" {
		return output.Write(cfg.stdout, m, format)
	}

	// Absolute only for display; Emit resolves the directory itself.
	absOut := cfg.Out
	if ap, err := filepath.Abs(cfg.Out); err == nil {
		absOut = ap
	}
	emitted, err := output.Emit(ctx, m, output.Options{
		OutDir: cfg.Out,
		Format: format,
		Split:  cfg.Split,
		Force:  cfg.Force,
		DryRun: cfg.DryRun,
	})
	if err != nil {
		return wrapOutputError(err, absOut)
	}
	if cfg.DryRun {
		paths := make([]string, 0, len(emitted.Planned))
		for _, p := range emitted.Planned {
			paths = append(paths, p.RelPath)
		}
		printPlan(cfg.stdout, absOut, paths)
		return nil
	}
	logger.Info("wrote model", "out", absOut, "files", len(emitted.Planned), "methods", len(m.Methods))
	return nil
}

func printPlan(w io.Writer, outDir string, relPaths []string) {
	fmt.Fprintf(w, "Planned writes to %s (%d files):\n", outDir, len(relPaths))
	for _, p := range relPaths {
		fmt.Fprintf(w, "- %s\n", p)
	}
}

func wrapOutputError(err error, outDir string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "not empty") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", outDir, msg))
	}
	return err
}
