package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// Execute runs the openapi3-normalizer CLI.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "openapi3-normalizer",
		Short:         "Resolve and normalize OpenAPI 3.0.0 documents",
		Long:          "openapi3-normalizer resolves local $ref pointers in an OpenAPI 3.0.0 document, checks its structure and emits a normalized model of every operation.",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// Convert Cobra flag errors (like unknown flags) into friendly usage errors
	// that also show the command's help text.
	cmd.SetFlagErrorFunc(flagUsageError)

	cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML or JSON)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging output")

	for _, sub := range []*cobra.Command{newModelCmd(), newValidateCmd(), newInitCmd()} {
		sub.SetFlagErrorFunc(flagUsageError)
		cmd.AddCommand(sub)
	}
	return cmd
}

func flagUsageError(c *cobra.Command, err error) error {
	return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
}
