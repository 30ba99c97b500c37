// Package cli wires the ETL commands: extract one entity, load an artifact
// into the warehouse, run the whole batch, and inspect warehouse tables.
package cli

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Execute runs the root command against the process arguments.
func Execute(ctx context.Context, log zerolog.Logger) error {
	return newRootCmd(log).ExecuteContext(ctx)
}

func newRootCmd(log zerolog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "etl",
		Short:         "Extract Alegra inventory data and load it into BigQuery",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newExtractCmd(log),
		newLoadCmd(log),
		newBatchCmd(log),
		newTablesCmd(log),
		newInspectCmd(log),
	)
	return cmd
}
