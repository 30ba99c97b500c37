package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"cloud.google.com/go/bigquery"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/optistock/alegra-etl/internal/config"
	"github.com/optistock/alegra-etl/internal/warehouse"
)

func newTablesCmd(log zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables in the warehouse dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.RequireProject(); err != nil {
				return err
			}

			ctx := cmd.Context()
			client, err := bigquery.NewClient(ctx, cfg.ProjectID)
			if err != nil {
				return fmt.Errorf("creating BigQuery client: %w", err)
			}
			defer client.Close()

			tables, err := warehouse.NewLoader(client, log).ListTables(ctx, cfg.ProjectID, cfg.DatasetID)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TABLE\tROWS\tBYTES\tLAST MODIFIED")
			for _, t := range tables {
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", t.Name, t.NumRows, t.NumBytes, t.Modified.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
}

func newInspectCmd(log zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <table>",
		Short: "Show size and schema of one warehouse table",
		Long: "Inspect accepts a bare table name (qualified with the configured " +
			"project and dataset) or a full project.dataset.table reference.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ref := args[0]
			if !strings.Contains(ref, ".") {
				if err := cfg.RequireProject(); err != nil {
					return err
				}
				ref = cfg.ProjectID + "." + cfg.DatasetID + "." + ref
			}
			id, err := warehouse.ParseTableID(ref)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			client, err := bigquery.NewClient(ctx, id.Project)
			if err != nil {
				return fmt.Errorf("creating BigQuery client: %w", err)
			}
			defer client.Close()

			info, schema, err := warehouse.NewLoader(client, log).DescribeTable(ctx, ref)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d rows, %d bytes, modified %s\n",
				ref, info.NumRows, info.NumBytes, info.Modified.Format("2006-01-02 15:04"))
			for _, f := range schema {
				fmt.Fprintf(out, "  %s %s\n", f.Name, f.Type)
			}
			return nil
		},
	}
}
