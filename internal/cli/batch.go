package cli

import (
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/storage"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/optistock/alegra-etl/internal/alegra"
	"github.com/optistock/alegra-etl/internal/archive"
	"github.com/optistock/alegra-etl/internal/batch"
	"github.com/optistock/alegra-etl/internal/config"
	"github.com/optistock/alegra-etl/internal/extract"
	"github.com/optistock/alegra-etl/internal/warehouse"
)

func newBatchCmd(log zerolog.Logger) *cobra.Command {
	var (
		only          string
		disposition   string
		archiveBucket string
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Extract and load every entity",
		Long: "Batch runs the full pipeline for each entity in turn. A failing " +
			"entity is reported and skipped; the batch succeeds while at least " +
			"one entity got through.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.RequireToken(); err != nil {
				return err
			}
			if err := cfg.RequireProject(); err != nil {
				return err
			}

			if disposition == "" {
				disposition = cfg.WriteDisposition
			}
			wd, err := warehouse.ParseWriteDisposition(disposition)
			if err != nil {
				return err
			}
			if archiveBucket == "" {
				archiveBucket = cfg.ArchiveBucket
			}

			entities, err := selectEntities(only)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			bqClient, err := bigquery.NewClient(ctx, cfg.ProjectID)
			if err != nil {
				return fmt.Errorf("creating BigQuery client: %w", err)
			}
			defer bqClient.Close()

			proc := &entityProcessor{
				cfg:         cfg,
				fetcher:     alegra.NewClient(cfg.AlegraBaseURL, cfg.AlegraToken),
				loader:      warehouse.NewLoader(bqClient, log),
				disposition: wd,
				log:         log,
			}
			if archiveBucket != "" {
				gcsClient, err := storage.NewClient(ctx)
				if err != nil {
					return fmt.Errorf("creating storage client: %w", err)
				}
				defer gcsClient.Close()
				proc.archiver = archive.NewUploader(gcsClient, archiveBucket, log)
			}

			summary := batch.NewCoordinator(proc, log).Run(ctx, entities)
			for _, o := range summary.Outcomes {
				if o.Err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: FAILED: %v\n", o.Entity, o.Err)
					continue
				}
				line := fmt.Sprintf("%s: %d rows extracted", o.Entity, o.Report.Extraction.Rows)
				if o.Report.Load != nil {
					line += fmt.Sprintf(", table at %d rows", o.Report.Load.NumRows)
				}
				if o.Report.ArchivedAs != "" {
					line += ", archived as " + o.Report.ArchivedAs
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}

			if !summary.OK() {
				return fmt.Errorf("batch failed: no entity completed (%d failed)", summary.Failed())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&only, "entities", "", "comma-separated subset of entities to run (default all)")
	cmd.Flags().StringVar(&disposition, "write-disposition", "", "APPEND, TRUNCATE or EMPTY")
	cmd.Flags().StringVar(&archiveBucket, "archive-bucket", "", "GCS bucket for dated artifact copies")
	return cmd
}

func selectEntities(only string) ([]extract.Entity, error) {
	if only == "" {
		return extract.Entities(), nil
	}
	var out []extract.Entity
	for _, name := range strings.Split(only, ",") {
		name = strings.TrimSpace(name)
		e, ok := extract.EntityByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown entity %q", name)
		}
		out = append(out, e)
	}
	return out, nil
}
