package cli

import (
	"fmt"
	"path/filepath"

	"cloud.google.com/go/bigquery"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/optistock/alegra-etl/internal/config"
	"github.com/optistock/alegra-etl/internal/extract"
	"github.com/optistock/alegra-etl/internal/warehouse"
)

func newLoadCmd(log zerolog.Logger) *cobra.Command {
	var (
		tableRef    string
		file        string
		disposition string
		autodetect  bool
		skipRows    int64
		delimiter   string
		encoding    string
	)

	cmd := &cobra.Command{
		Use:   "load <entity>",
		Short: "Load an entity's CSV artifact into its warehouse table",
		Long: "Load uploads the entity's CSV artifact into BigQuery. The schema " +
			"comes from the curated registry when the table is known; otherwise " +
			"it is inferred from the artifact, or auto-detected with --autodetect.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			entity, ok := extract.EntityByName(args[0])
			if !ok {
				return fmt.Errorf("unknown entity %q", args[0])
			}

			if disposition == "" {
				disposition = cfg.WriteDisposition
			}
			wd, err := warehouse.ParseWriteDisposition(disposition)
			if err != nil {
				return err
			}

			if tableRef == "" {
				if err := cfg.RequireProject(); err != nil {
					return err
				}
				tableRef = cfg.ProjectID + "." + cfg.DatasetID + "." + entity.Table
			}
			id, err := warehouse.ParseTableID(tableRef)
			if err != nil {
				return err
			}

			if file == "" {
				file = filepath.Join(cfg.OutputDir, entity.FileName)
			}

			resolution, err := warehouse.Resolve(id.Table, file, autodetect)
			if err != nil {
				return err
			}
			log.Info().Str("table", id.String()).Str("schema_source", resolution.Source).Msg("schema resolved")

			client, err := bigquery.NewClient(cmd.Context(), id.Project)
			if err != nil {
				return fmt.Errorf("creating BigQuery client: %w", err)
			}
			defer client.Close()

			res, err := warehouse.NewLoader(client, log).Load(cmd.Context(), file, tableRef, warehouse.LoadOptions{
				Disposition:     wd,
				Schema:          resolution.Schema,
				AutoDetect:      resolution.AutoDetect,
				SkipLeadingRows: skipRows,
				FieldDelimiter:  delimiter,
				Encoding:        encoding,
				Location:        cfg.Location,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows, %d bytes (job %s)\n",
				res.Table, res.NumRows, res.NumBytes, res.JobID)
			return nil
		},
	}

	cmd.Flags().StringVar(&tableRef, "table", "", "destination as project.dataset.table (defaults to the entity's table)")
	cmd.Flags().StringVar(&file, "file", "", "artifact to load (defaults to the entity's artifact)")
	cmd.Flags().StringVar(&disposition, "write-disposition", "", "APPEND, TRUNCATE or EMPTY")
	cmd.Flags().BoolVar(&autodetect, "autodetect", false, "let the service detect the schema for unregistered tables")
	cmd.Flags().Int64Var(&skipRows, "skip-rows", config.DefaultSkipLeadingRows, "leading artifact rows to skip")
	cmd.Flags().StringVar(&delimiter, "delimiter", config.DefaultFieldDelimiter, "artifact field delimiter")
	cmd.Flags().StringVar(&encoding, "encoding", config.DefaultEncoding, "artifact encoding (UTF-8 or ISO-8859-1)")
	return cmd
}
