package cli

import (
	"context"
	"path/filepath"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/rs/zerolog"

	"github.com/optistock/alegra-etl/internal/archive"
	"github.com/optistock/alegra-etl/internal/batch"
	"github.com/optistock/alegra-etl/internal/config"
	"github.com/optistock/alegra-etl/internal/extract"
	"github.com/optistock/alegra-etl/internal/warehouse"
)

// entityProcessor runs extract, load and optional archive for one entity.
// It is the batch command's batch.Processor.
type entityProcessor struct {
	cfg         *config.Config
	fetcher     extract.Fetcher
	loader      *warehouse.Loader
	archiver    *archive.Uploader
	disposition bigquery.TableWriteDisposition
	log         zerolog.Logger
}

func (p *entityProcessor) Process(ctx context.Context, e extract.Entity) (*batch.Report, error) {
	path := filepath.Join(p.cfg.OutputDir, e.FileName)
	sink := extract.NewCSVSink(path, e.Mapper.Columns())

	extraction, err := extract.NewPipeline(p.fetcher, sink, e, p.cfg.PageSize, nil, p.log).Run(ctx)
	if err != nil {
		return nil, err
	}
	report := &batch.Report{Extraction: extraction}
	if extraction.Rows == 0 {
		// Nothing was extracted, so there is no artifact to load.
		return report, nil
	}

	resolution, err := warehouse.Resolve(e.Table, path, false)
	if err != nil {
		return nil, err
	}

	tableRef := p.cfg.ProjectID + "." + p.cfg.DatasetID + "." + e.Table
	load, err := p.loader.Load(ctx, path, tableRef, warehouse.LoadOptions{
		Disposition:     p.disposition,
		Schema:          resolution.Schema,
		AutoDetect:      resolution.AutoDetect,
		SkipLeadingRows: config.DefaultSkipLeadingRows,
		FieldDelimiter:  config.DefaultFieldDelimiter,
		Encoding:        config.DefaultEncoding,
		Location:        p.cfg.Location,
	})
	if err != nil {
		return nil, err
	}
	report.Load = load

	if p.archiver != nil {
		object, err := p.archiver.Archive(ctx, path, time.Now())
		if err != nil {
			return nil, err
		}
		report.ArchivedAs = object
	}
	return report, nil
}
