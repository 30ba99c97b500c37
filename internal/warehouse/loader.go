// Package warehouse loads CSV artifacts into BigQuery tables: it resolves
// the destination identifier, makes sure the dataset exists, picks a schema
// and runs a load job, reporting the table size afterwards.
package warehouse

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"cloud.google.com/go/bigquery"
	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"
)

// TableID is a fully qualified destination table.
type TableID struct {
	Project string
	Dataset string
	Table   string
}

func (t TableID) String() string {
	return t.Project + "." + t.Dataset + "." + t.Table
}

// ParseTableID splits a project.dataset.table reference. Anything other
// than exactly three non-empty segments is rejected.
func ParseTableID(ref string) (TableID, error) {
	parts := strings.Split(ref, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return TableID{}, &InvalidIdentifierError{ID: ref}
	}
	return TableID{Project: parts[0], Dataset: parts[1], Table: parts[2]}, nil
}

// ParseWriteDisposition maps a policy name to the service disposition.
// APPEND adds rows, TRUNCATE replaces the table, EMPTY loads only into an
// empty table.
func ParseWriteDisposition(name string) (bigquery.TableWriteDisposition, error) {
	switch strings.ToUpper(name) {
	case "APPEND":
		return bigquery.WriteAppend, nil
	case "TRUNCATE":
		return bigquery.WriteTruncate, nil
	case "EMPTY":
		return bigquery.WriteEmpty, nil
	default:
		return "", fmt.Errorf("ParseWriteDisposition: unknown disposition %q (want APPEND, TRUNCATE or EMPTY)", name)
	}
}

func parseEncoding(name string) (bigquery.Encoding, error) {
	switch strings.ToUpper(name) {
	case "", "UTF-8", "UTF8":
		return bigquery.UTF_8, nil
	case "ISO-8859-1", "LATIN1":
		return bigquery.ISO_8859_1, nil
	default:
		return "", fmt.Errorf("parseEncoding: unsupported encoding %q", name)
	}
}

// LoadOptions configures one load job.
type LoadOptions struct {
	Disposition bigquery.TableWriteDisposition
	// Schema and AutoDetect are mutually exclusive; exactly one is set by
	// the time Load runs the job.
	Schema          bigquery.Schema
	AutoDetect      bool
	SkipLeadingRows int64
	FieldDelimiter  string
	Encoding        string
	Location        string
}

// LoadResult reports a completed load and the destination's size after it.
type LoadResult struct {
	Table    string
	JobID    string
	NumRows  uint64
	NumBytes int64
}

// Loader runs CSV load jobs against BigQuery.
type Loader struct {
	client *bigquery.Client
	log    zerolog.Logger
}

// NewLoader wraps an authenticated BigQuery client.
func NewLoader(client *bigquery.Client, log zerolog.Logger) *Loader {
	return &Loader{client: client, log: log}
}

// Load uploads the artifact at csvPath into tableRef. The identifier is
// validated before anything touches the network; the dataset is created if
// it does not exist yet.
func (l *Loader) Load(ctx context.Context, csvPath, tableRef string, opts LoadOptions) (*LoadResult, error) {
	id, err := ParseTableID(tableRef)
	if err != nil {
		return nil, err
	}
	encoding, err := parseEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}

	log := l.log.With().Str("table", id.String()).Str("artifact", csvPath).Logger()

	ds := l.client.DatasetInProject(id.Project, id.Dataset)
	if err := l.ensureDataset(ctx, ds, opts.Location); err != nil {
		return nil, fmt.Errorf("Load: ensuring dataset %s.%s: %w", id.Project, id.Dataset, err)
	}

	f, err := os.Open(csvPath)
	if err != nil {
		return nil, fmt.Errorf("Load: opening artifact: %w", err)
	}
	defer f.Close()

	source := bigquery.NewReaderSource(f)
	source.SourceFormat = bigquery.CSV
	source.SkipLeadingRows = opts.SkipLeadingRows
	source.FieldDelimiter = opts.FieldDelimiter
	source.Encoding = encoding
	if opts.Schema != nil {
		source.Schema = opts.Schema
	} else {
		source.AutoDetect = true
	}

	loader := ds.Table(id.Table).LoaderFrom(source)
	loader.WriteDisposition = opts.Disposition

	job, err := loader.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("Load: starting job for %s: %w", id, err)
	}
	log.Info().Str("job_id", job.ID()).Str("disposition", string(opts.Disposition)).Msg("load job started")

	status, err := job.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("Load: waiting for job %s: %w", job.ID(), err)
	}
	if err := status.Err(); err != nil {
		return nil, &LoadError{Table: id.String(), Details: status.Errors, Err: err}
	}

	res := &LoadResult{Table: id.String(), JobID: job.ID()}
	meta, err := ds.Table(id.Table).Metadata(ctx)
	if err != nil {
		// The load finished; size reporting is best effort.
		log.Warn().Err(err).Msg("reading table metadata after load failed")
		return res, nil
	}
	res.NumRows = meta.NumRows
	res.NumBytes = meta.NumBytes

	log.Info().Uint64("num_rows", res.NumRows).Int64("num_bytes", res.NumBytes).Msg("load job finished")
	return res, nil
}

// ensureDataset creates the dataset when it does not exist. A concurrent
// create by another run counts as success.
func (l *Loader) ensureDataset(ctx context.Context, ds *bigquery.Dataset, location string) error {
	_, err := ds.Metadata(ctx)
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusNotFound {
		return err
	}

	createErr := ds.Create(ctx, &bigquery.DatasetMetadata{Location: location})
	if createErr == nil {
		return nil
	}
	if errors.As(createErr, &apiErr) && apiErr.Code == http.StatusConflict {
		return nil
	}
	return createErr
}
