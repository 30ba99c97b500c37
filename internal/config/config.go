// Package config holds the environment-backed configuration for the ETL
// process. Everything is read once at startup; nothing mutates afterwards.
package config

import (
	"errors"
	"os"
	"strconv"
)

const (
	// DefaultBaseURL is the Alegra REST API root.
	DefaultBaseURL = "https://api.alegra.com/api/v1"
	// DefaultPageSize matches the Alegra API page size.
	DefaultPageSize = 30
	// DefaultDatasetID is the BigQuery dataset the entity tables live in.
	DefaultDatasetID = "optistock"
	// DefaultLocation is used when the dataset has to be created.
	DefaultLocation = "US"
	// DefaultWriteDisposition is applied when the caller does not choose one.
	DefaultWriteDisposition = "APPEND"
	// DefaultFieldDelimiter for CSV artifacts and load jobs.
	DefaultFieldDelimiter = ","
	// DefaultEncoding for CSV artifacts and load jobs.
	DefaultEncoding = "UTF-8"
	// DefaultSkipLeadingRows skips the artifact header row on load.
	DefaultSkipLeadingRows = 1
)

// Config carries all runtime settings for extraction and loading.
type Config struct {
	// AlegraToken is the pre-obtained API credential (ALEGRA_TOKEN).
	AlegraToken string
	// AlegraBaseURL is the API root (ALEGRA_BASE_URL).
	AlegraBaseURL string
	// PageSize is the number of records fetched per page (ALEGRA_PAGE_SIZE).
	PageSize int

	// ProjectID is the Google Cloud project (GCP_PROJECT_ID).
	ProjectID string
	// DatasetID is the destination BigQuery dataset (BQ_DATASET_ID).
	DatasetID string
	// Location is used when creating the dataset (BQ_LOCATION).
	Location string

	// WriteDisposition is APPEND, TRUNCATE or EMPTY (BQ_WRITE_DISPOSITION).
	WriteDisposition string
	// ArchiveBucket, when set, receives a copy of each artifact after a
	// successful load (GCS_ARCHIVE_BUCKET).
	ArchiveBucket string
	// OutputDir is where CSV artifacts are written (ETL_OUTPUT_DIR).
	OutputDir string
}

// Load reads the configuration from the environment, applying defaults.
// Required values are not validated here; commands that need a token or a
// project check with RequireToken/RequireProject so that inspect-only modes
// keep working without Alegra credentials.
func Load() (*Config, error) {
	cfg := &Config{
		AlegraToken:      os.Getenv("ALEGRA_TOKEN"),
		AlegraBaseURL:    envOrDefault("ALEGRA_BASE_URL", DefaultBaseURL),
		PageSize:         DefaultPageSize,
		ProjectID:        os.Getenv("GCP_PROJECT_ID"),
		DatasetID:        envOrDefault("BQ_DATASET_ID", DefaultDatasetID),
		Location:         envOrDefault("BQ_LOCATION", DefaultLocation),
		WriteDisposition: envOrDefault("BQ_WRITE_DISPOSITION", DefaultWriteDisposition),
		ArchiveBucket:    os.Getenv("GCS_ARCHIVE_BUCKET"),
		OutputDir:        envOrDefault("ETL_OUTPUT_DIR", "."),
	}

	if v := os.Getenv("ALEGRA_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, errors.New("ALEGRA_PAGE_SIZE must be a positive integer")
		}
		cfg.PageSize = n
	}

	return cfg, nil
}

// RequireToken fails when the Alegra credential is missing.
func (c *Config) RequireToken() error {
	if c.AlegraToken == "" {
		return errors.New("ALEGRA_TOKEN environment variable is not set")
	}
	return nil
}

// RequireProject fails when the Google Cloud project is missing.
func (c *Config) RequireProject() error {
	if c.ProjectID == "" {
		return errors.New("GCP_PROJECT_ID environment variable is not set")
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
