// Package archive keeps dated copies of extraction artifacts in a GCS
// bucket, so a warehouse load can be replayed from the exact file that
// produced it.
package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog"
)

// Uploader copies artifacts into one bucket.
type Uploader struct {
	client *storage.Client
	bucket string
	log    zerolog.Logger
}

// NewUploader wraps an authenticated storage client for the given bucket.
func NewUploader(client *storage.Client, bucket string, log zerolog.Logger) *Uploader {
	return &Uploader{client: client, bucket: bucket, log: log}
}

// ObjectName places an artifact under a date prefix, so each day's run
// keeps its own copy: 2024-03-01/factura_items.csv.
func ObjectName(path string, when time.Time) string {
	return when.Format("2006-01-02") + "/" + filepath.Base(path)
}

// Archive uploads the artifact at path and returns the object name.
func (u *Uploader) Archive(ctx context.Context, path string, when time.Time) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("Archive: opening %s: %w", path, err)
	}
	defer f.Close()

	object := ObjectName(path, when)
	w := u.client.Bucket(u.bucket).Object(object).NewWriter(ctx)
	w.ContentType = "text/csv"

	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return "", fmt.Errorf("Archive: uploading %s to gs://%s/%s: %w", path, u.bucket, object, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("Archive: finishing upload of gs://%s/%s: %w", u.bucket, object, err)
	}

	u.log.Info().Str("bucket", u.bucket).Str("object", object).Msg("artifact archived")
	return object, nil
}
