package warehouse

import (
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
)

// InvalidIdentifierError reports a destination reference that is not a full
// project.dataset.table identifier. It is raised before any network call.
type InvalidIdentifierError struct {
	ID string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("warehouse: table identifier %q must have the form project.dataset.table", e.ID)
}

// SchemaResolutionError reports that no schema could be produced for a
// table: no registry entry and sampling the artifact failed.
type SchemaResolutionError struct {
	Table string
	Err   error
}

func (e *SchemaResolutionError) Error() string {
	return fmt.Sprintf("warehouse: resolving schema for %s: %v", e.Table, e.Err)
}

func (e *SchemaResolutionError) Unwrap() error { return e.Err }

// LoadError reports a load job that ran but finished in error, keeping the
// per-row detail the service returned.
type LoadError struct {
	Table   string
	Details []*bigquery.Error
	Err     error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "warehouse: load into %s failed: %v", e.Table, e.Err)
	for _, d := range e.Details {
		fmt.Fprintf(&b, "; %v", d)
	}
	return b.String()
}

func (e *LoadError) Unwrap() error { return e.Err }
