package extract

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// IOError reports a failure writing the output artifact. It is fatal to the
// enclosing pipeline run.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("extract: writing %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// CSVSink appends normalized rows to a single CSV artifact. The first batch
// of a run truncates the file and writes the header; later batches append
// rows only, so the artifact grows incrementally and is loadable after any
// completed batch.
type CSVSink struct {
	path    string
	columns []string
}

// NewCSVSink creates a sink writing to path with the given fixed column
// order.
func NewCSVSink(path string, columns []string) *CSVSink {
	return &CSVSink{path: path, columns: columns}
}

// Path returns the artifact location.
func (s *CSVSink) Path() string { return s.path }

// Append writes one batch of rows. first marks the first batch of the run.
func (s *CSVSink) Append(rows []Row, first bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_APPEND
	if first {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(s.path, flags, 0o644)
	if err != nil {
		return &IOError{Path: s.path, Err: err}
	}

	w := csv.NewWriter(f)
	if first {
		if err := w.Write(s.columns); err != nil {
			f.Close()
			return &IOError{Path: s.path, Err: err}
		}
	}
	for _, row := range rows {
		rec := make([]string, len(s.columns))
		for i, col := range s.columns {
			rec[i] = formatValue(row[col])
		}
		if err := w.Write(rec); err != nil {
			f.Close()
			return &IOError{Path: s.path, Err: err}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return &IOError{Path: s.path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &IOError{Path: s.path, Err: err}
	}
	return nil
}

// formatValue renders a field value as a CSV cell. Nulls become empty cells;
// json.Number keeps its literal form.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprint(t)
	}
}
