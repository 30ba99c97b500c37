package warehouse

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
)

// sampleRows caps how many artifact rows inference reads per column.
const sampleRows = 1000

// Resolution is the outcome of schema resolution for one load: either a
// concrete schema or a request for service-side auto-detection.
type Resolution struct {
	Schema     bigquery.Schema
	AutoDetect bool
	// Source names where the decision came from: "registry", "inferred" or
	// "autodetect".
	Source string
}

// Resolve picks the schema for loading csvPath into table. Precedence:
// a registry entry always wins, even when auto-detection was requested;
// otherwise auto-detection is honored; otherwise the schema is inferred
// from a sample of the artifact.
func Resolve(table, csvPath string, preferAutoDetect bool) (Resolution, error) {
	if s, ok := RegistrySchema(table); ok {
		return Resolution{Schema: s, Source: "registry"}, nil
	}
	if preferAutoDetect {
		return Resolution{AutoDetect: true, Source: "autodetect"}, nil
	}
	s, err := InferSchema(csvPath)
	if err != nil {
		return Resolution{}, &SchemaResolutionError{Table: table, Err: err}
	}
	return Resolution{Schema: s, Source: "inferred"}, nil
}

// columnProbe tracks which types every sampled value of a column still
// satisfies. Empty cells are nulls and constrain nothing.
type columnProbe struct {
	seen    bool
	allInt  bool
	allNum  bool
	allBool bool
	allDate bool
	allTS   bool
}

func newColumnProbe() *columnProbe {
	return &columnProbe{allInt: true, allNum: true, allBool: true, allDate: true, allTS: true}
}

func (p *columnProbe) observe(v string) {
	if v == "" {
		return
	}
	p.seen = true
	if p.allInt {
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			p.allInt = false
		}
	}
	if p.allNum {
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			p.allNum = false
		}
	}
	if p.allBool {
		if v != "true" && v != "false" && v != "True" && v != "False" {
			p.allBool = false
		}
	}
	if p.allDate {
		if _, err := civil.ParseDate(v); err != nil {
			p.allDate = false
		}
	}
	if p.allTS {
		if !isTimestamp(v) {
			p.allTS = false
		}
	}
}

func (p *columnProbe) fieldType() bigquery.FieldType {
	switch {
	case !p.seen:
		// A column with only nulls in the sample stays STRING, the widest
		// type.
		return bigquery.StringFieldType
	case p.allInt:
		return bigquery.IntegerFieldType
	case p.allNum:
		return bigquery.FloatFieldType
	case p.allBool:
		return bigquery.BooleanFieldType
	case p.allDate:
		return bigquery.DateFieldType
	case p.allTS:
		return bigquery.TimestampFieldType
	default:
		return bigquery.StringFieldType
	}
}

func isTimestamp(v string) bool {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}

// InferSchema derives a schema from the artifact's header and a sample of
// its rows. Every inferred field is nullable, matching how nulls appear as
// empty cells in the artifact.
func InferSchema(csvPath string) (bigquery.Schema, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, fmt.Errorf("InferSchema: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("InferSchema: reading header of %s: %w", csvPath, err)
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("InferSchema: %s has an empty header", csvPath)
	}

	probes := make([]*columnProbe, len(header))
	for i := range probes {
		probes[i] = newColumnProbe()
	}

	for n := 0; n < sampleRows; n++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("InferSchema: sampling %s: %w", csvPath, err)
		}
		for i, v := range rec {
			if i < len(probes) {
				probes[i].observe(v)
			}
		}
	}

	schema := make(bigquery.Schema, len(header))
	for i, name := range header {
		schema[i] = &bigquery.FieldSchema{Name: name, Type: probes[i].fieldType()}
	}
	return schema, nil
}
