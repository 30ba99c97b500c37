package warehouse

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cloud.google.com/go/bigquery"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func fieldTypes(s bigquery.Schema) map[string]bigquery.FieldType {
	out := make(map[string]bigquery.FieldType, len(s))
	for _, f := range s {
		out[f.Name] = f.Type
	}
	return out
}

func TestInferSchema_TypeLattice(t *testing.T) {
	path := writeCSV(t, strings.Join([]string{
		"id,price,active,day,seen,label,mixed",
		"1,19.90,true,2024-03-01,2024-03-01T10:00:00Z,abc,1",
		"2,5,false,2024-03-02,2024-03-02 11:30:00,def,x",
		"3,0.5,true,2024-03-03,2024-03-03T09:15:00Z,ghi,2.5",
	}, "\n") + "\n")

	schema, err := InferSchema(path)
	if err != nil {
		t.Fatalf("InferSchema failed: %v", err)
	}

	want := map[string]bigquery.FieldType{
		"id":     bigquery.IntegerFieldType,
		"price":  bigquery.FloatFieldType,
		"active": bigquery.BooleanFieldType,
		"day":    bigquery.DateFieldType,
		"seen":   bigquery.TimestampFieldType,
		"label":  bigquery.StringFieldType,
		"mixed":  bigquery.StringFieldType,
	}
	got := fieldTypes(schema)
	for name, typ := range want {
		if got[name] != typ {
			t.Errorf("%s inferred as %s, want %s", name, got[name], typ)
		}
	}
}

func TestInferSchema_EmptyCellsDoNotConstrain(t *testing.T) {
	path := writeCSV(t, "qty,note\n1,\n,\n3,\n")

	schema, err := InferSchema(path)
	if err != nil {
		t.Fatalf("InferSchema failed: %v", err)
	}
	got := fieldTypes(schema)
	if got["qty"] != bigquery.IntegerFieldType {
		t.Errorf("qty inferred as %s, want INTEGER", got["qty"])
	}
	// A column of nothing but nulls stays STRING.
	if got["note"] != bigquery.StringFieldType {
		t.Errorf("note inferred as %s, want STRING", got["note"])
	}
}

func TestInferSchema_HeaderOnly(t *testing.T) {
	path := writeCSV(t, "a,b\n")

	schema, err := InferSchema(path)
	if err != nil {
		t.Fatalf("InferSchema failed: %v", err)
	}
	if len(schema) != 2 {
		t.Fatalf("got %d fields, want 2", len(schema))
	}
	for _, f := range schema {
		if f.Type != bigquery.StringFieldType {
			t.Errorf("%s inferred as %s, want STRING", f.Name, f.Type)
		}
	}
}

func TestInferSchema_MissingFile(t *testing.T) {
	if _, err := InferSchema(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Error("InferSchema on missing file succeeded, want error")
	}
}

func TestResolve_RegistryWinsOverAutoDetect(t *testing.T) {
	res, err := Resolve("sales", "unused.csv", true)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Source != "registry" || res.AutoDetect {
		t.Errorf("resolution = %+v, want registry schema without autodetect", res)
	}
	if len(res.Schema) != 6 {
		t.Errorf("sales schema has %d fields, want 6", len(res.Schema))
	}
}

func TestResolve_AutoDetectForUnknownTable(t *testing.T) {
	res, err := Resolve("scratch_table", "unused.csv", true)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !res.AutoDetect || res.Schema != nil {
		t.Errorf("resolution = %+v, want autodetect", res)
	}
}

func TestResolve_InfersForUnknownTable(t *testing.T) {
	path := writeCSV(t, "id,name\n1,a\n2,b\n")

	res, err := Resolve("scratch_table", path, false)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Source != "inferred" {
		t.Errorf("source = %q, want inferred", res.Source)
	}
	got := fieldTypes(res.Schema)
	if got["id"] != bigquery.IntegerFieldType || got["name"] != bigquery.StringFieldType {
		t.Errorf("inferred types = %v", got)
	}
}

func TestResolve_InferenceFailureIsSchemaResolutionError(t *testing.T) {
	_, err := Resolve("scratch_table", filepath.Join(t.TempDir(), "absent.csv"), false)
	var srErr *SchemaResolutionError
	if !errors.As(err, &srErr) {
		t.Fatalf("expected SchemaResolutionError, got %T: %v", err, err)
	}
	if srErr.Table != "scratch_table" {
		t.Errorf("error table = %q, want scratch_table", srErr.Table)
	}
}

func TestRegistrySchema_KnownTables(t *testing.T) {
	for _, table := range []string{"warehouse_movements", "inventory", "sales", "purchases"} {
		if _, ok := RegistrySchema(table); !ok {
			t.Errorf("RegistrySchema(%q) missing", table)
		}
	}
	if _, ok := RegistrySchema("unknown"); ok {
		t.Error("RegistrySchema(unknown) found, want miss")
	}
}
