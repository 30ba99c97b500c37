package cli

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(zerolog.Nop())
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSelectEntities(t *testing.T) {
	all, err := selectEntities("")
	if err != nil {
		t.Fatalf("selectEntities failed: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("got %d entities, want 4", len(all))
	}

	subset, err := selectEntities("sales, purchases")
	if err != nil {
		t.Fatalf("selectEntities failed: %v", err)
	}
	if len(subset) != 2 || subset[0].Name != "sales" || subset[1].Name != "purchases" {
		t.Errorf("subset = %v", subset)
	}

	if _, err := selectEntities("sales,nope"); err == nil {
		t.Error("unknown entity accepted, want error")
	}
}

func TestExtract_UnknownEntity(t *testing.T) {
	t.Setenv("ALEGRA_TOKEN", "tok")
	if _, err := runCmd(t, "extract", "customers"); err == nil {
		t.Error("unknown entity accepted, want error")
	}
}

func TestExtract_MissingToken(t *testing.T) {
	t.Setenv("ALEGRA_TOKEN", "")
	if _, err := runCmd(t, "extract", "inventory"); err == nil {
		t.Error("extract without token succeeded, want error")
	}
}

func TestExtract_ItemIDOnlyForSales(t *testing.T) {
	t.Setenv("ALEGRA_TOKEN", "tok")
	if _, err := runCmd(t, "extract", "inventory", "--item-id", "7"); err == nil {
		t.Error("--item-id on inventory accepted, want error")
	}
}

func TestExtract_WritesArtifact(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/items" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("start") != "0" {
			fmt.Fprint(w, "[]")
			return
		}
		fmt.Fprint(w, `[
			{"id": 1, "name": "tornillo",
			 "inventory": {"initialQuantity": 100, "initialQuantityDate": "2024-01-01", "availableQuantity": 60},
			 "images": [{"url": "http://img/1.png"}]},
			{"id": 2, "name": "tuerca",
			 "inventory": {"initialQuantity": 50, "initialQuantityDate": "2024-01-01", "availableQuantity": 50}}
		]`)
	}))
	defer srv.Close()

	dir := t.TempDir()
	t.Setenv("ALEGRA_TOKEN", "tok")
	t.Setenv("ALEGRA_BASE_URL", srv.URL)
	t.Setenv("ETL_OUTPUT_DIR", dir)

	out, err := runCmd(t, "extract", "inventory")
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if !strings.Contains(out, "2 records, 2 rows") {
		t.Errorf("output = %q, want record and row counts", out)
	}

	data, err := os.ReadFile(filepath.Join(dir, "items_inventory.csv"))
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("artifact has %d lines, want header plus 2 rows", len(lines))
	}
	if lines[0] != "id,name,initial_quantity,initial_quantity_date,final_available_quantity,photo_url" {
		t.Errorf("header = %q", lines[0])
	}
	// The second item has no images; its photo cell is empty.
	if !strings.HasSuffix(lines[2], ",") {
		t.Errorf("row without image = %q, want trailing empty cell", lines[2])
	}
}

func TestLoad_UnknownEntity(t *testing.T) {
	if _, err := runCmd(t, "load", "customers"); err == nil {
		t.Error("unknown entity accepted, want error")
	}
}

func TestLoad_MissingProject(t *testing.T) {
	t.Setenv("GCP_PROJECT_ID", "")
	if _, err := runCmd(t, "load", "sales"); err == nil {
		t.Error("load without project succeeded, want error")
	}
}

func TestLoad_BadTableRef(t *testing.T) {
	if _, err := runCmd(t, "load", "sales", "--table", "only.two"); err == nil {
		t.Error("two-segment table reference accepted, want error")
	}
}

func TestLoad_BadDisposition(t *testing.T) {
	t.Setenv("GCP_PROJECT_ID", "proj")
	if _, err := runCmd(t, "load", "sales", "--write-disposition", "REPLACE"); err == nil {
		t.Error("bad disposition accepted, want error")
	}
}

func TestBatch_RequiresCredentials(t *testing.T) {
	t.Setenv("ALEGRA_TOKEN", "")
	if _, err := runCmd(t, "batch"); err == nil {
		t.Error("batch without token succeeded, want error")
	}

	t.Setenv("ALEGRA_TOKEN", "tok")
	t.Setenv("GCP_PROJECT_ID", "")
	if _, err := runCmd(t, "batch"); err == nil {
		t.Error("batch without project succeeded, want error")
	}
}
