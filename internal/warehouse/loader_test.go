package warehouse

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/bigquery"
	"github.com/rs/zerolog"
)

func TestParseTableID(t *testing.T) {
	tests := []struct {
		ref     string
		want    TableID
		wantErr bool
	}{
		{ref: "proj.optistock.sales", want: TableID{Project: "proj", Dataset: "optistock", Table: "sales"}},
		{ref: "proj.optistock", wantErr: true},
		{ref: "proj.optistock.sales.extra", wantErr: true},
		{ref: "proj..sales", wantErr: true},
		{ref: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := ParseTableID(tt.ref)
			if tt.wantErr {
				var idErr *InvalidIdentifierError
				if !errors.As(err, &idErr) {
					t.Fatalf("expected InvalidIdentifierError, got %T: %v", err, err)
				}
				if idErr.ID != tt.ref {
					t.Errorf("error ID = %q, want %q", idErr.ID, tt.ref)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTableID failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLoad_RejectsBadIdentifierBeforeAnyNetworkCall(t *testing.T) {
	// A nil client would panic on any service call; the identifier check
	// must run first.
	l := NewLoader(nil, zerolog.Nop())

	_, err := l.Load(context.Background(), "out.csv", "proj.optistock", LoadOptions{})
	var idErr *InvalidIdentifierError
	if !errors.As(err, &idErr) {
		t.Fatalf("expected InvalidIdentifierError, got %T: %v", err, err)
	}
}

func TestParseWriteDisposition(t *testing.T) {
	tests := []struct {
		in   string
		want bigquery.TableWriteDisposition
	}{
		{in: "APPEND", want: bigquery.WriteAppend},
		{in: "append", want: bigquery.WriteAppend},
		{in: "TRUNCATE", want: bigquery.WriteTruncate},
		{in: "EMPTY", want: bigquery.WriteEmpty},
	}
	for _, tt := range tests {
		got, err := ParseWriteDisposition(tt.in)
		if err != nil {
			t.Errorf("ParseWriteDisposition(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseWriteDisposition(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := ParseWriteDisposition("REPLACE"); err == nil {
		t.Error("ParseWriteDisposition(REPLACE) succeeded, want error")
	}
}

func TestParseEncoding(t *testing.T) {
	tests := []struct {
		in   string
		want bigquery.Encoding
	}{
		{in: "", want: bigquery.UTF_8},
		{in: "UTF-8", want: bigquery.UTF_8},
		{in: "utf8", want: bigquery.UTF_8},
		{in: "ISO-8859-1", want: bigquery.ISO_8859_1},
	}
	for _, tt := range tests {
		got, err := parseEncoding(tt.in)
		if err != nil {
			t.Errorf("parseEncoding(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseEncoding(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := parseEncoding("EBCDIC"); err == nil {
		t.Error("parseEncoding(EBCDIC) succeeded, want error")
	}
}

func TestTableIDString(t *testing.T) {
	id := TableID{Project: "p", Dataset: "d", Table: "t"}
	if id.String() != "p.d.t" {
		t.Errorf("String() = %q, want p.d.t", id.String())
	}
}
