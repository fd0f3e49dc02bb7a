package formdata

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func exportFixture() Snapshot {
	return Snapshot{
		Fields: Data{
			"hotelName": "Hotel Aurora",
			"mission":   "Acolher bem",
			"vision":    "",
		},
		Logo:     "data:image/png;base64,AAAA",
		Metadata: Metadata{Version: SnapshotVersion, LastSaved: fixedNow, DocumentID: "doc-1"},
	}
}

func TestParseFormat(t *testing.T) {
	for _, raw := range []string{"json", " CSV ", "txt"} {
		if _, err := ParseFormat(raw); err != nil {
			t.Fatalf("ParseFormat(%q): %v", raw, err)
		}
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Fatalf("expected error for pdf")
	}
}

func TestExportJSONIsImportable(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, FormatJSON, exportFixture(), DefaultFields(), fixedNow); err != nil {
		t.Fatalf("export: %v", err)
	}

	var back Snapshot
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("exported json does not decode: %v", err)
	}
	if diff := cmp.Diff(exportFixture(), back); diff != "" {
		t.Fatalf("json export mismatch (-want +got):\n%s", diff)
	}
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, FormatCSV, exportFixture(), DefaultFields(), fixedNow); err != nil {
		t.Fatalf("export: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("csv parse: %v", err)
	}
	want := [][]string{
		{"Campo", "Valor"},
		{"Nome do Hotel", "Hotel Aurora"},
		{"Missão", "Acolher bem"},
		{"Visão", ""},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestExportTXTSkipsEmptyFields(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, FormatTXT, exportFixture(), DefaultFields(), fixedNow); err != nil {
		t.Fatalf("export: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "MANUAL DA MARCA - DADOS") {
		t.Fatalf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "Nome do Hotel:\nHotel Aurora") {
		t.Fatalf("missing hotel name:\n%s", out)
	}
	if strings.Contains(out, "Visão:") {
		t.Fatalf("empty field should be skipped:\n%s", out)
	}
	if strings.Contains(out, "AAAA") {
		t.Fatalf("logo must not be exported as text")
	}
	if !strings.Contains(out, "Gerado em: 14/03/2025") {
		t.Fatalf("missing footer date:\n%s", out)
	}
}

func TestLogoDataURL(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	got, err := LogoDataURL(bytes.NewReader(png))
	if err != nil {
		t.Fatalf("png: %v", err)
	}
	if !strings.HasPrefix(got, "data:image/png;base64,") || !IsImageDataURL(got) {
		t.Fatalf("unexpected data url %q", got)
	}

	svg := []byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"></svg>`)
	got, err = LogoDataURL(bytes.NewReader(svg))
	if err != nil {
		t.Fatalf("svg: %v", err)
	}
	if !strings.HasPrefix(got, "data:image/svg+xml;base64,") {
		t.Fatalf("unexpected svg data url %q", got)
	}

	if _, err := LogoDataURL(strings.NewReader("plain text")); err == nil {
		t.Fatalf("expected text to be rejected")
	}
}
