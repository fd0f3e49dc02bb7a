package testsupport

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/goliatone/go-brandmanual/pkg/formdata"
)

// FixedNow is the clock every fixture-driven test uses.
var FixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

// Clock returns a clock pinned to FixedNow.
func Clock() func() time.Time {
	return func() time.Time { return FixedNow }
}

// AuroraData is the reference hotel used across assembler and workspace
// tests.
func AuroraData() formdata.Data {
	return formdata.Data{
		"hotelName":    "Hotel Aurora",
		"mission":      "Delight guests",
		"primaryColor": "#112233",
	}
}

// FullData fills every default field with a recognisable value.
func FullData() formdata.Data {
	out := formdata.Data{}
	for _, f := range formdata.DefaultFields() {
		switch f.Kind {
		case formdata.KindColor:
			out[f.ID] = f.Default
		case formdata.KindEmail:
			out[f.ID] = "marca@aurora.example"
		case formdata.KindURL:
			out[f.ID] = "https://aurora.example"
		default:
			out[f.ID] = f.Label + " Aurora"
		}
	}
	out["hotelName"] = "Hotel Aurora"
	return out
}

// LoadData reads a flat JSON fixture into form data.
func LoadData(path string) (formdata.Data, error) {
	if path == "" {
		return nil, errors.New("testsupport: data path is required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read data: %w", err)
	}
	var snap formdata.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("testsupport: decode data: %w", err)
	}
	return snap.Data(), nil
}

// MustLoadData is LoadData for tests.
func MustLoadData(t *testing.T, path string) formdata.Data {
	t.Helper()
	data, err := LoadData(path)
	if err != nil {
		t.Fatalf("load data: %v", err)
	}
	return data
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}

var datePattern = regexp.MustCompile(`\b\d{2}/\d{2}/\d{4}\b|\b\d{4}\b`)

// MaskDates replaces dd/mm/yyyy dates and bare years so documents rendered
// at different times can be compared.
func MaskDates(s string) string {
	return datePattern.ReplaceAllString(s, "<date>")
}
