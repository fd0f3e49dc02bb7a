package formdata

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Format names a data export format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatTXT  Format = "txt"
)

// ParseFormat normalises a user supplied format name.
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case FormatJSON, FormatCSV, FormatTXT:
		return f, nil
	default:
		return "", fmt.Errorf("formdata: unsupported export format %q", raw)
	}
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatTXT:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Export writes snap in format. fields sets the row order; now stamps the
// TXT footer.
func Export(w io.Writer, format Format, snap Snapshot, fields []Field, now time.Time) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, snap)
	case FormatCSV:
		return WriteCSV(w, snap, fields)
	case FormatTXT:
		return WriteTXT(w, snap, fields, now)
	default:
		return fmt.Errorf("formdata: unsupported export format %q", format)
	}
}

// WriteJSON writes the indented flat snapshot, the same shape Import
// accepts.
func WriteJSON(w io.Writer, snap Snapshot) error {
	payload, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("formdata: encode json: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

// WriteCSV writes a Campo,Valor table with display names. The logo and
// metadata are left out.
func WriteCSV(w io.Writer, snap Snapshot, fields []Field) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Campo", "Valor"}); err != nil {
		return err
	}
	for _, key := range OrderedKeys(snap.Fields, fields) {
		if err := cw.Write([]string{DisplayName(key), snap.Fields[key]}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTXT writes a plain listing of the non-empty fields.
func WriteTXT(w io.Writer, snap Snapshot, fields []Field, now time.Time) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "MANUAL DA MARCA - DADOS")
	fmt.Fprintln(bw, "========================")
	fmt.Fprintln(bw)
	for _, key := range OrderedKeys(snap.Fields, fields) {
		value := snap.Fields[key]
		if strings.TrimSpace(value) == "" {
			continue
		}
		fmt.Fprintf(bw, "%s:\n%s\n\n", DisplayName(key), value)
	}
	fmt.Fprintln(bw, "------------------------")
	fmt.Fprintf(bw, "Gerado em: %s\n", FormatDate(now))
	return bw.Flush()
}

// FormatDate renders t as dd/mm/yyyy, the pt-BR short date.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}
