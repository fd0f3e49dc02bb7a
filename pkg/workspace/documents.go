package workspace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/goliatone/go-brandmanual/pkg/assemble"
	"github.com/goliatone/go-brandmanual/pkg/customization"
	"github.com/goliatone/go-brandmanual/pkg/formdata"
	"github.com/goliatone/go-brandmanual/pkg/share"
	"github.com/goliatone/go-brandmanual/pkg/sink"
	"github.com/goliatone/go-brandmanual/pkg/validation"
)

// ImportKind says what an import document held.
type ImportKind string

const (
	ImportFormData      ImportKind = "formdata"
	ImportCustomization ImportKind = "customization"
)

// ErrInvalidImport wraps every rejected import. Nothing is changed when it
// is returned.
var ErrInvalidImport = errors.New("workspace: invalid import")

// ErrNoPrinter is returned by RenderPDF when no printer is configured.
var ErrNoPrinter = errors.New("workspace: no pdf printer configured")

// ImportError carries the validation issues of a rejected import.
type ImportError struct {
	Issues []validation.Issue
}

func (e *ImportError) Error() string {
	if len(e.Issues) == 0 {
		return ErrInvalidImport.Error()
	}
	return fmt.Sprintf("%s: %s", ErrInvalidImport, e.Issues[0].Message)
}

func (e *ImportError) Unwrap() error { return ErrInvalidImport }

// writer is implemented by sinks that can store binary files.
type writer interface {
	Write(ctx context.Context, name string, data []byte) (string, error)
}

// Assemble renders the current state in mode.
func (w *Workspace) Assemble(ctx context.Context, mode assemble.Mode, compact bool) (string, error) {
	return w.assembler.Assemble(ctx, assemble.Request{
		Data:          w.Data(),
		Customization: w.Customization(),
		Template:      w.Template(ctx),
		Mode:          mode,
		Compact:       compact,
	})
}

// Preview assembles a preview and hands it to the sink.
func (w *Workspace) Preview(ctx context.Context, compact bool) error {
	html, err := w.Assemble(ctx, assemble.ModePreview, compact)
	if err != nil {
		return err
	}
	return w.sink.OpenPreview(ctx, html)
}

// RenderHTML assembles the standalone document and returns it with its
// suggested file name.
func (w *Workspace) RenderHTML(ctx context.Context) (string, string, error) {
	html, err := w.Assemble(ctx, assemble.ModeExportHTML, false)
	if err != nil {
		return "", "", err
	}
	w.recordExport("html")
	return html, w.filename("html"), nil
}

// ExportHTML downloads the standalone document and returns where it went.
func (w *Workspace) ExportHTML(ctx context.Context) (string, error) {
	html, err := w.Assemble(ctx, assemble.ModeExportHTML, false)
	if err != nil {
		return "", err
	}
	path, err := w.sink.Download(ctx, html, w.filename("html"))
	if err != nil {
		return "", err
	}
	w.recordExport("html")
	return path, nil
}

// ExportPDF renders the print document. With a printer configured the PDF
// is written through the sink and its location returned; otherwise the
// document goes to the sink's print flow and the path is empty.
func (w *Workspace) ExportPDF(ctx context.Context) (string, error) {
	html, err := w.Assemble(ctx, assemble.ModeExportPDF, false)
	if err != nil {
		return "", err
	}
	if w.printer == nil {
		if err := w.sink.Print(ctx, html); err != nil {
			return "", err
		}
		w.recordExport("pdf")
		return "", nil
	}

	pdf, err := w.printPDF(ctx, html)
	if err != nil {
		return "", err
	}
	name := w.filename("pdf")
	var path string
	if fw, ok := w.sink.(writer); ok {
		path, err = fw.Write(ctx, name, pdf)
	} else {
		path, err = w.sink.Download(ctx, string(pdf), name)
	}
	if err != nil {
		return "", err
	}
	w.recordExport("pdf")
	return path, nil
}

// RenderPDF assembles the print document and renders it with the printer.
// It returns the PDF and its suggested file name.
func (w *Workspace) RenderPDF(ctx context.Context) ([]byte, string, error) {
	if w.printer == nil {
		return nil, "", ErrNoPrinter
	}
	html, err := w.Assemble(ctx, assemble.ModeExportPDF, false)
	if err != nil {
		return nil, "", err
	}
	pdf, err := w.printPDF(ctx, html)
	if err != nil {
		return nil, "", err
	}
	w.recordExport("pdf")
	return pdf, w.filename("pdf"), nil
}

func (w *Workspace) printPDF(ctx context.Context, html string) ([]byte, error) {
	pdf, err := w.printer.PrintPDF(ctx, html)
	if err != nil {
		return nil, fmt.Errorf("workspace: print pdf: %w", err)
	}
	return pdf, nil
}

// Filename names an export of the current hotel with ext.
func (w *Workspace) Filename(ext string) string { return w.filename(ext) }

// ExportData writes the form in format to out and returns the suggested
// file name.
func (w *Workspace) ExportData(out io.Writer, format formdata.Format) (string, error) {
	if err := formdata.Export(out, format, w.Snapshot(), w.form.Fields(), w.now()); err != nil {
		return "", err
	}
	w.recordExport(string(format))
	return w.filename(string(format)), nil
}

// DownloadData exports the form through the sink.
func (w *Workspace) DownloadData(ctx context.Context, format formdata.Format) (string, error) {
	var buf bytes.Buffer
	name, err := w.ExportData(&buf, format)
	if err != nil {
		return "", err
	}
	return w.sink.Download(ctx, buf.String(), name)
}

// Duplicate downloads a renamed copy of the form as JSON. The form itself is
// left alone.
func (w *Workspace) Duplicate(ctx context.Context) (string, error) {
	snap := w.data.Duplicate()
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("workspace: encode copy: %w", err)
	}
	return w.sink.Download(ctx, string(raw), sink.Filename(snap.Fields.Get("hotelName"), "json"))
}

// ExportConfig serialises the customization and returns it with its file
// name.
func (w *Workspace) ExportConfig() ([]byte, string, error) {
	now := w.now()
	raw, err := customization.ExportConfig(w.Customization(), now)
	if err != nil {
		return nil, "", err
	}
	w.recordExport("config")
	return raw, customization.ConfigFilename(now), nil
}

// Import loads a JSON document. Objects with a "customizations" member
// replace the customization; any other object populates the form, missing
// keys simply stay as they are. Invalid documents change nothing.
func (w *Workspace) Import(ctx context.Context, raw []byte) (ImportKind, error) {
	result := validation.ValidateImport(raw)
	if !result.Valid {
		w.logger.Warn("import rejected", map[string]any{"issues": len(result.Issues)})
		return "", &ImportError{Issues: result.Issues}
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return "", &ImportError{Issues: []validation.Issue{{Message: err.Error()}}}
	}

	if _, ok := probe["customizations"]; ok {
		c, err := customization.ImportConfig(raw)
		if err != nil {
			return "", &ImportError{Issues: []validation.Issue{{Field: "customizations", Message: err.Error()}}}
		}
		if err := w.SetCustomization(ctx, c); err != nil {
			return "", err
		}
		return ImportCustomization, nil
	}

	if err := w.data.PopulateJSON(raw); err != nil {
		return "", &ImportError{Issues: []validation.Issue{{Message: err.Error()}}}
	}
	if err := w.data.Save(ctx); err != nil {
		return "", err
	}
	return ImportFormData, nil
}

// Validate checks the current form.
func (w *Workspace) Validate() validation.Result {
	return validation.ValidateForm(w.Data(), w.form.Fields())
}

// ShareLink encodes the shareable subset of the current state onto base.
func (w *Workspace) ShareLink(ctx context.Context, base string) (string, error) {
	return share.Link(base, share.FromData(w.Template(ctx).ID, w.Data()))
}

// ApplyShare restores a share link: the template when it is registered and
// every non-empty shared field.
func (w *Workspace) ApplyShare(ctx context.Context, linkOrToken string) (share.Payload, error) {
	p, err := share.Parse(linkOrToken)
	if err != nil {
		return share.Payload{}, err
	}
	if p.Template != "" && w.registry.Has(p.Template) {
		if _, err := w.selection.Select(ctx, p.Template); err != nil {
			return p, err
		}
	}
	fields := map[string]any{}
	for k, v := range p.Fields() {
		fields[k] = v
	}
	if err := w.Populate(ctx, fields); err != nil {
		return p, err
	}
	return p, nil
}

func (w *Workspace) filename(ext string) string {
	return sink.Filename(w.form.Value("hotelName"), ext)
}

func (w *Workspace) recordExport(format string) {
	if w.recorder != nil {
		w.recorder.RecordExport(format)
	}
	w.logger.Info("export completed", map[string]any{"format": format})
}
