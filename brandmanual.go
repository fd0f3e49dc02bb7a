// Package brandmanual is the top-level entry point for building hotel brand
// manuals: one call to assemble a document, or a Workspace for the full
// fill, customise and export flow.
package brandmanual

import (
	"context"

	"github.com/goliatone/go-brandmanual/pkg/assemble"
	"github.com/goliatone/go-brandmanual/pkg/customization"
	"github.com/goliatone/go-brandmanual/pkg/formdata"
	"github.com/goliatone/go-brandmanual/pkg/storage"
	"github.com/goliatone/go-brandmanual/pkg/templates"
	"github.com/goliatone/go-brandmanual/pkg/workspace"
)

// Workspace aliases workspace.Workspace for callers of the root package.
type Workspace = workspace.Workspace

// FormData is the flat field mapping a hotel fills out.
type FormData = formdata.Data

// Customization is the visual configuration overlaid on a template.
type Customization = customization.Customization

// Template is a built-in document template.
type Template = templates.Template

// Mode selects preview or export assembly.
type Mode = assemble.Mode

// Assembly modes.
const (
	ModePreview    = assemble.ModePreview
	ModeExportHTML = assemble.ModeExportHTML
	ModeExportPDF  = assemble.ModeExportPDF
)

// NewWorkspace builds and opens a workspace over kv. A nil kv uses an
// in-memory store.
func NewWorkspace(ctx context.Context, kv storage.Store, options ...workspace.Option) (*Workspace, error) {
	if kv == nil {
		kv = storage.NewMemory()
	}
	ws, err := workspace.New(kv, options...)
	if err != nil {
		return nil, err
	}
	if err := ws.Open(ctx); err != nil {
		return nil, err
	}
	return ws, nil
}

// Generate assembles one document without any persistence. An empty
// templateID selects the default template; a zero customization uses the
// factory settings.
func Generate(ctx context.Context, data FormData, c Customization, templateID string, mode Mode, options ...assemble.Option) (string, error) {
	tpl, err := templates.Default().Get(orDefault(templateID, templates.DefaultID))
	if err != nil {
		return "", err
	}
	asm, err := assemble.New(options...)
	if err != nil {
		return "", err
	}
	return asm.Assemble(ctx, assemble.Request{
		Data:          data,
		Customization: c,
		Template:      tpl,
		Mode:          mode,
	})
}

// Templates lists the built-in templates.
func Templates() []Template { return templates.Default().List() }

// DefaultCustomization returns the factory customization.
func DefaultCustomization() Customization { return customization.Default() }

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
