package brandmanual

import (
	"embed"
	"io/fs"

	"github.com/goliatone/go-brandmanual/pkg/assemble"
)

//go:embed pkg/templates/css/*.css
var embeddedStylesheets embed.FS

// StylesheetsFS exposes the template stylesheets (base.css plus one file per
// template) so hosts can serve them next to assembled documents.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(brandmanual.StylesheetsFS()),
//	  ),
//	)
func StylesheetsFS() fs.FS {
	sub, err := fs.Sub(embeddedStylesheets, "pkg/templates/css")
	if err != nil {
		return embeddedStylesheets
	}
	return sub
}

// EmbeddedTemplates exposes the document templates the assembler renders so
// callers can inspect or extend them.
func EmbeddedTemplates() (fs.FS, error) {
	return assemble.Templates()
}
