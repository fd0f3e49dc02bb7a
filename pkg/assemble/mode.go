package assemble

import (
	"errors"
	"fmt"
	"strings"
)

// Mode selects the output flavour of an assembled document.
type Mode string

const (
	ModePreview    Mode = "preview"
	ModeExportHTML Mode = "export-html"
	ModeExportPDF  Mode = "export-pdf"
)

// ErrUnknownMode is returned for modes outside preview, export-html and
// export-pdf.
var ErrUnknownMode = errors.New("assemble: unknown mode")

// Modes lists the supported modes.
func Modes() []Mode {
	return []Mode{ModePreview, ModeExportHTML, ModeExportPDF}
}

// Valid reports whether m is one of the supported modes.
func (m Mode) Valid() bool {
	switch m {
	case ModePreview, ModeExportHTML, ModeExportPDF:
		return true
	}
	return false
}

func (m Mode) String() string { return string(m) }

// ParseMode resolves a mode name. Matching ignores case and surrounding
// space.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
	return m, nil
}
