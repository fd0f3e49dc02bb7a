// Package sink delivers assembled documents: previews, downloads and print
// jobs. Sinks never build HTML themselves.
package sink

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrPopupBlocked reports that no browsing context could be opened for
	// a preview or print job. Its message is meant for end users.
	ErrPopupBlocked = errors.New("Pop-up bloqueado! Permita pop-ups para usar esta função.")
	// ErrOpenerUnavailable reports that the host has no way to open files.
	ErrOpenerUnavailable = errors.New("sink: no system opener available")
	// ErrInvalidFilename is returned for empty or path-like download names.
	ErrInvalidFilename = errors.New("sink: invalid filename")
)

// Sink consumes an assembled document.
type Sink interface {
	OpenPreview(ctx context.Context, html string) error
	Download(ctx context.Context, html, filename string) (string, error)
	Print(ctx context.Context, html string) error
}

// Printer turns an HTML document into PDF bytes.
type Printer interface {
	PrintPDF(ctx context.Context, html string) ([]byte, error)
}

// FilePrefix starts every exported file name.
const FilePrefix = "manual-marca-"

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slug lowercases s, strips accents and joins the remaining letters and
// digits with single dashes.
func Slug(s string) string {
	plain, _, err := transform.String(stripMarks, s)
	if err != nil {
		plain = s
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(plain) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Filename builds manual-marca-<slug>.<ext>. An empty slug becomes "hotel".
func Filename(hotelName, ext string) string {
	slug := Slug(hotelName)
	if slug == "" {
		slug = "hotel"
	}
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		return FilePrefix + slug
	}
	return FilePrefix + slug + "." + ext
}
