package formdata

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// MaxLogoBytes bounds uploaded logos.
const MaxLogoBytes = 5 << 20

var (
	// ErrNotImage is returned when an uploaded file is not an image.
	ErrNotImage = errors.New("formdata: file is not an image")
	// ErrLogoTooLarge is returned when an upload exceeds MaxLogoBytes.
	ErrLogoTooLarge = errors.New("formdata: logo exceeds size limit")
)

// LogoDataURL reads an image and encodes it as a data URL so documents can
// inline it.
func LogoDataURL(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxLogoBytes+1))
	if err != nil {
		return "", fmt.Errorf("formdata: read logo: %w", err)
	}
	if len(data) > MaxLogoBytes {
		return "", ErrLogoTooLarge
	}
	mime := http.DetectContentType(data)
	if strings.Contains(string(data[:min(len(data), 512)]), "<svg") {
		mime = "image/svg+xml"
	}
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%w: detected %s", ErrNotImage, mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// LogoFromFile loads path through LogoDataURL.
func LogoFromFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("formdata: open logo: %w", err)
	}
	defer f.Close()
	return LogoDataURL(f)
}

// IsImageDataURL reports whether s is an inlined image.
func IsImageDataURL(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "data:image/")
}
