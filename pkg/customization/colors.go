package customization

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidColor reports whether v is a #rgb or #rrggbb hex colour.
func ValidColor(v string) bool {
	return hexColor.MatchString(strings.TrimSpace(v))
}

// HexToRGB converts a hex colour to its components.
func HexToRGB(hex string) (r, g, b uint8, err error) {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return 0, 0, 0, fmt.Errorf("customization: invalid hex colour %q", hex)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("customization: invalid hex colour %q: %w", hex, err)
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), nil
}

// RGBA renders hex with the given alpha as an rgba() value.
func RGBA(hex string, alpha float64) string {
	r, g, b, err := HexToRGB(hex)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", r, g, b, strconv.FormatFloat(alpha, 'f', -1, 64))
}

// ContrastText picks black or white text for a background colour using the
// YIQ brightness formula.
func ContrastText(hex string) string {
	r, g, b, err := HexToRGB(hex)
	if err != nil {
		return "#000000"
	}
	yiq := (int(r)*299 + int(g)*587 + int(b)*114) / 1000
	if yiq >= 128 {
		return "#000000"
	}
	return "#ffffff"
}
