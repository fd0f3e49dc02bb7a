package gotemplate

import (
	"regexp"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

var filtersOnce sync.Once

var (
	cssValueChars = regexp.MustCompile(`^[#a-zA-Z0-9(),.%\s-]+$`)
	cssFontChars  = regexp.MustCompile(`^[a-zA-Z0-9 ,\-]+$`)
	cssLength     = regexp.MustCompile(`^-?\d+(\.\d+)?(px|rem|em|%|vh|vw|pt)?$`)
	cssImageURL   = regexp.MustCompile(`^data:image/(png|jpeg|jpg|gif|webp|svg\+xml);base64,[A-Za-z0-9+/=]+$`)
	cssForbidden  = regexp.MustCompile(`(?i)(expression\s*\(|url\s*\(|@import|javascript:|behavior\s*:|-moz-binding)`)
)

func registerDefaultFilters() {
	filtersOnce.Do(func() {
		register := map[string]pongo2.FilterFunction{
			"csscolor":  filterCSSColor,
			"cssfont":   filterCSSFont,
			"csslength": filterCSSLength,
			"cssimage":  filterCSSImage,
			"cssdecl":   filterCSSDeclarations,
			"cssshadow": filterCSSShadow,
		}
		for name, fn := range register {
			if !pongo2.FilterExists(name) {
				_ = pongo2.RegisterFilter(name, fn)
			}
		}
	})
}

// SanitizeColor returns v when it only holds characters a CSS colour value
// can use, otherwise "".
func SanitizeColor(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || !cssValueChars.MatchString(v) || cssForbidden.MatchString(v) {
		return ""
	}
	return v
}

// SanitizeFont keeps a font family list made of names, spaces and commas.
func SanitizeFont(v string) string {
	v = strings.TrimSpace(v)
	if !cssFontChars.MatchString(v) {
		return ""
	}
	return v
}

// SanitizeLength keeps a single CSS length such as 12px or 1.5rem.
func SanitizeLength(v string) string {
	v = strings.TrimSpace(v)
	if !cssLength.MatchString(v) {
		return ""
	}
	return v
}

// SanitizeImage keeps inline base64 image data URLs only.
func SanitizeImage(v string) string {
	v = strings.TrimSpace(v)
	if !cssImageURL.MatchString(v) {
		return ""
	}
	return v
}

// SanitizeShadow keeps box-shadow values.
func SanitizeShadow(v string) string {
	v = strings.TrimSpace(v)
	if !cssValueChars.MatchString(v) || cssForbidden.MatchString(v) {
		return ""
	}
	return v
}

// SanitizeDeclarations keeps a list of property:value declarations. Anything
// that could close the declaration block, load a resource or run script is
// dropped declaration by declaration.
func SanitizeDeclarations(v string) string {
	var kept []string
	for _, decl := range strings.Split(v, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		if strings.ContainsAny(decl, "{}<>\\\"'`") || cssForbidden.MatchString(decl) {
			continue
		}
		name, value, ok := strings.Cut(decl, ":")
		if !ok || strings.TrimSpace(name) == "" || strings.TrimSpace(value) == "" {
			continue
		}
		kept = append(kept, strings.TrimSpace(name)+": "+strings.TrimSpace(value))
	}
	if len(kept) == 0 {
		return ""
	}
	return strings.Join(kept, "; ") + ";"
}

func stringFilter(fn func(string) string) pongo2.FilterFunction {
	return func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		return pongo2.AsValue(fn(in.String())), nil
	}
}

var (
	filterCSSColor        = stringFilter(SanitizeColor)
	filterCSSFont         = stringFilter(SanitizeFont)
	filterCSSLength       = stringFilter(SanitizeLength)
	filterCSSImage        = stringFilter(SanitizeImage)
	filterCSSShadow       = stringFilter(SanitizeShadow)
	filterCSSDeclarations = stringFilter(SanitizeDeclarations)
)
