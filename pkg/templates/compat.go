package templates

import (
	"strings"

	"github.com/goliatone/go-brandmanual/pkg/formdata"
)

// Compatibility lists advisory warnings about using a template with some
// form data. Warnings never block assembly.
type Compatibility struct {
	Compatible bool     `json:"compatible"`
	Warnings   []string `json:"warnings"`
}

// CheckCompatibility flags data a template relies on that is missing.
func CheckCompatibility(t Template, data map[string]string) Compatibility {
	missing := func(key string) bool { return strings.TrimSpace(data[key]) == "" }

	var warnings []string
	if missing("hotelName") && t.ID != "minimalist" {
		warnings = append(warnings, "Nome do hotel não definido")
	}
	if missing("mission") && t.ID == "constitution" {
		warnings = append(warnings, "Missão é essencial para o template Constitution")
	}
	if t.ID == "luxury" && unchangedColor(data, "primaryColor") {
		warnings = append(warnings, "Cores personalizadas recomendadas para template Luxury")
	}
	return Compatibility{Compatible: len(warnings) == 0, Warnings: warnings}
}

// unchangedColor reports whether a colour field is empty or still holds the
// value the form starts with.
func unchangedColor(data map[string]string, key string) bool {
	v := strings.TrimSpace(data[key])
	if v == "" {
		return true
	}
	for _, f := range formdata.DefaultFields() {
		if f.ID == key {
			return strings.EqualFold(v, f.Default)
		}
	}
	return false
}
