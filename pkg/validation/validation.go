// Package validation checks brand-manual form data and import documents.
// Findings are reported as issues; nothing here blocks saving or export.
package validation

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/goliatone/go-brandmanual/pkg/customization"
	"github.com/goliatone/go-brandmanual/pkg/formdata"
)

// Issue is one validation finding with optional location metadata.
type Issue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Result captures the outcome of a validation run.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// Messages shown to users.
const (
	MsgRequired     = "Campo obrigatório"
	MsgInvalidEmail = "Email inválido"
	MsgInvalidURL   = "URL inválida. Use formato: https://exemplo.com"
	MsgInvalidColor = "Cor inválida. Use formato: #RRGGBB"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail reports whether v looks like an e-mail address.
func IsValidEmail(v string) bool {
	return emailPattern.MatchString(strings.TrimSpace(v))
}

// IsValidURL reports whether v is an absolute http(s) URL with a host.
func IsValidURL(v string) bool {
	u, err := url.Parse(strings.TrimSpace(v))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ValidateForm checks required fields and the format of e-mail, URL and
// colour fields. Empty optional fields are never reported.
func ValidateForm(data formdata.Data, fields []formdata.Field) Result {
	if fields == nil {
		fields = formdata.DefaultFields()
	}
	result := Result{Valid: true}
	for _, f := range fields {
		v := strings.TrimSpace(data.Get(f.ID))
		if v == "" {
			if f.Required {
				result.add(f, MsgRequired+": "+f.Label)
			}
			continue
		}
		switch f.Kind {
		case formdata.KindEmail:
			if !IsValidEmail(v) {
				result.add(f, MsgInvalidEmail)
			}
		case formdata.KindURL:
			if !IsValidURL(v) {
				result.add(f, MsgInvalidURL)
			}
		case formdata.KindColor:
			if !customization.ValidColor(v) {
				result.add(f, MsgInvalidColor)
			}
		}
	}
	return result
}

func (r *Result) add(f formdata.Field, msg string) {
	r.Valid = false
	r.Issues = append(r.Issues, Issue{
		Path:    "/" + f.ID,
		Field:   f.ID,
		Message: msg,
	})
}

// Missing lists the display names of required fields left empty, in form
// order.
func Missing(data formdata.Data, fields []formdata.Field) []string {
	if fields == nil {
		fields = formdata.DefaultFields()
	}
	var out []string
	for _, f := range fields {
		if f.Required && strings.TrimSpace(data.Get(f.ID)) == "" {
			out = append(out, f.Label)
		}
	}
	return out
}
