package templates

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed css/*.css
var stylesheets embed.FS

// Palette is a primary/secondary/accent colour triple.
type Palette struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
}

// Fill returns p with empty entries taken from fallback.
func (p Palette) Fill(fallback Palette) Palette {
	if p.Primary == "" {
		p.Primary = fallback.Primary
	}
	if p.Secondary == "" {
		p.Secondary = fallback.Secondary
	}
	if p.Accent == "" {
		p.Accent = fallback.Accent
	}
	return p
}

// Style is what a template contributes to an assembled document once the
// effective palette is known.
type Style struct {
	HeaderBackground string
	TextColor        string
	AccentColor      string
	GradientAngle    string
	Layout           string
	BodyClass        string
	Stylesheet       string
}

// Template is an immutable visual style descriptor. Templates carry no form
// data.
type Template struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	AspectRatio string  `json:"aspectRatio"`
	Layout      string  `json:"layout"`
	Palette     Palette `json:"palette"`

	textColor     string
	gradientAngle string
	solidHeader   bool
}

// StyleFor derives the template style for the effective palette p. Empty
// palette entries fall back to the template's own palette.
func (t Template) StyleFor(p Palette) Style {
	p = p.Fill(t.Palette)
	angle := t.gradientAngle
	if angle == "" {
		angle = "135deg"
	}
	header := fmt.Sprintf("linear-gradient(%s, %s, %s)", angle, p.Primary, p.Secondary)
	if t.solidHeader {
		header = p.Primary
	}
	text := t.textColor
	if text == "" {
		text = p.Primary
	}
	return Style{
		HeaderBackground: header,
		TextColor:        text,
		AccentColor:      p.Accent,
		GradientAngle:    angle,
		Layout:           t.Layout,
		BodyClass:        "template-" + t.ID,
		Stylesheet:       t.Stylesheet(),
	}
}

// Stylesheet returns the shared base CSS followed by the template's own
// rules. Colours are referenced through CSS variables the assembler
// defines.
func (t Template) Stylesheet() string {
	var b strings.Builder
	if base, err := stylesheets.ReadFile("css/base.css"); err == nil {
		b.Write(base)
	}
	if own, err := stylesheets.ReadFile("css/" + t.ID + ".css"); err == nil {
		b.WriteString("\n")
		b.Write(own)
	}
	return b.String()
}

// IsZero reports whether t is the empty template.
func (t Template) IsZero() bool { return t.ID == "" }

// New builds a custom template. Palette entries left empty fall back to the
// classic palette.
func New(id, name, description, aspectRatio, layout string, palette Palette) Template {
	return Template{
		ID:          id,
		Name:        name,
		Description: description,
		AspectRatio: aspectRatio,
		Layout:      layout,
		Palette:     palette.Fill(classic.Palette),
	}
}

var (
	classic = Template{
		ID:          "classic",
		Name:        "Clássico",
		Description: "Template tradicional, limpo e profissional",
		AspectRatio: "16:9",
		Layout:      "traditional",
		Palette:     Palette{Primary: "#2c3e50", Secondary: "#3498db", Accent: "#e74c3c"},
		textColor:   "#2c3e50",
	}
	constitution = Template{
		ID:          "constitution",
		Name:        "Constitution",
		Description: "Inspirado em documentos oficiais, elegante e formal",
		AspectRatio: "4:3",
		Layout:      "document",
		Palette:     Palette{Primary: "#1a1a1a", Secondary: "#333333", Accent: "#ff6b35"},
		textColor:   "#1a1a1a",
	}
	modern = Template{
		ID:            "modern",
		Name:          "Moderno",
		Description:   "Design contemporâneo com elementos visuais dinâmicos",
		AspectRatio:   "16:9",
		Layout:        "modern",
		Palette:       Palette{Primary: "#667eea", Secondary: "#764ba2", Accent: "#667eea"},
		textColor:     "#2c3e50",
		gradientAngle: "45deg",
	}
	minimalist = Template{
		ID:          "minimalist",
		Name:        "Minimalista",
		Description: "Foco no conteúdo, sem distrações visuais",
		AspectRatio: "4:3",
		Layout:      "minimal",
		Palette:     Palette{Primary: "#1a1a1a", Secondary: "#000000", Accent: "#000000"},
		textColor:   "#1a1a1a",
		solidHeader: true,
	}
	luxury = Template{
		ID:          "luxury",
		Name:        "Luxo",
		Description: "Elegante e sofisticado para hotéis premium",
		AspectRatio: "16:9",
		Layout:      "luxury",
		Palette:     Palette{Primary: "#000428", Secondary: "#004e92", Accent: "#d4af37"},
		textColor:   "#1a1a1a",
	}
)

// DefaultID is the template used when nothing valid is selected.
const DefaultID = "classic"

// Builtin returns the five stock templates in catalog order.
func Builtin() []Template {
	return []Template{classic, constitution, modern, minimalist, luxury}
}

// Classic returns the default template.
func Classic() Template { return classic }
