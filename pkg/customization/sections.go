package customization

import (
	"fmt"
	"strings"
)

// SectionInfo describes one entry of the fixed section catalog.
type SectionInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Icon  string `json:"icon"`
}

var catalog = []SectionInfo{
	{ID: "info-basicas", Title: "Informações Básicas", Icon: "🏢"},
	{ID: "identidade", Title: "Identidade da Marca", Icon: "🎯"},
	{ID: "logotipo", Title: "Logotipo", Icon: "🎨"},
	{ID: "cores", Title: "Paleta de Cores", Icon: "🎨"},
	{ID: "tipografia", Title: "Tipografia", Icon: "✏️"},
	{ID: "tom-voz", Title: "Tom de Voz", Icon: "🗣️"},
	{ID: "aplicacoes", Title: "Aplicações da Marca", Icon: "📋"},
	{ID: "redes-sociais", Title: "Redes Sociais", Icon: "📱"},
	{ID: "contatos", Title: "Contatos", Icon: "📞"},
}

// Catalog returns the sections in document order.
func Catalog() []SectionInfo {
	out := make([]SectionInfo, len(catalog))
	copy(out, catalog)
	return out
}

// SectionIDs returns the section ids in document order.
func SectionIDs() []string {
	out := make([]string, len(catalog))
	for i, info := range catalog {
		out[i] = info.ID
	}
	return out
}

// Lookup finds a catalog entry.
func Lookup(id string) (SectionInfo, bool) {
	for _, info := range catalog {
		if info.ID == id {
			return info, true
		}
	}
	return SectionInfo{}, false
}

func (c *Customization) mutate(id string, fn func(*Section)) error {
	if _, ok := Lookup(id); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSection, id)
	}
	EnsureSections(c)
	section := c.Sections[id]
	fn(&section)
	c.Sections[id] = section
	return nil
}

// ToggleSection enables or disables one section.
func (c *Customization) ToggleSection(id string, enabled bool) error {
	return c.mutate(id, func(s *Section) { s.Enabled = enabled })
}

// SetSectionIcon replaces the heading icon. The value may be a glyph or
// inline SVG and is sanitised before it is stored.
func (c *Customization) SetSectionIcon(id, icon string) error {
	return c.mutate(id, func(s *Section) { s.Icon = SanitizeIcon(icon) })
}

// SetSectionTitle overrides the heading text. An empty title restores the
// default heading.
func (c *Customization) SetSectionTitle(id, title string) error {
	return c.mutate(id, func(s *Section) { s.CustomTitle = strings.TrimSpace(title) })
}

// SetSectionColor sets the section background and heading colours. Empty
// arguments leave the current value.
func (c *Customization) SetSectionColor(id, background, title string) error {
	for _, v := range []string{background, title} {
		if v != "" && !ValidColor(v) {
			return fmt.Errorf("%w: colour %q", ErrInvalid, v)
		}
	}
	return c.mutate(id, func(s *Section) {
		if background != "" {
			s.BackgroundColor = background
		}
		if title != "" {
			s.TitleColor = title
		}
	})
}

// SetSectionCSS stores extra CSS declarations for one section.
func (c *Customization) SetSectionCSS(id, css string) error {
	return c.mutate(id, func(s *Section) { s.CustomCSS = strings.TrimSpace(css) })
}

// ResetSection restores the factory override for one section.
func (c *Customization) ResetSection(id string) error {
	return c.mutate(id, func(s *Section) { *s = DefaultSection(id) })
}
