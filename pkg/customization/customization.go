package customization

import (
	"errors"
	"fmt"

	"github.com/mohae/deepcopy"
)

// SchemaVersion is written next to every persisted customization.
const SchemaVersion = 1

// ErrUnknownSection is returned by section mutators for ids outside the
// fixed catalog.
var ErrUnknownSection = errors.New("customization: unknown section")

// ErrInvalid wraps values rejected by Validate and SetSectionColor.
var ErrInvalid = errors.New("customization: invalid value")

// CoverPage controls the optional full-page cover.
type CoverPage struct {
	Enabled           bool   `json:"enabled"`
	BackgroundImage   string `json:"backgroundImage"`
	BackgroundOverlay string `json:"backgroundOverlay"`
	LogoPosition      string `json:"logoPosition"`
	TitleStyle        string `json:"titleStyle"`
}

// HeaderBackground controls how the document header is painted.
type HeaderBackground struct {
	Type    string `json:"type"`
	Image   string `json:"image"`
	Overlay string `json:"overlay"`
}

// Global holds document wide settings.
type Global struct {
	Theme           string `json:"theme"`
	BorderStyle     string `json:"borderStyle"`
	AnimationLevel  string `json:"animationLevel"`
	MaxWidth        string `json:"maxWidth"`
	SectionSpacing  int    `json:"sectionSpacing"`
	BackgroundColor string `json:"backgroundColor"`
}

// Typography holds font settings. BaseFontSize is a multiplier of 1rem.
type Typography struct {
	PrimaryFont   string  `json:"primaryFont"`
	SecondaryFont string  `json:"secondaryFont"`
	BaseFontSize  float64 `json:"baseFontSize"`
	HeadingWeight string  `json:"headingWeight"`
	LineHeight    float64 `json:"lineHeight"`
}

// Colors is the customization palette. Values are hex strings.
type Colors struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
	Success   string `json:"success"`
	Warning   string `json:"warning"`
	Danger    string `json:"danger"`
}

// Section overrides the presentation of one document section.
type Section struct {
	Enabled         bool   `json:"enabled"`
	BackgroundColor string `json:"backgroundColor"`
	Icon            string `json:"icon"`
	TitleColor      string `json:"titleColor"`
	CustomTitle     string `json:"customTitle"`
	Layout          string `json:"layout"`
	Animation       string `json:"animation"`
	BorderRadius    string `json:"borderRadius"`
	Padding         string `json:"padding"`
	Shadow          string `json:"shadow"`
	CustomCSS       string `json:"customCSS"`
}

// Customization is the visual configuration overlaid on a template.
type Customization struct {
	CoverPage        CoverPage          `json:"coverPage"`
	HeaderBackground HeaderBackground   `json:"headerBackground"`
	Global           Global             `json:"global"`
	Typography       Typography         `json:"typography"`
	Colors           Colors             `json:"colors"`
	Sections         map[string]Section `json:"sections"`
}

// DefaultColors is the factory palette.
func DefaultColors() Colors {
	return Colors{
		Primary:   "#2c3e50",
		Secondary: "#3498db",
		Accent:    "#e74c3c",
		Success:   "#27ae60",
		Warning:   "#f39c12",
		Danger:    "#e74c3c",
	}
}

// Default returns the factory customization with every section populated.
func Default() Customization {
	c := Customization{
		CoverPage: CoverPage{
			Enabled:           true,
			BackgroundOverlay: "rgba(0,0,0,0.4)",
			LogoPosition:      "center",
			TitleStyle:        "gradient",
		},
		HeaderBackground: HeaderBackground{
			Type:    "gradient",
			Overlay: "rgba(0,0,0,0.3)",
		},
		Global: Global{
			Theme:           "professional",
			BorderStyle:     "rounded",
			AnimationLevel:  "full",
			MaxWidth:        "1200px",
			SectionSpacing:  30,
			BackgroundColor: "#f8f9fa",
		},
		Typography: Typography{
			PrimaryFont:   "Arial",
			SecondaryFont: "Arial",
			BaseFontSize:  1.0,
			HeadingWeight: "normal",
			LineHeight:    1.6,
		},
		Colors: DefaultColors(),
	}
	EnsureSections(&c)
	return c
}

// DefaultSection returns the factory override for id. Unknown ids get the
// generic defaults with no icon.
func DefaultSection(id string) Section {
	info, _ := Lookup(id)
	return Section{
		Enabled:         true,
		BackgroundColor: "#f8f9fa",
		Icon:            info.Icon,
		TitleColor:      "#2c3e50",
		Layout:          "grid",
		Animation:       "fadeIn",
		BorderRadius:    "12px",
		Padding:         "30px",
		Shadow:          "0 5px 15px rgba(0,0,0,0.08)",
	}
}

// EnsureSections adds a default entry for every catalog section missing
// from c. Existing entries are left alone.
func EnsureSections(c *Customization) {
	if c == nil {
		return
	}
	if c.Sections == nil {
		c.Sections = make(map[string]Section, len(catalog))
	}
	for _, info := range catalog {
		if _, ok := c.Sections[info.ID]; !ok {
			c.Sections[info.ID] = DefaultSection(info.ID)
		}
	}
}

// FillDefaults replaces every zero group of c with the factory group and
// adds the missing sections. Groups the caller set are kept as given.
func FillDefaults(c *Customization) {
	if c == nil {
		return
	}
	def := Default()
	if c.CoverPage == (CoverPage{}) {
		c.CoverPage = def.CoverPage
	}
	if c.HeaderBackground == (HeaderBackground{}) {
		c.HeaderBackground = def.HeaderBackground
	}
	if c.Global == (Global{}) {
		c.Global = def.Global
	}
	if c.Typography == (Typography{}) {
		c.Typography = def.Typography
	}
	if c.Colors == (Colors{}) {
		c.Colors = def.Colors
	}
	EnsureSections(c)
}

// Clone deep copies c.
func (c Customization) Clone() Customization {
	out, ok := deepcopy.Copy(c).(Customization)
	if !ok {
		return Default()
	}
	if out.Sections == nil {
		out.Sections = map[string]Section{}
	}
	return out
}

// Section returns the override for id, or its default when missing.
func (c Customization) Section(id string) Section {
	if s, ok := c.Sections[id]; ok {
		return s
	}
	return DefaultSection(id)
}

// SectionEnabled reports whether id should be rendered.
func (c Customization) SectionEnabled(id string) bool {
	return c.Section(id).Enabled
}

// BorderRadius derives the global corner radius from the border style.
func (c Customization) BorderRadius() string {
	switch c.Global.BorderStyle {
	case "sharp":
		return "0px"
	case "soft":
		return "6px"
	default:
		return "12px"
	}
}

// AnimationDuration derives the transition duration from the animation
// level.
func (c Customization) AnimationDuration() string {
	switch c.Global.AnimationLevel {
	case "none":
		return "0s"
	case "minimal":
		return "0.1s"
	case "reduced":
		return "0.2s"
	default:
		return "0.3s"
	}
}

// Validate reports enum fields holding values outside their allowed set.
func (c Customization) Validate() error {
	checks := []struct {
		field, value string
		allowed      []string
	}{
		{"coverPage.logoPosition", c.CoverPage.LogoPosition, []string{"center", "top", "bottom"}},
		{"coverPage.titleStyle", c.CoverPage.TitleStyle, []string{"gradient", "solid", "outlined"}},
		{"headerBackground.type", c.HeaderBackground.Type, []string{"gradient", "image", "solid"}},
		{"global.borderStyle", c.Global.BorderStyle, []string{"rounded", "sharp", "soft"}},
		{"global.animationLevel", c.Global.AnimationLevel, []string{"full", "reduced", "minimal", "none"}},
	}
	var errs []error
	for _, check := range checks {
		if !contains(check.allowed, check.value) {
			errs = append(errs, fmt.Errorf("%w: %s %q", ErrInvalid, check.field, check.value))
		}
	}
	return errors.Join(errs...)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
