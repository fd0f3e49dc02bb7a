// Package assemble merges form data, a customization and a template into one
// self-contained HTML document. The assembler is pure: it performs no IO
// beyond reading its embedded templates, and identical inputs produce
// identical output apart from the date substrings taken from its clock.
package assemble

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-brandmanual/internal/logger"
	"github.com/goliatone/go-brandmanual/pkg/customization"
	"github.com/goliatone/go-brandmanual/pkg/formdata"
	"github.com/goliatone/go-brandmanual/pkg/render/template"
	"github.com/goliatone/go-brandmanual/pkg/render/template/gotemplate"
	"github.com/goliatone/go-brandmanual/pkg/templates"
)

//go:embed templates
var embeddedTemplates embed.FS

const (
	// DocumentVersion is printed on the cover and in the footer.
	DocumentVersion = "1.0"
	// ReviewInterval is the distance between creation and next review.
	ReviewInterval = 365 * 24 * time.Hour

	hotelPlaceholder = "[NOME DO HOTEL]"
)

var headingWeight = regexp.MustCompile(`^(normal|bold|lighter|bolder|[1-9]00)$`)

// Request bundles the inputs of one assembly.
type Request struct {
	Data          formdata.Data
	Customization customization.Customization
	Template      templates.Template
	Mode          Mode
	// Compact narrows a preview to a phone-sized column.
	Compact bool
}

// Observer receives one call per Assemble.
type Observer interface {
	ObserveAssemble(mode Mode, templateID string, elapsed time.Duration, err error)
}

// Option customises an Assembler.
type Option func(*Assembler)

// WithClock injects the time source used for footer and cover dates.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) {
		if now != nil {
			a.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Assembler) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithRenderer replaces the embedded template set. The renderer must expose
// the same template names and filters as the default one.
func WithRenderer(r template.TemplateRenderer) Option {
	return func(a *Assembler) {
		if r != nil {
			a.renderer = r
		}
	}
}

// WithObserver registers a metrics hook.
func WithObserver(o Observer) Option {
	return func(a *Assembler) {
		a.observer = o
	}
}

// Assembler renders brand-manual documents.
type Assembler struct {
	renderer template.TemplateRenderer
	now      func() time.Time
	logger   logger.Logger
	observer Observer
}

// New builds an Assembler backed by the embedded template set.
func New(opts ...Option) (*Assembler, error) {
	a := &Assembler{
		now:    time.Now,
		logger: logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	if a.renderer == nil {
		files, err := Templates()
		if err != nil {
			return nil, err
		}
		engine, err := gotemplate.New(gotemplate.WithFS(files))
		if err != nil {
			return nil, fmt.Errorf("assemble: build engine: %w", err)
		}
		a.renderer = engine
	}
	return a, nil
}

// Templates exposes the embedded document templates.
func Templates() (fs.FS, error) {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return nil, fmt.Errorf("assemble: templates fs: %w", err)
	}
	return sub, nil
}

// Assemble renders req into a complete HTML document.
func (a *Assembler) Assemble(ctx context.Context, req Request) (string, error) {
	if !req.Mode.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, req.Mode)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tpl := req.Template
	if tpl.IsZero() {
		tpl = templates.Classic()
	}

	start := time.Now()
	html, err := a.assemble(ctx, req, tpl)
	if a.observer != nil {
		a.observer.ObserveAssemble(req.Mode, tpl.ID, time.Since(start), err)
	}
	if err != nil {
		a.logger.WithError(err).Error("assemble failed", map[string]any{
			"mode":     string(req.Mode),
			"template": tpl.ID,
		})
		return "", err
	}
	a.logger.Debug("document assembled", map[string]any{
		"mode":     string(req.Mode),
		"template": tpl.ID,
		"bytes":    len(html),
	})
	return html, nil
}

func (a *Assembler) assemble(ctx context.Context, req Request, tpl templates.Template) (string, error) {
	c := normalizeCustomization(req.Customization)
	data := req.Data
	if data == nil {
		data = formdata.Data{}
	}

	palette := ResolvePalette(data, c, tpl)
	style := tpl.StyleFor(palette)
	logo := gotemplate.SanitizeImage(data.Get(formdata.LogoKey))
	now := a.now()

	hotel := strings.TrimSpace(data.Get("hotelName"))
	if hotel == "" {
		hotel = hotelPlaceholder
	}

	var cover string
	if c.CoverPage.Enabled {
		var err error
		cover, err = a.render("cover", coverView(c, palette, logo, hotel, now))
		if err != nil {
			return "", err
		}
	}

	header, err := a.render("header", headerView(c, style, palette, tpl, logo, hotel))
	if err != nil {
		return "", err
	}

	in := sectionInput{data: data, palette: palette, custom: c, logo: logo}
	var body strings.Builder
	for _, info := range customization.Catalog() {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		section := c.Section(info.ID)
		if !section.Enabled {
			continue
		}
		gen, ok := generators[info.ID]
		if !ok {
			continue
		}
		view, ok := gen(in)
		if !ok {
			continue
		}
		inner, err := a.render("sections/"+info.ID, view)
		if err != nil {
			return "", err
		}
		wrapped, err := a.render("section", wrapperView(info, section, c, palette, inner))
		if err != nil {
			return "", err
		}
		body.WriteString(wrapped)
	}

	footer, err := a.render("footer", map[string]any{
		"version":      DocumentVersion,
		"created":      formdata.FormatDate(now),
		"nextReview":   formdata.FormatDate(now.Add(ReviewInterval)),
		"templateName": tpl.Name,
	})
	if err != nil {
		return "", err
	}

	styles, err := a.render("styles", map[string]any{
		"rootVars":   rootVarsStyle(themeConfig(c, palette, style)),
		"stylesheet": style.Stylesheet,
		"mode":       string(req.Mode),
		"compact":    req.Compact && req.Mode == ModePreview,
	})
	if err != nil {
		return "", err
	}

	return a.render("document", map[string]any{
		"hotelName":    hotel,
		"templateName": tpl.Name,
		"bodyClass":    style.BodyClass,
		"mode":         string(req.Mode),
		"compact":      req.Compact && req.Mode == ModePreview,
		"styles":       styles,
		"cover":        cover,
		"header":       header,
		"sections":     body.String(),
		"footer":       footer,
	})
}

func (a *Assembler) render(name string, view map[string]any) (string, error) {
	out, err := a.renderer.RenderTemplate(name, view)
	if err != nil {
		return "", fmt.Errorf("assemble: render %s: %w", name, err)
	}
	return out, nil
}

// normalizeCustomization fills the groups and sections the caller left zero
// with factory values.
func normalizeCustomization(in customization.Customization) customization.Customization {
	c := in.Clone()
	customization.FillDefaults(&c)
	return c
}

func coverView(c customization.Customization, p templates.Palette, logo, hotel string, now time.Time) map[string]any {
	return map[string]any{
		"image":      gotemplate.SanitizeImage(c.CoverPage.BackgroundImage),
		"overlay":    orDefault(gotemplate.SanitizeColor(c.CoverPage.BackgroundOverlay), "rgba(0,0,0,0.4)"),
		"primary":    p.Primary,
		"secondary":  p.Secondary,
		"accent":     p.Accent,
		"justify":    justify(c.CoverPage.LogoPosition),
		"titleStyle": c.CoverPage.TitleStyle,
		"logo":       logo,
		"hotelName":  hotel,
		"version":    DocumentVersion,
		"year":       strconv.Itoa(now.Year()),
	}
}

func headerView(c customization.Customization, style templates.Style, p templates.Palette, tpl templates.Template, logo, hotel string) map[string]any {
	view := map[string]any{
		"hotelName":    hotel,
		"templateName": tpl.Name,
		"background":   style.HeaderBackground,
	}
	switch c.HeaderBackground.Type {
	case "solid":
		view["background"] = p.Primary
	case "image":
		if img := gotemplate.SanitizeImage(c.HeaderBackground.Image); img != "" {
			view["image"] = img
			view["overlay"] = orDefault(gotemplate.SanitizeColor(c.HeaderBackground.Overlay), "rgba(0,0,0,0.3)")
		}
	}
	if !c.CoverPage.Enabled {
		view["logo"] = logo
	}
	return view
}

func wrapperView(info customization.SectionInfo, s customization.Section, c customization.Customization, p templates.Palette, body string) map[string]any {
	def := customization.DefaultSection(info.ID)

	title := strings.TrimSpace(s.CustomTitle)
	if title == "" {
		title = info.Title
	}
	titleColor := p.Primary
	if customization.ValidColor(s.TitleColor) && !sameColor(s.TitleColor, def.TitleColor) {
		titleColor = s.TitleColor
	}
	radius := c.BorderRadius()
	if s.BorderRadius != def.BorderRadius {
		radius = orDefault(gotemplate.SanitizeLength(s.BorderRadius), radius)
	}
	spacing := c.Global.SectionSpacing
	if spacing < 0 {
		spacing = 0
	}
	animation := ""
	if c.Global.AnimationLevel != "none" {
		switch s.Animation {
		case "fadeIn", "slideUp":
			animation = s.Animation
		}
	}
	layout := "grid"
	switch s.Layout {
	case "list", "columns":
		layout = s.Layout
	}

	return map[string]any{
		"id":         info.ID,
		"title":      title,
		"icon":       customization.SanitizeIcon(s.Icon),
		"titleColor": titleColor,
		"secondary":  p.Secondary,
		"background": orDefault(gotemplate.SanitizeColor(s.BackgroundColor), "#ffffff"),
		"padding":    orDefault(gotemplate.SanitizeLength(s.Padding), "40px"),
		"spacing":    strconv.Itoa(spacing) + "px",
		"radius":     radius,
		"shadow":     gotemplate.SanitizeShadow(s.Shadow),
		"customCSS":  gotemplate.SanitizeDeclarations(s.CustomCSS),
		"layout":     layout,
		"animation":  animation,
		"body":       body,
	}
}

// themeConfig expresses the effective styling as the go-theme CSS variables
// the stylesheets read.
func themeConfig(c customization.Customization, p templates.Palette, style templates.Style) theme.RendererConfig {
	t := c.Typography
	font := orDefault(gotemplate.SanitizeFont(t.PrimaryFont), "Arial")
	size := t.BaseFontSize
	if size <= 0 {
		size = 1
	}
	lineHeight := t.LineHeight
	if lineHeight <= 0 {
		lineHeight = 1.6
	}
	weight := "normal"
	if headingWeight.MatchString(t.HeadingWeight) {
		weight = t.HeadingWeight
	}
	spacing := c.Global.SectionSpacing
	if spacing < 0 {
		spacing = 0
	}

	return theme.RendererConfig{
		CSSVars: map[string]string{
			"--primary-color":      p.Primary,
			"--secondary-color":    p.Secondary,
			"--accent-color":       p.Accent,
			"--text-color":         orDefault(gotemplate.SanitizeColor(style.TextColor), p.Primary),
			"--page-background":    orDefault(gotemplate.SanitizeColor(c.Global.BackgroundColor), "#f8f9fa"),
			"--font-family":        font + ", sans-serif",
			"--font-size-base":     strconv.FormatFloat(size, 'f', -1, 64) + "rem",
			"--line-height":        strconv.FormatFloat(lineHeight, 'f', -1, 64),
			"--heading-weight":     weight,
			"--max-width":          orDefault(gotemplate.SanitizeLength(c.Global.MaxWidth), "1200px"),
			"--section-spacing":    strconv.Itoa(spacing) + "px",
			"--border-radius":      c.BorderRadius(),
			"--animation-duration": c.AnimationDuration(),
		},
	}
}

// rootVarsStyle renders the CSS variables as a :root rule in key order.
// Values are sanitized before they are written.
func rootVarsStyle(cfg theme.RendererConfig) string {
	if len(cfg.CSSVars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(cfg.CSSVars))
	for key := range cfg.CSSVars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		value := gotemplate.SanitizeColor(cfg.CSSVars[key])
		if value == "" {
			continue
		}
		b.WriteString("  ")
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}

func justify(position string) string {
	switch position {
	case "top":
		return "flex-start"
	case "bottom":
		return "flex-end"
	default:
		return "center"
	}
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
