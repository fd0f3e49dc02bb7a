package assemble_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-brandmanual/pkg/assemble"
	"github.com/goliatone/go-brandmanual/pkg/customization"
	"github.com/goliatone/go-brandmanual/pkg/formdata"
	"github.com/goliatone/go-brandmanual/pkg/render/template/gotemplate"
	"github.com/goliatone/go-brandmanual/pkg/templates"
	"github.com/goliatone/go-brandmanual/pkg/testsupport"
)

const pngLogo = "data:image/png;base64,iVBORw0KGgo="

func newAssembler(t *testing.T, opts ...assemble.Option) *assemble.Assembler {
	t.Helper()
	opts = append([]assemble.Option{assemble.WithClock(testsupport.Clock())}, opts...)
	a, err := assemble.New(opts...)
	if err != nil {
		t.Fatalf("new assembler: %v", err)
	}
	return a
}

func mustAssemble(t *testing.T, a *assemble.Assembler, req assemble.Request) string {
	t.Helper()
	out, err := a.Assemble(context.Background(), req)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	return out
}

func block(t *testing.T, html, open, close string) string {
	t.Helper()
	start := strings.Index(html, open)
	if start < 0 {
		t.Fatalf("block %q not found", open)
	}
	end := strings.Index(html[start:], close)
	if end < 0 {
		t.Fatalf("block %q not closed", open)
	}
	return html[start : start+end+len(close)]
}

func TestAssemble_ScenarioA(t *testing.T) {
	a := newAssembler(t)
	html := mustAssemble(t, a, assemble.Request{
		Data:          testsupport.AuroraData(),
		Customization: customization.Default(),
		Template:      templates.Classic(),
		Mode:          assemble.ModePreview,
	})

	header := block(t, html, `<header class="template-header"`, "</header>")
	if got := strings.Count(header, "Hotel Aurora"); got != 1 {
		t.Fatalf("header mentions hotel %d times:\n%s", got, header)
	}
	if !strings.Contains(header, "linear-gradient(135deg, #112233, #3498db)") {
		t.Fatalf("header style does not use the form colour:\n%s", header)
	}

	cover := block(t, html, `<div class="cover-page"`, "</div>")
	if got := strings.Count(cover, "Hotel Aurora"); got != 1 {
		t.Fatalf("cover mentions hotel %d times:\n%s", got, cover)
	}
	if !strings.Contains(html, "Delight guests") {
		t.Fatalf("mission missing from document")
	}
	if !strings.Contains(html, "[Visão a ser definida]") {
		t.Fatalf("vision placeholder missing")
	}
	if !strings.HasPrefix(html, "<!DOCTYPE html>") {
		t.Fatalf("document does not start with a doctype")
	}
}

func TestAssemble_ScenarioB(t *testing.T) {
	a := newAssembler(t)
	c := customization.Default()
	if err := c.ToggleSection("contatos", false); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	html := mustAssemble(t, a, assemble.Request{
		Data:          testsupport.FullData(),
		Customization: c,
		Template:      templates.Classic(),
		Mode:          assemble.ModeExportHTML,
	})
	if strings.Contains(html, "Contatos") {
		t.Fatalf("disabled contacts heading rendered")
	}
	if strings.Contains(html, `id="contatos"`) {
		t.Fatalf("disabled contacts section rendered")
	}
	if !strings.Contains(html, `id="redes-sociais"`) {
		t.Fatalf("enabled sections must still render")
	}
}

func TestAssemble_SectionGating(t *testing.T) {
	a := newAssembler(t)
	data := testsupport.FullData()
	data[formdata.LogoKey] = pngLogo

	for _, info := range customization.Catalog() {
		c := customization.Default()
		if err := c.ToggleSection(info.ID, false); err != nil {
			t.Fatalf("toggle %s: %v", info.ID, err)
		}
		html := mustAssemble(t, a, assemble.Request{Data: data, Customization: c, Mode: assemble.ModeExportHTML})

		for _, other := range customization.Catalog() {
			present := strings.Contains(html, `id="`+other.ID+`"`)
			if other.ID == info.ID && present {
				t.Fatalf("section %s rendered while disabled", other.ID)
			}
			if other.ID != info.ID && !present {
				t.Fatalf("section %s missing while %s disabled", other.ID, info.ID)
			}
		}
	}
}

func TestAssemble_SectionOrder(t *testing.T) {
	a := newAssembler(t)
	data := testsupport.FullData()
	data[formdata.LogoKey] = pngLogo
	html := mustAssemble(t, a, assemble.Request{Data: data, Mode: assemble.ModeExportHTML})

	last := -1
	for _, id := range customization.SectionIDs() {
		idx := strings.Index(html, `id="`+id+`"`)
		if idx < 0 {
			t.Fatalf("section %s missing", id)
		}
		if idx < last {
			t.Fatalf("section %s out of order", id)
		}
		last = idx
	}
}

func TestAssemble_LogoSectionNeedsLogo(t *testing.T) {
	a := newAssembler(t)
	html := mustAssemble(t, a, assemble.Request{Data: testsupport.AuroraData(), Mode: assemble.ModeExportHTML})
	if strings.Contains(html, `id="logotipo"`) {
		t.Fatalf("logo section rendered without a logo")
	}

	data := testsupport.AuroraData()
	data[formdata.LogoKey] = "javascript:alert(1)"
	html = mustAssemble(t, a, assemble.Request{Data: data, Mode: assemble.ModeExportHTML})
	if strings.Contains(html, "javascript:") {
		t.Fatalf("unsafe logo url leaked")
	}
}

func TestAssemble_Escaping(t *testing.T) {
	a := newAssembler(t)
	hostile := `<script>alert("x")</script> & 'q'`
	data := formdata.Data{
		"hotelName":    hostile,
		"mission":      hostile,
		"instagram":    `"><img src=x onerror=alert(1)>`,
		"primaryColor": `red;"><script>`,
	}
	c := customization.Default()
	if err := c.SetSectionTitle("cores", "<b>Cores</b>"); err != nil {
		t.Fatalf("title: %v", err)
	}
	if err := c.SetSectionCSS("info-basicas", `color: red; } body { display:none`); err != nil {
		t.Fatalf("css: %v", err)
	}

	for _, mode := range assemble.Modes() {
		html := mustAssemble(t, a, assemble.Request{Data: data, Customization: c, Mode: mode})
		for _, raw := range []string{"<script>", "<img src=x", "<b>Cores</b>", "} body {"} {
			if strings.Contains(html, raw) {
				t.Fatalf("%s: raw %q leaked", mode, raw)
			}
		}
		if !strings.Contains(html, "&lt;script&gt;alert(&quot;x&quot;)&lt;/script&gt; &amp; &#39;q&#39;") {
			t.Fatalf("%s: escaped hotel name missing", mode)
		}
		if !strings.Contains(html, "color: red;") {
			t.Fatalf("%s: safe custom declaration dropped", mode)
		}
	}
}

func TestAssemble_Deterministic(t *testing.T) {
	req := assemble.Request{
		Data:          testsupport.FullData(),
		Customization: customization.Default(),
		Template:      templates.Classic(),
		Mode:          assemble.ModeExportPDF,
	}
	first := mustAssemble(t, newAssembler(t), req)
	second := mustAssemble(t, newAssembler(t), req)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("same inputs differ (-first +second):\n%s", diff)
	}

	later := mustAssemble(t, newAssembler(t, assemble.WithClock(func() time.Time {
		return testsupport.FixedNow.AddDate(2, 1, 3)
	})), req)
	if later == first {
		t.Fatalf("expected timestamps to change with the clock")
	}
	if diff := cmp.Diff(testsupport.MaskDates(first), testsupport.MaskDates(later)); diff != "" {
		t.Fatalf("documents differ beyond dates (-first +later):\n%s", diff)
	}
}

func TestAssemble_GoTemplateRendererMatchesBuiltIn(t *testing.T) {
	files, err := assemble.Templates()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	engine, err := gotemplate.NewGoTemplate(gotemplate.WithFS(files))
	if err != nil {
		t.Fatalf("go-template engine: %v", err)
	}

	data := testsupport.FullData()
	data[formdata.LogoKey] = pngLogo
	req := assemble.Request{
		Data:          data,
		Customization: customization.Default(),
		Template:      templates.Classic(),
		Mode:          assemble.ModeExportHTML,
	}
	want := mustAssemble(t, newAssembler(t), req)
	got := mustAssemble(t, newAssembler(t, assemble.WithRenderer(engine)), req)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("engines disagree (-built-in +go-template):\n%s", diff)
	}
}

func TestAssemble_Footer(t *testing.T) {
	a := newAssembler(t)
	html := mustAssemble(t, a, assemble.Request{Data: testsupport.AuroraData(), Mode: assemble.ModeExportHTML})
	footer := block(t, html, `<footer class="template-footer">`, "</footer>")
	for _, want := range []string{"Versão:</strong> 1.0", "14/03/2025", "Clássico", "14/03/2026"} {
		if !strings.Contains(footer, want) {
			t.Fatalf("footer missing %q:\n%s", want, footer)
		}
	}
}

func TestAssemble_Modes(t *testing.T) {
	a := newAssembler(t)
	base := assemble.Request{Data: testsupport.AuroraData()}

	cases := []struct {
		mode    assemble.Mode
		compact bool
		want    []string
		reject  []string
	}{
		{assemble.ModePreview, false, []string{`class="preview-banner"`, "mode-preview"}, []string{"@page", "max-width: 375px"}},
		{assemble.ModePreview, true, []string{"max-width: 375px", " compact"}, nil},
		{assemble.ModeExportHTML, false, []string{"@media print"}, []string{`class="preview-banner"`, "@page"}},
		{assemble.ModeExportPDF, true, []string{"@page { size: A4", "print-color-adjust: exact"}, []string{`class="preview-banner"`, "max-width: 375px"}},
	}
	for _, tc := range cases {
		req := base
		req.Mode = tc.mode
		req.Compact = tc.compact
		html := mustAssemble(t, a, req)
		for _, w := range tc.want {
			if !strings.Contains(html, w) {
				t.Fatalf("%s compact=%v: missing %q", tc.mode, tc.compact, w)
			}
		}
		for _, r := range tc.reject {
			if strings.Contains(html, r) {
				t.Fatalf("%s compact=%v: unexpected %q", tc.mode, tc.compact, r)
			}
		}
		if strings.Contains(html, "http://") || strings.Contains(html, "https://") {
			t.Fatalf("%s: document references an external resource", tc.mode)
		}
	}
}

func TestAssemble_UnknownMode(t *testing.T) {
	a := newAssembler(t)
	if _, err := a.Assemble(context.Background(), assemble.Request{Mode: "slides"}); !errors.Is(err, assemble.ErrUnknownMode) {
		t.Fatalf("expected ErrUnknownMode, got %v", err)
	}
	if _, err := assemble.ParseMode(" Export-PDF "); err != nil {
		t.Fatalf("parse mode: %v", err)
	}
}

func TestAssemble_CoverAndHeaderOptions(t *testing.T) {
	a := newAssembler(t)
	data := testsupport.AuroraData()
	data[formdata.LogoKey] = pngLogo

	c := customization.Default()
	c.CoverPage.Enabled = false
	c.HeaderBackground.Type = "solid"
	html := mustAssemble(t, a, assemble.Request{Data: data, Customization: c, Mode: assemble.ModeExportHTML})
	if strings.Contains(html, `<div class="cover-page"`) {
		t.Fatalf("cover rendered while disabled")
	}
	header := block(t, html, `<header class="template-header"`, "</header>")
	if !strings.Contains(header, "background: #112233;") {
		t.Fatalf("solid header should use primary:\n%s", header)
	}
	if !strings.Contains(header, pngLogo) {
		t.Fatalf("header should carry the logo when the cover is off")
	}

	c = customization.Default()
	c.CoverPage.LogoPosition = "bottom"
	c.CoverPage.TitleStyle = "outlined"
	html = mustAssemble(t, a, assemble.Request{Data: data, Customization: c, Mode: assemble.ModeExportHTML})
	cover := block(t, html, `<div class="cover-page"`, "</div>")
	for _, want := range []string{"justify-content: flex-end;", "-webkit-text-stroke: 2px #ffffff;", pngLogo} {
		if !strings.Contains(cover, want) {
			t.Fatalf("cover missing %q:\n%s", want, cover)
		}
	}
	header = block(t, html, `<header class="template-header"`, "</header>")
	if strings.Contains(header, pngLogo) {
		t.Fatalf("header must not repeat the logo when the cover is on")
	}
}

func TestAssemble_SectionOverrides(t *testing.T) {
	a := newAssembler(t)
	c := customization.Default()
	if err := c.SetSectionTitle("tom-voz", "Nossa Voz"); err != nil {
		t.Fatalf("title: %v", err)
	}
	if err := c.SetSectionColor("tom-voz", "#fefefe", "#aa0000"); err != nil {
		t.Fatalf("color: %v", err)
	}
	c.Global.BorderStyle = "sharp"

	html := mustAssemble(t, a, assemble.Request{Data: testsupport.AuroraData(), Customization: c, Mode: assemble.ModeExportHTML})
	section := block(t, html, `<section class="section section-tom-voz`, "</section>")
	for _, want := range []string{"Nossa Voz", "background: #fefefe;", "color: #aa0000;", "border-radius: 0px;"} {
		if !strings.Contains(section, want) {
			t.Fatalf("section missing %q:\n%s", want, section)
		}
	}
	if strings.Contains(section, "Tom de Voz") {
		t.Fatalf("custom title should replace the default")
	}
	other := block(t, html, `<section class="section section-identidade`, "</section>")
	if !strings.Contains(other, "color: #112233;") {
		t.Fatalf("default title colour should follow the primary colour:\n%s", other)
	}
}

func TestAssemble_ZeroRequestUsesDefaults(t *testing.T) {
	a := newAssembler(t)
	html := mustAssemble(t, a, assemble.Request{Mode: assemble.ModePreview})
	if !strings.Contains(html, "[NOME DO HOTEL]") {
		t.Fatalf("hotel placeholder missing")
	}
	if !strings.Contains(html, "template-classic") {
		t.Fatalf("zero template should fall back to classic")
	}
	if got := strings.Count(html, `<section class="section`); got != 8 {
		t.Fatalf("expected 8 sections without a logo, got %d", got)
	}
}

func TestAssemble_PartialCustomizationKeepsSetGroups(t *testing.T) {
	a := newAssembler(t)
	c := customization.Customization{
		Colors: customization.Colors{Primary: "#ff0000"},
	}
	html := mustAssemble(t, a, assemble.Request{Data: testsupport.AuroraData(), Customization: c, Mode: assemble.ModeExportHTML})

	if !strings.Contains(html, "--primary-color: #ff0000;") {
		t.Fatalf("customized primary colour did not reach the document")
	}
	if !strings.Contains(html, `<div class="cover-page"`) {
		t.Fatalf("unset cover group should fall back to the factory cover")
	}
	if got := strings.Count(html, `<section class="section`); got != 8 {
		t.Fatalf("unset sections should all be enabled, got %d", got)
	}
}

type recordingObserver struct {
	calls []string
}

func (r *recordingObserver) ObserveAssemble(mode assemble.Mode, templateID string, _ time.Duration, err error) {
	r.calls = append(r.calls, string(mode)+"/"+templateID)
}

func TestAssemble_Observer(t *testing.T) {
	obs := &recordingObserver{}
	a := newAssembler(t, assemble.WithObserver(obs))
	mustAssemble(t, a, assemble.Request{Mode: assemble.ModeExportPDF, Template: mustTemplate(t, "luxury")})
	if diff := cmp.Diff([]string{"export-pdf/luxury"}, obs.calls); diff != "" {
		t.Fatalf("observer calls mismatch (-want +got):\n%s", diff)
	}
}

func mustTemplate(t *testing.T, id string) templates.Template {
	t.Helper()
	tpl, err := templates.Default().Get(id)
	if err != nil {
		t.Fatalf("template %s: %v", id, err)
	}
	return tpl
}
