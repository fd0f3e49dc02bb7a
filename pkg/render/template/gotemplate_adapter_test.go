package template_test

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	gotemplatepkg "github.com/goliatone/go-template"

	"github.com/goliatone/go-brandmanual/pkg/render/template/gotemplate"
	"github.com/goliatone/go-brandmanual/pkg/testsupport"
)

//go:embed testdata/templates/*.tpl
var embeddedTemplates embed.FS

func TestGoTemplateEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, w)
	})

	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "hello.golden"))
	if result != want {
		t.Fatalf("render template mismatch result\nwant: %q\n got: %q", want, result)
	}
	if written != want {
		t.Fatalf("render template mismatch writer\nwant: %q\n got: %q", want, written)
	}
}

func TestGoTemplateEngine_GlobalContext(t *testing.T) {
	engine := newEngine(t)
	if err := engine.GlobalContext(map[string]any{
		"settings": map[string]any{"env": "staging"},
	}); err != nil {
		t.Fatalf("global context: %v", err)
	}

	result, _ := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("use-global", nil, w)
	})

	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "use-global.golden"))
	if result != want {
		t.Fatalf("render template mismatch result\nwant: %q\n got: %q", want, result)
	}
}

func TestGoTemplateEngine_RegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("shout", func(input any, _ any) (any, error) {
		if input == nil {
			return "", nil
		}
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}

	result, _ := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("use-filter", map[string]any{"name": "Ada"}, w)
	})

	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "use-filter.golden"))
	if result != want {
		t.Fatalf("render template mismatch result\nwant: %q\n got: %q", want, result)
	}
	if err := engine.RegisterFilter("shout", func(any, any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate filter error")
	}
}

func TestGoTemplateEngine_EscapesInterpolation(t *testing.T) {
	engine := newEngine(t)

	got, err := engine.RenderTemplate("escape", map[string]any{
		"text":  `<script>alert("x")</script> & 'q'`,
		"color": `red;"><script>`,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(got, "<script>") {
		t.Fatalf("raw markup leaked: %s", got)
	}
	want := `<p style="color: ">&lt;script&gt;alert(&quot;x&quot;)&lt;/script&gt; &amp; &#39;q&#39;</p>` + "\n"
	if got != want {
		t.Fatalf("escape mismatch\nwant: %q\n got: %q", want, got)
	}
}

func TestGoTemplateEngine_RefusesAutoescapeOff(t *testing.T) {
	engine := newEngine(t)
	if _, err := engine.RenderString(`{% autoescape off %}{{ x }}{% endautoescape %}`, nil); !errors.Is(err, gotemplate.ErrAutoescapeDisabled) {
		t.Fatalf("expected ErrAutoescapeDisabled, got %v", err)
	}

	files := fstest.MapFS{
		"raw.tpl": &fstest.MapFile{Data: []byte(`{%- autoescape off -%}{{ x }}{% endautoescape %}`)},
	}
	if _, err := gotemplate.New(gotemplate.WithFS(files)); !errors.Is(err, gotemplate.ErrAutoescapeDisabled) {
		t.Fatalf("expected ErrAutoescapeDisabled for fs template, got %v", err)
	}
}

func TestGoTemplateEngine_RequiresSource(t *testing.T) {
	if _, err := gotemplate.New(); !errors.Is(err, gotemplate.ErrNoSource) {
		t.Fatalf("expected ErrNoSource, got %v", err)
	}
}

func TestGoTemplateEngine_WithGlobalData(t *testing.T) {
	templatesFS, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}
	engine, err := gotemplate.New(
		gotemplate.WithFS(templatesFS),
		gotemplate.WithGlobalData(map[string]any{"settings": map[string]any{"env": "staging"}}),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	got, err := engine.Render("use-global", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "use-global.golden"))
	if got != want {
		t.Fatalf("global data mismatch\nwant: %q\n got: %q", want, got)
	}
}

func TestGoTemplateEngine_RendersStructViews(t *testing.T) {
	engine := newEngine(t)
	type person struct {
		Name string `json:"name"`
	}

	got, err := engine.Render("{{ who.name }}", map[string]any{"who": person{Name: "Ada & Bob"}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Ada &amp; Bob" {
		t.Fatalf("struct view mismatch: %q", got)
	}
}

func TestSanitizers(t *testing.T) {
	cases := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"hex", gotemplate.SanitizeColor, "#112233", "#112233"},
		{"rgba", gotemplate.SanitizeColor, "rgba(0,0,0,0.4)", "rgba(0,0,0,0.4)"},
		{"color breakout", gotemplate.SanitizeColor, "red; background: url(x)", ""},
		{"font list", gotemplate.SanitizeFont, "Open Sans, Arial", "Open Sans, Arial"},
		{"font quote", gotemplate.SanitizeFont, "Arial'; }", ""},
		{"length", gotemplate.SanitizeLength, "12px", "12px"},
		{"length expr", gotemplate.SanitizeLength, "12px;color:red", ""},
		{"image", gotemplate.SanitizeImage, "data:image/png;base64,AAAA", "data:image/png;base64,AAAA"},
		{"image remote", gotemplate.SanitizeImage, "https://evil.example/x.png", ""},
		{"shadow", gotemplate.SanitizeShadow, "0 5px 15px rgba(0,0,0,0.08)", "0 5px 15px rgba(0,0,0,0.08)"},
		{"decls", gotemplate.SanitizeDeclarations, "color: red; background:url(x); font-weight:bold", "color: red; font-weight: bold;"},
		{"decls breakout", gotemplate.SanitizeDeclarations, "} body { display:none", ""},
	}
	for _, tc := range cases {
		if got := tc.fn(tc.in); got != tc.want {
			t.Fatalf("%s: want %q got %q", tc.name, tc.want, got)
		}
	}
}

func TestGoTemplateRenderer_Escapes(t *testing.T) {
	templatesFS, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}
	engine, err := gotemplate.NewGoTemplate(gotemplate.WithFS(templatesFS))
	if err != nil {
		t.Fatalf("new go-template engine: %v", err)
	}

	got, err := engine.RenderTemplate("escape", map[string]any{
		"text":  `<script>alert("x")</script> & 'q'`,
		"color": `red;"><script>`,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := `<p style="color: ">&lt;script&gt;alert(&quot;x&quot;)&lt;/script&gt; &amp; &#39;q&#39;</p>` + "\n"
	if got != want {
		t.Fatalf("escape mismatch\nwant: %q\n got: %q", want, got)
	}

	if _, err := engine.RenderString(`{% autoescape off %}{{ x }}{% endautoescape %}`, nil); !errors.Is(err, gotemplate.ErrAutoescapeDisabled) {
		t.Fatalf("expected ErrAutoescapeDisabled, got %v", err)
	}
	if _, err := engine.Render(`{% autoescape off %}{{ x }}{% endautoescape %}`, nil); !errors.Is(err, gotemplate.ErrAutoescapeDisabled) {
		t.Fatalf("expected ErrAutoescapeDisabled from Render, got %v", err)
	}
}

func TestGoTemplateRenderer_RejectsUnescapedFiles(t *testing.T) {
	files := fstest.MapFS{
		"raw.tpl": &fstest.MapFile{Data: []byte(`{% autoescape off %}{{ x }}{% endautoescape %}`)},
	}
	if _, err := gotemplate.NewGoTemplate(gotemplate.WithFS(files)); !errors.Is(err, gotemplate.ErrAutoescapeDisabled) {
		t.Fatalf("expected ErrAutoescapeDisabled, got %v", err)
	}
	if _, err := gotemplate.NewGoTemplate(); !errors.Is(err, gotemplate.ErrNoSource) {
		t.Fatalf("expected ErrNoSource, got %v", err)
	}
}

func TestGoTemplateRenderer_PassesOptions(t *testing.T) {
	templatesFS, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}
	engine, err := gotemplate.NewGoTemplate(
		gotemplate.WithFS(templatesFS),
		gotemplate.WithGoTemplateOptions(gotemplatepkg.WithGlobalData(map[string]any{
			"settings": map[string]any{"env": "staging"},
		})),
	)
	if err != nil {
		t.Fatalf("new go-template engine: %v", err)
	}

	got, err := engine.RenderTemplate("use-global", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "use-global.golden"))
	if got != want {
		t.Fatalf("go-template options not applied\nwant: %q\n got: %q", want, got)
	}
}

func newEngine(t *testing.T) *gotemplate.Engine {
	t.Helper()

	templatesFS, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}

	engine, err := gotemplate.New(gotemplate.WithFS(templatesFS))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}
