package gotemplate

import (
	"io"
	"os"

	"github.com/flosch/pongo2/v6"
	gotemplatepkg "github.com/goliatone/go-template"

	"github.com/goliatone/go-brandmanual/pkg/render/template"
)

// GoTemplate is a go-template engine held to the same rules as Engine:
// autoescape stays on and the CSS sanitiser filters are available.
type GoTemplate struct {
	*gotemplatepkg.Engine
}

var _ template.TemplateRenderer = (*GoTemplate)(nil)

// NewGoTemplate builds a go-template engine over the configured sources.
// Options given through WithGoTemplateOptions are applied last.
func NewGoTemplate(opts ...Option) (*GoTemplate, error) {
	o, err := resolve(opts)
	if err != nil {
		return nil, err
	}

	var goOpts []gotemplatepkg.Option
	if o.dir != "" {
		if err := rejectUnescaped(os.DirFS(o.dir)); err != nil {
			return nil, err
		}
		goOpts = append(goOpts, gotemplatepkg.WithBaseDir(o.dir))
	}
	if o.files != nil {
		if err := rejectUnescaped(o.files); err != nil {
			return nil, err
		}
		goOpts = append(goOpts, gotemplatepkg.WithFS(o.files))
	}
	if len(o.globals) > 0 {
		goOpts = append(goOpts, gotemplatepkg.WithGlobalData(o.globals))
	}
	goOpts = append(goOpts, gotemplatepkg.WithExtension(TemplateExt))
	goOpts = append(goOpts, o.goOpts...)

	pongo2.SetAutoescape(true)
	registerDefaultFilters()

	engine, err := gotemplatepkg.NewRenderer(goOpts...)
	if err != nil {
		return nil, err
	}
	return &GoTemplate{Engine: engine}, nil
}

// Render refuses inline source that turns autoescape off.
func (g *GoTemplate) Render(name string, data any, out ...io.Writer) (string, error) {
	if autoescapeOff.MatchString(name) {
		return "", ErrAutoescapeDisabled
	}
	return g.Engine.Render(name, data, out...)
}

// RenderString refuses source that turns autoescape off.
func (g *GoTemplate) RenderString(src string, data any, out ...io.Writer) (string, error) {
	if autoescapeOff.MatchString(src) {
		return "", ErrAutoescapeDisabled
	}
	return g.Engine.RenderString(src, data, out...)
}
