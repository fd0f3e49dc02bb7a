package gotemplate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"regexp"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	gotemplatepkg "github.com/goliatone/go-template"

	"github.com/goliatone/go-brandmanual/pkg/render/template"
)

// TemplateExt is appended to template names that carry no extension.
const TemplateExt = ".tpl"

var (
	// ErrAutoescapeDisabled is returned for templates that try to switch
	// escaping off.
	ErrAutoescapeDisabled = errors.New("gotemplate: templates may not disable autoescape")
	// ErrNoSource is returned by New when neither a directory nor an fs.FS
	// was configured.
	ErrNoSource = errors.New("gotemplate: need to provide either base dir or fs.FS")

	errNilEngine = errors.New("gotemplate: engine is nil")
)

var autoescapeOff = regexp.MustCompile(`\{%-?\s*autoescape\s+off\s*-?%\}`)

// Option configures the engine before construction.
type Option func(*options)

type options struct {
	dir     string
	files   fs.FS
	globals map[string]any
	goOpts  []gotemplatepkg.Option
}

// WithBaseDir loads templates from a directory on disk.
func WithBaseDir(dir string) Option {
	return func(o *options) { o.dir = strings.TrimSpace(dir) }
}

// WithFS loads templates from files.
func WithFS(files fs.FS) Option {
	return func(o *options) { o.files = files }
}

// WithGlobalData seeds values every template can read.
func WithGlobalData(data map[string]any) Option {
	return func(o *options) {
		if o.globals == nil {
			o.globals = map[string]any{}
		}
		for k, v := range data {
			o.globals[k] = v
		}
	}
}

// WithGoTemplateOptions passes extra options to the go-template engine built
// by NewGoTemplate. New ignores them.
func WithGoTemplateOptions(opts ...gotemplatepkg.Option) Option {
	return func(o *options) { o.goOpts = append(o.goOpts, opts...) }
}

// Engine renders pongo2 templates with autoescape always on.
type Engine struct {
	mu    sync.RWMutex
	set   *pongo2.TemplateSet
	cache map[string]*pongo2.Template
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New builds an Engine. Every template reachable from the configured sources
// is scanned up front and rejected if it turns autoescape off.
func New(opts ...Option) (*Engine, error) {
	o, err := resolve(opts)
	if err != nil {
		return nil, err
	}

	var loaders []pongo2.TemplateLoader
	if o.dir != "" {
		if err := rejectUnescaped(os.DirFS(o.dir)); err != nil {
			return nil, err
		}
		loader, err := pongo2.NewLocalFileSystemLoader(o.dir)
		if err != nil {
			return nil, fmt.Errorf("gotemplate: local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	if o.files != nil {
		if err := rejectUnescaped(o.files); err != nil {
			return nil, err
		}
		loaders = append(loaders, pongo2.NewFSLoader(o.files))
	}

	pongo2.SetAutoescape(true)
	registerDefaultFilters()

	e := &Engine{
		set:   pongo2.NewSet("brandmanual", loaders...),
		cache: map[string]*pongo2.Template{},
	}
	if len(o.globals) > 0 {
		if err := e.GlobalContext(o.globals); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func resolve(opts []Option) (options, error) {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.dir == "" && o.files == nil {
		return o, ErrNoSource
	}
	return o, nil
}

func rejectUnescaped(files fs.FS) error {
	return fs.WalkDir(files, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != TemplateExt {
			return nil
		}
		raw, err := fs.ReadFile(files, p)
		if err != nil {
			return fmt.Errorf("gotemplate: read %q: %w", p, err)
		}
		if autoescapeOff.Match(raw) {
			return fmt.Errorf("%w: %s", ErrAutoescapeDisabled, p)
		}
		return nil
	})
}

// Render treats name as inline source when it contains template tags and as
// a template name otherwise.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if strings.Contains(name, "{{") || strings.Contains(name, "{%") {
		return e.RenderString(name, data, out...)
	}
	return e.RenderTemplate(name, data, out...)
}

// RenderTemplate renders a named template.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errNilEngine
	}
	if path.Ext(name) != TemplateExt {
		name += TemplateExt
	}
	tmpl, err := e.lookup(name)
	if err != nil {
		return "", err
	}
	return e.execute(tmpl, data, name, out)
}

// RenderString parses and renders inline source.
func (e *Engine) RenderString(src string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errNilEngine
	}
	if autoescapeOff.MatchString(src) {
		return "", ErrAutoescapeDisabled
	}
	tmpl, err := e.set.FromString(src)
	if err != nil {
		return "", fmt.Errorf("gotemplate: parse inline template: %w", err)
	}
	return e.execute(tmpl, data, "inline template", out)
}

func (e *Engine) execute(tmpl *pongo2.Template, data any, label string, out []io.Writer) (string, error) {
	ctx, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: convert data: %w", err)
	}

	var buf bytes.Buffer
	e.mu.RLock()
	err = tmpl.ExecuteWriter(ctx, &buf)
	e.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("gotemplate: execute %s: %w", label, err)
	}

	for _, w := range out {
		if _, err := w.Write(buf.Bytes()); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// RegisterFilter adds a filter to the global pongo2 registry. Names are
// process wide, so registering the same name twice fails.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	if strings.TrimSpace(name) == "" || fn == nil {
		return errors.New("gotemplate: filter name and function required")
	}
	if pongo2.FilterExists(name) {
		return fmt.Errorf("gotemplate: filter %q already exists", name)
	}
	return pongo2.RegisterFilter(name, func(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var p any
		if param != nil {
			p = param.Interface()
		}
		result, err := fn(in.Interface(), p)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	})
}

// GlobalContext merges data into the values every template can read.
func (e *Engine) GlobalContext(data any) error {
	if e == nil || e.set == nil {
		return errNilEngine
	}
	if data == nil {
		return nil
	}
	ctx, err := toContext(data)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.set.Globals == nil {
		e.set.Globals = pongo2.Context{}
	}
	e.set.Globals.Update(ctx)
	return nil
}

func (e *Engine) lookup(name string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.cache[name]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.cache[name]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load template %q: %w", name, err)
	}
	e.cache[name] = tmpl
	return tmpl, nil
}

// toContext turns view data into plain maps, slices and scalars so templates
// address struct fields by their json names.
func toContext(data any) (pongo2.Context, error) {
	var m map[string]any
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		m = map[string]any(v)
	case map[string]any:
		m = v
	default:
		plain, err := plainValue(v)
		if err != nil {
			return nil, err
		}
		var ok bool
		if m, ok = plain.(map[string]any); !ok {
			return nil, fmt.Errorf("gotemplate: view data must be an object, got %T", data)
		}
	}

	out := make(pongo2.Context, len(m))
	for k, v := range m {
		if k = strings.TrimSpace(k); k == "" {
			continue
		}
		plain, err := plainValue(v)
		if err != nil {
			return nil, fmt.Errorf("gotemplate: key %q: %w", k, err)
		}
		out[k] = plain
	}
	return out, nil
}

func plainValue(v any) (any, error) {
	switch x := v.(type) {
	case nil, string, bool, int, int64, float64:
		return x, nil
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			plain, err := plainValue(item)
			if err != nil {
				return nil, err
			}
			out[k] = plain
		}
		return out, nil
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			plain, err := plainValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = plain
		}
		return out, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
