// Package bootstrap turns a config into a ready workspace: storage driver,
// logger, metrics, sink and PDF printer.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-brandmanual/internal/config"
	"github.com/goliatone/go-brandmanual/internal/logger"
	"github.com/goliatone/go-brandmanual/internal/metrics"
	"github.com/goliatone/go-brandmanual/pkg/assemble"
	"github.com/goliatone/go-brandmanual/pkg/customization"
	"github.com/goliatone/go-brandmanual/pkg/render/template"
	"github.com/goliatone/go-brandmanual/pkg/render/template/gotemplate"
	"github.com/goliatone/go-brandmanual/pkg/sink"
	"github.com/goliatone/go-brandmanual/pkg/sink/chrome"
	"github.com/goliatone/go-brandmanual/pkg/storage"
	"github.com/goliatone/go-brandmanual/pkg/storage/redisstore"
	"github.com/goliatone/go-brandmanual/pkg/storage/sqlitestore"
	"github.com/goliatone/go-brandmanual/pkg/workspace"
)

// App bundles everything a command or the HTTP service needs.
type App struct {
	Config    *config.Config
	Logger    logger.Logger
	Metrics   *metrics.Metrics
	Storage   storage.Store
	Sink      *sink.Dir
	Workspace *workspace.Workspace
}

// Options tweak what New wires.
type Options struct {
	// Sink replaces the directory sink built from the output dir.
	Sink sink.Sink
	// Opener replaces the system opener of the directory sink.
	Opener sink.Opener
	// Logger replaces the logger built from the log settings.
	Logger logger.Logger
	// DisablePrinter skips Chrome even when one is configured.
	DisablePrinter bool
}

// OpenStorage opens the configured storage driver.
func OpenStorage(ctx context.Context, cfg config.Storage) (storage.Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case config.DriverMemory:
		return storage.NewMemory(), nil
	case config.DriverFile:
		return storage.OpenFile(cfg.Path)
	case config.DriverSQLite:
		return sqlitestore.Open(cfg.Path)
	case config.DriverRedis:
		store, err := redisstore.New(redisstore.Config{
			Address:  cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			return nil, err
		}
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown storage driver %q", cfg.Driver)
	}
}

// NewPrinter returns a Chrome printer when a browser is available, or nil.
func NewPrinter(cfg config.Chrome, log logger.Logger) sink.Printer {
	path := cfg.Path
	if path == "" {
		path = os.Getenv("BRANDMANUAL_CHROME")
	}
	if path == "" {
		path = chrome.Locate()
	}
	if path == "" {
		log.Debug("no chrome binary found, pdf export falls back to the print flow", nil)
		return nil
	}
	return chrome.New(chrome.WithExecPath(path), chrome.WithTimeout(cfg.Timeout), chrome.WithLogger(log))
}

// New wires an App from cfg and opens the workspace.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewStructured(cfg.Log.Level, cfg.Log.Format)
	}
	m := metrics.New()

	kv, err := OpenStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: open storage: %w", err)
	}

	presets := customization.DefaultPresets()
	if cfg.PresetsFile != "" {
		if err := presets.LoadFile(cfg.PresetsFile); err != nil {
			_ = kv.Close()
			return nil, fmt.Errorf("bootstrap: %w", err)
		}
	}

	var printer sink.Printer
	if !opts.DisablePrinter {
		printer = NewPrinter(cfg.Chrome, log)
	}

	dirOpts := []sink.DirOption{sink.WithDirLogger(log)}
	if opts.Opener != nil {
		dirOpts = append(dirOpts, sink.WithOpener(opts.Opener))
	}
	if printer != nil {
		dirOpts = append(dirOpts, sink.WithPrinter(printer))
	}
	dir, err := sink.NewDir(cfg.OutputDir, dirOpts...)
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("bootstrap: output dir: %w", err)
	}
	var out sink.Sink = dir
	if opts.Sink != nil {
		out = opts.Sink
	}

	asmOpts := []assemble.Option{assemble.WithLogger(log), assemble.WithObserver(m)}
	renderer, err := NewRenderer(cfg.Renderer)
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	if renderer != nil {
		asmOpts = append(asmOpts, assemble.WithRenderer(renderer))
	}
	asm, err := assemble.New(asmOpts...)
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	ws, err := workspace.New(kv,
		workspace.WithLogger(log),
		workspace.WithAssembler(asm),
		workspace.WithPresets(presets),
		workspace.WithSink(out),
		workspace.WithPrinter(printer),
		workspace.WithAutoSaveDelay(cfg.AutoSaveDelay),
		workspace.WithExportRecorder(m),
	)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}
	if err := ws.Open(ctx); err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("bootstrap: open workspace: %w", err)
	}

	log.Debug("workspace ready", map[string]any{
		"storage": cfg.Storage.Driver,
		"output":  dir.Root(),
		"pdf":     printer != nil,
		"engine":  cfg.Renderer,
	})

	return &App{
		Config:    cfg,
		Logger:    log,
		Metrics:   m,
		Storage:   kv,
		Sink:      dir,
		Workspace: ws,
	}, nil
}

// Close flushes pending saves and releases storage.
func (a *App) Close(ctx context.Context) error {
	return errors.Join(a.Workspace.Close(ctx), a.Storage.Close())
}

// NewRenderer builds the document engine named by the renderer setting. It
// returns nil for pongo2, the assembler's built-in engine.
func NewRenderer(name string) (template.TemplateRenderer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", config.RendererPongo2:
		return nil, nil
	case config.RendererGoTemplate:
		files, err := assemble.Templates()
		if err != nil {
			return nil, err
		}
		engine, err := gotemplate.NewGoTemplate(gotemplate.WithFS(files))
		if err != nil {
			return nil, fmt.Errorf("go-template engine: %w", err)
		}
		return engine, nil
	default:
		return nil, fmt.Errorf("unknown renderer %q", name)
	}
}
