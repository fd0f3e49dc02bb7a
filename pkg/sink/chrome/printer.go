// Package chrome prints assembled documents to PDF with headless Chrome.
package chrome

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/goliatone/go-brandmanual/internal/logger"
	"github.com/goliatone/go-brandmanual/pkg/sink"
)

// binaries are tried in order by Locate.
var binaries = []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser"}

// Locate returns the path of the first Chrome or Chromium binary on PATH,
// or "" when none is installed.
func Locate() string {
	for _, name := range binaries {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

// Options controls page geometry and the browser process. Sizes are inches.
type Options struct {
	PaperWidth   float64
	PaperHeight  float64
	MarginTop    float64
	MarginBottom float64
	MarginLeft   float64
	MarginRight  float64

	PrintBackground bool
	Scale           float64

	// ExecPath overrides the Chrome binary. Empty uses chromedp's lookup.
	ExecPath string
	Timeout  time.Duration
}

// DefaultOptions returns A4 with 15mm margins.
func DefaultOptions() Options {
	return Options{
		PaperWidth:      8.27,
		PaperHeight:     11.69,
		MarginTop:       0.59,
		MarginBottom:    0.59,
		MarginLeft:      0.59,
		MarginRight:     0.59,
		PrintBackground: true,
		Scale:           1.0,
		Timeout:         60 * time.Second,
	}
}

// Option mutates Options.
type Option func(*Printer)

// WithOptions replaces the page and process options.
func WithOptions(o Options) Option {
	return func(p *Printer) { p.opts = o }
}

// WithExecPath sets the Chrome binary.
func WithExecPath(path string) Option {
	return func(p *Printer) { p.opts.ExecPath = path }
}

// WithTimeout bounds one print job.
func WithTimeout(d time.Duration) Option {
	return func(p *Printer) {
		if d > 0 {
			p.opts.Timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Printer) {
		if l != nil {
			p.logger = l
		}
	}
}

// Printer renders HTML through a fresh headless Chrome per job.
type Printer struct {
	opts   Options
	logger logger.Logger
}

var _ sink.Printer = (*Printer)(nil)

// New builds a Printer.
func New(opts ...Option) *Printer {
	p := &Printer{opts: DefaultOptions(), logger: logger.NewNoOpLogger()}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Options returns the effective options.
func (p *Printer) Options() Options { return p.opts }

// PrintPDF loads html from a temp file, waits for the body and prints it.
func (p *Printer) PrintPDF(ctx context.Context, html string) ([]byte, error) {
	start := time.Now()

	tmp, err := os.CreateTemp("", "brandmanual-print-*.html")
	if err != nil {
		return nil, fmt.Errorf("chrome: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(html); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("chrome: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("chrome: close temp file: %w", err)
	}

	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("headless", true),
	)
	if p.opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(p.opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...any) {
		p.logger.Debug(fmt.Sprintf("chromedp: "+format, args...), nil)
	}))
	defer browserCancel()

	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("file://"+tmpPath),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPaperWidth(p.opts.PaperWidth).
				WithPaperHeight(p.opts.PaperHeight).
				WithMarginTop(p.opts.MarginTop).
				WithMarginBottom(p.opts.MarginBottom).
				WithMarginLeft(p.opts.MarginLeft).
				WithMarginRight(p.opts.MarginRight).
				WithPrintBackground(p.opts.PrintBackground).
				WithScale(p.opts.Scale).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		p.logger.WithError(err).Error("print to pdf failed", map[string]any{
			"duration": time.Since(start).String(),
		})
		return nil, fmt.Errorf("chrome: print to pdf: %w", err)
	}

	p.logger.Info("pdf printed", map[string]any{
		"bytes":    len(pdf),
		"duration": time.Since(start).String(),
	})
	return pdf, nil
}
