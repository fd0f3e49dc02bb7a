package sink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goliatone/go-brandmanual/internal/logger"
)

const (
	previewFile = "preview.html"
	printHTML   = "print.html"
	printPDF    = "print.pdf"
)

// Opener hands a file to whatever the host uses to display it.
type Opener interface {
	Open(ctx context.Context, path string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, path string) error

func (f OpenerFunc) Open(ctx context.Context, path string) error { return f(ctx, path) }

// SystemOpener launches the platform file opener: xdg-open, open or
// rundll32.
type SystemOpener struct{}

func (SystemOpener) Open(ctx context.Context, path string) error {
	name, args := openCommand(path)
	bin, err := exec.LookPath(name)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrOpenerUnavailable, name)
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("sink: start %s: %w", name, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func openCommand(path string) (string, []string) {
	switch runtime.GOOS {
	case "darwin":
		return "open", []string{path}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}
	default:
		return "xdg-open", []string{path}
	}
}

// DirOption configures a Dir sink.
type DirOption func(*Dir)

// WithOpener sets the opener used for previews and print jobs. A nil
// opener disables opening.
func WithOpener(o Opener) DirOption {
	return func(d *Dir) { d.opener = o }
}

// WithPrinter makes Print produce a PDF.
func WithPrinter(p Printer) DirOption {
	return func(d *Dir) { d.printer = p }
}

// WithDirLogger sets the logger.
func WithDirLogger(l logger.Logger) DirOption {
	return func(d *Dir) {
		if l != nil {
			d.logger = l
		}
	}
}

// Dir writes documents into a directory and opens previews with the host
// opener.
type Dir struct {
	root    string
	opener  Opener
	printer Printer
	logger  logger.Logger
}

var _ Sink = (*Dir)(nil)

// NewDir returns a sink rooted at root, creating it when needed.
func NewDir(root string, opts ...DirOption) (*Dir, error) {
	if strings.TrimSpace(root) == "" {
		root = "."
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("sink: create output dir: %w", err)
	}
	d := &Dir{
		root:   root,
		opener: SystemOpener{},
		logger: logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d, nil
}

// Root returns the output directory.
func (d *Dir) Root() string { return d.root }

// OpenPreview writes the document to preview.html and opens it.
func (d *Dir) OpenPreview(ctx context.Context, html string) error {
	path, err := d.Write(ctx, previewFile, []byte(html))
	if err != nil {
		return err
	}
	return d.open(ctx, path)
}

// Download writes html under filename and returns the written path.
func (d *Dir) Download(ctx context.Context, html, filename string) (string, error) {
	return d.Write(ctx, filename, []byte(html))
}

// Print renders a PDF when a printer is configured, otherwise it opens the
// document for the host's print dialog.
func (d *Dir) Print(ctx context.Context, html string) error {
	if d.printer == nil {
		path, err := d.Write(ctx, printHTML, []byte(html))
		if err != nil {
			return err
		}
		return d.open(ctx, path)
	}
	pdf, err := d.printer.PrintPDF(ctx, html)
	if err != nil {
		return fmt.Errorf("sink: print: %w", err)
	}
	path, err := d.Write(ctx, printPDF, pdf)
	if err != nil {
		return err
	}
	if d.opener == nil {
		d.logger.Info("pdf written", map[string]any{"path": path})
		return nil
	}
	return d.open(ctx, path)
}

// Write stores data under name inside the root via a temp file and rename.
func (d *Dir) Write(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := validName(name); err != nil {
		return "", err
	}
	path := filepath.Join(d.root, name)
	tmp, err := os.CreateTemp(d.root, ".brandmanual-*")
	if err != nil {
		return "", fmt.Errorf("sink: create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("sink: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("sink: close %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("sink: chmod %s: %w", name, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("sink: rename %s: %w", name, err)
	}
	d.logger.Debug("file written", map[string]any{"path": path, "bytes": len(data)})
	return path, nil
}

func (d *Dir) open(ctx context.Context, path string) error {
	if d.opener == nil {
		return ErrOpenerUnavailable
	}
	if err := d.opener.Open(ctx, path); err != nil {
		if errors.Is(err, ErrOpenerUnavailable) {
			return err
		}
		d.logger.WithError(err).Warn("opener failed", map[string]any{"path": path})
		return fmt.Errorf("%w: %v", ErrPopupBlocked, err)
	}
	return nil
}

func validName(name string) error {
	if strings.TrimSpace(name) == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}
	return nil
}
