package sink

import (
	"context"
	"sync"
)

// File is one recorded download.
type File struct {
	Name    string
	Content string
}

// Memory records everything it receives. Setting Blocked makes previews and
// print jobs fail with ErrPopupBlocked.
type Memory struct {
	mu sync.Mutex

	Blocked bool

	previews  []string
	downloads []File
	prints    []string
}

var _ Sink = (*Memory)(nil)

// NewMemory returns an empty recording sink.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) OpenPreview(ctx context.Context, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Blocked {
		return ErrPopupBlocked
	}
	m.previews = append(m.previews, html)
	return nil
}

func (m *Memory) Download(ctx context.Context, html, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := validName(filename); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloads = append(m.downloads, File{Name: filename, Content: html})
	return filename, nil
}

func (m *Memory) Print(ctx context.Context, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Blocked {
		return ErrPopupBlocked
	}
	m.prints = append(m.prints, html)
	return nil
}

// Previews returns the recorded previews in order.
func (m *Memory) Previews() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.previews...)
}

// Downloads returns the recorded downloads in order.
func (m *Memory) Downloads() []File {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]File(nil), m.downloads...)
}

// Prints returns the recorded print jobs in order.
func (m *Memory) Prints() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prints...)
}
