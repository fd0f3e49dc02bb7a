package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File persists all keys as one JSON object on disk. Writes go to a temp
// file in the same directory and are renamed into place.
type File struct {
	mu     sync.RWMutex
	path   string
	values map[string]string
}

var _ Store = (*File)(nil)

// OpenFile loads path if it exists. A missing file starts empty.
func OpenFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("storage: file path is required")
	}
	f := &File{path: path, values: make(map[string]string)}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return f, nil
	case err != nil:
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	if len(data) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(data, &f.values); err != nil {
		return nil, fmt.Errorf("storage: decode %s: %w", path, err)
	}
	return f, nil
}

func (f *File) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (f *File) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, had := f.values[key]
	f.values[key] = value
	if err := f.flushLocked(); err != nil {
		if had {
			f.values[key] = prev
		} else {
			delete(f.values, key)
		}
		return err
	}
	return nil
}

func (f *File) Delete(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	changed := false
	for _, k := range keys {
		if _, ok := f.values[k]; ok {
			delete(f.values, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return f.flushLocked()
}

func (f *File) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return sortedKeys(f.values), nil
}

func (f *File) Close() error { return nil }

// Path returns the backing file.
func (f *File) Path() string { return f.path }

func (f *File) flushLocked() error {
	payload, err := json.MarshalIndent(f.values, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode: %w", err)
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".brandmanual-*.json")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("storage: rename: %w", err)
	}
	return nil
}
