package templates

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-brandmanual/internal/logger"
	"github.com/goliatone/go-brandmanual/pkg/storage"
)

// StorageKey persists the selected template id.
const StorageKey = "brandManual_selectedTemplate"

// Selection tracks the chosen template and persists the choice.
type Selection struct {
	mu       sync.Mutex
	registry *Registry
	kv       storage.Store
	logger   logger.Logger
}

// SelectionOption configures a Selection.
type SelectionOption func(*Selection)

// WithLogger routes selection warnings to l.
func WithLogger(l logger.Logger) SelectionOption {
	return func(s *Selection) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSelection binds a registry to a key-value store. A nil registry uses
// Default.
func NewSelection(registry *Registry, kv storage.Store, opts ...SelectionOption) *Selection {
	if registry == nil {
		registry = Default()
	}
	s := &Selection{registry: registry, kv: kv, logger: logger.NewNoOpLogger()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Registry exposes the catalog the selection draws from.
func (s *Selection) Registry() *Registry { return s.registry }

// Select stores id as the selection. An unknown id selects the default
// template instead and returns it together with ErrUnknownTemplate.
func (s *Selection) Select(ctx context.Context, id string) (Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id = strings.TrimSpace(id)
	t, lookupErr := s.registry.Get(id)
	if lookupErr != nil {
		t = s.fallback()
	}
	if err := s.kv.Set(ctx, StorageKey, t.ID); err != nil {
		return t, fmt.Errorf("templates: persist selection: %w", err)
	}
	if lookupErr != nil {
		s.logger.Warn("unknown template, using default", map[string]any{"requested": id, "selected": t.ID})
		return t, lookupErr
	}
	return t, nil
}

// Selected returns the persisted selection, or the default template when
// nothing valid is stored.
func (s *Selection) Selected(ctx context.Context) Template {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.WithError(err).Warn("template selection read failed", nil)
		}
		return s.fallback()
	}
	t, err := s.registry.Get(id)
	if err != nil {
		s.logger.Warn("stored template unknown, using default", map[string]any{"stored": id})
		return s.fallback()
	}
	return t
}

// Clear forgets the selection.
func (s *Selection) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("templates: clear selection: %w", err)
	}
	return nil
}

func (s *Selection) fallback() Template {
	if t, err := s.registry.Get(DefaultID); err == nil {
		return t
	}
	if list := s.registry.List(); len(list) > 0 {
		return list[0]
	}
	return classic
}
