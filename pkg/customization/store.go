package customization

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-brandmanual/internal/logger"
	"github.com/goliatone/go-brandmanual/pkg/storage"
)

// Storage keys. Only StorageKey is written; the legacy keys are read once,
// migrated and then removed.
const (
	StorageKey        = "brandManual.customization"
	LegacyAdvancedKey = "brandManualAdvancedCustomizations"
	LegacyKey         = "brandManualCustomizations"
)

// envelope is the persisted shape under StorageKey.
type envelope struct {
	SchemaVersion int             `json:"schemaVersion"`
	Customization json.RawMessage `json:"customization"`
}

// Option configures a Store.
type Option func(*Store)

// WithLogger routes load warnings to l.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Store persists customizations under one versioned key.
type Store struct {
	kv     storage.Store
	logger logger.Logger
}

// NewStore wraps kv.
func NewStore(kv storage.Store, opts ...Option) *Store {
	s := &Store{kv: kv, logger: logger.NewNoOpLogger()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

type source struct {
	key    string
	legacy bool
}

var sources = []source{
	{key: StorageKey},
	{key: LegacyAdvancedKey, legacy: true},
	{key: LegacyKey, legacy: true},
}

// Load returns the stored customization deep-merged onto Default. The
// canonical key wins over the advanced legacy key, which wins over the plain
// legacy key. A legacy hit is rewritten under the canonical key and the
// legacy keys are deleted. Corrupt entries are deleted and skipped. Load
// never fails: any problem is logged and defaults are returned.
func (s *Store) Load(ctx context.Context) Customization {
	for _, src := range sources {
		raw, err := s.kv.Get(ctx, src.key)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			s.logger.WithError(err).Warn("customization read failed", map[string]any{"key": src.key})
			continue
		}

		var c Customization
		if src.legacy {
			c, err = Decode([]byte(raw))
		} else {
			c, err = decodeEnvelope([]byte(raw))
		}
		if err != nil {
			s.logger.WithError(err).Warn("clearing corrupt customization", map[string]any{"key": src.key})
			if delErr := s.kv.Delete(ctx, src.key); delErr != nil {
				s.logger.WithError(delErr).Warn("customization clear failed", map[string]any{"key": src.key})
			}
			continue
		}

		if src.legacy {
			s.migrate(ctx, c, src.key)
		}
		return c
	}
	return Default()
}

func (s *Store) migrate(ctx context.Context, c Customization, from string) {
	if err := s.Save(ctx, c); err != nil {
		s.logger.WithError(err).Warn("customization migration failed", map[string]any{"from": from})
		return
	}
	if err := s.kv.Delete(ctx, LegacyAdvancedKey, LegacyKey); err != nil {
		s.logger.WithError(err).Warn("legacy customization cleanup failed", nil)
		return
	}
	s.logger.Info("customization migrated", map[string]any{"from": from, "to": StorageKey})
}

// Save writes c under the canonical key.
func (s *Store) Save(ctx context.Context, c Customization) error {
	c = c.Clone()
	EnsureSections(&c)
	body, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("customization: encode: %w", err)
	}
	payload, err := json.Marshal(envelope{SchemaVersion: SchemaVersion, Customization: body})
	if err != nil {
		return fmt.Errorf("customization: encode envelope: %w", err)
	}
	if err := s.kv.Set(ctx, StorageKey, string(payload)); err != nil {
		return fmt.Errorf("customization: save: %w", err)
	}
	return nil
}

// Clear removes the canonical and legacy keys.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, StorageKey, LegacyAdvancedKey, LegacyKey); err != nil {
		return fmt.Errorf("customization: clear: %w", err)
	}
	return nil
}

func decodeEnvelope(raw []byte) (Customization, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Customization{}, err
	}
	if env.SchemaVersion > SchemaVersion {
		return Customization{}, fmt.Errorf("customization: schema version %d is newer than %d", env.SchemaVersion, SchemaVersion)
	}
	if len(env.Customization) == 0 || string(env.Customization) == "null" {
		return Default(), nil
	}
	return Decode(env.Customization)
}

// Decode merges a customization JSON object onto Default. Each stored
// section is merged onto that section's defaults, so older documents missing
// newer fields still come back fully populated.
func Decode(raw []byte) (Customization, error) {
	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, "{") {
		return Customization{}, errors.New("customization: expected a JSON object")
	}

	var groups struct {
		CoverPage        json.RawMessage            `json:"coverPage"`
		HeaderBackground json.RawMessage            `json:"headerBackground"`
		Global           json.RawMessage            `json:"global"`
		Typography       json.RawMessage            `json:"typography"`
		Colors           json.RawMessage            `json:"colors"`
		Sections         map[string]json.RawMessage `json:"sections"`
	}
	if err := json.Unmarshal(raw, &groups); err != nil {
		return Customization{}, err
	}

	c := Default()
	targets := []struct {
		name string
		raw  json.RawMessage
		dst  any
	}{
		{"coverPage", groups.CoverPage, &c.CoverPage},
		{"headerBackground", groups.HeaderBackground, &c.HeaderBackground},
		{"global", groups.Global, &c.Global},
		{"typography", groups.Typography, &c.Typography},
		{"colors", groups.Colors, &c.Colors},
	}
	for _, t := range targets {
		if len(t.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(t.raw, t.dst); err != nil {
			return Customization{}, fmt.Errorf("customization: decode %s: %w", t.name, err)
		}
	}
	for id, rawSection := range groups.Sections {
		section := DefaultSection(id)
		if err := json.Unmarshal(rawSection, &section); err != nil {
			return Customization{}, fmt.Errorf("customization: decode section %q: %w", id, err)
		}
		c.Sections[id] = section
	}
	EnsureSections(&c)
	return c, nil
}
