package formdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-brandmanual/internal/logger"
	"github.com/goliatone/go-brandmanual/pkg/storage"
)

// StorageKey is where the latest snapshot is persisted.
const StorageKey = "hotelBrandManual"

var (
	// ErrInvalidData marks a populate payload that is not a mapping.
	ErrInvalidData = errors.New("formdata: invalid data")
	// ErrCorruptSnapshot marks a persisted snapshot that could not be decoded.
	// The key has already been cleared when this is returned.
	ErrCorruptSnapshot = errors.New("formdata: stored snapshot is corrupt")
)

// Option configures a Store.
type Option func(*Store)

// WithLogger routes store diagnostics to l.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the capture timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithDocumentID pins the snapshot document id instead of generating one.
func WithDocumentID(id string) Option {
	return func(s *Store) {
		if strings.TrimSpace(id) != "" {
			s.documentID = id
		}
	}
}

// WithStorageKey overrides StorageKey.
func WithStorageKey(key string) Option {
	return func(s *Store) {
		if strings.TrimSpace(key) != "" {
			s.key = key
		}
	}
}

// Store captures the form into snapshots and persists them.
type Store struct {
	mu         sync.Mutex
	kv         storage.Store
	form       *Form
	logger     logger.Logger
	now        func() time.Time
	key        string
	documentID string
	baseline   state
}

type state struct {
	fields Data
	logo   string
}

func (s state) equal(other state) bool {
	return s.logo == other.logo && maps.Equal(s.fields, other.fields)
}

// NewStore wires a form to a key-value store. The current form contents
// become the baseline for HasUnsavedChanges.
func NewStore(kv storage.Store, form *Form, opts ...Option) *Store {
	if form == nil {
		form = NewForm()
	}
	s := &Store{
		kv:     kv,
		form:   form,
		logger: logger.NewNoOpLogger(),
		now:    time.Now,
		key:    StorageKey,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.documentID == "" {
		s.documentID = uuid.NewString()
	}
	s.baseline = s.current()
	return s
}

// Form exposes the editable form.
func (s *Store) Form() *Form { return s.form }

// DocumentID identifies the manual across saves and exports.
func (s *Store) DocumentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.documentID
}

func (s *Store) current() state {
	return state{fields: s.form.Values(), logo: s.form.Logo()}
}

// Collect snapshots every declared field, the logo and a metadata block.
// The snapshot becomes the baseline for HasUnsavedChanges.
func (s *Store) Collect() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collectLocked()
}

func (s *Store) collectLocked() Snapshot {
	cur := s.current()
	s.baseline = cur
	return Snapshot{
		Fields: cur.fields.Clone(),
		Logo:   cur.logo,
		Metadata: Metadata{
			Version:    SnapshotVersion,
			LastSaved:  s.now().UTC(),
			DocumentID: s.documentID,
		},
	}
}

// Populate writes each known key of data into the form. Unknown keys and
// keys starting with "_" are ignored, "logoData" restores the logo. A nil
// mapping is rejected without touching the form.
func (s *Store) Populate(data map[string]any) error {
	if data == nil {
		s.logger.Warn("populate rejected", map[string]any{"reason": "nil mapping"})
		return fmt.Errorf("%w: expected a mapping", ErrInvalidData)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	applied := 0
	for key, raw := range data {
		if strings.HasPrefix(key, "_") {
			continue
		}
		if key == LogoKey {
			if logo, ok := raw.(string); ok {
				s.form.SetLogo(logo)
			}
			continue
		}
		value, ok := scalarString(raw)
		if !ok {
			s.logger.Debug("populate skipped non-scalar value", map[string]any{"field": key})
			continue
		}
		if s.form.SetValue(key, value) {
			applied++
		}
	}
	if md, ok := data[MetadataKey].(map[string]any); ok {
		if id, ok := md["documentId"].(string); ok && strings.TrimSpace(id) != "" {
			s.documentID = id
		}
	}
	s.baseline = s.current()
	s.logger.Debug("form populated", map[string]any{"fields": applied})
	return nil
}

// PopulateJSON decodes raw and populates from it. Malformed JSON and
// non-object documents fail with ErrInvalidData and leave the form as is.
func (s *Store) PopulateJSON(raw []byte) error {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	obj, ok := decoded.(map[string]any)
	if !ok || obj == nil {
		return fmt.Errorf("%w: expected a JSON object", ErrInvalidData)
	}
	return s.Populate(obj)
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	case int:
		return strconv.Itoa(t), true
	default:
		return "", false
	}
}

// HasUnsavedChanges compares the last collected or populated state with the
// form as it is now.
func (s *Store) HasUnsavedChanges() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.baseline.equal(s.current())
}

// Save collects and persists a snapshot under the storage key.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	snap := s.collectLocked()
	s.mu.Unlock()

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("formdata: encode snapshot: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, string(payload)); err != nil {
		return fmt.Errorf("formdata: save snapshot: %w", err)
	}
	s.logger.Debug("snapshot saved", map[string]any{"fields": len(snap.Fields)})
	return nil
}

// Load restores the persisted snapshot into the form. It reports false when
// nothing was stored. A corrupt snapshot is deleted and ErrCorruptSnapshot
// is returned so callers can show a non-fatal warning.
func (s *Store) Load(ctx context.Context) (bool, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("formdata: load snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		s.logger.WithError(err).Warn("clearing corrupt snapshot", map[string]any{"key": s.key})
		if delErr := s.kv.Delete(ctx, s.key); delErr != nil {
			return false, fmt.Errorf("formdata: clear corrupt snapshot: %w", delErr)
		}
		return false, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}

	if err := s.Populate(snap.Map()); err != nil {
		return false, err
	}
	return true, nil
}

// Clear resets the form and removes the persisted snapshot.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.form.Reset()
	s.baseline = s.current()
	s.mu.Unlock()

	if err := s.kv.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("formdata: clear: %w", err)
	}
	return nil
}

// Duplicate returns a snapshot of the form renamed as a copy, under a new
// document id. The form itself is not changed.
func (s *Store) Duplicate() Snapshot {
	snap := s.Collect()
	name := snap.Fields.Get("hotelName")
	if name == "" {
		name = "Hotel"
	}
	snap.Fields["hotelName"] = name + " - Cópia"
	snap.Metadata.DocumentID = uuid.NewString()
	return snap
}
