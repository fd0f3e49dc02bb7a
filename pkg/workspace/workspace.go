// Package workspace is the application state of one brand manual: the
// form, its customization, the selected template and the stores behind
// them. Every surface (CLI, HTTP service, tests) works through a Workspace
// instead of package-level state.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-brandmanual/internal/logger"
	"github.com/goliatone/go-brandmanual/pkg/assemble"
	"github.com/goliatone/go-brandmanual/pkg/customization"
	"github.com/goliatone/go-brandmanual/pkg/formdata"
	"github.com/goliatone/go-brandmanual/pkg/sink"
	"github.com/goliatone/go-brandmanual/pkg/storage"
	"github.com/goliatone/go-brandmanual/pkg/templates"
)

// Flag keys persisted as "true"/"false".
const (
	HasVisitedKey   = "brandManual_hasVisited"
	PanelVisibleKey = "brandManual_customizationPanelVisible"
)

// ExportRecorder is told about every completed export.
type ExportRecorder interface {
	RecordExport(format string)
}

// Option customises a Workspace.
type Option func(*Workspace)

// WithLogger sets the logger shared by every store.
func WithLogger(l logger.Logger) Option {
	return func(w *Workspace) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(w *Workspace) {
		if now != nil {
			w.now = now
		}
	}
}

// WithSink sets where previews, downloads and print jobs go.
func WithSink(s sink.Sink) Option {
	return func(w *Workspace) {
		if s != nil {
			w.sink = s
		}
	}
}

// WithPrinter enables PDF rendering for ExportPDF.
func WithPrinter(p sink.Printer) Option {
	return func(w *Workspace) { w.printer = p }
}

// WithPresets replaces the preset registry.
func WithPresets(p *customization.Presets) Option {
	return func(w *Workspace) {
		if p != nil {
			w.presets = p
		}
	}
}

// WithRegistry replaces the template registry.
func WithRegistry(r *templates.Registry) Option {
	return func(w *Workspace) {
		if r != nil {
			w.registry = r
		}
	}
}

// WithAssembler replaces the document assembler.
func WithAssembler(a *assemble.Assembler) Option {
	return func(w *Workspace) {
		if a != nil {
			w.assembler = a
		}
	}
}

// WithFields replaces the form vocabulary.
func WithFields(fields []formdata.Field) Option {
	return func(w *Workspace) {
		if len(fields) > 0 {
			w.fields = fields
		}
	}
}

// WithAutoSaveDelay sets the debounce delay. Zero disables autosave.
func WithAutoSaveDelay(d time.Duration) Option {
	return func(w *Workspace) { w.autoSaveDelay = d }
}

// WithExportRecorder registers a metrics hook for exports.
func WithExportRecorder(r ExportRecorder) Option {
	return func(w *Workspace) { w.recorder = r }
}

// Workspace owns the state of one brand manual.
type Workspace struct {
	mu sync.RWMutex
	// writeMu serialises customization read-modify-write cycles.
	writeMu sync.Mutex

	kv        storage.Store
	form      *formdata.Form
	data      *formdata.Store
	custom    *customization.Store
	selection *templates.Selection
	registry  *templates.Registry
	presets   *customization.Presets
	assembler *assemble.Assembler
	sink      sink.Sink
	printer   sink.Printer
	autosave  *formdata.AutoSaver
	recorder  ExportRecorder

	fields        []formdata.Field
	autoSaveDelay time.Duration
	now           func() time.Time
	logger        logger.Logger

	current customization.Customization
}

// New builds a workspace over kv. Call Open to load persisted state.
func New(kv storage.Store, opts ...Option) (*Workspace, error) {
	if kv == nil {
		return nil, errors.New("workspace: storage is required")
	}
	w := &Workspace{
		kv:            kv,
		registry:      templates.Default(),
		presets:       customization.DefaultPresets(),
		sink:          sink.NewMemory(),
		fields:        formdata.DefaultFields(),
		autoSaveDelay: formdata.DefaultAutoSaveDelay,
		now:           time.Now,
		logger:        logger.NewNoOpLogger(),
		current:       customization.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}

	if w.assembler == nil {
		a, err := assemble.New(assemble.WithClock(w.now), assemble.WithLogger(w.logger))
		if err != nil {
			return nil, fmt.Errorf("workspace: %w", err)
		}
		w.assembler = a
	}

	w.form = formdata.NewForm(w.fields...)
	w.data = formdata.NewStore(kv, w.form, formdata.WithLogger(w.logger), formdata.WithClock(w.now))
	w.custom = customization.NewStore(kv, customization.WithLogger(w.logger))
	w.selection = templates.NewSelection(w.registry, kv, templates.WithLogger(w.logger))
	if w.autoSaveDelay > 0 {
		w.autosave = w.newAutoSaver()
	}
	return w, nil
}

// Open loads the persisted form and customization. A corrupt form snapshot
// is cleared and reported through the logger only.
func (w *Workspace) Open(ctx context.Context) error {
	if _, err := w.data.Load(ctx); err != nil {
		if !errors.Is(err, formdata.ErrCorruptSnapshot) {
			return err
		}
		w.logger.WithError(err).Warn("stored form data was corrupt and has been cleared", nil)
	}
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	c := w.custom.Load(ctx)
	w.mu.Lock()
	w.current = c
	w.mu.Unlock()
	return nil
}

// Close flushes a pending autosave and stops the timer.
func (w *Workspace) Close(ctx context.Context) error {
	saver := w.saver()
	if saver == nil {
		return nil
	}
	err := saver.Flush(ctx)
	saver.Stop()
	return err
}

func (w *Workspace) saver() *formdata.AutoSaver {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.autosave
}

func (w *Workspace) newAutoSaver() *formdata.AutoSaver {
	return formdata.NewAutoSaver(w.data,
		formdata.WithDelay(w.autoSaveDelay),
		formdata.WithAutoSaveLogger(w.logger),
	)
}

// Form is the editable form.
func (w *Workspace) Form() *formdata.Form { return w.form }

// Fields returns the form vocabulary.
func (w *Workspace) Fields() []formdata.Field { return w.form.Fields() }

// Registry returns the template registry.
func (w *Workspace) Registry() *templates.Registry { return w.registry }

// Presets returns the preset registry.
func (w *Workspace) Presets() *customization.Presets { return w.presets }

// Sink returns the output sink.
func (w *Workspace) Sink() sink.Sink { return w.sink }

// Snapshot collects the current form.
func (w *Workspace) Snapshot() formdata.Snapshot { return w.data.Collect() }

// Data returns the current form values plus the logo.
func (w *Workspace) Data() formdata.Data { return w.data.Collect().Data() }

// SetField writes one form value and schedules an autosave. It reports
// whether the form declares id.
func (w *Workspace) SetField(id, value string) bool {
	ok := w.form.SetValue(id, value)
	if ok {
		w.Touch()
	}
	return ok
}

// SetLogo replaces the logo and schedules an autosave.
func (w *Workspace) SetLogo(dataURL string) {
	w.form.SetLogo(dataURL)
	w.Touch()
}

// Populate writes a mapping into the form and saves it.
func (w *Workspace) Populate(ctx context.Context, data map[string]any) error {
	if err := w.data.Populate(data); err != nil {
		return err
	}
	return w.data.Save(ctx)
}

// Touch schedules a debounced save of the form.
func (w *Workspace) Touch() {
	if saver := w.saver(); saver != nil {
		saver.Touch()
	}
}

// Save persists the form now.
func (w *Workspace) Save(ctx context.Context) error {
	return w.data.Save(ctx)
}

// HasUnsavedChanges reports edits since the last save or load.
func (w *Workspace) HasUnsavedChanges() bool { return w.data.HasUnsavedChanges() }

// Customization returns a copy of the current customization.
func (w *Workspace) Customization() customization.Customization {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current.Clone()
}

// SetCustomization validates, stores and persists c.
func (w *Workspace) SetCustomization(ctx context.Context, c customization.Customization) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	return w.setCustomization(ctx, c)
}

// setCustomization requires writeMu.
func (w *Workspace) setCustomization(ctx context.Context, c customization.Customization) error {
	c = c.Clone()
	customization.EnsureSections(&c)
	if err := c.Validate(); err != nil {
		return err
	}
	if err := w.custom.Save(ctx, c); err != nil {
		return err
	}
	w.mu.Lock()
	w.current = c
	w.mu.Unlock()
	return nil
}

// UpdateCustomization applies fn to a copy of the current customization and
// persists the result when fn succeeds. Concurrent updates are applied one
// after another, each starting from the previous result.
func (w *Workspace) UpdateCustomization(ctx context.Context, fn func(*customization.Customization) error) (customization.Customization, error) {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	c := w.Customization()
	if err := fn(&c); err != nil {
		return w.Customization(), err
	}
	if err := w.setCustomization(ctx, c); err != nil {
		return w.Customization(), err
	}
	return w.Customization(), nil
}

// ApplyPreset merges a named preset into the customization.
func (w *Workspace) ApplyPreset(ctx context.Context, name string) (customization.Customization, error) {
	return w.UpdateCustomization(ctx, func(c *customization.Customization) error {
		next, err := w.presets.Apply(*c, name)
		if err != nil {
			return err
		}
		*c = next
		return nil
	})
}

// ResetCustomization restores and persists the factory customization.
func (w *Workspace) ResetCustomization(ctx context.Context) error {
	return w.SetCustomization(ctx, customization.Default())
}

// Template returns the selected template.
func (w *Workspace) Template(ctx context.Context) templates.Template {
	return w.selection.Selected(ctx)
}

// SelectTemplate persists a template choice. Unknown ids select classic
// and return templates.ErrUnknownTemplate.
func (w *Workspace) SelectTemplate(ctx context.Context, id string) (templates.Template, error) {
	return w.selection.Select(ctx, id)
}

// Templates lists the registered templates.
func (w *Workspace) Templates() []templates.Template { return w.registry.List() }

// Compatibility checks the selected template against the current form.
func (w *Workspace) Compatibility(ctx context.Context) templates.Compatibility {
	return templates.CheckCompatibility(w.Template(ctx), w.Data())
}

// HasVisited reports whether the visited flag is set.
func (w *Workspace) HasVisited(ctx context.Context) bool {
	return w.flag(ctx, HasVisitedKey)
}

// MarkVisited sets the visited flag.
func (w *Workspace) MarkVisited(ctx context.Context) error {
	return w.setFlag(ctx, HasVisitedKey, true)
}

// PanelVisible reports whether the customization panel should be shown.
func (w *Workspace) PanelVisible(ctx context.Context) bool {
	return w.flag(ctx, PanelVisibleKey)
}

// SetPanelVisible persists the customization panel visibility.
func (w *Workspace) SetPanelVisible(ctx context.Context, visible bool) error {
	return w.setFlag(ctx, PanelVisibleKey, visible)
}

func (w *Workspace) flag(ctx context.Context, key string) bool {
	v, err := w.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			w.logger.WithError(err).Warn("flag read failed", map[string]any{"key": key})
		}
		return false
	}
	return v == "true"
}

func (w *Workspace) setFlag(ctx context.Context, key string, on bool) error {
	v := "false"
	if on {
		v = "true"
	}
	if err := w.kv.Set(ctx, key, v); err != nil {
		return fmt.Errorf("workspace: set %s: %w", key, err)
	}
	return nil
}

// ClearAll erases the form, the customization, the template choice and the
// flags, in storage and in memory.
func (w *Workspace) ClearAll(ctx context.Context) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	if saver := w.saver(); saver != nil {
		saver.Stop()
	}
	var errs []error
	errs = append(errs, w.data.Clear(ctx))
	errs = append(errs, w.custom.Clear(ctx))
	errs = append(errs, w.selection.Clear(ctx))
	errs = append(errs, w.kv.Delete(ctx, HasVisitedKey, PanelVisibleKey))
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("workspace: clear: %w", err)
	}
	w.mu.Lock()
	w.current = customization.Default()
	if w.autosave != nil {
		w.autosave = w.newAutoSaver()
	}
	w.mu.Unlock()
	w.logger.Info("workspace cleared", nil)
	return nil
}
