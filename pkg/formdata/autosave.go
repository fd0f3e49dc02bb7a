package formdata

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-brandmanual/internal/logger"
)

// DefaultAutoSaveDelay coalesces bursts of edits into one write.
const DefaultAutoSaveDelay = time.Second

// Saver is what the autosaver flushes.
type Saver interface {
	Save(ctx context.Context) error
}

// AutoSaver debounces saves: each Touch restarts the delay, and only the
// last Touch in a burst produces a write.
type AutoSaver struct {
	mu      sync.Mutex
	saver   Saver
	delay   time.Duration
	logger  logger.Logger
	timer   *time.Timer
	gen     uint64
	stopped bool
	onError func(error)
}

// AutoSaveOption configures an AutoSaver.
type AutoSaveOption func(*AutoSaver)

// WithDelay overrides DefaultAutoSaveDelay. Non-positive values are ignored.
func WithDelay(d time.Duration) AutoSaveOption {
	return func(a *AutoSaver) {
		if d > 0 {
			a.delay = d
		}
	}
}

// WithAutoSaveLogger routes save failures to l.
func WithAutoSaveLogger(l logger.Logger) AutoSaveOption {
	return func(a *AutoSaver) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithErrorHandler receives background save failures.
func WithErrorHandler(fn func(error)) AutoSaveOption {
	return func(a *AutoSaver) { a.onError = fn }
}

// NewAutoSaver debounces saver.
func NewAutoSaver(saver Saver, opts ...AutoSaveOption) *AutoSaver {
	a := &AutoSaver{
		saver:  saver,
		delay:  DefaultAutoSaveDelay,
		logger: logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Touch records an edit and restarts the delay.
func (a *AutoSaver) Touch() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.gen++
	gen := a.gen
	a.timer = time.AfterFunc(a.delay, func() { a.fire(gen) })
}

// Pending reports whether a save is scheduled.
func (a *AutoSaver) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.timer != nil
}

func (a *AutoSaver) fire(gen uint64) {
	a.mu.Lock()
	if a.stopped || gen != a.gen || a.timer == nil {
		a.mu.Unlock()
		return
	}
	a.timer = nil
	a.mu.Unlock()

	if err := a.saver.Save(context.Background()); err != nil {
		a.logger.WithError(err).Warn("autosave failed", nil)
		if a.onError != nil {
			a.onError(err)
		}
	}
}

// Flush cancels the pending timer and saves immediately if one was pending.
func (a *AutoSaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	pending := a.timer != nil
	if pending {
		a.timer.Stop()
		a.timer = nil
		a.gen++
	}
	a.mu.Unlock()

	if !pending {
		return nil
	}
	return a.saver.Save(ctx)
}

// Stop cancels any pending save. Further Touch calls are ignored.
func (a *AutoSaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}
