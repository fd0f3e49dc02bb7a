package templates

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownTemplate is returned for ids not present in a registry.
var ErrUnknownTemplate = errors.New("templates: unknown template")

// Registry stores templates by id and keeps registration order for listing.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]Template
	order     []string
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{templates: make(map[string]Template)}
}

// Default returns a registry holding the stock templates.
func Default() *Registry {
	r := NewRegistry()
	for _, t := range Builtin() {
		r.MustRegister(t)
	}
	return r
}

// Register adds a template by id. Duplicate ids return an error.
func (r *Registry) Register(t Template) error {
	if t.ID == "" {
		return fmt.Errorf("templates: template id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("templates: template %q name is required", t.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.templates[t.ID]; exists {
		return fmt.Errorf("templates: template %q already registered", t.ID)
	}
	r.templates[t.ID] = t
	r.order = append(r.order, t.ID)
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(t Template) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

// Get retrieves a template by id.
func (r *Registry) Get(id string) (Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.templates[id]
	if !ok {
		return Template{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, id)
	}
	return t, nil
}

// List returns the templates in registration order.
func (r *Registry) List() []Template {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Template, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.templates[id])
	}
	return out
}

// Has reports whether a template is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.templates[id]
	return ok
}
