package formdata

import (
	"sort"
	"strings"
	"sync"
)

// Form is the editable surface the store snapshots from and writes back
// into. It stands in for the on-screen inputs: the CLI prompt flow, the HTTP
// API and tests all edit a Form.
type Form struct {
	mu     sync.RWMutex
	fields []Field
	index  map[string]int
	values map[string]string
	logo   string
}

// NewForm builds a form over fields, defaulting to DefaultFields. Values
// start at each field's Default.
func NewForm(fields ...Field) *Form {
	if len(fields) == 0 {
		fields = DefaultFields()
	}
	f := &Form{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
		values: make(map[string]string, len(fields)),
	}
	for _, field := range fields {
		id := strings.TrimSpace(field.ID)
		if id == "" || id == LogoKey || strings.HasPrefix(id, "_") {
			continue
		}
		if _, dup := f.index[id]; dup {
			continue
		}
		field.ID = id
		f.index[id] = len(f.fields)
		f.fields = append(f.fields, field)
		f.values[id] = field.Default
	}
	return f
}

// Fields returns the field definitions in form order.
func (f *Form) Fields() []Field {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Field, len(f.fields))
	copy(out, f.fields)
	return out
}

// Field looks up one definition.
func (f *Form) Field(id string) (Field, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	i, ok := f.index[id]
	if !ok {
		return Field{}, false
	}
	return f.fields[i], true
}

// Has reports whether the form declares id.
func (f *Form) Has(id string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.index[id]
	return ok
}

// Value returns the current value of id, empty when unknown.
func (f *Form) Value(id string) string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.values[id]
}

// SetValue writes id when the form declares it and reports whether it did.
func (f *Form) SetValue(id, value string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.index[id]; !ok {
		return false
	}
	f.values[id] = value
	return true
}

// Values copies every declared field's current value.
func (f *Form) Values() Data {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(Data, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// Logo returns the embedded logo data URL, if any.
func (f *Form) Logo() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.logo
}

// SetLogo replaces the logo data URL. Empty clears it.
func (f *Form) SetLogo(dataURL string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logo = dataURL
}

// Reset restores every field to its default and drops the logo.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, field := range f.fields {
		f.values[field.ID] = field.Default
	}
	f.logo = ""
}

// Sections lists the distinct section ids in form order.
func (f *Form) Sections() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []string
	seen := make(map[string]struct{})
	for _, field := range f.fields {
		if _, ok := seen[field.Section]; ok {
			continue
		}
		seen[field.Section] = struct{}{}
		out = append(out, field.Section)
	}
	return out
}

// OrderedKeys lists the keys of data following the order of fields, with
// keys outside the vocabulary appended alphabetically.
func OrderedKeys(data Data, fields []Field) []string {
	out := make([]string, 0, len(data))
	seen := make(map[string]struct{}, len(data))
	for _, field := range fields {
		if _, ok := data[field.ID]; ok {
			out = append(out, field.ID)
			seen[field.ID] = struct{}{}
		}
	}
	var rest []string
	for k := range data {
		if _, ok := seen[k]; !ok {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}
