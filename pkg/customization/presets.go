package customization

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"
)

// ErrUnknownPreset is returned when a preset name is not registered.
var ErrUnknownPreset = errors.New("customization: unknown preset")

// Token keys a preset manifest may define. Anything else is ignored when the
// preset is applied.
const (
	TokenPrimary        = "colors.primary"
	TokenSecondary      = "colors.secondary"
	TokenAccent         = "colors.accent"
	TokenPrimaryFont    = "typography.primaryFont"
	TokenBaseFontSize   = "typography.baseFontSize"
	TokenBorderStyle    = "global.borderStyle"
	TokenAnimationLevel = "global.animationLevel"
)

const presetVersion = "1.0.0"

func presetManifest(name, primary, secondary, accent, font, size, border, animation string) *theme.Manifest {
	return &theme.Manifest{
		Name:    name,
		Version: presetVersion,
		Tokens: map[string]string{
			TokenPrimary:        primary,
			TokenSecondary:      secondary,
			TokenAccent:         accent,
			TokenPrimaryFont:    font,
			TokenBaseFontSize:   size,
			TokenBorderStyle:    border,
			TokenAnimationLevel: animation,
		},
	}
}

func builtinPresets() []*theme.Manifest {
	return []*theme.Manifest{
		presetManifest("professional", "#2c3e50", "#3498db", "#e74c3c", "Arial", "1.0", "rounded", "reduced"),
		presetManifest("modern", "#1a1a2e", "#16213e", "#0f3460", "Roboto", "1.1", "sharp", "full"),
		presetManifest("elegant", "#2d3436", "#636e72", "#a29bfe", "Georgia", "1.0", "soft", "reduced"),
		presetManifest("creative", "#6c5ce7", "#fd79a8", "#fdcb6e", "Montserrat", "1.1", "rounded", "full"),
		presetManifest("minimalist", "#2d3436", "#636e72", "#b2bec3", "Helvetica", "0.95", "sharp", "minimal"),
	}
}

// Presets holds theme presets as go-theme manifests and selects them by
// name and optional variant.
type Presets struct {
	mu        sync.RWMutex
	manifests map[string]*theme.Manifest
}

var _ theme.ThemeSelector = (*Presets)(nil)

// NewPresets builds an empty preset set.
func NewPresets() *Presets {
	return &Presets{manifests: make(map[string]*theme.Manifest)}
}

// DefaultPresets returns the built-in presets.
func DefaultPresets() *Presets {
	p := NewPresets()
	for _, m := range builtinPresets() {
		if err := p.Register(m); err != nil {
			panic(err)
		}
	}
	return p
}

// Register adds or replaces a preset.
func (p *Presets) Register(m *theme.Manifest) error {
	if m == nil {
		return errors.New("customization: preset manifest is nil")
	}
	name := strings.TrimSpace(m.Name)
	if name == "" {
		return errors.New("customization: preset name is required")
	}
	if err := validateTokens(name, m.Tokens); err != nil {
		return err
	}
	for variant, v := range m.Variants {
		if err := validateTokens(name+"/"+variant, v.Tokens); err != nil {
			return err
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.manifests[name] = m
	return nil
}

// Names lists registered presets alphabetically.
func (p *Presets) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.manifests))
	for name := range p.manifests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is registered.
func (p *Presets) Has(name string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.manifests[name]
	return ok
}

// Select resolves a preset and variant. Variant tokens override the base
// tokens; an unknown variant falls back to the base manifest.
func (p *Presets) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	p.mu.RLock()
	m, ok := p.manifests[name]
	p.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}

	resolved := &theme.Manifest{
		Name:    m.Name,
		Version: m.Version,
		Tokens:  maps.Clone(m.Tokens),
	}
	selected := ""
	if v, ok := m.Variants[variant]; ok && variant != "" {
		selected = variant
		if resolved.Tokens == nil {
			resolved.Tokens = map[string]string{}
		}
		maps.Copy(resolved.Tokens, v.Tokens)
	}
	return &theme.Selection{Theme: m.Name, Variant: selected, Manifest: resolved}, nil
}

// Apply merges the preset's tokens into a copy of c and records the preset
// as the active theme. Fields the preset does not define keep their value.
// On error c is returned unchanged.
func (p *Presets) Apply(c Customization, name string) (Customization, error) {
	return p.ApplyVariant(c, name, "")
}

// ApplyVariant is Apply with a named manifest variant.
func (p *Presets) ApplyVariant(c Customization, name, variant string) (Customization, error) {
	sel, err := p.Select(name, variant)
	if err != nil {
		return c, err
	}
	out := c.Clone()
	tokens := sel.Manifest.Tokens
	setIf := func(dst *string, key string) {
		if v, ok := tokens[key]; ok && v != "" {
			*dst = v
		}
	}
	setIf(&out.Colors.Primary, TokenPrimary)
	setIf(&out.Colors.Secondary, TokenSecondary)
	setIf(&out.Colors.Accent, TokenAccent)
	setIf(&out.Typography.PrimaryFont, TokenPrimaryFont)
	setIf(&out.Global.BorderStyle, TokenBorderStyle)
	setIf(&out.Global.AnimationLevel, TokenAnimationLevel)
	if raw, ok := tokens[TokenBaseFontSize]; ok {
		if size, err := strconv.ParseFloat(raw, 64); err == nil && size > 0 {
			out.Typography.BaseFontSize = size
		}
	}
	out.Global.Theme = sel.Theme
	EnsureSections(&out)
	return out, nil
}

// ApplyPreset applies one of the built-in presets.
func ApplyPreset(c Customization, name string) (Customization, error) {
	return DefaultPresets().Apply(c, name)
}

func validateTokens(name string, tokens map[string]string) error {
	for _, key := range []string{TokenPrimary, TokenSecondary, TokenAccent} {
		if v, ok := tokens[key]; ok && !ValidColor(v) {
			return fmt.Errorf("customization: preset %q: %s is not a hex colour: %q", name, key, v)
		}
	}
	if v, ok := tokens[TokenBaseFontSize]; ok {
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return fmt.Errorf("customization: preset %q: %s: %w", name, TokenBaseFontSize, err)
		}
	}
	return nil
}

type presetFile struct {
	Presets []presetEntry `yaml:"presets"`
}

type presetEntry struct {
	Name     string                       `yaml:"name"`
	Version  string                       `yaml:"version"`
	Tokens   map[string]string            `yaml:"tokens"`
	Variants map[string]map[string]string `yaml:"variants"`
}

// ParsePresets decodes a YAML preset document.
func ParsePresets(raw []byte) ([]*theme.Manifest, error) {
	var doc presetFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("customization: parse presets: %w", err)
	}
	out := make([]*theme.Manifest, 0, len(doc.Presets))
	for _, entry := range doc.Presets {
		m := &theme.Manifest{
			Name:    entry.Name,
			Version: entry.Version,
			Tokens:  entry.Tokens,
		}
		if m.Version == "" {
			m.Version = presetVersion
		}
		if len(entry.Variants) > 0 {
			m.Variants = make(map[string]theme.Variant, len(entry.Variants))
			for variant, tokens := range entry.Variants {
				m.Variants[variant] = theme.Variant{Tokens: tokens}
			}
		}
		out = append(out, m)
	}
	return out, nil
}

// LoadFile registers every preset declared in a YAML file on top of p.
func (p *Presets) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("customization: read presets: %w", err)
	}
	manifests, err := ParsePresets(raw)
	if err != nil {
		return err
	}
	for _, m := range manifests {
		if err := p.Register(m); err != nil {
			return err
		}
	}
	return nil
}

// LoadPresets returns the built-in presets extended by path. An empty path
// returns just the built-ins.
func LoadPresets(path string) (*Presets, error) {
	p := DefaultPresets()
	if strings.TrimSpace(path) == "" {
		return p, nil
	}
	if err := p.LoadFile(path); err != nil {
		return nil, err
	}
	return p, nil
}
