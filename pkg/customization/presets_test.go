package customization

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestApplyPresetMergesPartially(t *testing.T) {
	c := Default()
	c.Colors.Success = "#00ff00"
	c.Typography.SecondaryFont = "Verdana"
	c.Global.MaxWidth = "900px"

	got, err := ApplyPreset(c, "modern")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	want := c.Clone()
	want.Colors.Primary = "#1a1a2e"
	want.Colors.Secondary = "#16213e"
	want.Colors.Accent = "#0f3460"
	want.Typography.PrimaryFont = "Roboto"
	want.Typography.BaseFontSize = 1.1
	want.Global.BorderStyle = "sharp"
	want.Global.AnimationLevel = "full"
	want.Global.Theme = "modern"

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("preset merge mismatch (-want +got):\n%s", diff)
	}
	if c.Colors.Primary != "#2c3e50" {
		t.Fatalf("input customization was mutated")
	}
}

func TestApplyUnknownPreset(t *testing.T) {
	c := Default()
	got, err := ApplyPreset(c, "vaporwave")
	if !errors.Is(err, ErrUnknownPreset) {
		t.Fatalf("expected ErrUnknownPreset, got %v", err)
	}
	if diff := cmp.Diff(c, got); diff != "" {
		t.Fatalf("input should come back unchanged (-want +got):\n%s", diff)
	}
}

func TestPresetsSelectVariant(t *testing.T) {
	manifests, err := ParsePresets([]byte(`
presets:
  - name: ocean
    tokens:
      colors.primary: "#003366"
      colors.accent: "#ff9900"
      global.borderStyle: soft
    variants:
      night:
        colors.primary: "#000033"
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	p := DefaultPresets()
	for _, m := range manifests {
		if err := p.Register(m); err != nil {
			t.Fatalf("register: %v", err)
		}
	}

	sel, err := p.Select("ocean", "night")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if sel.Theme != "ocean" || sel.Variant != "night" {
		t.Fatalf("unexpected selection %s/%s", sel.Theme, sel.Variant)
	}
	if sel.Manifest.Tokens[TokenPrimary] != "#000033" {
		t.Fatalf("variant token not applied: %v", sel.Manifest.Tokens)
	}

	got, err := p.ApplyVariant(Default(), "ocean", "night")
	if err != nil {
		t.Fatalf("apply variant: %v", err)
	}
	if got.Colors.Primary != "#000033" || got.Colors.Accent != "#ff9900" || got.Colors.Secondary != "#3498db" {
		t.Fatalf("unexpected colours %+v", got.Colors)
	}
	if got.Global.BorderStyle != "soft" || got.Global.AnimationLevel != "full" {
		t.Fatalf("unexpected global %+v", got.Global)
	}

	sel, err = p.Select("ocean", "missing")
	if err != nil || sel.Variant != "" || sel.Manifest.Tokens[TokenPrimary] != "#003366" {
		t.Fatalf("unknown variant should fall back to base, got %+v %v", sel, err)
	}
}

func TestRegisterRejectsBadTokens(t *testing.T) {
	manifests, err := ParsePresets([]byte(`
presets:
  - name: broken
    tokens:
      colors.primary: "red"
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := NewPresets().Register(manifests[0]); err == nil {
		t.Fatalf("expected invalid colour token to be rejected")
	}
}

func TestRegisterRejectsBadVariantTokens(t *testing.T) {
	manifests, err := ParsePresets([]byte(`
presets:
  - name: sunset
    tokens:
      colors.primary: "#112233"
    variants:
      dark:
        colors.accent: "javascript:alert(1)"
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	err = NewPresets().Register(manifests[0])
	if err == nil {
		t.Fatalf("expected invalid variant colour token to be rejected")
	}
	if !strings.Contains(err.Error(), "sunset/dark") {
		t.Fatalf("error should name the variant: %v", err)
	}
}

func TestLoadPresetsFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "presets.yaml")
	doc := "presets:\n  - name: sunset\n    tokens:\n      colors.primary: \"#ff5e62\"\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	p, err := LoadPresets(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []string{"creative", "elegant", "minimalist", "modern", "professional", "sunset"}
	if diff := cmp.Diff(want, p.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	if _, err := LoadPresets(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
