package templates

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-brandmanual/pkg/storage"
)

func ids(list []Template) []string {
	out := make([]string, len(list))
	for i, t := range list {
		out[i] = t.ID
	}
	return out
}

func TestDefaultRegistryCatalog(t *testing.T) {
	r := Default()
	want := []string{"classic", "constitution", "modern", "minimalist", "luxury"}
	if diff := cmp.Diff(want, ids(r.List())); diff != "" {
		t.Fatalf("catalog mismatch (-want +got):\n%s", diff)
	}
	for _, tpl := range r.List() {
		if tpl.Name == "" || tpl.Description == "" || tpl.AspectRatio == "" {
			t.Fatalf("template %q missing display metadata", tpl.ID)
		}
	}
}

func TestRegistryRejectsDuplicatesAndBlankIDs(t *testing.T) {
	r := Default()
	if err := r.Register(Classic()); err == nil {
		t.Fatalf("expected duplicate error")
	}
	if err := r.Register(Template{Name: "x"}); err == nil {
		t.Fatalf("expected id required error")
	}
	custom := New("resort", "Resort", "Praia", "16:9", "traditional", Palette{Primary: "#006994"})
	if err := r.Register(custom); err != nil {
		t.Fatalf("register custom: %v", err)
	}
	got, err := r.Get("resort")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Palette.Secondary != "#3498db" {
		t.Fatalf("expected palette fallback, got %+v", got.Palette)
	}
	if _, err := r.Get("missing"); !errors.Is(err, ErrUnknownTemplate) {
		t.Fatalf("expected ErrUnknownTemplate, got %v", err)
	}
}

func TestStyleFor(t *testing.T) {
	style := Classic().StyleFor(Palette{Primary: "#112233"})
	if style.HeaderBackground != "linear-gradient(135deg, #112233, #3498db)" {
		t.Fatalf("unexpected header background %q", style.HeaderBackground)
	}
	if style.BodyClass != "template-classic" {
		t.Fatalf("unexpected body class %q", style.BodyClass)
	}
	if !strings.Contains(style.Stylesheet, ".template-classic") || !strings.Contains(style.Stylesheet, ".template-container") {
		t.Fatalf("stylesheet missing base or template rules")
	}

	r := Default()
	modernTpl, _ := r.Get("modern")
	if got := modernTpl.StyleFor(Palette{}).HeaderBackground; got != "linear-gradient(45deg, #667eea, #764ba2)" {
		t.Fatalf("modern should use its own palette and angle, got %q", got)
	}
	minimal, _ := r.Get("minimalist")
	if got := minimal.StyleFor(Palette{}).HeaderBackground; got != "#1a1a1a" {
		t.Fatalf("minimalist header should be solid, got %q", got)
	}
}

func TestSelectionDefaultsAndPersists(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	sel := NewSelection(Default(), kv)

	if got := sel.Selected(ctx).ID; got != DefaultID {
		t.Fatalf("expected default selection, got %q", got)
	}

	tpl, err := sel.Select(ctx, "luxury")
	if err != nil || tpl.ID != "luxury" {
		t.Fatalf("select luxury: %v %q", err, tpl.ID)
	}
	if stored, _ := kv.Get(ctx, StorageKey); stored != "luxury" {
		t.Fatalf("selection not persisted, got %q", stored)
	}

	reopened := NewSelection(nil, kv)
	if got := reopened.Selected(ctx).ID; got != "luxury" {
		t.Fatalf("selection lost across instances, got %q", got)
	}
}

func TestSelectUnknownFallsBackToClassic(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	sel := NewSelection(Default(), kv)
	if _, err := sel.Select(ctx, "modern"); err != nil {
		t.Fatalf("select: %v", err)
	}

	tpl, err := sel.Select(ctx, "baroque")
	if !errors.Is(err, ErrUnknownTemplate) {
		t.Fatalf("expected ErrUnknownTemplate, got %v", err)
	}
	if tpl.ID != DefaultID || sel.Selected(ctx).ID != DefaultID {
		t.Fatalf("expected fallback to classic, got %q / %q", tpl.ID, sel.Selected(ctx).ID)
	}
}

func TestSelectedIgnoresStaleStoredID(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory(map[string]string{StorageKey: "retired"})
	if got := NewSelection(Default(), kv).Selected(ctx).ID; got != DefaultID {
		t.Fatalf("expected default for stale id, got %q", got)
	}
}

func TestCheckCompatibility(t *testing.T) {
	r := Default()
	cases := []struct {
		template string
		data     map[string]string
		warnings int
	}{
		{"classic", map[string]string{"hotelName": "Aurora"}, 0},
		{"classic", map[string]string{}, 1},
		{"minimalist", map[string]string{}, 0},
		{"constitution", map[string]string{"hotelName": "Aurora"}, 1},
		{"luxury", map[string]string{}, 2},
		{"luxury", map[string]string{"hotelName": "Aurora", "primaryColor": "#2C3E50"}, 1},
		{"luxury", map[string]string{"hotelName": "Aurora", "primaryColor": "#112233"}, 0},
	}
	for _, tc := range cases {
		tpl, _ := r.Get(tc.template)
		got := CheckCompatibility(tpl, tc.data)
		if len(got.Warnings) != tc.warnings || got.Compatible != (tc.warnings == 0) {
			t.Fatalf("%s with %v: unexpected %+v", tc.template, tc.data, got)
		}
	}
}
