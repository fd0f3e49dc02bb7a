package assemble

import (
	"github.com/goliatone/go-brandmanual/pkg/customization"
	"github.com/goliatone/go-brandmanual/pkg/formdata"
	"github.com/goliatone/go-brandmanual/pkg/templates"
)

// ResolvePalette computes the effective primary, secondary and accent
// colours. Each entry is taken from the first layer holding a valid hex
// colour that is not that layer's factory value: the customization palette,
// then the form colour fields, then the template palette.
func ResolvePalette(data formdata.Data, c customization.Customization, t templates.Template) templates.Palette {
	factory := customization.DefaultColors()
	fields := formColorDefaults()

	pick := func(custom, customDefault, dataKey string, fallback string) string {
		if customization.ValidColor(custom) && !sameColor(custom, customDefault) {
			return custom
		}
		if v := data.Get(dataKey); customization.ValidColor(v) && !sameColor(v, fields[dataKey]) {
			return v
		}
		if customization.ValidColor(fallback) {
			return fallback
		}
		return customDefault
	}

	tp := t.Palette
	if t.IsZero() {
		tp = templates.Classic().Palette
	}
	return templates.Palette{
		Primary:   pick(c.Colors.Primary, factory.Primary, "primaryColor", tp.Primary),
		Secondary: pick(c.Colors.Secondary, factory.Secondary, "secondaryColor", tp.Secondary),
		Accent:    pick(c.Colors.Accent, factory.Accent, "accentColor", tp.Accent),
	}
}

func formColorDefaults() map[string]string {
	out := map[string]string{}
	for _, f := range formdata.DefaultFields() {
		if f.Kind == formdata.KindColor {
			out[f.ID] = f.Default
		}
	}
	return out
}

func sameColor(a, b string) bool {
	return normalizeHex(a) == normalizeHex(b)
}

func normalizeHex(v string) string {
	r, g, b, err := customization.HexToRGB(v)
	if err != nil {
		return v
	}
	return string([]byte{r, g, b})
}
