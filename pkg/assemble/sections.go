package assemble

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-brandmanual/pkg/customization"
	"github.com/goliatone/go-brandmanual/pkg/formdata"
	"github.com/goliatone/go-brandmanual/pkg/render/template/gotemplate"
	"github.com/goliatone/go-brandmanual/pkg/templates"
)

// sectionInput is what a section generator sees.
type sectionInput struct {
	data    formdata.Data
	palette templates.Palette
	custom  customization.Customization
	logo    string
}

// generator builds the body view of one section. ok=false drops the
// section from the document.
type generator func(in sectionInput) (view map[string]any, ok bool)

var generators = map[string]generator{
	"info-basicas":  infoView,
	"identidade":    identityView,
	"logotipo":      logoView,
	"cores":         colorsView,
	"tipografia":    typographyView,
	"tom-voz":       voiceView,
	"aplicacoes":    applicationsView,
	"redes-sociais": socialView,
	"contatos":      contactsView,
}

func value(d formdata.Data, key, placeholder string) string {
	if v := strings.TrimSpace(d.Get(key)); v != "" {
		return v
	}
	return placeholder
}

type card struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

func infoView(in sectionInput) (map[string]any, bool) {
	return map[string]any{
		"cards": []card{
			{"Nome do Hotel", value(in.data, "hotelName", "[Nome do Hotel]")},
			{"Tipo/Conceito", value(in.data, "hotelType", "[Tipo/Conceito]")},
			{"Localização", value(in.data, "hotelLocation", "[Localização]")},
			{"Website", value(in.data, "hotelWebsite", "[Website]")},
		},
	}, true
}

func identityView(in sectionInput) (map[string]any, bool) {
	values := make([]card, 0, 3)
	for i := 1; i <= 3; i++ {
		values = append(values, card{
			Title: value(in.data, fmt.Sprintf("value%d", i), fmt.Sprintf("Valor %d", i)),
			Text:  value(in.data, fmt.Sprintf("valueDesc%d", i), "[Descrição do valor]"),
		})
	}
	return map[string]any{
		"cards": []card{
			{"Missão", value(in.data, "mission", "[Missão a ser definida]")},
			{"Visão", value(in.data, "vision", "[Visão a ser definida]")},
			{"Posicionamento", value(in.data, "positioning", "[Posicionamento a ser definido]")},
		},
		"values": values,
		"accent": in.palette.Accent,
	}, true
}

func logoView(in sectionInput) (map[string]any, bool) {
	if in.logo == "" {
		return nil, false
	}
	return map[string]any{
		"logo": in.logo,
		"cards": []card{
			{"Dimensão Mínima", value(in.data, "logoMinSize", "[Ex: 50mm de largura]")},
			{"Área de Proteção", value(in.data, "logoProtection", "[Ex: 2x altura da letra principal]")},
		},
	}, true
}

type swatch struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
	Text string `json:"text"`
}

func colorsView(in sectionInput) (map[string]any, bool) {
	mk := func(nameKey, placeholder, hex string) swatch {
		return swatch{
			Name: value(in.data, nameKey, placeholder),
			Hex:  hex,
			Text: customization.ContrastText(hex),
		}
	}
	return map[string]any{
		"swatches": []swatch{
			mk("primaryColorName", "Cor Primária", in.palette.Primary),
			mk("secondaryColorName", "Cor Secundária", in.palette.Secondary),
			mk("accentColorName", "Cor de Destaque", in.palette.Accent),
		},
	}, true
}

type fontSample struct {
	Title  string `json:"title"`
	Name   string `json:"name"`
	Family string `json:"family"`
	Usage  string `json:"usage"`
}

func typographyView(in sectionInput) (map[string]any, bool) {
	mk := func(title, key, configured, placeholder, usageKey, usage string) fontSample {
		name := value(in.data, key, strings.TrimSpace(configured))
		if name == "" {
			name = placeholder
		}
		family := gotemplate.SanitizeFont(name)
		if family == "" || strings.HasPrefix(name, "[") {
			family = "inherit"
		}
		return fontSample{
			Title:  title,
			Name:   name,
			Family: family,
			Usage:  value(in.data, usageKey, usage),
		}
	}
	t := in.custom.Typography
	return map[string]any{
		"fonts": []fontSample{
			mk("Fonte Principal", "primaryFont", t.PrimaryFont, "[Fonte Principal]", "primaryFontUsage", "Títulos, logotipo, destaques"),
			mk("Fonte Secundária", "secondaryFont", t.SecondaryFont, "[Fonte Secundária]", "secondaryFontUsage", "Textos longos, corpo"),
		},
	}, true
}

func voiceView(in sectionInput) (map[string]any, bool) {
	return map[string]any{
		"cards": []card{
			{"Personalidade da Comunicação", value(in.data, "voiceTone", "[Como a marca deve se comunicar]")},
			{"Nível de Formalidade", value(in.data, "formalityLevel", "[A definir]")},
			{"Tratamento Preferido", value(in.data, "treatment", "[A definir]")},
		},
	}, true
}

func applicationsView(in sectionInput) (map[string]any, bool) {
	return map[string]any{
		"cards": []card{
			{"Materiais Impressos", value(in.data, "printMaterials", "[Cartão de visita, papel timbrado, folhetos...]")},
			{"Sinalização", value(in.data, "signage", "[Placas externas, internas, direcionais...]")},
			{"Uniformes", value(in.data, "uniforms", "[Especificações de uniformes e aplicação da marca]")},
			{"Materiais Digitais", value(in.data, "digitalMaterials", "[Website, redes sociais, e-mail marketing...]")},
		},
	}, true
}

func socialView(in sectionInput) (map[string]any, bool) {
	networks := []struct{ key, title string }{
		{"instagram", "Instagram"},
		{"facebook", "Facebook"},
		{"linkedin", "LinkedIn"},
	}
	cards := []card{}
	for _, n := range networks {
		if v := strings.TrimSpace(in.data.Get(n.key)); v != "" {
			cards = append(cards, card{n.title, v})
		}
	}
	return map[string]any{
		"cards":       cards,
		"placeholder": "[Nenhuma rede social informada]",
	}, true
}

func contactsView(in sectionInput) (map[string]any, bool) {
	cards := []card{
		{"Responsável pela Marca", strings.Join([]string{
			value(in.data, "brandManager", "[Nome do responsável]"),
			value(in.data, "brandManagerEmail", "[email@hotel.com]"),
			value(in.data, "brandManagerPhone", "[telefone]"),
		}, "\n")},
	}
	if v := strings.TrimSpace(in.data.Get("designer")); v != "" {
		cards = append(cards, card{"Agência/Designer", v})
	}
	return map[string]any{"cards": cards}, true
}
