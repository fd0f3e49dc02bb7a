package formdata

// Kind hints how a field is edited and validated.
type Kind string

const (
	KindText     Kind = "text"
	KindTextArea Kind = "textarea"
	KindColor    Kind = "color"
	KindEmail    Kind = "email"
	KindURL      Kind = "url"
	KindPhone    Kind = "phone"
)

// Field declares one labeled input of the brand-manual form.
type Field struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Section  string `json:"section"`
	Kind     Kind   `json:"kind"`
	Default  string `json:"default,omitempty"`
	Required bool   `json:"required,omitempty"`
}

// LogoKey is the snapshot key carrying the logo data URL.
const LogoKey = "logoData"

// MetadataKey is the snapshot key carrying capture metadata.
const MetadataKey = "_metadata"

var defaultFields = []Field{
	{ID: "hotelName", Label: "Nome do Hotel", Section: "info-basicas", Kind: KindText, Required: true},
	{ID: "hotelType", Label: "Tipo/Conceito", Section: "info-basicas", Kind: KindText},
	{ID: "hotelLocation", Label: "Localização", Section: "info-basicas", Kind: KindText},
	{ID: "hotelWebsite", Label: "Website", Section: "info-basicas", Kind: KindURL},

	{ID: "mission", Label: "Missão", Section: "identidade", Kind: KindTextArea, Required: true},
	{ID: "vision", Label: "Visão", Section: "identidade", Kind: KindTextArea, Required: true},
	{ID: "positioning", Label: "Posicionamento", Section: "identidade", Kind: KindTextArea},
	{ID: "value1", Label: "Valor 1", Section: "identidade", Kind: KindText},
	{ID: "valueDesc1", Label: "Descrição do Valor 1", Section: "identidade", Kind: KindTextArea},
	{ID: "value2", Label: "Valor 2", Section: "identidade", Kind: KindText},
	{ID: "valueDesc2", Label: "Descrição do Valor 2", Section: "identidade", Kind: KindTextArea},
	{ID: "value3", Label: "Valor 3", Section: "identidade", Kind: KindText},
	{ID: "valueDesc3", Label: "Descrição do Valor 3", Section: "identidade", Kind: KindTextArea},

	{ID: "logoMinSize", Label: "Dimensão Mínima do Logo", Section: "logotipo", Kind: KindText},
	{ID: "logoProtection", Label: "Área de Proteção do Logo", Section: "logotipo", Kind: KindText},

	{ID: "primaryColor", Label: "Cor Primária", Section: "cores", Kind: KindColor, Default: "#2c3e50"},
	{ID: "primaryColorName", Label: "Nome da Cor Primária", Section: "cores", Kind: KindText},
	{ID: "secondaryColor", Label: "Cor Secundária", Section: "cores", Kind: KindColor, Default: "#3498db"},
	{ID: "secondaryColorName", Label: "Nome da Cor Secundária", Section: "cores", Kind: KindText},
	{ID: "accentColor", Label: "Cor de Destaque", Section: "cores", Kind: KindColor, Default: "#e74c3c"},
	{ID: "accentColorName", Label: "Nome da Cor de Destaque", Section: "cores", Kind: KindText},

	{ID: "primaryFont", Label: "Fonte Principal", Section: "tipografia", Kind: KindText},
	{ID: "primaryFontUsage", Label: "Uso da Fonte Principal", Section: "tipografia", Kind: KindText},
	{ID: "secondaryFont", Label: "Fonte Secundária", Section: "tipografia", Kind: KindText},
	{ID: "secondaryFontUsage", Label: "Uso da Fonte Secundária", Section: "tipografia", Kind: KindText},

	{ID: "voiceTone", Label: "Personalidade da Comunicação", Section: "tom-voz", Kind: KindTextArea},
	{ID: "formalityLevel", Label: "Nível de Formalidade", Section: "tom-voz", Kind: KindText},
	{ID: "treatment", Label: "Tratamento Preferido", Section: "tom-voz", Kind: KindText},

	{ID: "printMaterials", Label: "Materiais Impressos", Section: "aplicacoes", Kind: KindTextArea},
	{ID: "signage", Label: "Sinalização", Section: "aplicacoes", Kind: KindTextArea},
	{ID: "uniforms", Label: "Uniformes", Section: "aplicacoes", Kind: KindTextArea},
	{ID: "digitalMaterials", Label: "Materiais Digitais", Section: "aplicacoes", Kind: KindTextArea},

	{ID: "instagram", Label: "Instagram", Section: "redes-sociais", Kind: KindText},
	{ID: "facebook", Label: "Facebook", Section: "redes-sociais", Kind: KindText},
	{ID: "linkedin", Label: "LinkedIn", Section: "redes-sociais", Kind: KindText},

	{ID: "brandManager", Label: "Responsável pela Marca", Section: "contatos", Kind: KindText},
	{ID: "brandManagerEmail", Label: "E-mail do Responsável", Section: "contatos", Kind: KindEmail},
	{ID: "brandManagerPhone", Label: "Telefone do Responsável", Section: "contatos", Kind: KindPhone},
	{ID: "designer", Label: "Agência/Designer", Section: "contatos", Kind: KindText},
}

// DefaultFields returns a copy of the standard brand-manual vocabulary in
// form order.
func DefaultFields() []Field {
	out := make([]Field, len(defaultFields))
	copy(out, defaultFields)
	return out
}

var displayNames = func() map[string]string {
	m := make(map[string]string, len(defaultFields)+1)
	for _, f := range defaultFields {
		m[f.ID] = f.Label
	}
	m[LogoKey] = "Logotipo"
	return m
}()

// DisplayName returns the human label of a field id, or the id itself when
// the field is not part of the standard vocabulary.
func DisplayName(id string) string {
	if name, ok := displayNames[id]; ok {
		return name
	}
	return id
}
