package validation

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed import.schema.json
var importSchema []byte

var (
	importSchemaOnce sync.Once
	importLoader     *gojsonschema.Schema
	importSchemaErr  error
)

func compiledImportSchema() (*gojsonschema.Schema, error) {
	importSchemaOnce.Do(func() {
		importLoader, importSchemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(importSchema))
	})
	return importLoader, importSchemaErr
}

// ValidateImport checks that raw is a JSON object whose values the form and
// customization stores can take. It never mutates anything.
func ValidateImport(raw []byte) Result {
	var probe any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return invalid(Issue{Message: fmt.Sprintf("JSON inválido: %v", err)})
	}
	if _, ok := probe.(map[string]any); !ok {
		return invalid(Issue{Message: "o arquivo deve conter um objeto JSON"})
	}

	schema, err := compiledImportSchema()
	if err != nil {
		return invalid(Issue{Message: fmt.Sprintf("schema de importação indisponível: %v", err)})
	}
	res, err := schema.Validate(gojsonschema.NewGoLoader(probe))
	if err != nil {
		return invalid(Issue{Message: fmt.Sprintf("falha na validação: %v", err)})
	}

	result := Result{Valid: res.Valid()}
	for _, desc := range res.Errors() {
		result.Issues = append(result.Issues, issueFromSchemaError(desc))
	}
	return result
}

func issueFromSchemaError(desc gojsonschema.ResultError) Issue {
	field := strings.TrimPrefix(desc.Field(), "(root)")
	field = strings.TrimPrefix(field, ".")
	return Issue{
		Path:    pointerFromField(field),
		Field:   field,
		Message: strings.TrimSpace(desc.Description()),
	}
}

// pointerFromField turns a dotted gojsonschema field into a JSON pointer.
func pointerFromField(field string) string {
	if field == "" {
		return ""
	}
	parts := strings.Split(field, ".")
	for i, p := range parts {
		p = strings.ReplaceAll(p, "~", "~0")
		parts[i] = strings.ReplaceAll(p, "/", "~1")
	}
	return "/" + strings.Join(parts, "/")
}

func invalid(issues ...Issue) Result {
	return Result{Valid: false, Issues: issues}
}
