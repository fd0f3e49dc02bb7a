package server

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
)

//go:embed openapi.yaml
var openapiDocument []byte

// maxBody caps request bodies; logos travel inline as data URLs.
const maxBody = 8 << 20

// Contract is the parsed API document plus the JSON body schema of every
// operation that takes one, keyed by "METHOD /pattern".
type Contract struct {
	doc     *openapi3.T
	bodies  map[string]*openapi3.Schema
	encoded []byte
}

// LoadContract parses and validates the embedded API document.
func LoadContract(ctx context.Context) (*Contract, error) {
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(openapiDocument)
	if err != nil {
		return nil, fmt.Errorf("server: load openapi: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("server: validate openapi: %w", err)
	}
	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("server: encode openapi: %w", err)
	}

	c := &Contract{doc: doc, bodies: map[string]*openapi3.Schema{}, encoded: encoded}
	for path, item := range doc.Paths.Map() {
		for method, op := range item.Operations() {
			if schema := requestSchema(op); schema != nil {
				c.bodies[method+" "+path] = schema
			}
		}
	}
	return c, nil
}

func requestSchema(op *openapi3.Operation) *openapi3.Schema {
	if op == nil || op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	mt := op.RequestBody.Value.Content.Get("application/json")
	if mt == nil || mt.Schema == nil {
		return nil
	}
	return mt.Schema.Value
}

// Doc returns the parsed document.
func (c *Contract) Doc() *openapi3.T { return c.doc }

// JSON returns the document encoded as JSON.
func (c *Contract) JSON() []byte { return c.encoded }

// ValidateBody checks a decoded body against the operation schema for
// method and pattern. Operations without a JSON body accept anything.
func (c *Contract) ValidateBody(method, pattern string, body any) error {
	schema, ok := c.bodies[strings.ToUpper(method)+" "+pattern]
	if !ok || schema == nil {
		return nil
	}
	return schema.VisitJSON(body)
}

// readBody reads at most maxBody bytes. On failure it writes the error
// response and reports false.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
		} else {
			writeError(w, http.StatusBadRequest, err)
		}
		return nil, false
	}
	return raw, true
}

// validateBody rejects JSON bodies that do not match the contract and
// rewinds the body for the handler.
func (c *Contract) validateBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := readBody(w, r)
		if !ok {
			return
		}
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON body: %w", err))
			return
		}
		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if err := c.ValidateBody(r.Method, pattern, decoded); err != nil {
			var schemaErr *openapi3.SchemaError
			if errors.As(err, &schemaErr) {
				writeJSON(w, http.StatusBadRequest, errorBody{
					Error:  "request does not match the API contract",
					Issues: []issue{{Path: "/" + strings.Join(schemaErr.JSONPointer(), "/"), Message: schemaErr.Reason}},
				})
				return
			}
			writeError(w, http.StatusBadRequest, err)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(raw))
		next.ServeHTTP(w, r)
	})
}
