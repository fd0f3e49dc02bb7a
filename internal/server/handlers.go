package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-brandmanual/pkg/assemble"
	"github.com/goliatone/go-brandmanual/pkg/customization"
	"github.com/goliatone/go-brandmanual/pkg/formdata"
	"github.com/goliatone/go-brandmanual/pkg/share"
	"github.com/goliatone/go-brandmanual/pkg/templates"
	"github.com/goliatone/go-brandmanual/pkg/validation"
	"github.com/goliatone/go-brandmanual/pkg/workspace"
)

type issue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type errorBody struct {
	Error  string  `json:"error"`
	Issues []issue `json:"issues,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func issuesFrom(in []validation.Issue) []issue {
	out := make([]issue, 0, len(in))
	for _, i := range in {
		out = append(out, issue{Path: i.Path, Field: i.Field, Message: i.Message})
	}
	return out
}

// fail maps domain errors onto status codes.
func (s *Server) fail(w http.ResponseWriter, err error) {
	var importErr *workspace.ImportError
	switch {
	case errors.As(err, &importErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error(), Issues: issuesFrom(importErr.Issues)})
	case errors.Is(err, templates.ErrUnknownTemplate),
		errors.Is(err, customization.ErrUnknownPreset),
		errors.Is(err, customization.ErrUnknownSection):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, customization.ErrInvalid),
		errors.Is(err, formdata.ErrInvalidData),
		errors.Is(err, share.ErrInvalidPayload):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, workspace.ErrNoPrinter):
		writeError(w, http.StatusNotImplemented, err)
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, err)
	default:
		s.logger.WithError(err).Error("request failed", nil)
		writeError(w, http.StatusInternalServerError, fmt.Errorf("Erro inesperado, tente novamente: %w", err))
	}
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", formdata.ErrInvalidData, err)
	}
	return nil
}

func (s *Server) handleGetFormData(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ws.Snapshot())
}

func (s *Server) handlePutFormData(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := decodeBody(r, &body); err != nil {
		s.fail(w, err)
		return
	}
	if err := s.ws.Populate(r.Context(), body); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ws.Snapshot())
}

func (s *Server) handleGetCustomization(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ws.Customization())
}

func (s *Server) handlePutCustomization(w http.ResponseWriter, r *http.Request) {
	raw, ok := readBody(w, r)
	if !ok {
		return
	}
	c, err := customization.Decode(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.ws.SetCustomization(r.Context(), c); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ws.Customization())
}

func (s *Server) handleApplyPreset(w http.ResponseWriter, r *http.Request) {
	c, err := s.ws.ApplyPreset(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type sectionPatch struct {
	Enabled         *bool   `json:"enabled"`
	Title           *string `json:"title"`
	Icon            *string `json:"icon"`
	BackgroundColor string  `json:"backgroundColor"`
	TitleColor      string  `json:"titleColor"`
	CustomCSS       *string `json:"customCSS"`
	Reset           bool    `json:"reset"`
}

func (p sectionPatch) apply(c *customization.Customization, id string) error {
	if p.Reset {
		if err := c.ResetSection(id); err != nil {
			return err
		}
	}
	if p.Enabled != nil {
		if err := c.ToggleSection(id, *p.Enabled); err != nil {
			return err
		}
	}
	if p.Title != nil {
		if err := c.SetSectionTitle(id, *p.Title); err != nil {
			return err
		}
	}
	if p.Icon != nil {
		if err := c.SetSectionIcon(id, *p.Icon); err != nil {
			return err
		}
	}
	if p.BackgroundColor != "" || p.TitleColor != "" {
		if err := c.SetSectionColor(id, p.BackgroundColor, p.TitleColor); err != nil {
			return err
		}
	}
	if p.CustomCSS != nil {
		if err := c.SetSectionCSS(id, *p.CustomCSS); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) handlePatchSection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := customization.Lookup(id); !ok {
		s.fail(w, fmt.Errorf("%w: %q", customization.ErrUnknownSection, id))
		return
	}
	var patch sectionPatch
	if err := decodeBody(r, &patch); err != nil {
		s.fail(w, err)
		return
	}
	c, err := s.ws.UpdateCustomization(r.Context(), func(c *customization.Customization) error {
		return patch.apply(c, id)
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c.Section(id))
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"selected":  s.ws.Template(r.Context()).ID,
		"templates": s.ws.Templates(),
	})
}

func (s *Server) handleSelectTemplate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.fail(w, err)
		return
	}
	t, err := s.ws.SelectTemplate(r.Context(), body.ID)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"template":      t,
		"compatibility": s.ws.Compatibility(r.Context()),
	})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	raw, ok := readBody(w, r)
	if !ok {
		return
	}
	kind, err := s.ws.Import(r.Context(), raw)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"imported": kind})
}

func attachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	format := strings.ToLower(chi.URLParam(r, "format"))
	switch format {
	case "html":
		s.handleDownload(w, r)
	case "pdf":
		pdf, name, err := s.ws.RenderPDF(ctx)
		if err != nil {
			s.fail(w, err)
			return
		}
		attachment(w, "application/pdf", name, pdf)
	case "config":
		raw, name, err := s.ws.ExportConfig()
		if err != nil {
			s.fail(w, err)
			return
		}
		attachment(w, "application/json", name, raw)
	default:
		f, err := formdata.ParseFormat(format)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		var buf bytes.Buffer
		name, err := s.ws.ExportData(&buf, f)
		if err != nil {
			s.fail(w, err)
			return
		}
		attachment(w, f.ContentType(), name, buf.Bytes())
	}
}

func (s *Server) handleShareLink(w http.ResponseWriter, r *http.Request) {
	base := r.URL.Query().Get("base")
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		base = scheme + "://" + r.Host + "/"
	}
	link, err := s.ws.ShareLink(r.Context(), base)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"link": link})
}

func (s *Server) handleApplyShare(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Link string `json:"link"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.fail(w, err)
		return
	}
	p, err := s.ws.ApplyShare(r.Context(), body.Link)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"validation":    s.ws.Validate(),
		"compatibility": s.ws.Compatibility(r.Context()),
	})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	compact, _ := strconv.ParseBool(r.URL.Query().Get("compact"))
	html, err := s.ws.Assemble(r.Context(), assemble.ModePreview, compact)
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, html)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	html, name, err := s.ws.RenderHTML(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	attachment(w, "text/html; charset=utf-8", name, []byte(html))
}
