package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-brandmanual/internal/logger"
	"github.com/goliatone/go-brandmanual/internal/metrics"
	"github.com/goliatone/go-brandmanual/internal/server"
	"github.com/goliatone/go-brandmanual/pkg/assemble"
	"github.com/goliatone/go-brandmanual/pkg/customization"
	"github.com/goliatone/go-brandmanual/pkg/storage"
	"github.com/goliatone/go-brandmanual/pkg/testsupport"
	"github.com/goliatone/go-brandmanual/pkg/workspace"
)

type fixture struct {
	ts      *httptest.Server
	ws      *workspace.Workspace
	metrics *metrics.Metrics
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	m := metrics.New()
	asm, err := assemble.New(assemble.WithClock(testsupport.Clock()), assemble.WithObserver(m))
	require.NoError(t, err)
	ws, err := workspace.New(storage.NewMemory(),
		workspace.WithClock(testsupport.Clock()),
		workspace.WithAssembler(asm),
		workspace.WithAutoSaveDelay(0),
		workspace.WithExportRecorder(m),
	)
	require.NoError(t, err)
	require.NoError(t, ws.Open(ctx))

	srv, err := server.New(ctx, server.Config{AllowAll: true}, ws,
		server.WithLogger(logger.NewTestLogger(t)),
		server.WithMetrics(m),
	)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return fixture{ts: ts, ws: ws, metrics: m}
}

func (f fixture) do(t *testing.T, method, path, body string) (*http.Response, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, f.ts.URL+path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(raw)
}

func decode(t *testing.T, body string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	return out
}

func TestHealthAndOpenAPI(t *testing.T) {
	f := newFixture(t)

	res, body := f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
	assert.NotEmpty(t, res.Header.Get("Access-Control-Allow-Origin")+res.Header.Get("Vary"))

	res, body = f.do(t, http.MethodGet, "/openapi.json", "")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	doc := decode(t, body)
	assert.Equal(t, "3.0.3", doc["openapi"])
	assert.Contains(t, doc["paths"], "/api/customization/sections/{id}")
}

func TestFormDataRoundTrip(t *testing.T) {
	f := newFixture(t)

	res, body := f.do(t, http.MethodPut, "/api/formdata", `{"hotelName":"Hotel Aurora","mission":"Delight guests"}`)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Equal(t, "Hotel Aurora", decode(t, body)["hotelName"])

	res, body = f.do(t, http.MethodGet, "/api/formdata", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	got := decode(t, body)
	assert.Equal(t, "Delight guests", got["mission"])
	assert.Contains(t, got, "_metadata")
}

func TestFormDataRejectsContractViolations(t *testing.T) {
	f := newFixture(t)

	res, body := f.do(t, http.MethodPut, "/api/formdata", `{"hotelName":{"nested":true}}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, decode(t, body)["error"], "contract")

	res, _ = f.do(t, http.MethodPut, "/api/formdata", `{"hotelName":`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "", f.ws.Data().Get("hotelName"))
}

func TestCustomizationEndpoints(t *testing.T) {
	f := newFixture(t)

	res, body := f.do(t, http.MethodPost, "/api/customization/presets/modern", "")
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Equal(t, "#1a1a2e", f.ws.Customization().Colors.Primary)

	res, _ = f.do(t, http.MethodPost, "/api/customization/presets/unknown", "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, body = f.do(t, http.MethodPatch, "/api/customization/sections/contatos", `{"enabled":false,"title":"Fale conosco","backgroundColor":"#ffeedd"}`)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	section := decode(t, body)
	assert.Equal(t, false, section["enabled"])
	assert.Equal(t, "Fale conosco", section["customTitle"])
	assert.False(t, f.ws.Customization().SectionEnabled("contatos"))

	res, _ = f.do(t, http.MethodPatch, "/api/customization/sections/contatos", `{"backgroundColor":"red; x"}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	res, _ = f.do(t, http.MethodPatch, "/api/customization/sections/unknown", `{"enabled":true}`)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, body = f.do(t, http.MethodPut, "/api/customization", `{"global":{"borderStyle":"wavy"}}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode, body)

	res, body = f.do(t, http.MethodPut, "/api/customization", `{"colors":{"primary":"#000000"}}`)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Equal(t, "#000000", f.ws.Customization().Colors.Primary)

	res, body = f.do(t, http.MethodGet, "/api/customization", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, decode(t, body), "sections")
}

func TestTemplateEndpoints(t *testing.T) {
	f := newFixture(t)

	res, body := f.do(t, http.MethodGet, "/api/templates", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "classic", decode(t, body)["selected"])

	res, body = f.do(t, http.MethodPut, "/api/templates/selected", `{"id":"luxury"}`)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Equal(t, "luxury", f.ws.Template(context.Background()).ID)

	res, _ = f.do(t, http.MethodPut, "/api/templates/selected", `{"id":"missing"}`)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	res, _ = f.do(t, http.MethodPut, "/api/templates/selected", `{}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestImportEndpoint(t *testing.T) {
	f := newFixture(t)

	res, body := f.do(t, http.MethodPost, "/api/import", `{"vision":"Be the reference"}`)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Equal(t, "formdata", decode(t, body)["imported"])
	assert.Equal(t, "Be the reference", f.ws.Data().Get("vision"))

	res, body = f.do(t, http.MethodPost, "/api/import", `{"vision":`)
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	assert.NotEmpty(t, decode(t, body)["issues"])
	assert.Equal(t, "Be the reference", f.ws.Data().Get("vision"))
}

func TestExportEndpoints(t *testing.T) {
	f := newFixture(t)
	f.ws.SetField("hotelName", "Hotel Aurora")

	res, body := f.do(t, http.MethodGet, "/api/export/html", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Disposition"), "manual-marca-hotel-aurora.html")
	assert.Contains(t, body, "Hotel Aurora")

	res, body = f.do(t, http.MethodGet, "/api/export/csv", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Disposition"), "manual-marca-hotel-aurora.csv")
	assert.Contains(t, body, "Hotel Aurora")

	res, body = f.do(t, http.MethodGet, "/api/export/config", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, decode(t, body), "customizations")

	res, _ = f.do(t, http.MethodGet, "/api/export/pdf", "")
	assert.Equal(t, http.StatusNotImplemented, res.StatusCode)

	res, _ = f.do(t, http.MethodGet, "/api/export/docx", "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, body = f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, `brandmanual_exports_total{format="html"} 1`)
	assert.Contains(t, body, `brandmanual_documents_assembled_total{mode="export-html",template="classic"} 1`)
}

func TestShareEndpoints(t *testing.T) {
	f := newFixture(t)
	f.ws.SetField("hotelName", "Hotel Aurora")

	res, body := f.do(t, http.MethodGet, "/api/share?base=https://manual.example/", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	link, _ := decode(t, body)["link"].(string)
	assert.True(t, strings.HasPrefix(link, "https://manual.example/?share="), link)

	other := newFixture(t)
	payload, err := json.Marshal(map[string]string{"link": link})
	require.NoError(t, err)
	res, body = other.do(t, http.MethodPost, "/api/share/apply", string(payload))
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Equal(t, "Hotel Aurora", other.ws.Data().Get("hotelName"))

	res, _ = other.do(t, http.MethodPost, "/api/share/apply", `{"link":"not-base64!"}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestValidatePreviewDownload(t *testing.T) {
	f := newFixture(t)

	res, body := f.do(t, http.MethodGet, "/api/validate", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	validation := decode(t, body)["validation"].(map[string]any)
	assert.Equal(t, false, validation["valid"])

	f.ws.SetField("hotelName", "Hotel <b>Aurora</b>")
	res, body = f.do(t, http.MethodGet, "/preview?compact=true", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "Hotel &lt;b&gt;Aurora&lt;/b&gt;")
	assert.NotContains(t, body, "<b>Aurora</b>")
	assert.Contains(t, body, "compact")

	res, body = f.do(t, http.MethodGet, "/assets/base.css", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, ".template-header")

	res, _ = f.do(t, http.MethodGet, "/download", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Disposition"), "attachment")
}

func TestNewRequiresWorkspace(t *testing.T) {
	_, err := server.New(context.Background(), server.Config{}, nil)
	assert.Error(t, err)
}

func TestOversizedBodiesRejected(t *testing.T) {
	ctx := context.Background()
	ws, err := workspace.New(storage.NewMemory(), workspace.WithAutoSaveDelay(0))
	require.NoError(t, err)
	require.NoError(t, ws.Open(ctx))
	srv, err := server.New(ctx, server.Config{}, ws, server.WithLogger(logger.NewTestLogger(t)))
	require.NoError(t, err)

	huge := `{"colors":{"primary":"#112233"},"note":"` + strings.Repeat("a", 9<<20) + `"}`
	for _, tc := range []struct{ method, path string }{
		{http.MethodPut, "/api/customization"},
		{http.MethodPost, "/api/import"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(huge))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, tc.path)
	}
	assert.Equal(t, customization.DefaultColors(), ws.Customization().Colors)
}
