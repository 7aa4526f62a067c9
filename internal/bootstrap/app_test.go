package bootstrap

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sulaiman-F/wthqh-backend/internal/shared/config"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/pdfinfo/pdfinfotest"
)

type apiClient struct {
	t      *testing.T
	router http.Handler
	token  string
}

func (c *apiClient) do(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp := httptest.NewRecorder()
	c.router.ServeHTTP(resp, req)
	return resp
}

func (c *apiClient) json(method, path string, payload any) (*httptest.ResponseRecorder, map[string]any) {
	c.t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(c.t, err)
		body = bytes.NewReader(raw)
	}
	resp := c.do(method, path, body, "application/json")
	out := map[string]any{}
	if resp.Body.Len() > 0 && resp.Header().Get("Content-Type") != "application/pdf" {
		_ = json.Unmarshal(resp.Body.Bytes(), &out)
	}
	return resp, out
}

func (c *apiClient) upload(path string, fields map[string]string, fileName string, payload []byte) (*httptest.ResponseRecorder, map[string]any) {
	c.t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(c.t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile("file", fileName)
	require.NoError(c.t, err)
	_, err = part.Write(payload)
	require.NoError(c.t, err)
	require.NoError(c.t, w.Close())

	resp := c.do(http.MethodPost, path, buf, w.FormDataContentType())
	out := map[string]any{}
	_ = json.Unmarshal(resp.Body.Bytes(), &out)
	return resp, out
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Defaults()
	cfg.Env = "test"
	cfg.LocalStoreDir = t.TempDir()
	cfg.JWTAccessSecret = "access-secret"
	cfg.JWTRefreshSecret = "refresh-secret"
	cfg.PublicBaseURL = "https://docs.example.com"

	app, err := Build(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func signup(t *testing.T, router http.Handler, email string) *apiClient {
	t.Helper()
	c := &apiClient{t: t, router: router}
	resp, body := c.json(http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"name":     "Test User",
		"email":    email,
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	token, _ := body["accessToken"].(string)
	require.NotEmpty(t, token)
	c.token = token
	return c
}

func TestBuildUsesMemoryReposWithoutDatabase(t *testing.T) {
	app := newTestApp(t)
	assert.Nil(t, app.DB)
	assert.NotNil(t, app.Router)
	assert.NotNil(t, app.Sweeper)

	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = httptest.NewRecorder()
	app.Router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"database":"memory"`)
}

func TestBuildRequiresDatabaseInProduction(t *testing.T) {
	cfg := config.Defaults()
	cfg.Env = "production"
	cfg.JWTAccessSecret = "a"
	cfg.JWTRefreshSecret = "b"
	_, err := Build(cfg)
	require.Error(t, err)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	app := newTestApp(t)
	c := &apiClient{t: t, router: app.Router}
	resp, _ := c.json(http.MethodGet, "/api/v1/folders", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestDocumentLifecycleEndToEnd(t *testing.T) {
	app := newTestApp(t)
	owner := signup(t, app.Router, "owner@example.com")

	resp, body := owner.json(http.MethodPost, "/api/v1/folders", map[string]any{"name": "Invoices"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	folderID := body["folder"].(map[string]any)["id"].(string)

	resp, body = owner.upload("/api/v1/documents", map[string]string{
		"title":    "March invoice",
		"folderId": folderID,
		"tags":     "billing, q1",
	}, "invoice-march.pdf", pdfinfotest.Build(2))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	docID := body["document"].(map[string]any)["id"].(string)
	assert.EqualValues(t, 1, body["version"].(map[string]any)["versionNumber"])
	assert.EqualValues(t, 2, body["version"].(map[string]any)["pageCount"])

	resp, body = owner.upload("/api/v1/documents/"+docID+"/versions", nil, "invoice-march-v2.pdf", pdfinfotest.Build(3))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.EqualValues(t, 2, body["version"].(map[string]any)["versionNumber"])

	resp, body = owner.json(http.MethodGet, "/api/v1/documents/"+docID+"/versions", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, body["versions"], 2)

	resp, body = owner.json(http.MethodGet, "/api/v1/search?q=MARCH", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, body["documents"], 1)
	assert.EqualValues(t, 1, body["count"])

	resp, body = owner.json(http.MethodPost, "/api/v1/documents/"+docID+"/share", map[string]any{"expiresInHours": 1})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	token := body["token"].(string)
	assert.Equal(t, "https://docs.example.com/api/v1/public/"+token, body["url"])

	anon := &apiClient{t: t, router: app.Router}
	resp = anon.do(http.MethodGet, "/api/v1/public/"+token, nil, "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/pdf", resp.Header().Get("Content-Type"))
	assert.Equal(t, pdfinfotest.Build(3), resp.Body.Bytes())

	resp, _ = owner.json(http.MethodDelete, "/api/v1/folders/"+folderID, nil)
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestOtherUsersCannotSeeDocuments(t *testing.T) {
	app := newTestApp(t)
	owner := signup(t, app.Router, "alice@example.com")
	other := signup(t, app.Router, "bob@example.com")

	_, body := owner.json(http.MethodPost, "/api/v1/folders", map[string]any{"name": "Private"})
	folderID := body["folder"].(map[string]any)["id"].(string)
	resp, body := owner.upload("/api/v1/documents", map[string]string{
		"title":    "Secret plan",
		"folderId": folderID,
	}, "plan.pdf", pdfinfotest.Build(1))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	docID := body["document"].(map[string]any)["id"].(string)

	resp, _ = other.json(http.MethodGet, "/api/v1/documents/"+docID, nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp, body = other.json(http.MethodGet, "/api/v1/search?q=secret", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, body["documents"], 0)
	assert.EqualValues(t, 0, body["count"])

	resp, _ = other.upload("/api/v1/documents", map[string]string{
		"title":    "Sneaky",
		"folderId": folderID,
	}, "sneaky.pdf", pdfinfotest.Build(1))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
