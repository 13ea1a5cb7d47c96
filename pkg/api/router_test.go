package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/filebank/pkg/api/auth"
	"github.com/marmos91/filebank/pkg/api/handlers"
	contentfs "github.com/marmos91/filebank/pkg/content/fs"
	"github.com/marmos91/filebank/pkg/metadata/gormstore"
	"github.com/marmos91/filebank/pkg/validation"
	"github.com/marmos91/filebank/pkg/vfs"
)

const testSecret = "router-test-secret-of-32-characters"

const projectSchema = `{
  "type": "object",
  "properties": {"owner": {"type": "string"}},
  "required": ["owner"]
}`

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()

	store, err := gormstore.New(t.Context(), &gormstore.Config{
		Type:   gormstore.DatabaseTypeSQLite,
		SQLite: gormstore.SQLiteConfig{Path: ":memory:"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	backend, err := contentfs.NewWithRoot(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	schemas := t.TempDir()
	for _, kind := range []string{"directory", "file"} {
		require.NoError(t, os.MkdirAll(filepath.Join(schemas, kind), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(schemas, kind, "Project.json"), []byte(projectSchema), 0o644))
	}
	registry, err := validation.New(schemas)
	require.NoError(t, err)

	svc := vfs.NewService(store, backend, registry, vfs.Options{})
	srv := httptest.NewServer(NewRouter(svc, cfg))
	t.Cleanup(srv.Close)
	return srv
}

type client struct {
	t     *testing.T
	base  string
	token string
}

func (c *client) do(method, path, contentType string, body io.Reader) *http.Response {
	c.t.Helper()
	req, err := http.NewRequestWithContext(c.t.Context(), method, c.base+path, body)
	require.NoError(c.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	c.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (c *client) json(method, path string, body any) *http.Response {
	c.t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(c.t, err)
	return c.do(method, path, "application/json", bytes.NewReader(raw))
}

func (c *client) upload(path, filename, data string, fields map[string]string) *http.Response {
	c.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(c.t, mw.WriteField(k, v))
	}
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(c.t, err)
	_, err = io.WriteString(part, data)
	require.NoError(c.t, err)
	require.NoError(c.t, mw.Close())
	return c.do(http.MethodPost, path, mw.FormDataContentType(), &buf)
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealthRoutes(t *testing.T) {
	srv := newTestServer(t, Config{})
	c := &client{t: t, base: srv.URL}

	resp := c.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = c.do(http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[handlers.Response](t, resp)
	assert.Equal(t, "healthy", body.Status)
}

func TestItemLifecycle(t *testing.T) {
	srv := newTestServer(t, Config{})
	c := &client{t: t, base: srv.URL}

	resp := c.json(http.MethodPost, "/api/v1/fs/", map[string]any{"name": "docs"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	dir := decode[map[string]any](t, resp)
	assert.Equal(t, "docs", dir["name"])
	assert.Equal(t, "directory", dir["type"])

	resp = c.json(http.MethodPost, "/api/v1/fs/", map[string]any{"name": "docs"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = c.upload("/api/v1/fs/docs", "hello.txt", "hello world", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	file := decode[map[string]any](t, resp)
	assert.Equal(t, "hello.txt", file["name"])
	assert.Equal(t, "text/plain; charset=utf-8", file["mimetype"])

	resp = c.do(http.MethodGet, "/api/v1/fs/docs", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	listing := decode[[]map[string]any](t, resp)
	require.Len(t, listing, 1)
	assert.Equal(t, "hello.txt", listing[0]["name"])

	resp = c.do(http.MethodGet, "/api/v1/fs/docs/hello.txt", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, "11", resp.Header.Get("Content-Length"))
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	resp = c.json(http.MethodPost, "/api/v1/fs/", map[string]any{"name": "archive"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = c.json(http.MethodPut, "/api/v1/fs/docs/hello.txt", map[string]any{"target": "/archive"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = c.do(http.MethodGet, "/api/v1/fs/archive/hello.txt", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = c.do(http.MethodDelete, "/api/v1/fs/archive", "", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = c.do(http.MethodGet, "/api/v1/fs/archive/hello.txt", "", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, handlers.ContentTypeProblemJSON, resp.Header.Get("Content-Type"))

	resp = c.do(http.MethodGet, "/api/v1/fs", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	listing = decode[[]map[string]any](t, resp)
	require.Len(t, listing, 1)
	assert.Equal(t, "docs", listing[0]["name"])
}

func TestUploadMimeTypeAndMetadata(t *testing.T) {
	srv := newTestServer(t, Config{})
	c := &client{t: t, base: srv.URL}

	resp := c.upload("/api/v1/fs/", "report.bin", "%PDF-1.4", map[string]string{
		"name":     "report",
		"mimetype": "application/x-custom",
		"schema":   "Project",
		"metadata": `{"owner": "alice"}`,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	file := decode[map[string]any](t, resp)
	assert.Equal(t, "report", file["name"])
	assert.Equal(t, "application/x-custom", file["mimetype"])
	assert.Equal(t, map[string]any{"owner": "alice"}, file["metadata"])

	resp = c.upload("/api/v1/fs/", "bad.txt", "x", map[string]string{"metadata": "not json"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	problem := decode[handlers.Problem](t, resp)
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "/metadata", problem.Errors[0].Field)
}

func TestUploadTooLarge(t *testing.T) {
	srv := newTestServer(t, Config{MaxUploadSize: 64})
	c := &client{t: t, base: srv.URL}

	resp := c.upload("/api/v1/fs/", "big.txt", strings.Repeat("x", 1024), nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestCreateErrors(t *testing.T) {
	srv := newTestServer(t, Config{})
	c := &client{t: t, base: srv.URL}

	tests := []struct {
		name   string
		path   string
		body   map[string]any
		status int
		detail string
	}{
		{"missing parent", "/api/v1/fs/nope", map[string]any{"name": "x"}, http.StatusNotFound, ""},
		{"empty name", "/api/v1/fs/", map[string]any{"name": ""}, http.StatusBadRequest, ""},
		{"file without content", "/api/v1/fs/", map[string]any{"name": "x", "type": "file"}, http.StatusBadRequest, "File content is required."},
		{"unknown type", "/api/v1/fs/", map[string]any{"name": "x", "type": "link"}, http.StatusBadRequest, "Invalid item type: link"},
		{"unknown schema", "/api/v1/fs/", map[string]any{"name": "x", "schema": "Nope"}, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := c.json(http.MethodPost, tt.path, tt.body)
			require.Equal(t, tt.status, resp.StatusCode)
			problem := decode[handlers.Problem](t, resp)
			assert.Equal(t, tt.status, problem.Status)
			if tt.detail != "" {
				assert.Equal(t, tt.detail, problem.Detail)
			}
		})
	}
}

func TestMoveMissingTarget(t *testing.T) {
	srv := newTestServer(t, Config{})
	c := &client{t: t, base: srv.URL}

	resp := c.json(http.MethodPost, "/api/v1/fs/", map[string]any{"name": "docs"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = c.json(http.MethodPut, "/api/v1/fs/docs", map[string]any{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	problem := decode[handlers.Problem](t, resp)
	assert.Equal(t, "Missing target parameter.", problem.Detail)
}

func TestUpdateMetadata(t *testing.T) {
	srv := newTestServer(t, Config{})
	c := &client{t: t, base: srv.URL}

	resp := c.json(http.MethodPost, "/api/v1/fs/", map[string]any{"name": "docs"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := decode[map[string]any](t, resp)["id"].(string)

	resp = c.json(http.MethodPut, "/api/v1/meta/"+id, map[string]any{"schema": "Project", "owner": "bob"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dir := decode[map[string]any](t, resp)
	assert.Equal(t, map[string]any{"owner": "bob"}, dir["metadata"])

	resp = c.json(http.MethodPut, "/api/v1/meta/"+id, map[string]any{"schema": "Project"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	problem := decode[handlers.Problem](t, resp)
	assert.NotEmpty(t, problem.Errors)

	resp = c.json(http.MethodPut, "/api/v1/meta/unknown-id", map[string]any{"owner": "bob"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAuthorization(t *testing.T) {
	jwtService, err := auth.NewJWTService(auth.JWTConfig{Secret: testSecret})
	require.NoError(t, err)

	srv := newTestServer(t, Config{Auth: &AuthConfig{
		JWT:          jwtService,
		ReadScopes:   []string{"filebank:read", "admin"},
		WriteScopes:  []string{"filebank:write", "admin"},
		DeleteScopes: []string{"filebank:delete", "admin"},
	}})

	issue := func(scopes ...string) string {
		token, _, err := jwtService.Issue("tester", scopes, time.Hour)
		require.NoError(t, err)
		return token
	}

	t.Run("missing token", func(t *testing.T) {
		c := &client{t: t, base: srv.URL}
		resp := c.do(http.MethodGet, "/api/v1/fs/", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("invalid token", func(t *testing.T) {
		c := &client{t: t, base: srv.URL, token: "garbage"}
		resp := c.do(http.MethodGet, "/api/v1/fs/", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("read scope", func(t *testing.T) {
		c := &client{t: t, base: srv.URL, token: issue("filebank:read")}
		resp := c.do(http.MethodGet, "/api/v1/fs/", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp = c.json(http.MethodPost, "/api/v1/fs/", map[string]any{"name": "docs"})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		problem := decode[handlers.Problem](t, resp)
		assert.Equal(t, "Insufficient scope", problem.Detail)
	})

	t.Run("any of the set", func(t *testing.T) {
		c := &client{t: t, base: srv.URL, token: issue("admin")}
		resp := c.json(http.MethodPost, "/api/v1/fs/", map[string]any{"name": "docs"})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		resp = c.do(http.MethodDelete, "/api/v1/fs/docs", "", nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("health stays open", func(t *testing.T) {
		c := &client{t: t, base: srv.URL}
		resp := c.do(http.MethodGet, "/health", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
