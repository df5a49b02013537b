package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitepack/internal/build"
	"sitepack/internal/config"
)

func fixtureServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"assets/vendor/lib.css":       ".lib{}\n",
		"assets/style.css":            ".app{}\n",
		"assets/vendor/lib.js":        "var LIB = {};\n",
		"assets/i18n.js":              "var I18N = {};\n",
		"assets/app.js":               "// app\n",
		"assets/favicon.svg":          `<svg xmlns="http://www.w3.org/2000/svg"/>`,
		"data/config.preview.json":    `{"name":"Preview"}`,
		"data/config.production.json": `{"name":"Production"}`,
		"data/events.json":            `{"events":[{"id":"e1"},{"id":"e2"}]}`,
		"data/demo-events.json":       `{"events":[{"id":"d1"}]}`,
		"data/content.de.json":        `{"t":"de"}`,
		"data/content.en.json":        `{"t":"en"}`,
	}
	for name, body := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}

	cfg := config.DefaultConfig()
	cfg.Normalize()

	return New(build.Options{BaseDir: dir, Config: cfg, Token: "preview"}), dir
}

func TestServerServesArtifact(t *testing.T) {
	s, _ := fixtureServer(t)
	require.NoError(t, s.Rebuild())

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestServerHealth(t *testing.T) {
	s, _ := fixtureServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestServerEventsEndpoint(t *testing.T) {
	s, _ := fixtureServer(t)
	require.NoError(t, s.Rebuild())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Events []json.RawMessage `json:"events"`
		Mode   string            `json:"mode"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	// Preview run: 2 curated + 1 demo.
	assert.Len(t, resp.Events, 3)
	assert.Equal(t, "preview", resp.Mode)
}

func TestServerBeforeFirstBuild(t *testing.T) {
	s, _ := fixtureServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServerUnknownPath(t *testing.T) {
	s, _ := fixtureServer(t)
	require.NoError(t, s.Rebuild())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/not-here", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRebuildFailureKeepsPreviousArtifact(t *testing.T) {
	s, dir := fixtureServer(t)
	require.NoError(t, s.Rebuild())

	// Break a data source, then attempt a rebuild.
	require.NoError(t, os.Remove(filepath.Join(dir, "data/events.json")))
	require.Error(t, s.Rebuild())

	// The previous artifact keeps serving.
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "map of 3 events")
}
