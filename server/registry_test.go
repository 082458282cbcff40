package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meysamhadeli/assetgraph/static_pipeline/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okAction(path string) models.Action {
	return models.Action{
		Path:        path,
		ContentType: "text/plain",
		Public:      true,
		Immutable:   true,
		Handler: func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("ok"))
		},
	}
}

func TestRegistry_RejectsDuplicatePaths(t *testing.T) {
	registry := NewRegistry("")

	require.NoError(t, registry.Register(okAction("/static/a-1.css")))
	err := registry.Register(okAction("/static/a-1.css"))
	assert.ErrorIs(t, err, ErrDuplicateRoute)
	assert.Len(t, registry.Routes(), 1)
}

func TestRegistry_RejectsInvalidActions(t *testing.T) {
	registry := NewRegistry("")

	assert.Error(t, registry.Register(okAction("static/a.css")))
	assert.Error(t, registry.Register(models.Action{Path: "/static/a.css"}))
}

func TestRegistry_ServesGetAndHeadOnly(t *testing.T) {
	registry := NewRegistry("")
	require.NoError(t, registry.Register(okAction("/static/a-1.css")))

	recorder := httptest.NewRecorder()
	registry.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/static/a-1.css", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "ok", recorder.Body.String())

	recorder = httptest.NewRecorder()
	registry.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/static/a-1.css", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, recorder.Code)
	assert.Equal(t, "GET, HEAD", recorder.Header().Get("Allow"))

	recorder = httptest.NewRecorder()
	registry.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/static/missing.css", nil))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestRegistry_FallsBackToMux(t *testing.T) {
	registry := NewRegistry("")
	registry.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	recorder := httptest.NewRecorder()
	registry.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

func TestRegistry_URL(t *testing.T) {
	assert.Equal(t, "/static/a-1.css", NewRegistry("").URL("/static/a-1.css"))
	assert.Equal(t, "https://cdn.example.com/static/a-1.css", NewRegistry("https://cdn.example.com/").URL("/static/a-1.css"))
}

func TestServer_ServesThroughH2C(t *testing.T) {
	registry := NewRegistry("")
	require.NoError(t, registry.Register(okAction("/static/a-1.css")))
	srv := New(":0", registry, nil)

	ts := httptest.NewServer(srv.httpServer.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/static/a-1.css")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
