package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kolah/routedoc/internal/config"
	"github.com/kolah/routedoc/internal/model"
	"github.com/kolah/routedoc/internal/targets/openapi"
)

func testDocument(t *testing.T) []byte {
	t.Helper()
	cfg := &config.Config{
		BaseURL: "https://api.test",
		Output:  config.OutputConfig{OpenAPI: config.FileOutput{Enabled: true, Filename: "openapi.json"}},
		Auth:    config.AuthConfig{Default: "none"},
		OpenAPI: config.OpenAPIConfig{Title: "API", Version: "1.0.0"},
	}
	endpoints := []model.Endpoint{
		{
			URI:        "api/users",
			Name:       "users.store",
			Methods:    []string{"POST"},
			BodyParams: []model.Parameter{{Name: "email", Type: model.TypeString, Required: true}},
		},
		{
			URI:        "api/users/{id}",
			Name:       "users.show",
			Methods:    []string{"GET"},
			PathParams: []model.Parameter{{Name: "id", Type: model.TypeString, Required: true}},
		},
	}
	data, err := openapi.New(cfg).Generate(endpoints)
	require.NoError(t, err)
	return data
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestDocumentedRequestPasses(t *testing.T) {
	var reported []*Mismatch
	mw, err := New(testDocument(t), &Options{Reporter: func(_ *http.Request, m *Mismatch) { reported = append(reported, m) }})
	require.NoError(t, err)

	var called bool
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(`{}`))
	mw.Handler(okHandler(&called)).ServeHTTP(rec, req)

	require.True(t, called)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, reported)

	require.Nil(t, mw.Check(httptest.NewRequest(http.MethodGet, "/api/users/42", nil)))
}

func TestUndocumentedOperationIsReported(t *testing.T) {
	var reported []*Mismatch
	mw, err := New(testDocument(t), &Options{Reporter: func(_ *http.Request, m *Mismatch) { reported = append(reported, m) }})
	require.NoError(t, err)

	var called bool
	rec := httptest.NewRecorder()
	mw.Handler(okHandler(&called)).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/users/42", nil))

	require.True(t, called)
	require.Equal(t, []*Mismatch{{Method: http.MethodDelete, Path: "/api/users/42"}}, reported)
	require.Equal(t, "undocumented operation: DELETE /api/users/42", reported[0].Error())

	require.NotNil(t, mw.Check(httptest.NewRequest(http.MethodGet, "/api/orders", nil)))
}

func TestEnforceRejects(t *testing.T) {
	mw, err := New(testDocument(t), &Options{Enforce: true})
	require.NoError(t, err)

	var called bool
	rec := httptest.NewRecorder()
	mw.Handler(okHandler(&called)).ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/users/42", nil))

	require.False(t, called)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "undocumented_operation", body["error"])
	require.Equal(t, "undocumented operation: PUT /api/users/42", body["message"])
}

func TestSkip(t *testing.T) {
	mw, err := New(testDocument(t), &Options{
		Enforce: true,
		Skip:    func(r *http.Request) bool { return r.URL.Path == "/healthz" },
	})
	require.NoError(t, err)

	var called bool
	rec := httptest.NewRecorder()
	mw.Handler(okHandler(&called)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.True(t, called)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openapi.json")
	require.NoError(t, os.WriteFile(path, testDocument(t), 0644))

	mw, err := NewFromFile(path, nil)
	require.NoError(t, err)
	require.NotNil(t, mw)

	_, err = NewFromFile(filepath.Join(t.TempDir(), "missing.json"), nil)
	require.ErrorContains(t, err, "reading openapi document")

	_, err = New([]byte("not: [valid"), nil)
	require.Error(t, err)
}

func TestMatchPath(t *testing.T) {
	tests := []struct {
		pattern, path string
		want          bool
	}{
		{"/api/users", "/api/users", true},
		{"/api/users/{id}", "/api/users/42", true},
		{"/api/users/{id}", "/api/users", false},
		{"/api/users/{id}", "/api/orders/42", false},
		{"/", "/", true},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, matchPath(tt.pattern, tt.path), "%s vs %s", tt.pattern, tt.path)
	}
}
