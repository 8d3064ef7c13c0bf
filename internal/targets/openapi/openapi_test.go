package openapi

import (
	"encoding/json"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v4"

	"github.com/kolah/routedoc/internal/config"
	"github.com/kolah/routedoc/internal/model"
)

func testConfig() *config.Config {
	return &config.Config{
		BaseURL: "https://api.test",
		Output: config.OutputConfig{
			Path:    "out",
			OpenAPI: config.FileOutput{Enabled: true, Filename: "openapi.json"},
		},
		Auth: config.AuthConfig{
			Default: "bearer",
			APIKey:  config.APIKeyConfig{Key: "X-API-KEY", In: "header"},
		},
		OpenAPI: config.OpenAPIConfig{Title: "Shop API", Version: "2.0.0", Description: "Orders and users"},
		Responses: config.ResponsesConfig{
			AutoFromRequest:    true,
			DefaultStatus:      200,
			DefaultDescription: "OK",
		},
	}
}

func storeEndpoint() model.Endpoint {
	return model.Endpoint{
		URI:     "api/users",
		Name:    "users.store",
		Methods: []string{"POST"},
		Summary: "Create user",
		Tags:    []string{"Users"},
		Auth:    model.AuthAPIKey,
		BodyParams: []model.Parameter{
			{Name: "email", Type: model.TypeString, Required: true, Example: "user@example.com"},
			{Name: "age", Type: model.TypeInteger},
		},
		Headers: []model.Header{{Name: "X-Client-ID", Value: "web", Description: "Calling client"}},
	}
}

// decode round-trips the document through JSON so assertions see plain maps.
func decode(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func dig(t *testing.T, v any, keys ...string) any {
	t.Helper()
	for _, k := range keys {
		m, ok := v.(map[string]any)
		require.True(t, ok, "expected object at %q", k)
		v, ok = m[k]
		require.True(t, ok, "missing key %q", k)
	}
	return v
}

func TestCreateUserOperation(t *testing.T) {
	data, err := New(testConfig()).Generate([]model.Endpoint{storeEndpoint()})
	require.NoError(t, err)
	doc := decode(t, data)

	require.Equal(t, "3.0.3", doc["openapi"])
	require.Equal(t, "Shop API", dig(t, doc, "info", "title"))
	require.Equal(t, []any{map[string]any{"url": "https://api.test"}}, doc["servers"])

	op := dig(t, doc, "paths", "/api/users", "post")
	require.Equal(t, "Create user", dig(t, op, "summary"))
	require.Equal(t, []any{"Users"}, dig(t, op, "tags"))
	require.Equal(t, false, dig(t, op, "deprecated"))
	require.Equal(t, []any{map[string]any{"apiKeyAuth": []any{}}}, dig(t, op, "security"))

	schema := dig(t, op, "requestBody", "content", "application/json", "schema")
	require.Equal(t, "object", dig(t, schema, "type"))
	require.Equal(t, "string", dig(t, schema, "properties", "email", "type"))
	require.Equal(t, "integer", dig(t, schema, "properties", "age", "type"))
	require.Equal(t, []any{"email"}, dig(t, schema, "required"))
	require.Equal(t, true, dig(t, op, "requestBody", "required"))

	params := dig(t, op, "parameters").([]any)
	require.Len(t, params, 1)
	require.Equal(t, "header", dig(t, params[0], "in"))
	require.Equal(t, "web", dig(t, params[0], "example"))

	resp := dig(t, op, "responses", "200")
	require.Equal(t, "OK", dig(t, resp, "description"))
	require.Equal(t, "user@example.com", dig(t, resp, "content", "application/json", "example", "email"))
	require.Equal(t, "integer", dig(t, resp, "content", "application/json", "schema", "properties", "age", "type"))

	schemes := dig(t, doc, "components", "securitySchemes")
	require.Equal(t, map[string]any{"type": "http", "scheme": "bearer"}, dig(t, schemes, "bearerAuth"))
	require.Equal(t, map[string]any{"type": "apiKey", "name": "X-API-KEY", "in": "header"}, dig(t, schemes, "apiKeyAuth"))
}

func TestPathItemsShareURI(t *testing.T) {
	show := model.Endpoint{
		URI:        "/api/users/{id}",
		Name:       "users.show",
		Methods:    []string{"GET", "DELETE"},
		PathParams: []model.Parameter{{Name: "id", Type: model.TypeString, Required: true}},
		Auth:       model.AuthNone,
	}
	update := model.Endpoint{
		URI:        "api/users/{id}",
		Name:       "users.update",
		Methods:    []string{"PUT"},
		PathParams: show.PathParams,
		BodyParams: []model.Parameter{{Name: "name", Type: model.TypeString}},
	}

	doc := New(testConfig()).Build([]model.Endpoint{show, update})
	require.Equal(t, 1, doc.Paths.Len())

	item := doc.Paths.GetOrZero("/api/users/{id}")
	require.NotNil(t, item)
	require.Equal(t, []string{"get", "delete", "put"}, slices.Collect(item.KeysFromOldest()))

	get := item.GetOrZero("get")
	require.Nil(t, get.Security)
	require.Nil(t, get.RequestBody)
	require.NotNil(t, get.Tags)
	require.Equal(t, "users.show", get.Summary)
	require.Len(t, get.Parameters, 1)
	require.Equal(t, "path", get.Parameters[0].In)
	require.True(t, get.Parameters[0].Required)

	put := item.GetOrZero("put")
	require.NotNil(t, put.RequestBody)
	require.Equal(t, []map[string][]string{{"bearerAuth": {}}}, put.Security)
}

func TestSamePathAndMethodKeepsLastOperation(t *testing.T) {
	first := model.Endpoint{URI: "api/users", Name: "users.index", Methods: []string{"GET"}}
	second := model.Endpoint{URI: "/api/users", Name: "admin.users.index", Methods: []string{"GET", "POST"}}

	doc := New(testConfig()).Build([]model.Endpoint{first, second})
	require.Equal(t, 1, doc.Paths.Len())

	item := doc.Paths.GetOrZero("/api/users")
	require.Equal(t, []string{"get", "post"}, slices.Collect(item.KeysFromOldest()))
	require.Equal(t, "admin.users.index", item.GetOrZero("get").Summary)

	data, err := New(testConfig()).Generate([]model.Endpoint{first, second})
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(string(data), `"get":`))
}

func TestDefaultResponse(t *testing.T) {
	cfg := testConfig()
	cfg.Responses.AutoFromRequest = false

	doc := New(cfg).Build([]model.Endpoint{storeEndpoint()})
	op := doc.Paths.GetOrZero("/api/users").GetOrZero("post")
	require.Equal(t, []string{"200"}, slices.Collect(op.Responses.KeysFromOldest()))
	require.Equal(t, Response{Description: "Successful response"}, op.Responses.GetOrZero("200"))
}

func TestExplicitResponses(t *testing.T) {
	e := storeEndpoint()
	e.Responses = []model.ResponseDefinition{
		{
			Status:  201,
			Headers: []model.Header{{Name: "Location", Value: "/api/users/1"}},
			Body:    map[string]any{"data": map[string]any{"id": 1, "tags": []any{"a"}}},
		},
		{Status: 204, Description: "Nothing"},
	}

	data, err := New(testConfig()).Generate([]model.Endpoint{e})
	require.NoError(t, err)
	op := dig(t, decode(t, data), "paths", "/api/users", "post")

	created := dig(t, op, "responses", "201")
	require.Equal(t, "Created", dig(t, created, "description"))
	require.Equal(t, "/api/users/1", dig(t, created, "headers", "Location", "example"))
	schema := dig(t, created, "content", "application/json", "schema", "properties", "data")
	require.Equal(t, "integer", dig(t, schema, "properties", "id", "type"))
	require.Equal(t, "string", dig(t, schema, "properties", "tags", "items", "type"))

	empty := dig(t, op, "responses", "204").(map[string]any)
	require.Equal(t, "Nothing", empty["description"])
	require.NotContains(t, empty, "content")
}

func TestSchemaOf(t *testing.T) {
	ordered := model.NewMap[any]()
	ordered.Set("z", false)
	ordered.Set("a", 2.0)

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, `{"type":"string"}`},
		{"string", "x", `{"type":"string"}`},
		{"int", 3, `{"type":"integer"}`},
		{"float", 1.5, `{"type":"number"}`},
		{"bool", true, `{"type":"boolean"}`},
		{"empty list", []any{}, `{"type":"array","items":{"type":"string"}}`},
		{"int list", []int{1, 2}, `{"type":"array","items":{"type":"integer"}}`},
		{"empty map", map[string]any{}, `{"type":"object"}`},
		{
			"map keys sorted",
			map[string]any{"b": 1, "a": "x"},
			`{"type":"object","properties":{"a":{"type":"string"},"b":{"type":"integer"}}}`,
		},
		{
			"ordered object",
			ordered,
			`{"type":"object","properties":{"z":{"type":"boolean"},"a":{"type":"number"}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(SchemaOf(tt.value))
			require.NoError(t, err)
			require.Equal(t, tt.want, string(data))
		})
	}
}

func TestIsYAML(t *testing.T) {
	require.True(t, IsYAML("openapi.yaml"))
	require.True(t, IsYAML("docs/OPENAPI.YML"))
	require.False(t, IsYAML("openapi.json"))
	require.False(t, IsYAML("openapi"))
}

func TestGenerateYAML(t *testing.T) {
	cfg := testConfig()
	cfg.Output.OpenAPI.Filename = "openapi.yaml"

	data, err := New(cfg).Generate([]model.Endpoint{storeEndpoint()})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "openapi: 3.0.3\n"))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	op := dig(t, doc, "paths", "/api/users", "post")
	require.Equal(t, "Create user", dig(t, op, "summary"))
	require.Contains(t, dig(t, op, "responses").(map[string]any), "200")
}

func TestGenerateIsStable(t *testing.T) {
	endpoints := []model.Endpoint{storeEndpoint()}
	first, err := New(testConfig()).Generate(endpoints)
	require.NoError(t, err)
	second, err := New(testConfig()).Generate(endpoints)
	require.NoError(t, err)
	require.Equal(t, first, second)
}
