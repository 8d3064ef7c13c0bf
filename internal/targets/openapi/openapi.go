// Package openapi builds OpenAPI 3.0.3 documents.
package openapi

import (
	"bytes"
	"fmt"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/pb33f/libopenapi/orderedmap"
	"go.yaml.in/yaml/v4"

	"github.com/kolah/routedoc/internal/config"
	"github.com/kolah/routedoc/internal/model"
	"github.com/kolah/routedoc/internal/targets"
)

const (
	schemeBearer = "bearerAuth"
	schemeBasic  = "basicAuth"
	schemeAPIKey = "apiKeyAuth"
)

type Target struct {
	cfg *config.Config
}

func New(cfg *config.Config) *Target {
	return &Target{cfg: cfg}
}

func (t *Target) Name() string {
	return config.FormatOpenAPI
}

// Generate renders the document as indented JSON, or as YAML when the configured
// filename ends in .yaml or .yml.
func (t *Target) Generate(endpoints []model.Endpoint) ([]byte, error) {
	doc := t.Build(endpoints)
	if IsYAML(t.cfg.Output.OpenAPI.Filename) {
		return YAML(doc)
	}
	data, err := targets.JSON(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding openapi document: %w", err)
	}
	return data, nil
}

// Build assembles the document. Endpoints sharing a URI share one path item, with one
// operation per method. A later endpoint replaces an earlier operation on the same
// path and method.
func (t *Target) Build(endpoints []model.Endpoint) *Document {
	paths := model.NewMap[*PathItem]()
	for _, e := range endpoints {
		path := "/" + strings.TrimLeft(e.URI, "/")
		item, ok := paths.Get(path)
		if !ok {
			item = model.NewMap[Operation]()
			paths.Set(path, item)
		}
		for _, method := range e.Methods {
			item.Set(strings.ToLower(method), t.operation(e, method))
		}
	}

	return &Document{
		OpenAPI: Version,
		Info: Info{
			Title:       t.cfg.OpenAPI.Title,
			Version:     t.cfg.OpenAPI.Version,
			Description: t.cfg.OpenAPI.Description,
		},
		Servers:    []Server{{URL: t.cfg.BaseURL}},
		Paths:      paths,
		Components: Components{SecuritySchemes: t.securitySchemes()},
	}
}

func (t *Target) securitySchemes() SecuritySchemes {
	in := t.cfg.Auth.APIKey.In
	if in == "" {
		in = "header"
	}
	return SecuritySchemes{
		BearerAuth: SecurityScheme{Type: "http", Scheme: "bearer"},
		BasicAuth:  SecurityScheme{Type: "http", Scheme: "basic"},
		APIKeyAuth: SecurityScheme{Type: "apiKey", Name: t.cfg.Auth.APIKey.Key, In: in},
	}
}

func (t *Target) operation(e model.Endpoint, method string) Operation {
	op := Operation{
		Summary:     e.Title(),
		Description: e.Description,
		Tags:        append([]string{}, e.Tags...),
		Deprecated:  e.Deprecated,
		Parameters:  parameters(e),
		Responses:   t.responses(e),
	}
	if e.HasBody(method) {
		op.RequestBody = requestBody(e.BodyParams)
	}
	if scheme := securityScheme(targets.ResolveAuth(e, t.cfg.Auth.Default)); scheme != "" {
		op.Security = []map[string][]string{{scheme: {}}}
	}
	return op
}

func securityScheme(mode model.AuthMode) string {
	switch mode {
	case model.AuthBearer:
		return schemeBearer
	case model.AuthBasic:
		return schemeBasic
	case model.AuthAPIKey:
		return schemeAPIKey
	default:
		return ""
	}
}

func parameters(e model.Endpoint) []Parameter {
	params := make([]Parameter, 0, len(e.Headers)+len(e.PathParams)+len(e.QueryParams))
	for _, h := range e.Headers {
		p := Parameter{
			Name:        h.Name,
			In:          "header",
			Required:    h.Required,
			Description: h.Description,
			Schema:      Schema{Type: "string"},
		}
		if h.Value != "" {
			p.Example = h.Value
		}
		params = append(params, p)
	}
	for _, p := range e.PathParams {
		params = append(params, parameter(p, "path"))
	}
	for _, p := range e.QueryParams {
		params = append(params, parameter(p, "query"))
	}
	return params
}

func parameter(p model.Parameter, in string) Parameter {
	return Parameter{
		Name:        p.Name,
		In:          in,
		Required:    p.Required || in == "path",
		Description: p.Description,
		Schema:      Schema{Type: p.Type.OpenAPIType()},
		Example:     p.Example,
	}
}

func requestBody(params []model.Parameter) *RequestBody {
	schema := Schema{Type: "object"}
	props := model.NewMap[Schema]()
	for _, p := range params {
		props.Set(p.Name, Schema{
			Type:        p.Type.OpenAPIType(),
			Description: p.Description,
			Example:     p.ExampleValue(),
		})
		if p.Required {
			schema.Required = append(schema.Required, p.Name)
		}
	}
	schema.Properties = nonEmpty(props)

	content := model.NewMap[MediaType]()
	content.Set(model.DefaultMediaType, MediaType{
		Schema:  schema,
		Example: model.ExampleObject(params),
	})
	return &RequestBody{Required: true, Content: content}
}

func (t *Target) responses(e model.Endpoint) *orderedmap.Map[string, Response] {
	out := model.NewMap[Response]()
	defs := targets.Responses(e, t.cfg.Responses)
	if len(defs) == 0 {
		out.Set("200", Response{Description: "Successful response"})
		return out
	}

	for _, def := range defs {
		r := Response{Description: def.Description}
		if r.Description == "" {
			r.Description = targets.StatusName(def.Status)
		}
		if len(def.Headers) > 0 {
			r.Headers = model.NewMap[ResponseHeader]()
			for _, h := range def.Headers {
				header := ResponseHeader{Description: h.Description, Schema: Schema{Type: "string"}}
				if h.Value != "" {
					header.Example = h.Value
				}
				r.Headers.Set(h.Name, header)
			}
		}
		if def.Body != nil {
			r.Content = model.NewMap[MediaType]()
			r.Content.Set(def.ContentType(), MediaType{
				Schema:  SchemaOf(def.Body),
				Example: def.Body,
			})
		}
		out.Set(strconv.Itoa(def.Status), r)
	}
	return out
}

// SchemaOf infers a schema from an example value. Objects recurse into their
// properties and arrays take their item schema from the first element.
func SchemaOf(v any) Schema {
	switch val := v.(type) {
	case nil:
		return Schema{Type: "string"}
	case *orderedmap.Map[string, any]:
		if val == nil {
			return Schema{Type: "string"}
		}
		props := model.NewMap[Schema]()
		for k, item := range val.FromOldest() {
			props.Set(k, SchemaOf(item))
		}
		return Schema{Type: "object", Properties: nonEmpty(props)}
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		values := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			values[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
		}
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		props := model.NewMap[Schema]()
		for _, k := range keys {
			props.Set(k, SchemaOf(values[k]))
		}
		return Schema{Type: "object", Properties: nonEmpty(props)}
	case reflect.Slice, reflect.Array:
		items := Schema{Type: "string"}
		if rv.Len() > 0 {
			items = SchemaOf(rv.Index(0).Interface())
		}
		return Schema{Type: "array", Items: &items}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Schema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return Schema{Type: "number"}
	case reflect.Bool:
		return Schema{Type: "boolean"}
	case reflect.Pointer:
		if rv.IsNil() {
			return Schema{Type: "string"}
		}
		return SchemaOf(rv.Elem().Interface())
	default:
		return Schema{Type: "string"}
	}
}

// IsYAML reports whether filename asks for YAML output.
func IsYAML(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// YAML encodes the document as block-style YAML with two-space indentation. Ordered
// maps keep their key order.
func YAML(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding openapi yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding openapi yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func nonEmpty[V any](m *orderedmap.Map[string, V]) *orderedmap.Map[string, V] {
	if m.Len() == 0 {
		return nil
	}
	return m
}
