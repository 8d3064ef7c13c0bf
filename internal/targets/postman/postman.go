// Package postman builds Postman v2.1 collections.
package postman

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/kolah/routedoc/internal/config"
	"github.com/kolah/routedoc/internal/metadata"
	"github.com/kolah/routedoc/internal/model"
	"github.com/kolah/routedoc/internal/targets"
)

const (
	varBaseURL = "base_url"
	varToken   = "token"
	varAPIKey  = "api_key"
)

type Target struct {
	cfg *config.Config
}

func New(cfg *config.Config) *Target {
	return &Target{cfg: cfg}
}

func (t *Target) Name() string {
	return config.FormatPostman
}

// Generate renders the collection as indented JSON.
func (t *Target) Generate(endpoints []model.Endpoint) ([]byte, error) {
	c, err := t.Build(endpoints)
	if err != nil {
		return nil, err
	}
	return targets.JSON(c)
}

// Build assembles the collection. Endpoints are bucketed into folders by group unless
// grouping is disabled; each method of an endpoint becomes its own request.
func (t *Target) Build(endpoints []model.Endpoint) (*Collection, error) {
	items, err := t.items(endpoints)
	if err != nil {
		return nil, err
	}
	return &Collection{
		Info: Info{
			Name:        t.cfg.Postman.Name,
			Description: t.cfg.Postman.Description,
			Schema:      SchemaURL,
		},
		Item:     items,
		Variable: t.variables(),
	}, nil
}

func (t *Target) items(endpoints []model.Endpoint) ([]Item, error) {
	if !t.cfg.Postman.Grouping.Enabled {
		return t.requests(endpoints)
	}

	groups := make(map[string][]model.Endpoint)
	for _, e := range endpoints {
		g := e.Group
		if g == "" {
			g = t.cfg.Postman.Grouping.Fallback
		}
		groups[g] = append(groups[g], e)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	items := make([]Item, 0, len(names))
	for _, name := range names {
		children, err := t.requests(groups[name])
		if err != nil {
			return nil, err
		}
		items = append(items, Item{Name: name, Item: children})
	}
	return items, nil
}

func (t *Target) requests(endpoints []model.Endpoint) ([]Item, error) {
	items := []Item{}
	for _, e := range endpoints {
		for _, method := range e.Methods {
			item, err := t.item(e, method)
			if err != nil {
				return nil, fmt.Errorf("building %s %s: %w", method, e.URI, err)
			}
			items = append(items, item)
		}
	}
	return items, nil
}

func (t *Target) item(e model.Endpoint, method string) (Item, error) {
	hasBody := e.HasBody(method)
	req := Request{
		Method:      method,
		Header:      t.headers(e, hasBody),
		URL:         t.url(e),
		Description: description(e),
		Auth:        t.auth(e),
	}
	if hasBody {
		raw, err := prettyJSON(model.ExampleObject(e.BodyParams))
		if err != nil {
			return Item{}, err
		}
		req.Body = &Body{Mode: "raw", Raw: raw}
	}

	item := Item{Name: e.Title(), Request: &req}
	for _, r := range targets.Responses(e, t.cfg.Responses) {
		resp, err := response(req, r)
		if err != nil {
			return Item{}, err
		}
		item.Response = append(item.Response, resp)
	}
	return item, nil
}

func description(e model.Endpoint) string {
	if e.Summary != "" && e.Description != "" {
		return e.Summary + "\n\n" + e.Description
	}
	if e.Description != "" {
		return e.Description
	}
	return e.Summary
}

func (t *Target) baseURL() string {
	if t.cfg.Postman.UseBaseURLVariable {
		return placeholder(varBaseURL)
	}
	return t.cfg.BaseURL
}

func (t *Target) url(e model.Endpoint) URL {
	uri := strings.Trim(e.URI, "/")
	u := URL{
		Raw:      strings.TrimRight(t.baseURL(), "/") + "/" + uri,
		Path:     []string{},
		Variable: []PathVar{},
		Query:    []QueryParam{},
	}
	for _, seg := range strings.Split(uri, "/") {
		if seg != "" {
			u.Path = append(u.Path, seg)
		}
	}
	for _, p := range e.PathParams {
		u.Variable = append(u.Variable, PathVar{Key: p.Name, Value: p.ExampleValue()})
	}
	for _, p := range e.QueryParams {
		u.Query = append(u.Query, QueryParam{
			Key:         p.Name,
			Value:       p.ExampleValue(),
			Disabled:    !p.Required,
			Description: p.Description,
		})
	}

	apiKey := t.cfg.Auth.APIKey
	if targets.ResolveAuth(e, t.cfg.Auth.Default) == model.AuthAPIKey && apiKey.In == "query" {
		u.Query = append(u.Query, QueryParam{Key: apiKey.Key, Value: t.credential(apiKey.Value, varAPIKey)})
	}
	return u
}

func (t *Target) headers(e model.Endpoint, hasBody bool) []Header {
	groups := [][]model.Header{metadata.Headers(t.cfg.Headers.Default)}
	if hasBody {
		groups = append(groups, metadata.Headers(t.cfg.Headers.JSON))
	}
	groups = append(groups, e.Headers)

	out := []Header{}
	for _, h := range model.MergeHeaders(groups...) {
		out = append(out, Header{Key: h.Name, Value: h.Value, Disabled: !h.Required, Description: h.Description})
	}
	return out
}

func (t *Target) auth(e model.Endpoint) *Auth {
	a := t.cfg.Auth
	switch targets.ResolveAuth(e, a.Default) {
	case model.AuthBearer:
		return &Auth{Type: "bearer", Bearer: []Attribute{
			{Key: "token", Value: t.credential(a.Bearer.Token, varToken), Type: "string"},
		}}
	case model.AuthAPIKey:
		return &Auth{Type: "apikey", APIKey: []Attribute{
			{Key: "key", Value: a.APIKey.Key, Type: "string"},
			{Key: "value", Value: t.credential(a.APIKey.Value, varAPIKey), Type: "string"},
			{Key: "in", Value: a.APIKey.In, Type: "string"},
		}}
	case model.AuthBasic:
		return &Auth{Type: "basic", Basic: []Attribute{
			{Key: "username", Value: a.Basic.Username, Type: "string"},
			{Key: "password", Value: a.Basic.Password, Type: "string"},
		}}
	}
	return nil
}

// credential returns value, or a {{variable}} placeholder when value is empty and the
// collection declares that variable.
func (t *Target) credential(value, variable string) string {
	if value != "" {
		return value
	}
	if _, ok := t.cfg.Postman.Variables[variable]; ok {
		return placeholder(variable)
	}
	return ""
}

func (t *Target) variables() []Variable {
	vars := make(map[string]string, len(t.cfg.Postman.Variables)+1)
	for k, v := range t.cfg.Postman.Variables {
		if k != "" {
			vars[k] = v
		}
	}
	if t.cfg.Postman.UseBaseURLVariable && vars[varBaseURL] == "" {
		vars[varBaseURL] = t.cfg.BaseURL
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []Variable
	for _, k := range keys {
		out = append(out, Variable{Key: k, Value: vars[k]})
	}
	return out
}

func response(req Request, r model.ResponseDefinition) (Response, error) {
	body, err := responseBody(r.Body)
	if err != nil {
		return Response{}, err
	}

	contentType := r.ContentType()
	headers := []Header{}
	for _, h := range model.MergeHeaders([]model.Header{{Name: "Content-Type", Value: contentType}}, r.Headers) {
		headers = append(headers, Header{Key: h.Name, Value: h.Value, Description: h.Description})
	}

	name := r.Description
	if name == "" {
		name = targets.StatusName(r.Status)
	}
	preview := "text"
	if strings.Contains(contentType, "json") {
		preview = "json"
	}

	return Response{
		Name:            name,
		OriginalRequest: req,
		Status:          targets.StatusName(r.Status),
		Code:            r.Status,
		PreviewLanguage: preview,
		Header:          headers,
		Body:            body,
	}, nil
}

func responseBody(body any) (string, error) {
	switch b := body.(type) {
	case nil:
		return "", nil
	case string:
		return b, nil
	default:
		return prettyJSON(b)
	}
}

func prettyJSON(v any) (string, error) {
	data, err := targets.JSON(v)
	if err != nil {
		return "", err
	}
	return string(bytes.TrimSuffix(data, []byte("\n"))), nil
}

func placeholder(name string) string {
	return "{{" + name + "}}"
}
