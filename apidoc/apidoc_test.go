package apidoc

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v4"

	"github.com/kolah/routedoc/route"
)

type createUser struct {
	Strict bool
}

func (c createUser) Rules() map[string]any {
	return map[string]any{"email": "required|email"}
}

type users struct{}

func (u *users) Store(w http.ResponseWriter, r *http.Request) {}

func (u *users) Index(w http.ResponseWriter, r *http.Request) {}

func storeTyped(w http.ResponseWriter, r *http.Request, id int, req createUser) {}

func TestRegistry(t *testing.T) {
	u := &users{}
	reg := NewRegistry()

	h := reg.HandlerFunc(u.Store, Annotation{Summary: "A", Auth: "api_key"}, WithRequestType[createUser]())
	require.NotNil(t, h)
	reg.Handle(u.Store, Annotation{Summary: "ignored"})

	a, ok := reg.Annotation(route.HandlerOf(http.HandlerFunc(u.Store)))
	require.True(t, ok)
	require.Equal(t, "A", a.Summary)

	spec, ok := reg.Request(route.HandlerOf(u.Store))
	require.True(t, ok)
	require.Equal(t, reflect.TypeFor[createUser](), spec.Type)
	require.Nil(t, spec.New)

	_, ok = reg.Annotation(route.HandlerOf(u.Index))
	require.False(t, ok)

	reg.Handle(func(w http.ResponseWriter, r *http.Request) {}, Annotation{Summary: "inline"})
	require.Equal(t, 1, reg.Len())
}

func TestRegistryDetectsRequestParameter(t *testing.T) {
	reg := NewRegistry()
	reg.Handle(storeTyped, Annotation{})

	spec, ok := reg.Request(route.HandlerOf(storeTyped))
	require.True(t, ok)
	require.Equal(t, reflect.TypeFor[createUser](), spec.Type)
}

func TestRequestOptions(t *testing.T) {
	u := &users{}
	reg := NewRegistry()
	reg.Handle(u.Store, Annotation{}, WithRequest(StaticRules{"name": "required"}))

	spec, ok := reg.Request(route.HandlerOf(u.Store))
	require.True(t, ok)
	rules, err := spec.New()
	require.NoError(t, err)
	require.Equal(t, map[string]any{"name": "required"}, rules.Rules())

	reg = NewRegistry()
	reg.Handle(u.Store, Annotation{}, WithRequestFunc(func() (createUser, error) {
		return createUser{}, errors.New("boom")
	}))
	spec, ok = reg.Request(route.HandlerOf(u.Store))
	require.True(t, ok)
	_, err = spec.New()
	require.EqualError(t, err, "boom")
}

func TestRequestTypeOf(t *testing.T) {
	typ, ok := RequestTypeOf(storeTyped)
	require.True(t, ok)
	require.Equal(t, "createUser", typ.Name())

	_, ok = RequestTypeOf((&users{}).Store)
	require.False(t, ok)
	_, ok = RequestTypeOf("nope")
	require.False(t, ok)

	require.True(t, IsPrimitive(reflect.TypeFor[int]()))
	require.False(t, IsPrimitive(reflect.TypeFor[*http.Request]()))
	require.True(t, ImplementsRules(reflect.TypeFor[*createUser]()))
}

func TestIn(t *testing.T) {
	in := In{"active", "inactive"}
	require.Equal(t, []string{"active", "inactive"}, in.Values())
}

func TestOrderedRules(t *testing.T) {
	rules := NewOrderedRules()
	rules.Set("zip", "required")
	rules.Set("city", []string{"string"})
	require.Equal(t, []string{"zip", "city"}, rules.FieldOrder())
	require.Equal(t, map[string]any{"zip": "required", "city": []string{"string"}}, rules.Rules())

	var decoded struct {
		Rules OrderedRules `yaml:"rules"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("rules:\n  name: required\n  age: integer\n"), &decoded))
	require.Equal(t, []string{"name", "age"}, decoded.Rules.FieldOrder())

	var zero OrderedRules
	require.Empty(t, zero.Rules())
	require.Nil(t, zero.FieldOrder())
}

type fixed map[string]Annotation

func (f fixed) Annotation(h route.Handler) (Annotation, bool) {
	a, ok := f[h.Action]
	return a, ok
}

func (f fixed) Request(route.Handler) (RequestSpec, bool) {
	return RequestSpec{}, false
}

func TestChainFirstHitWins(t *testing.T) {
	h := route.ParseAction("example.com/app.(*Users).Store")
	chain := Chain{nil, fixed{}, fixed{h.Action: {Summary: "second"}}, fixed{h.Action: {Summary: "third"}}}

	a, ok := chain.Annotation(h)
	require.True(t, ok)
	require.Equal(t, "second", a.Summary)

	_, ok = chain.Request(h)
	require.False(t, ok)
}

func TestParseDirectives(t *testing.T) {
	a, err := ParseDirectives([]string{
		"summary: Create user",
		"tags: [Users]",
		"body:",
		"  - {name: email, type: string, required: true, example: user@example.com}",
		"responses:",
		"  - status: 201",
		"    body: {id: 1}",
	})
	require.NoError(t, err)
	require.Equal(t, "Create user", a.Summary)
	require.Equal(t, []string{"Users"}, a.Tags)
	require.Equal(t, []Param{{Name: "email", Type: "string", Required: true, Example: "user@example.com"}}, a.Body)
	require.Len(t, a.Responses, 1)
	require.Equal(t, 201, a.Responses[0].Status)

	_, err = ParseDirectives([]string{"summary: [unclosed"})
	require.Error(t, err)
}

const handlersSrc = `package handlers

import "net/http"

type Users struct{}

// Store creates a user.
//
//routedoc: summary: Create user
//routedoc: auth: api_key
//routedoc: body:
//routedoc:   - {name: email, type: string, required: true}
func (u *Users) Store(w http.ResponseWriter, r *http.Request) {}

// Index is undocumented.
func (u Users) Index(w http.ResponseWriter, r *http.Request) {}

//routedoc: tags: [Health]
func Ping(w http.ResponseWriter, r *http.Request) {}

//routedoc: summary: [broken
func Broken(w http.ResponseWriter, r *http.Request) {}
`

func TestLoadComments(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/app\n\ngo 1.22\n"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "handlers"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "handlers", "handlers.go"), []byte(handlersSrc), 0644))

	c, err := LoadComments(dir, "./...")
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())

	a, ok := c.Annotation(route.ParseAction("example.com/app/handlers.(*Users).Store-fm"))
	require.True(t, ok)
	require.Equal(t, "Create user", a.Summary)
	require.Equal(t, "api_key", a.Auth)
	require.Equal(t, []Param{{Name: "email", Type: "string", Required: true}}, a.Body)

	a, ok = c.Annotation(route.ParseAction("example.com/app/handlers.Ping"))
	require.True(t, ok)
	require.Equal(t, []string{"Health"}, a.Tags)

	_, ok = c.Annotation(route.ParseAction("example.com/app/handlers.Users.Index"))
	require.False(t, ok)
	_, ok = c.Annotation(route.ParseAction("example.com/app/handlers.Broken"))
	require.False(t, ok)
	_, ok = c.Request(route.ParseAction("example.com/app/handlers.Ping"))
	require.False(t, ok)
}
