// Package manifest reads a YAML route list exported from any router. It serves
// both the route table and the handler documentation of the listed routes.
//
//	routes:
//	  - uri: api/users
//	    methods: [POST]
//	    name: users.store
//	    action: example.com/app/users.(*Controller).Store
//	    middleware: [api, auth]
//	    doc:
//	      summary: Create user
//	      tags: [Users]
//	    rules:
//	      email: required|email
//	      role: [required, "in:admin,member"]
package manifest

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/pb33f/libopenapi/orderedmap"
	"go.yaml.in/yaml/v4"

	"github.com/kolah/routedoc/apidoc"
	"github.com/kolah/routedoc/route"
)

// Entry is one route of the manifest file.
type Entry struct {
	URI        string              `yaml:"uri"`
	Methods    []string            `yaml:"methods"`
	Name       string              `yaml:"name"`
	Action     string              `yaml:"action"`
	Middleware []string            `yaml:"middleware"`
	Host       string              `yaml:"host"`
	Doc        *apidoc.Annotation  `yaml:"doc"`
	Rules      apidoc.OrderedRules `yaml:"rules"`
}

type file struct {
	Routes []Entry `yaml:"routes"`
}

// Manifest is a route.Table and an apidoc.Reader.
type Manifest struct {
	routes      []route.Route
	annotations map[string]apidoc.Annotation
	rules       map[string]apidoc.OrderedRules
}

var rulesType = reflect.TypeFor[apidoc.OrderedRules]()

func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading route manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a manifest. Entries without an action get a synthetic handler in
// the "manifest" namespace so their doc and rules still apply.
func Parse(data []byte) (*Manifest, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing route manifest: %w", err)
	}

	m := &Manifest{
		annotations: make(map[string]apidoc.Annotation),
		rules:       make(map[string]apidoc.OrderedRules),
	}
	for i, e := range f.Routes {
		r, err := e.route(i)
		if err != nil {
			return nil, err
		}
		m.routes = append(m.routes, r)

		key := r.Handler.Action
		if _, ok := m.annotations[key]; !ok && e.Doc != nil {
			m.annotations[key] = *e.Doc
		}
		if _, ok := m.rules[key]; !ok && orderedmap.Len(e.Rules.Map) > 0 {
			m.rules[key] = e.Rules
		}
	}
	return m, nil
}

func (e Entry) route(i int) (route.Route, error) {
	uri := strings.TrimSpace(e.URI)
	if uri == "" {
		return route.Route{}, fmt.Errorf("route %d: uri is required", i)
	}
	if len(e.Methods) == 0 {
		return route.Route{}, fmt.Errorf("route %d (%s): at least one method is required", i, uri)
	}

	methods := make([]string, 0, len(e.Methods))
	for _, m := range e.Methods {
		methods = append(methods, strings.ToUpper(strings.TrimSpace(m)))
	}

	action := strings.TrimSpace(e.Action)
	if action == "" {
		action = "manifest.route" + strconv.Itoa(i)
	}

	return route.Route{
		URI:        route.NormalizeTemplate(uri),
		Methods:    methods,
		Handler:    route.ParseAction(action),
		Middleware: e.Middleware,
		Name:       e.Name,
		Host:       e.Host,
		Params:     route.ParamNames(uri),
	}, nil
}

func (m *Manifest) Routes() ([]route.Route, error) {
	return m.routes, nil
}

func (m *Manifest) Annotation(h route.Handler) (apidoc.Annotation, bool) {
	a, ok := m.annotations[h.Action]
	return a, ok
}

func (m *Manifest) Request(h route.Handler) (apidoc.RequestSpec, bool) {
	rules, ok := m.rules[h.Action]
	if !ok {
		return apidoc.RequestSpec{}, false
	}
	return apidoc.RequestSpec{
		Type: rulesType,
		New:  func() (apidoc.Rules, error) { return rules, nil },
	}, true
}
