// Package echoroute exposes an echo instance as a route.Table.
package echoroute

import (
	"cmp"
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kolah/routedoc/route"
)

var methodOrder = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch,
	http.MethodDelete, http.MethodOptions, http.MethodConnect, http.MethodTrace,
}

// Option configures a Table.
type Option func(*Table)

// WithNames assigns route names by path, as registered with echo ("/users/:id").
// Echo stores the handler's function name in Route.Name unless the caller
// overwrites it, so names are best supplied here.
func WithNames(names map[string]string) Option {
	return func(t *Table) {
		t.names = names
	}
}

// WithMiddleware supplies middleware identifiers per route; echo does not expose
// the middleware attached to a route.
func WithMiddleware(fn func(r *echo.Route) []string) Option {
	return func(t *Table) {
		t.middleware = fn
	}
}

// WithHost binds every route of the table to a host pattern.
func WithHost(host string) Option {
	return func(t *Table) {
		t.host = host
	}
}

// Table reads the routes of an echo instance.
type Table struct {
	echo       *echo.Echo
	names      map[string]string
	middleware func(r *echo.Route) []string
	host       string
}

// New returns a route.Table reading routes from e.
func New(e *echo.Echo, opts ...Option) *Table {
	t := &Table{echo: e}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Routes returns one route per path and handler, sorted by path. Echo keeps routes in
// a map, so registration order is not available. Internal not-found routes are skipped.
func (t *Table) Routes() ([]route.Route, error) {
	echoRoutes := slices.Clone(t.echo.Routes())
	slices.SortStableFunc(echoRoutes, func(a, b *echo.Route) int {
		return cmp.Or(
			cmp.Compare(a.Path, b.Path),
			cmp.Compare(rank(a.Method), rank(b.Method)),
			cmp.Compare(a.Name, b.Name),
		)
	})

	var routes []route.Route
	index := make(map[string]int)
	for _, r := range echoRoutes {
		method := strings.ToUpper(r.Method)
		if !slices.Contains(methodOrder, method) {
			continue
		}

		h, name := identify(r.Name)
		if n, ok := t.names[r.Path]; ok {
			name = n
		}

		key := r.Path + "\x00" + r.Name
		if i, ok := index[key]; ok {
			routes[i].Methods = append(routes[i].Methods, method)
			continue
		}

		tpl := Template(r.Path)
		rt := route.Route{
			URI:     tpl,
			Methods: []string{method},
			Handler: h,
			Name:    name,
			Host:    t.host,
			Params:  route.ParamNames(tpl),
		}
		if t.middleware != nil {
			rt.Middleware = t.middleware(r)
		}
		index[key] = len(routes)
		routes = append(routes, rt)
	}
	return routes, nil
}

// identify splits echo's Route.Name into a handler identity or a route name. Runtime
// function names carry a package path; anything else was set by the caller.
func identify(name string) (route.Handler, string) {
	h := route.ParseAction(name)
	if !h.Inline && (strings.Contains(h.Package, "/") || h.Package == "main") {
		return h, ""
	}
	if h.Inline && strings.Contains(name, "/") {
		return h, ""
	}
	return route.Handler{Inline: true}, name
}

// Template converts echo path syntax to a route template: ":id" becomes "{id}" and a
// trailing "*" becomes "{wildcard}".
func Template(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if strings.HasPrefix(s, ":") && len(s) > 1 {
			segments[i] = "{" + s[1:] + "}"
		}
	}
	return route.NormalizeTemplate(strings.Join(segments, "/"))
}

func rank(method string) int {
	if i := slices.Index(methodOrder, method); i >= 0 {
		return i
	}
	return len(methodOrder)
}
