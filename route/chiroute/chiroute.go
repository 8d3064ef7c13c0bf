// Package chiroute exposes a chi router as a route.Table.
package chiroute

import (
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kolah/routedoc/route"
)

// methodOrder fixes the order of methods reported for one pattern; chi keeps
// endpoints in a map.
var methodOrder = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch,
	http.MethodDelete, http.MethodOptions, http.MethodConnect, http.MethodTrace,
}

// Option configures a Table.
type Option func(*Table)

// WithNames assigns route names by pattern, since chi routes are unnamed.
func WithNames(names map[string]string) Option {
	return func(t *Table) {
		t.names = names
	}
}

// WithHost binds every route of the table to a host pattern.
func WithHost(host string) Option {
	return func(t *Table) {
		t.host = host
	}
}

// Table walks a chi router.
type Table struct {
	routes chi.Routes
	names  map[string]string
	host   string
}

// New returns a route.Table reading routes from r.
func New(r chi.Routes, opts ...Option) *Table {
	t := &Table{routes: r}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Routes collapses chi's per-method walk into one route per pattern and handler.
// chi.Walk already unwraps inline middleware chains created with With.
func (t *Table) Routes() ([]route.Route, error) {
	var routes []route.Route
	index := make(map[string]int)

	err := chi.Walk(t.routes, func(method, pattern string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
		var mw []string
		for _, m := range middlewares {
			if name := route.FuncName(m); name != "" {
				mw = append(mw, name)
			}
		}

		h := route.HandlerOf(handler)
		key := pattern + "\x00" + h.Action
		if i, ok := index[key]; ok {
			routes[i].Methods = append(routes[i].Methods, strings.ToUpper(method))
			return nil
		}

		index[key] = len(routes)
		routes = append(routes, route.Route{
			URI:        route.NormalizeTemplate(pattern),
			Methods:    []string{strings.ToUpper(method)},
			Handler:    h,
			Middleware: mw,
			Name:       t.names[pattern],
			Host:       t.host,
			Params:     route.ParamNames(pattern),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range routes {
		slices.SortStableFunc(routes[i].Methods, func(a, b string) int {
			return rank(a) - rank(b)
		})
	}
	return routes, nil
}

func rank(method string) int {
	if i := slices.Index(methodOrder, method); i >= 0 {
		return i
	}
	return len(methodOrder)
}
