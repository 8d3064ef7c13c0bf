// Package muxroute exposes a gorilla/mux router as a route.Table.
package muxroute

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/kolah/routedoc/route"
)

// anyMethods is reported for routes registered without a method matcher.
var anyMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
	http.MethodPatch, http.MethodDelete, http.MethodOptions,
}

// Option configures a Table.
type Option func(*Table)

// WithMiddleware supplies middleware identifiers per route. gorilla/mux does not
// expose the middleware attached through Router.Use, so callers that filter on
// middleware describe it here.
func WithMiddleware(fn func(r *mux.Route) []string) Option {
	return func(t *Table) {
		t.middleware = fn
	}
}

// Table walks a gorilla/mux router.
type Table struct {
	router     *mux.Router
	middleware func(r *mux.Route) []string
}

// New returns a route.Table reading routes from r.
func New(r *mux.Router, opts ...Option) *Table {
	t := &Table{router: r}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Routes walks the router in registration order. Routes without a path template or
// handler (subrouter mounts) are skipped.
func (t *Table) Routes() ([]route.Route, error) {
	var routes []route.Route
	err := t.router.Walk(func(r *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		h := r.GetHandler()
		if h == nil {
			return nil
		}
		tpl, err := r.GetPathTemplate()
		if err != nil {
			return nil
		}

		declared, err := r.GetMethods()
		if err != nil {
			declared = anyMethods
		}
		methods := make([]string, len(declared))
		for i, m := range declared {
			methods[i] = strings.ToUpper(m)
		}

		host, _ := r.GetHostTemplate()

		rt := route.Route{
			URI:     route.NormalizeTemplate(tpl),
			Methods: methods,
			Handler: route.HandlerOf(h),
			Name:    r.GetName(),
			Host:    host,
			Params:  route.ParamNames(tpl),
		}
		if t.middleware != nil {
			rt.Middleware = t.middleware(r)
		}
		routes = append(routes, rt)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return routes, nil
}
