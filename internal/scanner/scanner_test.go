package scanner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kolah/routedoc/internal/config"
	"github.com/kolah/routedoc/internal/model"
	"github.com/kolah/routedoc/route"
)

type stubResolver map[string]model.EndpointMetadata

func (s stubResolver) Resolve(r route.Route) model.EndpointMetadata {
	return s[r.URI]
}

type countingResolver struct {
	calls   []string
	methods [][]string
}

func (c *countingResolver) Resolve(r route.Route) model.EndpointMetadata {
	c.calls = append(c.calls, r.URI)
	c.methods = append(c.methods, r.Methods)
	return model.EndpointMetadata{}
}

type failingTable struct{}

func (failingTable) Routes() ([]route.Route, error) {
	return nil, errors.New("router not ready")
}

func defaultFilter() config.ScanConfig {
	return config.ScanConfig{
		OnlyMethods:       []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		ExcludePrefixes:   []string{"telescope", "_debugbar"},
		ExcludeRouteNames: []string{"telescope.", "debugbar."},
		ExcludeMiddleware: []string{"web"},
	}
}

func uriGrouping() config.GroupingConfig {
	return config.GroupingConfig{
		Enabled:       true,
		Strategy:      config.GroupByURI,
		NameSeparator: ".",
		URIDepth:      1,
		StripPrefixes: []string{"api"},
		Fallback:      "General",
	}
}

func TestScanBuildsEndpoints(t *testing.T) {
	table := route.Static{
		{
			URI:     "api/users/{id}",
			Methods: []string{"GET", "HEAD"},
			Name:    "users.show",
			Params:  []string{"id"},
			Handler: route.ParseAction("example.com/app/users.(*Controller).Show"),
		},
		{
			URI:     "/api/users",
			Methods: []string{"POST"},
			Handler: route.ParseAction("example.com/app/users.(*Controller).Store"),
		},
	}
	deprecated := true
	resolver := stubResolver{
		"/api/users": {Summary: "Create user", Auth: model.AuthAPIKey, Deprecated: &deprecated},
	}

	endpoints, err := New(table, resolver, defaultFilter(), uriGrouping()).Scan()
	require.NoError(t, err)
	require.Len(t, endpoints, 2)

	show := endpoints[0]
	require.Equal(t, "users.show", show.Name)
	require.Equal(t, []string{"GET"}, show.Methods)
	require.Equal(t, "users", show.Group)
	require.Equal(t, "example.com/app/users.(*Controller).Show", show.Action)
	require.Equal(t, []model.Parameter{{Name: "id", Type: model.TypeString, Required: true}}, show.PathParams)
	require.False(t, show.Deprecated)

	store := endpoints[1]
	require.Equal(t, "/api/users", store.Name)
	require.Equal(t, "Create user", store.Summary)
	require.Equal(t, model.AuthAPIKey, store.Auth)
	require.True(t, store.Deprecated)
	require.Equal(t, "users", store.Group)
}

func TestScanExcludedPrefixNeverResolves(t *testing.T) {
	table := route.Static{
		{URI: "telescope/requests", Methods: []string{"GET"}, Name: "reports.index"},
		{URI: "api/users", Methods: []string{"GET"}},
		{URI: "api/head-only", Methods: []string{"HEAD"}},
	}
	resolver := &countingResolver{}

	endpoints, err := New(table, resolver, defaultFilter(), uriGrouping()).Scan()
	require.NoError(t, err)
	require.Len(t, endpoints, 1)
	require.Equal(t, "api/users", endpoints[0].URI)
	require.Equal(t, []string{"api/users"}, resolver.calls)
}

func TestScanResolvesWithAllowedMethods(t *testing.T) {
	table := route.Static{
		{URI: "api/users", Methods: []string{"GET", "HEAD", "OPTIONS"}},
		{URI: "api/orders", Methods: []string{"GET", "POST"}},
	}
	resolver := &countingResolver{}
	filter := defaultFilter()
	filter.OnlyMethods = []string{"GET"}

	_, err := New(table, resolver, filter, uriGrouping()).Scan()
	require.NoError(t, err)
	require.Equal(t, [][]string{{"GET"}, {"GET"}}, resolver.methods)
	require.Equal(t, []string{"GET", "HEAD", "OPTIONS"}, table[0].Methods)
}

func TestScanPropagatesTableError(t *testing.T) {
	_, err := New(failingTable{}, nil, defaultFilter(), uriGrouping()).Scan()
	require.ErrorContains(t, err, "router not ready")
}

func TestAllowedMethods(t *testing.T) {
	s := New(nil, nil, config.ScanConfig{OnlyMethods: []string{"get", "POST"}}, uriGrouping())
	require.Equal(t, []string{"GET", "POST"}, s.AllowedMethods([]string{"GET", "HEAD", "post", "DELETE", "GET"}))
	require.Empty(t, s.AllowedMethods([]string{"DELETE"}))

	s = New(nil, nil, config.ScanConfig{}, uriGrouping())
	require.Equal(t, []string{"GET", "OPTIONS"}, s.AllowedMethods([]string{"GET", "HEAD", "OPTIONS"}))
	require.Empty(t, s.AllowedMethods([]string{"HEAD"}))
}

func TestFilters(t *testing.T) {
	users := route.Route{
		URI:        "/api/users",
		Methods:    []string{"GET"},
		Name:       "users.index",
		Middleware: []string{"auth", "api"},
		Host:       "api.example.com",
		Handler:    route.ParseAction("example.com/app/users.(*Controller).Index"),
	}
	inline := route.Route{URI: "health", Methods: []string{"GET"}, Handler: route.ParseAction("main.main.func1")}

	tests := []struct {
		name   string
		filter config.ScanConfig
		tags   []string
		route  route.Route
		want   bool
	}{
		{name: "no filters", route: users, want: true},
		{name: "include prefix", filter: config.ScanConfig{IncludePrefixes: []string{"/api/"}}, route: users, want: true},
		{name: "include prefix miss", filter: config.ScanConfig{IncludePrefixes: []string{"v2"}}, route: users, want: false},
		{name: "exclude prefix", filter: config.ScanConfig{ExcludePrefixes: []string{"api"}}, route: users, want: false},
		{name: "empty exclude prefix ignored", filter: config.ScanConfig{ExcludePrefixes: []string{"", "/"}}, route: users, want: true},
		{name: "exclude route name", filter: config.ScanConfig{ExcludeRouteNames: []string{"users."}}, route: users, want: false},
		{name: "only middleware", filter: config.ScanConfig{OnlyMiddleware: []string{"api"}}, route: users, want: true},
		{name: "only middleware miss", filter: config.ScanConfig{OnlyMiddleware: []string{"admin"}}, route: users, want: false},
		{name: "exclude middleware", filter: config.ScanConfig{ExcludeMiddleware: []string{"auth"}}, route: users, want: false},
		{name: "include tag", filter: config.ScanConfig{IncludeTags: []string{"Users"}}, tags: []string{"Users"}, route: users, want: true},
		{name: "include tag miss", filter: config.ScanConfig{IncludeTags: []string{"Admin"}}, tags: []string{"Users"}, route: users, want: false},
		{name: "exclude tag", filter: config.ScanConfig{ExcludeTags: []string{"Users"}}, tags: []string{"Users"}, route: users, want: false},
		{name: "include namespace", filter: config.ScanConfig{IncludeNamespaces: []string{"example.com/app"}}, route: users, want: true},
		{name: "exclude namespace", filter: config.ScanConfig{ExcludeNamespaces: []string{"example.com/app/users"}}, route: users, want: false},
		{name: "inline never excluded by namespace", filter: config.ScanConfig{ExcludeNamespaces: []string{"main"}}, route: inline, want: true},
		{name: "inline never included by namespace", filter: config.ScanConfig{IncludeNamespaces: []string{"main"}}, route: inline, want: false},
		{name: "include domain", filter: config.ScanConfig{IncludeDomains: []string{"example.com"}}, route: users, want: true},
		{name: "exclude domain", filter: config.ScanConfig{ExcludeDomains: []string{"api."}}, route: users, want: false},
		{name: "no host never excluded by domain", filter: config.ScanConfig{ExcludeDomains: []string{"api."}}, route: inline, want: true},
		{name: "no host never included by domain", filter: config.ScanConfig{IncludeDomains: []string{"api."}}, route: inline, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := stubResolver{tt.route.URI: {Tags: tt.tags}}
			endpoints, err := New(route.Static{tt.route}, resolver, tt.filter, uriGrouping()).Scan()
			require.NoError(t, err)
			require.Equal(t, tt.want, len(endpoints) == 1)
		})
	}
}

func TestGroup(t *testing.T) {
	tests := []struct {
		name     string
		grouping func(g *config.GroupingConfig)
		route    route.Route
		tags     []string
		want     string
	}{
		{name: "uri strips prefix", route: route.Route{URI: "api/users/{id}"}, want: "users"},
		{name: "first tag wins", route: route.Route{URI: "api/users"}, tags: []string{"Accounts", "Users"}, want: "Accounts"},
		{name: "none", grouping: func(g *config.GroupingConfig) { g.Strategy = config.GroupNone }, route: route.Route{URI: "api/users"}, want: ""},
		{name: "name", grouping: func(g *config.GroupingConfig) { g.Strategy = config.GroupByName }, route: route.Route{URI: "api/users", Name: "users.index"}, want: "users"},
		{name: "name without separator", grouping: func(g *config.GroupingConfig) { g.Strategy = config.GroupByName }, route: route.Route{URI: "x", Name: "dashboard"}, want: "dashboard"},
		{name: "name custom separator", grouping: func(g *config.GroupingConfig) {
			g.Strategy = config.GroupByName
			g.NameSeparator = ":"
		}, route: route.Route{URI: "x", Name: "admin:users.index"}, want: "admin"},
		{name: "name falls back to uri", grouping: func(g *config.GroupingConfig) { g.Strategy = config.GroupByName }, route: route.Route{URI: "/api/orders/{id}"}, want: "orders"},
		{name: "depth", grouping: func(g *config.GroupingConfig) { g.URIDepth = 2 }, route: route.Route{URI: "/api/v1/users/{id}"}, want: "v1/users"},
		{name: "depth beyond segments", grouping: func(g *config.GroupingConfig) { g.URIDepth = 5 }, route: route.Route{URI: "api/users"}, want: "users"},
		{name: "zero depth is one", grouping: func(g *config.GroupingConfig) { g.URIDepth = 0 }, route: route.Route{URI: "api/users/{id}"}, want: "users"},
		{name: "prefix must be whole segment", route: route.Route{URI: "apiary/bees"}, want: "apiary"},
		{name: "fallback", route: route.Route{URI: "/"}, want: "General"},
		{name: "prefix only", route: route.Route{URI: "api"}, want: "api"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := uriGrouping()
			if tt.grouping != nil {
				tt.grouping(&g)
			}
			s := New(nil, nil, config.ScanConfig{}, g)
			require.Equal(t, tt.want, s.Group(tt.route, tt.tags))
		})
	}
}

func TestScanIsDeterministic(t *testing.T) {
	table := route.Static{
		{URI: "api/b", Methods: []string{"GET"}},
		{URI: "api/a", Methods: []string{"POST", "PUT"}},
	}
	s := New(table, stubResolver{}, defaultFilter(), uriGrouping())
	first, err := s.Scan()
	require.NoError(t, err)
	second, err := s.Scan()
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, "api/b", first[0].URI)
}
