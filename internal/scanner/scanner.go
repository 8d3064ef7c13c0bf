// Package scanner turns a route table into the ordered list of documented endpoints.
package scanner

import (
	"fmt"
	"slices"
	"strings"

	logging "github.com/ipfs/go-log/v2"
	"github.com/samber/lo"

	"github.com/kolah/routedoc/internal/config"
	"github.com/kolah/routedoc/internal/model"
	"github.com/kolah/routedoc/route"
)

var log = logging.Logger("routedoc/scanner")

// Resolver supplies the merged metadata for a route.
type Resolver interface {
	Resolve(r route.Route) model.EndpointMetadata
}

type Scanner struct {
	table    route.Table
	resolver Resolver
	filter   config.ScanConfig
	grouping config.GroupingConfig
}

func New(table route.Table, resolver Resolver, filter config.ScanConfig, grouping config.GroupingConfig) *Scanner {
	return &Scanner{
		table:    table,
		resolver: resolver,
		filter:   filter,
		grouping: grouping,
	}
}

// Scan returns one endpoint per in-scope route, in table order.
func (s *Scanner) Scan() ([]model.Endpoint, error) {
	routes, err := s.table.Routes()
	if err != nil {
		return nil, fmt.Errorf("listing routes: %w", err)
	}

	var endpoints []model.Endpoint
	for _, r := range routes {
		methods := s.AllowedMethods(r.Methods)
		if len(methods) == 0 {
			continue
		}
		if reason, ok := s.admit(r); !ok {
			log.Debugw("route skipped", "uri", r.URI, "name", r.Name, "reason", reason)
			continue
		}

		// Providers place inferred params by the methods that will be documented.
		r.Methods = methods
		var md model.EndpointMetadata
		if s.resolver != nil {
			md = s.resolver.Resolve(r)
		}
		if reason, ok := s.admitTags(md.Tags); !ok {
			log.Debugw("route skipped", "uri", r.URI, "name", r.Name, "reason", reason)
			continue
		}

		endpoints = append(endpoints, s.endpoint(r, methods, md))
	}
	return endpoints, nil
}

// AllowedMethods intersects the route methods with only-methods, keeping route order.
// Without an allow-list every method but HEAD is allowed.
func (s *Scanner) AllowedMethods(methods []string) []string {
	allow := lo.Map(s.filter.OnlyMethods, func(m string, _ int) string { return strings.ToUpper(m) })
	var out []string
	for _, m := range methods {
		m = strings.ToUpper(m)
		if slices.Contains(out, m) {
			continue
		}
		if len(allow) == 0 {
			if m != "HEAD" {
				out = append(out, m)
			}
			continue
		}
		if slices.Contains(allow, m) {
			out = append(out, m)
		}
	}
	return out
}

// admit applies the predicates that do not need metadata.
func (s *Scanner) admit(r route.Route) (string, bool) {
	uri := strings.TrimLeft(r.URI, "/")
	f := s.filter

	if len(f.IncludePrefixes) > 0 && !lo.SomeBy(f.IncludePrefixes, hasPathPrefix(uri)) {
		return "not under an included prefix", false
	}
	if lo.SomeBy(f.ExcludePrefixes, hasPathPrefix(uri)) {
		return "under an excluded prefix", false
	}
	if r.Name != "" && lo.SomeBy(f.ExcludeRouteNames, func(p string) bool { return p != "" && strings.HasPrefix(r.Name, p) }) {
		return "excluded route name", false
	}
	if len(f.OnlyMiddleware) > 0 && !lo.Some(r.Middleware, f.OnlyMiddleware) {
		return "missing required middleware", false
	}
	if lo.Some(r.Middleware, f.ExcludeMiddleware) {
		return "excluded middleware", false
	}

	ns := r.Handler.Package
	nsMatch := func(p string) bool { return ns != "" && p != "" && strings.HasPrefix(ns, p) }
	if len(f.IncludeNamespaces) > 0 && !lo.SomeBy(f.IncludeNamespaces, nsMatch) {
		return "namespace not included", false
	}
	if lo.SomeBy(f.ExcludeNamespaces, nsMatch) {
		return "excluded namespace", false
	}

	hostMatch := func(d string) bool { return r.Host != "" && d != "" && strings.Contains(r.Host, d) }
	if len(f.IncludeDomains) > 0 && !lo.SomeBy(f.IncludeDomains, hostMatch) {
		return "domain not included", false
	}
	if lo.SomeBy(f.ExcludeDomains, hostMatch) {
		return "excluded domain", false
	}
	return "", true
}

func (s *Scanner) admitTags(tags []string) (string, bool) {
	if len(s.filter.IncludeTags) > 0 && !lo.Some(tags, s.filter.IncludeTags) {
		return "tag not included", false
	}
	if lo.Some(tags, s.filter.ExcludeTags) {
		return "excluded tag", false
	}
	return "", true
}

func hasPathPrefix(uri string) func(string) bool {
	return func(prefix string) bool {
		prefix = strings.Trim(prefix, "/")
		return prefix != "" && strings.HasPrefix(uri, prefix)
	}
}

func (s *Scanner) endpoint(r route.Route, methods []string, md model.EndpointMetadata) model.Endpoint {
	name := r.Name
	if name == "" {
		name = r.URI
	}

	var pathParams []model.Parameter
	for _, p := range r.Params {
		pathParams = append(pathParams, model.Parameter{Name: p, Type: model.TypeString, Required: true})
	}

	return model.Endpoint{
		URI:         r.URI,
		Name:        name,
		Methods:     methods,
		Action:      r.Handler.Action,
		Summary:     md.Summary,
		Description: md.Description,
		Tags:        md.Tags,
		Auth:        md.Auth,
		PathParams:  pathParams,
		QueryParams: md.QueryParams,
		BodyParams:  md.BodyParams,
		Deprecated:  md.Deprecated != nil && *md.Deprecated,
		Group:       s.Group(r, md.Tags),
		Headers:     md.Headers,
		Responses:   md.Responses,
	}
}

// Group resolves the bucket label of a route. The first tag always wins.
func (s *Scanner) Group(r route.Route, tags []string) string {
	if len(tags) > 0 {
		return tags[0]
	}

	g := s.grouping
	switch g.Strategy {
	case config.GroupNone:
		return ""
	case config.GroupByName:
		if r.Name != "" {
			sep := g.NameSeparator
			if sep == "" {
				sep = "."
			}
			if head, _, _ := strings.Cut(r.Name, sep); head != "" {
				return head
			}
			return r.Name
		}
	}

	uri := strings.TrimLeft(r.URI, "/")
	for _, prefix := range g.StripPrefixes {
		prefix = strings.Trim(prefix, "/")
		if prefix != "" && strings.HasPrefix(uri, prefix+"/") {
			uri = uri[len(prefix)+1:]
		}
	}

	segments := lo.Compact(strings.Split(uri, "/"))
	if len(segments) == 0 {
		return g.Fallback
	}
	depth := max(1, g.URIDepth)
	return strings.Join(segments[:min(depth, len(segments))], "/")
}
