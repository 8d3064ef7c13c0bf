package model

import (
	"fmt"

	"github.com/samber/lo"
)

// AuthMode selects the credential injection strategy for an endpoint.
type AuthMode string

const (
	AuthUnset  AuthMode = ""
	AuthBearer AuthMode = "bearer"
	AuthAPIKey AuthMode = "api_key"
	AuthBasic  AuthMode = "basic"
	AuthNone   AuthMode = "none"
)

// ParseAuthMode validates a configured auth mode. The empty string is AuthUnset.
func ParseAuthMode(s string) (AuthMode, error) {
	switch m := AuthMode(s); m {
	case AuthUnset, AuthBearer, AuthAPIKey, AuthBasic, AuthNone:
		return m, nil
	default:
		return AuthUnset, fmt.Errorf("invalid auth mode: %s (valid: bearer, api_key, basic, none)", s)
	}
}

// EndpointMetadata is the partial documentation payload produced by one provider.
// The zero value carries no opinion and is the identity element of Merge.
type EndpointMetadata struct {
	Summary     string
	Description string
	Tags        []string
	Auth        AuthMode
	Headers     []Header
	QueryParams []Parameter
	BodyParams  []Parameter
	Responses   []ResponseDefinition
	Deprecated  *bool
}

// IsEmpty reports whether m carries no opinion at all.
func (m EndpointMetadata) IsEmpty() bool {
	return m.Summary == "" && m.Description == "" && len(m.Tags) == 0 && m.Auth == AuthUnset &&
		len(m.Headers) == 0 && len(m.QueryParams) == 0 && len(m.BodyParams) == 0 &&
		len(m.Responses) == 0 && m.Deprecated == nil
}

// Merge returns m overlaid by override. Scalars from override win when set; tags are
// unioned; keyed collections are replaced per key, keeping m's order first.
func (m EndpointMetadata) Merge(override EndpointMetadata) EndpointMetadata {
	out := EndpointMetadata{
		Summary:     lo.Ternary(override.Summary != "", override.Summary, m.Summary),
		Description: lo.Ternary(override.Description != "", override.Description, m.Description),
		Tags:        mergeTags(m.Tags, override.Tags),
		Auth:        lo.Ternary(override.Auth != AuthUnset, override.Auth, m.Auth),
		Headers:     mergeKeyed(m.Headers, override.Headers, Header.Key),
		QueryParams: mergeKeyed(m.QueryParams, override.QueryParams, paramKey),
		BodyParams:  mergeKeyed(m.BodyParams, override.BodyParams, paramKey),
		Responses:   mergeKeyed(m.Responses, override.Responses, responseKey),
		Deprecated:  m.Deprecated,
	}
	if override.Deprecated != nil {
		out.Deprecated = override.Deprecated
	}
	return out
}

func paramKey(p Parameter) string { return p.Name }

func responseKey(r ResponseDefinition) int { return r.Status }

func mergeTags(base, override []string) []string {
	tags := lo.Uniq(append(append([]string{}, base...), override...))
	tags = lo.Filter(tags, func(tag string, _ int) bool { return tag != "" })
	if len(tags) == 0 {
		return nil
	}
	return tags
}

// mergeKeyed implements last-writer-wins per key with first-seen ordering.
func mergeKeyed[T any, K comparable](base, override []T, key func(T) K) []T {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	index := make(map[K]int, len(base)+len(override))
	out := make([]T, 0, len(base)+len(override))
	for _, group := range [][]T{base, override} {
		for _, item := range group {
			k := key(item)
			if i, ok := index[k]; ok {
				out[i] = item
				continue
			}
			index[k] = len(out)
			out = append(out, item)
		}
	}
	return out
}

// MergeHeaders folds header groups left to right, later groups winning per key.
func MergeHeaders(groups ...[]Header) []Header {
	var out []Header
	for _, g := range groups {
		out = mergeKeyed(out, g, Header.Key)
	}
	return out
}
