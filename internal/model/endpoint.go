package model

import (
	"slices"

	"github.com/pb33f/libopenapi/orderedmap"
	wk8orderedmap "github.com/pb33f/ordered-map/v2"
)

// Endpoint is a finalized, filtered route ready for rendering. It is built once per
// scan and never mutated afterwards.
type Endpoint struct {
	URI         string
	Name        string
	Methods     []string
	Action      string
	Summary     string
	Description string
	Tags        []string
	Auth        AuthMode
	PathParams  []Parameter
	QueryParams []Parameter
	BodyParams  []Parameter
	Deprecated  bool
	Group       string
	Headers     []Header
	Responses   []ResponseDefinition
}

var bodyMethods = []string{"POST", "PUT", "PATCH"}

// HasBody reports whether a request with the given method carries the body params.
func (e Endpoint) HasBody(method string) bool {
	return len(e.BodyParams) > 0 && slices.Contains(bodyMethods, method)
}

// Title is the display name of the endpoint.
func (e Endpoint) Title() string {
	if e.Summary != "" {
		return e.Summary
	}
	return e.Name
}

// NewMap returns an empty map that keeps its insertion order when encoded as JSON or
// YAML. Strings are written without HTML escaping.
func NewMap[V any]() *orderedmap.Map[string, V] {
	return &orderedmap.Map[string, V]{
		OrderedMap: wk8orderedmap.New[string, V](wk8orderedmap.WithDisableHTMLEscape[string, V]()),
	}
}

// ExampleObject builds an example payload from params, in declaration order.
func ExampleObject(params []Parameter) *orderedmap.Map[string, any] {
	obj := NewMap[any]()
	for _, p := range params {
		obj.Set(p.Name, p.ExampleValue())
	}
	return obj
}
