package openapi

import "github.com/pb33f/libopenapi/orderedmap"

// Version is the OpenAPI version of every generated document.
const Version = "3.0.3"

// PathItem maps lower-case methods to operations.
type PathItem = orderedmap.Map[string, Operation]

// Document is the subset of an OpenAPI 3.0 document the builder emits. Keyed maps are
// ordered so paths, properties and responses keep their insertion order.
type Document struct {
	OpenAPI    string                             `json:"openapi" yaml:"openapi"`
	Info       Info                               `json:"info" yaml:"info"`
	Servers    []Server                           `json:"servers" yaml:"servers"`
	Paths      *orderedmap.Map[string, *PathItem] `json:"paths" yaml:"paths"`
	Components Components                         `json:"components" yaml:"components"`
}

type Info struct {
	Title       string `json:"title" yaml:"title"`
	Version     string `json:"version" yaml:"version"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

type Server struct {
	URL string `json:"url" yaml:"url"`
}

type Components struct {
	SecuritySchemes SecuritySchemes `json:"securitySchemes" yaml:"securitySchemes"`
}

type SecuritySchemes struct {
	BearerAuth SecurityScheme `json:"bearerAuth" yaml:"bearerAuth"`
	BasicAuth  SecurityScheme `json:"basicAuth" yaml:"basicAuth"`
	APIKeyAuth SecurityScheme `json:"apiKeyAuth" yaml:"apiKeyAuth"`
}

type SecurityScheme struct {
	Type   string `json:"type" yaml:"type"`
	Scheme string `json:"scheme,omitempty" yaml:"scheme,omitempty"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	In     string `json:"in,omitempty" yaml:"in,omitempty"`
}

type Operation struct {
	Summary     string                            `json:"summary" yaml:"summary"`
	Description string                            `json:"description" yaml:"description"`
	Tags        []string                          `json:"tags" yaml:"tags"`
	Deprecated  bool                              `json:"deprecated" yaml:"deprecated"`
	Parameters  []Parameter                       `json:"parameters" yaml:"parameters"`
	RequestBody *RequestBody                      `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
	Responses   *orderedmap.Map[string, Response] `json:"responses" yaml:"responses"`
	Security    []map[string][]string             `json:"security,omitempty" yaml:"security,omitempty"`
}

type Parameter struct {
	Name        string `json:"name" yaml:"name"`
	In          string `json:"in" yaml:"in"`
	Required    bool   `json:"required" yaml:"required"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Schema      Schema `json:"schema" yaml:"schema"`
	Example     any    `json:"example,omitempty" yaml:"example,omitempty"`
}

// Schema is an inferred JSON schema. Properties is nil unless the schema is an object
// with at least one property.
type Schema struct {
	Type        string                          `json:"type" yaml:"type"`
	Description string                          `json:"description,omitempty" yaml:"description,omitempty"`
	Items       *Schema                         `json:"items,omitempty" yaml:"items,omitempty"`
	Properties  *orderedmap.Map[string, Schema] `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required    []string                        `json:"required,omitempty" yaml:"required,omitempty"`
	Example     any                             `json:"example,omitempty" yaml:"example,omitempty"`
}

type RequestBody struct {
	Required bool                               `json:"required" yaml:"required"`
	Content  *orderedmap.Map[string, MediaType] `json:"content" yaml:"content"`
}

type MediaType struct {
	Schema  Schema `json:"schema" yaml:"schema"`
	Example any    `json:"example,omitempty" yaml:"example,omitempty"`
}

type Response struct {
	Description string                                  `json:"description" yaml:"description"`
	Headers     *orderedmap.Map[string, ResponseHeader] `json:"headers,omitempty" yaml:"headers,omitempty"`
	Content     *orderedmap.Map[string, MediaType]      `json:"content,omitempty" yaml:"content,omitempty"`
}

type ResponseHeader struct {
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Schema      Schema `json:"schema" yaml:"schema"`
	Example     any    `json:"example,omitempty" yaml:"example,omitempty"`
}
