package model

import "strings"

// ParamType is the inferred scalar type of a query, path or body field.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeInteger ParamType = "integer"
	TypeFloat   ParamType = "float"
	TypeBoolean ParamType = "boolean"
	TypeArray   ParamType = "array"
)

// ParseParamType normalises a loosely written type name. Unknown names map to string.
func ParseParamType(s string) ParamType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "integer", "int":
		return TypeInteger
	case "float", "double", "number", "numeric", "decimal":
		return TypeFloat
	case "boolean", "bool":
		return TypeBoolean
	case "array":
		return TypeArray
	default:
		return TypeString
	}
}

// OpenAPIType maps the parameter type onto an OpenAPI schema type.
func (t ParamType) OpenAPIType() string {
	switch t {
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "number"
	case TypeBoolean:
		return "boolean"
	case TypeArray:
		return "array"
	default:
		return "string"
	}
}

// DefaultExample is the canonical example value for a type. Builders and the rule
// translator share it so both output formats agree.
func (t ParamType) DefaultExample() any {
	switch t {
	case TypeInteger:
		return 1
	case TypeFloat:
		return 1.0
	case TypeBoolean:
		return true
	case TypeArray:
		return []any{}
	default:
		return "string"
	}
}

// Parameter is one query, path or body field. Identity for merging is Name.
type Parameter struct {
	Name        string
	Type        ParamType
	Required    bool
	Description string
	Example     any
}

// ExampleValue returns the declared example or the default for the type.
func (p Parameter) ExampleValue() any {
	if p.Example != nil {
		return p.Example
	}
	return p.Type.DefaultExample()
}

// Header is a request or response header. Identity for merging is the lower-cased Name.
type Header struct {
	Name        string
	Value       string
	Required    bool
	Description string
}

// Key returns the case-insensitive merge key.
func (h Header) Key() string {
	return strings.ToLower(h.Name)
}

const DefaultMediaType = "application/json"

// ResponseDefinition describes one example response. Identity for merging is Status.
type ResponseDefinition struct {
	Status      int
	Description string
	Headers     []Header
	Body        any
	MediaType   string
}

// ContentType returns MediaType, defaulting to application/json.
func (r ResponseDefinition) ContentType() string {
	if r.MediaType == "" {
		return DefaultMediaType
	}
	return r.MediaType
}
