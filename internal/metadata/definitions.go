package metadata

import (
	"github.com/kolah/routedoc/apidoc"
	"github.com/kolah/routedoc/internal/config"
	"github.com/kolah/routedoc/internal/model"
)

// Definition mappers drop malformed entries one at a time and keep the rest.

func parseAuth(s, source string) model.AuthMode {
	mode, err := model.ParseAuthMode(s)
	if err != nil {
		log.Debugw("ignoring auth mode", "source", source, "error", err)
		return model.AuthUnset
	}
	return mode
}

// FromAnnotation maps a handler annotation onto metadata.
func FromAnnotation(a apidoc.Annotation) model.EndpointMetadata {
	md := model.EndpointMetadata{
		Summary:     a.Summary,
		Description: a.Description,
		Tags:        a.Tags,
		Auth:        parseAuth(a.Auth, "annotation"),
		Headers:     annotationHeaders(a.Headers),
		QueryParams: annotationParams(a.Query),
		BodyParams:  annotationParams(a.Body),
		Responses:   annotationResponses(a.Responses),
		Deprecated:  a.Deprecated,
	}
	return md
}

func annotationHeaders(defs []apidoc.Header) []model.Header {
	var out []model.Header
	for _, d := range defs {
		if d.Name == "" || d.Value == nil {
			continue
		}
		out = append(out, model.Header{Name: d.Name, Value: *d.Value, Required: d.Required, Description: d.Description})
	}
	return out
}

func annotationParams(defs []apidoc.Param) []model.Parameter {
	var out []model.Parameter
	for _, d := range defs {
		if d.Name == "" || d.Type == "" {
			continue
		}
		out = append(out, model.Parameter{
			Name:        d.Name,
			Type:        model.ParseParamType(d.Type),
			Required:    d.Required,
			Description: d.Description,
			Example:     d.Example,
		})
	}
	return out
}

func annotationResponses(defs []apidoc.Response) []model.ResponseDefinition {
	var out []model.ResponseDefinition
	for _, d := range defs {
		if d.Status <= 0 {
			continue
		}
		body := d.Body
		if body == nil {
			body = d.Example
		}
		out = append(out, model.ResponseDefinition{
			Status:      d.Status,
			Description: d.Description,
			Headers:     annotationHeaders(d.Headers),
			Body:        body,
			MediaType:   d.MediaType,
		})
	}
	return out
}

// FromOverride maps a configured override onto metadata.
func FromOverride(o config.Override) model.EndpointMetadata {
	return model.EndpointMetadata{
		Summary:     o.Summary,
		Description: o.Description,
		Tags:        o.Tags,
		Auth:        parseAuth(o.Auth, "override"),
		Headers:     Headers(o.Headers),
		QueryParams: params(o.Query),
		BodyParams:  params(o.Body),
		Responses:   responses(o.Responses),
		Deprecated:  o.Deprecated,
	}
}

// Headers maps configured headers, skipping entries without a name or value.
func Headers(defs []config.HeaderDef) []model.Header {
	var out []model.Header
	for _, d := range defs {
		if d.Name == "" || d.Value == nil {
			continue
		}
		out = append(out, model.Header{Name: d.Name, Value: *d.Value, Required: d.Required, Description: d.Description})
	}
	return out
}

func params(defs []config.ParamDef) []model.Parameter {
	var out []model.Parameter
	for _, d := range defs {
		if d.Name == "" || d.Type == "" || d.Required == nil {
			continue
		}
		out = append(out, model.Parameter{
			Name:        d.Name,
			Type:        model.ParseParamType(d.Type),
			Required:    *d.Required,
			Description: d.Description,
			Example:     d.Example,
		})
	}
	return out
}

func responses(defs []config.ResponseDef) []model.ResponseDefinition {
	var out []model.ResponseDefinition
	for _, d := range defs {
		if d.Status <= 0 {
			continue
		}
		body := d.Body
		if body == nil {
			body = d.Example
		}
		out = append(out, model.ResponseDefinition{
			Status:      d.Status,
			Description: d.Description,
			Headers:     Headers(d.Headers),
			Body:        body,
			MediaType:   d.MediaType,
		})
	}
	return out
}
