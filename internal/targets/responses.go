package targets

import (
	"strconv"

	"github.com/pb33f/libopenapi/orderedmap"

	"github.com/kolah/routedoc/internal/config"
	"github.com/kolah/routedoc/internal/model"
)

// Responses returns the example responses of an endpoint. Without declared responses
// and with auto-from-request enabled, a single response echoing the request body (or
// query) example is synthesized. The result may be empty.
func Responses(e model.Endpoint, cfg config.ResponsesConfig) []model.ResponseDefinition {
	if len(e.Responses) > 0 || !cfg.AutoFromRequest {
		return e.Responses
	}

	var example *orderedmap.Map[string, any]
	switch {
	case len(e.BodyParams) > 0:
		example = model.ExampleObject(e.BodyParams)
	case len(e.QueryParams) > 0:
		example = model.ExampleObject(e.QueryParams)
	default:
		return nil
	}

	status := cfg.DefaultStatus
	if status <= 0 {
		status = 200
	}
	description := cfg.DefaultDescription
	if description == "" {
		description = StatusName(status)
	}
	return []model.ResponseDefinition{{
		Status:      status,
		Description: description,
		Body:        example,
		MediaType:   model.DefaultMediaType,
	}}
}

var statusNames = map[int]string{
	200: "OK",
	201: "Created",
	202: "Accepted",
	204: "No Content",
	400: "Bad Request",
	401: "Unauthorized",
	403: "Forbidden",
	404: "Not Found",
	422: "Unprocessable Entity",
	500: "Server Error",
}

// StatusName is the display name of common status codes, "Status N" otherwise.
func StatusName(status int) string {
	if name, ok := statusNames[status]; ok {
		return name
	}
	return "Status " + strconv.Itoa(status)
}

// ResolveAuth returns the endpoint auth mode, or the configured default when unset.
// An unset default means no auth.
func ResolveAuth(e model.Endpoint, def string) model.AuthMode {
	if e.Auth != model.AuthUnset {
		return e.Auth
	}
	if mode, err := model.ParseAuthMode(def); err == nil && mode != model.AuthUnset {
		return mode
	}
	return model.AuthNone
}
