package config

// Defaults returns the built-in configuration as flat koanf keys.
func Defaults() map[string]any {
	return map[string]any{
		"base-url": "http://localhost",

		"output.path":                 "docs/api",
		"output.postman.enabled":      true,
		"output.postman.filename":     "collection.json",
		"output.openapi.enabled":      true,
		"output.openapi.filename":     "openapi.json",
		"output.environments.enabled": false,

		"scan.only-methods": []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		"scan.exclude-prefixes": []string{
			"_ignition", "telescope", "horizon", "_debugbar", "debugbar",
			"__clockwork", "clockwork", "log-viewer",
		},
		"scan.exclude-route-names": []string{
			"debugbar.", "log-viewer.", "clockwork.", "telescope.", "horizon.", "ignition.",
		},
		"scan.exclude-middleware":    []string{"web"},
		"scan.request-rules.enabled": true,
		"metadata.providers":         []string{ProviderRequestRules, ProviderAnnotation, ProviderOverrides},

		"auth.default":       "bearer",
		"auth.api-key.key":   "X-API-KEY",
		"auth.api-key.value": "",
		"auth.api-key.in":    "header",

		"headers.default": []map[string]any{
			{"name": "Accept", "value": "application/json", "required": true},
		},
		"headers.json": []map[string]any{
			{"name": "Content-Type", "value": "application/json", "required": true},
		},

		"openapi.title":       "API Documentation",
		"openapi.version":     "1.0.0",
		"openapi.description": "",

		"postman.name":                    "API Collection",
		"postman.description":             "",
		"postman.use-base-url-variable":   true,
		"postman.variables.token":         "",
		"postman.variables.api_key":       "",
		"postman.grouping.enabled":        true,
		"postman.grouping.strategy":       GroupByURI,
		"postman.grouping.name-separator": ".",
		"postman.grouping.uri-depth":      1,
		"postman.grouping.strip-prefixes": []string{"api"},
		"postman.grouping.fallback":       "General",
		"postman.environment.name":        "local",

		"responses.auto-from-request":   true,
		"responses.default-status":      200,
		"responses.default-description": "OK",

		"check.enabled": true,
		"check.strict":  false,
	}
}
