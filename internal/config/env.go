package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment override, e.g. ROUTEDOC_BASE_URL.
const EnvPrefix = "ROUTEDOC"

// envOverrides lists the settings that can be changed from the environment. Unset
// variables leave their pointer nil so they do not mask the config file.
type envOverrides struct {
	BaseURL            *string `envconfig:"BASE_URL"`
	OutputPath         *string `envconfig:"OUTPUT_PATH"`
	PostmanEnabled     *bool   `envconfig:"POSTMAN_ENABLED"`
	PostmanFilename    *string `envconfig:"POSTMAN_FILENAME"`
	OpenAPIEnabled     *bool   `envconfig:"OPENAPI_ENABLED"`
	OpenAPIFilename    *string `envconfig:"OPENAPI_FILENAME"`
	AuthDefault        *string `envconfig:"AUTH_DEFAULT"`
	BearerToken        *string `envconfig:"BEARER_TOKEN"`
	APIKeyName         *string `envconfig:"API_KEY_NAME"`
	APIKeyValue        *string `envconfig:"API_KEY_VALUE"`
	APIKeyIn           *string `envconfig:"API_KEY_IN"`
	BasicUser          *string `envconfig:"BASIC_USER"`
	BasicPass          *string `envconfig:"BASIC_PASS"`
	OpenAPITitle       *string `envconfig:"OPENAPI_TITLE"`
	OpenAPIVersion     *string `envconfig:"OPENAPI_VERSION"`
	OpenAPIDescription *string `envconfig:"OPENAPI_DESCRIPTION"`
	PostmanName        *string `envconfig:"POSTMAN_NAME"`
	UseBaseURLVariable *bool   `envconfig:"USE_BASE_URL_VARIABLE"`
	GroupingEnabled    *bool   `envconfig:"GROUPING_ENABLED"`
	GroupingStrategy   *string `envconfig:"GROUPING_STRATEGY"`
	GroupingDepth      *int    `envconfig:"GROUPING_URI_DEPTH"`
	GroupingFallback   *string `envconfig:"GROUPING_FALLBACK"`
}

func loadEnv() (map[string]any, error) {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	return env.flatten(), nil
}

func (e envOverrides) flatten() map[string]any {
	m := make(map[string]any)
	set := func(key string, v any) {
		switch p := v.(type) {
		case *string:
			if p != nil {
				m[key] = *p
			}
		case *bool:
			if p != nil {
				m[key] = *p
			}
		case *int:
			if p != nil {
				m[key] = *p
			}
		}
	}

	set("base-url", e.BaseURL)
	set("output.path", e.OutputPath)
	set("output.postman.enabled", e.PostmanEnabled)
	set("output.postman.filename", e.PostmanFilename)
	set("output.openapi.enabled", e.OpenAPIEnabled)
	set("output.openapi.filename", e.OpenAPIFilename)
	set("auth.default", e.AuthDefault)
	set("auth.bearer.token", e.BearerToken)
	set("auth.api-key.key", e.APIKeyName)
	set("auth.api-key.value", e.APIKeyValue)
	set("auth.api-key.in", e.APIKeyIn)
	set("auth.basic.username", e.BasicUser)
	set("auth.basic.password", e.BasicPass)
	set("openapi.title", e.OpenAPITitle)
	set("openapi.version", e.OpenAPIVersion)
	set("openapi.description", e.OpenAPIDescription)
	set("postman.name", e.PostmanName)
	set("postman.use-base-url-variable", e.UseBaseURLVariable)
	set("postman.grouping.enabled", e.GroupingEnabled)
	set("postman.grouping.strategy", e.GroupingStrategy)
	set("postman.grouping.uri-depth", e.GroupingDepth)
	set("postman.grouping.fallback", e.GroupingFallback)
	return m
}
