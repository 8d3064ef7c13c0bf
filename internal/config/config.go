package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

// DefaultFile is read from the working directory when --config is not given.
const DefaultFile = "routedoc.yaml"

// Output formats.
const (
	FormatPostman = "postman"
	FormatOpenAPI = "openapi"
)

// Metadata provider names, usable in metadata.providers.
const (
	ProviderRequestRules = "request-rules"
	ProviderAnnotation   = "annotation"
	ProviderOverrides    = "overrides"
)

// Grouping strategies.
const (
	GroupByURI  = "uri"
	GroupByName = "name"
	GroupNone   = "none"
)

type Config struct {
	BaseURL   string              `koanf:"base-url"`
	Routes    string              `koanf:"routes"`
	Source    string              `koanf:"source"`
	Output    OutputConfig        `koanf:"output"`
	Scan      ScanConfig          `koanf:"scan"`
	Metadata  MetadataConfig      `koanf:"metadata"`
	Auth      AuthConfig          `koanf:"auth"`
	Headers   HeadersConfig       `koanf:"headers"`
	Overrides map[string]Override `koanf:"overrides"`
	OpenAPI   OpenAPIConfig       `koanf:"openapi"`
	Postman   PostmanConfig       `koanf:"postman"`
	Responses ResponsesConfig     `koanf:"responses"`
	Check     CheckConfig         `koanf:"check"`
}

type OutputConfig struct {
	Path         string             `koanf:"path"`
	Postman      FileOutput         `koanf:"postman"`
	OpenAPI      FileOutput         `koanf:"openapi"`
	Environments EnvironmentsOutput `koanf:"environments"`
}

type FileOutput struct {
	Enabled  bool   `koanf:"enabled"`
	Filename string `koanf:"filename"`
}

type EnvironmentsOutput struct {
	Enabled bool `koanf:"enabled"`
}

type ScanConfig struct {
	OnlyMethods       []string     `koanf:"only-methods"`
	IncludePrefixes   []string     `koanf:"include-prefixes"`
	ExcludePrefixes   []string     `koanf:"exclude-prefixes"`
	ExcludeRouteNames []string     `koanf:"exclude-route-names"`
	OnlyMiddleware    []string     `koanf:"only-middleware"`
	ExcludeMiddleware []string     `koanf:"exclude-middleware"`
	IncludeTags       []string     `koanf:"include-tags"`
	ExcludeTags       []string     `koanf:"exclude-tags"`
	IncludeNamespaces []string     `koanf:"include-namespaces"`
	ExcludeNamespaces []string     `koanf:"exclude-namespaces"`
	IncludeDomains    []string     `koanf:"include-domains"`
	ExcludeDomains    []string     `koanf:"exclude-domains"`
	RequestRules      ToggleConfig `koanf:"request-rules"`
}

type ToggleConfig struct {
	Enabled bool `koanf:"enabled"`
}

type MetadataConfig struct {
	Providers []string `koanf:"providers"`
}

type AuthConfig struct {
	Default string       `koanf:"default"`
	Bearer  BearerConfig `koanf:"bearer"`
	APIKey  APIKeyConfig `koanf:"api-key"`
	Basic   BasicConfig  `koanf:"basic"`
}

type BearerConfig struct {
	Token string `koanf:"token"`
}

type APIKeyConfig struct {
	Key   string `koanf:"key"`
	Value string `koanf:"value"`
	In    string `koanf:"in"`
}

type BasicConfig struct {
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

type HeadersConfig struct {
	Default []HeaderDef `koanf:"default"`
	JSON    []HeaderDef `koanf:"json"`
}

// HeaderDef is a configured header. Value is a pointer so that a missing value can be
// told apart from an empty one.
type HeaderDef struct {
	Name        string  `koanf:"name"`
	Value       *string `koanf:"value"`
	Required    bool    `koanf:"required"`
	Description string  `koanf:"description"`
}

// ParamDef is a configured query or body parameter.
type ParamDef struct {
	Name        string `koanf:"name"`
	Type        string `koanf:"type"`
	Required    *bool  `koanf:"required"`
	Description string `koanf:"description"`
	Example     any    `koanf:"example"`
}

// ResponseDef is a configured example response. Body falls back to Example.
type ResponseDef struct {
	Status      int         `koanf:"status"`
	Description string      `koanf:"description"`
	Headers     []HeaderDef `koanf:"headers"`
	Body        any         `koanf:"body"`
	Example     any         `koanf:"example"`
	MediaType   string      `koanf:"media-type"`
}

// Override documents one route, keyed by route name.
type Override struct {
	Summary     string        `koanf:"summary"`
	Description string        `koanf:"description"`
	Tags        []string      `koanf:"tags"`
	Auth        string        `koanf:"auth"`
	Headers     []HeaderDef   `koanf:"headers"`
	Query       []ParamDef    `koanf:"query"`
	Body        []ParamDef    `koanf:"body"`
	Responses   []ResponseDef `koanf:"responses"`
	Deprecated  *bool         `koanf:"deprecated"`
}

type OpenAPIConfig struct {
	Title       string `koanf:"title"`
	Version     string `koanf:"version"`
	Description string `koanf:"description"`
}

type PostmanConfig struct {
	Name               string                       `koanf:"name"`
	Description        string                       `koanf:"description"`
	UseBaseURLVariable bool                         `koanf:"use-base-url-variable"`
	Variables          map[string]string            `koanf:"variables"`
	Grouping           GroupingConfig               `koanf:"grouping"`
	Environment        EnvironmentConfig            `koanf:"environment"`
	Environments       map[string]map[string]string `koanf:"environments"`
}

type GroupingConfig struct {
	Enabled       bool     `koanf:"enabled"`
	Strategy      string   `koanf:"strategy"`
	NameSeparator string   `koanf:"name-separator"`
	URIDepth      int      `koanf:"uri-depth"`
	StripPrefixes []string `koanf:"strip-prefixes"`
	Fallback      string   `koanf:"fallback"`
}

type EnvironmentConfig struct {
	Name string `koanf:"name"`
}

type ResponsesConfig struct {
	AutoFromRequest    bool   `koanf:"auto-from-request"`
	DefaultStatus      int    `koanf:"default-status"`
	DefaultDescription string `koanf:"default-description"`
}

type CheckConfig struct {
	Enabled bool `koanf:"enabled"`
	Strict  bool `koanf:"strict"`
}

// BindCommonFlags binds the flags shared by commands that load configuration.
func BindCommonFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringP("config", "c", "", "Config file path (default: routedoc.yaml)")
	flags.StringP("routes", "r", "", "Route manifest file path")
	flags.String("source", "", "Directory whose Go packages are scanned for //routedoc: annotations")
	flags.StringP("output-path", "o", "", "Output directory")
	flags.String("base-url", "", "Base URL of the documented API")
	flags.StringSlice("include-prefixes", nil, "Only document routes under these path prefixes")
	flags.StringSlice("exclude-prefixes", nil, "Skip routes under these path prefixes")
	flags.StringSlice("include-tags", nil, "Tags to include (exclusive)")
	flags.StringSlice("exclude-tags", nil, "Tags to exclude")
	flags.Bool("environments", false, "Also write Postman environment files")
	flags.Bool("strict", false, "Fail when the generated OpenAPI document does not validate")
	flags.Bool("dry-run", false, "Print output without writing files")
}

// Load layers defaults, the config file, ROUTEDOC_* environment variables and changed
// flags, in that order. A non-empty formats list enables exactly those formats.
func Load(cmd *cobra.Command, formats []string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	configFile, _ := cmd.Flags().GetString("config")
	if configFile == "" {
		configFile, _ = cmd.PersistentFlags().GetString("config")
	}
	if configFile == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			configFile = DefaultFile
		}
	}

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	envMap, err := loadEnv()
	if err != nil {
		return nil, err
	}
	if len(envMap) > 0 {
		if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
			return nil, fmt.Errorf("loading environment: %w", err)
		}
	}

	flagsMap := buildFlagsMap(cmd)
	if len(flagsMap) > 0 {
		if err := k.Load(confmap.Provider(flagsMap, "."), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.SelectFormats(formats)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the built-in configuration, for callers that configure the
// generator in code.
func Default() (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// SelectFormats enables exactly the listed formats. Blank entries are ignored and an
// empty list leaves the configuration untouched.
func (c *Config) SelectFormats(formats []string) {
	var selected []string
	for _, f := range formats {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			selected = append(selected, f)
		}
	}
	if len(selected) == 0 {
		return
	}
	c.Output.Postman.Enabled = slices.Contains(selected, FormatPostman)
	c.Output.OpenAPI.Enabled = slices.Contains(selected, FormatOpenAPI)
}

func buildFlagsMap(cmd *cobra.Command) map[string]any {
	m := make(map[string]any)

	getString := func(name string) string {
		if v, err := cmd.Flags().GetString(name); err == nil && v != "" {
			return v
		}
		if v, err := cmd.PersistentFlags().GetString(name); err == nil && v != "" {
			return v
		}
		return ""
	}

	getStringSlice := func(name string) []string {
		if v, err := cmd.Flags().GetStringSlice(name); err == nil && len(v) > 0 {
			return v
		}
		if v, err := cmd.PersistentFlags().GetStringSlice(name); err == nil && len(v) > 0 {
			return v
		}
		return nil
	}

	flagChanged := func(name string) bool {
		return cmd.Flags().Changed(name) || cmd.PersistentFlags().Changed(name)
	}

	getBool := func(name string) bool {
		if v, err := cmd.Flags().GetBool(name); err == nil {
			return v
		}
		if v, err := cmd.PersistentFlags().GetBool(name); err == nil {
			return v
		}
		return false
	}

	if v := getString("routes"); v != "" {
		m["routes"] = v
	}
	if v := getString("source"); v != "" {
		m["source"] = v
	}
	if v := getString("output-path"); v != "" {
		m["output.path"] = v
	}
	if v := getString("base-url"); v != "" {
		m["base-url"] = v
	}
	if v := getStringSlice("include-prefixes"); len(v) > 0 {
		m["scan.include-prefixes"] = v
	}
	if v := getStringSlice("exclude-prefixes"); len(v) > 0 {
		m["scan.exclude-prefixes"] = v
	}
	if v := getStringSlice("include-tags"); len(v) > 0 {
		m["scan.include-tags"] = v
	}
	if v := getStringSlice("exclude-tags"); len(v) > 0 {
		m["scan.exclude-tags"] = v
	}
	if flagChanged("environments") {
		m["output.environments.enabled"] = getBool("environments")
	}
	if flagChanged("strict") {
		m["check.strict"] = getBool("strict")
	}

	return m
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Output.Path) == "" {
		return fmt.Errorf("output path is required")
	}
	if c.Output.Postman.Enabled && strings.TrimSpace(c.Output.Postman.Filename) == "" {
		return fmt.Errorf("postman filename is required")
	}
	if c.Output.OpenAPI.Enabled && strings.TrimSpace(c.Output.OpenAPI.Filename) == "" {
		return fmt.Errorf("openapi filename is required")
	}

	validAuth := map[string]bool{"": true, "bearer": true, "api_key": true, "basic": true, "none": true}
	if !validAuth[c.Auth.Default] {
		return fmt.Errorf("invalid auth mode: %s (valid: bearer, api_key, basic, none)", c.Auth.Default)
	}
	for name, o := range c.Overrides {
		if !validAuth[o.Auth] {
			return fmt.Errorf("override %s: invalid auth mode: %s (valid: bearer, api_key, basic, none)", name, o.Auth)
		}
	}

	validLocations := map[string]bool{"": true, "header": true, "query": true}
	if !validLocations[c.Auth.APIKey.In] {
		return fmt.Errorf("invalid api key location: %s (valid: header, query)", c.Auth.APIKey.In)
	}

	validStrategies := map[string]bool{"": true, GroupByURI: true, GroupByName: true, GroupNone: true}
	if !validStrategies[c.Postman.Grouping.Strategy] {
		return fmt.Errorf("invalid grouping strategy: %s (valid: uri, name, none)", c.Postman.Grouping.Strategy)
	}

	validProviders := map[string]bool{ProviderRequestRules: true, ProviderAnnotation: true, ProviderOverrides: true}
	for _, p := range c.Metadata.Providers {
		if !validProviders[p] {
			return fmt.Errorf("invalid metadata provider: %s (valid: request-rules, annotation, overrides)", p)
		}
	}

	return nil
}

// HasFormat reports whether the given output format is enabled.
func (c *Config) HasFormat(format string) bool {
	switch format {
	case FormatPostman:
		return c.Output.Postman.Enabled
	case FormatOpenAPI:
		return c.Output.OpenAPI.Enabled
	}
	return false
}
