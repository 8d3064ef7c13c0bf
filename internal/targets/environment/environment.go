// Package environment builds Postman environment files from the configured
// variable sets.
package environment

import (
	"fmt"
	"sort"
	"strings"
	"time"

	logging "github.com/ipfs/go-log/v2"

	"github.com/kolah/routedoc/internal/config"
	"github.com/kolah/routedoc/internal/targets"
)

var log = logging.Logger("routedoc/environment")

const (
	Scope      = "environment"
	ExportedBy = "routedoc"
	FileSuffix = ".postman_environment.json"

	// timeLayout matches the timestamps of Postman exports.
	timeLayout = "2006-01-02T15:04:05-07:00"
)

type Environment struct {
	Name          string  `json:"name"`
	Values        []Value `json:"values"`
	Scope         string  `json:"_postman_variable_scope"`
	ExportedAt    string  `json:"_postman_exported_at"`
	ExportedUsing string  `json:"_postman_exported_using"`
}

type Value struct {
	Key     string `json:"key"`
	Value   string `json:"value"`
	Enabled bool   `json:"enabled"`
}

// File is one rendered environment.
type File struct {
	Name     string
	Filename string
	Data     []byte
}

type Target struct {
	cfg *config.Config
	now func() time.Time
}

func New(cfg *config.Config) *Target {
	return &Target{cfg: cfg, now: time.Now}
}

// WithClock replaces the clock used for the export timestamp.
func (t *Target) WithClock(now func() time.Time) *Target {
	t.now = now
	return t
}

func (t *Target) Name() string {
	return "environments"
}

// Generate renders every environment as indented JSON, sorted by name.
func (t *Target) Generate() ([]File, error) {
	envs := t.Build()
	files := make([]File, 0, len(envs))
	for _, env := range envs {
		data, err := targets.JSON(env)
		if err != nil {
			return nil, fmt.Errorf("encoding environment %s: %w", env.Name, err)
		}
		files = append(files, File{Name: env.Name, Filename: env.Name + FileSuffix, Data: data})
	}
	return files, nil
}

// Build returns one environment per configured variable set. Without explicit sets,
// the collection variables form a single set named after postman.environment.name.
func (t *Target) Build() []Environment {
	sets := t.cfg.Postman.Environments
	if len(sets) == 0 && len(t.cfg.Postman.Variables) > 0 {
		name := t.cfg.Postman.Environment.Name
		if name == "" {
			name = "local"
		}
		sets = map[string]map[string]string{name: t.cfg.Postman.Variables}
	}

	names := make([]string, 0, len(sets))
	for name := range sets {
		if !validName(name) {
			log.Warnw("skipping environment with unusable name", "name", name)
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	exportedAt := t.now().UTC().Format(timeLayout)
	envs := make([]Environment, 0, len(names))
	for _, name := range names {
		envs = append(envs, Environment{
			Name:          name,
			Values:        values(sets[name]),
			Scope:         Scope,
			ExportedAt:    exportedAt,
			ExportedUsing: ExportedBy,
		})
	}
	return envs
}

func values(vars map[string]string) []Value {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := make([]Value, 0, len(keys))
	for _, k := range keys {
		out = append(out, Value{Key: k, Value: vars[k], Enabled: true})
	}
	return out
}

// validName rejects names that cannot be used as a file name.
func validName(name string) bool {
	return strings.TrimSpace(name) != "" && !strings.ContainsAny(name, `/\`) && name != "." && name != ".."
}
