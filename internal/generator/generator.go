// Package generator wires the scanner, the document builders and the file writer
// into one generation run.
package generator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	logging "github.com/ipfs/go-log/v2"

	"github.com/kolah/routedoc/apidoc"
	"github.com/kolah/routedoc/internal/config"
	"github.com/kolah/routedoc/internal/loader"
	"github.com/kolah/routedoc/internal/metadata"
	"github.com/kolah/routedoc/internal/model"
	"github.com/kolah/routedoc/internal/scanner"
	"github.com/kolah/routedoc/internal/targets/environment"
	"github.com/kolah/routedoc/internal/targets/openapi"
	"github.com/kolah/routedoc/internal/targets/postman"
	"github.com/kolah/routedoc/route"
)

var log = logging.Logger("routedoc/generator")

// FormatEnvironment labels environment outputs.
const FormatEnvironment = "environment"

var (
	ErrOutputPathEmpty = errors.New("output path is not configured")
	ErrFilenameEmpty   = errors.New("output filename cannot be empty")
)

// Output is one rendered document.
type Output struct {
	Format   string
	Filename string
	Content  []byte
	// Warnings holds problems found by reading the document back.
	Warnings []string
}

// Written is one file on disk.
type Written struct {
	Format string
	Path   string
}

type Generator struct {
	config *config.Config
	table  route.Table
	reader apidoc.Reader
	now    func() time.Time
}

// New returns a generator documenting table. reader may be nil, in which case only
// the configured overrides contribute metadata.
func New(cfg *config.Config, table route.Table, reader apidoc.Reader) *Generator {
	return &Generator{
		config: cfg,
		table:  table,
		reader: reader,
		now:    time.Now,
	}
}

// WithClock replaces the clock stamped into environment files.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Endpoints scans the route table.
func (g *Generator) Endpoints() ([]model.Endpoint, error) {
	resolver, err := metadata.FromConfig(g.config, g.reader)
	if err != nil {
		return nil, fmt.Errorf("configuring metadata providers: %w", err)
	}
	endpoints, err := scanner.New(g.table, resolver, g.config.Scan, g.config.Postman.Grouping).Scan()
	if err != nil {
		return nil, fmt.Errorf("scanning routes: %w", err)
	}
	log.Debugw("scanned routes", "endpoints", len(endpoints))
	return endpoints, nil
}

// Generate renders every enabled document without touching the disk.
func (g *Generator) Generate() ([]Output, error) {
	if err := g.checkOutputs(); err != nil {
		return nil, err
	}

	endpoints, err := g.Endpoints()
	if err != nil {
		return nil, err
	}

	var outputs []Output

	if g.config.HasFormat(config.FormatPostman) {
		content, err := postman.New(g.config).Generate(endpoints)
		if err != nil {
			return nil, fmt.Errorf("generating postman collection: %w", err)
		}
		outputs = append(outputs, Output{
			Format:   config.FormatPostman,
			Filename: g.config.Output.Postman.Filename,
			Content:  content,
		})
	}

	if g.config.HasFormat(config.FormatOpenAPI) {
		content, err := openapi.New(g.config).Generate(endpoints)
		if err != nil {
			return nil, fmt.Errorf("generating openapi document: %w", err)
		}
		out := Output{
			Format:   config.FormatOpenAPI,
			Filename: g.config.Output.OpenAPI.Filename,
			Content:  content,
		}
		if g.config.Check.Enabled {
			warnings, err := g.check(content)
			if err != nil {
				return nil, err
			}
			out.Warnings = warnings
		}
		outputs = append(outputs, out)
	}

	if g.config.Output.Environments.Enabled {
		files, err := environment.New(g.config).WithClock(g.now).Generate()
		if err != nil {
			return nil, fmt.Errorf("generating environments: %w", err)
		}
		for _, f := range files {
			outputs = append(outputs, Output{
				Format:   FormatEnvironment,
				Filename: f.Filename,
				Content:  f.Data,
			})
		}
	}

	return outputs, nil
}

// Run generates every enabled document and writes it below the output path.
func (g *Generator) Run() ([]Written, error) {
	outputs, err := g.Generate()
	if err != nil {
		return nil, err
	}
	return Write(g.config.Output.Path, outputs)
}

func (g *Generator) checkOutputs() error {
	if strings.TrimSpace(g.config.Output.Path) == "" {
		return ErrOutputPathEmpty
	}
	if g.config.HasFormat(config.FormatPostman) && strings.TrimSpace(g.config.Output.Postman.Filename) == "" {
		return fmt.Errorf("%s: %w", config.FormatPostman, ErrFilenameEmpty)
	}
	if g.config.HasFormat(config.FormatOpenAPI) && strings.TrimSpace(g.config.Output.OpenAPI.Filename) == "" {
		return fmt.Errorf("%s: %w", config.FormatOpenAPI, ErrFilenameEmpty)
	}
	return nil
}

// check reads the OpenAPI document back. Problems are warnings unless strict
// checking is configured.
func (g *Generator) check(content []byte) ([]string, error) {
	result, err := loader.Load(content)
	if err != nil {
		return nil, fmt.Errorf("checking openapi document: %w", err)
	}
	log.Debugw("openapi document read back", "version", result.Version, "warnings", len(result.Warnings))
	for _, w := range result.Warnings {
		log.Warnw("openapi document check", "problem", w)
	}
	if g.config.Check.Strict && len(result.Warnings) > 0 {
		return nil, fmt.Errorf("openapi document check failed: %s", strings.Join(result.Warnings, "; "))
	}
	return result.Warnings, nil
}

// Write creates dir and writes every output into it. The first failure aborts the
// run; files already written stay on disk.
func Write(dir string, outputs []Output) ([]Written, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, ErrOutputPathEmpty
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	written := make([]Written, 0, len(outputs))
	for _, out := range outputs {
		name := strings.TrimLeft(out.Filename, `/\`)
		if name == "" {
			return written, fmt.Errorf("%s: %w", out.Format, ErrFilenameEmpty)
		}
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return written, fmt.Errorf("creating output directory: %w", err)
		}
		if err := os.WriteFile(path, out.Content, 0644); err != nil {
			return written, fmt.Errorf("writing %s: %w", path, err)
		}
		written = append(written, Written{Format: out.Format, Path: path})
	}
	return written, nil
}
