package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kolah/routedoc/apidoc"
	"github.com/kolah/routedoc/internal/config"
	"github.com/kolah/routedoc/internal/generator"
	"github.com/kolah/routedoc/internal/manifest"
	"github.com/kolah/routedoc/route"
)

var errNoRoutes = errors.New("no route table: pass --routes or set routes in the config file")

func GenerateCommand(opts Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate Postman and OpenAPI documentation files",
		Args:  cobra.NoArgs,
		RunE:  runGenerate(opts),
	}

	config.BindCommonFlags(cmd)
	cmd.Flags().StringSlice("format", nil, "Comma-separated formats to generate: postman, openapi (default: as configured)")

	return cmd
}

func runGenerate(opts Options) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		formats, _ := cmd.Flags().GetStringSlice("format")
		cfg, err := config.Load(cmd, formats)
		if err != nil {
			return err
		}

		table, reader, err := sources(cfg, opts)
		if err != nil {
			return err
		}

		gen := generator.New(cfg, table, reader)
		outputs, err := gen.Generate()
		if err != nil {
			return err
		}

		for _, out := range outputs {
			for _, w := range out.Warnings {
				cmd.PrintErrf("Warning: %s: %s\n", out.Filename, w)
			}
		}

		dryRun, _ := cmd.Flags().GetBool("dry-run")
		if dryRun {
			for _, out := range outputs {
				cmd.Printf("// %s\n%s\n", out.Filename, out.Content)
			}
			return nil
		}

		written, err := generator.Write(cfg.Output.Path, outputs)
		if err != nil {
			return err
		}

		for _, w := range written {
			cmd.Printf("%s generated: %s\n", strings.ToUpper(w.Format), w.Path)
		}
		if len(written) == 0 {
			cmd.PrintErrln("No output generated. Check your configuration.")
		}

		return nil
	}
}

// sources resolves the route table and the documentation readers. A configured
// route manifest replaces the embedded table; readers are consulted embedded
// first, then the manifest, then doc-comment directives.
func sources(cfg *config.Config, opts Options) (route.Table, apidoc.Reader, error) {
	table := opts.Table
	chain := apidoc.Chain{opts.Reader}

	if cfg.Routes != "" {
		m, err := manifest.Load(cfg.Routes)
		if err != nil {
			return nil, nil, err
		}
		table = m
		chain = append(chain, m)
	}
	if table == nil {
		return nil, nil, errNoRoutes
	}

	if cfg.Source != "" {
		comments, err := apidoc.LoadComments(cfg.Source)
		if err != nil {
			return nil, nil, fmt.Errorf("reading doc comments: %w", err)
		}
		chain = append(chain, comments)
	}

	return table, chain, nil
}
