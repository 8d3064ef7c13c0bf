// Package routedoc generates a Postman collection, an OpenAPI 3.0.3 document and
// Postman environments from an application's route table.
//
// Applications that want to document their live router embed the command:
//
//	reg := apidoc.NewRegistry()
//	r := mux.NewRouter()
//	r.HandleFunc("/api/users", reg.HandlerFunc(users.Store, apidoc.Annotation{Summary: "Create user"})).
//		Methods("POST").Name("users.store")
//
//	if len(os.Args) > 1 && os.Args[1] == "docs" {
//		cmd := routedoc.Command(muxroute.New(r), reg)
//		cmd.SetArgs(append([]string{"generate"}, os.Args[2:]...))
//		_ = cmd.Execute()
//	}
//
// Generate does the same without a command line.
package routedoc

import (
	"github.com/spf13/cobra"

	"github.com/kolah/routedoc/apidoc"
	"github.com/kolah/routedoc/internal/cli"
	"github.com/kolah/routedoc/internal/config"
	"github.com/kolah/routedoc/internal/generator"
	"github.com/kolah/routedoc/route"
)

type (
	Config  = config.Config
	Written = generator.Written
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() (*Config, error) {
	return config.Default()
}

// Command returns the routedoc root command bound to table and reader. A route
// manifest passed with --routes still takes precedence over table.
func Command(table route.Table, reader apidoc.Reader) *cobra.Command {
	return cli.NewRootCmd(cli.Options{Table: table, Reader: reader})
}

// Generate validates cfg, scans table and writes every enabled document.
func Generate(cfg *Config, table route.Table, reader apidoc.Reader) ([]Written, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return generator.New(cfg, table, reader).Run()
}
