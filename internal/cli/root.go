package cli

import (
	"fmt"

	logging "github.com/ipfs/go-log/v2"
	"github.com/spf13/cobra"

	"github.com/kolah/routedoc/apidoc"
	"github.com/kolah/routedoc/route"
)

// Options supplies the route table and handler documentation of an application that
// embeds the command. Both are optional for the standalone binary, which reads a
// route manifest instead.
type Options struct {
	Table  route.Table
	Reader apidoc.Reader
}

func RootCmd() *cobra.Command {
	return NewRootCmd(Options{})
}

func NewRootCmd(opts Options) *cobra.Command {
	root := &cobra.Command{
		Use:     "routedoc",
		Short:   "routedoc - Postman and OpenAPI documents from your route table",
		Version: "1.0.0",

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			if level == "" {
				return nil
			}
			if err := logging.SetLogLevel("*", level); err != nil {
				return fmt.Errorf("invalid log level: %s", level)
			}
			return nil
		},

		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	root.AddCommand(GenerateCommand(opts))

	return root
}
