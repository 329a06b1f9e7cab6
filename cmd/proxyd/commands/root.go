// Package commands wires up proxyd's cobra command tree, one file per
// subcommand, following the layout this lineage's CLI uses.
package commands

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is stamped at build time via -ldflags; "dev" is the fallback for
// a plain `go build`.
var Version = "dev"

// NewRoot builds the proxyd root command with every subcommand attached.
// Running proxyd with no subcommand is equivalent to `proxyd serve`.
func NewRoot() *cobra.Command {
	log := logrus.New()

	root := &cobra.Command{
		Use:           "proxyd",
		Short:         "A forwarding HTTP proxy with client-driven byte-range splicing",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, log)
		},
	}

	root.AddCommand(newServeCmd(log))
	root.AddCommand(newVersionCmd())
	root.AddCommand(newProbeCmd())

	return root
}
