// Package cli holds the cobra command tree for the salesdash binary.
package cli

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags.
var Version = "dev"

// NewRootCommand creates the root command with every subcommand attached.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "salesdash",
		Short: "Local sales dashboard",
		Long: `salesdash runs the sales dashboard on this machine.

Settings come from SALESDASH_* environment variables, then the override
file (<base_dir>/.env or $SALESDASH_CONFIG_FILE), then built-in defaults.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewConfigCommand())
	cmd.AddCommand(NewPathsCommand())
	return cmd
}
