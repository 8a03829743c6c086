package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mim3/salesdash/internal/config"
	"github.com/mim3/salesdash/internal/health"
	"github.com/mim3/salesdash/internal/paths"
)

// NewPathsCommand creates the paths subcommand.
func NewPathsCommand() *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Show the resolved install mode and directories",
		Long: `Print the install mode, base directory, data directory, database
file, and log directory this process would use.  Directories are created as
a side effect of resolution.

With --check, also prove the data and log directories are writable and exit
non-zero when they are not.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rp, err := config.ResolvedPaths()
			if err != nil {
				return err
			}
			if err := writePaths(cmd.OutOrStdout(), rp); err != nil {
				return err
			}
			if !check {
				return nil
			}
			rep := health.Check(context.Background(), nil, rp, Version)
			for _, p := range rep.Probes {
				fmt.Fprintf(cmd.OutOrStdout(), "%-9s %s %s\n", p.Name, p.Status, p.Error)
			}
			if !rep.OK() {
				return fmt.Errorf("health check failed")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "verify the directories are writable")
	return cmd
}

func writePaths(w io.Writer, rp *paths.ResolvedPaths) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rp); err != nil {
		return err
	}
	return enc.Close()
}
