package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mim3/salesdash/internal/config"
)

// NewConfigCommand creates the config subcommand, which prints every setting
// with its effective value and origin.
func NewConfigCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show effective settings and where each came from",
		Long: `Print every known setting, its effective value, and its origin
(environment, override file, or default).

Formats:
  yaml  list of {key, value, source, env}  (default)
  json  same, as JSON
  env   SALESDASH_* assignments suitable for an override file`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := config.Get()
			if err != nil {
				return err
			}
			return writeEntries(cmd.OutOrStdout(), s.Entries(), format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format: yaml, json, or env")
	return cmd
}

func writeEntries(w io.Writer, entries []config.Entry, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "env":
		m := make(map[string]string, len(entries))
		for _, e := range entries {
			m[e.Env] = e.Value
		}
		out, err := godotenv.Marshal(m)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, out)
		return err
	}
	return fmt.Errorf("unknown format %q (want yaml, json, or env)", format)
}
