package commands

import (
	"github.com/spf13/cobra"
)

// NewVersionCommand prints the build stamped in by the linker.
func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI build",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return renderProperties(cmd.OutOrStdout(), map[string]interface{}{
				"version": version,
				"commit":  commit,
				"built":   date,
			})
		},
	}
}
