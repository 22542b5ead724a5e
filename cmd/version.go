package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pentesthub/pentest-hub/pkg/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "version: %s\ncommit: %s\n", version.Version, version.CommitSHA)
			return nil
		},
	}
}
