package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// set at build time via ldflags
var (
	version = "dev"
	commit  = "none"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the ramblings version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "ramblings %s (%s)\n", version, commit)
			return nil
		},
	}
}
