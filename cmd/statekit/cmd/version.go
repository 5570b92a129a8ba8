package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-drift/statekit/cmd/statekit/internal/script"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "statekit version %s (built %s), scenario format %s\n",
				Version, BuildTime, script.SupportedMajor)
			return nil
		},
	}
}
