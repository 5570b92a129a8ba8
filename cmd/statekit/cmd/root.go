// Package cmd implements the statekit CLI commands.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/go-drift/statekit/cmd/statekit/internal/config"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

var (
	envFile string
	cfg     *config.Config
)

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "statekit",
		Short: "Run state container scenarios",
		Long: `statekit mounts a Provider/Subscribe tree described in a YAML scenario,
applies its steps to the containers and prints every render.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var files []string
			if envFile != "" {
				files = append(files, envFile)
			}
			loaded, err := config.Load(files...)
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}

	root.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default .env)")

	root.AddCommand(runCmd(), versionCmd())
	return root
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCommand().Execute()
}
