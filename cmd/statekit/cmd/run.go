package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/go-drift/statekit/cmd/statekit/internal/script"
	"github.com/go-drift/statekit/pkg/devtools"
	"github.com/go-drift/statekit/pkg/errors"
)

func runCmd() *cobra.Command {
	var (
		verbose     bool
		inspectAddr string
	)

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scenario and print its renders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("verbose") {
				verbose = cfg.Verbose
			}
			if !cmd.Flags().Changed("inspect") {
				inspectAddr = cfg.InspectAddr
			}

			logger, err := newLogger(verbose)
			if err != nil {
				return err
			}
			defer logger.Sync()
			errors.SetHandler(errors.NewLogHandler(logger, verbose))
			defer errors.SetHandler(nil)

			s, err := script.Load(args[0])
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			opts := []script.Option{script.WithLogger(logger)}
			var inspector *devtools.Server
			if inspectAddr != "" {
				inspector = devtools.NewServer(nil, devtools.WithLogger(logger))
				port, err := inspector.Start(inspectAddr)
				if err != nil {
					return err
				}
				defer func() {
					shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
					defer cancel()
					inspector.Stop(shutdown)
				}()
				logger.Info("inspector listening", zap.Int("port", port))
				opts = append(opts, script.WithInspector(inspector))
			}

			if err := script.NewRunner(s, cmd.OutOrStdout(), opts...).Run(ctx); err != nil {
				return err
			}

			if inspector != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "scenario finished; inspector running, press Ctrl+C to exit")
				<-ctx.Done()
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log steps and stack traces")
	cmd.Flags().StringVar(&inspectAddr, "inspect", "", "serve the inspector on this address (e.g. 127.0.0.1:7777)")
	return cmd
}
