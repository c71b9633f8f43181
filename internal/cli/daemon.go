package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"remsync/internal/scheduler"
)

func newDaemonCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run periodic syncs on the configured schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			syncer, up := buildSyncer(cfg, logger)

			ctx := cmd.Context()
			if err := up.Check(ctx); err != nil {
				return err
			}
			up.EnsureFolder(ctx)

			sched := scheduler.New(cfg.Daemon.Schedule, func(ctx context.Context) error {
				_, err := syncer.Run(ctx)
				return err
			}, logger.With("component", "scheduler"))

			if err := sched.Start(ctx); err != nil {
				return err
			}
			defer sched.Stop()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-quit:
			case <-ctx.Done():
			}
			logger.Info("shutting down")
			return nil
		},
	}
}
