package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one synchronization pass",
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

			summary, err := syncer.Run(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Sync completed! Processed %d documents (%d synced, %d skipped, %d failed).\n",
				summary.New, summary.Done, summary.Skipped, summary.Failed)
			return nil
		},
	}
}
