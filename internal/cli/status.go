package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"remsync/internal/ledger"
)

func newStatusCommand() *cobra.Command {
	var tail int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the export ledger summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			led := ledger.Load(cfg.Sync.LedgerPath)
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "%d documents exported (%s)\n", led.Len(), led.Path())

			entries := led.Entries()
			if tail > 0 && len(entries) > tail {
				entries = entries[len(entries)-tail:]
			}
			for _, line := range entries {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&tail, "tail", "n", 10, "show only the last N entries (0 for all)")
	return cmd
}
