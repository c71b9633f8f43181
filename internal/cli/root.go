// Package cli wires configuration and collaborators into the remsync
// commands.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"remsync/internal/config"
	"remsync/internal/converter"
	"remsync/internal/images"
	"remsync/internal/ledger"
	"remsync/internal/logging"
	"remsync/internal/readwise"
	"remsync/internal/sync"
	"remsync/internal/uploader"
)

var configPath string

// NewRootCommand builds the remsync command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "remsync",
		Short:         "Sync tagged Readwise Reader documents to a reMarkable tablet",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")

	root.AddCommand(newSyncCommand())
	root.AddCommand(newStatusCommand())
	root.AddCommand(newDaemonCommand())

	return root
}

// Execute runs the CLI and returns the terminal error, if any.
func Execute() error {
	return NewRootCommand().Execute()
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.New(cfg.Logging.Level), nil
}

// buildSyncer assembles the full pipeline. The document client and the
// image fetcher each carry their own pacing state so the two endpoint
// classes never share a quota.
func buildSyncer(cfg *config.Config, logger *slog.Logger) (*sync.Syncer, *uploader.Uploader) {
	client := readwise.NewClient(cfg.Readwise.Token,
		readwise.WithLogger(logger.With("component", "readwise")))
	fetcher := images.NewFetcher(
		images.WithLogger(logger.With("component", "images")))
	conv := converter.New(fetcher, logger.With("component", "converter"))
	up := uploader.New(cfg.Remarkable.RmapiPath, cfg.Remarkable.Folder,
		logger.With("component", "uploader"))
	led := ledger.Load(cfg.Sync.LedgerPath)

	syncer := sync.New(client, conv, up, led, sync.Options{
		Locations: cfg.Sync.Locations,
		Tag:       cfg.Sync.Tag,
		TempDir:   cfg.Sync.TempDir,
	}, logger.With("component", "sync"))

	return syncer, up
}
