// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-harvest/internal/consolidate"
	"github.com/pdiddy/paper-harvest/internal/logger"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Fetch and process in one run",
	Long: `Harvest runs fetch followed by process. Papers from categories that
succeeded are merged even when other categories fail; the command fails
only when every category fails or the master dataset cannot be written.`,
	PreRunE: bindFetchFlags,
	RunE:    runHarvest,
}

func init() {
	addFetchFlags(harvestCmd)
	harvestCmd.Flags().Bool("sync-catalog", false, "mirror the master dataset into the SQLite catalog afterwards")
	rootCmd.AddCommand(harvestCmd)
}

func runHarvest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.FromContext(cmd.Context())
	fetcher, src := newFetcher(cfg, log)
	p := consolidate.New(cfg, fetcher, log)

	started := time.Now()
	res, summary, err := p.Harvest(cmd.Context())
	if len(res.Batches)+len(res.Failures) > 0 {
		recordRun(cfg, src.Name(), started, res, log)
		printFetchResult(res, cmd.OutOrStdout(), cmd.ErrOrStderr())
	}
	if err != nil {
		return err
	}
	consolidate.FormatSummary(summary, cmd.OutOrStdout())

	if sync, _ := cmd.Flags().GetBool("sync-catalog"); sync {
		return syncCatalog(cmd, cfg)
	}
	return nil
}
