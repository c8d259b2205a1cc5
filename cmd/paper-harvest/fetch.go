// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-harvest/internal/consolidate"
	"github.com/pdiddy/paper-harvest/internal/fetch"
	"github.com/pdiddy/paper-harvest/internal/logger"
	"github.com/pdiddy/paper-harvest/internal/manifest"
	"github.com/pdiddy/paper-harvest/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch recent papers per category into the batch file",
	Long: `Fetch queries the arXiv API for the most recently submitted papers in each
configured category and writes them, in category order, to the batch file.
A category that fails is reported and skipped; the command fails only when
every category fails. Each run is recorded in a YAML manifest.`,
	PreRunE: bindFetchFlags,
	RunE:    runFetch,
}

func init() {
	addFetchFlags(fetchCmd)
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.FromContext(cmd.Context())
	fetcher, src := newFetcher(cfg, log)

	started := time.Now()
	res, err := consolidate.New(cfg, fetcher, log).Fetch(cmd.Context())
	if err != nil {
		return err
	}
	recordRun(cfg, src.Name(), started, res, log)

	printFetchResult(res, cmd.OutOrStdout(), cmd.ErrOrStderr())
	return consolidate.CheckFetched(res)
}

// recordRun writes the run manifest. A manifest failure is logged, not
// returned: the batch file is already in place.
func recordRun(cfg types.HarvestConfig, source string, started time.Time, res fetch.Result, log *zap.Logger) {
	m := manifest.New(source, cfg.Categories, cfg.MaxResults, cfg.BatchFile, started, time.Now(), res)
	path, err := manifest.Write(m, cfg.ManifestDir)
	if err != nil {
		log.Warn("could not write run manifest", zap.Error(err))
		return
	}
	log.Debug("wrote run manifest", zap.String("path", path))
}

// printFetchResult writes per-category counts to out and failures to errOut.
func printFetchResult(res fetch.Result, out, errOut io.Writer) {
	for _, b := range res.Batches {
		fmt.Fprintf(out, "%-12s %d papers\n", b.Category, len(b.Records))
	}
	for _, f := range res.Failures {
		fmt.Fprintf(errOut, "warning: %v\n", f)
	}
	fmt.Fprintf(out, "Fetched %d papers from %d of %d categories.\n",
		res.Total(), len(res.Batches), len(res.Batches)+len(res.Failures))
}
