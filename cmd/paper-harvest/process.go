// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-harvest/internal/consolidate"
	"github.com/pdiddy/paper-harvest/internal/logger"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Merge the batch file into the master dataset",
	Long: `Process reads the batch file, cleans titles and abstracts, drops papers whose
title repeats an earlier one, and merges the rest into the master dataset.
Papers already in the master dataset win title collisions. The master file
is replaced atomically; a failed run leaves it untouched.`,
	RunE: runProcess,
}

func init() {
	processCmd.Flags().Bool("sync-catalog", false, "mirror the master dataset into the SQLite catalog afterwards")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.FromContext(cmd.Context())

	summary, err := consolidate.New(cfg, nil, log).Run(cmd.Context())
	if err != nil {
		return err
	}
	consolidate.FormatSummary(summary, cmd.OutOrStdout())

	if sync, _ := cmd.Flags().GetBool("sync-catalog"); sync {
		return syncCatalog(cmd, cfg)
	}
	return nil
}
