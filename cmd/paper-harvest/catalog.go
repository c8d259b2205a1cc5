// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-harvest/internal/catalog"
	"github.com/pdiddy/paper-harvest/internal/logger"
	"github.com/pdiddy/paper-harvest/internal/schema"
	"github.com/pdiddy/paper-harvest/internal/tablestore"
	"github.com/pdiddy/paper-harvest/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Query the SQLite mirror of the master dataset",
	Long: `Catalog maintains a SQLite copy of the master dataset for lookups by id,
category, and publication date. The master CSV file remains the source of
truth; "catalog sync" rebuilds the mirror from it.`,
}

var catalogSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror the master dataset into the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return syncCatalog(cmd, cfg)
	},
}

var catalogGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print one paper as YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogGet,
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List papers, newest first",
	RunE:  runCatalogList,
}

func init() {
	catalogListCmd.Flags().String("category", "", "only papers tagged with this category")
	catalogListCmd.Flags().String("since", "", "only papers published on or after this date (YYYY-MM-DD)")
	catalogListCmd.Flags().Int("limit", 20, "maximum number of papers")

	catalogCmd.AddCommand(catalogSyncCmd, catalogGetCmd, catalogListCmd)
	rootCmd.AddCommand(catalogCmd)
}

// syncCatalog loads the master dataset and mirrors it into the catalog.
func syncCatalog(cmd *cobra.Command, cfg types.HarvestConfig) error {
	master, err := tablestore.Read(cfg.MasterFile)
	if err != nil {
		return fmt.Errorf("reading master dataset: %w", err)
	}
	if master.Columns != nil {
		if err := schema.Validate(master.Columns); err != nil {
			return fmt.Errorf("master dataset %s: %w", cfg.MasterFile, err)
		}
	}

	c, err := catalog.Open(cfg.CatalogFile)
	if err != nil {
		return err
	}
	defer c.Close()

	s, err := c.Sync(cmd.Context(), master.Records)
	if err != nil {
		return err
	}
	logger.FromContext(cmd.Context()).Info("synced catalog",
		zap.String("path", cfg.CatalogFile),
		zap.Int("inserted", s.Inserted),
		zap.Int("updated", s.Updated),
		zap.Int("removed", s.Removed),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Catalog: %d inserted, %d updated, %d unchanged, %d removed, %d repeated ids skipped.\n",
		s.Inserted, s.Updated, s.Unchanged, s.Removed, s.Skipped)
	return nil
}

func openCatalog() (*catalog.Catalog, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return catalog.Open(cfg.CatalogFile)
}

func runCatalogGet(cmd *cobra.Command, args []string) error {
	c, err := openCatalog()
	if err != nil {
		return err
	}
	defer c.Close()

	rec, err := c.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	defer enc.Close()
	return enc.Encode(rec)
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	c, err := openCatalog()
	if err != nil {
		return err
	}
	defer c.Close()

	category, _ := cmd.Flags().GetString("category")
	since, _ := cmd.Flags().GetString("since")
	limit, _ := cmd.Flags().GetInt("limit")

	papers, err := c.List(cmd.Context(), catalog.ListOptions{
		Category: category,
		Since:    since,
		Limit:    limit,
	})
	if err != nil {
		return err
	}
	catalog.FormatList(papers, cmd.OutOrStdout())
	return nil
}
