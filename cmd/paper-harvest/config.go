// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-harvest/internal/fetch"
	"github.com/pdiddy/paper-harvest/internal/secrets"
	"github.com/pdiddy/paper-harvest/pkg/types"
)

// setDefaults registers every config key with viper so that environment
// variables are seen by Unmarshal.
func setDefaults() {
	d := types.DefaultHarvestConfig()
	viper.SetDefault("data_dir", d.DataDir)
	viper.SetDefault("categories", d.Categories)
	viper.SetDefault("max_results", d.MaxResults)
	viper.SetDefault("batch_file", "")
	viper.SetDefault("master_file", "")
	viper.SetDefault("catalog_file", "")
	viper.SetDefault("manifest_dir", "")
	viper.SetDefault("log_level", d.LogLevel)
	viper.SetDefault("log_format", "console")
	viper.SetDefault("fetch.timeout", d.Fetch.Timeout)
	viper.SetDefault("fetch.user_agent", d.Fetch.UserAgent)
	viper.SetDefault("fetch.base_url", d.Fetch.BaseURL)
	viper.SetDefault("fetch.item_delay", d.Fetch.ItemDelay)
	viper.SetDefault("fetch.page_delay", d.Fetch.PageDelay)
	viper.SetDefault("fetch.page_size", d.Fetch.PageSize)
	viper.SetDefault("fetch.max_retries", d.Fetch.MaxRetries)
}

// addFetchFlags registers the flags that shape a fetch run.
func addFetchFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("category", nil, "categories to fetch, repeatable (default cs.AI, cs.LG, stat.ML)")
	cmd.Flags().Int("max-results", 0, "maximum papers per category (default 10000)")
	cmd.Flags().Duration("delay", 0, "politeness delay after each paper, at least 200ms (default 200ms)")
}

// bindFetchFlags binds the running command's fetch flags. Binding happens
// at run time because fetch and harvest share the same keys.
func bindFetchFlags(cmd *cobra.Command, _ []string) error {
	for key, flag := range map[string]string{
		"categories":       "category",
		"max_results":      "max-results",
		"fetch.item_delay": "delay",
	} {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("binding --%s: %w", flag, err)
		}
	}
	return nil
}

// loadConfig materializes the immutable run configuration from viper.
func loadConfig() (types.HarvestConfig, error) {
	cfg := types.DefaultHarvestConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.HarvestConfig{}, fmt.Errorf("decoding configuration: %w", err)
	}
	cfg = cfg.Resolve()
	cfg.Fetch.UserAgent = secrets.UserAgent(cfg.Fetch.UserAgent, loadedSecrets)
	if err := cfg.Validate(); err != nil {
		return types.HarvestConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newFetcher wires the arXiv source into a Fetcher.
func newFetcher(cfg types.HarvestConfig, log *zap.Logger) (*fetch.Fetcher, fetch.Source) {
	client := &http.Client{Timeout: cfg.Fetch.Timeout}
	src := fetch.NewArxivSource(client, cfg.Fetch, log)
	return fetch.NewFetcher(src, cfg.Fetch.ItemDelay, log), src
}
