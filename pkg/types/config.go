// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

// Configuration validation errors.
var (
	ErrNoCategories      = errors.New("at least one category is required")
	ErrInvalidMaxResults = errors.New("max_results must be at least 1")
	ErrInvalidDelay      = errors.New("fetch delays must be non-negative")
	ErrItemDelayTooShort = errors.New("fetch.item_delay must be at least 200ms")
	ErrInvalidPageSize   = errors.New("fetch.page_size must be at least 1")
	ErrMissingDataDir    = errors.New("data_dir is required")
	ErrMissingMasterFile = errors.New("master_file is required")
	ErrMasterIsBatchFile = errors.New("master_file and batch_file must differ")
)

// MinItemDelay is the shortest politeness wait allowed after each fetched
// item.
const MinItemDelay = 200 * time.Millisecond

const (
	defaultDataDir      = "data"
	defaultMaxResults   = 10000
	defaultItemDelay    = MinItemDelay
	defaultPageDelay    = 3 * time.Second
	defaultPageSize     = 100
	defaultTimeout      = 60 * time.Second
	defaultUserAgent    = "paper-harvest/0.1"
	defaultArxivBaseURL = "https://export.arxiv.org/api/query"

	batchFileName   = "arxiv_batch.csv"
	masterFileName  = "arxiv_master_data.csv"
	catalogFileName = "catalog.db"
	indexDirName    = "index"
	manifestDirName = "manifests"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-harvest/0.1 (mailto:someone@example.com)").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// FetchConfig holds settings for querying the remote paper source.
type FetchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the arXiv export API query endpoint.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// ItemDelay is the politeness wait after each fetched item (default and
	// minimum 200ms).
	ItemDelay time.Duration `json:"item_delay" yaml:"item_delay" mapstructure:"item_delay"`

	// PageDelay is the wait between result page requests (default 3s).
	PageDelay time.Duration `json:"page_delay" yaml:"page_delay" mapstructure:"page_delay"`

	// PageSize is the number of entries requested per API call (default 100).
	PageSize int `json:"page_size" yaml:"page_size" mapstructure:"page_size"`

	// MaxRetries bounds retries on HTTP 429/503 (0 uses the httputil default).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// HarvestConfig is the immutable run configuration. It is built once at
// process start and passed by value to every component.
type HarvestConfig struct {
	// DataDir is the base directory for all pipeline files.
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`

	// Categories lists the source categories to fetch, in order.
	Categories []string `json:"categories" yaml:"categories" mapstructure:"categories"`

	// MaxResults caps the records requested per category.
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// BatchFile is where a fetch run materializes its raw batch.
	BatchFile string `json:"batch_file" yaml:"batch_file" mapstructure:"batch_file"`

	// MasterFile is the deduplicated master dataset.
	MasterFile string `json:"master_file" yaml:"master_file" mapstructure:"master_file"`

	// CatalogFile is the SQLite mirror of the master dataset.
	CatalogFile string `json:"catalog_file" yaml:"catalog_file" mapstructure:"catalog_file"`

	// ManifestDir holds one YAML manifest per fetch run.
	ManifestDir string `json:"manifest_dir" yaml:"manifest_dir" mapstructure:"manifest_dir"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`

	Fetch FetchConfig `json:"fetch" yaml:"fetch" mapstructure:"fetch"`
}

// DefaultHarvestConfig returns the configuration used when nothing is
// overridden. Derived paths are left empty; call Resolve to fill them.
func DefaultHarvestConfig() HarvestConfig {
	return HarvestConfig{
		DataDir:    defaultDataDir,
		Categories: []string{"cs.AI", "cs.LG", "stat.ML"},
		MaxResults: defaultMaxResults,
		LogLevel:   "info",
		Fetch: FetchConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   defaultTimeout,
				UserAgent: defaultUserAgent,
			},
			BaseURL:   defaultArxivBaseURL,
			ItemDelay: defaultItemDelay,
			PageDelay: defaultPageDelay,
			PageSize:  defaultPageSize,
		},
	}
}

// Resolve returns a copy with every empty derived path filled in relative
// to DataDir. Explicitly configured paths are kept.
func (c HarvestConfig) Resolve() HarvestConfig {
	c.Categories = append([]string(nil), c.Categories...)
	if c.BatchFile == "" {
		c.BatchFile = filepath.Join(c.DataDir, batchFileName)
	}
	if c.MasterFile == "" {
		c.MasterFile = filepath.Join(c.DataDir, masterFileName)
	}
	if c.CatalogFile == "" {
		c.CatalogFile = filepath.Join(c.DataDir, indexDirName, catalogFileName)
	}
	if c.ManifestDir == "" {
		c.ManifestDir = filepath.Join(c.DataDir, manifestDirName)
	}
	if c.Fetch.PageSize == 0 {
		c.Fetch.PageSize = defaultPageSize
	}
	if c.Fetch.BaseURL == "" {
		c.Fetch.BaseURL = defaultArxivBaseURL
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = defaultUserAgent
	}
	return c
}

// Validate checks the configuration for values no run could use.
func (c HarvestConfig) Validate() error {
	if c.DataDir == "" {
		return ErrMissingDataDir
	}
	if len(c.Categories) == 0 {
		return ErrNoCategories
	}
	for i, cat := range c.Categories {
		if cat == "" {
			return fmt.Errorf("categories[%d]: %w", i, ErrNoCategories)
		}
	}
	if c.MaxResults < 1 {
		return ErrInvalidMaxResults
	}
	if c.Fetch.ItemDelay < 0 || c.Fetch.PageDelay < 0 {
		return ErrInvalidDelay
	}
	if c.Fetch.ItemDelay < MinItemDelay {
		return ErrItemDelayTooShort
	}
	if c.Fetch.PageSize < 1 {
		return ErrInvalidPageSize
	}
	if c.MasterFile == "" {
		return ErrMissingMasterFile
	}
	if c.BatchFile != "" && filepath.Clean(c.BatchFile) == filepath.Clean(c.MasterFile) {
		return ErrMasterIsBatchFile
	}
	return nil
}
