// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package consolidate merges freshly fetched batches into the master
// dataset: validate, normalize, deduplicate by title, and persist
// atomically.
package consolidate

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-harvest/internal/fetch"
	"github.com/pdiddy/paper-harvest/internal/schema"
	"github.com/pdiddy/paper-harvest/internal/tablestore"
	"github.com/pdiddy/paper-harvest/pkg/types"
)

// ErrNothingFetched signals a fetch run in which every category failed.
var ErrNothingFetched = errors.New("no category could be fetched")

// CheckFetched returns an error wrapping ErrNothingFetched when every
// requested category failed. Partial failures are not an error.
func CheckFetched(res fetch.Result) error {
	if res.AllFailed() {
		return fmt.Errorf("all %d categories failed: %w", len(res.Failures), ErrNothingFetched)
	}
	return nil
}

// Summary reports what one consolidation run did.
type Summary struct {
	// Incoming is the number of rows read from the batch file.
	Incoming int
	// BatchDuplicates is the number of rows dropped as intra-batch title duplicates.
	BatchDuplicates int
	// Existing is the number of rows in the master dataset before the run.
	Existing int
	// Added is the number of new rows written to the master dataset.
	Added int
	// Total is the number of rows in the master dataset after the run.
	Total int
	// Initialized is true when the run created the master dataset.
	Initialized bool
}

// Pipeline runs fetch and consolidation against the paths in a
// HarvestConfig.
type Pipeline struct {
	cfg     types.HarvestConfig
	fetcher *fetch.Fetcher
	log     *zap.Logger
}

// New returns a Pipeline. fetcher may be nil when only Run is used.
func New(cfg types.HarvestConfig, fetcher *fetch.Fetcher, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{cfg: cfg, fetcher: fetcher, log: log}
}

// Run merges the batch file into the master file:
//
//  1. read the batch and validate its columns
//  2. clean title and abstract, drop intra-batch title duplicates
//  3. read and validate the master dataset
//  4. merge, existing rows first, first occurrence wins
//  5. write the master dataset atomically
//
// Any failure aborts the run; the master file is only ever replaced whole.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	batch, err := tablestore.Read(p.cfg.BatchFile)
	if err != nil {
		return Summary{}, fmt.Errorf("reading batch: %w", err)
	}
	if err := schema.Validate(batch.Columns); err != nil {
		return Summary{}, fmt.Errorf("batch %s: %w", p.cfg.BatchFile, err)
	}
	return p.consolidate(ctx, batch.Records)
}

func (p *Pipeline) consolidate(ctx context.Context, records []types.PaperRecord) (Summary, error) {
	summary := Summary{Incoming: len(records)}

	cleaned, dups := Preprocess(records)
	summary.BatchDuplicates = dups

	master, err := tablestore.Read(p.cfg.MasterFile)
	if err != nil {
		return Summary{}, fmt.Errorf("reading master dataset: %w", err)
	}
	if master.Columns != nil {
		if err := schema.Validate(master.Columns); err != nil {
			return Summary{}, fmt.Errorf("master dataset %s: %w", p.cfg.MasterFile, err)
		}
	}
	summary.Existing = master.Len()

	var merged []types.PaperRecord
	if master.Empty() {
		merged = cleaned
		summary.Initialized = master.Columns == nil
		summary.Added = len(cleaned)
	} else {
		res := Merge(master.Records, cleaned)
		merged = res.Records
		summary.Added = res.Added
	}
	summary.Total = len(merged)

	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}
	if err := tablestore.Write(merged, p.cfg.MasterFile); err != nil {
		return Summary{}, fmt.Errorf("writing master dataset: %w", err)
	}

	if summary.Initialized {
		p.log.Info("initialized master dataset",
			zap.String("path", p.cfg.MasterFile),
			zap.Int("papers", summary.Total),
		)
	} else {
		p.log.Info("merged batch into master dataset",
			zap.String("path", p.cfg.MasterFile),
			zap.Int("incoming", summary.Incoming),
			zap.Int("added", summary.Added),
			zap.Int("total", summary.Total),
		)
	}
	return summary, nil
}

// Fetch runs the fetcher over the configured categories and writes the
// combined batch to the batch file. Category failures are reported in the
// result; only a failed write returns an error.
func (p *Pipeline) Fetch(ctx context.Context) (fetch.Result, error) {
	if p.fetcher == nil {
		return fetch.Result{}, fmt.Errorf("pipeline has no fetcher")
	}
	res := p.fetcher.FetchAll(ctx, p.cfg.Categories, p.cfg.MaxResults)
	if err := tablestore.Write(res.Records(), p.cfg.BatchFile); err != nil {
		return res, fmt.Errorf("writing batch: %w", err)
	}
	p.log.Info("wrote batch",
		zap.String("path", p.cfg.BatchFile),
		zap.Int("papers", res.Total()),
		zap.Int("failed_categories", len(res.Failures)),
	)
	return res, nil
}

// Harvest fetches, materializes the batch file, and consolidates it in one
// run. When every category fails the master dataset is left alone and the
// error wraps ErrNothingFetched. The fetch result is returned alongside any
// error once fetching has happened.
func (p *Pipeline) Harvest(ctx context.Context) (fetch.Result, Summary, error) {
	res, err := p.Fetch(ctx)
	if err != nil {
		return res, Summary{}, err
	}
	if err := CheckFetched(res); err != nil {
		return res, Summary{}, err
	}
	summary, err := p.Run(ctx)
	return res, summary, err
}

// FormatSummary writes a human-readable run summary to w.
func FormatSummary(s Summary, w io.Writer) {
	if s.Initialized {
		fmt.Fprintf(w, "Initialized master dataset with %d papers.\n", s.Total)
		return
	}
	fmt.Fprintf(w, "Merged %d new papers (%d incoming, %d batch duplicates), total %d unique papers.\n",
		s.Added, s.Incoming, s.BatchDuplicates, s.Total)
}
