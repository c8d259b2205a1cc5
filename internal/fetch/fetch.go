// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch retrieves paper metadata from a remote source one category
// at a time, with a politeness delay between items and per-category fault
// isolation.
package fetch

import (
	"context"
	"errors"
	"iter"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-harvest/pkg/types"
)

// Sort criteria understood by sources.
const (
	SortBySubmittedDate = "submittedDate"
	SortDescending      = "descending"
)

// Query selects the items of one category.
type Query struct {
	Category   string
	MaxResults int
	SortBy     string
	SortOrder  string
}

// SearchQuery returns the source query expression, "cat:<category>".
func (q Query) SearchQuery() string {
	return "cat:" + q.Category
}

// Entry is one item as the remote source describes it.
type Entry struct {
	EntryID    string
	Title      string
	Authors    []string
	Summary    string
	Categories []string
	Published  time.Time
	Updated    time.Time
}

// Source queries a remote paper index. Search yields entries lazily in
// source order; a non-nil error ends the sequence.
type Source interface {
	Name() string
	Search(ctx context.Context, q Query) iter.Seq2[Entry, error]
}

// Fetcher drains a Source category by category.
type Fetcher struct {
	source Source
	delay  time.Duration
	log    *zap.Logger

	// sleep waits d or until ctx ends. Tests replace it to observe delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewFetcher returns a Fetcher that waits delay after each item it pulls
// from source. A nil log discards output.
func NewFetcher(source Source, delay time.Duration, log *zap.Logger) *Fetcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{
		source: source,
		delay:  delay,
		log:    log,
		sleep:  sleepCtx,
	}
}

// Batch is the records fetched for one category.
type Batch struct {
	Category string
	Records  []types.PaperRecord
}

// Result is the outcome of FetchAll. Batches holds only the categories
// that succeeded, in request order.
type Result struct {
	Batches  []Batch
	Failures []*types.FetchError
}

// Records concatenates every batch in request order.
func (r Result) Records() []types.PaperRecord {
	n := 0
	for _, b := range r.Batches {
		n += len(b.Records)
	}
	out := make([]types.PaperRecord, 0, n)
	for _, b := range r.Batches {
		out = append(out, b.Records...)
	}
	return out
}

// Total returns the number of fetched records.
func (r Result) Total() int {
	n := 0
	for _, b := range r.Batches {
		n += len(b.Records)
	}
	return n
}

// AllFailed reports whether categories were requested and none succeeded.
func (r Result) AllFailed() bool {
	return len(r.Batches) == 0 && len(r.Failures) > 0
}

// HasFailures reports whether any category failed.
func (r Result) HasFailures() bool {
	return len(r.Failures) > 0
}

// FetchCategory queries the source for at most maxResults items of
// category, newest submission first. After each item it waits the
// configured delay, so consecutive pulls from the source are spaced even
// across category boundaries. Any source error fails the whole category
// and is returned as a *types.FetchError.
func (f *Fetcher) FetchCategory(ctx context.Context, category string, maxResults int) ([]types.PaperRecord, error) {
	q := Query{
		Category:   category,
		MaxResults: maxResults,
		SortBy:     SortBySubmittedDate,
		SortOrder:  SortDescending,
	}
	f.log.Info("fetching category",
		zap.String("source", f.source.Name()),
		zap.String("category", category),
		zap.Int("max_results", maxResults),
	)

	var records []types.PaperRecord
	for entry, err := range f.source.Search(ctx, q) {
		if err != nil {
			return nil, &types.FetchError{Category: category, Err: err}
		}
		records = append(records, ToRecord(entry))
		if err := f.sleep(ctx, f.delay); err != nil {
			return nil, &types.FetchError{Category: category, Err: err}
		}
		if maxResults > 0 && len(records) >= maxResults {
			break
		}
	}

	f.log.Info("retrieved category",
		zap.String("category", category),
		zap.Int("records", len(records)),
	)
	return records, nil
}

// FetchAll runs FetchCategory for each category in order. A failing
// category is logged, recorded in Result.Failures, and skipped; the
// remaining categories still run.
func (f *Fetcher) FetchAll(ctx context.Context, categories []string, maxResultsPerCategory int) Result {
	var result Result
	for _, cat := range categories {
		records, err := f.FetchCategory(ctx, cat, maxResultsPerCategory)
		if err != nil {
			var fe *types.FetchError
			if !errors.As(err, &fe) {
				fe = &types.FetchError{Category: cat, Err: err}
			}
			f.log.Warn("category fetch failed",
				zap.String("category", cat),
				zap.Error(fe.Err),
			)
			result.Failures = append(result.Failures, fe)
			continue
		}
		result.Batches = append(result.Batches, Batch{Category: cat, Records: records})
	}
	return result
}

// ToRecord converts a source entry into a PaperRecord: the id is the
// trailing path segment of EntryID, names and tags are joined with
// types.ListSeparator, and dates are formatted as types.DateLayout in UTC.
func ToRecord(e Entry) types.PaperRecord {
	return types.PaperRecord{
		ID:         trailingSegment(e.EntryID),
		Title:      flatten(e.Title),
		Authors:    strings.Join(e.Authors, types.ListSeparator),
		Abstract:   flatten(e.Summary),
		Categories: strings.Join(e.Categories, types.ListSeparator),
		Published:  formatDate(e.Published),
		Updated:    formatDate(e.Updated),
	}
}

// trailingSegment returns the text after the last "/" in id
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041v1").
func trailingSegment(id string) string {
	return id[strings.LastIndex(id, "/")+1:]
}

// flatten trims s and replaces its line breaks with spaces.
func flatten(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", " ")
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(types.DateLayout)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
