// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/paper-harvest/pkg/types"
)

// --- mock source ---

type mockSource struct {
	entries map[string][]Entry
	fail    map[string]error
	// failAfter yields this many entries before failing (only with fail set).
	failAfter map[string]int
	queries   []Query
	pulled    int
}

func (m *mockSource) Name() string { return "mock" }

func (m *mockSource) Search(_ context.Context, q Query) iter.Seq2[Entry, error] {
	m.queries = append(m.queries, q)
	return func(yield func(Entry, error) bool) {
		entries := m.entries[q.Category]
		if err, ok := m.fail[q.Category]; ok {
			n := m.failAfter[q.Category]
			for _, e := range entries[:n] {
				m.pulled++
				if !yield(e, nil) {
					return
				}
			}
			yield(Entry{}, err)
			return
		}
		for _, e := range entries {
			m.pulled++
			if !yield(e, nil) {
				return
			}
		}
	}
}

func makeEntries(category string, n int) []Entry {
	out := make([]Entry, n)
	for i := range out {
		out[i] = Entry{
			EntryID:    fmt.Sprintf("http://arxiv.org/abs/2401.%05dv1", i),
			Title:      fmt.Sprintf("%s paper %d", category, i),
			Authors:    []string{"Alice Smith", "Bob Jones"},
			Summary:    "An abstract.",
			Categories: []string{category},
			Published:  time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC),
			Updated:    time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC),
		}
	}
	return out
}

func newTestFetcher(src Source, log *zap.Logger) (*Fetcher, *[]time.Duration) {
	f := NewFetcher(src, 200*time.Millisecond, log)
	var sleeps []time.Duration
	f.sleep = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	return f, &sleeps
}

// --- ToRecord ---

func TestToRecord(t *testing.T) {
	e := Entry{
		EntryID:    "http://arxiv.org/abs/2301.07041v2",
		Title:      "  Attention Is All\n You Need ",
		Authors:    []string{"Ashish Vaswani", "Noam Shazeer"},
		Summary:    "\nThe dominant sequence\ntransduction models.\n",
		Categories: []string{"cs.CL", "cs.LG"},
		Published:  time.Date(2023, 1, 17, 18, 58, 28, 0, time.UTC),
		Updated:    time.Date(2023, 8, 2, 0, 41, 18, 0, time.UTC),
	}

	got := ToRecord(e)
	assert.Equal(t, types.PaperRecord{
		ID:         "2301.07041v2",
		Title:      "Attention Is All  You Need",
		Authors:    "Ashish Vaswani, Noam Shazeer",
		Abstract:   "The dominant sequence transduction models.",
		Categories: "cs.CL, cs.LG",
		Published:  "2023-01-17",
		Updated:    "2023-08-02",
	}, got)
}

func TestToRecordOldStyleID(t *testing.T) {
	got := ToRecord(Entry{EntryID: "http://arxiv.org/abs/hep-th/9901001v1"})
	assert.Equal(t, "9901001v1", got.ID)
}

func TestToRecordDatesInUTC(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	got := ToRecord(Entry{
		EntryID:   "x/1",
		Published: time.Date(2024, 3, 1, 22, 0, 0, 0, est),
	})
	assert.Equal(t, "2024-03-02", got.Published)
	assert.Empty(t, got.Updated)
}

// --- FetchCategory ---

func TestFetchCategoryBuildsRecordsAndQuery(t *testing.T) {
	src := &mockSource{entries: map[string][]Entry{"cs.AI": makeEntries("cs.AI", 3)}}
	f, _ := newTestFetcher(src, nil)

	recs, err := f.FetchCategory(context.Background(), "cs.AI", 10)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "2401.00000v1", recs[0].ID)
	assert.Equal(t, "Alice Smith, Bob Jones", recs[0].Authors)

	require.Len(t, src.queries, 1)
	q := src.queries[0]
	assert.Equal(t, "cat:cs.AI", q.SearchQuery())
	assert.Equal(t, 10, q.MaxResults)
	assert.Equal(t, SortBySubmittedDate, q.SortBy)
	assert.Equal(t, SortDescending, q.SortOrder)
}

func TestFetchCategoryDelaysAfterEveryItem(t *testing.T) {
	src := &mockSource{entries: map[string][]Entry{"cs.AI": makeEntries("cs.AI", 4)}}
	f, sleeps := newTestFetcher(src, nil)

	_, err := f.FetchCategory(context.Background(), "cs.AI", 10)
	require.NoError(t, err)
	require.Len(t, *sleeps, 4)
	for _, d := range *sleeps {
		assert.GreaterOrEqual(t, d, 200*time.Millisecond)
	}
}

func TestFetchCategoryStopsAtMaxResults(t *testing.T) {
	src := &mockSource{entries: map[string][]Entry{"cs.AI": makeEntries("cs.AI", 10)}}
	f, _ := newTestFetcher(src, nil)

	recs, err := f.FetchCategory(context.Background(), "cs.AI", 4)
	require.NoError(t, err)
	assert.Len(t, recs, 4)
	assert.Equal(t, 4, src.pulled, "no item beyond the limit is pulled")
}

func TestFetchCategorySourceErrorIsFetchError(t *testing.T) {
	src := &mockSource{
		entries:   map[string][]Entry{"cs.AI": makeEntries("cs.AI", 3)},
		fail:      map[string]error{"cs.AI": errors.New("HTTP 500")},
		failAfter: map[string]int{"cs.AI": 2},
	}
	f, _ := newTestFetcher(src, nil)

	recs, err := f.FetchCategory(context.Background(), "cs.AI", 10)
	assert.Nil(t, recs)
	assert.ErrorIs(t, err, types.ErrFetchFailure)
	var fe *types.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "cs.AI", fe.Category)
}

func TestFetchCategoryCancelledDuringDelay(t *testing.T) {
	src := &mockSource{entries: map[string][]Entry{"cs.AI": makeEntries("cs.AI", 3)}}
	f := NewFetcher(src, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.FetchCategory(ctx, "cs.AI", 10)
	assert.ErrorIs(t, err, context.Canceled)
}

// --- FetchAll ---

func TestFetchAllIsolatesFailingCategory(t *testing.T) {
	src := &mockSource{
		entries: map[string][]Entry{
			"cs.AI": makeEntries("cs.AI", 2),
			"cs.LG": makeEntries("cs.LG", 3),
		},
		fail: map[string]error{"bad.CAT": errors.New("HTTP 400: unknown category")},
	}
	core, logs := observer.New(zapcore.WarnLevel)
	f, _ := newTestFetcher(src, zap.New(core))

	res := f.FetchAll(context.Background(), []string{"cs.AI", "bad.CAT", "cs.LG"}, 50)

	require.Len(t, res.Batches, 2)
	assert.Equal(t, "cs.AI", res.Batches[0].Category)
	assert.Equal(t, "cs.LG", res.Batches[1].Category)

	recs := res.Records()
	require.Len(t, recs, 5)
	assert.Equal(t, "cs.AI paper 0", recs[0].Title)
	assert.Equal(t, "cs.AI paper 1", recs[1].Title)
	assert.Equal(t, "cs.LG paper 0", recs[2].Title)
	assert.Equal(t, 5, res.Total())

	require.True(t, res.HasFailures())
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "bad.CAT", res.Failures[0].Category)

	warnings := logs.FilterMessage("category fetch failed").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "bad.CAT", warnings[0].ContextMap()["category"])
}

func TestFetchAllSequentialInRequestOrder(t *testing.T) {
	src := &mockSource{entries: map[string][]Entry{
		"a": makeEntries("a", 1),
		"b": makeEntries("b", 1),
		"c": makeEntries("c", 1),
	}}
	f, _ := newTestFetcher(src, nil)

	f.FetchAll(context.Background(), []string{"c", "a", "b"}, 5)

	var order []string
	for _, q := range src.queries {
		order = append(order, q.Category)
	}
	assert.Equal(t, []string{"c", "a", "b"}, order)
}

func TestFetchAllEveryCategoryFails(t *testing.T) {
	src := &mockSource{fail: map[string]error{
		"x": errors.New("down"),
		"y": errors.New("down"),
	}}
	f, _ := newTestFetcher(src, nil)

	res := f.FetchAll(context.Background(), []string{"x", "y"}, 5)
	assert.Empty(t, res.Records())
	assert.Len(t, res.Failures, 2)
}
