// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-harvest/internal/fetch"
	"github.com/pdiddy/paper-harvest/pkg/types"
)

func sampleResult() fetch.Result {
	return fetch.Result{
		Batches: []fetch.Batch{
			{Category: "cs.AI", Records: []types.PaperRecord{{ID: "1"}, {ID: "2"}}},
			{Category: "cs.LG", Records: []types.PaperRecord{{ID: "3"}}},
		},
		Failures: []*types.FetchError{
			{Category: "bad.CAT", Err: errors.New("arXiv API returned HTTP 400")},
		},
	}
}

func TestNew(t *testing.T) {
	started := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	finished := started.Add(2 * time.Minute)
	cats := []string{"cs.AI", "bad.CAT", "cs.LG"}

	m := New("arxiv", cats, 50, "data/arxiv_batch.csv", started, finished, sampleResult())

	assert.Equal(t, cats, m.Categories)
	assert.Equal(t, RunSummary{Papers: 3, Succeeded: 2, FailedCategories: 1}, m.Summary)
	require.Len(t, m.Results, 3)
	assert.Equal(t, CategoryResult{Category: "cs.AI", Papers: 2}, m.Results[0])
	assert.Equal(t, "bad.CAT", m.Results[2].Category)
	assert.Contains(t, m.Results[2].Error, "HTTP 400")

	cats[0] = "mutated"
	assert.Equal(t, "cs.AI", m.Categories[0], "categories are copied")
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "manifests")
	started := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	m := New("arxiv", []string{"cs.AI", "bad.CAT", "cs.LG"}, 50, "data/arxiv_batch.csv",
		started, started.Add(time.Minute), sampleResult())

	path, err := Write(m, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "fetch-20240601T100000Z.yaml"), path)

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestWriteOmitsEmptyError(t *testing.T) {
	dir := t.TempDir()
	started := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	m := New("arxiv", []string{"cs.AI"}, 10, "b.csv", started, started, fetch.Result{
		Batches: []fetch.Batch{{Category: "cs.AI"}},
	})

	path, err := Write(m, dir)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "error:")
	assert.Contains(t, string(data), "category: cs.AI")
}

func TestReadErrors(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading manifest")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("results: [unclosed"), 0o644))
	_, err = Read(bad)
	assert.ErrorContains(t, err, "parsing manifest")
}

func TestFilenameUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	ts := time.Date(2024, 6, 1, 12, 30, 5, 0, loc)
	assert.Equal(t, "fetch-20240601T103005Z.yaml", Filename(ts))
}
