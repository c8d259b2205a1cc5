// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package consolidate

import (
	"github.com/pdiddy/paper-harvest/internal/normalize"
	"github.com/pdiddy/paper-harvest/pkg/types"
)

// titleIndex tracks which title keys have been taken.
type titleIndex map[string]struct{}

// claim records key and reports whether it was free.
func (ix titleIndex) claim(key string) bool {
	if _, taken := ix[key]; taken {
		return false
	}
	ix[key] = struct{}{}
	return true
}

// Preprocess cleans the title and abstract of every record and drops
// records whose cleaned title repeats an earlier one. It returns the kept
// records in input order and the number dropped.
func Preprocess(records []types.PaperRecord) ([]types.PaperRecord, int) {
	seen := make(titleIndex, len(records))
	out := make([]types.PaperRecord, 0, len(records))
	for _, rec := range records {
		rec = normalize.Record(rec)
		if !seen.claim(normalize.TitleKey(rec)) {
			continue
		}
		out = append(out, rec)
	}
	return out, len(records) - len(out)
}

// MergeResult is the outcome of Merge.
type MergeResult struct {
	// Records is the merged dataset: existing rows first, then the
	// incoming rows whose title was not already present.
	Records []types.PaperRecord

	// Added is the number of incoming rows kept.
	Added int

	// Dropped is the number of rows discarded as title duplicates.
	Dropped int
}

// Merge appends incoming to existing and removes title duplicates, keeping
// the first occurrence. Because existing rows come first, a stored record
// always wins over an incoming record with the same title. Neither input
// slice is modified.
func Merge(existing, incoming []types.PaperRecord) MergeResult {
	seen := make(titleIndex, len(existing)+len(incoming))
	merged := make([]types.PaperRecord, 0, len(existing)+len(incoming))

	for _, rec := range existing {
		if seen.claim(normalize.TitleKey(rec)) {
			merged = append(merged, rec)
		}
	}
	kept := len(merged)
	for _, rec := range incoming {
		if seen.claim(normalize.TitleKey(rec)) {
			merged = append(merged, rec)
		}
	}

	return MergeResult{
		Records: merged,
		Added:   len(merged) - kept,
		Dropped: len(existing) + len(incoming) - len(merged),
	}
}
