// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize cleans free-text fields before deduplication and
// persistence.
package normalize

import (
	"strings"

	"github.com/pdiddy/paper-harvest/pkg/types"
)

// Clean collapses every run of whitespace into a single space and trims
// both ends. Clean is idempotent.
func Clean(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Record returns rec with Title and Abstract cleaned.
func Record(rec types.PaperRecord) types.PaperRecord {
	rec.Title = Clean(rec.Title)
	rec.Abstract = Clean(rec.Abstract)
	return rec
}

// TitleKey returns the deduplication key for a record: its cleaned title,
// compared exactly.
func TitleKey(rec types.PaperRecord) string {
	return Clean(rec.Title)
}
