// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package schema defines the fixed column contract of the master dataset and
// maps PaperRecords to and from positional rows. Both the read and write
// paths take their column order from here.
package schema

import (
	"github.com/pdiddy/paper-harvest/pkg/types"
)

// Column names, in on-disk order.
const (
	ColID         = "id"
	ColTitle      = "title"
	ColAuthors    = "authors"
	ColAbstract   = "abstract"
	ColCategories = "categories"
	ColPublished  = "published"
	ColUpdated    = "updated"
)

var columns = [...]string{
	ColID,
	ColTitle,
	ColAuthors,
	ColAbstract,
	ColCategories,
	ColPublished,
	ColUpdated,
}

// RequiredColumns returns the ordered column list. The caller owns the slice.
func RequiredColumns() []string {
	out := make([]string, len(columns))
	copy(out, columns[:])
	return out
}

// Validate checks that every required column appears in header. It returns
// a *types.SchemaViolationError naming the missing columns in contract order.
func Validate(header []string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}

	var missing []string
	for _, c := range columns {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &types.SchemaViolationError{Missing: missing}
	}
	return nil
}

// Index maps each required column to its position in header, or -1 when
// the column is absent.
type Index [len(columns)]int

// NewIndex builds an Index for header. The first occurrence of a repeated
// column name wins.
func NewIndex(header []string) Index {
	var idx Index
	for i := range idx {
		idx[i] = -1
	}
	for pos, h := range header {
		for i, c := range columns {
			if h == c && idx[i] < 0 {
				idx[i] = pos
			}
		}
	}
	return idx
}

// Record decodes row using idx. Absent columns decode as empty strings.
func (idx Index) Record(row []string) types.PaperRecord {
	field := func(i int) string {
		pos := idx[i]
		if pos < 0 || pos >= len(row) {
			return ""
		}
		return row[pos]
	}
	return types.PaperRecord{
		ID:         field(0),
		Title:      field(1),
		Authors:    field(2),
		Abstract:   field(3),
		Categories: field(4),
		Published:  field(5),
		Updated:    field(6),
	}
}

// Row encodes rec in RequiredColumns order.
func Row(rec types.PaperRecord) []string {
	return []string{
		rec.ID,
		rec.Title,
		rec.Authors,
		rec.Abstract,
		rec.Categories,
		rec.Published,
		rec.Updated,
	}
}
