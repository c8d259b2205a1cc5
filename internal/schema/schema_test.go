// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-harvest/pkg/types"
)

func TestRequiredColumnsOrder(t *testing.T) {
	want := []string{"id", "title", "authors", "abstract", "categories", "published", "updated"}
	assert.Equal(t, want, RequiredColumns())
}

func TestRequiredColumnsReturnsCopy(t *testing.T) {
	cols := RequiredColumns()
	cols[0] = "mutated"
	assert.Equal(t, "id", RequiredColumns()[0])
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		header      []string
		wantMissing []string
	}{
		{"complete", RequiredColumns(), nil},
		{"permuted", []string{"updated", "published", "categories", "abstract", "authors", "title", "id"}, nil},
		{"extra columns allowed", append(RequiredColumns(), "score"), nil},
		{"missing abstract", []string{"id", "title", "authors", "categories", "published", "updated"}, []string{"abstract"}},
		{"missing several", []string{"title", "id"}, []string{"authors", "abstract", "categories", "published", "updated"}},
		{"empty header", nil, RequiredColumns()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.header)
			if tt.wantMissing == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrSchemaViolation)

			var sv *types.SchemaViolationError
			require.True(t, errors.As(err, &sv))
			assert.Equal(t, tt.wantMissing, sv.Missing)
		})
	}
}

func TestIndexDecodesByName(t *testing.T) {
	header := []string{"title", "id", "extra", "authors", "abstract", "categories", "published", "updated"}
	row := []string{"Attention", "1706.03762v7", "x", "A, B", "Abs", "cs.CL", "2017-06-12", "2023-08-02"}

	rec := NewIndex(header).Record(row)
	assert.Equal(t, types.PaperRecord{
		ID:         "1706.03762v7",
		Title:      "Attention",
		Authors:    "A, B",
		Abstract:   "Abs",
		Categories: "cs.CL",
		Published:  "2017-06-12",
		Updated:    "2023-08-02",
	}, rec)
}

func TestIndexMissingColumnDecodesEmpty(t *testing.T) {
	rec := NewIndex([]string{"id", "title"}).Record([]string{"1", "T"})
	assert.Equal(t, "1", rec.ID)
	assert.Equal(t, "T", rec.Title)
	assert.Empty(t, rec.Abstract)
}

func TestRowRoundTripsThroughIndex(t *testing.T) {
	rec := types.PaperRecord{ID: "1", Title: "T", Authors: "A", Abstract: "B", Categories: "C", Published: "2024-01-02", Updated: "2024-02-03"}
	got := NewIndex(RequiredColumns()).Record(Row(rec))
	assert.Equal(t, rec, got)
}
