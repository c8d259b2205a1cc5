// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package consolidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-harvest/pkg/types"
)

func rec(id, title string) types.PaperRecord {
	return types.PaperRecord{ID: id, Title: title, Abstract: "abs " + id}
}

func TestPreprocessCleansAndDedups(t *testing.T) {
	in := []types.PaperRecord{
		{ID: "1", Title: "Deep  Learning\n", Abstract: " a\n b "},
		{ID: "2", Title: "Deep Learning", Abstract: "other"},
		{ID: "3", Title: "Shallow Learning"},
	}

	out, dropped := Preprocess(in)
	assert.Equal(t, 1, dropped)
	require.Len(t, out, 2)
	assert.Equal(t, "1", out[0].ID, "first occurrence wins")
	assert.Equal(t, "Deep Learning", out[0].Title)
	assert.Equal(t, "a b", out[0].Abstract)
	assert.Equal(t, "3", out[1].ID)
	assert.Equal(t, "Deep  Learning\n", in[0].Title, "input is not modified")
}

func TestMergeFirstOccurrenceWins(t *testing.T) {
	existing := []types.PaperRecord{rec("1", "A")}
	incoming := []types.PaperRecord{rec("2", "A")}

	res := Merge(existing, incoming)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "1", res.Records[0].ID)
	assert.Equal(t, 0, res.Added)
	assert.Equal(t, 1, res.Dropped)
}

func TestMergeKeepsExistingOrderThenNew(t *testing.T) {
	existing := []types.PaperRecord{rec("1", "A"), rec("2", "B")}
	incoming := []types.PaperRecord{rec("3", "C"), rec("4", "B"), rec("5", "D")}

	res := Merge(existing, incoming)
	var ids []string
	for _, r := range res.Records {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"1", "2", "3", "5"}, ids)
	assert.Equal(t, 2, res.Added)
}

func TestMergeDedupsOnTitleNotID(t *testing.T) {
	existing := []types.PaperRecord{rec("2401.00001v1", "A")}
	incoming := []types.PaperRecord{rec("2401.00001v1", "A revised title")}

	res := Merge(existing, incoming)
	assert.Len(t, res.Records, 2, "same id with a different title is kept")
}

func TestMergeMatchesUncleanedStoredTitle(t *testing.T) {
	existing := []types.PaperRecord{rec("1", "Spaced   Title")}
	incoming := []types.PaperRecord{rec("2", "Spaced Title")}

	res := Merge(existing, incoming)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "Spaced   Title", res.Records[0].Title, "stored rows are kept verbatim")
}

func TestMergeIsIdempotent(t *testing.T) {
	existing := []types.PaperRecord{rec("1", "A"), rec("2", "B")}
	batch, _ := Preprocess([]types.PaperRecord{rec("3", "C"), rec("4", "A"), rec("5", " C ")})

	once := Merge(existing, batch).Records
	twice := Merge(once, batch)

	assert.Equal(t, once, twice.Records)
	assert.Equal(t, 0, twice.Added)
}

func TestMergeDoesNotModifyInputs(t *testing.T) {
	existing := make([]types.PaperRecord, 1, 10)
	existing[0] = rec("1", "A")
	incoming := []types.PaperRecord{rec("2", "B")}

	Merge(existing, incoming)
	assert.Len(t, existing, 1)
	assert.Equal(t, "B", incoming[0].Title)
}
