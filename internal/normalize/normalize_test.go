// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/paper-harvest/pkg/types"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already clean", "Attention Is All You Need", "Attention Is All You Need"},
		{"line wrapped title", "Attention Is All\n  You Need", "Attention Is All You Need"},
		{"tabs and carriage returns", "a\t\tb\r\nc", "a b c"},
		{"leading and trailing", "  \n padded \t ", "padded"},
		{"unicode space", "a\u2003\u00a0b", "a b"},
		{"empty", "", ""},
		{"only whitespace", " \n\t ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	in := "  Deep\n\nResidual   Learning "
	once := Clean(in)
	assert.Equal(t, once, Clean(once))
}

func TestRecordCleansOnlyTitleAndAbstract(t *testing.T) {
	rec := types.PaperRecord{
		ID:       " 1 ",
		Title:    " A\n title ",
		Authors:  "X,  Y",
		Abstract: "An\n\tabstract.",
	}
	got := Record(rec)
	assert.Equal(t, "A title", got.Title)
	assert.Equal(t, "An abstract.", got.Abstract)
	assert.Equal(t, " 1 ", got.ID)
	assert.Equal(t, "X,  Y", got.Authors)
}

func TestTitleKey(t *testing.T) {
	a := types.PaperRecord{Title: "Same  Title"}
	b := types.PaperRecord{Title: "Same Title\n"}
	c := types.PaperRecord{Title: "same title"}
	assert.Equal(t, TitleKey(a), TitleKey(b))
	assert.NotEqual(t, TitleKey(a), TitleKey(c), "keys are case sensitive")
}
