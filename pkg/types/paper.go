// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-harvest pipeline:
// the PaperRecord row, the run configuration, and the typed failures that
// callers branch on.
package types

// DateLayout is the on-disk format for Published and Updated.
const DateLayout = "2006-01-02"

// ListSeparator joins multi-valued fields (authors, categories) into one cell.
const ListSeparator = ", "

// PaperRecord is one paper's metadata as persisted in the master dataset.
// Every field is a plain string so a record survives a CSV round trip
// unchanged.
type PaperRecord struct {
	// ID is the trailing path segment of the source entry id
	// (e.g. "2301.07041v1").
	ID string `json:"id" yaml:"id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors holds author names joined with ListSeparator.
	Authors string `json:"authors" yaml:"authors"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Categories holds category tags joined with ListSeparator.
	Categories string `json:"categories" yaml:"categories"`

	// Published is the first submission date (YYYY-MM-DD).
	Published string `json:"published" yaml:"published"`

	// Updated is the latest revision date (YYYY-MM-DD).
	Updated string `json:"updated" yaml:"updated"`
}
