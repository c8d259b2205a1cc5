// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog mirrors the master dataset into a SQLite database so
// individual papers can be looked up by id or listed by category and date
// without scanning the CSV file.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-runewidth"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-harvest/pkg/types"
)

// ErrNotFound signals a paper id absent from the catalog.
var ErrNotFound = errors.New("paper not found")

const (
	defaultListLimit = 20
	titleWidth       = 60
)

// Catalog manages the SQLite mirror.
type Catalog struct {
	db *sql.DB
}

// Open opens or creates the catalog database at path, creating its
// directory and schema as needed.
func Open(path string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	c := &Catalog{db: db}
	if err := c.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return c, nil
}

// Close releases the database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			authors TEXT,
			abstract TEXT,
			categories TEXT,
			published TEXT,
			updated TEXT,
			position INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS paper_categories (
			paper_id TEXT NOT NULL REFERENCES papers(id) ON DELETE CASCADE,
			category TEXT NOT NULL,
			PRIMARY KEY (paper_id, category)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_paper_categories_category ON paper_categories(category)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_published ON papers(published)`,
	}
	for _, stmt := range statements {
		if _, err := c.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SyncSummary holds counts from a Sync run.
type SyncSummary struct {
	Inserted  int
	Updated   int
	Unchanged int
	Removed   int
	// Skipped counts rows whose id repeats an earlier row of the input.
	Skipped int
}

// Total returns the number of rows considered.
func (s SyncSummary) Total() int {
	return s.Inserted + s.Updated + s.Unchanged + s.Skipped
}

// Sync makes the catalog mirror records in one transaction: new ids are
// inserted, changed rows updated, and ids no longer present removed. When
// an id repeats, the first row wins, matching the dataset's
// first-occurrence rule.
func (c *Catalog) Sync(ctx context.Context, records []types.PaperRecord) (SyncSummary, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return SyncSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stored, err := loadStored(ctx, tx)
	if err != nil {
		return SyncSummary{}, err
	}

	upsert, err := tx.PrepareContext(ctx,
		`INSERT INTO papers (id, title, authors, abstract, categories, published, updated, position)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, authors=excluded.authors, abstract=excluded.abstract,
			categories=excluded.categories, published=excluded.published,
			updated=excluded.updated, position=excluded.position`)
	if err != nil {
		return SyncSummary{}, fmt.Errorf("preparing upsert: %w", err)
	}
	defer upsert.Close()

	var summary SyncSummary
	seen := make(map[string]bool, len(records))
	for pos, rec := range records {
		if seen[rec.ID] {
			summary.Skipped++
			continue
		}
		seen[rec.ID] = true

		prev, exists := stored[rec.ID]
		if exists && prev.rec == rec && prev.position == pos {
			summary.Unchanged++
			continue
		}

		if _, err := upsert.ExecContext(ctx,
			rec.ID, rec.Title, rec.Authors, rec.Abstract,
			rec.Categories, rec.Published, rec.Updated, pos,
		); err != nil {
			return SyncSummary{}, fmt.Errorf("upserting paper %s: %w", rec.ID, err)
		}
		if err := replaceCategories(ctx, tx, rec); err != nil {
			return SyncSummary{}, err
		}

		if exists {
			summary.Updated++
		} else {
			summary.Inserted++
		}
	}

	for id := range stored {
		if seen[id] {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM papers WHERE id = ?`, id); err != nil {
			return SyncSummary{}, fmt.Errorf("removing paper %s: %w", id, err)
		}
		summary.Removed++
	}

	if err := tx.Commit(); err != nil {
		return SyncSummary{}, fmt.Errorf("committing sync: %w", err)
	}
	return summary, nil
}

type storedRow struct {
	rec      types.PaperRecord
	position int
}

func loadStored(ctx context.Context, tx *sql.Tx) (map[string]storedRow, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, title, authors, abstract, categories, published, updated, position FROM papers`)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	defer rows.Close()

	stored := make(map[string]storedRow)
	for rows.Next() {
		var r storedRow
		if err := rows.Scan(&r.rec.ID, &r.rec.Title, &r.rec.Authors, &r.rec.Abstract,
			&r.rec.Categories, &r.rec.Published, &r.rec.Updated, &r.position); err != nil {
			return nil, fmt.Errorf("scanning catalog row: %w", err)
		}
		stored[r.rec.ID] = r
	}
	return stored, rows.Err()
}

func replaceCategories(ctx context.Context, tx *sql.Tx, rec types.PaperRecord) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM paper_categories WHERE paper_id = ?`, rec.ID); err != nil {
		return fmt.Errorf("clearing categories of %s: %w", rec.ID, err)
	}
	for _, cat := range SplitList(rec.Categories) {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO paper_categories (paper_id, category) VALUES (?, ?)`,
			rec.ID, cat,
		); err != nil {
			return fmt.Errorf("inserting category %s of %s: %w", cat, rec.ID, err)
		}
	}
	return nil
}

// SplitList splits a ListSeparator-joined cell into its trimmed, non-empty
// parts.
func SplitList(cell string) []string {
	var out []string
	for _, part := range strings.Split(cell, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Get returns the paper with the given id.
func (c *Catalog) Get(ctx context.Context, id string) (types.PaperRecord, error) {
	var rec types.PaperRecord
	err := c.db.QueryRowContext(ctx,
		`SELECT id, title, authors, abstract, categories, published, updated FROM papers WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.Title, &rec.Authors, &rec.Abstract, &rec.Categories, &rec.Published, &rec.Updated)
	if errors.Is(err, sql.ErrNoRows) {
		return types.PaperRecord{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return types.PaperRecord{}, fmt.Errorf("querying paper %s: %w", id, err)
	}
	return rec, nil
}

// ListOptions filters List.
type ListOptions struct {
	// Category restricts results to papers carrying this tag.
	Category string

	// Since restricts results to papers published on or after this
	// YYYY-MM-DD date.
	Since string

	// Limit caps the result count. Zero uses the default (20).
	Limit int
}

// List returns papers newest-published first, ties broken by dataset order.
func (c *Catalog) List(ctx context.Context, opts ListOptions) ([]types.PaperRecord, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	var (
		qb    strings.Builder
		args  []any
		where []string
	)
	qb.WriteString(`SELECT p.id, p.title, p.authors, p.abstract, p.categories, p.published, p.updated FROM papers p`)
	if opts.Category != "" {
		qb.WriteString(` JOIN paper_categories pc ON pc.paper_id = p.id`)
		where = append(where, `pc.category = ?`)
		args = append(args, opts.Category)
	}
	if opts.Since != "" {
		where = append(where, `p.published >= ?`)
		args = append(args, opts.Since)
	}
	if len(where) > 0 {
		qb.WriteString(" WHERE ")
		qb.WriteString(strings.Join(where, " AND "))
	}
	qb.WriteString(` ORDER BY p.published DESC, p.position ASC LIMIT ?`)
	args = append(args, limit)

	rows, err := c.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	defer rows.Close()

	var out []types.PaperRecord
	for rows.Next() {
		var rec types.PaperRecord
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Authors, &rec.Abstract,
			&rec.Categories, &rec.Published, &rec.Updated); err != nil {
			return nil, fmt.Errorf("scanning paper: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Count returns the number of papers in the catalog.
func (c *Catalog) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT count(*) FROM papers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting papers: %w", err)
	}
	return n, nil
}

// FormatList writes papers as a human-readable table to w.
func FormatList(papers []types.PaperRecord, w io.Writer) {
	if len(papers) == 0 {
		fmt.Fprintln(w, "No papers found.")
		return
	}

	fmt.Fprintf(w, "%-16s  %-10s  %-60s  %s\n", "ID", "Published", "Title", "Categories")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for _, p := range papers {
		// Pad by display width so accented and CJK titles stay aligned.
		title := runewidth.FillRight(runewidth.Truncate(p.Title, titleWidth, "..."), titleWidth)
		fmt.Fprintf(w, "%-16s  %-10s  %s  %s\n", p.ID, p.Published, title, p.Categories)
	}
	fmt.Fprintf(w, "\n%d papers\n", len(papers))
}
