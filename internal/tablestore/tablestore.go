// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tablestore reads and writes the CSV datasets of the pipeline.
// Writes go to a temporary file in the target directory and are renamed
// into place, so a reader of the target path sees either the previous
// complete file or the new complete file.
package tablestore

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/paper-harvest/internal/schema"
	"github.com/pdiddy/paper-harvest/pkg/types"
)

// Filesystem hooks. Tests substitute these to simulate interruptions.
var (
	createTemp = os.CreateTemp
	rename     = os.Rename
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is a decoded dataset file: the header as found on disk and the
// rows decoded by column name.
type Table struct {
	Columns []string
	Records []types.PaperRecord
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Records) }

// Empty reports whether the table has no rows.
func (t Table) Empty() bool { return len(t.Records) == 0 }

// Read loads the CSV file at path. A missing or zero-byte file yields an
// empty Table and no error. Any other open failure, such as a parent path
// that is a regular file, is returned. Read does not validate the header;
// callers apply schema.Validate to Table.Columns.
func Read(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Table{}, nil
		}
		return Table{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	t, err := decode(f)
	if err != nil {
		return Table{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return t, nil
}

func decode(r io.Reader) (Table, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	header, err := cr.Read()
	if err == io.EOF {
		return Table{}, nil
	}
	if err != nil {
		return Table{}, fmt.Errorf("reading header: %w", err)
	}
	cr.FieldsPerRecord = len(header)

	idx := schema.NewIndex(header)
	t := Table{Columns: header}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("reading row %d: %w", len(t.Records)+1, err)
		}
		t.Records = append(t.Records, idx.Record(row))
	}
	return t, nil
}

// Write replaces the file at path with records, header first, in
// schema.RequiredColumns order. The parent directory is created if needed.
// On failure the temporary file is removed, path keeps its previous
// content, and the returned error is a *types.PersistenceError.
func Write(records []types.PaperRecord, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &types.PersistenceError{Op: "create directory", Path: dir, Err: err}
	}

	tmpFile, err := createTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return &types.PersistenceError{Op: "create temp file", Path: path, Err: err}
	}
	tmpPath := tmpFile.Name()

	fail := func(op string, err error) error {
		tmpFile.Close()
		os.Remove(tmpPath)
		return &types.PersistenceError{Op: op, Path: path, Err: err}
	}

	if err := encode(tmpFile, records); err != nil {
		return fail("write temp file", err)
	}
	if err := tmpFile.Chmod(0o644); err != nil {
		return fail("chmod temp file", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fail("sync temp file", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return &types.PersistenceError{Op: "close temp file", Path: path, Err: err}
	}

	if err := rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &types.PersistenceError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

func encode(w io.Writer, records []types.PaperRecord) error {
	bw := bufio.NewWriter(w)
	cw := csv.NewWriter(bw)
	if err := cw.Write(schema.RequiredColumns()); err != nil {
		return err
	}
	for _, rec := range records {
		if err := cw.Write(schema.Row(rec)); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return bw.Flush()
}
