// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSchemaViolation signals a table missing required columns.
	ErrSchemaViolation = errors.New("schema violation")
	// ErrFetchFailure signals that one category could not be fetched.
	ErrFetchFailure = errors.New("fetch failure")
	// ErrPersistence signals that an atomic write did not complete.
	ErrPersistence = errors.New("persistence failure")
)

// SchemaViolationError lists the required columns absent from a table.
type SchemaViolationError struct {
	Missing []string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("%s: missing columns: %s", ErrSchemaViolation, strings.Join(e.Missing, ", "))
}

// Is reports whether target is ErrSchemaViolation.
func (e *SchemaViolationError) Is(target error) bool { return target == ErrSchemaViolation }

// FetchError records why a single category's fetch failed.
type FetchError struct {
	Category string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: category %s: %v", ErrFetchFailure, e.Category, e.Err)
}

// Is reports whether target is ErrFetchFailure.
func (e *FetchError) Is(target error) bool { return target == ErrFetchFailure }

func (e *FetchError) Unwrap() error { return e.Err }

// PersistenceError wraps a failed step of an atomic write. Op names the step
// (e.g. "create temp file", "rename").
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrPersistence, e.Op, e.Path, e.Err)
}

// Is reports whether target is ErrPersistence.
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

func (e *PersistenceError) Unwrap() error { return e.Err }
