// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package manifest records each fetch run as a YAML file so a batch can be
// traced back to the categories, limits, and failures that produced it.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-harvest/internal/fetch"
)

// fileTimeFormat names manifest files; it sorts lexically in time order.
const fileTimeFormat = "20060102T150405Z"

// Manifest describes one fetch run.
type Manifest struct {
	Source     string           `yaml:"source"`
	Categories []string         `yaml:"categories"`
	MaxResults int              `yaml:"max_results"`
	BatchFile  string           `yaml:"batch_file"`
	StartedAt  time.Time        `yaml:"started_at"`
	FinishedAt time.Time        `yaml:"finished_at"`
	Results    []CategoryResult `yaml:"results"`
	Summary    RunSummary       `yaml:"summary"`
}

// CategoryResult is the outcome of one category fetch. Error is empty on
// success.
type CategoryResult struct {
	Category string `yaml:"category"`
	Papers   int    `yaml:"papers"`
	Error    string `yaml:"error,omitempty"`
}

// RunSummary totals a run.
type RunSummary struct {
	Papers           int `yaml:"papers"`
	Succeeded        int `yaml:"succeeded"`
	FailedCategories int `yaml:"failed_categories"`
}

// New builds a manifest from a fetch result. Results list successful
// categories first in fetch order, then failures in fetch order.
func New(source string, categories []string, maxResults int, batchFile string,
	started, finished time.Time, res fetch.Result) Manifest {
	m := Manifest{
		Source:     source,
		Categories: append([]string(nil), categories...),
		MaxResults: maxResults,
		BatchFile:  batchFile,
		StartedAt:  started.UTC(),
		FinishedAt: finished.UTC(),
	}
	for _, b := range res.Batches {
		m.Results = append(m.Results, CategoryResult{Category: b.Category, Papers: len(b.Records)})
	}
	for _, f := range res.Failures {
		m.Results = append(m.Results, CategoryResult{Category: f.Category, Error: f.Err.Error()})
	}
	m.Summary = RunSummary{
		Papers:           res.Total(),
		Succeeded:        len(res.Batches),
		FailedCategories: len(res.Failures),
	}
	return m
}

// Filename returns the manifest file name for a run started at t.
func Filename(t time.Time) string {
	return "fetch-" + t.UTC().Format(fileTimeFormat) + ".yaml"
}

// Write saves m into dir, creating dir if needed, and returns the file path.
func Write(m Manifest, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating manifest directory: %w", err)
	}
	data, err := yaml.Marshal(&m)
	if err != nil {
		return "", fmt.Errorf("marshaling manifest: %w", err)
	}
	path := filepath.Join(dir, Filename(m.StartedAt))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing manifest: %w", err)
	}
	return path, nil
}

// Read loads a manifest written by Write.
func Read(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parsing manifest: %w", err)
	}
	return m, nil
}
