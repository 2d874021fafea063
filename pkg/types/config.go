// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// MergeBackend identifies the PDF merge implementation.
type MergeBackend string

const (
	MergePdfcpu MergeBackend = "pdfcpu"
	MergeNone   MergeBackend = "none"
)

// ConversionConfig holds settings for the notebook conversion stage.
type ConversionConfig struct {
	// Timeout bounds a single notebook conversion (default 300s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MergeBackend selects the PDF merger: pdfcpu or none.
	MergeBackend MergeBackend `json:"merge_backend" yaml:"merge_backend"`

	// SkipPDF disables notebook conversion entirely.
	SkipPDF bool `json:"skip_pdf" yaml:"skip_pdf"`
}

// HistoryConfig holds settings for the run history store.
type HistoryConfig struct {
	// Enabled controls whether runs are recorded.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Path is the SQLite database file. Empty uses the XDG data directory.
	Path string `json:"path" yaml:"path"`
}

// SubmitConfig groups all settings for a submission run.
type SubmitConfig struct {
	// Dir is the assignment directory read from and written to.
	Dir string `json:"dir" yaml:"dir"`

	Manifest   Manifest         `json:"manifest" yaml:"manifest"`
	Conversion ConversionConfig `json:"conversion" yaml:"conversion"`
	History    HistoryConfig    `json:"history" yaml:"history"`
}
