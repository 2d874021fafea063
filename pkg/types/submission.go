// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ConversionStatus indicates the outcome of converting one notebook to PDF.
type ConversionStatus string

const (
	ConversionNone    ConversionStatus = "none"
	ConversionDone    ConversionStatus = "converted"
	ConversionFailed  ConversionStatus = "failed"
	ConversionTimeout ConversionStatus = "timeout"
)

// SkippedFile records an enumerated file that was left out of the archive.
type SkippedFile struct {
	Name   string `json:"name" yaml:"name"`
	Reason string `json:"reason" yaml:"reason"`
}

// ArchiveResult describes a finished (or attempted) code submission archive.
type ArchiveResult struct {
	// Path is the archive location. It is set even when nothing was written.
	Path string `json:"path" yaml:"path"`

	// Added lists archive entry names in insertion order.
	Added []string `json:"added" yaml:"added"`

	// Missing lists enumerated files that were not found on disk.
	Missing []string `json:"missing,omitempty" yaml:"missing,omitempty"`

	// Skipped lists files that exist but were excluded or too large.
	Skipped []SkippedFile `json:"skipped,omitempty" yaml:"skipped,omitempty"`

	// Size is the archive size in bytes after it was closed.
	Size int64 `json:"size" yaml:"size"`
}

// InlineResult describes the inline PDF step.
type InlineResult struct {
	// Path is the merged PDF location. It is set even when no merge happened.
	Path string `json:"path" yaml:"path"`

	// Parts lists the per-notebook PDFs that were produced, in notebook order.
	// After a successful merge they have been removed from disk.
	Parts []string `json:"parts,omitempty" yaml:"parts,omitempty"`

	// Merged reports whether Path was written.
	Merged bool `json:"merged" yaml:"merged"`

	// Size is the merged PDF size in bytes, zero when not merged.
	Size int64 `json:"size" yaml:"size"`
}

// Result is the outcome of a full submission run.
type Result struct {
	// RunID identifies the run in the history store.
	RunID string `json:"run_id" yaml:"run_id"`

	// ZipPath is the code archive path.
	ZipPath string `json:"zip_path" yaml:"zip_path"`

	// PDFPath is the inline PDF path, empty when the PDF step could not run.
	PDFPath string `json:"pdf_path" yaml:"pdf_path"`

	Archive ArchiveResult `json:"archive" yaml:"archive"`
	Inline  InlineResult  `json:"inline" yaml:"inline"`

	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}
