// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Manifest enumerates the files that make up an assignment submission and
// the limits applied while packaging them.
type Manifest struct {
	// Name prefixes the generated files (e.g. "a2" -> "a2_code_submission.zip").
	Name string `json:"name" yaml:"name"`

	// Title is the human-readable assignment title shown in the banner.
	Title string `json:"title" yaml:"title"`

	// CodeFiles lists the source files added to the code archive.
	CodeFiles []string `json:"code_files" yaml:"code_files"`

	// NotebookFiles lists the notebooks added to the code archive and
	// rendered into the inline PDF, in order.
	NotebookFiles []string `json:"notebook_files" yaml:"notebook_files"`

	// SubmissionFiles lists small grading artifacts produced by running the
	// notebooks. They are subject to MaxArtifactSize.
	SubmissionFiles []string `json:"submission_files" yaml:"submission_files"`

	// ExcludePatterns are substrings or suffixes of names that must never
	// enter the archive (model weights, videos, datasets).
	ExcludePatterns []string `json:"exclude_patterns" yaml:"exclude_patterns"`

	// MaxArtifactSize is the exclusive upper bound for a submission file
	// (e.g. "10MiB").
	MaxArtifactSize string `json:"max_artifact_size" yaml:"max_artifact_size"`

	// WarnArchiveSize triggers a warning when the finished archive is larger
	// (e.g. "50MiB").
	WarnArchiveSize string `json:"warn_archive_size" yaml:"warn_archive_size"`

	// Notes are printed under the banner as files to keep out of the submission.
	Notes []string `json:"notes,omitempty" yaml:"notes,omitempty"`

	// Deliverables is the checklist printed in the final summary.
	Deliverables []string `json:"deliverables,omitempty" yaml:"deliverables,omitempty"`
}
