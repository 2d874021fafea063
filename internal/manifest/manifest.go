// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package manifest defines which files make up an assignment submission:
// the enumerated code, notebook and grading files, the exclusion patterns,
// and the size limits applied while packaging.
package manifest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/course-submit/pkg/types"
)

const (
	zipSuffix = "_code_submission.zip"
	pdfSuffix = "_inline_submission.pdf"

	// StudentsFile is the roster file students create by hand.
	StudentsFile = "students.txt"

	// MB is the unit used for every size printed to the console.
	MB = 1024 * 1024
)

// ErrInvalidManifest is returned by Validate and Load for unusable manifests.
var ErrInvalidManifest = errors.New("invalid manifest")

// Default returns the built-in manifest for Assignment 2.
func Default() types.Manifest {
	return types.Manifest{
		Name:  "a2",
		Title: "Assignment 2",
		CodeFiles: []string{
			"transformers.py",
			"rnn_lstm_captioning.py",
		},
		NotebookFiles: []string{
			"Transformers.ipynb",
			"rnn_lstm_captioning.ipynb",
			"Self_Supervised_Learning.ipynb",
			"CLIP_DINO.ipynb",
		},
		SubmissionFiles: []string{
			"rnn_lstm_attention_submission.pt",
		},
		ExcludePatterns: []string{
			"pretrained_model",
			".pth",
			".mp4",
			"__pycache__",
			".pyc",
			"data/",
			"datasets/",
		},
		MaxArtifactSize: "10MiB",
		WarnArchiveSize: "50MiB",
		Notes: []string{
			"pretrained_model/*.pth (SimCLR weights)",
			"dino_res.mp4 (DINO video)",
			"data/ folder (datasets)",
		},
	}
}

// Load reads a YAML manifest from p. Fields left unset in the file are
// taken from Default.
func Load(p string) (types.Manifest, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return types.Manifest{}, fmt.Errorf("reading manifest %s: %w", p, err)
	}

	var m types.Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return types.Manifest{}, fmt.Errorf("%w: parsing %s: %v", ErrInvalidManifest, p, err)
	}

	m = WithDefaults(m)
	if err := Validate(m); err != nil {
		return types.Manifest{}, err
	}
	return m, nil
}

// WithDefaults fills every zero-valued field of m from Default.
func WithDefaults(m types.Manifest) types.Manifest {
	d := Default()
	if m.Name == "" {
		m.Name = d.Name
	}
	if m.Title == "" {
		m.Title = d.Title
	}
	if m.CodeFiles == nil {
		m.CodeFiles = d.CodeFiles
	}
	if m.NotebookFiles == nil {
		m.NotebookFiles = d.NotebookFiles
	}
	if m.SubmissionFiles == nil {
		m.SubmissionFiles = d.SubmissionFiles
	}
	if m.ExcludePatterns == nil {
		m.ExcludePatterns = d.ExcludePatterns
	}
	if m.MaxArtifactSize == "" {
		m.MaxArtifactSize = d.MaxArtifactSize
	}
	if m.WarnArchiveSize == "" {
		m.WarnArchiveSize = d.WarnArchiveSize
	}
	if m.Notes == nil {
		m.Notes = d.Notes
	}
	return m
}

// Encode writes m to w as YAML.
func Encode(m types.Manifest, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	return enc.Close()
}

// Validate checks that m names its outputs and that every enumerated file
// is a bare name inside the assignment directory.
func Validate(m types.Manifest) error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidManifest)
	}
	if strings.ContainsAny(m.Name, `/\`) {
		return fmt.Errorf("%w: name %q contains a path separator", ErrInvalidManifest, m.Name)
	}

	groups := [][]string{m.CodeFiles, m.NotebookFiles, m.SubmissionFiles}
	for _, names := range groups {
		for _, name := range names {
			if err := checkName(name); err != nil {
				return err
			}
		}
	}

	if _, err := ArtifactLimit(m); err != nil {
		return err
	}
	if _, err := ArchiveWarnLimit(m); err != nil {
		return err
	}
	return nil
}

func checkName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty file name", ErrInvalidManifest)
	case strings.ContainsAny(name, "\r\n"):
		return fmt.Errorf("%w: %q contains a line break", ErrInvalidManifest, name)
	case filepath.IsAbs(name), strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q must be a bare file name", ErrInvalidManifest, name)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q is not a file name", ErrInvalidManifest, name)
	}
	return nil
}

// ZipName returns the code archive file name for m.
func ZipName(m types.Manifest) string {
	return m.Name + zipSuffix
}

// PDFName returns the inline PDF file name for m.
func PDFName(m types.Manifest) string {
	return m.Name + pdfSuffix
}

// DeliverableList returns the summary checklist: the configured
// deliverables, or the archive, the inline PDF and the students file.
func DeliverableList(m types.Manifest) []string {
	if len(m.Deliverables) > 0 {
		return m.Deliverables
	}
	return []string{
		ZipName(m),
		PDFName(m),
		StudentsFile + " (create manually with your names and IDs)",
	}
}

// Excluded reports whether relPath matches one of m's exclude patterns and
// returns the first pattern that matched. Patterns starting with "." match
// as suffixes (extensions); all other patterns match as substrings of the
// slash-separated path.
func Excluded(m types.Manifest, relPath string) (string, bool) {
	p := filepath.ToSlash(relPath)
	for _, pattern := range m.ExcludePatterns {
		if pattern == "" {
			continue
		}
		if strings.HasPrefix(pattern, ".") {
			if strings.HasSuffix(p, pattern) {
				return pattern, true
			}
			continue
		}
		if strings.Contains(p, pattern) {
			return pattern, true
		}
		// "data/" also matches a directory given without its trailing slash.
		if strings.HasSuffix(pattern, "/") && path.Base(p) == strings.TrimSuffix(pattern, "/") {
			return pattern, true
		}
	}
	return "", false
}

// ArtifactLimit returns MaxArtifactSize in bytes.
func ArtifactLimit(m types.Manifest) (int64, error) {
	return parseSize("max_artifact_size", m.MaxArtifactSize)
}

// ArchiveWarnLimit returns WarnArchiveSize in bytes.
func ArchiveWarnLimit(m types.Manifest) (int64, error) {
	return parseSize("warn_archive_size", m.WarnArchiveSize)
}

func parseSize(field, s string) (int64, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q: %v", ErrInvalidManifest, field, s, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: %s must be positive", ErrInvalidManifest, field)
	}
	return int64(n), nil
}

// SizeMB converts a byte count to the MB figure printed on the console.
func SizeMB(n int64) float64 {
	return float64(n) / MB
}
