// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/course-submit/internal/manifest"
	"github.com/pdiddy/course-submit/pkg/types"
)

// writeFiles creates each named file in dir with small content.
func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("content of "+name), 0o644))
	}
}

// sizedFile creates a sparse file of exactly size bytes.
func sizedFile(t *testing.T, dir, name string, size int64) {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	require.NoError(t, f.Truncate(size))
	require.NoError(t, f.Close())
}

// entries returns the sorted entry names of the zip at p.
func entries(t *testing.T, p string) []string {
	t.Helper()
	zr, err := zip.OpenReader(p)
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

func TestBuildCodeSubmission_OnlyExistingFiles(t *testing.T) {
	dir := t.TempDir()
	m := manifest.Default()
	writeFiles(t, dir, "transformers.py", "Transformers.ipynb", "CLIP_DINO.ipynb", "unrelated.txt")

	var log bytes.Buffer
	result, err := BuildCodeSubmission(m, dir, &log)
	require.NoError(t, err)

	want := []string{"CLIP_DINO.ipynb", "Transformers.ipynb", "transformers.py"}
	assert.Equal(t, want, entries(t, result.Path))
	assert.Equal(t, []string{"transformers.py", "Transformers.ipynb", "CLIP_DINO.ipynb"}, result.Added)
	assert.ElementsMatch(t, []string{
		"rnn_lstm_captioning.py",
		"rnn_lstm_captioning.ipynb",
		"Self_Supervised_Learning.ipynb",
		"rnn_lstm_attention_submission.pt",
	}, result.Missing)
	assert.Positive(t, result.Size)

	out := log.String()
	assert.Contains(t, out, "  Added: transformers.py\n")
	assert.Contains(t, out, "  Warning: Could not find rnn_lstm_captioning.py\n")
	assert.Contains(t, out, "  Note: rnn_lstm_attention_submission.pt not found")
	assert.Contains(t, out, "Code submission created: "+result.Path)
	assert.NotContains(t, out, "WARNING")
}

func TestBuildCodeSubmission_EntryContent(t *testing.T) {
	dir := t.TempDir()
	m := manifest.Default()
	writeFiles(t, dir, "transformers.py")

	result, err := BuildCodeSubmission(m, dir, &bytes.Buffer{})
	require.NoError(t, err)

	zr, err := zip.OpenReader(result.Path)
	require.NoError(t, err)
	defer zr.Close()
	require.Len(t, zr.File, 1)

	assert.Equal(t, zip.Deflate, zr.File[0].Method)
	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	defer rc.Close()
	var got bytes.Buffer
	_, err = got.ReadFrom(rc)
	require.NoError(t, err)
	assert.Equal(t, "content of transformers.py", got.String())
}

func TestBuildCodeSubmission_ArtifactSizeLimit(t *testing.T) {
	tests := []struct {
		name      string
		size      int64
		wantAdded bool
		wantLog   string
	}{
		{"small artifact", 2 * manifest.MB, true, "  Added: rnn_lstm_attention_submission.pt (2.00 MB)"},
		{"just under limit", 10*manifest.MB - 1, true, "  Added: rnn_lstm_attention_submission.pt"},
		{"exactly at limit", 10 * manifest.MB, false, "  Skipped: rnn_lstm_attention_submission.pt (too large: 10.00 MB)"},
		{"over limit", 12 * manifest.MB, false, "too large: 12.00 MB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			m := manifest.Default()
			sizedFile(t, dir, "rnn_lstm_attention_submission.pt", tt.size)

			var log bytes.Buffer
			result, err := BuildCodeSubmission(m, dir, &log)
			require.NoError(t, err)

			names := entries(t, result.Path)
			if tt.wantAdded {
				assert.Equal(t, []string{"rnn_lstm_attention_submission.pt"}, names)
			} else {
				assert.Empty(t, names)
				require.Len(t, result.Skipped, 1)
				assert.Equal(t, "rnn_lstm_attention_submission.pt", result.Skipped[0].Name)
			}
			assert.Contains(t, log.String(), tt.wantLog)
		})
	}
}

func TestBuildCodeSubmission_ExcludedNames(t *testing.T) {
	dir := t.TempDir()
	m := manifest.Default()
	m.SubmissionFiles = []string{"simclr.pth"}
	writeFiles(t, dir, "simclr.pth")

	var log bytes.Buffer
	result, err := BuildCodeSubmission(m, dir, &log)
	require.NoError(t, err)

	assert.Empty(t, entries(t, result.Path))
	assert.Equal(t, []types.SkippedFile{{Name: "simclr.pth", Reason: `matches ".pth"`}}, result.Skipped)
	assert.Contains(t, log.String(), `  Excluded: simclr.pth (matches ".pth")`)
}

func TestBuildCodeSubmission_DirectoryIsNotAFile(t *testing.T) {
	dir := t.TempDir()
	m := manifest.Default()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "transformers.py"), 0o755))

	result, err := BuildCodeSubmission(m, dir, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Contains(t, result.Missing, "transformers.py")
	assert.Empty(t, entries(t, result.Path))
}

func TestBuildCodeSubmission_LargeArchiveWarning(t *testing.T) {
	dir := t.TempDir()
	m := manifest.Default()
	m.WarnArchiveSize = "10B"
	writeFiles(t, dir, "transformers.py", "rnn_lstm_captioning.py")

	var log bytes.Buffer
	_, err := BuildCodeSubmission(m, dir, &log)
	require.NoError(t, err)
	assert.Contains(t, log.String(), "WARNING: Submission is larger than 10B!")
}

func TestBuildCodeSubmission_PathReturnedOnFailure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "does-not-exist")
	m := manifest.Default()

	result, err := BuildCodeSubmission(m, dir, &bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, filepath.Join(dir, "a2_code_submission.zip"), result.Path)
}

func TestBuildCodeSubmission_EmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	result, err := BuildCodeSubmission(manifest.Default(), dir, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a2_code_submission.zip"), result.Path)
	assert.Empty(t, result.Added)
	assert.Empty(t, entries(t, result.Path))
}

func TestBuildCodeSubmission_ReadErrorSkipsEntry(t *testing.T) {
	dir := t.TempDir()
	m := manifest.Default()
	writeFiles(t, dir, "transformers.py", "rnn_lstm_captioning.py", "rnn_lstm_attention_submission.pt")

	failing := map[string]bool{
		"rnn_lstm_captioning.py":           true,
		"rnn_lstm_attention_submission.pt": true,
	}
	readFile := func(p string) ([]byte, error) {
		if failing[filepath.Base(p)] {
			return nil, errors.New("input/output error")
		}
		return os.ReadFile(p)
	}

	var log bytes.Buffer
	result, err := buildCodeSubmission(m, dir, &log, readFile)
	require.NoError(t, err)

	assert.Equal(t, []string{"transformers.py"}, entries(t, result.Path))
	assert.Equal(t, []string{"transformers.py"}, result.Added)
	assert.Contains(t, log.String(), "  Warning: Could not read rnn_lstm_captioning.py: input/output error")
	assert.Contains(t, log.String(), "  Warning: Could not read rnn_lstm_attention_submission.pt: input/output error")

	var skipped []string
	for _, s := range result.Skipped {
		skipped = append(skipped, s.Name)
	}
	assert.ElementsMatch(t, []string{"rnn_lstm_captioning.py", "rnn_lstm_attention_submission.pt"}, skipped)
}
