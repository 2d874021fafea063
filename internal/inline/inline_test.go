// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package inline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/course-submit/internal/convert"
	"github.com/pdiddy/course-submit/internal/manifest"
)

// pdfConverter writes a PDF next to every notebook it is given.
type pdfConverter struct{}

func (pdfConverter) Convert(ctx context.Context, notebook, outDir string) (string, error) {
	out := filepath.Join(outDir, convert.PDFName(notebook))
	return "", os.WriteFile(out, []byte("%PDF-1.4 "+filepath.Base(notebook)), 0o644)
}

// fakeMerger concatenates inputs, or fails with err.
type fakeMerger struct {
	err    error
	inputs []string
	calls  int
}

func (f *fakeMerger) Name() string { return "fake" }

func (f *fakeMerger) Merge(inputs []string, out string) error {
	f.calls++
	f.inputs = append([]string(nil), inputs...)
	if f.err != nil {
		return f.err
	}
	var buf bytes.Buffer
	for _, in := range inputs {
		data, err := os.ReadFile(in)
		if err != nil {
			return err
		}
		buf.Write(data)
	}
	return os.WriteFile(out, buf.Bytes(), 0o644)
}

func setupNotebooks(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644))
	}
	return dir
}

func TestMakeInlinePDF_Merged(t *testing.T) {
	dir := setupNotebooks(t, "Transformers.ipynb", "CLIP_DINO.ipynb")
	merger := &fakeMerger{}

	var log bytes.Buffer
	result := MakeInlinePDF(context.Background(), pdfConverter{}, merger, manifest.Default(), dir, &log)

	wantPath := filepath.Join(dir, "a2_inline_submission.pdf")
	assert.Equal(t, wantPath, result.Path)
	assert.True(t, result.Merged)
	assert.Positive(t, result.Size)
	assert.FileExists(t, wantPath)

	assert.Equal(t, []string{
		filepath.Join(dir, "Transformers.pdf"),
		filepath.Join(dir, "CLIP_DINO.pdf"),
	}, merger.inputs)
	for _, part := range result.Parts {
		assert.NoFileExists(t, part)
	}

	out := log.String()
	assert.Contains(t, out, "Creating inline PDF submission...")
	assert.Contains(t, out, "Merging PDFs...")
	assert.Contains(t, out, "✓ Inline PDF created: "+wantPath)
}

func TestMakeInlinePDF_NoNotebooks(t *testing.T) {
	dir := t.TempDir()
	merger := &fakeMerger{}

	var log bytes.Buffer
	result := MakeInlinePDF(context.Background(), pdfConverter{}, merger, manifest.Default(), dir, &log)

	assert.Equal(t, filepath.Join(dir, "a2_inline_submission.pdf"), result.Path)
	assert.False(t, result.Merged)
	assert.Empty(t, result.Parts)
	assert.Zero(t, merger.calls, "merge must not be attempted without PDFs")
	assert.Contains(t, log.String(), "No PDFs were created.")
	assert.Contains(t, log.String(), "texlive-xetex")
	assert.NoFileExists(t, result.Path)
}

func TestMakeInlinePDF_MergingDisabled(t *testing.T) {
	dir := setupNotebooks(t, "Transformers.ipynb")

	var log bytes.Buffer
	result := MakeInlinePDF(context.Background(), pdfConverter{}, nil, manifest.Default(), dir, &log)

	assert.False(t, result.Merged)
	require.Len(t, result.Parts, 1)
	assert.FileExists(t, result.Parts[0])
	assert.Contains(t, log.String(), "PDF merging is disabled")
	assert.Contains(t, log.String(), "  Transformers.pdf\n")
	assert.Contains(t, log.String(), "merge manually")
}

func TestMakeInlinePDF_MergeFailureKeepsParts(t *testing.T) {
	dir := setupNotebooks(t, "Transformers.ipynb", "rnn_lstm_captioning.ipynb")
	merger := &fakeMerger{err: errors.New("corrupt xref table")}

	var log bytes.Buffer
	result := MakeInlinePDF(context.Background(), pdfConverter{}, merger, manifest.Default(), dir, &log)

	assert.False(t, result.Merged)
	assert.Equal(t, 1, merger.calls)
	require.Len(t, result.Parts, 2)
	for _, part := range result.Parts {
		assert.FileExists(t, part)
	}
	assert.Contains(t, log.String(), "Merge failed: corrupt xref table")
}
