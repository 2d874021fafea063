// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert renders assignment notebooks to PDF one at a time.
// A conversion counts as successful only when the expected PDF appears on
// disk; failures and timeouts are reported and the batch moves on.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/course-submit/internal/jupyter"
	"github.com/pdiddy/course-submit/pkg/types"
)

const (
	// DefaultTimeout bounds a single notebook conversion.
	DefaultTimeout = 300 * time.Second

	// stderrLimit caps the converter output echoed after a failure.
	stderrLimit = 200
)

// Converter renders one notebook into outDir.
type Converter interface {
	// Convert runs the conversion and returns the converter's stderr.
	Convert(ctx context.Context, notebook, outDir string) (string, error)
}

// NotebookConverter runs a jupyter.Runner with a per-notebook timeout.
type NotebookConverter struct {
	runner  jupyter.Runner
	timeout time.Duration
	logger  *log.Logger
}

// NewNotebookConverter wraps runner. A non-positive timeout selects
// DefaultTimeout.
func NewNotebookConverter(runner jupyter.Runner, timeout time.Duration, logger *log.Logger) *NotebookConverter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &NotebookConverter{runner: runner, timeout: timeout, logger: logger}
}

// Convert runs nbconvert on notebook, cancelling it after the timeout.
func (c *NotebookConverter) Convert(ctx context.Context, notebook, outDir string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	c.logger.Debug("converting notebook", "runner", c.runner.Name(), "notebook", notebook, "timeout", c.timeout)
	stderr, err := c.runner.ToPDF(ctx, notebook, outDir)
	c.logger.Debug("conversion finished", "notebook", notebook, "elapsed", time.Since(start), "err", err)
	return stderr, err
}

// BatchResult holds the outcome of converting every notebook in a manifest.
type BatchResult struct {
	// PDFs lists the produced PDFs in notebook order.
	PDFs []string

	Converted int
	Failed    int
	TimedOut  int
	Missing   int
}

// Total returns the number of notebooks that were attempted.
func (r BatchResult) Total() int {
	return r.Converted + r.Failed + r.TimedOut
}

// HasFailures reports whether any attempted notebook did not produce a PDF.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0 || r.TimedOut > 0
}

// PDFName returns the file name nbconvert gives the PDF for notebook.
func PDFName(notebook string) string {
	base := filepath.Base(notebook)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".pdf"
}

// ConvertNotebook converts dir/notebook and reports the outcome to w.
// Success is judged by the presence of the PDF, not by the exit status.
func ConvertNotebook(ctx context.Context, c Converter, notebook, dir string, w io.Writer) (string, types.ConversionStatus) {
	nbPath := filepath.Join(dir, notebook)
	pdfName := PDFName(notebook)
	pdfPath := filepath.Join(dir, pdfName)

	fmt.Fprintf(w, "  Converting: %s\n", notebook)
	stderr, err := c.Convert(ctx, nbPath, dir)

	if errors.Is(err, context.DeadlineExceeded) {
		fmt.Fprintf(w, "    ✗ Timeout converting %s\n", notebook)
		return "", types.ConversionTimeout
	}

	if info, statErr := os.Stat(pdfPath); statErr == nil && info.Mode().IsRegular() {
		fmt.Fprintf(w, "    ✓ Created: %s\n", pdfName)
		return pdfPath, types.ConversionDone
	}

	if err != nil && stderr == "" {
		fmt.Fprintf(w, "    ✗ Error: %v\n", err)
		return "", types.ConversionFailed
	}

	fmt.Fprintf(w, "    ✗ Failed to create %s\n", pdfName)
	if stderr != "" {
		fmt.Fprintf(w, "      Error: %s\n", truncate(stderr, stderrLimit))
	}
	return "", types.ConversionFailed
}

// ConvertBatch converts every notebook of the manifest that exists in dir,
// in manifest order. Missing notebooks are skipped without a message; the
// archive step has already reported them.
func ConvertBatch(ctx context.Context, c Converter, m types.Manifest, dir string, w io.Writer) BatchResult {
	var result BatchResult
	for _, notebook := range m.NotebookFiles {
		info, err := os.Stat(filepath.Join(dir, notebook))
		if err != nil || !info.Mode().IsRegular() {
			result.Missing++
			continue
		}

		pdf, status := ConvertNotebook(ctx, c, notebook, dir, w)
		switch status {
		case types.ConversionDone:
			result.Converted++
			result.PDFs = append(result.PDFs, pdf)
		case types.ConversionTimeout:
			result.TimedOut++
		case types.ConversionFailed:
			result.Failed++
		}
	}
	return result
}

// truncate returns at most n bytes of s without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
