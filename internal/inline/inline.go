// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package inline produces the inline PDF submission: every notebook
// rendered to PDF and merged into one file. When merging is unavailable or
// fails the per-notebook PDFs are left in place with instructions.
package inline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/course-submit/internal/convert"
	"github.com/pdiddy/course-submit/internal/manifest"
	"github.com/pdiddy/course-submit/internal/merge"
	"github.com/pdiddy/course-submit/pkg/types"
)

// Result is the outcome of MakeInlinePDF.
type Result struct {
	types.InlineResult
	Batch convert.BatchResult
}

// MakeInlinePDF converts the manifest's notebooks found in dir and merges
// the produced PDFs into dir/<name>_inline_submission.pdf. A nil merger
// skips merging. The returned result always carries the output path.
func MakeInlinePDF(ctx context.Context, conv convert.Converter, merger merge.Merger, m types.Manifest, dir string, w io.Writer) Result {
	pdfPath := filepath.Join(dir, manifest.PDFName(m))
	result := Result{InlineResult: types.InlineResult{Path: pdfPath}}

	fmt.Fprintln(w, "\nCreating inline PDF submission...")
	fmt.Fprintln(w, "(This may take a few minutes...)")

	result.Batch = convert.ConvertBatch(ctx, conv, m, dir, w)
	result.Parts = result.Batch.PDFs

	if len(result.Parts) == 0 {
		printNoPDFs(w)
		return result
	}

	if merger == nil {
		fmt.Fprintln(w, "\n⚠️  PDF merging is disabled. Individual PDFs created:")
		printManualMerge(w, result.Parts)
		return result
	}

	fmt.Fprintln(w, "\nMerging PDFs...")
	if err := merger.Merge(result.Parts, pdfPath); err != nil {
		fmt.Fprintf(w, "\n⚠️  Merge failed: %v\n", err)
		fmt.Fprintln(w, "Individual PDFs created:")
		printManualMerge(w, result.Parts)
		return result
	}
	result.Merged = true

	for _, part := range result.Parts {
		if err := os.Remove(part); err != nil {
			fmt.Fprintf(w, "  Warning: could not remove %s: %v\n", filepath.Base(part), err)
		}
	}

	if info, err := os.Stat(pdfPath); err == nil {
		result.Size = info.Size()
	}
	fmt.Fprintf(w, "\n✓ Inline PDF created: %s\n", pdfPath)
	fmt.Fprintf(w, "  Size: %.2f MB\n", manifest.SizeMB(result.Size))
	return result
}

func printManualMerge(w io.Writer, parts []string) {
	for _, part := range parts {
		fmt.Fprintf(w, "  %s\n", filepath.Base(part))
	}
	fmt.Fprintln(w, "\nTo merge them, re-run with --merge-backend pdfcpu")
	fmt.Fprintln(w, "Or merge manually using a PDF tool.")
}

func printNoPDFs(w io.Writer) {
	fmt.Fprintln(w, "\n⚠️  No PDFs were created.")
	fmt.Fprintln(w, "You may need to install LaTeX: !apt-get install texlive-xetex texlive-fonts-recommended")
	fmt.Fprintln(w, "\nAlternative: Use File > Print > Save as PDF in Colab for each notebook,")
	fmt.Fprintln(w, "then merge the PDFs manually.")
}
