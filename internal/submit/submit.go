// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package submit runs the full submission: banner, code archive, inline PDF
// and summary. Every step absorbs its own failures so a run always reaches
// the summary.
package submit

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/pdiddy/course-submit/internal/archive"
	"github.com/pdiddy/course-submit/internal/convert"
	"github.com/pdiddy/course-submit/internal/history"
	"github.com/pdiddy/course-submit/internal/inline"
	"github.com/pdiddy/course-submit/internal/jupyter"
	"github.com/pdiddy/course-submit/internal/manifest"
	"github.com/pdiddy/course-submit/internal/merge"
	"github.com/pdiddy/course-submit/pkg/types"
)

const ruleWidth = 60

var (
	rule         = strings.Repeat("=", ruleWidth)
	headingStyle = lipgloss.NewStyle().Bold(true).Width(ruleWidth).Align(lipgloss.Center)
)

// ConverterFactory builds the notebook converter for a run.
type ConverterFactory func(ctx context.Context) (convert.Converter, error)

// Recorder stores finished runs.
type Recorder interface {
	Record(ctx context.Context, run history.Run) (string, error)
}

// Options configures Run.
type Options struct {
	// Dir is the assignment directory.
	Dir string

	Manifest types.Manifest

	// SkipPDF disables notebook conversion.
	SkipPDF bool

	// NewConverter builds the converter. Nil detects nbconvert on PATH and
	// applies Timeout.
	NewConverter ConverterFactory
	Timeout      time.Duration

	// Merger merges the notebook PDFs. Nil leaves them unmerged.
	Merger merge.Merger

	// History records the run when set.
	History Recorder

	Logger *log.Logger
}

// DetectConverter returns a ConverterFactory that locates nbconvert and
// bounds each notebook by timeout.
func DetectConverter(timeout time.Duration, logger *log.Logger) ConverterFactory {
	return detectConverter(jupyter.DetectRunner, timeout, logger)
}

func detectConverter(detect func(context.Context) (jupyter.Runner, error), timeout time.Duration, logger *log.Logger) ConverterFactory {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return func(ctx context.Context) (convert.Converter, error) {
		runner, err := detect(ctx)
		if err != nil {
			return nil, err
		}
		logger.Debug("using notebook converter", "runner", runner.Name())
		return convert.NewNotebookConverter(runner, timeout, logger), nil
	}
}

// Run assembles the submission in opts.Dir and reports progress to w.
// The zip path is always set in the result; the PDF path is empty only when
// the PDF step could not run at all.
func Run(ctx context.Context, opts Options, w io.Writer) types.Result {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	m := opts.Manifest

	result := types.Result{
		RunID:     history.NewRunID(),
		StartedAt: time.Now(),
	}

	printBanner(w, m)

	arch, err := archive.BuildCodeSubmission(m, opts.Dir, w)
	result.Archive = arch
	result.ZipPath = arch.Path
	if err != nil {
		fmt.Fprintf(w, "\n⚠️  Could not create code submission: %v\n", err)
		logger.Error("archive failed", "path", arch.Path, "err", err)
	}

	if opts.SkipPDF {
		fmt.Fprintln(w, "\nSkipping inline PDF (--skip-pdf).")
	} else {
		result.PDFPath, result.Inline = makePDF(ctx, opts, logger, w)
	}

	printSummary(w, m)

	result.Duration = time.Since(result.StartedAt)
	if opts.History != nil {
		run := history.FromResult(opts.Dir, m.Name, result)
		if _, err := opts.History.Record(ctx, run); err != nil {
			logger.Warn("could not record run in history", "err", err)
		}
	}
	return result
}

func makePDF(ctx context.Context, opts Options, logger *log.Logger, w io.Writer) (string, types.InlineResult) {
	factory := opts.NewConverter
	if factory == nil {
		factory = DetectConverter(opts.Timeout, logger)
	}

	conv, err := factory(ctx)
	if err != nil {
		logger.Warn("notebook converter unavailable", "err", err)
		printManualPDF(w, err)
		return "", types.InlineResult{}
	}

	res := inline.MakeInlinePDF(ctx, conv, opts.Merger, opts.Manifest, opts.Dir, w)
	return res.Path, res.InlineResult
}

func printBanner(w io.Writer, m types.Manifest) {
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, headingStyle.Render(m.Title+" Submission Generator"))
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	if len(m.Notes) > 0 {
		fmt.Fprintln(w, "NOTE: Do NOT include these large files in your submission:")
		for _, note := range m.Notes {
			fmt.Fprintf(w, "  - %s\n", note)
		}
		fmt.Fprintln(w)
	}
}

func printManualPDF(w io.Writer, err error) {
	fmt.Fprintf(w, "\n⚠️  Could not create inline PDF automatically: %v\n", err)
	fmt.Fprintln(w, "\nPlease create the PDF manually:")
	fmt.Fprintln(w, "  1. Open each notebook in Colab")
	fmt.Fprintln(w, "  2. File > Print > Save as PDF")
	fmt.Fprintln(w, "  3. Merge the PDFs using a PDF tool")
}

func printSummary(w io.Writer, m types.Manifest) {
	fmt.Fprintln(w, "\n"+rule)
	fmt.Fprintln(w, headingStyle.Render("Submission Summary"))
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "\nPlease download and submit:")
	for i, d := range manifest.DeliverableList(m) {
		fmt.Fprintf(w, "  %d. %s\n", i+1, d)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Don't forget to create %s!\n", manifest.StudentsFile)
	fmt.Fprintln(w, "Format:")
	fmt.Fprintln(w, "  FirstName_LastName StudentID")
	fmt.Fprintln(w, "  FirstName_LastName StudentID")
	fmt.Fprintln(w, rule)
}
