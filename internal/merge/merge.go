// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge concatenates per-notebook PDFs into the inline submission.
package merge

import (
	"errors"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/pdiddy/course-submit/pkg/types"
)

// ErrNoInputs is returned when Merge is called without any PDFs.
var ErrNoInputs = errors.New("no PDFs to merge")

// Merger writes the concatenation of inputs to out, in order.
type Merger interface {
	Name() string
	Merge(inputs []string, out string) error
}

// New returns the merger for backend. MergeNone yields a nil Merger, which
// callers treat as "merging unavailable".
func New(backend types.MergeBackend) (Merger, error) {
	switch backend {
	case types.MergePdfcpu, "":
		return NewPdfcpuMerger(), nil
	case types.MergeNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown merge backend %q (want %s or %s)", backend, types.MergePdfcpu, types.MergeNone)
	}
}

// PdfcpuMerger merges with the pdfcpu library.
type PdfcpuMerger struct {
	conf *model.Configuration
}

// NewPdfcpuMerger returns a merger using relaxed validation, which tolerates
// the minor format deviations LaTeX-produced PDFs sometimes carry.
func NewPdfcpuMerger() *PdfcpuMerger {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PdfcpuMerger{conf: conf}
}

func (p *PdfcpuMerger) Name() string { return "pdfcpu" }

// Merge writes inputs to out, replacing any existing file.
func (p *PdfcpuMerger) Merge(inputs []string, out string) error {
	if len(inputs) == 0 {
		return ErrNoInputs
	}
	if err := api.MergeCreateFile(inputs, out, false, p.conf); err != nil {
		return fmt.Errorf("merging %d PDFs into %s: %w", len(inputs), out, err)
	}
	return nil
}
