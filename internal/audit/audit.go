// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package audit scans an assignment directory for files that would bloat a
// submission: model weights, videos, datasets and anything at or above the
// artifact size limit.
package audit

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/dustin/go-humanize"

	"github.com/pdiddy/course-submit/internal/manifest"
	"github.com/pdiddy/course-submit/pkg/types"
)

// Finding is one file flagged by Scan.
type Finding struct {
	// RelPath is slash-separated and relative to the scanned directory.
	RelPath string
	Size    int64
	// Pattern is the exclude pattern that matched, empty when the file was
	// flagged for size alone.
	Pattern string
	// Oversized reports whether Size is at or above the artifact limit.
	Oversized bool
}

// Report is the outcome of Scan.
type Report struct {
	Dir      string
	Findings []Finding
	Scanned  int
	// Total is the combined size of all findings.
	Total int64
}

// Scan walks dir and flags every regular file that matches an exclude
// pattern or is at least the manifest's artifact limit. Findings are sorted
// by size, largest first. Entries that cannot be read are skipped.
func Scan(ctx context.Context, m types.Manifest, dir string) (Report, error) {
	limit, err := manifest.ArtifactLimit(m)
	if err != nil {
		return Report{}, err
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return Report{}, fmt.Errorf("resolving %s: %w", dir, err)
	}

	var (
		mu     sync.Mutex
		report = Report{Dir: absDir}
	)

	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, absDir, func(path string, d fs.DirEntry, walkErr error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if walkErr != nil || d.IsDir() || !d.Type().IsRegular() {
			return nil //nolint:nilerr // unreadable entries are skipped
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return nil //nolint:nilerr // entries we cannot stat are skipped
		}

		rel, relErr := filepath.Rel(absDir, path)
		if relErr != nil {
			return nil //nolint:nilerr
		}
		rel = filepath.ToSlash(rel)

		pattern, excluded := manifest.Excluded(m, rel)
		oversized := info.Size() >= limit

		mu.Lock()
		defer mu.Unlock()
		report.Scanned++
		if excluded || oversized {
			report.Findings = append(report.Findings, Finding{
				RelPath:   rel,
				Size:      info.Size(),
				Pattern:   pattern,
				Oversized: oversized,
			})
			report.Total += info.Size()
		}
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("scanning %s: %w", absDir, err)
	}

	sort.Slice(report.Findings, func(i, j int) bool {
		a, b := report.Findings[i], report.Findings[j]
		if a.Size != b.Size {
			return a.Size > b.Size
		}
		return a.RelPath < b.RelPath
	})
	return report, nil
}

// Print writes a human-readable report to w.
func Print(r Report, w io.Writer) {
	if len(r.Findings) == 0 {
		fmt.Fprintf(w, "No large or excluded files found in %s (%s files scanned).\n",
			r.Dir, humanize.Comma(int64(r.Scanned)))
		return
	}

	fmt.Fprintf(w, "Files to keep out of your submission (%s):\n", r.Dir)
	for _, f := range r.Findings {
		var reason string
		switch {
		case f.Pattern != "" && f.Oversized:
			reason = fmt.Sprintf("matches %q, too large", f.Pattern)
		case f.Pattern != "":
			reason = fmt.Sprintf("matches %q", f.Pattern)
		default:
			reason = "too large"
		}
		fmt.Fprintf(w, "  %10s  %s (%s)\n", humanize.IBytes(uint64(f.Size)), f.RelPath, reason)
	}
	fmt.Fprintf(w, "\n%d file(s), %s total, %s files scanned.\n",
		len(r.Findings), humanize.IBytes(uint64(r.Total)), humanize.Comma(int64(r.Scanned)))
}
