// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive builds the code submission zip from the files enumerated
// in a manifest. Missing, excluded and oversized files are reported and
// skipped; only a failure to write the archive itself is returned.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"

	"github.com/pdiddy/course-submit/internal/manifest"
	"github.com/pdiddy/course-submit/pkg/types"
)

// builder accumulates the archive result while entries are written.
type builder struct {
	zw     *zip.Writer
	dir    string
	w      io.Writer
	m      types.Manifest
	result types.ArchiveResult

	// readFile loads a source file whole, so a read error never leaves a
	// partial entry behind in the zip.
	readFile func(name string) ([]byte, error)
}

// BuildCodeSubmission writes dir/<name>_code_submission.zip containing the
// manifest's code files, notebooks and small submission artifacts, printing
// one status line per file to w. The returned result always carries the
// archive path.
func BuildCodeSubmission(m types.Manifest, dir string, w io.Writer) (types.ArchiveResult, error) {
	return buildCodeSubmission(m, dir, w, os.ReadFile)
}

func buildCodeSubmission(m types.Manifest, dir string, w io.Writer, readFile func(string) ([]byte, error)) (types.ArchiveResult, error) {
	zipPath := filepath.Join(dir, manifest.ZipName(m))
	result := types.ArchiveResult{Path: zipPath}

	limit, err := manifest.ArtifactLimit(m)
	if err != nil {
		return result, err
	}

	fmt.Fprintln(w, "Creating code submission zip...")
	fmt.Fprintf(w, "Writing to: %s\n", zipPath)

	f, err := os.Create(zipPath)
	if err != nil {
		return result, fmt.Errorf("creating %s: %w", zipPath, err)
	}

	zw := zip.NewWriter(f)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	b := &builder{zw: zw, dir: dir, w: w, m: m, result: result, readFile: readFile}
	for _, name := range m.CodeFiles {
		b.addRequired(name)
	}
	for _, name := range m.NotebookFiles {
		b.addRequired(name)
	}
	for _, name := range m.SubmissionFiles {
		b.addArtifact(name, limit)
	}
	result = b.result

	if err := zw.Close(); err != nil {
		f.Close()
		return result, fmt.Errorf("finalizing %s: %w", zipPath, err)
	}
	if err := f.Close(); err != nil {
		return result, fmt.Errorf("closing %s: %w", zipPath, err)
	}

	info, err := os.Stat(zipPath)
	if err != nil {
		return result, fmt.Errorf("stat %s: %w", zipPath, err)
	}
	result.Size = info.Size()

	fmt.Fprintf(w, "\nCode submission created: %s\n", zipPath)
	fmt.Fprintf(w, "Size: %.2f MB\n", manifest.SizeMB(result.Size))

	if warn, err := manifest.ArchiveWarnLimit(m); err == nil && result.Size > warn {
		fmt.Fprintf(w, "\n⚠️  WARNING: Submission is larger than %s!\n", m.WarnArchiveSize)
		fmt.Fprintln(w, "    This may cause upload issues. Check for large files.")
	}

	return result, nil
}

// addRequired adds a code file or notebook. A missing file is a warning.
func (b *builder) addRequired(name string) {
	if b.excluded(name) {
		return
	}
	info, ok := b.stat(name)
	if !ok {
		fmt.Fprintf(b.w, "  Warning: Could not find %s\n", name)
		b.result.Missing = append(b.result.Missing, name)
		return
	}
	if err := b.write(name, info); err != nil {
		fmt.Fprintf(b.w, "  Warning: Could not read %s: %v\n", name, err)
		b.result.Skipped = append(b.result.Skipped, types.SkippedFile{Name: name, Reason: err.Error()})
		return
	}
	fmt.Fprintf(b.w, "  Added: %s\n", name)
}

// addArtifact adds a grading artifact when it is strictly smaller than
// limit. A missing artifact is expected before the notebook has been run.
func (b *builder) addArtifact(name string, limit int64) {
	if b.excluded(name) {
		return
	}
	info, ok := b.stat(name)
	if !ok {
		fmt.Fprintf(b.w, "  Note: %s not found (will be created when you run the notebook)\n", name)
		b.result.Missing = append(b.result.Missing, name)
		return
	}

	sizeMB := manifest.SizeMB(info.Size())
	if info.Size() >= limit {
		fmt.Fprintf(b.w, "  Skipped: %s (too large: %.2f MB)\n", name, sizeMB)
		b.result.Skipped = append(b.result.Skipped, types.SkippedFile{
			Name:   name,
			Reason: fmt.Sprintf("too large: %.2f MB", sizeMB),
		})
		return
	}

	if err := b.write(name, info); err != nil {
		fmt.Fprintf(b.w, "  Warning: Could not read %s: %v\n", name, err)
		b.result.Skipped = append(b.result.Skipped, types.SkippedFile{Name: name, Reason: err.Error()})
		return
	}
	fmt.Fprintf(b.w, "  Added: %s (%.2f MB)\n", name, sizeMB)
}

func (b *builder) excluded(name string) bool {
	pattern, ok := manifest.Excluded(b.m, name)
	if !ok {
		return false
	}
	fmt.Fprintf(b.w, "  Excluded: %s (matches %q)\n", name, pattern)
	b.result.Skipped = append(b.result.Skipped, types.SkippedFile{
		Name:   name,
		Reason: fmt.Sprintf("matches %q", pattern),
	})
	return true
}

// stat reports whether name exists in the assignment directory as a
// regular file.
func (b *builder) stat(name string) (os.FileInfo, bool) {
	info, err := os.Stat(filepath.Join(b.dir, name))
	if err != nil || !info.Mode().IsRegular() {
		return nil, false
	}
	return info, true
}

// write copies the file into the archive under its bare name. The content is
// read before the entry header is created.
func (b *builder) write(name string, info os.FileInfo) error {
	data, err := b.readFile(filepath.Join(b.dir, name))
	if err != nil {
		return err
	}

	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate

	dst, err := b.zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	if _, err := dst.Write(data); err != nil {
		return err
	}
	b.result.Added = append(b.result.Added, name)
	return nil
}
