package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
)

// Path constants
const (
	Separator       = "/"
	DirectoryMarker = "/"
)

// Writer accumulates named byte buffers and empty-directory markers into
// one in-memory ZIP. A Writer is owned by exactly one download job; Build
// is called once, after which the instance rejects further entries.
type Writer struct {
	buffer    *bytes.Buffer
	zipWriter *zip.Writer
	built     bool
	fileCount int
	dirCount  int
}

// NewWriter creates an empty archive writer.
func NewWriter() *Writer {
	buffer := &bytes.Buffer{}
	return &Writer{
		buffer:    buffer,
		zipWriter: zip.NewWriter(buffer),
	}
}

// AddFile adds one file under the given archive-relative path.
func (w *Writer) AddFile(path string, data []byte) error {
	if w.built {
		return fmt.Errorf("cannot add %q: archive already built", path)
	}

	entry, err := w.zipWriter.Create(normalizePath(path))
	if err != nil {
		return fmt.Errorf("failed to create archive entry %q: %w", path, err)
	}

	if _, err := entry.Write(data); err != nil {
		return fmt.Errorf("failed to write archive entry %q: %w", path, err)
	}

	w.fileCount++
	return nil
}

// AddEmptyDirectory records a directory marker so the directory survives
// in the archive even when its subtree contains no files.
func (w *Writer) AddEmptyDirectory(path string) error {
	if w.built {
		return fmt.Errorf("cannot add directory %q: archive already built", path)
	}

	name := normalizePath(path)
	if !strings.HasSuffix(name, DirectoryMarker) {
		name += DirectoryMarker
	}

	if _, err := w.zipWriter.Create(name); err != nil {
		return fmt.Errorf("failed to create directory marker %q: %w", path, err)
	}

	w.dirCount++
	return nil
}

// Build finalizes the archive and returns the complete ZIP bytes. It may
// be called exactly once.
func (w *Writer) Build() ([]byte, error) {
	if w.built {
		return nil, fmt.Errorf("archive already built")
	}
	w.built = true

	if err := w.zipWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}

	return w.buffer.Bytes(), nil
}

// FileCount returns the number of file entries added so far.
func (w *Writer) FileCount() int {
	return w.fileCount
}

// normalizePath forces forward slashes and strips any leading separator so
// every entry stays archive-relative.
func normalizePath(path string) string {
	normalized := strings.ReplaceAll(path, "\\", Separator)
	return strings.TrimPrefix(normalized, Separator)
}
