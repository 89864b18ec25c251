// Package submit handles work submissions: the client-side file
// selection, the 50MB size gate, and the multipart payload the server
// expects.
package submit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

// MaxFileSize is the per-file limit. Any selected file over it blocks the
// whole submission.
const MaxFileSize = 50 * 1024 * 1024

// File is one selected file. Content is opened lazily so a large
// selection does not hold file handles across UI interactions.
type File struct {
	Name string
	Size int64
	open func() (io.ReadCloser, error)
}

// Open returns a reader over the file content.
func (f File) Open() (io.ReadCloser, error) {
	return f.open()
}

// FileFromPath stats a local file and wraps it for selection.
func FileFromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to read file %q: %v", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%q is a directory", path)
	}
	return File{
		Name: filepath.Base(path),
		Size: info.Size(),
		open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// FileFromBytes wraps in-memory content, used for attachment previews and
// tests.
func FileFromBytes(name string, data []byte) File {
	return File{
		Name: name,
		Size: int64(len(data)),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(string(data))), nil
		},
	}
}

// Selection is the ordered set of files picked for a submission. Picks
// are additive: each Add appends to what is already selected.
type Selection struct {
	files []File
}

// Add appends files to the selection, preserving pick order.
func (s *Selection) Add(files ...File) {
	s.files = append(s.files, files...)
}

// RemoveAt drops the file at index i, preserving the relative order of
// the rest. Out-of-range indexes are ignored.
func (s *Selection) RemoveAt(i int) {
	if i < 0 || i >= len(s.files) {
		return
	}
	s.files = append(s.files[:i], s.files[i+1:]...)
}

// Files returns the current selection in order.
func (s *Selection) Files() []File {
	out := make([]File, len(s.files))
	copy(out, s.files)
	return out
}

// Len returns the number of selected files.
func (s *Selection) Len() int { return len(s.files) }

// TotalSize is the byte total across the selection.
func (s *Selection) TotalSize() int64 {
	var total int64
	for _, f := range s.files {
		total += f.Size
	}
	return total
}

// Clear empties the selection, as happens when the submission dialog is
// dismissed.
func (s *Selection) Clear() {
	s.files = nil
}

// Validate enforces the per-file size limit. The first offending file is
// named in the error and the selection is left untouched so nothing is
// lost when the user goes back to fix it.
func (s *Selection) Validate() error {
	for _, f := range s.files {
		if f.Size > MaxFileSize {
			return fmt.Errorf("File %q is too large. Maximum size is 50MB.", f.Name)
		}
	}
	return nil
}

// FormatSize renders a byte count for the selection preview.
func FormatSize(bytes int64) string {
	return humanize.IBytes(uint64(bytes))
}

// Kind classifies a file by extension for preview iconography.
func Kind(name string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "pdf":
		return "pdf"
	case "doc", "docx":
		return "document"
	case "zip", "rar":
		return "archive"
	case "jpg", "jpeg", "png", "gif":
		return "image"
	case "mp4", "avi", "mov":
		return "video"
	case "txt":
		return "text"
	default:
		return "file"
	}
}
