package ingest

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/zeebo/xxh3"
)

// UploadedFile is one user-selected file for the duration of one upload
// attempt. A new selection replaces it entirely.
type UploadedFile struct {
	Name        string
	Size        int64
	ContentType string
	Content     []byte
	Fingerprint uint64
}

// NewUploadedFile wraps content read from a file input or disk.
func NewUploadedFile(name, contentType string, content []byte) UploadedFile {
	return UploadedFile{
		Name:        name,
		Size:        int64(len(content)),
		ContentType: contentType,
		Content:     content,
		Fingerprint: xxh3.Hash(content),
	}
}

// FingerprintHex is the content hash as printed in logs.
func (f UploadedFile) FingerprintHex() string {
	return fmt.Sprintf("%016x", f.Fingerprint)
}

// FileInfo is the summary shown above the preview table.
type FileInfo struct {
	Name    string   `json:"name"`
	Size    int64    `json:"size"`
	Rows    int      `json:"rows"`
	Columns []string `json:"columns"`
}

// HumanSize renders Size as e.g. "2.5 kB".
func (fi FileInfo) HumanSize() string {
	if fi.Size < 0 {
		return "0 B"
	}
	return humanize.Bytes(uint64(fi.Size))
}

func (fi FileInfo) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "File: %s\n", fi.Name)
	fmt.Fprintf(&b, "Size: %s\n", fi.HumanSize())
	fmt.Fprintf(&b, "Rows: %d\n", fi.Rows)
	fmt.Fprintf(&b, "Columns: %s", strings.Join(fi.Columns, ", "))
	return b.String()
}
