package file

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"

	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/ingest"
)

// DefaultMaxBytes caps an upload when no limit is configured.
const DefaultMaxBytes int64 = 10 << 20

// sniffLen is how much of the content is inspected for its type.
const sniffLen = 3072

// UnsupportedFileError reports a file that is not a CSV upload.
type UnsupportedFileError struct {
	Name   string
	Type   string
	Reason string
}

func (e *UnsupportedFileError) Error() string {
	return fmt.Sprintf("%s: unsupported file (%s): please upload a CSV file", e.Name, e.Reason)
}

// FileTooLargeError reports an upload over the configured size cap.
type FileTooLargeError struct {
	Name string
	Size int64
	Max  int64
}

func (e *FileTooLargeError) Error() string {
	if e.Size < 0 {
		return fmt.Sprintf("%s: file exceeds the %s limit", e.Name, humanize.IBytes(uint64(e.Max)))
	}
	return fmt.Sprintf("%s: file is %s, limit is %s", e.Name,
		humanize.IBytes(uint64(e.Size)), humanize.IBytes(uint64(e.Max)))
}

// Admit decides whether a selected file may enter the pipeline. The file
// must be declared text/csv or be named *.csv, and its leading bytes must
// sniff as text. size < 0 means unknown.
func Admit(name, declaredType string, head []byte, size, max int64) error {
	if max <= 0 {
		max = DefaultMaxBytes
	}
	if size > max {
		return &FileTooLargeError{Name: name, Size: size, Max: max}
	}

	if !declaredCSV(declaredType) && !strings.EqualFold(filepath.Ext(name), ".csv") {
		return &UnsupportedFileError{Name: name, Type: declaredType, Reason: "not declared as text/csv and not named .csv"}
	}

	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	mt := mimetype.Detect(head)
	if !isText(mt) {
		return &UnsupportedFileError{Name: name, Type: mt.String(), Reason: "content is " + mt.String()}
	}
	return nil
}

func declaredCSV(ct string) bool {
	if ct == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	return err == nil && mediaType == "text/csv"
}

// isText reports whether mt or any of its ancestors is a text type.
func isText(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "text/") {
			return true
		}
	}
	return false
}

// ReadUploadFrom reads at most max bytes from r, admits the content and
// wraps it as an UploadedFile.
func ReadUploadFrom(ctx context.Context, r io.Reader, name, declaredType string, max int64) (ingest.UploadedFile, error) {
	if err := ctx.Err(); err != nil {
		return ingest.UploadedFile{}, err
	}
	if max <= 0 {
		max = DefaultMaxBytes
	}
	content, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return ingest.UploadedFile{}, fmt.Errorf("read %s: %w", name, err)
	}
	if int64(len(content)) > max {
		return ingest.UploadedFile{}, &FileTooLargeError{Name: name, Size: -1, Max: max}
	}
	if err := Admit(name, declaredType, content, int64(len(content)), max); err != nil {
		return ingest.UploadedFile{}, err
	}
	return ingest.NewUploadedFile(name, declaredType, content), nil
}

// ReadUpload reads the file at path as an upload.
func ReadUpload(ctx context.Context, path string, max int64) (ingest.UploadedFile, error) {
	src := NewLocal(path)
	rc, err := src.Open(ctx)
	if err != nil {
		return ingest.UploadedFile{}, err
	}
	defer rc.Close()

	declared := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	return ReadUploadFrom(ctx, rc, filepath.Base(path), declared, max)
}
