// Package file reads uploads from the local disk or a request body and
// decides whether they are admissible CSV files.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Local opens one file from the local disk.
type Local struct{ path string }

// NewLocal returns a Local bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Path is the bound filesystem path.
func (l *Local) Path() string { return l.path }

// Open returns ctx's error without touching the filesystem when ctx is
// already done; otherwise it opens the file. Filesystem errors keep their
// identity for errors.Is(err, os.ErrNotExist).
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}
