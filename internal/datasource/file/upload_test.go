package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var pngHead = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestAdmit(t *testing.T) {
	csv := []byte("a,b\n1,2\n")

	tests := []struct {
		name     string
		file     string
		declared string
		head     []byte
		size     int64
		wantErr  any
	}{
		{"csv name", "listings.csv", "", csv, 8, nil},
		{"upper-case extension", "LISTINGS.CSV", "", csv, 8, nil},
		{"declared csv with params", "export", "text/csv; charset=utf-8", csv, 8, nil},
		{"empty file", "empty.csv", "", nil, 0, nil},
		{"txt name undeclared", "listings.txt", "text/plain", csv, 8, &UnsupportedFileError{}},
		{"binary disguised as csv", "photo.csv", "text/csv", pngHead, 16, &UnsupportedFileError{}},
		{"too large", "big.csv", "", csv, DefaultMaxBytes + 1, &FileTooLargeError{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Admit(tt.file, tt.declared, tt.head, tt.size, 0)
			switch want := tt.wantErr.(type) {
			case nil:
				require.NoError(t, err)
			case *UnsupportedFileError:
				require.True(t, errors.As(err, &want), "got %v", err)
			case *FileTooLargeError:
				require.True(t, errors.As(err, &want), "got %v", err)
				require.Equal(t, DefaultMaxBytes, want.Max)
			}
		})
	}
}

func TestReadUploadFrom_Limit(t *testing.T) {
	body := strings.Repeat("a,b\n", 10)

	_, err := ReadUploadFrom(context.Background(), strings.NewReader(body), "x.csv", "", 8)
	var fe *FileTooLargeError
	require.True(t, errors.As(err, &fe))
	require.Contains(t, fe.Error(), "exceeds the 8 B limit")

	f, err := ReadUploadFrom(context.Background(), strings.NewReader(body), "x.csv", "text/csv", 1024)
	require.NoError(t, err)
	require.Equal(t, int64(len(body)), f.Size)
	require.Equal(t, "text/csv", f.ContentType)
	require.NotZero(t, f.Fingerprint)
}

func TestReadUpload_FromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "listings.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644))

	f, err := ReadUpload(context.Background(), path, 0)
	require.NoError(t, err)
	require.Equal(t, "listings.csv", f.Name)
	require.Equal(t, "a,b\n1,2\n", string(f.Content))
}

func TestReadUpload_Missing(t *testing.T) {
	_, err := ReadUpload(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), 0)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLocalOpen_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLocal("/definitely/not/here.csv").Open(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
