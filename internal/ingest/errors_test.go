package ingest

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDescribe_MissingHeaders(t *testing.T) {
	_, err := ValidateHeaders([]string{"property_address", "rent_per_month", "property_type",
		"available_date", "preferred_nationality", "preferred_race", "pets_allowed"})

	got := Describe(err)
	lines := strings.Split(got, "\n")
	require.Equal(t, "CSV is missing required headers: preferred_profession", lines[0])
	require.Equal(t, "Expected headers:", lines[2])
	require.Equal(t, header, lines[3])
}

func TestDescribe_Others(t *testing.T) {
	require.Equal(t, "", Describe(nil))

	ve := &RowValidationError{Row: 4, Message: "Invalid date format"}
	require.Contains(t, Describe(fmt.Errorf("wrap: %w", ve)), "Row 4: Invalid date format")

	require.Equal(t, "boom", Describe(errors.New("boom")))
}

func TestIsFileLevel(t *testing.T) {
	require.True(t, IsFileLevel(&EmptyFileError{}))
	require.True(t, IsFileLevel(&RowValidationError{}))
	require.True(t, IsFileLevel(fmt.Errorf("x: %w", &RowParseError{})))
	require.False(t, IsFileLevel(&PersistenceError{Err: errors.New("x")}))
	require.False(t, IsFileLevel(ErrSessionBusy))
}

func TestFileInfo_String(t *testing.T) {
	fi := FileInfo{Name: "listings.csv", Size: 2500, Rows: 3, Columns: []string{"a", "b"}}
	require.Equal(t, "File: listings.csv\nSize: 2.5 kB\nRows: 3\nColumns: a, b", fi.String())
}

func TestUploadedFile_Fingerprint(t *testing.T) {
	a := NewUploadedFile("a.csv", "", []byte("x,y\n"))
	b := NewUploadedFile("b.csv", "", []byte("x,y\n"))
	c := NewUploadedFile("a.csv", "", []byte("x,z\n"))
	require.Equal(t, a.Fingerprint, b.Fingerprint)
	require.NotEqual(t, a.Fingerprint, c.Fingerprint)
	require.Len(t, a.FingerprintHex(), 16)
	require.Equal(t, int64(4), a.Size)
}
