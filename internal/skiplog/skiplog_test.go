package skiplog

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/ingest"
	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/schema"
)

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open for read: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("readall: %v", err)
	}
	return rows
}

func row(n int) ingest.PropertyRow {
	return ingest.PropertyRow{
		Address:              "1 Orchard Rd",
		Rent:                 decimal.RequireFromString("2500.50"),
		PropertyType:         schema.PropertyHDB,
		AvailableDate:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		PreferredNationality: "Singaporean",
		PreferredProfession:  schema.ProfessionProfessional,
		PreferredRace:        schema.RaceChinese,
		PetsAllowed:          true,
		Row:                  n,
	}
}

// TestCreate_DirFileAndHeader checks that Create makes parent directories
// and writes the header immediately.
func TestCreate_DirFileAndHeader(t *testing.T) {
	target := filepath.Join(t.TempDir(), "skipped", "listings.csv")

	l, err := Create(target)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	rows := readAll(t, target)
	if len(rows) != 1 {
		t.Fatalf("expected exactly 1 row (header), got %d: %#v", len(rows), rows)
	}
	if !reflect.DeepEqual(rows[0], Header()) {
		t.Fatalf("header mismatch\ngot : %#v\nwant: %#v", rows[0], Header())
	}
	if rows[0][0] != "property_address" || rows[0][len(rows[0])-1] != "source_row" {
		t.Fatalf("unexpected header layout: %v", rows[0])
	}
}

func TestAddOutcome_WritesUncommittedRows(t *testing.T) {
	target := filepath.Join(t.TempDir(), "skip.csv")
	l, err := Create(target)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	rows := []ingest.PropertyRow{row(2), row(3), row(4)}
	out := ingest.Outcome{
		Total:     3,
		Committed: 1,
		Results: []ingest.RowResult{
			{Row: 2, Status: ingest.StatusCommitted},
			{Row: 3, Status: ingest.StatusFailed, Err: &ingest.PersistenceError{Row: 3, Err: errors.New("duplicate key")}},
			{Row: 4, Status: ingest.StatusSkipped},
		},
	}
	if err := l.AddOutcome(rows, out); err != nil {
		t.Fatalf("AddOutcome: %v", err)
	}
	if l.Count() != 2 {
		t.Fatalf("Count = %d, want 2", l.Count())
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got := readAll(t, target)
	if len(got) != 3 {
		t.Fatalf("want header + 2 rows, got %d", len(got))
	}
	want := []string{"1 Orchard Rd", "2500.5", "HDB", "2025-01-01", "Singaporean", "PROFESSIONAL", "CHINESE", "true",
		"Row 3: save failed: duplicate key", "3"}
	if !reflect.DeepEqual(got[1], want) {
		t.Fatalf("row mismatch\ngot : %#v\nwant: %#v", got[1], want)
	}
	if got[2][8] != "skipped after an earlier failure" || got[2][9] != "4" {
		t.Fatalf("skipped row = %v", got[2])
	}

	reasons := l.Reasons()
	if reasons["skipped after an earlier failure"] != 1 {
		t.Fatalf("reasons = %v", reasons)
	}
}

func TestCreate_BadPath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Create(filepath.Join(blocker, "skip.csv")); err == nil {
		t.Fatal("expected error when parent is a file")
	}
}
