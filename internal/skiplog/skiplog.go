// Package skiplog writes the rows an import did not save to a CSV file. The
// file keeps the upload's required columns first so it can be corrected and
// uploaded again; the trailing skip_reason and source_row columns are
// carried as extra columns on re-upload.
package skiplog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/ingest"
	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/schema"
	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/storage"
)

// Log is an open skip file. It is not safe for concurrent use.
type Log struct {
	path    string
	f       *os.File
	w       *csv.Writer
	reasons map[string]int
	count   int
}

// Header is the first record of every skip file.
func Header() []string {
	return append(schema.Property.RequiredColumns(), "skip_reason", "source_row")
}

// Create makes any missing parent directories, truncates path and writes
// the header.
func Create(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create dir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(Header()); err != nil {
		f.Close()
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	return &Log{path: path, f: f, w: w, reasons: make(map[string]int)}, nil
}

// Path is where the log is written.
func (l *Log) Path() string { return l.path }

// Add records one row that was not saved.
func (l *Log) Add(reason string, row ingest.PropertyRow) error {
	l.reasons[reason]++
	l.count++
	rec := []string{
		row.Address,
		row.Rent.String(),
		string(row.PropertyType),
		row.AvailableDate.Format(storage.DateLayout),
		row.PreferredNationality,
		string(row.PreferredProfession),
		string(row.PreferredRace),
		strconv.FormatBool(row.PetsAllowed),
		reason,
		strconv.Itoa(row.Row),
	}
	if err := l.w.Write(rec); err != nil {
		return fmt.Errorf("write %s: %w", l.path, err)
	}
	return nil
}

// AddOutcome records every row of rows whose result in out is not
// committed. rows must be the slice that was committed.
func (l *Log) AddOutcome(rows []ingest.PropertyRow, out ingest.Outcome) error {
	for i, res := range out.Results {
		if res.Status == ingest.StatusCommitted || i >= len(rows) {
			continue
		}
		reason := "skipped after an earlier failure"
		if res.Err != nil {
			reason = res.Err.Error()
		}
		if err := l.Add(reason, rows[i]); err != nil {
			return err
		}
	}
	return nil
}

// Count is the number of rows added.
func (l *Log) Count() int { return l.count }

// Reasons returns how many rows were added per reason.
func (l *Log) Reasons() map[string]int {
	out := make(map[string]int, len(l.reasons))
	for k, v := range l.reasons {
		out[k] = v
	}
	return out
}

// Close flushes and closes the file.
func (l *Log) Close() error {
	l.w.Flush()
	werr := l.w.Error()
	cerr := l.f.Close()
	if werr != nil {
		return fmt.Errorf("flush %s: %w", l.path, werr)
	}
	return cerr
}
