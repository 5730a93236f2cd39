// Package memory is an in-process Store used for dry runs and tests. Records
// are kept in insertion order; failures can be injected per source row.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/storage"
)

// ErrClosed is returned by InsertProperty after Close.
var ErrClosed = errors.New("memory store: closed")

// Store keeps records in memory. It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	records []storage.PropertyRecord
	failOn  map[int]error
	execs   []string
	closed  bool
}

// New returns an empty Store.
func New() *Store {
	return &Store{failOn: map[int]error{}}
}

// FailOn makes the insert of the record with SourceRow == row return err.
func (s *Store) FailOn(row int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOn[row] = err
}

func (s *Store) InsertProperty(ctx context.Context, rec storage.PropertyRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err, ok := s.failOn[rec.SourceRow]; ok {
		return err
	}
	if rec.Extra != nil {
		cp := make(map[string]string, len(rec.Extra))
		for k, v := range rec.Extra {
			cp[k] = v
		}
		rec.Extra = cp
	}
	s.records = append(s.records, rec)
	return nil
}

// Exec records the statement; there is no schema to apply.
func (s *Store) Exec(_ context.Context, sql string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.execs = append(s.execs, sql)
	return nil
}

func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Records returns a copy of the stored records.
func (s *Store) Records() []storage.PropertyRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]storage.PropertyRecord(nil), s.records...)
}

// Execs returns the statements passed to Exec.
func (s *Store) Execs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.execs...)
}

var _ storage.Store = (*Store)(nil)

func init() {
	storage.Register("memory", func(context.Context, storage.Config) (storage.Store, error) {
		return New(), nil
	})
	storage.RegisterDDL("memory", func(ctx context.Context, s storage.Store, table string) error {
		return s.Exec(ctx, "-- memory store: "+table)
	})
}
