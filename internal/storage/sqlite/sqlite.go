// Package sqlite implements storage.Store on SQLite through database/sql and
// the pure-Go modernc driver. Each record is one INSERT through a prepared
// statement.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/storage"
	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/storage/ddl"
)

// Config holds SQLite repository configuration.
type Config struct {
	// DSN is a file path or URI, e.g. "listings.db" or
	// "file:listings.db?_pragma=busy_timeout(5000)". ":memory:" works for
	// tests because the pool is limited to one connection.
	DSN   string
	Table string
}

// Types maps the logical property columns to SQLite storage classes. Money
// is TEXT so the decimal string round-trips exactly.
var Types = ddl.Types{
	ddl.TypeUUID:      "TEXT",
	ddl.TypeText:      "TEXT",
	ddl.TypeShortText: "TEXT",
	ddl.TypeMoney:     "TEXT",
	ddl.TypeDate:      "TEXT",
	ddl.TypeBool:      "INTEGER",
	ddl.TypeJSON:      "TEXT",
	ddl.TypeInt:       "INTEGER",
	ddl.TypeTimestamp: "TEXT",
}

// Repository is a SQLite-backed property store.
type Repository struct {
	db  *sql.DB
	cfg Config

	mu   sync.Mutex
	stmt *sql.Stmt
}

// NewRepository opens and pings the database and returns a close function.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	if cfg.Table == "" {
		cfg.Table = storage.DefaultTable
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	r := &Repository{db: db, cfg: cfg}
	closeFn := func() {
		r.mu.Lock()
		if r.stmt != nil {
			r.stmt.Close()
		}
		r.mu.Unlock()
		db.Close()
	}
	return r, closeFn, nil
}

func insertSQL(table string) string {
	cols := make([]string, len(storage.Columns))
	ph := make([]string, len(storage.Columns))
	for i, c := range storage.Columns {
		cols[i] = ddl.DoubleQuote(c)
		ph[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		ddl.QuoteFQN(table, ddl.DoubleQuote), strings.Join(cols, ", "), strings.Join(ph, ", "))
}

// prepared returns the insert statement, preparing it on first use so the
// table can be created after the repository is opened.
func (r *Repository) prepared(ctx context.Context) (*sql.Stmt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stmt != nil {
		return r.stmt, nil
	}
	stmt, err := r.db.PrepareContext(ctx, insertSQL(r.cfg.Table))
	if err != nil {
		return nil, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	r.stmt = stmt
	return stmt, nil
}

// InsertProperty writes one record.
func (r *Repository) InsertProperty(ctx context.Context, rec storage.PropertyRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	args, err := values(rec)
	if err != nil {
		return err
	}
	stmt, err := r.prepared(ctx)
	if err != nil {
		return err
	}
	if _, err := stmt.ExecContext(ctx, args...); err != nil {
		return fmt.Errorf("sqlite: insert row %d: %w", rec.SourceRow, err)
	}
	return nil
}

// values renders rec in storage.Columns order.
func values(rec storage.PropertyRecord) ([]any, error) {
	extra, err := rec.ExtraJSON()
	if err != nil {
		return nil, err
	}
	var extraVal any
	if extra != nil {
		extraVal = string(extra)
	}
	return []any{
		rec.ID.String(),
		rec.UploadID.String(),
		rec.OwnerID.String(),
		rec.Address,
		rec.Rent.String(),
		string(rec.PropertyType),
		rec.AvailableDate.Format(storage.DateLayout),
		rec.PreferredNationality,
		string(rec.PreferredProfession),
		string(rec.PreferredRace),
		rec.PetsAllowed,
		extraVal,
		rec.SourceRow,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	}, nil
}

// Exec executes an arbitrary statement, typically DDL.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sql); err != nil {
		return fmt.Errorf("sqlite: exec: %w", err)
	}
	return nil
}

// CreateTableSQL renders the property table for SQLite.
func CreateTableSQL(table string) (string, error) {
	td, err := ddl.PropertyTable(table, Types)
	if err != nil {
		return "", err
	}
	return ddl.BuildCreateTableSQL(td, "CREATE TABLE IF NOT EXISTS", ddl.DoubleQuote)
}
