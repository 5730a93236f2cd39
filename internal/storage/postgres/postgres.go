// Package postgres implements storage.Store on Postgres with a pgx v5
// connection pool. Extra columns are stored as jsonb.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/storage"
	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/storage/ddl"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN   string // pgxpool connection string
	Table string // optionally schema-qualified, e.g. "public.property_listings"
}

// Types maps the logical property columns to Postgres types.
var Types = ddl.Types{
	ddl.TypeUUID:      "UUID",
	ddl.TypeText:      "TEXT",
	ddl.TypeShortText: "VARCHAR(32)",
	ddl.TypeMoney:     "NUMERIC(12,2)",
	ddl.TypeDate:      "DATE",
	ddl.TypeBool:      "BOOLEAN",
	ddl.TypeJSON:      "JSONB",
	ddl.TypeInt:       "INTEGER",
	ddl.TypeTimestamp: "TIMESTAMPTZ",
}

// execer is the part of *pgxpool.Pool the repository uses.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository is a Postgres-backed property store.
type Repository struct {
	db        execer
	cfg       Config
	insertSQL string
}

// NewRepository connects a pool and returns a close function.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("postgres: DSN must not be empty")
	}
	if cfg.Table == "" {
		cfg.Table = storage.DefaultTable
	}
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return newWithExecer(pool, cfg), pool.Close, nil
}

func newWithExecer(db execer, cfg Config) *Repository {
	return &Repository{db: db, cfg: cfg, insertSQL: insertSQL(cfg.Table)}
}

func insertSQL(table string) string {
	cols := make([]string, len(storage.Columns))
	ph := make([]string, len(storage.Columns))
	for i, c := range storage.Columns {
		cols[i] = ddl.DoubleQuote(c)
		ph[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		ddl.QuoteFQN(table, ddl.DoubleQuote), strings.Join(cols, ", "), strings.Join(ph, ", "))
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
	if _, err := r.db.Exec(ctx, r.insertSQL, args...); err != nil {
		return describe(fmt.Sprintf("insert row %d", rec.SourceRow), err)
	}
	return nil
}

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
		rec.ID,
		rec.UploadID,
		rec.OwnerID,
		rec.Address,
		rec.Rent.String(),
		string(rec.PropertyType),
		rec.AvailableDate,
		rec.PreferredNationality,
		string(rec.PreferredProfession),
		string(rec.PreferredRace),
		rec.PetsAllowed,
		extraVal,
		rec.SourceRow,
		rec.CreatedAt,
	}, nil
}

// describe surfaces the server's detail text when Postgres provides one.
func describe(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		msg := pgErr.Message
		if pgErr.Detail != "" {
			msg += ": " + pgErr.Detail
		}
		return fmt.Errorf("postgres: %s: %s (%s): %w", op, msg, pgErr.SQLState(), err)
	}
	return fmt.Errorf("postgres: %s: %w", op, err)
}

// Exec executes an arbitrary statement, typically DDL.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.db.Exec(ctx, sql); err != nil {
		return describe("exec", err)
	}
	return nil
}

// CreateTableSQL renders the property table for Postgres.
func CreateTableSQL(table string) (string, error) {
	td, err := ddl.PropertyTable(table, Types)
	if err != nil {
		return "", err
	}
	for i := range td.Columns {
		if td.Columns[i].Name == "created_at" {
			td.Columns[i].Default = "now()"
		}
	}
	return ddl.BuildCreateTableSQL(td, "CREATE TABLE IF NOT EXISTS", ddl.DoubleQuote)
}
