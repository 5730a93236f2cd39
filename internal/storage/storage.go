// Package storage holds the backend-agnostic record store contract for
// property listings and the registry that maps a storage kind ("sqlite",
// "postgres", "mssql", "memory") to a constructor.
//
// Backends register themselves from init; import storage/all to enable all
// of them.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// DefaultTable is the destination table when Config.Table is empty.
const DefaultTable = "property_listings"

// Store persists one property record per call. Implementations must be
// safe for sequential use by a single committer; concurrent callers need
// their own synchronisation unless the backend documents otherwise.
type Store interface {
	InsertProperty(ctx context.Context, rec PropertyRecord) error
	// Exec runs a raw statement, typically DDL.
	Exec(ctx context.Context, sql string) error
	Close()
}

// Config selects and configures a backend.
type Config struct {
	Kind  string
	DSN   string
	Table string
}

// TableName returns Table or DefaultTable.
func (c Config) TableName() string {
	if c.Table == "" {
		return DefaultTable
	}
	return c.Table
}

// Factory opens a Store for cfg.
type Factory func(ctx context.Context, cfg Config) (Store, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register adds (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = f
}

// New opens a Store using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Store, error) {
	regMu.RLock()
	f, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unknown kind %q (registered: %v)", cfg.Kind, Kinds())
	}
	if cfg.Table == "" {
		cfg.Table = DefaultTable
	}
	s, err := f(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", cfg.Kind, err)
	}
	return s, nil
}

// Kinds lists the registered storage kinds, sorted.
func Kinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
