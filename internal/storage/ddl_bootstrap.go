package storage

import (
	"context"
	"fmt"
	"sync"
)

// DDLBootstrapper creates the property table for one backend, typically
// with CREATE TABLE IF NOT EXISTS applied through Store.Exec.
type DDLBootstrapper func(ctx context.Context, s Store, table string) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) the bootstrapper for kind.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTable runs the bootstrapper registered for kind against s.
func EnsureTable(ctx context.Context, kind string, s Store, table string) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage kind %q", kind)
	}
	if table == "" {
		table = DefaultTable
	}
	if err := fn(ctx, s, table); err != nil {
		return fmt.Errorf("ensure table %s: %w", table, err)
	}
	return nil
}
