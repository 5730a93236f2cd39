// Package ddl defines a small, dialect-neutral model of a CREATE TABLE
// statement and the property listings table expressed in it. Backends supply
// a Types map for their SQL dialect and render the statement with their own
// identifier quoting.
package ddl

import (
	"fmt"
	"strings"
)

// ColumnDef describes one column.
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	// Default is emitted as raw SQL.
	Default string
}

// TableDef describes one table. FQN may be schema-qualified.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// Logical column types used by the property table.
const (
	TypeUUID      = "uuid"
	TypeText      = "text"
	TypeShortText = "short_text"
	TypeMoney     = "money"
	TypeDate      = "date"
	TypeBool      = "bool"
	TypeJSON      = "json"
	TypeInt       = "int"
	TypeTimestamp = "timestamp"
)

// Types maps a logical type to a dialect type.
type Types map[string]string

// PropertyTable builds the property listings table for a dialect.
func PropertyTable(fqn string, types Types) (TableDef, error) {
	col := func(name, logical string, nullable, pk bool) (ColumnDef, error) {
		t, ok := types[logical]
		if !ok || strings.TrimSpace(t) == "" {
			return ColumnDef{}, fmt.Errorf("ddl: no SQL type for %s (column %s)", logical, name)
		}
		return ColumnDef{Name: name, SQLType: t, Nullable: nullable, PrimaryKey: pk}, nil
	}

	defs := []struct {
		name     string
		logical  string
		nullable bool
		pk       bool
	}{
		{"id", TypeUUID, false, true},
		{"upload_id", TypeUUID, false, false},
		{"owner_id", TypeUUID, false, false},
		{"property_address", TypeText, false, false},
		{"rent_per_month", TypeMoney, false, false},
		{"property_type", TypeShortText, false, false},
		{"available_date", TypeDate, false, false},
		{"preferred_nationality", TypeText, false, false},
		{"preferred_profession", TypeShortText, false, false},
		{"preferred_race", TypeShortText, false, false},
		{"pets_allowed", TypeBool, false, false},
		{"extra", TypeJSON, true, false},
		{"source_row", TypeInt, false, false},
		{"created_at", TypeTimestamp, false, false},
	}

	td := TableDef{FQN: fqn}
	for _, s := range defs {
		c, err := col(s.name, s.logical, s.nullable, s.pk)
		if err != nil {
			return TableDef{}, err
		}
		td.Columns = append(td.Columns, c)
	}
	return td, nil
}

// Quoter quotes one identifier segment.
type Quoter func(string) string

// BuildCreateTableSQL renders t as CREATE TABLE with quoted identifiers.
// prefix is the statement head, e.g. "CREATE TABLE IF NOT EXISTS".
func BuildCreateTableSQL(t TableDef, prefix string, quote Quoter) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns)+1)
	var pks []string
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s missing SQLType", name)
		}

		var sb strings.Builder
		sb.WriteString(quote(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable || c.PrimaryKey {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, quote(name))
		}
	}
	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	return fmt.Sprintf("%s %s (\n  %s\n);", prefix, QuoteFQN(fqn, quote), strings.Join(cols, ",\n  ")), nil
}

// QuoteFQN quotes each dot-separated segment of name.
func QuoteFQN(name string, quote Quoter) string {
	parts := strings.Split(name, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, quote(p))
	}
	return strings.Join(out, ".")
}

// DoubleQuote is ANSI identifier quoting, used by Postgres and SQLite.
func DoubleQuote(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// BracketQuote is SQL Server identifier quoting.
func BracketQuote(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}
