package main

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/datasource/file"
	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/ingest"
)

const header = "property_address,rent_per_month,property_type,available_date," +
	"preferred_nationality,preferred_profession,preferred_race,pets_allowed"

func writeCSV(t *testing.T, dir, name string, rows int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString(header + "\n")
	for i := 1; i <= rows; i++ {
		fmt.Fprintf(&b, "%d Orchard Rd,%d,HDB,2025-01-01,Singaporean,PROFESSIONAL,CHINESE,no\n", i, 2000+i)
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(env map[string]string, stdin string, args ...string) result {
	var out, errOut bytes.Buffer
	code := run(args, env, strings.NewReader(stdin), &out, &errOut)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

func sqliteEnv(t *testing.T) (map[string]string, string) {
	t.Helper()
	db := filepath.Join(t.TempDir(), "listings.db")
	return map[string]string{
		"PROPIMPORT_STORAGE_KIND": "sqlite",
		"PROPIMPORT_STORAGE_DSN":  db,
		"PROPIMPORT_LOG_LEVEL":    "silent",
	}, db
}

func countRows(t *testing.T, dbPath string) int {
	t.Helper()
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "property_listings"`).Scan(&n))
	return n
}

func TestCheck_Valid(t *testing.T) {
	env, _ := sqliteEnv(t)
	path := writeCSV(t, t.TempDir(), "listings.csv", 3)

	res := runCLI(env, "", "check", path)
	require.Equal(t, exitOK, res.code, res.stderr)
	require.Contains(t, res.stdout, "File: listings.csv")
	require.Contains(t, res.stdout, "Rows: 3")
	require.Contains(t, res.stdout, "1 Orchard Rd")
	require.Contains(t, res.stdout, "2001.00")
	require.Contains(t, res.stdout, "3 rows are valid.")
}

func TestCheck_PreviewLimit(t *testing.T) {
	env, _ := sqliteEnv(t)
	path := writeCSV(t, t.TempDir(), "listings.csv", 5)

	res := runCLI(env, "", "check", "--limit", "2", path)
	require.Equal(t, exitOK, res.code)
	require.Contains(t, res.stdout, "... and 3 more rows")
	require.NotContains(t, res.stdout, "3 Orchard Rd")
}

func TestCheck_MissingHeaders(t *testing.T) {
	env, _ := sqliteEnv(t)
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("property_address\nA\n"), 0o644))

	res := runCLI(env, "", "check", path)
	require.Equal(t, exitValidation, res.code)
	require.Contains(t, res.stderr, "CSV is missing required headers: rent_per_month")
	require.Contains(t, res.stderr, "Expected headers:")
}

func TestCheck_Usage(t *testing.T) {
	env, _ := sqliteEnv(t)
	require.Equal(t, exitUsage, runCLI(env, "", "check").code)
	require.Equal(t, exitUsage, runCLI(env, "", "check", "--bogus", "x.csv").code)
}

func TestInvalidConfig(t *testing.T) {
	env, _ := sqliteEnv(t)
	env["PROPIMPORT_COMMIT_POLICY"] = "maybe"

	res := runCLI(env, "", "init-db")
	require.Equal(t, exitUsage, res.code)
	require.Contains(t, res.stderr, "COMMIT_POLICY")
}

func TestInitDB(t *testing.T) {
	env, db := sqliteEnv(t)
	res := runCLI(env, "", "init-db")
	require.Equal(t, exitOK, res.code, res.stderr)
	require.Contains(t, res.stdout, "table property_listings ready (sqlite)")
	require.Zero(t, countRows(t, db))
}

func TestImport_Yes(t *testing.T) {
	env, db := sqliteEnv(t)
	path := writeCSV(t, t.TempDir(), "listings.csv", 4)

	res := runCLI(env, "", "import", "--yes", "--owner", uuid.NewString(), path)
	require.Equal(t, exitOK, res.code, res.stderr)
	require.Contains(t, res.stdout, "Imported 4 of 4 properties")
	require.Equal(t, 4, countRows(t, db))
}

func TestImport_PromptAccepted(t *testing.T) {
	env, db := sqliteEnv(t)
	path := writeCSV(t, t.TempDir(), "listings.csv", 2)

	res := runCLI(env, "y\n", "import", "--owner", uuid.NewString(), path)
	require.Equal(t, exitOK, res.code, res.stderr)
	require.Contains(t, res.stdout, "Import 2 properties? [y/N]")
	require.Equal(t, 2, countRows(t, db))
}

func TestImport_PromptDeclined(t *testing.T) {
	env, db := sqliteEnv(t)
	path := writeCSV(t, t.TempDir(), "listings.csv", 2)

	res := runCLI(env, "n\n", "import", "--owner", uuid.NewString(), path)
	require.Equal(t, exitOK, res.code, res.stderr)
	require.Contains(t, res.stdout, "Import cancelled.")
	require.Zero(t, countRows(t, db))
}

func TestImport_NoOwner(t *testing.T) {
	env, db := sqliteEnv(t)
	path := writeCSV(t, t.TempDir(), "listings.csv", 2)

	res := runCLI(env, "", "import", "--yes", path)
	require.Equal(t, exitAuth, res.code)
	require.Contains(t, res.stderr, "authentication required")
	require.Zero(t, countRows(t, db))
}

func TestImport_BadOwnerAndPolicy(t *testing.T) {
	env, _ := sqliteEnv(t)
	path := writeCSV(t, t.TempDir(), "listings.csv", 1)

	require.Equal(t, exitUsage, runCLI(env, "", "import", "--yes", "--owner", "bob", path).code)
	require.Equal(t, exitUsage, runCLI(env, "", "import", "--yes", "--owner", uuid.NewString(), "--policy", "retry", path).code)
}

func TestImport_ContinueWithSkipLog(t *testing.T) {
	env, dbPath := sqliteEnv(t)

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE "property_listings" (
		id TEXT PRIMARY KEY, upload_id TEXT, owner_id TEXT,
		property_address TEXT CHECK (property_address <> '2 Orchard Rd'),
		rent_per_month TEXT, property_type TEXT, available_date TEXT,
		preferred_nationality TEXT, preferred_profession TEXT, preferred_race TEXT,
		pets_allowed INTEGER, extra TEXT, source_row INTEGER, created_at TEXT)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	path := writeCSV(t, t.TempDir(), "listings.csv", 3)
	skip := filepath.Join(t.TempDir(), "out", "skipped.csv")

	res := runCLI(env, "", "import", "--yes", "--owner", uuid.NewString(),
		"--policy", "continue", "--skip-log", skip, path)
	require.Equal(t, exitStorage, res.code, res.stderr)
	require.Contains(t, res.stdout, "Imported 2 of 3 properties")
	require.Contains(t, res.stdout, "Rows not imported: [3]")
	require.Equal(t, 2, countRows(t, dbPath))

	data, err := os.ReadFile(skip)
	require.NoError(t, err)
	require.Contains(t, string(data), "2 Orchard Rd,2002,HDB,2025-01-01")
}

func TestImport_NotCSV(t *testing.T) {
	env, _ := sqliteEnv(t)
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte(header+"\n"), 0o644))

	res := runCLI(env, "", "import", "--yes", "--owner", uuid.NewString(), path)
	require.Equal(t, exitValidation, res.code)
	require.Contains(t, res.stderr, "please upload a CSV file")
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, exitOK},
		{errors.New("boom"), exitFailure},
		{&ingest.RowValidationError{Row: 2, Message: "Invalid rent amount"}, exitValidation},
		{&file.FileTooLargeError{Name: "x", Size: 2, Max: 1}, exitValidation},
		{&ingest.AuthenticationRequiredError{}, exitAuth},
		{&ingest.PersistenceError{Row: 2, Err: errors.New("down")}, exitStorage},
		{storageError(errors.New("dial")), exitStorage},
		{fmt.Errorf("wrapped: %w", usageError(errors.New("bad flag"))), exitUsage},
	}
	for _, c := range cases {
		require.Equal(t, c.want, exitCode(c.err), "%v", c.err)
	}
}
