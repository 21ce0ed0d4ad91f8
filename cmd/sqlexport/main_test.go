package main

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/animus-labs/sqlexport/internal/integrity"
)

type workspace struct {
	dir    string
	config string
	db     string
}

func newWorkspace(t *testing.T, salt string) workspace {
	t.Helper()
	root := t.TempDir()
	ws := workspace{
		dir:    filepath.Join(root, "queries"),
		config: filepath.Join(root, "sqlexport.yaml"),
		db:     filepath.Join(root, "data.db"),
	}
	require.NoError(t, os.Mkdir(ws.dir, 0o755))

	seed, err := sql.Open("sqlite", ws.db)
	require.NoError(t, err)
	_, err = seed.Exec(`CREATE TABLE items (id INTEGER, label TEXT);
		INSERT INTO items VALUES (1, 'a'), (2, 'b');`)
	require.NoError(t, err)
	require.NoError(t, seed.Close())

	body := "hash_salt: \"" + salt + "\"\n" +
		"database:\n  type: sqlite3\n  database: " + ws.db + "\n" +
		"export:\n  report_file: " + filepath.Join(root, "report.ndjson") + "\n"
	require.NoError(t, os.WriteFile(ws.config, []byte(body), 0o600))
	return ws
}

func (ws workspace) query(t *testing.T, name, text string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(ws.dir, name+".sql"), []byte(text), 0o644))
}

func (ws workspace) exec(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	args = append(args, "--config", ws.config, "--log-level", "error")
	code := execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestChecksumThenCheckThenRun(t *testing.T) {
	ws := newWorkspace(t, "pepper")
	ws.query(t, "items", "select id, label from items order by id")

	code, _, stderr := ws.exec("check", ws.dir)
	require.Equal(t, exitRuntime, code, "unsigned file must fail check: %s", stderr)

	code, stdout, stderr := ws.exec("checksum", ws.dir)
	require.Equal(t, exitOK, code, stderr)
	require.Contains(t, stdout, "items")

	record, err := os.ReadFile(filepath.Join(ws.dir, "items.hash"))
	require.NoError(t, err)
	require.Equal(t, integrity.Digest("select id, label from items order by id", "pepper"), string(record))

	code, stdout, stderr = ws.exec("check", ws.dir)
	require.Equal(t, exitOK, code, stderr)
	require.Contains(t, stdout, "ok    items")

	code, _, stderr = ws.exec("run", ws.dir)
	require.Equal(t, exitOK, code, stderr)

	text, err := os.ReadFile(filepath.Join(ws.dir, "items.csv"))
	require.NoError(t, err)
	require.Equal(t, "id\tlabel\n1\ta\n2\tb\n", string(text))
	require.FileExists(t, filepath.Join(ws.dir, "items.xlsx"))

	report, err := os.ReadFile(filepath.Join(filepath.Dir(ws.config), "report.ndjson"))
	require.NoError(t, err)
	require.Contains(t, string(report), `"state":"exported"`)
}

func TestRunOutputDirFlag(t *testing.T) {
	ws := newWorkspace(t, "")
	ws.query(t, "items", "select label from items")
	out := filepath.Join(t.TempDir(), "exports")

	code, _, stderr := ws.exec("run", ws.dir, "--output-dir", out)
	require.Equal(t, exitOK, code, stderr)
	require.FileExists(t, filepath.Join(out, "items.csv"))
	require.NoFileExists(t, filepath.Join(ws.dir, "items.csv"))
}

func TestRunUnsafeQueryExitsRuntime(t *testing.T) {
	ws := newWorkspace(t, "")
	ws.query(t, "wipe", "delete from items")

	code, _, stderr := ws.exec("run", ws.dir)
	require.Equal(t, exitRuntime, code)
	require.Contains(t, stderr, "dangerous SQL")
}

func TestChecksumRefusesEmptySalt(t *testing.T) {
	ws := newWorkspace(t, "")
	ws.query(t, "items", "select 1")

	code, _, stderr := ws.exec("checksum", ws.dir)
	require.Equal(t, exitConfig, code)
	require.True(t, strings.Contains(stderr, "hash_salt"), stderr)
	require.NoFileExists(t, filepath.Join(ws.dir, "items.hash"))
}

func TestConfigErrorsExitTwo(t *testing.T) {
	var stdout, stderr bytes.Buffer
	missing := filepath.Join(t.TempDir(), "missing.yaml")
	code := execute(context.Background(), []string{"run", "--config", missing}, &stdout, &stderr)
	require.Equal(t, exitConfig, code)

	ws := newWorkspace(t, "")
	code, _, _ = ws.exec("run", ws.dir, "--log-format", "xml")
	require.Equal(t, exitConfig, code)

	code = execute(context.Background(), []string{"run", "a", "b"}, &stdout, &stderr)
	require.Equal(t, exitConfig, code)
}
