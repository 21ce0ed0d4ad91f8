// Package source discovers query files in a directory and loads them together
// with their integrity records.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/animus-labs/sqlexport/internal/domain"
	"github.com/animus-labs/sqlexport/internal/integrity"
)

const (
	QueryExt = ".sql"
	HashExt  = ".hash"
)

// Name returns the logical name of a query file: its base name without the
// .sql extension.
func Name(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// HashPath returns the integrity record path that belongs to a query file.
func HashPath(path string) string {
	return filepath.Join(filepath.Dir(path), Name(path)+HashExt)
}

// List returns the query file paths in dir, sorted by name.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list query files: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), QueryExt) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Load reads one query file verbatim, line endings included, and the hash
// record beside it when one exists.
func Load(path string) (domain.QuerySource, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.QuerySource{}, fmt.Errorf("read query file: %w", err)
	}
	hash, err := integrity.ReadRecord(HashPath(path))
	if err != nil {
		return domain.QuerySource{}, err
	}
	return domain.QuerySource{
		Name: Name(path),
		Path: path,
		Text: string(b),
		Hash: hash,
	}, nil
}

// Scan lists and loads every query file in dir.
func Scan(dir string) ([]domain.QuerySource, error) {
	paths, err := List(dir)
	if err != nil {
		return nil, err
	}
	out := make([]domain.QuerySource, 0, len(paths))
	for _, p := range paths {
		q, err := Load(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		out = append(out, q)
	}
	return out, nil
}
