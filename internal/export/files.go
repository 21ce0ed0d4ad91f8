// Package export serializes executed result tables to delimited text and
// spreadsheet files.
package export

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/animus-labs/sqlexport/internal/domain"
)

const (
	TextExt        = ".csv"
	SpreadsheetExt = ".xlsx"
)

// Paths returns the text and spreadsheet output paths for a query name.
func Paths(dir, name string) (text, sheet string) {
	return filepath.Join(dir, name+TextExt), filepath.Join(dir, name+SpreadsheetExt)
}

// RemoveOutputs deletes previously generated outputs for a query name so a
// skipped or failed run never leaves a stale file behind.
func RemoveOutputs(dir, name string) error {
	text, sheet := Paths(dir, name)
	for _, p := range []string{text, sheet} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove old output: %w", err)
		}
	}
	return nil
}

// WriteFile writes through a temporary file in the target directory and
// renames it into place only when write succeeds.
func WriteFile(path string, write func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}

// Writer serializes a table to a stream.
type Writer interface {
	Write(out io.Writer, t *domain.Table) error
}

// Exporter writes both output encodings for one query into Dir.
type Exporter struct {
	Dir   string
	Text  Writer
	Sheet Writer
}

func NewExporter(dir string, text DelimitedWriter) Exporter {
	return Exporter{Dir: dir, Text: text, Sheet: SpreadsheetWriter{}}
}

// Export writes <name>.csv then <name>.xlsx and returns the written paths.
func (e Exporter) Export(name string, t *domain.Table) ([]string, error) {
	textPath, sheetPath := Paths(e.Dir, name)
	var written []string
	targets := []struct {
		path string
		w    Writer
	}{
		{path: textPath, w: e.Text},
		{path: sheetPath, w: e.Sheet},
	}
	for _, target := range targets {
		w := target.w
		if err := WriteFile(target.path, func(out io.Writer) error { return w.Write(out, t) }); err != nil {
			return written, fmt.Errorf("export %s: %w", filepath.Base(target.path), err)
		}
		written = append(written, target.path)
	}
	return written, nil
}
