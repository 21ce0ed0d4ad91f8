package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/animus-labs/sqlexport/internal/domain"
	"github.com/animus-labs/sqlexport/internal/normalize"
)

const (
	DefaultSheet    = "Sheet1"
	dateNumFmt      = "yyyy-mm-dd"
	timestampNumFmt = "yyyy-mm-dd hh:mm:ss"
)

// SpreadsheetWriter writes a Table as a single-sheet workbook: the header in
// row 1 in bold, data from row 2, columns in table order starting at A.
// Numbers, booleans and dates are stored natively.
type SpreadsheetWriter struct {
	Sheet string
}

func (w SpreadsheetWriter) Write(out io.Writer, t *domain.Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := w.Sheet
	if sheet == "" {
		sheet = DefaultSheet
	}
	if sheet != DefaultSheet {
		if err := f.SetSheetName(DefaultSheet, sheet); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
	}

	styles, err := newStyles(f)
	if err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}

	header := make([]any, len(t.Header))
	for j, name := range t.Header {
		header[j] = excelize.Cell{StyleID: styles.bold, Value: name}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("header row: %w", err)
	}

	for i, row := range t.Rows {
		values := make([]any, len(row))
		for j, c := range row {
			v, err := normalize.Native(c)
			if err != nil {
				return fmt.Errorf("row %d column %d: %w", i+1, j+1, err)
			}
			switch c.Kind() {
			case domain.KindDate:
				values[j] = excelize.Cell{StyleID: styles.date, Value: v}
			case domain.KindTimestamp:
				values[j] = excelize.Cell{StyleID: styles.timestamp, Value: v}
			default:
				values[j] = v
			}
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(axis, values); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

type sheetStyles struct {
	bold      int
	date      int
	timestamp int
}

func newStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error
	if s.bold, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return s, fmt.Errorf("header style: %w", err)
	}
	dateFmt := dateNumFmt
	if s.date, err = f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt}); err != nil {
		return s, fmt.Errorf("date style: %w", err)
	}
	tsFmt := timestampNumFmt
	if s.timestamp, err = f.NewStyle(&excelize.Style{CustomNumFmt: &tsFmt}); err != nil {
		return s, fmt.Errorf("timestamp style: %w", err)
	}
	return s, nil
}
