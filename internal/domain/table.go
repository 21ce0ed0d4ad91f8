package domain

import "fmt"

// Table is an executed result set: a header of column names followed by data
// rows. Every row holds exactly len(Header) cells. Writers read a Table and
// never mutate it.
type Table struct {
	Header []string
	Rows   [][]Cell
}

func NewTable(header []string) *Table {
	h := make([]string, len(header))
	copy(h, header)
	return &Table{Header: h}
}

// Append adds a data row, rejecting rows whose width differs from the header.
func (t *Table) Append(row []Cell) error {
	if len(row) != len(t.Header) {
		return fmt.Errorf("row has %d cells, header has %d columns", len(row), len(t.Header))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// Columns returns the column count.
func (t *Table) Columns() int {
	if t == nil {
		return 0
	}
	return len(t.Header)
}

// Len returns the number of data rows, header excluded.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}
