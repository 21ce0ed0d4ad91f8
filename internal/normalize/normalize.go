// Package normalize converts result cells into their export representation:
// a display string for delimited text, or a native value for spreadsheet
// cells.
package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/animus-labs/sqlexport/internal/domain"
)

const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02_15:04:05"
)

// Options control how text cells are cleaned for delimited output.
type Options struct {
	RemoveLinebreaks bool
	RemoveQuotes     bool
	Trim             bool
}

// DefaultOptions is what the delimited writer applies.
var DefaultOptions = Options{RemoveLinebreaks: true, RemoveQuotes: true, Trim: true}

// UnhandledTypeError names a value that no export rule covers.
type UnhandledTypeError struct {
	Type string
}

func (e *UnhandledTypeError) Error() string {
	return fmt.Sprintf("unhandled column type: %s", e.Type)
}

var linebreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")
var quotes = strings.NewReplacer(`"`, "", "'", "")

// Text renders a cell as a display string.
func Text(c domain.Cell, opts Options) (string, error) {
	switch c.Kind() {
	case domain.KindNull:
		return "", nil
	case domain.KindText:
		return cleanText(c.String(), opts), nil
	case domain.KindInteger:
		return strconv.FormatInt(c.Int(), 10), nil
	case domain.KindFloat:
		return strconv.FormatFloat(c.Float(), 'f', -1, c.FloatBits()), nil
	case domain.KindDecimal, domain.KindDuration:
		return c.String(), nil
	case domain.KindBoolean:
		if c.Bool() {
			return "1", nil
		}
		return "0", nil
	case domain.KindDate:
		return c.Time().Format(DateLayout), nil
	case domain.KindTimestamp:
		return c.Time().Format(TimestampLayout), nil
	default:
		return "", &UnhandledTypeError{Type: c.TypeName()}
	}
}

// cleanText squeezes double spaces with two fixed passes, so a run of five
// or more spaces is shortened but not collapsed to one.
func cleanText(s string, opts Options) string {
	if opts.RemoveLinebreaks {
		s = linebreaks.Replace(s)
	}
	if opts.RemoveQuotes {
		s = quotes.Replace(s)
	}
	if opts.Trim {
		s = strings.TrimSpace(s)
		s = strings.ReplaceAll(s, "\t", " ")
		s = strings.ReplaceAll(s, "  ", " ")
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return s
}

// Native returns the value a spreadsheet cell should hold. Numbers, booleans
// and dates keep their native type; nil means an empty cell.
func Native(c domain.Cell) (any, error) {
	switch c.Kind() {
	case domain.KindNull:
		return nil, nil
	case domain.KindText:
		return c.String(), nil
	case domain.KindInteger:
		return c.Int(), nil
	case domain.KindFloat:
		if c.FloatBits() == 32 {
			// Reparse the 32-bit shortest form so 1.1 stays 1.1.
			f, _ := strconv.ParseFloat(strconv.FormatFloat(c.Float(), 'g', -1, 32), 64)
			return f, nil
		}
		return c.Float(), nil
	case domain.KindDecimal:
		if f, err := strconv.ParseFloat(c.String(), 64); err == nil {
			return f, nil
		}
		return c.String(), nil
	case domain.KindBoolean:
		return c.Bool(), nil
	case domain.KindDate, domain.KindTimestamp:
		return c.Time(), nil
	case domain.KindDuration:
		return c.String(), nil
	default:
		return nil, &UnhandledTypeError{Type: c.TypeName()}
	}
}

// Row renders every cell of a row with Text.
func Row(row []domain.Cell, opts Options) ([]string, error) {
	out := make([]string, len(row))
	for i, c := range row {
		s, err := Text(c, opts)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i+1, err)
		}
		out[i] = s
	}
	return out, nil
}

