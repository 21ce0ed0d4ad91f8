package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/animus-labs/sqlexport/internal/domain"
	"github.com/animus-labs/sqlexport/internal/normalize"
)

const (
	DefaultDelimiter = '\t'
	DefaultQuote     = '"'
)

// DelimitedWriter writes a Table as delimiter-separated text: header first,
// one record per row, "\n" terminated. A field is wrapped in Quote when it
// contains the delimiter, the quote character or a line break; embedded quote
// characters are doubled. The zero value writes tab-separated text with '"'
// quoting and no text cleaning.
type DelimitedWriter struct {
	Delimiter rune
	Quote     rune
	Options   normalize.Options
}

// NewDelimitedWriter returns a writer with the default delimiter, quote and
// text cleaning.
func NewDelimitedWriter() DelimitedWriter {
	return DelimitedWriter{
		Delimiter: DefaultDelimiter,
		Quote:     DefaultQuote,
		Options:   normalize.DefaultOptions,
	}
}

func (w DelimitedWriter) Write(out io.Writer, t *domain.Table) error {
	bw := bufio.NewWriter(out)
	if err := w.writeRecord(bw, t.Header); err != nil {
		return err
	}
	for i, row := range t.Rows {
		fields, err := normalize.Row(row, w.Options)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
		if err := w.writeRecord(bw, fields); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (w DelimitedWriter) writeRecord(bw *bufio.Writer, fields []string) error {
	delim, quote := w.delimiter(), w.quote()
	for i, field := range fields {
		if i > 0 {
			bw.WriteRune(delim)
		}
		// A lone empty field would otherwise produce a blank line.
		if !w.needsQuotes(field) && !(len(fields) == 1 && field == "") {
			bw.WriteString(field)
			continue
		}
		bw.WriteRune(quote)
		for _, r := range field {
			if r == quote {
				bw.WriteRune(quote)
			}
			bw.WriteRune(r)
		}
		bw.WriteRune(quote)
	}
	_, err := bw.WriteString("\n")
	return err
}

func (w DelimitedWriter) needsQuotes(field string) bool {
	return strings.ContainsRune(field, w.delimiter()) ||
		strings.ContainsRune(field, w.quote()) ||
		strings.ContainsAny(field, "\r\n")
}

func (w DelimitedWriter) delimiter() rune {
	if w.Delimiter == 0 {
		return DefaultDelimiter
	}
	return w.Delimiter
}

func (w DelimitedWriter) quote() rune {
	if w.Quote == 0 {
		return DefaultQuote
	}
	return w.Quote
}
