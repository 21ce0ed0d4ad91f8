package domain

// QuerySource is one query file: its logical name (the file stem), where it
// was read from, its raw text with line endings untouched, and the stored
// integrity hash when a record exists beside it.
type QuerySource struct {
	Name string
	Path string
	Text string
	Hash *string
}

func (q QuerySource) HasHash() bool {
	return q.Hash != nil
}

// Snippet returns the first line of the query text, shortened for diagnostics.
func (q QuerySource) Snippet() string {
	return Snippet(q.Text, 80)
}

func Snippet(text string, max int) string {
	line := text
	for i, r := range text {
		if r == '\n' || r == '\r' {
			line = text[:i]
			break
		}
	}
	runes := []rune(line)
	if max > 0 && len(runes) > max {
		return string(runes[:max]) + "..."
	}
	return line
}
