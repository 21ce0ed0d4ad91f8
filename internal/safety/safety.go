// Package safety is a static gate that refuses query text which is not a
// plain SELECT.
//
// The gate is best effort and is not a security boundary. It only inspects
// the leading token of the text. It is defeated by a denylisted keyword behind
// leading whitespace or comments when TrimLeading is off, by statements chained
// with ';', and by read-only-looking statements that still change state (for
// example a SELECT that advances a sequence or calls a mutating function).
// Run exports with a database account that can only read; that account is the
// real boundary.
package safety

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/animus-labs/sqlexport/internal/domain"
)

// Keywords that may not start a query.
var Keywords = []string{
	"create", "alter", "drop", "grant", "revoke",
	"insert", "update", "delete", "truncate", "commit",
}

var (
	denyPattern   = regexp.MustCompile(`^(` + strings.Join(Keywords, "|") + `)\b`)
	selectPattern = regexp.MustCompile(`^select\b`)
)

const (
	ReasonDangerous = "dangerous SQL"
	ReasonNotSelect = "not valid SQL"
)

var (
	ErrDangerous = errors.New(ReasonDangerous)
	ErrNotSelect = errors.New(ReasonNotSelect)
)

type Decision string

const (
	Allowed Decision = "allowed"
	Denied  Decision = "denied"
)

// Verdict is the classification of one query text.
type Verdict struct {
	Decision Decision
	Reason   string
	// Keyword is the denylisted keyword that matched, if any.
	Keyword string
	Snippet string
}

func (v Verdict) Allowed() bool {
	return v.Decision == Allowed
}

// Err returns nil for an allowed query and an *UnsafeQueryError otherwise.
func (v Verdict) Err() error {
	if v.Allowed() {
		return nil
	}
	cause := ErrNotSelect
	if v.Reason == ReasonDangerous {
		cause = ErrDangerous
	}
	return &UnsafeQueryError{Reason: v.Reason, Keyword: v.Keyword, Snippet: v.Snippet, err: cause}
}

// UnsafeQueryError reports a query refused by the classifier.
type UnsafeQueryError struct {
	Reason  string
	Keyword string
	Snippet string
	err     error
}

func (e *UnsafeQueryError) Error() string {
	if e.Keyword != "" {
		return fmt.Sprintf("%s (%s): %s", e.Reason, e.Keyword, e.Snippet)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Snippet)
}

func (e *UnsafeQueryError) Unwrap() error {
	return e.err
}

// Classifier inspects the start of a query. With TrimLeading set, leading
// whitespace and SQL comments are skipped before the keyword checks; without
// it the text must begin with the keyword itself.
type Classifier struct {
	TrimLeading bool
}

// Classify uses a Classifier with TrimLeading off.
func Classify(query string) Verdict {
	return Classifier{}.Classify(query)
}

func (c Classifier) Classify(query string) Verdict {
	v := Verdict{Snippet: domain.Snippet(strings.TrimSpace(query), 80)}
	text := strings.ToLower(query)
	if c.TrimLeading {
		text = trimLeading(text)
	}

	if m := denyPattern.FindStringSubmatch(text); m != nil {
		v.Decision = Denied
		v.Reason = ReasonDangerous
		v.Keyword = m[1]
		return v
	}
	if !selectPattern.MatchString(text) {
		v.Decision = Denied
		v.Reason = ReasonNotSelect
		return v
	}
	v.Decision = Allowed
	return v
}

func trimLeading(s string) string {
	for {
		s = strings.TrimLeftFunc(s, unicode.IsSpace)
		switch {
		case strings.HasPrefix(s, "--"):
			i := strings.IndexByte(s, '\n')
			if i < 0 {
				return ""
			}
			s = s[i+1:]
		case strings.HasPrefix(s, "/*"):
			i := strings.Index(s[2:], "*/")
			if i < 0 {
				return ""
			}
			s = s[i+4:]
		default:
			return s
		}
	}
}
