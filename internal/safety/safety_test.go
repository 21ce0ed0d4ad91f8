package safety

import (
	"errors"
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		want   Decision
		reason string
	}{
		{name: "select", query: "SELECT 1", want: Allowed},
		{name: "select lower", query: "select * from t", want: Allowed},
		{name: "select no space", query: "select*from t", want: Allowed},
		{name: "drop", query: "drop table x", want: Denied, reason: ReasonDangerous},
		{name: "drop upper", query: "DROP TABLE x", want: Denied, reason: ReasonDangerous},
		{name: "delete mixed case", query: "DeLeTe from t", want: Denied, reason: ReasonDangerous},
		{name: "commit", query: "commit", want: Denied, reason: ReasonDangerous},
		{name: "with cte", query: "with x as (select 1) select * from x", want: Denied, reason: ReasonNotSelect},
		{name: "selectx is not select", query: "selectx from t", want: Denied, reason: ReasonNotSelect},
		{name: "prefix word not keyword", query: "updated_at", want: Denied, reason: ReasonNotSelect},
		{name: "empty", query: "", want: Denied, reason: ReasonNotSelect},
		{name: "leading whitespace select", query: "  select 1", want: Denied, reason: ReasonNotSelect},
		{name: "leading whitespace drop", query: "  drop table x", want: Denied, reason: ReasonNotSelect},
		{name: "leading comment", query: "-- report\nselect 1", want: Denied, reason: ReasonNotSelect},
	}

	for _, tt := range tests {
		got := Classify(tt.query)
		if got.Decision != tt.want {
			t.Fatalf("%s: Classify(%q)=%s, want %s", tt.name, tt.query, got.Decision, tt.want)
		}
		if got.Reason != tt.reason {
			t.Fatalf("%s: Classify(%q) reason=%q, want %q", tt.name, tt.query, got.Reason, tt.reason)
		}
	}
}

func TestClassifyEveryKeyword(t *testing.T) {
	for _, kw := range Keywords {
		for _, q := range []string{kw + " x", strings.ToUpper(kw) + " x", kw} {
			got := Classify(q)
			if got.Decision != Denied || got.Reason != ReasonDangerous {
				t.Fatalf("Classify(%q)=%+v, want dangerous", q, got)
			}
			if got.Keyword != kw {
				t.Fatalf("Classify(%q) keyword=%q, want %q", q, got.Keyword, kw)
			}
		}
	}
}

func TestClassifierTrimLeading(t *testing.T) {
	c := Classifier{TrimLeading: true}
	tests := []struct {
		query  string
		want   Decision
		reason string
	}{
		{query: "  select 1", want: Allowed},
		{query: "\n\tSELECT 1", want: Allowed},
		{query: "-- monthly report\nselect 1", want: Allowed},
		{query: "/* header */ select 1", want: Allowed},
		{query: "/* a */\n-- b\n  select 1", want: Allowed},
		{query: "  drop table x", want: Denied, reason: ReasonDangerous},
		{query: "-- harmless\nDELETE FROM t", want: Denied, reason: ReasonDangerous},
		{query: "/* unterminated select 1", want: Denied, reason: ReasonNotSelect},
		{query: "-- only a comment", want: Denied, reason: ReasonNotSelect},
	}
	for _, tt := range tests {
		got := c.Classify(tt.query)
		if got.Decision != tt.want || got.Reason != tt.reason {
			t.Fatalf("Classify(%q)=%+v, want %s %q", tt.query, got, tt.want, tt.reason)
		}
	}
}

func TestVerdictErr(t *testing.T) {
	if err := Classify("select 1").Err(); err != nil {
		t.Fatalf("allowed Err()=%v, want nil", err)
	}

	err := Classify("drop table x").Err()
	if !errors.Is(err, ErrDangerous) {
		t.Fatalf("Err()=%v, want ErrDangerous", err)
	}
	var unsafe *UnsafeQueryError
	if !errors.As(err, &unsafe) {
		t.Fatalf("Err() type=%T, want *UnsafeQueryError", err)
	}
	if unsafe.Snippet != "drop table x" || unsafe.Keyword != "drop" {
		t.Fatalf("UnsafeQueryError=%+v", unsafe)
	}

	if err := Classify("show tables").Err(); !errors.Is(err, ErrNotSelect) {
		t.Fatalf("Err()=%v, want ErrNotSelect", err)
	}
}
