package normalize

import (
	"errors"
	"testing"
	"time"

	"github.com/animus-labs/sqlexport/internal/domain"
)

func TestTextFixedValues(t *testing.T) {
	tests := []struct {
		name string
		cell domain.Cell
		want string
	}{
		{name: "null", cell: domain.Null(), want: ""},
		{name: "true", cell: domain.Boolean(true), want: "1"},
		{name: "false", cell: domain.Boolean(false), want: "0"},
		{name: "timestamp", cell: domain.Timestamp(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)), want: "2024-01-02_03:04:05"},
		{name: "date", cell: domain.Date(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)), want: "2024-01-02"},
		{name: "integer", cell: domain.Integer(-42), want: "-42"},
		{name: "float", cell: domain.Float(1.5), want: "1.5"},
		{name: "float whole", cell: domain.Float(100), want: "100"},
		{name: "float32", cell: domain.Float32(1.1), want: "1.1"},
		{name: "widened float4", cell: domain.CellFromDriver(float64(float32(1.1)), "FLOAT4"), want: "1.1"},
		{name: "guid", cell: domain.CellFromDriver([]byte{0x67, 0x45, 0x23, 0x01, 0xab, 0x89, 0xef, 0xcd, 0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef}, "UNIQUEIDENTIFIER"), want: "01234567-89AB-CDEF-0123-456789ABCDEF"},
		{name: "decimal", cell: domain.Decimal("12.50"), want: "12.50"},
		{name: "duration", cell: domain.Duration("1 day 02:00:00"), want: "1 day 02:00:00"},
	}
	for _, tt := range tests {
		got, err := Text(tt.cell, DefaultOptions)
		if err != nil {
			t.Fatalf("%s: Text() err=%v", tt.name, err)
		}
		if got != tt.want {
			t.Fatalf("%s: Text()=%q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestTextCleaning(t *testing.T) {
	tests := []struct {
		name string
		in   string
		opts Options
		want string
	}{
		{name: "linebreaks", in: "a\r\nb\nc\rd", opts: DefaultOptions, want: "a b c d"},
		{name: "quotes", in: `say "hi" it's`, opts: DefaultOptions, want: "say hi its"},
		{name: "trim and tabs", in: "  a\tb  ", opts: DefaultOptions, want: "a b"},
		{name: "three spaces", in: "a   b", opts: DefaultOptions, want: "a b"},
		{name: "four spaces", in: "a    b", opts: DefaultOptions, want: "a b"},
		{name: "five spaces keep two", in: "a     b", opts: DefaultOptions, want: "a  b"},
		{name: "no options", in: " a\n'b' ", opts: Options{}, want: " a\n'b' "},
		{name: "only linebreaks", in: " a\n'b' ", opts: Options{RemoveLinebreaks: true}, want: " a 'b' "},
	}
	for _, tt := range tests {
		got, err := Text(domain.Text(tt.in), tt.opts)
		if err != nil {
			t.Fatalf("%s: Text() err=%v", tt.name, err)
		}
		if got != tt.want {
			t.Fatalf("%s: Text(%q)=%q, want %q", tt.name, tt.in, got, tt.want)
		}
	}
}

func TestTextIdempotent(t *testing.T) {
	inputs := []string{
		"plain",
		`with "quotes" and 'apostrophes'`,
		"multi\r\nline\ntext\r",
		"a\r\n\r\nb",
		"\ttabbed\tvalue\t",
		"  padded  ",
		"a    b",
	}
	for _, in := range inputs {
		once, err := Text(domain.Text(in), DefaultOptions)
		if err != nil {
			t.Fatalf("Text(%q) err=%v", in, err)
		}
		twice, err := Text(domain.Text(once), DefaultOptions)
		if err != nil {
			t.Fatalf("Text(%q) err=%v", once, err)
		}
		if once != twice {
			t.Fatalf("Text not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestTextLongSpaceRunNotIdempotent(t *testing.T) {
	once, _ := Text(domain.Text("a     b"), DefaultOptions)
	twice, _ := Text(domain.Text(once), DefaultOptions)
	if once == twice {
		t.Fatalf("expected the two-pass squeeze to leave %q reducible, got %q twice", once, twice)
	}
}

func TestTextUnhandledType(t *testing.T) {
	_, err := Text(domain.Unsupported([]byte{1, 2}), DefaultOptions)
	var unhandled *UnhandledTypeError
	if !errors.As(err, &unhandled) {
		t.Fatalf("Text() err=%v, want *UnhandledTypeError", err)
	}
	if unhandled.Type != "[]uint8" {
		t.Fatalf("UnhandledTypeError.Type=%q, want []uint8", unhandled.Type)
	}
}

func TestRowWrapsColumn(t *testing.T) {
	_, err := Row([]domain.Cell{domain.Integer(1), domain.Unsupported(struct{}{})}, DefaultOptions)
	var unhandled *UnhandledTypeError
	if !errors.As(err, &unhandled) {
		t.Fatalf("Row() err=%v, want *UnhandledTypeError", err)
	}

	got, err := Row([]domain.Cell{domain.Integer(1), domain.Text(" x ")}, DefaultOptions)
	if err != nil {
		t.Fatalf("Row() err=%v", err)
	}
	if got[0] != "1" || got[1] != "x" {
		t.Fatalf("Row()=%q", got)
	}
}

func TestNative(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		name string
		cell domain.Cell
		want any
	}{
		{name: "null", cell: domain.Null(), want: nil},
		{name: "text untouched", cell: domain.Text(" a\nb "), want: " a\nb "},
		{name: "integer", cell: domain.Integer(3), want: int64(3)},
		{name: "float", cell: domain.Float(2.5), want: 2.5},
		{name: "float32", cell: domain.Float32(1.1), want: 1.1},
		{name: "decimal numeric", cell: domain.Decimal("12.50"), want: 12.5},
		{name: "decimal non-numeric", cell: domain.Decimal("NaN?"), want: "NaN?"},
		{name: "bool", cell: domain.Boolean(true), want: true},
		{name: "timestamp", cell: domain.Timestamp(ts), want: ts},
		{name: "duration", cell: domain.Duration("02:00:00"), want: "02:00:00"},
	}
	for _, tt := range tests {
		got, err := Native(tt.cell)
		if err != nil {
			t.Fatalf("%s: Native() err=%v", tt.name, err)
		}
		if got != tt.want {
			t.Fatalf("%s: Native()=%#v, want %#v", tt.name, got, tt.want)
		}
	}

	if _, err := Native(domain.Unsupported(struct{}{})); err == nil {
		t.Fatalf("Native() expected error for unsupported value")
	}
}
