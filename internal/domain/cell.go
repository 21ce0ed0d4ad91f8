package domain

import (
	"fmt"
	"strings"
	"time"

	mssql "github.com/microsoft/go-mssqldb"
)

// Kind tags the runtime type carried by a Cell.
type Kind uint8

const (
	KindNull Kind = iota
	KindText
	KindInteger
	KindFloat
	KindDecimal
	KindBoolean
	KindDate
	KindTimestamp
	KindDuration
	// KindUnsupported carries a driver value of any other runtime type.
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindDecimal:
		return "decimal"
	case KindBoolean:
		return "boolean"
	case KindDate:
		return "date"
	case KindTimestamp:
		return "timestamp"
	case KindDuration:
		return "duration"
	case KindUnsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Cell is one (row, column) value of a result set. The zero value is Null.
type Cell struct {
	kind Kind
	text string
	i    int64
	f    float64
	bits int
	b    bool
	t    time.Time
	raw  any
}

func Null() Cell                 { return Cell{} }
func Text(s string) Cell         { return Cell{kind: KindText, text: s} }
func Integer(i int64) Cell       { return Cell{kind: KindInteger, i: i} }
func Float(f float64) Cell       { return Cell{kind: KindFloat, f: f, bits: 64} }
func Boolean(b bool) Cell        { return Cell{kind: KindBoolean, b: b} }
func Date(t time.Time) Cell      { return Cell{kind: KindDate, t: t} }
func Timestamp(t time.Time) Cell { return Cell{kind: KindTimestamp, t: t} }

// Float32 holds a single-precision value; it keeps its 32-bit shortest form.
func Float32(f float32) Cell { return Cell{kind: KindFloat, f: float64(f), bits: 32} }

// Decimal holds a fixed-point number in the driver's own string form.
func Decimal(s string) Cell { return Cell{kind: KindDecimal, text: s} }

// Duration holds an interval in the driver's own string form.
func Duration(s string) Cell { return Cell{kind: KindDuration, text: s} }

// Unsupported wraps a value no other kind can represent.
func Unsupported(v any) Cell { return Cell{kind: KindUnsupported, raw: v} }

func (c Cell) Kind() Kind       { return c.kind }
func (c Cell) IsNull() bool     { return c.kind == KindNull }
func (c Cell) Int() int64       { return c.i }
func (c Cell) Float() float64   { return c.f }
func (c Cell) Bool() bool       { return c.b }
func (c Cell) Time() time.Time  { return c.t }
func (c Cell) Raw() any         { return c.raw }
func (c Cell) String() string   { return c.text }
func (c Cell) TypeName() string { return typeName(c) }

// FloatBits is the precision of a float cell, 32 or 64.
func (c Cell) FloatBits() int {
	if c.bits == 32 {
		return 32
	}
	return 64
}

func typeName(c Cell) string {
	if c.kind == KindUnsupported {
		return fmt.Sprintf("%T", c.raw)
	}
	return c.kind.String()
}

// CellFromDriver maps a value scanned from database/sql into a Cell. The
// column's database type name disambiguates values that share a Go type:
// DATE vs TIMESTAMP for time.Time, NUMERIC or INTERVAL text, integer booleans
// and binary columns.
func CellFromDriver(v any, databaseType string) Cell {
	dbType := strings.ToUpper(strings.TrimSpace(databaseType))
	switch x := v.(type) {
	case nil:
		return Null()
	case string:
		return fromString(x, dbType)
	case []byte:
		if dbType == "UNIQUEIDENTIFIER" {
			var id mssql.UniqueIdentifier
			if err := id.Scan(x); err != nil {
				return Unsupported(x)
			}
			return Text(id.String())
		}
		if isBinaryType(dbType) {
			return Unsupported(x)
		}
		return fromString(string(x), dbType)
	case bool:
		return Boolean(x)
	case int64:
		if isBoolType(dbType) {
			return Boolean(x != 0)
		}
		return Integer(x)
	case int:
		return Integer(int64(x))
	case int32:
		return Integer(int64(x))
	case int16:
		return Integer(int64(x))
	case int8:
		return Integer(int64(x))
	case uint32:
		return Integer(int64(x))
	case uint16:
		return Integer(int64(x))
	case uint8:
		return Integer(int64(x))
	case float64:
		if isFloat32Type(dbType) {
			return Float32(float32(x))
		}
		return Float(x)
	case float32:
		return Float32(x)
	case time.Time:
		if dbType == "DATE" {
			return Date(x)
		}
		return Timestamp(x)
	case time.Duration:
		return Duration(x.String())
	default:
		return Unsupported(v)
	}
}

func fromString(s string, dbType string) Cell {
	switch {
	case isDecimalType(dbType):
		return Decimal(s)
	case strings.HasPrefix(dbType, "INTERVAL"):
		return Duration(s)
	default:
		return Text(s)
	}
}

func isDecimalType(dbType string) bool {
	switch dbType {
	case "NUMERIC", "DECIMAL", "MONEY", "SMALLMONEY", "NUMBER":
		return true
	}
	return false
}

func isBoolType(dbType string) bool {
	switch dbType {
	case "BOOL", "BOOLEAN", "BIT":
		return true
	}
	return false
}

func isBinaryType(dbType string) bool {
	switch dbType {
	case "BYTEA", "BLOB", "BINARY", "VARBINARY", "IMAGE", "RAW", "LONG RAW":
		return true
	}
	return false
}

// isFloat32Type lists single-precision column types whose drivers widen the
// value to float64.
func isFloat32Type(dbType string) bool {
	switch dbType {
	case "FLOAT4", "REAL", "BINARY_FLOAT":
		return true
	}
	return false
}
