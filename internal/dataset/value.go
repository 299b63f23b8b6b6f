// Package dataset holds the in-memory tables the pipeline stages pass to each other:
// typed cells, civil dates and ordered-column tables.
package dataset

import (
	"fmt"
	"strconv"
	"time"
)

// Kind identifies what a Value holds
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is one table cell. The zero Value is null, which is what "missing" means
// throughout the pipeline; an empty string is a present value.
type Value struct {
	kind Kind
	str  string // string payload, or the original literal of a number
	num  float64
	b    bool
	date Date
}

// Null returns the missing value
func Null() Value { return Value{} }

// String returns a string value
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a numeric value that renders as literal. An empty literal is
// rendered with strconv's shortest float form.
func Number(f float64, literal string) Value {
	if literal == "" {
		literal = strconv.FormatFloat(f, 'f', -1, 64)
	}
	return Value{kind: KindNumber, num: f, str: literal}
}

// Bool returns a boolean value
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// DateValue returns a date value
func DateValue(d Date) Value { return Value{kind: KindDate, date: d} }

// Kind reports the kind of the value
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is missing
func (v Value) IsNull() bool { return v.kind == KindNull }

// Float returns the numeric payload and whether the value is a number
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Date returns the date payload and whether the value is a date
func (v Value) Date() (Date, bool) {
	return v.date, v.kind == KindDate
}

// Text renders the value the way it is written to delimited output:
// null as "", numbers as their source literal, bools as true/false, dates as YYYY-MM-DD.
func (v Value) Text() string {
	switch v.kind {
	case KindString, KindNumber:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindDate:
		return v.date.String()
	default:
		return ""
	}
}

// Interface returns the value as a plain Go value for encoders: nil, string, float64,
// bool or time.Time (UTC midnight) for dates.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindDate:
		return v.date.Time(time.UTC)
	default:
		return nil
	}
}

// Equal reports whether two values are the same kind and payload.
// Numbers compare by numeric value, not by literal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindDate:
		return v.date == o.date
	}
	return false
}

// GoString makes test failure output readable
func (v Value) GoString() string {
	if v.kind == KindNull {
		return "null"
	}
	return fmt.Sprintf("%s(%q)", v.kind, v.Text())
}
