package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical rendering of a Date
const DateLayout = "2006-01-02"

// DefaultDateLayouts are tried in order when parsing a date string. Only forms whose
// day, month and year are unambiguous are listed, except that slash-separated dates
// with the year last are read month-first. Single-digit layout fields also accept
// zero-padded input.
var DefaultDateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-1-2 15:04:05",
	"2006-1-2",
	"2006/1/2 15:04:05",
	"2006/1/2",
	"20060102",
	"1/2/2006 15:04:05",
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"January 2 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Mon, 2 Jan 2006",
	"Monday, January 2, 2006",
}

// Date is a calendar date without time of day or zone
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's location
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// String renders the date as YYYY-MM-DD
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Format renders the date using a time layout
func (d Date) Format(layout string) string {
	return d.Time(time.UTC).Format(layout)
}

// Time returns midnight of the date in loc
func (d Date) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Before reports whether d is earlier than o
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// IsZero reports whether d is the zero date
func (d Date) IsZero() bool {
	return d == Date{}
}

// ParseDate parses s with the given layouts, in order. A nil layouts slice uses
// DefaultDateLayouts. Timestamps are reduced to the calendar date written in the
// input: the time of day and the offset are dropped.
func ParseDate(s string, layouts []string) (Date, error) {
	if layouts == nil {
		layouts = DefaultDateLayouts
	}
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("unrecognized date %q", s)
}

// DateFromEpochMillis converts milliseconds since the Unix epoch to a UTC date,
// the encoding dataframe JSON exports use for datetime columns.
func DateFromEpochMillis(ms float64) (Date, error) {
	if math.IsNaN(ms) || math.IsInf(ms, 0) || ms != math.Trunc(ms) {
		return Date{}, fmt.Errorf("invalid epoch milliseconds %s", strconv.FormatFloat(ms, 'g', -1, 64))
	}
	return DateOf(time.UnixMilli(int64(ms)).UTC()), nil
}
