// Package loader reads the pipeline's JSON input files into dataset tables.
//
// Two layouts are accepted: an array of objects, one per record, and the column-keyed
// object dataframe libraries write by default ({"Date": {"0": ..., "1": ...}, ...}).
// Column order is the order in which keys are first seen. Keys a record lacks are null.
package loader

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/tphakala/birdstrike/internal/dataset"
	"github.com/tphakala/birdstrike/internal/errors"
	"github.com/tphakala/birdstrike/internal/logger"
)

// DateColumn is coerced to dataset.Date in every loaded table
const DateColumn = "Date"

const stdinPath = "-"

var errInvalidJSON = errors.NewStd("invalid JSON")

// Loader parses input sources into tables
type Loader struct {
	dateLayouts []string
	log         logger.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithDateLayouts sets the layouts tried, in order, when parsing Date strings.
func WithDateLayouts(layouts []string) Option {
	return func(l *Loader) {
		if len(layouts) > 0 {
			l.dateLayouts = layouts
		}
	}
}

// WithLogger replaces the module logger.
func WithLogger(log logger.Logger) Option {
	return func(l *Loader) {
		l.log = log
	}
}

// New returns a Loader using dataset.DefaultDateLayouts unless configured otherwise.
func New(opts ...Option) *Loader {
	l := &Loader{dateLayouts: dataset.DefaultDateLayouts}
	for _, opt := range opts {
		opt(l)
	}
	if l.log == nil {
		l.log = GetLogger()
	}
	return l
}

// LoadFile reads and parses the file at path. source names the table in errors and logs.
func (l *Loader) LoadFile(source, path string) (*dataset.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ParseError(err, source, path)
	}
	return l.parse(source, path, data)
}

// Load parses a table from r.
func (l *Loader) Load(source string, r io.Reader) (*dataset.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.ParseError(err, source, stdinPath)
	}
	return l.parse(source, stdinPath, data)
}

func (l *Loader) parse(source, path string, data []byte) (*dataset.Table, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.ParseError(errInvalidJSON, source, path)
	}

	b := newTableBuilder(source)
	root := gjson.ParseBytes(data)

	var err error
	switch {
	case root.IsArray():
		err = b.readRecords(root)
	case root.IsObject():
		err = b.readColumns(root)
	default:
		err = fmt.Errorf("top-level value is %s, want array or object", describe(root))
	}
	if err != nil {
		return nil, errors.ParseError(err, source, path)
	}

	t := b.table()
	if err := l.coerceDates(t); err != nil {
		return nil, errors.ParseError(err, source, path)
	}

	l.log.Debug("table loaded",
		logger.String("source", source),
		logger.String("path", path),
		logger.Int("rows", t.Len()),
		logger.Int("columns", len(t.Columns)))
	return t, nil
}

// coerceDates converts the Date column in place. Strings are parsed with the configured
// layouts, numbers are epoch milliseconds, nulls stay null. A blank date string
// becomes null, as dataframe date coercion does.
func (l *Loader) coerceDates(t *dataset.Table) error {
	col := t.ColumnIndex(DateColumn)
	if col < 0 {
		return nil
	}

	for r, row := range t.Rows {
		v := row[col]
		var (
			d   dataset.Date
			err error
		)
		switch v.Kind() {
		case dataset.KindNull, dataset.KindDate:
			continue
		case dataset.KindString:
			if strings.TrimSpace(v.Text()) == "" {
				row[col] = dataset.Null()
				continue
			}
			d, err = dataset.ParseDate(v.Text(), l.dateLayouts)
		case dataset.KindNumber:
			ms, _ := v.Float()
			d, err = dataset.DateFromEpochMillis(ms)
		default:
			err = fmt.Errorf("unsupported %s value", v.Kind())
		}
		if err != nil {
			return fmt.Errorf("row %d: column %s: %w", r, DateColumn, err)
		}
		row[col] = dataset.DateValue(d)
	}
	return nil
}

type tableBuilder struct {
	name    string
	columns []string
	index   map[string]int
	rows    []dataset.Row
}

func newTableBuilder(name string) *tableBuilder {
	return &tableBuilder{name: name, index: make(map[string]int)}
}

func (b *tableBuilder) column(name string) int {
	if c, ok := b.index[name]; ok {
		return c
	}
	c := len(b.columns)
	b.columns = append(b.columns, name)
	b.index[name] = c
	return c
}

func (b *tableBuilder) set(r, c int, v dataset.Value) {
	row := b.rows[r]
	for len(row) <= c {
		row = append(row, dataset.Null())
	}
	row[c] = v
	b.rows[r] = row
}

// readRecords handles [{"Date": ..., "LightScore": ...}, ...]
func (b *tableBuilder) readRecords(root gjson.Result) error {
	var err error
	root.ForEach(func(_, rec gjson.Result) bool {
		if !rec.IsObject() {
			err = fmt.Errorf("record %d is %s, want object", len(b.rows), describe(rec))
			return false
		}
		r := len(b.rows)
		b.rows = append(b.rows, nil)
		rec.ForEach(func(key, val gjson.Result) bool {
			b.set(r, b.column(key.String()), cellValue(val))
			return true
		})
		return true
	})
	return err
}

// readColumns handles {"Date": {"0": ..., "1": ...}, "LightScore": {"0": ..., "1": ...}}
func (b *tableBuilder) readColumns(root gjson.Result) error {
	rowIndex := make(map[string]int)
	var err error
	root.ForEach(func(key, cells gjson.Result) bool {
		if !cells.IsObject() {
			err = fmt.Errorf("column %q is %s, want object keyed by row", key.String(), describe(cells))
			return false
		}
		c := b.column(key.String())
		cells.ForEach(func(idx, val gjson.Result) bool {
			r, ok := rowIndex[idx.String()]
			if !ok {
				r = len(b.rows)
				rowIndex[idx.String()] = r
				b.rows = append(b.rows, nil)
			}
			b.set(r, c, cellValue(val))
			return true
		})
		return true
	})
	return err
}

func (b *tableBuilder) table() *dataset.Table {
	t := dataset.New(b.name, b.columns)
	for _, row := range b.rows {
		t.Append(row)
	}
	return t
}

func cellValue(v gjson.Result) dataset.Value {
	switch v.Type {
	case gjson.Null:
		return dataset.Null()
	case gjson.False, gjson.True:
		return dataset.Bool(v.Bool())
	case gjson.Number:
		return dataset.Number(v.Num, v.Raw)
	case gjson.String:
		return dataset.String(v.Str)
	default:
		// nested arrays and objects are kept verbatim
		return dataset.String(v.Raw)
	}
}

func describe(v gjson.Result) string {
	switch {
	case v.IsArray():
		return "an array"
	case v.IsObject():
		return "an object"
	default:
		return v.Type.String()
	}
}
