// Package output serializes the merged table: the CSV deliverable and a spreadsheet copy.
package output

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/tphakala/birdstrike/internal/dataset"
	"github.com/tphakala/birdstrike/internal/errors"
	"github.com/tphakala/birdstrike/internal/logger"
)

// Options controls cell rendering
type Options struct {
	// DateLayout formats date cells; empty means dataset.DateLayout
	DateLayout string
}

func (o Options) dateLayout() string {
	if o.DateLayout == "" {
		return dataset.DateLayout
	}
	return o.DateLayout
}

// WriteCSV writes t to path as comma-separated values with a header row. Nulls are
// empty fields, numbers keep their source literal. The file appears only once
// completely written; any failure is an IOError.
func WriteCSV(t *dataset.Table, path string, opts Options) error {
	pending, err := StageCSV(t, path, opts)
	if err != nil {
		return err
	}
	if err := pending.Commit(); err != nil {
		return err
	}

	GetLogger().Info("csv written",
		logger.String("path", path),
		logger.Int("rows", t.Len()),
		logger.Int("columns", len(t.Columns)))
	return nil
}

// StageCSV encodes t into a temporary file next to path without touching path itself.
// The caller commits it once the rest of the run succeeded, or discards it.
func StageCSV(t *dataset.Table, path string, opts Options) (*PendingFile, error) {
	pending, err := stageFile(path, ".birdstrike-*.csv", func(w io.Writer) error {
		return EncodeCSV(w, t, opts)
	})
	if err != nil {
		return nil, errors.IOError(err, path)
	}

	GetLogger().Debug("csv staged",
		logger.String("path", path),
		logger.Int("rows", t.Len()))
	return pending, nil
}

// EncodeCSV writes t to w as comma-separated values with a header row.
func EncodeCSV(w io.Writer, t *dataset.Table, opts Options) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	layout := opts.dateLayout()
	record := make([]string, len(t.Columns))
	for r := range t.Rows {
		for c := range t.Columns {
			record[c] = cellText(t.Cell(r, c), layout)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func cellText(v dataset.Value, dateLayout string) string {
	if d, ok := v.Date(); ok {
		return d.Format(dateLayout)
	}
	return v.Text()
}
