package output

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/tphakala/birdstrike/internal/dataset"
	"github.com/tphakala/birdstrike/internal/errors"
	"github.com/tphakala/birdstrike/internal/logger"
)

// SheetName is the worksheet holding the merged table
const SheetName = "merged"

const xlsxDateFormat = "yyyy-mm-dd"

// WriteXLSX writes t to path as a workbook with one sheet. Dates are stored as date
// cells, numbers as numbers. Any failure is an IOError.
func WriteXLSX(t *dataset.Table, path string) error {
	f, err := buildWorkbook(t)
	if err != nil {
		return errors.IOError(err, path)
	}
	defer func() { _ = f.Close() }()

	err = atomicWriteFile(path, ".birdstrike-*.xlsx", func(w io.Writer) error {
		return f.Write(w)
	})
	if err != nil {
		return errors.IOError(err, path)
	}

	GetLogger().Info("xlsx written",
		logger.String("path", path),
		logger.Int("rows", t.Len()))
	return nil
}

func buildWorkbook(t *dataset.Table) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		_ = f.Close()
		return nil, err
	}

	if err := writeSheet(f, t); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

func writeSheet(f *excelize.File, t *dataset.Table) error {
	header := make([]any, len(t.Columns))
	for i, name := range t.Columns {
		header[i] = name
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	numFmt := xlsxDateFormat
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return fmt.Errorf("failed to create date style: %w", err)
	}

	values := make([]any, len(t.Columns))
	for r := range t.Rows {
		excelRow := r + 2
		for c := range t.Columns {
			values[c] = t.Cell(r, c).Interface()
		}
		start, err := excelize.CoordinatesToCellName(1, excelRow)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, start, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r, err)
		}
		for c := range t.Columns {
			if t.Cell(r, c).Kind() != dataset.KindDate {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, excelRow)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(SheetName, cell, cell, dateStyle); err != nil {
				return fmt.Errorf("failed to style %s: %w", cell, err)
			}
		}
	}
	return nil
}
