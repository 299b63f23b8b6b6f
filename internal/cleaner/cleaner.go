// Package cleaner removes incomplete and ambiguous rows from the input tables.
//
// Two rules apply: rows missing a value in any required leading column are dropped,
// and for keyed tables every row whose key occurs more than once is dropped. No
// occurrence of a duplicated key survives.
package cleaner

import (
	"fmt"

	"github.com/tphakala/birdstrike/internal/dataset"
	"github.com/tphakala/birdstrike/internal/errors"
	"github.com/tphakala/birdstrike/internal/logger"
	"github.com/tphakala/birdstrike/internal/normalize"
)

const component = "cleaner"

// Required leading columns per table
const (
	LightLevelsRequired = 2
	CollisionsRequired  = 4
	FlightCallsRequired = len(normalize.CanonicalFlightCallColumns)
)

// DateColumn keys the light-level table
const DateColumn = "Date"

// Stats describes what cleaning did to one table
type Stats struct {
	Table            string
	RowsIn           int
	DroppedMissing   int
	DroppedDuplicate int
	RowsOut          int
}

// DropMissing returns the rows of t that have a value in each of the first n columns.
// A table with fewer than n columns is a SchemaError.
func DropMissing(t *dataset.Table, n int) (*dataset.Table, error) {
	if len(t.Columns) < n {
		return nil, errors.SchemaError(component, t.Name, fmt.Sprintf("#%d", n))
	}
	return t.Filter(func(row dataset.Row) bool {
		for c := range n {
			if c >= len(row) || row[c].IsNull() {
				return false
			}
		}
		return true
	}), nil
}

// DropDuplicateKeys removes every row whose key, as returned by key for its row index,
// is shared with another row. Row order is preserved.
func DropDuplicateKeys(t *dataset.Table, key func(r int) string) *dataset.Table {
	keys := make([]string, t.Len())
	counts := make(map[string]int, t.Len())
	for r := range t.Rows {
		keys[r] = key(r)
		counts[keys[r]]++
	}

	out := dataset.New(t.Name, t.Columns)
	for r, row := range t.Rows {
		if counts[keys[r]] == 1 {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// CleanLightLevels drops rows missing Date or LightScore, then every date that
// appears more than once.
func CleanLightLevels(t *dataset.Table) (*dataset.Table, Stats, error) {
	stats := Stats{Table: t.Name, RowsIn: t.Len()}

	complete, err := DropMissing(t, LightLevelsRequired)
	if err != nil {
		return nil, stats, err
	}
	stats.DroppedMissing = t.Len() - complete.Len()

	dateCol, err := complete.Column(component, DateColumn)
	if err != nil {
		return nil, stats, err
	}
	unique := DropDuplicateKeys(complete, func(r int) string {
		return complete.Cell(r, dateCol).Text()
	})
	stats.DroppedDuplicate = complete.Len() - unique.Len()
	stats.RowsOut = unique.Len()

	logStats(stats)
	return unique, stats, nil
}

// CleanCollisions drops rows missing any of the first four columns.
func CleanCollisions(t *dataset.Table) (*dataset.Table, Stats, error) {
	stats := Stats{Table: t.Name, RowsIn: t.Len()}

	complete, err := DropMissing(t, CollisionsRequired)
	if err != nil {
		return nil, stats, err
	}
	stats.DroppedMissing = t.Len() - complete.Len()
	stats.RowsOut = complete.Len()

	logStats(stats)
	return complete, stats, nil
}

// CleanFlightCalls drops rows missing any canonical column, then every row whose
// family+genus+species identity is shared with another row. t must already carry
// the canonical column names.
func CleanFlightCalls(t *dataset.Table) (*dataset.Table, Stats, error) {
	stats := Stats{Table: t.Name, RowsIn: t.Len()}

	complete, err := DropMissing(t, FlightCallsRequired)
	if err != nil {
		return nil, stats, err
	}
	stats.DroppedMissing = t.Len() - complete.Len()

	calls, err := normalize.FlightCalls(complete)
	if err != nil {
		return nil, stats, err
	}
	unique := DropDuplicateKeys(complete, func(r int) string {
		return calls[r].TaxKey()
	})
	stats.DroppedDuplicate = complete.Len() - unique.Len()
	stats.RowsOut = unique.Len()

	logStats(stats)
	return unique, stats, nil
}

func logStats(s Stats) {
	GetLogger().Info("table cleaned",
		logger.String("table", s.Table),
		logger.Int("rows_in", s.RowsIn),
		logger.Int("dropped_missing", s.DroppedMissing),
		logger.Int("dropped_duplicate", s.DroppedDuplicate),
		logger.Int("rows_out", s.RowsOut))
}
