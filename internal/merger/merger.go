// Package merger joins the cleaned tables into the denormalized output table.
package merger

import (
	"cmp"
	"slices"

	"github.com/tphakala/birdstrike/internal/dataset"
	"github.com/tphakala/birdstrike/internal/logger"
	"github.com/tphakala/birdstrike/internal/normalize"
	"github.com/tphakala/birdstrike/internal/taxonomy"
)

const component = "merger"

// Join column names
const (
	DateColumn    = "Date"
	GenusColumn   = "Genus"
	SpeciesColumn = "Species"
)

// Table names of the intermediate and final results
const (
	DatedTable  = "dated_collisions"
	MergedTable = "merged"
)

// Suffixes appended to a non-key column name present on both sides of a join
const (
	LeftSuffix  = "_x"
	RightSuffix = "_y"
)

// JoinOnDate inner-joins light levels to collisions on equal Date. The result has the
// light-level columns followed by the collision columns other than Date. For each
// light-level row in order, every matching collision row is emitted in order.
func JoinOnDate(light, collisions *dataset.Table) (*dataset.Table, error) {
	leftDate, err := light.Column(component, DateColumn)
	if err != nil {
		return nil, err
	}
	rightDate, err := collisions.Column(component, DateColumn)
	if err != nil {
		return nil, err
	}

	j := join{
		name:      DatedTable,
		left:      light,
		right:     collisions,
		leftKey:   func(r int) string { return light.Cell(r, leftDate).Text() },
		rightKey:  func(r int) string { return collisions.Cell(r, rightDate).Text() },
		rightDrop: rightDate,
	}
	return j.run(), nil
}

// JoinOnSpecies inner-joins date-joined collisions to flight calls on the normalized
// genus+species key. Genus and Species are removed from the left side first, so the
// canonical flight-call columns are the only ones carrying them. The key itself is
// never added as a column.
func JoinOnSpecies(dated, flightCalls *dataset.Table) (*dataset.Table, error) {
	genus, err := dated.Column(component, GenusColumn)
	if err != nil {
		return nil, err
	}
	species, err := dated.Column(component, SpeciesColumn)
	if err != nil {
		return nil, err
	}
	calls, err := normalize.FlightCalls(flightCalls)
	if err != nil {
		return nil, err
	}

	leftKeys := make([]string, dated.Len())
	for r := range dated.Rows {
		leftKeys[r] = taxonomy.SpeciesKey(dated.Cell(r, genus).Text(), dated.Cell(r, species).Text())
	}
	left := dated.DropColumns(GenusColumn, SpeciesColumn)

	j := join{
		name:      MergedTable,
		left:      left,
		right:     flightCalls,
		leftKey:   func(r int) string { return leftKeys[r] },
		rightKey:  func(r int) string { return calls[r].SpeciesKey() },
		rightDrop: -1,
	}
	return j.run(), nil
}

// SortByDate returns t with rows in ascending Date order. Equal dates keep their
// relative order; null dates sort last.
func SortByDate(t *dataset.Table) (*dataset.Table, error) {
	col, err := t.Column(component, DateColumn)
	if err != nil {
		return nil, err
	}

	out := dataset.New(t.Name, t.Columns)
	out.Rows = slices.Clone(t.Rows)
	slices.SortStableFunc(out.Rows, func(a, b dataset.Row) int {
		return compareDates(a[col], b[col])
	})
	return out, nil
}

func compareDates(a, b dataset.Value) int {
	da, aok := a.Date()
	db, bok := b.Date()
	switch {
	case aok && bok:
		if da == db {
			return 0
		}
		if da.Before(db) {
			return -1
		}
		return 1
	case aok:
		return -1
	case bok:
		return 1
	default:
		return cmp.Compare(a.Text(), b.Text())
	}
}

// Merge joins cleaned light levels, collisions and flight calls and sorts the result
// by date.
func Merge(light, collisions, flightCalls *dataset.Table) (*dataset.Table, error) {
	log := GetLogger()

	dated, err := JoinOnDate(light, collisions)
	if err != nil {
		return nil, err
	}
	log.Debug("joined on date",
		logger.Int("light_rows", light.Len()),
		logger.Int("collision_rows", collisions.Len()),
		logger.Int("rows", dated.Len()))

	merged, err := JoinOnSpecies(dated, flightCalls)
	if err != nil {
		return nil, err
	}
	log.Debug("joined on species",
		logger.Int("flight_call_rows", flightCalls.Len()),
		logger.Int("rows", merged.Len()))

	sorted, err := SortByDate(merged)
	if err != nil {
		return nil, err
	}
	log.Info("tables merged",
		logger.Int("rows", sorted.Len()),
		logger.Int("columns", len(sorted.Columns)))
	return sorted, nil
}
