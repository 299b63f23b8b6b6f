// Package normalize maps the flight-call source onto its canonical schema.
package normalize

import (
	"github.com/tphakala/birdstrike/internal/dataset"
	"github.com/tphakala/birdstrike/internal/errors"
	"github.com/tphakala/birdstrike/internal/logger"
	"github.com/tphakala/birdstrike/internal/taxonomy"
)

// FlightCallTable is the table name used in logs and errors
const FlightCallTable = "flight_call"

// Canonical flight-call column names
const (
	ColumnGenus      = "Genus"
	ColumnSpecies    = "Species"
	ColumnFamily     = "Family"
	ColumnFlight     = "Flight"
	ColumnFlightCall = "Flight Call"
	ColumnHabitat    = "Habitat"
	ColumnStratum    = "Stratum"
)

// CanonicalFlightCallColumns is the positional schema of the flight-call source: the
// i-th source column is renamed to the i-th entry.
var CanonicalFlightCallColumns = [7]string{
	ColumnGenus,
	ColumnSpecies,
	ColumnFamily,
	ColumnFlight,
	ColumnFlightCall,
	ColumnHabitat,
	ColumnStratum,
}

// Rename returns t with its columns renamed positionally to canonical. The column
// counts must match exactly; otherwise a SchemaMismatchError is returned and t is untouched.
func Rename(t *dataset.Table, canonical []string) (*dataset.Table, error) {
	if len(t.Columns) != len(canonical) {
		return nil, errors.SchemaMismatchError(t.Name, len(canonical), len(t.Columns))
	}
	return t.WithColumns(canonical), nil
}

// RenameFlightCalls applies CanonicalFlightCallColumns.
func RenameFlightCalls(t *dataset.Table) (*dataset.Table, error) {
	renamed, err := Rename(t, CanonicalFlightCallColumns[:])
	if err != nil {
		return nil, err
	}
	GetLogger().Debug("flight call columns renamed",
		logger.Strings("from", t.Columns),
		logger.Strings("to", renamed.Columns))
	return renamed, nil
}

// FlightCall is one species-level flight-call reference record. Fields hold the text
// rendering of each cell; null cells are empty.
type FlightCall struct {
	Genus      string
	Species    string
	Family     string
	Flight     string
	FlightCall string
	Habitat    string
	Stratum    string
}

// TaxKey is the family+genus+species identity used for de-duplication.
func (f FlightCall) TaxKey() string {
	return taxonomy.TaxKey(f.Family, f.Genus, f.Species)
}

// SpeciesKey is the genus+species identity used to join collisions.
func (f FlightCall) SpeciesKey() string {
	return taxonomy.SpeciesKey(f.Genus, f.Species)
}

// FlightCalls returns the typed records of a canonical flight-call table, one per row
// in row order. A canonical column missing from t is a SchemaError.
func FlightCalls(t *dataset.Table) ([]FlightCall, error) {
	var idx [len(CanonicalFlightCallColumns)]int
	for i, name := range CanonicalFlightCallColumns {
		c, err := t.Column("normalize", name)
		if err != nil {
			return nil, err
		}
		idx[i] = c
	}

	out := make([]FlightCall, t.Len())
	for r := range t.Rows {
		out[r] = FlightCall{
			Genus:      t.Cell(r, idx[0]).Text(),
			Species:    t.Cell(r, idx[1]).Text(),
			Family:     t.Cell(r, idx[2]).Text(),
			Flight:     t.Cell(r, idx[3]).Text(),
			FlightCall: t.Cell(r, idx[4]).Text(),
			Habitat:    t.Cell(r, idx[5]).Text(),
			Stratum:    t.Cell(r, idx[6]).Text(),
		}
	}
	return out, nil
}
