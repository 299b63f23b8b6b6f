package merger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/birdstrike/internal/dataset"
	"github.com/tphakala/birdstrike/internal/errors"
	"github.com/tphakala/birdstrike/internal/normalize"
)

func date(s string) dataset.Value {
	d, err := dataset.ParseDate(s, nil)
	if err != nil {
		panic(err)
	}
	return dataset.DateValue(d)
}

func str(s string) dataset.Value { return dataset.String(s) }

func num(f float64) dataset.Value { return dataset.Number(f, "") }

func table(name string, columns []string, rows ...dataset.Row) *dataset.Table {
	t := dataset.New(name, columns)
	for _, r := range rows {
		t.Append(r)
	}
	return t
}

func lightLevels(rows ...dataset.Row) *dataset.Table {
	return table("light_levels", []string{"Date", "LightScore"}, rows...)
}

func collisions(rows ...dataset.Row) *dataset.Table {
	return table("collisions", []string{"Date", "Genus", "Species", "Locality"}, rows...)
}

func flightCalls(rows ...dataset.Row) *dataset.Table {
	return table(normalize.FlightCallTable, normalize.CanonicalFlightCallColumns[:], rows...)
}

func fc(genus, species, family string) dataset.Row {
	return dataset.Row{str(genus), str(species), str(family), str("Yes"), str("Yes"), str("Forest"), str("Lower")}
}

// column returns the text of every cell in the named column
func column(t *testing.T, tbl *dataset.Table, name string) []string {
	t.Helper()
	c := tbl.ColumnIndex(name)
	require.GreaterOrEqual(t, c, 0, "column %q", name)
	out := make([]string, tbl.Len())
	for r := range tbl.Rows {
		out[r] = tbl.Cell(r, c).Text()
	}
	return out
}

func TestMergeCaseInsensitiveSpecies(t *testing.T) {
	t.Parallel()

	merged, err := Merge(
		lightLevels(dataset.Row{date("2020-01-01"), num(3)}),
		collisions(dataset.Row{date("2020-01-01"), str("Turdus"), str("migratorius"), str("MP")}),
		flightCalls(fc("Turdus", "Migratorius", "Turdidae")),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Date", "LightScore", "Locality",
		"Genus", "Species", "Family", "Flight", "Flight Call", "Habitat", "Stratum",
	}, merged.Columns)
	require.Equal(t, 1, merged.Len())
	assert.Equal(t, "2020-01-01", merged.Cell(0, 0).Text())
	assert.Equal(t, "3", merged.Cell(0, 1).Text())
	assert.Equal(t, "Migratorius", merged.Cell(0, 4).Text(), "flight call values are kept as written")
	assert.Equal(t, "Turdidae", merged.Cell(0, 5).Text())
}

func TestMergeSharedDateRepeatsLightScore(t *testing.T) {
	t.Parallel()

	merged, err := Merge(
		lightLevels(dataset.Row{date("2020-01-05"), num(7)}),
		collisions(
			dataset.Row{date("2020-01-05"), str("Turdus"), str("migratorius"), str("MP")},
			dataset.Row{date("2020-01-05"), str("Junco"), str("hyemalis"), str("CHI")},
		),
		flightCalls(fc("Junco", "hyemalis", "Passerellidae"), fc("Turdus", "migratorius", "Turdidae")),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"7", "7"}, column(t, merged, "LightScore"))
	assert.Equal(t, []string{"MP", "CHI"}, column(t, merged, "Locality"))
	assert.Equal(t, []string{"Turdus", "Junco"}, column(t, merged, "Genus"))
}

func TestMergeUnmatchedRowsAreDropped(t *testing.T) {
	t.Parallel()

	merged, err := Merge(
		lightLevels(dataset.Row{date("2020-01-01"), num(3)}),
		collisions(
			dataset.Row{date("2020-02-01"), str("Turdus"), str("migratorius"), str("MP")},
			dataset.Row{date("2020-01-01"), str("Unknown"), str("bird"), str("MP")},
			dataset.Row{date("2020-01-01"), str(" TURDUS "), str("migratorius"), str("CHI")},
		),
		flightCalls(fc("Turdus", "migratorius", "Turdidae")),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"CHI"}, column(t, merged, "Locality"))
}

func TestMergeSortsByDateStably(t *testing.T) {
	t.Parallel()

	merged, err := Merge(
		lightLevels(
			dataset.Row{date("2020-03-01"), num(1)},
			dataset.Row{date("2020-01-01"), num(2)},
			dataset.Row{date("2020-02-01"), num(3)},
		),
		collisions(
			dataset.Row{date("2020-01-01"), str("Turdus"), str("migratorius"), str("a")},
			dataset.Row{date("2020-03-01"), str("Turdus"), str("migratorius"), str("b")},
			dataset.Row{date("2020-01-01"), str("Turdus"), str("migratorius"), str("c")},
			dataset.Row{date("2020-02-01"), str("Turdus"), str("migratorius"), str("d")},
		),
		flightCalls(fc("Turdus", "migratorius", "Turdidae")),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"2020-01-01", "2020-01-01", "2020-02-01", "2020-03-01"}, column(t, merged, "Date"))
	assert.Equal(t, []string{"a", "c", "d", "b"}, column(t, merged, "Locality"))
}

func TestJoinOnDateOverlappingColumnsAreSuffixed(t *testing.T) {
	t.Parallel()

	light := table("light_levels", []string{"Date", "LightScore", "Source"},
		dataset.Row{date("2020-01-01"), num(3), str("sensor")})
	coll := table("collisions", []string{"Date", "Genus", "Species", "Source"},
		dataset.Row{date("2020-01-01"), str("Turdus"), str("migratorius"), str("survey")})

	dated, err := JoinOnDate(light, coll)
	require.NoError(t, err)

	assert.Equal(t, []string{"Date", "LightScore", "Source_x", "Genus", "Species", "Source_y"}, dated.Columns)
	assert.Equal(t, []string{"sensor"}, column(t, dated, "Source_x"))
	assert.Equal(t, []string{"survey"}, column(t, dated, "Source_y"))
}

func TestJoinOnSpeciesDropsCollisionTaxonomy(t *testing.T) {
	t.Parallel()

	dated := table(DatedTable, []string{"Date", "LightScore", "Genus", "Species", "Locality"},
		dataset.Row{date("2020-01-01"), num(3), str("turdus"), str("migratorius"), str("MP")})

	merged, err := JoinOnSpecies(dated, flightCalls(fc("Turdus", "Migratorius", "Turdidae")))
	require.NoError(t, err)

	require.Equal(t, 1, merged.Len())
	assert.Equal(t, []string{"Turdus"}, column(t, merged, "Genus"), "genus comes from the flight call side")
	assert.NotContains(t, merged.Columns, "Genus_x")
}

func TestMergeSchemaErrors(t *testing.T) {
	t.Parallel()

	okLight := lightLevels(dataset.Row{date("2020-01-01"), num(3)})
	okColl := collisions(dataset.Row{date("2020-01-01"), str("Turdus"), str("migratorius"), str("MP")})
	okCalls := flightCalls(fc("Turdus", "migratorius", "Turdidae"))

	tests := []struct {
		name   string
		light  *dataset.Table
		coll   *dataset.Table
		calls  *dataset.Table
		column string
	}{
		{"light without Date", table("light_levels", []string{"Day", "LightScore"}), okColl, okCalls, "Date"},
		{"collisions without Date", okLight, table("collisions", []string{"When", "Genus", "Species"}), okCalls, "Date"},
		{"collisions without Genus", okLight, table("collisions", []string{"Date", "genus", "Species"}), okCalls, "Genus"},
		{"collisions without Species", okLight, table("collisions", []string{"Date", "Genus"}), okCalls, "Species"},
		{"flight calls not canonical", okLight, okColl, table("flight_call", []string{"Genus", "Species"}), "Family"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Merge(tt.light, tt.coll, tt.calls)
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrSchema)
			assert.Contains(t, err.Error(), `"`+tt.column+`"`)
		})
	}
}

func TestSortByDateNullsLast(t *testing.T) {
	t.Parallel()

	tbl := table("merged", []string{"Date", "n"},
		dataset.Row{dataset.Null(), str("1")},
		dataset.Row{date("2020-01-02"), str("2")},
		dataset.Row{date("2020-01-01"), str("3")},
	)

	sorted, err := SortByDate(tbl)
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "2", "1"}, column(t, sorted, "n"))
	assert.Equal(t, []string{"1", "2", "3"}, column(t, tbl, "n"), "input order untouched")
}
