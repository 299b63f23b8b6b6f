package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/birdstrike/internal/conf"
	"github.com/tphakala/birdstrike/internal/dataset"
	"github.com/tphakala/birdstrike/internal/datastore"
	"github.com/tphakala/birdstrike/internal/errors"
	"github.com/tphakala/birdstrike/internal/observability/metrics"
)

const (
	lightJSON = `[
  {"Date": "2020-01-01", "LightScore": 3},
  {"Date": "2020-01-02", "LightScore": 5},
  {"Date": "2020-01-02", "LightScore": 6},
  {"Date": "2020-01-03", "LightScore": null},
  {"Date": "2020-01-04", "LightScore": 7}
]`

	// pandas "columns" orient
	collisionsJSON = `{
  "Genus":    {"0": "Turdus", "1": "Junco", "2": "turdus", "3": "Melospiza", "4": "Zonotrichia"},
  "Species":  {"0": "migratorius", "1": "hyemalis", "2": "MIGRATORIUS", "3": null, "4": "albicollis"},
  "Date":     {"0": "2020-01-04", "1": "2020-01-01", "2": "2020-01-01", "3": "2020-01-01", "4": "2020-01-02"},
  "Locality": {"0": "MP", "1": "CHI", "2": "MP", "3": "MP", "4": "MP"}
}`

	flightCallJSON = `[
  {"genus": "Turdus", "species": "migratorius", "family": "Turdidae", "collides": "Yes", "call": "Yes", "habitat": "Forest", "stratum": "Upper"},
  {"genus": "Junco", "species": "hyemalis", "family": "Passerellidae", "collides": "Yes", "call": "Rare", "habitat": "Edge", "stratum": "Lower"},
  {"genus": "Zonotrichia", "species": "albicollis", "family": "Passerellidae", "collides": "Yes", "call": "Yes", "habitat": "Edge", "stratum": "Lower"}
]`

	sixColumnFlightCallJSON = `[
  {"genus": "Turdus", "species": "migratorius", "family": "Turdidae", "collides": "Yes", "call": "Yes", "habitat": "Forest"}
]`

	expectedCSV = "Date,LightScore,Locality,Genus,Species,Family,Flight,Flight Call,Habitat,Stratum\n" +
		"2020-01-01,3,CHI,Junco,hyemalis,Passerellidae,Yes,Rare,Edge,Lower\n" +
		"2020-01-01,3,MP,Turdus,migratorius,Turdidae,Yes,Yes,Forest,Upper\n" +
		"2020-01-04,7,MP,Turdus,migratorius,Turdidae,Yes,Yes,Forest,Upper\n"
)

func testSettings() *conf.Settings {
	return &conf.Settings{
		Log:    conf.LogSettings{Level: "info"},
		Input:  conf.InputSettings{DateFormats: dataset.DefaultDateLayouts},
		Output: conf.OutputSettings{DateFormat: dataset.DateLayout},
	}
}

// writeInputs writes the three inputs to dir and returns their paths with an
// output path in dir.
func writeInputs(t *testing.T, dir, light, collisions, flightCalls string) Paths {
	t.Helper()

	paths := Paths{
		LightLevels: filepath.Join(dir, "light_levels.json"),
		Collisions:  filepath.Join(dir, "collision_data.json"),
		FlightCalls: filepath.Join(dir, "flight_call.json"),
		Output:      filepath.Join(dir, "merged.csv"),
	}
	require.NoError(t, os.WriteFile(paths.LightLevels, []byte(light), 0o600))
	require.NoError(t, os.WriteFile(paths.Collisions, []byte(collisions), 0o600))
	require.NoError(t, os.WriteFile(paths.FlightCalls, []byte(flightCalls), 0o600))
	return paths
}

type recordingRecorder struct {
	metrics.NoOpRecorder
	mu     sync.Mutex
	stages []string
	errs   map[string]string
	merged int
}

func (r *recordingRecorder) RecordStageDuration(stage string, _ float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, stage)
}

func (r *recordingRecorder) RecordError(stage, category string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.errs == nil {
		r.errs = make(map[string]string)
	}
	r.errs[stage] = category
}

func (r *recordingRecorder) RecordMerged(rows int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.merged = rows
}

func TestRunEndToEnd(t *testing.T) {
	t.Parallel()

	paths := writeInputs(t, t.TempDir(), lightJSON, collisionsJSON, flightCallJSON)
	rec := &recordingRecorder{}

	r, err := New(testSettings(), WithRecorder(rec))
	require.NoError(t, err)

	res, err := r.Run(paths)
	require.NoError(t, err)

	data, err := os.ReadFile(paths.Output)
	require.NoError(t, err)
	assert.Equal(t, expectedCSV, string(data))

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 3, res.Merged.Len())
	require.Len(t, res.Cleaning, 3)
	assert.Equal(t, 1, res.Cleaning[0].DroppedMissing, "null light score")
	assert.Equal(t, 2, res.Cleaning[0].DroppedDuplicate, "both rows of 2020-01-02")
	assert.Equal(t, 1, res.Cleaning[1].DroppedMissing, "null species")
	assert.Equal(t, 3, res.Cleaning[2].RowsOut)

	assert.Equal(t, []string{
		metrics.StageLoad, metrics.StageNormalize, metrics.StageClean,
		metrics.StageMerge, metrics.StageWrite, metrics.StageExport, metrics.StageCommit,
	}, rec.stages)
	assert.Empty(t, rec.errs)
	assert.Equal(t, 3, rec.merged)
}

func TestRunFailuresWriteNoOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		light       string
		collisions  string
		flightCalls string
		category    errors.ErrorCategory
		stage       string
	}{
		{
			name:        "six flight call columns",
			light:       lightJSON,
			collisions:  collisionsJSON,
			flightCalls: sixColumnFlightCallJSON,
			category:    errors.CategorySchemaMismatch,
			stage:       metrics.StageNormalize,
		},
		{
			name:        "invalid collision json",
			light:       lightJSON,
			collisions:  `[{"Genus": NaN}]`,
			flightCalls: flightCallJSON,
			category:    errors.CategoryFileParsing,
			stage:       metrics.StageLoad,
		},
		{
			name:        "light levels without date",
			light:       `[{"Day": "2020-01-01", "LightScore": 3}]`,
			collisions:  collisionsJSON,
			flightCalls: flightCallJSON,
			category:    errors.CategorySchema,
			stage:       metrics.StageClean,
		},
		{
			name:        "collisions without species",
			light:       lightJSON,
			collisions:  `[{"Genus": "Turdus", "Date": "2020-01-01", "Locality": "MP", "Observer": "JK"}]`,
			flightCalls: flightCallJSON,
			category:    errors.CategorySchema,
			stage:       metrics.StageMerge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			paths := writeInputs(t, t.TempDir(), tt.light, tt.collisions, tt.flightCalls)
			rec := &recordingRecorder{}
			r, err := New(testSettings(), WithRecorder(rec))
			require.NoError(t, err)

			res, err := r.Run(paths)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.IsCategory(err, tt.category), "got %v", err)
			assert.NoFileExists(t, paths.Output)
			assert.Equal(t, string(tt.category), rec.errs[tt.stage])
		})
	}
}

func TestRunMissingInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	paths := writeInputs(t, dir, lightJSON, collisionsJSON, flightCallJSON)
	paths.Collisions = filepath.Join(dir, "absent.json")

	_, err := Run(testSettings(), paths)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileParsing))
	assert.NoFileExists(t, paths.Output)
}

func TestRunEmptyMerge(t *testing.T) {
	t.Parallel()

	light := `[{"Date": "2021-06-01", "LightScore": 1}]`
	paths := writeInputs(t, t.TempDir(), light, collisionsJSON, flightCallJSON)

	res, err := Run(testSettings(), paths)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Merged.Len())

	data, err := os.ReadFile(paths.Output)
	require.NoError(t, err)
	assert.Equal(t, "Date,LightScore,Locality,Genus,Species,Family,Flight,Flight Call,Habitat,Stratum\n", string(data))
}

func TestRunSideOutputs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	paths := writeInputs(t, dir, lightJSON, collisionsJSON, flightCallJSON)

	settings := testSettings()
	settings.Output.XLSX = conf.ExportSettings{Enabled: true, Path: filepath.Join(dir, "merged.xlsx")}
	settings.Output.Report = conf.ExportSettings{Enabled: true, Path: filepath.Join(dir, "report.yaml")}
	settings.Output.Metrics = conf.ExportSettings{Enabled: true, Path: filepath.Join(dir, "birdstrike.prom")}
	settings.Output.Database = conf.DatabaseSettings{Enabled: true, Type: "sqlite", Path: filepath.Join(dir, "birdstrike.db")}
	settings.Location = conf.LocationSettings{Enabled: true, Latitude: 41.88, Longitude: -87.63, Timezone: "America/Chicago"}

	res, err := Run(settings, paths)
	require.NoError(t, err)

	assert.FileExists(t, settings.Output.XLSX.Path)

	reportData, err := os.ReadFile(settings.Output.Report.Path)
	require.NoError(t, err)
	assert.Contains(t, string(reportData), "run_id: "+res.RunID)
	assert.Contains(t, string(reportData), "sunrise:")

	promData, err := os.ReadFile(settings.Output.Metrics.Path)
	require.NoError(t, err)
	assert.Contains(t, string(promData), "birdstrike_rows_merged 3")
	assert.Contains(t, string(promData), `birdstrike_rows_loaded_total{table="light_levels"} 5`)

	store := &datastore.SQLiteStore{Path: settings.Output.Database.Path}
	require.NoError(t, store.Open())
	defer func() { require.NoError(t, store.Close()) }()
	run, err := store.GetRun(res.RunID)
	require.NoError(t, err)
	assert.Equal(t, 3, run.MergedRows)
	assert.Equal(t, 2, run.LightLevelRows)
	assert.Len(t, run.Records, 3)
}

func TestRunSideOutputFailureKeepsPreviousCSV(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	paths := writeInputs(t, dir, lightJSON, collisionsJSON, flightCallJSON)
	require.NoError(t, os.WriteFile(paths.Output, []byte("previous run\n"), 0o600))

	settings := testSettings()
	settings.Output.XLSX = conf.ExportSettings{Enabled: true, Path: filepath.Join(dir, "missing", "merged.xlsx")}

	_, err := Run(settings, paths)
	require.Error(t, err)

	data, err := os.ReadFile(paths.Output)
	require.NoError(t, err)
	assert.Equal(t, "previous run\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".birdstrike-", "staged csv removed")
	}
}

func TestRunWritesMetricsOnFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	paths := writeInputs(t, dir, lightJSON, collisionsJSON, sixColumnFlightCallJSON)

	settings := testSettings()
	settings.Output.Metrics = conf.ExportSettings{Enabled: true, Path: filepath.Join(dir, "birdstrike.prom")}

	_, err := Run(settings, paths)
	require.Error(t, err)

	promData, err := os.ReadFile(settings.Output.Metrics.Path)
	require.NoError(t, err)
	assert.Contains(t, string(promData), "birdstrike_errors_total")
	assert.Contains(t, string(promData), `stage="normalize"`)
}

func TestInspect(t *testing.T) {
	t.Parallel()

	paths := writeInputs(t, t.TempDir(), lightJSON, collisionsJSON, flightCallJSON)

	r, err := New(testSettings())
	require.NoError(t, err)

	insp, err := r.Inspect(paths)
	require.NoError(t, err)
	require.Len(t, insp.Tables, 3)

	assert.Equal(t, LightLevelsTable, insp.Tables[0].Name)
	assert.Equal(t, []string{"Date", "LightScore"}, insp.Tables[0].Columns)
	assert.Equal(t, FlightCallsTable, insp.Tables[2].Name)
	assert.Equal(t, "Flight Call", insp.Tables[2].Columns[4])
	assert.NoFileExists(t, paths.Output)

	var sb strings.Builder
	require.NoError(t, insp.Print(&sb))
	assert.Contains(t, sb.String(), "dropped duplicate: 2")
}

func TestExceedsMemoryBudget(t *testing.T) {
	t.Parallel()

	assert.False(t, exceedsMemoryBudget(0, 0))
	assert.False(t, exceedsMemoryBudget(100, 1000))
	assert.True(t, exceedsMemoryBudget(600, 1000))
}
