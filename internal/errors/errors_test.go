package errors

import (
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReporter struct {
	reported []*EnhancedError
}

func (r *recordingReporter) ReportError(ee *EnhancedError) {
	r.reported = append(r.reported, ee)
	ee.MarkReported()
}

func (r *recordingReporter) IsEnabled() bool { return true }

func TestBuildDefaults(t *testing.T) {
	ee := New(fmt.Errorf("test error")).Build()

	assert.Equal(t, "test error", ee.Error())
	assert.Equal(t, ComponentUnknown, ee.Component)
	assert.Equal(t, CategoryGeneric, ee.Category)
	assert.Nil(t, ee.GetContext())
}

func TestCategoryInheritedFromWrappedError(t *testing.T) {
	inner := SchemaError("merger", "collisions", "Genus")
	outer := New(fmt.Errorf("merge failed: %w", inner)).Component("pipeline").Build()

	assert.Equal(t, CategorySchema, outer.Category)
	assert.True(t, IsCategory(outer, CategorySchema))
	assert.ErrorIs(t, outer, ErrSchema)
}

func TestTaxonomyConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *EnhancedError
		category ErrorCategory
		sentinel error
		contains string
	}{
		{
			name:     "parse",
			err:      ParseError(fs.ErrNotExist, "light_levels", "/data/light.json"),
			category: CategoryFileParsing,
			sentinel: ErrParse,
			contains: "light_levels",
		},
		{
			name:     "schema mismatch",
			err:      SchemaMismatchError("flight_call", 7, 6),
			category: CategorySchemaMismatch,
			sentinel: ErrSchemaMismatch,
			contains: "6 columns",
		},
		{
			name:     "schema",
			err:      SchemaError("cleaner", "light_levels", "Date"),
			category: CategorySchema,
			sentinel: ErrSchema,
			contains: `"Date"`,
		},
		{
			name:     "io",
			err:      IOError(fs.ErrPermission, "/out/merged.csv"),
			category: CategoryFileIO,
			sentinel: ErrIO,
			contains: "merged.csv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, tt.err.Category)
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.Contains(t, tt.err.Error(), tt.contains)
		})
	}

	assert.ErrorIs(t, ParseError(fs.ErrNotExist, "x", "y"), fs.ErrNotExist, "cause stays reachable")
	assert.Equal(t, 6, SchemaMismatchError("flight_call", 7, 6).GetContext()["actual_columns"])
}

func TestEnhancedErrorIsMatchesCategory(t *testing.T) {
	a := SchemaError("merger", "stage1", "Genus")
	b := SchemaError("cleaner", "light_levels", "Date")

	assert.ErrorIs(t, a, b)
	assert.NotErrorIs(t, a, IOError(fs.ErrPermission, "x"))
}

func TestTelemetryReporterReceivesBuiltErrors(t *testing.T) {
	rec := &recordingReporter{}
	SetTelemetryReporter(rec)
	t.Cleanup(func() { SetTelemetryReporter(nil) })

	ee := New(NewStd("database locked")).Category(CategoryDatabase).Build()

	require.Len(t, rec.reported, 1)
	assert.Same(t, ee, rec.reported[0])
	assert.True(t, ee.IsReported())
}

func TestScrubMessage(t *testing.T) {
	t.Parallel()

	msg := ScrubMessage("open /home/alice/data/light.json failed; see https://example.com/x?token=abc")
	assert.NotContains(t, msg, "alice")
	assert.NotContains(t, msg, "token=abc")
	assert.Contains(t, msg, "/home/[USER]/data/light.json")
}
