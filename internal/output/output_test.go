package output

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tphakala/birdstrike/internal/dataset"
	"github.com/tphakala/birdstrike/internal/errors"
)

func mergedTable() *dataset.Table {
	t := dataset.New("merged", []string{"Date", "LightScore", "Locality", "Genus", "Flight Call", "Notes"})
	t.Append(dataset.Row{
		dataset.DateValue(dataset.Date{Year: 2020, Month: time.January, Day: 1}),
		dataset.Number(3, "3"),
		dataset.String("MP"),
		dataset.String("Turdus"),
		dataset.String("Yes"),
		dataset.Null(),
	})
	t.Append(dataset.Row{
		dataset.DateValue(dataset.Date{Year: 2020, Month: time.January, Day: 2}),
		dataset.Number(2.5, "2.50"),
		dataset.String("Chicago, IL"),
		dataset.String("Junco"),
		dataset.Bool(false),
		dataset.String(`said "hi"`),
	})
	return t
}

func TestEncodeCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, mergedTable(), Options{}))

	want := "Date,LightScore,Locality,Genus,Flight Call,Notes\n" +
		"2020-01-01,3,MP,Turdus,Yes,\n" +
		"2020-01-02,2.50,\"Chicago, IL\",Junco,false,\"said \"\"hi\"\"\"\n"
	assert.Equal(t, want, buf.String())
}

func TestEncodeCSVDateLayout(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, mergedTable(), Options{DateLayout: "01/02/2006"}))
	assert.Contains(t, buf.String(), "\n01/02/2020,")
}

func TestEncodeCSVEmptyTableKeepsHeader(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, dataset.New("merged", []string{"Date", "LightScore"}), Options{}))
	assert.Equal(t, "Date,LightScore\n", buf.String())
}

func TestWriteCSVReplacesExistingFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o600))

	require.NoError(t, WriteCSV(mergedTable(), path, Options{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("Date,LightScore")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestStageCSVCommitAndDiscard(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0o600))

	discarded, err := StageCSV(mergedTable(), path, Options{})
	require.NoError(t, err)
	assert.Equal(t, path, discarded.Path())
	discarded.Discard()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data), "discard leaves the target untouched")

	committed, err := StageCSV(mergedTable(), path, Options{})
	require.NoError(t, err)
	require.NoError(t, committed.Commit())
	committed.Discard()

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("Date,LightScore")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestWriteCSVUnwritableDestination(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing", "out.csv")

	err := WriteCSV(mergedTable(), path, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrIO)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileIO))
	assert.NoFileExists(t, path)
}

func TestWriteXLSX(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "merged.xlsx")
	require.NoError(t, WriteXLSX(mergedTable(), path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	header, err := f.GetCellValue(SheetName, "C1")
	require.NoError(t, err)
	assert.Equal(t, "Locality", header)

	date, err := f.GetCellValue(SheetName, "A2")
	require.NoError(t, err)
	assert.Equal(t, "2020-01-01", date)

	score, err := f.GetCellValue(SheetName, "B3")
	require.NoError(t, err)
	assert.Equal(t, "2.5", score)

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestWriteXLSXUnwritableDestination(t *testing.T) {
	t.Parallel()

	err := WriteXLSX(mergedTable(), filepath.Join(t.TempDir(), "missing", "merged.xlsx"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrIO)
}
