package excel

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/core"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/signal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDataReader_CSVTable(t *testing.T) {
	path := writeTemp(t, "EDA.csv", "exper1,exper2,novice1\n1,2,3\n4,,x\n7,8\n")

	table, err := NewDataReader(path).ReadTable()
	require.NoError(t, err)

	assert.Equal(t, "EDA.csv", table.Name)
	assert.Equal(t, []string{"exper1", "exper2", "novice1"}, table.Headers)
	assert.Equal(t, 3, table.Rows())

	col, ok := table.Column("exper1")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 4, 7}, col)

	col, _ = table.Column("exper2")
	assert.Equal(t, 2.0, col[0])
	assert.True(t, math.IsNaN(col[1]), "empty cell is missing")

	col, _ = table.Column("novice1")
	assert.True(t, math.IsNaN(col[1]), "non-numeric cell is missing")
	assert.True(t, math.IsNaN(col[2]), "short row is padded with missing")
}

func TestDataReader_CSVWithByteOrderMark(t *testing.T) {
	path := writeTemp(t, "EDA.csv", "\uFEFFexper1,novice1\n1,2\n3,4\n")

	table, err := NewDataReader(path).ReadTable()
	require.NoError(t, err)

	assert.Equal(t, []string{"exper1", "novice1"}, table.Headers)
	col, ok := table.Column("exper1")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 3}, col)
}

func TestDataReader_ColumnNames(t *testing.T) {
	path := writeTemp(t, "BVP.csv", "1577836800.0\n0.5,1000\n0.7,2000\n")
	cfg := DefaultExcelConfig()
	cfg.ColumnNames = []string{"Amplitude", "Timestamp"}

	table, err := NewDataReaderWithConfig(path, cfg).ReadTable()
	require.NoError(t, err)

	amp, _ := table.Column("Amplitude")
	ts, _ := table.Column("Timestamp")
	assert.Equal(t, []float64{0.5, 0.7}, amp)
	assert.Equal(t, []float64{1000, 2000}, ts)
}

func TestDataReader_Errors(t *testing.T) {
	_, err := NewDataReader(filepath.Join(t.TempDir(), "missing.csv")).ReadData()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	path := writeTemp(t, "header_only.csv", "a,b\n")
	_, err = NewDataReader(path).ReadData()
	assert.ErrorIs(t, err, core.ErrEmptyTable)
}

func TestDataReader_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Time.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"exper1", "novice1"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{1, 10}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{5, 20}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := NewDataReader(path).ReadTable()
	require.NoError(t, err)

	col, _ := table.Column("exper1")
	assert.Equal(t, []float64{1, 5}, col)
	col, _ = table.Column("novice1")
	assert.Equal(t, []float64{10, 20}, col)
}

func TestDataReader_XLSXFallsBackToFirstSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "renamed.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Data"))
	require.NoError(t, f.SetSheetRow("Data", "A1", &[]interface{}{"v"}))
	require.NoError(t, f.SetSheetRow("Data", "A2", &[]interface{}{3}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := NewDataReader(path).ReadTable()
	require.NoError(t, err)
	col, _ := table.Column("v")
	assert.Equal(t, []float64{3}, col)
}

func TestParseCell(t *testing.T) {
	v, ok := ParseCell(" 2.5 ")
	assert.True(t, ok)
	assert.Equal(t, 2.5, v)

	for _, cell := range []string{"", "NaN", "abc"} {
		v, ok := ParseCell(cell)
		assert.False(t, ok, cell)
		assert.True(t, math.IsNaN(v), cell)
	}
}

func TestExcelData_SetColumn(t *testing.T) {
	data := &ExcelData{
		Headers: []string{"speed_mps"},
		Rows:    []RawRowData{{"speed_mps": "1"}, {"speed_mps": "2"}},
	}
	data.SetColumn("acceleration", []string{"", "0.5"})
	assert.Equal(t, []string{"speed_mps", "acceleration"}, data.Headers)
	assert.Equal(t, "0.5", data.Rows[1]["acceleration"])

	data.SetColumn("acceleration", []string{"1"})
	assert.Equal(t, []string{"speed_mps", "acceleration"}, data.Headers, "existing column is overwritten")
	assert.Equal(t, "", data.Rows[1]["acceleration"])

	var buf bytes.Buffer
	require.NoError(t, NewPanelWriter(DefaultExcelConfig()).WriteData(&buf, data))
	assert.Equal(t, "speed_mps,acceleration\n1,1\n2,\n", buf.String())
}

func TestToTable_RoundTripsWithWideWriter(t *testing.T) {
	panel := &signal.Panel{
		Time:     []int{0, 1},
		Subjects: []signal.SubjectID{"exper1"},
		Series:   map[signal.SubjectID][]float64{"exper1": {0.25, math.NaN()}},
	}
	var buf bytes.Buffer
	require.NoError(t, NewPanelWriter(DefaultExcelConfig()).WriteWideCSV(&buf, panel))

	path := writeTemp(t, "wide.csv", buf.String())
	table, err := NewDataReader(path).ReadTable()
	require.NoError(t, err)
	col, _ := table.Column("exper1")
	assert.Equal(t, 0.25, col[0])
	assert.True(t, math.IsNaN(col[1]))
	assert.True(t, strings.HasPrefix(buf.String(), "Time,exper1\n"))
}

func TestTableLoader_TrimsTrailingEmptyRows(t *testing.T) {
	path := writeTemp(t, "Time.csv", "exper1,novice1\n1,1\n5,4\n,\n,\n")

	table, err := NewTableLoader(DefaultExcelConfig()).LoadTable(path)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Rows())
}
