package excel

import (
	"bytes"
	"io"
	"math"
	"path/filepath"
	"testing"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/signal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleRecords() []signal.TaggedRecord {
	return []signal.TaggedRecord{
		{Record: signal.Record{Time: 0, Subject: "exper1", Group: signal.GroupExpert, Value: 0.5}, Event: "A1"},
		{Record: signal.Record{Time: 1, Subject: "exper1", Group: signal.GroupExpert, Value: math.NaN()}, Event: "A1"},
	}
}

func TestPanelWriter_LongCSV(t *testing.T) {
	var buf bytes.Buffer
	w := NewPanelWriter(DefaultExcelConfig())
	require.NoError(t, w.WriteLongCSV(&buf, sampleRecords()))

	assert.Equal(t, "Time,Subject,Group,Event,Value\n0,exper1,Expert,A1,0.5\n1,exper1,Expert,A1,\n", buf.String())
}

func TestPanelWriter_Precision(t *testing.T) {
	w := NewPanelWriter(ExcelConfig{Precision: 2})
	assert.Equal(t, "3.14", w.FormatValue(math.Pi))
	assert.Equal(t, "", w.FormatValue(math.NaN()))
}

func TestPanelWriter_Ragged(t *testing.T) {
	var buf bytes.Buffer
	w := NewPanelWriter(ExcelConfig{Precision: 2})
	cols := map[string][]float64{
		"s1_Alice": {10, 20.5},
		"s1_Bob":   {7},
	}
	require.NoError(t, w.WriteRagged(&buf, []string{"s1_Alice", "s1_Bob"}, cols))
	assert.Equal(t, "s1_Alice,s1_Bob\n10.00,7.00\n20.50,\n", buf.String())
}

func TestPanelWriter_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "panel.xlsx")
	panel := &signal.Panel{
		Time:     []int{0, 1},
		Subjects: []signal.SubjectID{"exper1"},
		Series:   map[signal.SubjectID][]float64{"exper1": {0.5, math.NaN()}},
	}
	w := NewPanelWriter(DefaultExcelConfig())
	require.NoError(t, w.WriteXLSX(path, sampleRecords(), panel))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Long", "Wide"}, f.GetSheetList())

	rows, err := f.GetRows("Long")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, LongHeaders, rows[0])
	assert.Equal(t, "exper1", rows[1][1])

	rows, err = f.GetRows("Wide")
	require.NoError(t, err)
	assert.Equal(t, []string{"Time", "exper1"}, rows[0])
	assert.Equal(t, []string{"0", "0.5"}, rows[1])
}

func TestDataReader_ReadRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "long.csv")
	w := NewPanelWriter(DefaultExcelConfig())
	require.NoError(t, WriteFile(path, func(out io.Writer) error {
		return w.WriteLongCSV(out, sampleRecords())
	}))

	records, err := NewDataReader(path).ReadRecords()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, signal.SubjectID("exper1"), records[0].Subject)
	assert.Equal(t, signal.GroupExpert, records[0].Group)
	assert.Equal(t, "A1", records[0].Event)
	assert.Equal(t, 0.5, records[0].Value)
	assert.Equal(t, 1, records[1].Time)
	assert.True(t, records[1].Missing())
}
