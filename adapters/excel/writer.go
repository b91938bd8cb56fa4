package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/signal"

	"github.com/xuri/excelize/v2"
)

// LongHeaders is the column order of a long-format panel file
var LongHeaders = []string{"Time", "Subject", "Group", "Event", "Value"}

// PanelWriter writes panels and raw tables as CSV or XLSX
type PanelWriter struct {
	config ExcelConfig
}

// NewPanelWriter creates a writer with the given output precision
func NewPanelWriter(config ExcelConfig) *PanelWriter {
	return &PanelWriter{config: config}
}

// FormatValue renders a float, NaN becomes an empty cell
func (w *PanelWriter) FormatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', w.config.Precision, 64)
}

// WriteLongCSV writes one row per tagged record
func (w *PanelWriter) WriteLongCSV(out io.Writer, records []signal.TaggedRecord) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(LongHeaders); err != nil {
		return err
	}
	for _, rec := range records {
		row := []string{
			strconv.Itoa(rec.Time),
			rec.Subject.String(),
			string(rec.Group),
			rec.Event,
			w.FormatValue(rec.Value),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteWideCSV writes the padded panel with a Time column followed by one
// column per subject
func (w *PanelWriter) WriteWideCSV(out io.Writer, panel *signal.Panel) error {
	cw := csv.NewWriter(out)
	header := make([]string, 0, len(panel.Subjects)+1)
	header = append(header, "Time")
	for _, s := range panel.Subjects {
		header = append(header, s.String())
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, t := range panel.Time {
		row := make([]string, 0, len(header))
		row = append(row, strconv.Itoa(t))
		for _, s := range panel.Subjects {
			row = append(row, w.FormatValue(panel.Series[s][i]))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteData writes raw rows back out in header order
func (w *PanelWriter) WriteData(out io.Writer, data *ExcelData) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(data.Headers); err != nil {
		return err
	}
	row := make([]string, len(data.Headers))
	for _, r := range data.Rows {
		for j, h := range data.Headers {
			row[j] = r[h]
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRagged writes columns of different lengths side by side, shorter
// columns are left empty at the bottom
func (w *PanelWriter) WriteRagged(out io.Writer, headers []string, columns map[string][]float64) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(headers); err != nil {
		return err
	}
	n := 0
	for _, h := range headers {
		if len(columns[h]) > n {
			n = len(columns[h])
		}
	}
	row := make([]string, len(headers))
	for i := 0; i < n; i++ {
		for j, h := range headers {
			col := columns[h]
			if i < len(col) {
				row[j] = w.FormatValue(col[i])
			} else {
				row[j] = ""
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile creates path and hands the file to fn
func WriteFile(path string, fn func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// WriteXLSX writes a workbook with a "Long" sheet of tagged records and a
// "Wide" sheet of the padded panel
func (w *PanelWriter) WriteXLSX(path string, records []signal.TaggedRecord, panel *signal.Panel) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Long"); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	sw, err := f.NewStreamWriter("Long")
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}
	if err := sw.SetRow("A1", toCells(LongHeaders)); err != nil {
		return err
	}
	for i, rec := range records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{rec.Time, rec.Subject.String(), string(rec.Group), rec.Event, cellValue(rec.Value)}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}

	if panel != nil {
		if _, err := f.NewSheet("Wide"); err != nil {
			return fmt.Errorf("failed to add sheet: %w", err)
		}
		ww, err := f.NewStreamWriter("Wide")
		if err != nil {
			return fmt.Errorf("failed to open stream writer: %w", err)
		}
		header := []interface{}{"Time"}
		for _, s := range panel.Subjects {
			header = append(header, s.String())
		}
		if err := ww.SetRow("A1", header); err != nil {
			return err
		}
		for i, t := range panel.Time {
			row := make([]interface{}, 0, len(header))
			row = append(row, t)
			for _, s := range panel.Subjects {
				row = append(row, cellValue(panel.Series[s][i]))
			}
			cell, _ := excelize.CoordinatesToCellName(1, i+2)
			if err := ww.SetRow(cell, row); err != nil {
				return err
			}
		}
		if err := ww.Flush(); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return f.SaveAs(path)
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

// cellValue keeps missing values as blank cells
func cellValue(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}
