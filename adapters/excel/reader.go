package excel

import (
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/core"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/signal"

	"github.com/xuri/excelize/v2"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	config   ExcelConfig
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	return NewDataReaderWithConfig(filePath, DefaultExcelConfig())
}

// NewDataReaderWithConfig creates a reader with explicit sheet/header settings
func NewDataReaderWithConfig(filePath string, config ExcelConfig) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType, config: config}
}

// ReadData reads data from Excel or CSV files into structured format
func (r *DataReader) ReadData() (*ExcelData, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

// ReadTable reads the file and converts every column to float64.
// Empty or non-numeric cells become NaN.
func (r *DataReader) ReadTable() (*signal.Table, error) {
	data, err := r.ReadData()
	if err != nil {
		return nil, err
	}
	return ToTable(filepath.Base(r.filePath), data), nil
}

// readExcelData reads Excel data from the configured sheet
func (r *DataReader) readExcelData() (*ExcelData, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := r.config.Sheet
	if sheet == "" {
		sheet = "Sheet1"
	}
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook %s has no sheets", core.ErrEmptyTable, r.filePath)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheet, err)
	}
	log.Printf("[DataReader] %s/%s read in %.2fms (%d rows)",
		filepath.Base(r.filePath), sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	return r.processRows(rows)
}

// readCSVData reads CSV data into structured format
func (r *DataReader) readCSVData() (*ExcelData, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)",
		filepath.Base(r.filePath), float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	return r.processRows(rows)
}

// processRows converts raw string rows into ExcelData format
func (r *DataReader) processRows(rows [][]string) (*ExcelData, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: %s must have a header row and at least one data row", core.ErrEmptyTable, r.filePath)
	}

	var headers []string
	if len(r.config.ColumnNames) > 0 {
		headers = append(headers, r.config.ColumnNames...)
	} else {
		headerRow := rows[0]
		headers = make([]string, len(headerRow))
		for i, header := range headerRow {
			headers[i] = strings.TrimSpace(strings.TrimPrefix(header, "\uFEFF"))
		}
	}

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		rowData := make(RawRowData, len(headers))
		for j, header := range headers {
			if j < len(row) {
				rowData[header] = strings.TrimSpace(row[j])
			} else {
				rowData[header] = ""
			}
		}
		dataRows = append(dataRows, rowData)
	}

	return &ExcelData{
		Headers: headers,
		Rows:    dataRows,
	}, nil
}

// ToTable converts raw rows to a numeric table
func ToTable(name string, data *ExcelData) *signal.Table {
	table := signal.NewTable(name, data.Headers)
	invalid := 0
	for _, header := range data.Headers {
		col := make([]float64, len(data.Rows))
		for i, row := range data.Rows {
			v, ok := ParseCell(row[header])
			if !ok && row[header] != "" {
				invalid++
			}
			col[i] = v
		}
		table.Columns[header] = col
	}
	if invalid > 0 {
		log.Printf("[DataReader] %s: %d non-numeric cells treated as missing", name, invalid)
	}
	return table
}

// ParseCell parses a numeric cell; empty, NaN and non-numeric cells
// return NaN and false.
func ParseCell(cell string) (float64, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return math.NaN(), false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(v) {
		return math.NaN(), false
	}
	return v, true
}

// TableLoader opens files with a shared configuration
type TableLoader struct {
	config ExcelConfig
}

// NewTableLoader creates a loader for .xlsx and .csv tables
func NewTableLoader(config ExcelConfig) *TableLoader {
	return &TableLoader{config: config}
}

// LoadTable reads path as a numeric table with trailing empty rows removed
func (l *TableLoader) LoadTable(path string) (*signal.Table, error) {
	table, err := NewDataReaderWithConfig(path, l.config).ReadTable()
	if err != nil {
		return nil, err
	}
	table.TrimTrailingMissing()
	return table, nil
}

// ReadRecords reads a long panel written by WriteLongCSV back into records
func (r *DataReader) ReadRecords() ([]signal.TaggedRecord, error) {
	data, err := r.ReadData()
	if err != nil {
		return nil, err
	}
	for _, h := range LongHeaders {
		if !data.HasColumn(h) {
			return nil, core.NewMissingColumnError(filepath.Base(r.filePath), h)
		}
	}

	records := make([]signal.TaggedRecord, 0, len(data.Rows))
	for i, row := range data.Rows {
		t, err := strconv.Atoi(strings.TrimSpace(row["Time"]))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid Time %q: %w", i+2, row["Time"], err)
		}
		v, _ := ParseCell(row["Value"])
		records = append(records, signal.TaggedRecord{
			Record: signal.Record{
				Time:    t,
				Subject: signal.SubjectID(row["Subject"]),
				Group:   signal.Group(row["Group"]),
				Value:   v,
			},
			Event: row["Event"],
		})
	}
	return records, nil
}
