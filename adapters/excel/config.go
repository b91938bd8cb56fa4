package excel

// ExcelConfig holds configuration for tabular input and output
type ExcelConfig struct {
	Sheet       string   `mapstructure:"sheet"`        // worksheet for .xlsx input, Sheet1 when empty
	ColumnNames []string `mapstructure:"column_names"` // replaces the header row when set
	Precision   int      `mapstructure:"precision"`    // decimals on output, -1 for shortest
}

// DefaultExcelConfig returns sensible defaults for Excel processing
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		Sheet:     "Sheet1",
		Precision: -1,
	}
}
