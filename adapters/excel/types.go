package excel

// RawRowData represents a row of raw data as string key-value pairs
type RawRowData map[string]string

// ExcelData represents the complete dataset as read from disk
type ExcelData struct {
	Headers []string     // Column headers, in file order
	Rows    []RawRowData // Data rows
}

// HasColumn reports whether a header exists
func (d *ExcelData) HasColumn(name string) bool {
	for _, h := range d.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// SetColumn writes values into a column, appending the header if new.
// values must have one entry per row.
func (d *ExcelData) SetColumn(name string, values []string) {
	if !d.HasColumn(name) {
		d.Headers = append(d.Headers, name)
	}
	for i, row := range d.Rows {
		if i < len(values) {
			row[name] = values[i]
		} else {
			row[name] = ""
		}
	}
}
