// Package parquet stores long-format panels as Parquet files.
package parquet

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/signal"

	parquet "github.com/parquet-go/parquet-go"
)

// Row is the on-disk layout of one tagged record. Missing values are null.
type Row struct {
	Time    int64    `parquet:"time"`
	Subject string   `parquet:"subject,dict"`
	Group   string   `parquet:"group,dict"`
	Event   string   `parquet:"event,dict"`
	Value   *float64 `parquet:"value,optional"`
}

// PanelWriter writes tagged records with the configured compression
type PanelWriter struct {
	compression parquet.WriterOption
	name        string
}

// NewPanelWriter accepts "snappy" (default), "zstd" or "gzip"
func NewPanelWriter(compression string) *PanelWriter {
	switch strings.ToLower(compression) {
	case "zstd":
		return &PanelWriter{compression: parquet.Compression(&parquet.Zstd), name: "zstd"}
	case "gzip", "gz":
		return &PanelWriter{compression: parquet.Compression(&parquet.Gzip), name: "gzip"}
	default:
		return &PanelWriter{compression: parquet.Compression(&parquet.Snappy), name: "snappy"}
	}
}

// Compression returns the codec name in use
func (w *PanelWriter) Compression() string { return w.name }

// Write encodes records to out
func (w *PanelWriter) Write(out io.Writer, records []signal.TaggedRecord) error {
	pw := parquet.NewGenericWriter[Row](out, w.compression)
	rows := make([]Row, len(records))
	for i, rec := range records {
		rows[i] = toRow(rec)
	}
	if _, err := pw.Write(rows); err != nil {
		_ = pw.Close()
		return fmt.Errorf("parquet write: %w", err)
	}
	return pw.Close()
}

// WriteFile writes records to path, creating parent directories
func (w *PanelWriter) WriteFile(path string, records []signal.TaggedRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := w.Write(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Read decodes every row from ra
func Read(ra io.ReaderAt) ([]signal.TaggedRecord, error) {
	gr := parquet.NewGenericReader[Row](ra)
	defer gr.Close()

	out := make([]signal.TaggedRecord, 0, gr.NumRows())
	batch := make([]Row, 1024)
	for {
		n, err := gr.Read(batch)
		for _, row := range batch[:n] {
			out = append(out, fromRow(row))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ReadFile opens path and decodes it
func ReadFile(path string) ([]signal.TaggedRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

func toRow(rec signal.TaggedRecord) Row {
	row := Row{
		Time:    int64(rec.Time),
		Subject: rec.Subject.String(),
		Group:   string(rec.Group),
		Event:   rec.Event,
	}
	if !math.IsNaN(rec.Value) {
		v := rec.Value
		row.Value = &v
	}
	return row
}

func fromRow(row Row) signal.TaggedRecord {
	v := math.NaN()
	if row.Value != nil {
		v = *row.Value
	}
	return signal.TaggedRecord{
		Record: signal.Record{
			Time:    int(row.Time),
			Subject: signal.SubjectID(row.Subject),
			Group:   signal.Group(row.Group),
			Value:   v,
		},
		Event: row.Event,
	}
}
