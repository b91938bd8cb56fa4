package app

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/adapters/excel"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/run"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/internal"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/internal/config"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/internal/physio"
)

// BatchReport lists the files a directory pass handled and the ones it skipped
type BatchReport struct {
	Processed []string
	Skipped   []run.SkipEntry
}

func (b *BatchReport) skip(path, reason string, err error) {
	entry := run.SkipEntry{Subject: path, Reason: reason}
	if err != nil {
		entry.Detail = err.Error()
	}
	b.Skipped = append(b.Skipped, entry)
}

// PhysioService derives acceleration, gaze grid cells and RMSSD from raw
// recordings on disk
type PhysioService struct {
	logger *internal.Logger
	can    config.CANConfig
	gaze   config.GazeConfig
	physio config.PhysioConfig
}

// NewPhysioService creates a physio service
func NewPhysioService(logger *internal.Logger, can config.CANConfig, gaze config.GazeConfig, ph config.PhysioConfig) *PhysioService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &PhysioService{logger: logger, can: can, gaze: gaze, physio: ph}
}

// csvFiles walks root and returns every .csv path in lexical order
func csvFiles(ctx context.Context, root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// AnnotateAcceleration adds (or overwrites) an acceleration column in every
// CAN-bus CSV under root, rewriting each file in place
func (s *PhysioService) AnnotateAcceleration(ctx context.Context, root string) (*BatchReport, error) {
	files, err := csvFiles(ctx, root)
	if err != nil {
		return nil, err
	}
	report := &BatchReport{}
	writer := excel.NewPanelWriter(excel.DefaultExcelConfig())

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		data, err := excel.NewDataReader(path).ReadData()
		if err != nil {
			s.logger.Warn("Skipping %s: %v", path, err)
			report.skip(path, "unreadable", err)
			continue
		}
		if !data.HasColumn(s.can.TimestampColumn) || !data.HasColumn(s.can.SpeedColumn) {
			s.logger.Warn("Skipping %s: needs %q and %q columns", path, s.can.TimestampColumn, s.can.SpeedColumn)
			report.skip(path, "missing column", nil)
			continue
		}

		table := excel.ToTable(filepath.Base(path), data)
		cells := make([]string, len(data.Rows))
		for i, row := range data.Rows {
			cells[i] = row[s.can.TimestampColumn]
		}
		speed, _ := table.Column(s.can.SpeedColumn)
		acc, err := physio.Acceleration(physio.ParseNanos(cells), speed)
		if err != nil {
			report.skip(path, "acceleration", err)
			continue
		}
		data.SetColumn(s.can.AccelerationColumn, formatColumn(acc, -1))

		if err := rewrite(path, func(w io.Writer) error { return writer.WriteData(w, data) }); err != nil {
			return report, fmt.Errorf("rewrite %s: %w", path, err)
		}
		s.logger.Info("Updated: %s", path)
		report.Processed = append(report.Processed, path)
	}
	return report, nil
}

// AnnotateGaze writes <name><suffix>.csv next to every eye-tracking CSV with
// a grid cell column; files that already carry the suffix are ignored
func (s *PhysioService) AnnotateGaze(ctx context.Context, root string) (*BatchReport, error) {
	files, err := csvFiles(ctx, root)
	if err != nil {
		return nil, err
	}
	report := &BatchReport{}
	writer := excel.NewPanelWriter(excel.DefaultExcelConfig())
	screen := physio.Screen{Width: s.gaze.Width, Height: s.gaze.Height}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		stem := strings.TrimSuffix(path, filepath.Ext(path))
		if strings.HasSuffix(stem, s.gaze.Suffix) {
			continue
		}

		data, err := excel.NewDataReader(path).ReadData()
		if err != nil {
			s.logger.Warn("Processing %s caught error: %v", path, err)
			report.skip(path, "unreadable", err)
			continue
		}
		if !data.HasColumn(s.gaze.XColumn) || !data.HasColumn(s.gaze.YColumn) {
			s.logger.Warn("Processing %s caught error: missing gaze columns", path)
			report.skip(path, "missing column", nil)
			continue
		}

		table := excel.ToTable(filepath.Base(path), data)
		xs, _ := table.Column(s.gaze.XColumn)
		ys, _ := table.Column(s.gaze.YColumn)
		cells := screen.GridNumbers(xs, ys)
		values := make([]string, len(cells))
		for i, c := range cells {
			if c > 0 {
				values[i] = strconv.Itoa(c)
			}
		}
		data.SetColumn(s.gaze.GridColumn, values)

		out := stem + s.gaze.Suffix + ".csv"
		if err := excel.WriteFile(out, func(w io.Writer) error { return writer.WriteData(w, data) }); err != nil {
			return report, err
		}
		s.logger.Info("Processed: %s", out)
		report.Processed = append(report.Processed, out)
	}
	return report, nil
}

// ComputeRMSSD finds BVP recordings under rawDir (session/subject/file),
// detects beats and writes one windowed RMSSD column per session_subject
// into outDir. Files whose folder matches no configured device code, or
// that yield no RMSSD value, are skipped.
func (s *PhysioService) ComputeRMSSD(ctx context.Context, rawDir, outDir string) (string, *BatchReport, error) {
	files, err := filepath.Glob(filepath.Join(rawDir, s.physio.Pattern))
	if err != nil {
		return "", nil, err
	}
	sort.Strings(files)

	report := &BatchReport{}
	cfg := excel.DefaultExcelConfig()
	cfg.ColumnNames = []string{"Amplitude", "Timestamp"}
	columns := make(map[string][]float64)
	var headers []string

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return "", report, err
		}
		session := filepath.Base(filepath.Dir(filepath.Dir(path)))
		subject, ok := s.subjectFor(filepath.Base(filepath.Dir(path)))
		if !ok {
			s.logger.Warn("Subject not found for file: %s", path)
			report.skip(path, "unknown subject", nil)
			continue
		}

		table, err := excel.NewDataReaderWithConfig(path, cfg).ReadTable()
		if err != nil {
			s.logger.Warn("No BVP data found in file %s: %v", path, err)
			report.skip(path, "unreadable", err)
			continue
		}
		amplitude, _ := table.Column("Amplitude")
		timestamps, _ := table.Column("Timestamp")

		peaks, err := physio.DetectPeaks(fillMissing(amplitude), s.physio.SamplingRate, physio.DefaultPeakOptions())
		if err != nil {
			report.skip(path, "peak detection", err)
			continue
		}
		rmssd, err := physio.WindowedRMSSD(peaks, timestamps, s.physio.Window, s.physio.Overlap)
		if err != nil {
			return "", report, err
		}
		if len(rmssd) == 0 {
			s.logger.Warn("No valid RMSSD values computed for file: %s", path)
			report.skip(path, "no rmssd", nil)
			continue
		}

		name := session + "_" + subject
		if _, dup := columns[name]; !dup {
			headers = append(headers, name)
		}
		columns[name] = rmssd
		report.Processed = append(report.Processed, path)
	}

	if len(headers) == 0 {
		s.logger.Warn("No RMSSD results to save.")
		return "", report, nil
	}

	out := filepath.Join(outDir, s.physio.OutputName)
	writer := excel.NewPanelWriter(excel.ExcelConfig{Precision: s.physio.Precision})
	if err := excel.WriteFile(out, func(w io.Writer) error { return writer.WriteRagged(w, headers, columns) }); err != nil {
		return "", report, err
	}
	s.logger.Info("RMSSD results saved to %s (%d columns)", out, len(headers))
	return out, report, nil
}

// subjectFor matches a folder name against device codes, case-insensitively
// since config keys are lower-cased on load
func (s *PhysioService) subjectFor(folder string) (string, bool) {
	codes := make([]string, 0, len(s.physio.Subjects))
	for code := range s.physio.Subjects {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	upper := strings.ToUpper(folder)
	for _, code := range codes {
		if strings.Contains(upper, strings.ToUpper(code)) {
			return s.physio.Subjects[code], true
		}
	}
	return "", false
}

// fillMissing carries the previous sample forward over NaN gaps
func fillMissing(x []float64) []float64 {
	out := make([]float64, len(x))
	prev := 0.0
	for i, v := range x {
		if math.IsNaN(v) {
			v = prev
		}
		out[i] = v
		prev = v
	}
	return out
}

func formatColumn(values []float64, precision int) []string {
	out := make([]string, len(values))
	for i, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[i] = strconv.FormatFloat(v, 'f', precision, 64)
		}
	}
	return out
}

// rewrite replaces path atomically through a sibling temp file
func rewrite(path string, fn func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if err := fn(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
