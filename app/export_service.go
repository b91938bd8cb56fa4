package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/adapters/excel"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/adapters/parquet"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/adapters/stats/senses"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/core"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/run"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/signal"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/internal"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/internal/report"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/ports"
)

// ComparisonStore persists group comparisons next to a run's panel
type ComparisonStore interface {
	SaveComparisons(ctx context.Context, runID core.RunID, comparisons []senses.EventComparison) error
}

// ExportOptions selects the artifacts written for a run
type ExportOptions struct {
	Dir         string
	Formats     []string // csv, wide, xlsx, parquet
	Compression string
	Precision   int
	Report      bool
	Title       string
}

// ExportService writes a panel result to disk, charts, report and database
type ExportService struct {
	logger      *internal.Logger
	renderers   []ports.ChartRenderer
	repo        ports.PanelRepository // optional
	comparisons ComparisonStore       // optional
}

// NewExportService creates an export service; repo may be nil
func NewExportService(logger *internal.Logger, renderers []ports.ChartRenderer, repo ports.PanelRepository) *ExportService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &ExportService{logger: logger, renderers: renderers, repo: repo}
	if store, ok := repo.(ComparisonStore); ok {
		s.comparisons = store
	}
	return s
}

// Export writes every requested artifact as panel-<runID>*, records it on
// the manifest and
// finally writes the manifest itself. Chart failures are logged and recorded
// as warnings; file and database failures abort.
func (s *ExportService) Export(ctx context.Context, res *PanelResult, m *run.RunManifest, intervals []signal.Interval, eo ExportOptions, opts signal.Options) error {
	m.RecordSubjects(res.Panel.Subjects, res.Skipped)
	for _, w := range res.Warnings {
		m.Warn("baseline undefined for %s: %s", w.Subject, w.Message)
	}

	prefix := filepath.Join(eo.Dir, fmt.Sprintf("panel-%s", m.RunID))
	writer := excel.NewPanelWriter(excel.ExcelConfig{Precision: eo.Precision})

	for _, format := range eo.Formats {
		var path string
		var err error
		switch format {
		case "csv":
			path = prefix + "-long.csv"
			err = excel.WriteFile(path, func(w io.Writer) error { return writer.WriteLongCSV(w, res.Records) })
		case "wide":
			path = prefix + "-wide.csv"
			err = excel.WriteFile(path, func(w io.Writer) error { return writer.WriteWideCSV(w, res.Panel) })
		case "xlsx":
			path = prefix + ".xlsx"
			err = writer.WriteXLSX(path, res.Records, res.Panel)
		case "parquet":
			path = prefix + ".parquet"
			err = parquet.NewPanelWriter(eo.Compression).WriteFile(path, res.Records)
		default:
			return fmt.Errorf("unknown output format %q", format)
		}
		if err != nil {
			return fmt.Errorf("write %s output: %w", format, err)
		}
		s.logger.Info("Wrote %s", path)
		m.AddOutput(path)
	}

	for _, r := range s.renderers {
		path := prefix + r.Extension()
		if err := r.Render(path, res.Records, intervals); err != nil {
			s.logger.Warn("Chart %s failed: %v", path, err)
			m.Warn("chart %s failed: %v", filepath.Base(path), err)
			continue
		}
		m.AddOutput(path)
	}

	if s.repo != nil {
		if err := s.repo.SaveRun(ctx, m, opts); err != nil {
			return err
		}
		if err := s.repo.SaveRecords(ctx, m.RunID, res.Records); err != nil {
			return err
		}
		if s.comparisons != nil && len(res.Comparisons) > 0 {
			if err := s.comparisons.SaveComparisons(ctx, m.RunID, res.Comparisons); err != nil {
				return err
			}
		}
		s.logger.Info("Stored run %s (%d records)", m.RunID, len(res.Records))
	}

	if eo.Report {
		rep := &report.Report{Title: eo.Title, Manifest: m, Comparisons: res.Comparisons}
		mdPath, htmlPath, err := rep.WriteFiles(eo.Dir)
		if err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		m.AddOutput(mdPath)
		m.AddOutput(htmlPath)
	}

	path, err := m.WriteFile(eo.Dir)
	if err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	s.logger.Info("Manifest %s", path)
	return nil
}
