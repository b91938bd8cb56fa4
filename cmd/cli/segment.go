package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/adapters/chart"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/adapters/excel"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/adapters/parquet"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/adapters/postgres"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/adapters/stats/events"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/adapters/stats/senses"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/app"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/core"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/run"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/signal"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/internal/errors"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/internal/migration"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/ports"

	"github.com/spf13/cobra"
)

func newSegmentCmd(e *env) *cobra.Command {
	var eventsFile string
	var labels []string
	var outDir string
	var points int
	var pairing string
	var title string

	cmd := &cobra.Command{
		Use:   "segment [signals] [boundaries]",
		Short: "Resample every subject's segments into a baseline-corrected long panel",
		Long: `Resample each subject's signal between consecutive boundary indices onto a
fixed number of points per segment, min-max normalize, pad to a common
length, subtract the baseline window mean and tag every time point with
its event.

Tables may be .csv or .xlsx with one column per subject.

Example: edd segment data/EDA.xlsx data/Time.xlsx --events config/events.yaml`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := e.cfg.Segment
			if points > 0 {
				opts.PointsPerSegment = points
			}
			if pairing != "" {
				opts.Pairing = signal.PairingMode(pairing)
			}
			if err := opts.Validate(); err != nil {
				return errors.Validation(err)
			}
			if eventsFile == "" {
				eventsFile = e.cfg.Events.File
			}
			if len(labels) == 0 {
				labels = e.cfg.Events.Labels
			}
			if outDir == "" {
				outDir = e.cfg.Output.Dir
			}
			return runSegment(cmd.Context(), e, args[0], args[1], eventsFile, labels, outDir, title, opts)
		},
	}

	cmd.Flags().StringVar(&eventsFile, "events", "", "YAML event interval table (overrides events.file)")
	cmd.Flags().StringSliceVar(&labels, "labels", nil, "Event labels for uniform intervals of events.width points")
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (overrides output.dir)")
	cmd.Flags().IntVar(&points, "points", 0, "Points per segment (overrides segment.points_per_segment)")
	cmd.Flags().StringVar(&pairing, "pairing", "", "Boundary pairing: consecutive|disjoint")
	cmd.Flags().StringVar(&title, "title", "", "Chart and report title (defaults to the signal file name)")

	return cmd
}

func runSegment(ctx context.Context, e *env, signalsPath, boundariesPath, eventsFile string, labels []string, outDir, title string, opts signal.Options) error {
	loader := excel.NewTableLoader(excel.DefaultExcelConfig())
	signals, err := loader.LoadTable(signalsPath)
	if err != nil {
		return errors.IOError(signalsPath, err)
	}
	boundaries, err := loader.LoadTable(boundariesPath)
	if err != nil {
		return errors.IOError(boundariesPath, err)
	}

	intervals, err := loadIntervals(eventsFile, e.cfg.Events.Width, labels)
	if err != nil {
		return err
	}

	result, err := app.NewPanelService(e.logger).Run(ctx, app.PanelRequest{
		Signals:    signals,
		Boundaries: boundaries,
		Intervals:  intervals,
		Options:    opts,
	})
	if err != nil {
		return err
	}

	if title == "" {
		title = strings.TrimSuffix(filepath.Base(signalsPath), filepath.Ext(signalsPath))
	}
	var renderers []ports.ChartRenderer
	for _, c := range e.cfg.Output.Charts {
		switch c {
		case "png":
			renderers = append(renderers, chart.NewPNGRenderer(title))
		case "html":
			renderers = append(renderers, chart.NewHTMLRenderer(title, "Expert vs Novice"))
		}
	}

	var repo ports.PanelRepository
	db, err := e.openDatabase()
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		if err := migration.NewRunner().Run(ctx, db); err != nil {
			return err
		}
		repo = postgres.NewPanelRepository(db)
	}

	manifest := run.NewRunManifest("segment", run.OptionParams(opts))
	manifest.AddInput(signalsPath)
	manifest.AddInput(boundariesPath)
	if eventsFile != "" {
		manifest.AddInput(eventsFile)
	}

	exporter := app.NewExportService(e.logger, renderers, repo)
	err = exporter.Export(ctx, result, manifest, intervals, app.ExportOptions{
		Dir:         outDir,
		Formats:     e.cfg.Output.Formats,
		Compression: e.cfg.Output.Compression,
		Precision:   e.cfg.Output.Precision,
		Report:      e.cfg.Output.Report,
		Title:       title,
	}, opts)
	if err != nil {
		return err
	}

	fmt.Printf("Run %s\n", manifest.RunID)
	fmt.Printf("Subjects: %d included, %d skipped\n", len(result.Panel.Subjects), len(result.Skipped))
	for _, s := range result.Skipped {
		fmt.Printf("  skipped %s: %s\n", s.Subject, s.Reason)
	}
	printComparisons(result.Comparisons)
	for _, out := range manifest.Outputs {
		fmt.Printf("  wrote %s\n", out)
	}
	return nil
}

// loadIntervals prefers an interval file, then uniform labels, else none
func loadIntervals(path string, width int, labels []string) ([]signal.Interval, error) {
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.IOError(path, err)
		}
		defer f.Close()
		return events.LoadIntervals(f)
	}
	if len(labels) > 0 {
		return events.Uniform(width, labels...), nil
	}
	return nil, nil
}

func newCompareCmd(e *env) *cobra.Command {
	var runID string

	cmd := &cobra.Command{
		Use:   "compare [panel]",
		Short: "Run Expert vs Novice Welch t-tests on a stored long panel",
		Long: `Compare group means per event on a tagged long panel, read from a
.parquet or long .csv file, or from the panel database with --run-id.

Example: edd compare output/panel-0192f1c4-7a2e-7d31-9c4f-3b8e2a1d5c60-long.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && runID == "" {
				return errors.InvalidInput("a panel file or --run-id is required")
			}
			return runCompare(cmd.Context(), e, args, runID)
		},
	}
	cmd.Flags().StringVar(&runID, "run-id", "", "Load the panel for this run from the database")
	return cmd
}

func runCompare(ctx context.Context, e *env, args []string, runIDFlag string) error {
	var records []signal.TaggedRecord
	var err error
	var repo *postgres.PanelRepository
	var runID core.RunID

	if runIDFlag != "" {
		if runID, err = core.ParseRunID(runIDFlag); err != nil {
			return err
		}
		db, err := e.openDatabase()
		if err != nil {
			return err
		}
		if db == nil {
			return errors.ConfigInvalid("--run-id needs database.enabled and database.url")
		}
		defer db.Close()
		repo = postgres.NewPanelRepository(db)
		if records, err = repo.LoadRecords(ctx, runID); err != nil {
			return err
		}
	} else {
		path := args[0]
		switch strings.ToLower(filepath.Ext(path)) {
		case ".parquet":
			records, err = parquet.ReadFile(path)
		default:
			records, err = excel.NewDataReader(path).ReadRecords()
		}
		if err != nil {
			return errors.IOError(path, err)
		}
	}

	comparisons := app.NewPanelService(e.logger).Compare(records)
	printComparisons(comparisons)

	if repo != nil && len(comparisons) > 0 {
		return repo.SaveComparisons(ctx, runID, comparisons)
	}
	return nil
}

func printComparisons(comparisons []senses.EventComparison) {
	if len(comparisons) == 0 {
		return
	}
	fmt.Printf("\n%-16s %8s %8s %10s %10s %8s %10s\n", "Event", "nExpert", "nNovice", "Expert", "Novice", "t", "p")
	for _, c := range comparisons {
		fmt.Printf("%-16s %8d %8d %10.4f %10.4f %8.3f %10.4g  %s\n",
			c.Event, c.NExpert, c.NNovice, c.ExpertMean, c.NoviceMean, c.TStatistic, c.PValue, c.Signal)
	}
}
