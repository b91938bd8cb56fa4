package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/adapters/stats/baseline"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/adapters/stats/events"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/adapters/stats/senses"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/adapters/stats/temporal"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/core"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/signal"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/internal"
)

// PanelService turns a signal table and its boundary table into a
// baseline-corrected, event-tagged long panel
type PanelService struct {
	logger *internal.Logger
	sense  *senses.WelchTTestSense
}

// PanelRequest defines the inputs for one resample/baseline/tag pass
type PanelRequest struct {
	Signals    *signal.Table
	Boundaries *signal.Table
	Intervals  []signal.Interval // optional; records stay untagged when empty
	Options    signal.Options
}

// PanelResult contains the complete output of a pass
type PanelResult struct {
	Panel        *signal.Panel
	Records      []signal.TaggedRecord
	Skipped      []signal.SkippedSubject
	SkippedPairs []signal.SkippedPair
	Warnings     []signal.BaselineWarning
	Comparisons  []senses.EventComparison
	RuntimeMs    int64
}

// NewPanelService creates a panel service
func NewPanelService(logger *internal.Logger) *PanelService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &PanelService{logger: logger, sense: senses.NewWelchTTestSense()}
}

// Run resamples every roster subject, pads, converts to long format,
// subtracts each subject's baseline and tags records with their event.
// Skipped subjects and undefined baselines are reported, not fatal; a run
// where nobody survives returns the partial result with core.ErrNoSubjects.
func (s *PanelService) Run(ctx context.Context, req PanelRequest) (*PanelResult, error) {
	startTime := time.Now()
	opts := req.Options

	var tagger *events.Tagger
	if len(req.Intervals) > 0 {
		t, err := events.NewTagger(req.Intervals)
		if err != nil {
			return nil, fmt.Errorf("event intervals: %w", err)
		}
		tagger = t
	}

	resampler, err := temporal.NewResampler(opts)
	if err != nil {
		return nil, err
	}

	roster := signal.NewRoster(opts)
	subjects := roster.Subjects(req.Signals.Headers)
	s.logger.Info("Resampling %d subjects (%d points per segment, %s pairing)",
		len(subjects), opts.PointsPerSegment, opts.Pairing)

	outcome, err := resampler.Resample(ctx, req.Signals, req.Boundaries, subjects)
	if outcome == nil {
		return nil, err
	}

	result := &PanelResult{
		Panel:        outcome.Panel,
		Skipped:      outcome.Skipped,
		SkippedPairs: outcome.SkippedPairs,
	}
	for _, p := range outcome.SkippedPairs {
		s.logger.Debug("Skipped boundary pair %s row %d: %s", p.Subject, p.Row, p.Reason)
	}
	for _, sk := range outcome.Skipped {
		s.logger.Warn("Skipped subject %s: %s (%v)", sk.Subject, sk.Reason, sk.Err)
	}
	if err != nil {
		if errors.Is(err, core.ErrNoSubjects) {
			s.logger.Error("No subject could be resampled")
		}
		return result, err
	}

	long := outcome.Panel.Long(roster)
	corrected, warnings := baseline.NewCorrector(opts.BaselineWindow).Correct(long)
	result.Warnings = warnings
	for _, w := range warnings {
		s.logger.Warn("Baseline undefined for %s in [%d, %d): %s", w.Subject, w.Window.Lo, w.Window.Hi, w.Message)
	}

	if tagger != nil {
		if !tagger.Covers(outcome.Panel.Len()) {
			first, last := tagger.Span()
			return result, fmt.Errorf("%w: intervals cover [%d, %d] but the panel has %d time points",
				core.ErrUnmappedTime, first, last, outcome.Panel.Len())
		}
		tagged, err := tagger.TagRecords(corrected)
		if err != nil {
			return result, err
		}
		result.Records = tagged
		result.Comparisons = s.sense.CompareEvents(tagged)
	} else {
		result.Records = make([]signal.TaggedRecord, len(corrected))
		for i, r := range corrected {
			result.Records[i] = signal.TaggedRecord{Record: r}
		}
	}

	result.RuntimeMs = time.Since(startTime).Milliseconds()
	s.logger.Info("Panel ready: %d subjects x %d time points, %d skipped, %d baseline warnings (%dms)",
		len(outcome.Panel.Subjects), outcome.Panel.Len(), len(result.Skipped), len(result.Warnings), result.RuntimeMs)
	return result, nil
}

// Compare runs the group comparison on an existing tagged panel
func (s *PanelService) Compare(records []signal.TaggedRecord) []senses.EventComparison {
	comparisons := s.sense.CompareEvents(records)
	for _, c := range comparisons {
		s.logger.Info("%s", c.Description)
	}
	return comparisons
}
