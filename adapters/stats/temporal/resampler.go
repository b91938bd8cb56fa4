package temporal

import (
	"context"
	"fmt"
	"math"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/core"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/signal"

	"golang.org/x/sync/errgroup"
)

// ============================================================================
// BATCH RESAMPLER
// ============================================================================
// Runs ResampleSubject over a roster, folds the per-subject outcomes into
// "included" and "skipped", then pads every included series to a common
// length. Subjects are independent, so they run in parallel; results are
// written by roster index which keeps output order deterministic.
// ============================================================================

// Outcome is the result of resampling a whole roster.
type Outcome struct {
	Panel        *signal.Panel
	Skipped      []signal.SkippedSubject
	SkippedPairs []signal.SkippedPair
}

// Resampler resamples every subject of a roster.
type Resampler struct {
	opts signal.Options
}

// NewResampler creates a resampler for the given options
func NewResampler(opts signal.Options) (*Resampler, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Resampler{opts: opts}, nil
}

type subjectResult struct {
	series []float64
	pairs  []signal.SkippedPair
	err    error
}

// Resample processes subjects in order. Recoverable per-subject failures end
// up in Outcome.Skipped. When no subject survives, the outcome is still
// returned together with core.ErrNoSubjects.
func (r *Resampler) Resample(ctx context.Context, signals, boundaries *signal.Table, subjects []signal.SubjectID) (*Outcome, error) {
	if signals == nil || boundaries == nil {
		return nil, fmt.Errorf("%w: signal and boundary tables are required", core.ErrEmptyTable)
	}

	results := make([]subjectResult, len(subjects))

	workers := r.opts.Workers
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, subject := range subjects {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.resampleOne(subject, signals, boundaries)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	outcome := &Outcome{}
	included := make(map[signal.SubjectID][]float64, len(subjects))
	var order []signal.SubjectID
	for i, subject := range subjects {
		res := results[i]
		outcome.SkippedPairs = append(outcome.SkippedPairs, res.pairs...)
		if res.err != nil {
			if !core.IsRecoverable(res.err) {
				return nil, res.err
			}
			outcome.Skipped = append(outcome.Skipped, signal.SkippedSubject{
				Subject: subject,
				Reason:  skipReason(res.err),
				Err:     res.err,
			})
			continue
		}
		included[subject] = res.series
		order = append(order, subject)
	}

	outcome.Panel = Pad(included, order)
	if len(order) == 0 {
		return outcome, fmt.Errorf("%w: %d subjects skipped", core.ErrNoSubjects, len(outcome.Skipped))
	}
	return outcome, nil
}

func (r *Resampler) resampleOne(subject signal.SubjectID, signals, boundaries *signal.Table) subjectResult {
	series, ok := signals.Column(string(subject))
	if !ok {
		return subjectResult{err: core.NewMissingColumnError(signals.Name, string(subject))}
	}
	column, ok := boundaries.Column(string(subject))
	if !ok {
		return subjectResult{err: core.NewMissingColumnError(boundaries.Name, string(subject))}
	}

	pairs, skipped := BoundaryPairs(subject, column, len(series), r.opts.Pairing, r.opts.IndexBase)
	out, err := ResampleSubject(subject, series, pairs, r.opts.PointsPerSegment)
	return subjectResult{series: out, pairs: skipped, err: err}
}

func skipReason(err error) string {
	switch {
	case core.IsMissingColumn(err):
		return "missing column"
	case core.IsNoSegments(err):
		return "no valid boundary pairs"
	case core.IsDegenerate(err):
		return "degenerate signal"
	default:
		return "invalid boundaries"
	}
}

// Pad extends every series with NaN up to the longest one and attaches the
// synthetic Time axis 0..max-1. Values are copied; the input is not modified.
func Pad(series map[signal.SubjectID][]float64, order []signal.SubjectID) *signal.Panel {
	maxLen := 0
	for _, id := range order {
		if n := len(series[id]); n > maxLen {
			maxLen = n
		}
	}

	panel := &signal.Panel{
		Time:     make([]int, maxLen),
		Subjects: append([]signal.SubjectID(nil), order...),
		Series:   make(map[signal.SubjectID][]float64, len(order)),
	}
	for i := range panel.Time {
		panel.Time[i] = i
	}
	for _, id := range order {
		padded := make([]float64, maxLen)
		n := copy(padded, series[id])
		for i := n; i < maxLen; i++ {
			padded[i] = math.NaN()
		}
		panel.Series[id] = padded
	}
	return panel
}
