// Package baseline subtracts a per-subject resting level from long-format
// panels so that groups can be compared on change rather than absolute level.
package baseline

import (
	"fmt"
	"math"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/signal"

	"github.com/montanaflynn/stats"
)

// Corrector subtracts each subject's mean over a fixed Time window.
type Corrector struct {
	window signal.Window
}

// NewCorrector creates a corrector for window [lo, hi)
func NewCorrector(window signal.Window) *Corrector {
	return &Corrector{window: window}
}

// Baselines returns the mean non-missing value inside the window per subject.
// Subjects with no value in the window map to NaN.
func (c *Corrector) Baselines(records []signal.Record) map[signal.SubjectID]float64 {
	inWindow := make(map[signal.SubjectID][]float64)
	for _, r := range records {
		if _, ok := inWindow[r.Subject]; !ok {
			inWindow[r.Subject] = nil
		}
		if c.window.Contains(r.Time) && !r.Missing() {
			inWindow[r.Subject] = append(inWindow[r.Subject], r.Value)
		}
	}

	baselines := make(map[signal.SubjectID]float64, len(inWindow))
	for subject, values := range inWindow {
		mean, err := stats.Mean(values)
		if err != nil {
			mean = math.NaN()
		}
		baselines[subject] = mean
	}
	return baselines
}

// Correct returns a copy of records with each subject's baseline subtracted.
// An undefined baseline makes that subject's values undefined and yields a
// warning instead of an error.
func (c *Corrector) Correct(records []signal.Record) ([]signal.Record, []signal.BaselineWarning) {
	baselines := c.Baselines(records)

	var warnings []signal.BaselineWarning
	order, _ := signal.GroupRecords(records)
	for _, subject := range order {
		if math.IsNaN(baselines[subject]) {
			warnings = append(warnings, signal.BaselineWarning{
				Subject: subject,
				Window:  c.window,
				Message: fmt.Sprintf("no data in baseline window [%d, %d)", c.window.Lo, c.window.Hi),
			})
		}
	}

	corrected := make([]signal.Record, len(records))
	for i, r := range records {
		r.Value -= baselines[r.Subject]
		corrected[i] = r
	}
	return corrected, warnings
}
