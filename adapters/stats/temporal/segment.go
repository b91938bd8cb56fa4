package temporal

import (
	"fmt"
	"math"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/core"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/signal"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

// ============================================================================
// SEGMENT RESAMPLING
// ============================================================================
// Event segments have irregular lengths (one driver takes 40 s through a
// junction, another 90 s). Each segment is stretched onto a fixed number of
// points so subjects can be averaged index by index.
// ============================================================================

// ResampleSegment linearly interpolates segment onto points evenly spaced
// positions over its own index range [0, len-1].
func ResampleSegment(segment []float64, points int) ([]float64, error) {
	if points < 1 {
		return nil, fmt.Errorf("points must be positive, got %d", points)
	}
	n := len(segment)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty segment", core.ErrInsufficientData)
	}

	out := make([]float64, points)
	if n == 1 || points == 1 {
		for i := range out {
			out[i] = segment[0]
		}
		return out, nil
	}

	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, segment); err != nil {
		return nil, fmt.Errorf("fit segment: %w", err)
	}

	grid := floats.Span(make([]float64, points), 0, float64(n-1))
	// Pin the end so the last sample is reproduced exactly.
	grid[points-1] = float64(n - 1)

	for i, x := range grid {
		out[i] = pl.Predict(x)
	}
	return out, nil
}

// BoundaryPairs converts one subject's boundary column into 0-based inclusive
// index pairs. Pairs that cannot form a segment are reported, not fatal:
// subjects with fewer events than the maximum carry missing rows.
func BoundaryPairs(
	subject signal.SubjectID,
	column []float64,
	signalLen int,
	mode signal.PairingMode,
	indexBase int,
) ([]signal.Pair, []signal.SkippedPair) {
	step := 1
	if mode == signal.PairDisjoint {
		step = 2
	}

	var pairs []signal.Pair
	var skipped []signal.SkippedPair
	for row := 0; row+1 < len(column); row += step {
		a, b := column[row], column[row+1]
		reason := ""
		start := int(math.Round(a)) - indexBase
		end := int(math.Round(b)) - indexBase

		switch {
		case math.IsNaN(a) || math.IsNaN(b):
			reason = "missing boundary"
		case end <= start:
			reason = fmt.Sprintf("non-increasing boundary (%d, %d)", start, end)
		case start < 0 || end >= signalLen:
			reason = fmt.Sprintf("boundary (%d, %d) outside signal of length %d", start, end, signalLen)
		}

		if reason != "" {
			skipped = append(skipped, signal.SkippedPair{Subject: subject, Row: row, Reason: reason})
			continue
		}
		pairs = append(pairs, signal.Pair{Row: row, Start: start, End: end})
	}
	return pairs, skipped
}

// ResampleSubject resamples every pair of series, concatenates the segments
// in pair order and min-max normalizes the concatenation.
func ResampleSubject(subject signal.SubjectID, series []float64, pairs []signal.Pair, points int) ([]float64, error) {
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: subject %s", core.ErrNoSegments, subject)
	}

	concatenated := make([]float64, 0, len(pairs)*points)
	for _, p := range pairs {
		if p.Start < 0 || p.End >= len(series) || p.End <= p.Start {
			return nil, core.NewInvalidBoundaryError(p.Row, float64(p.Start), float64(p.End), "outside signal")
		}
		seg, err := ResampleSegment(series[p.Start:p.End+1], points)
		if err != nil {
			return nil, fmt.Errorf("subject %s row %d: %w", subject, p.Row, err)
		}
		concatenated = append(concatenated, seg...)
	}

	normalized, err := Normalize(concatenated)
	if err != nil {
		return nil, fmt.Errorf("subject %s: %w", subject, err)
	}
	return normalized, nil
}

// Normalize rescales values into [0, 1]. NaN samples are ignored when
// finding the range and stay NaN. A constant series is an error.
func Normalize(values []float64) ([]float64, error) {
	lo, hi, ok := nanRange(values)
	if !ok {
		return nil, fmt.Errorf("%w: no finite samples", core.ErrDegenerateSignal)
	}
	if hi == lo {
		return nil, fmt.Errorf("%w: constant at %v", core.ErrDegenerateSignal, lo)
	}

	out := make([]float64, len(values))
	span := hi - lo
	for i, v := range values {
		out[i] = (v - lo) / span
	}
	return out, nil
}

func nanRange(values []float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		ok = true
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi, ok
}
