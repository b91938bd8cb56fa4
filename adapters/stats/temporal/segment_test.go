package temporal

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/core"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/signal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// TEST: ResampleSegment
// ============================================================================

func TestResampleSegment_PreservesEndpoints(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for _, length := range []int{2, 3, 17, 250} {
		for _, points := range []int{2, 3, 100, 1000} {
			seg := make([]float64, length)
			for i := range seg {
				seg[i] = rng.NormFloat64()
			}

			out, err := ResampleSegment(seg, points)
			require.NoError(t, err)
			require.Len(t, out, points)
			assert.Equal(t, seg[0], out[0], "first sample L=%d P=%d", length, points)
			assert.Equal(t, seg[length-1], out[points-1], "last sample L=%d P=%d", length, points)
		}
	}
}

func TestResampleSegment_IdempotentAtSameLength(t *testing.T) {
	seg := []float64{3, -1, 4, 1, -5, 9, 2, 6}

	once, err := ResampleSegment(seg, len(seg))
	require.NoError(t, err)
	twice, err := ResampleSegment(once, len(seg))
	require.NoError(t, err)

	assert.InDeltaSlice(t, seg, once, 1e-12)
	assert.InDeltaSlice(t, once, twice, 1e-12)
}

func TestResampleSegment_LinearInterpolation(t *testing.T) {
	// [0,10,20] onto 5 points lands on x = 0, 0.5, 1, 1.5, 2.
	out, err := ResampleSegment([]float64{0, 10, 20}, 5)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 5, 10, 15, 20}, out, 1e-12)

	// Downsampling picks interpolated interior positions.
	out, err = ResampleSegment([]float64{0, 1, 4, 9, 16}, 3)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 4, 16}, out, 1e-12)
}

func TestResampleSegment_EdgeCases(t *testing.T) {
	out, err := ResampleSegment([]float64{7}, 4)
	require.NoError(t, err)
	assert.Equal(t, []float64{7, 7, 7, 7}, out)

	out, err = ResampleSegment([]float64{1, 2, 3}, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, out)

	_, err = ResampleSegment(nil, 3)
	assert.Error(t, err)

	_, err = ResampleSegment([]float64{1, 2}, 0)
	assert.Error(t, err)
}

// ============================================================================
// TEST: BoundaryPairs
// ============================================================================

func TestBoundaryPairs_Consecutive(t *testing.T) {
	nan := math.NaN()
	pairs, skipped := BoundaryPairs("exper1", []float64{0, 2, 5, nan}, 10, signal.PairConsecutive, 0)

	assert.Equal(t, []signal.Pair{{Row: 0, Start: 0, End: 2}, {Row: 1, Start: 2, End: 5}}, pairs)
	require.Len(t, skipped, 1)
	assert.Equal(t, 2, skipped[0].Row)
	assert.Equal(t, signal.SubjectID("exper1"), skipped[0].Subject)
}

func TestBoundaryPairs_Disjoint(t *testing.T) {
	pairs, skipped := BoundaryPairs("exper1", []float64{0, 2, 3, 5}, 6, signal.PairDisjoint, 0)

	assert.Empty(t, skipped)
	assert.Equal(t, []signal.Pair{{Row: 0, Start: 0, End: 2}, {Row: 2, Start: 3, End: 5}}, pairs)
}

func TestBoundaryPairs_OneBasedIndices(t *testing.T) {
	pairs, _ := BoundaryPairs("novice1", []float64{1, 3, 6}, 6, signal.PairConsecutive, 1)

	assert.Equal(t, []signal.Pair{{Row: 0, Start: 0, End: 2}, {Row: 1, Start: 2, End: 5}}, pairs)
}

func TestBoundaryPairs_SkipsInvalid(t *testing.T) {
	// non-increasing, then out of range
	pairs, skipped := BoundaryPairs("novice2", []float64{4, 4, 2, 20}, 10, signal.PairConsecutive, 0)

	assert.Empty(t, pairs)
	require.Len(t, skipped, 3)
	assert.Contains(t, skipped[0].Reason, "non-increasing")
	assert.Contains(t, skipped[1].Reason, "non-increasing")
	assert.Contains(t, skipped[2].Reason, "outside signal")
}

// ============================================================================
// TEST: ResampleSubject / Normalize
// ============================================================================

func TestResampleSubject_EndToEndScenario(t *testing.T) {
	series := []float64{0, 10, 20, 30, 40, 50}
	pairs := []signal.Pair{{Row: 0, Start: 0, End: 2}, {Row: 1, Start: 3, End: 5}}

	out, err := ResampleSubject("exper1", series, pairs, 3)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 0.2, 0.4, 0.6, 0.8, 1.0}, out, 1e-12)
}

func TestNormalize_Range(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	values := make([]float64, 500)
	for i := range values {
		values[i] = rng.Float64()*40 - 12
	}
	values[17] = math.NaN()

	out, err := Normalize(values)
	require.NoError(t, err)

	lo, hi, ok := nanRange(out)
	require.True(t, ok)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 1.0, hi)
	assert.True(t, math.IsNaN(out[17]))
}

func TestNormalize_Degenerate(t *testing.T) {
	_, err := Normalize([]float64{2, 2, 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrDegenerateSignal))

	_, err = Normalize([]float64{math.NaN(), math.NaN()})
	assert.True(t, errors.Is(err, core.ErrDegenerateSignal))
}

func TestResampleSubject_NoPairs(t *testing.T) {
	_, err := ResampleSubject("novice4", []float64{1, 2, 3}, nil, 10)
	assert.True(t, errors.Is(err, core.ErrNoSegments))
}
