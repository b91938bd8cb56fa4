package physio

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// PeakOptions tunes systolic peak detection on a cleaned PPG signal
type PeakOptions struct {
	PeakWindow float64 // seconds, systolic peak width
	BeatWindow float64 // seconds, beat width
	BetaOffset float64 // threshold offset as a fraction of the mean energy
	MinDelay   float64 // seconds, refractory period between peaks
	BandLow    float64 // Hz
	BandHigh   float64 // Hz
}

// DefaultPeakOptions are the Elgendi settings for wrist PPG
func DefaultPeakOptions() PeakOptions {
	return PeakOptions{
		PeakWindow: 0.111,
		BeatWindow: 0.667,
		BetaOffset: 0.02,
		MinDelay:   0.3,
		BandLow:    0.5,
		BandHigh:   8,
	}
}

// DetectPeaks band-passes a PPG signal and marks systolic peaks. Blocks
// where the short moving average of the clipped squared signal exceeds the
// long one plus an offset are candidate beats; the maximum of each block
// wide enough to be a peak is kept unless it falls inside the refractory
// period of the previous peak.
func DetectPeaks(ppg []float64, fs float64, o PeakOptions) ([]bool, error) {
	clean, err := Bandpass(ppg, fs, o.BandLow, o.BandHigh)
	if err != nil {
		return nil, err
	}
	peaks := make([]bool, len(ppg))
	if len(clean) == 0 {
		return peaks, nil
	}

	energy := make([]float64, len(clean))
	for i, v := range clean {
		if v > 0 {
			energy[i] = v * v
		}
	}
	maPeak := movingAverage(energy, samples(o.PeakWindow, fs))
	maBeat := movingAverage(energy, samples(o.BeatWindow, fs))
	meanEnergy, err := stats.Mean(energy)
	if err != nil {
		return nil, fmt.Errorf("detect peaks: %w", err)
	}
	offset := o.BetaOffset * meanEnergy

	minWidth := samples(o.PeakWindow, fs)
	minDelay := samples(o.MinDelay, fs)
	last := -minDelay - 1

	i := 0
	for i < len(clean) {
		if maPeak[i] <= maBeat[i]+offset {
			i++
			continue
		}
		start := i
		for i < len(clean) && maPeak[i] > maBeat[i]+offset {
			i++
		}
		if i-start < minWidth {
			continue
		}
		best := start
		for j := start + 1; j < i; j++ {
			if clean[j] > clean[best] {
				best = j
			}
		}
		if best-last > minDelay {
			peaks[best] = true
			last = best
		}
	}
	return peaks, nil
}

// RMSSD is the root mean square of successive differences of inter-beat
// intervals. At least two intervals are required.
func RMSSD(intervalsMs []float64) (float64, bool) {
	if len(intervalsMs) < 2 {
		return math.NaN(), false
	}
	sq := make([]float64, len(intervalsMs)-1)
	for i := 1; i < len(intervalsMs); i++ {
		d := intervalsMs[i] - intervalsMs[i-1]
		sq[i-1] = d * d
	}
	m, err := stats.Mean(sq)
	if err != nil {
		return math.NaN(), false
	}
	return math.Sqrt(m), true
}

// WindowedRMSSD slides a window of `window` samples with the given overlap
// across the peak train. Windows start at 0, window-overlap, ... while the
// start is below len-window. Each window with at least two inter-beat
// intervals contributes one RMSSD value in ms; timestamps are in seconds.
func WindowedRMSSD(peaks []bool, timestampsSec []float64, window, overlap int) ([]float64, error) {
	if window < 2 {
		return nil, fmt.Errorf("rmssd: window must be at least 2 samples, got %d", window)
	}
	if overlap < 0 || overlap >= window {
		return nil, fmt.Errorf("rmssd: overlap must be in [0, %d), got %d", window, overlap)
	}
	if len(peaks) != len(timestampsSec) {
		return nil, fmt.Errorf("rmssd: %d peak flags for %d timestamps", len(peaks), len(timestampsSec))
	}

	step := window - overlap
	var out []float64
	for start := 0; start < len(peaks)-window; start += step {
		var beats []float64
		for j := start; j < start+window; j++ {
			if peaks[j] {
				beats = append(beats, timestampsSec[j])
			}
		}
		if len(beats) < 2 {
			continue
		}
		intervals := make([]float64, len(beats)-1)
		for k := 1; k < len(beats); k++ {
			intervals[k-1] = (beats[k] - beats[k-1]) * 1000
		}
		if v, ok := RMSSD(intervals); ok {
			out = append(out, v)
		}
	}
	return out, nil
}
