package physio

import (
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/fft"
)

// Bandpass zeroes every frequency bin outside [lo, hi] Hz and returns the
// real part of the inverse transform. The mean is removed first so the DC
// bin does not leak into the pass band.
func Bandpass(x []float64, fs, lo, hi float64) ([]float64, error) {
	if fs <= 0 {
		return nil, fmt.Errorf("bandpass: sampling rate must be positive, got %g", fs)
	}
	if lo < 0 || hi <= lo {
		return nil, fmt.Errorf("bandpass: invalid band [%g, %g]", lo, hi)
	}
	n := len(x)
	if n == 0 {
		return nil, nil
	}

	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= float64(n)
	centered := make([]float64, n)
	for i, v := range x {
		centered[i] = v - mean
	}

	spectrum := fft.FFTReal(centered)
	for k := range spectrum {
		// bins above n/2 mirror the negative frequencies
		bin := k
		if k > n/2 {
			bin = n - k
		}
		freq := float64(bin) * fs / float64(n)
		if freq < lo || freq > hi {
			spectrum[k] = 0
		}
	}

	inv := fft.IFFT(spectrum)
	out := make([]float64, n)
	for i, c := range inv {
		out[i] = real(c)
	}
	return out, nil
}

// movingAverage is a centred boxcar of the given width in samples
func movingAverage(x []float64, width int) []float64 {
	out := make([]float64, len(x))
	if width < 1 {
		copy(out, x)
		return out
	}
	half := width / 2
	prefix := make([]float64, len(x)+1)
	for i, v := range x {
		prefix[i+1] = prefix[i] + v
	}
	for i := range x {
		lo := max(0, i-half)
		hi := min(len(x), i+half+1)
		out[i] = (prefix[hi] - prefix[lo]) / float64(hi-lo)
	}
	return out
}

func samples(seconds, fs float64) int {
	return int(math.Round(seconds * fs))
}
