// Package physio derives secondary channels from raw driving and
// physiological recordings: CAN-bus acceleration, eye-tracking grid cells
// and heart-rate variability from blood volume pulse.
package physio

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NoTimestamp marks an empty or unparsable timestamp cell.
const NoTimestamp int64 = math.MinInt64

// ParseNanos reads integer nanosecond timestamps. Epoch values near 1.7e18
// are beyond float64's exact range, so cells are parsed as int64.
func ParseNanos(cells []string) []int64 {
	out := make([]int64, len(cells))
	for i, c := range cells {
		ns, err := strconv.ParseInt(strings.TrimSpace(c), 10, 64)
		if err != nil {
			ns = NoTimestamp
		}
		out[i] = ns
	}
	return out
}

// Acceleration differentiates speed (m/s) over nanosecond timestamps.
// The first sample has no predecessor and is NaN, as is any sample with a
// zero or missing time step.
func Acceleration(timestampsNs []int64, speedMps []float64) ([]float64, error) {
	if len(timestampsNs) != len(speedMps) {
		return nil, fmt.Errorf("acceleration: %d timestamps for %d speeds", len(timestampsNs), len(speedMps))
	}
	out := make([]float64, len(speedMps))
	for i := range out {
		if i == 0 || timestampsNs[i] == NoTimestamp || timestampsNs[i-1] == NoTimestamp {
			out[i] = math.NaN()
			continue
		}
		step := timestampsNs[i] - timestampsNs[i-1]
		if step == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = (speedMps[i] - speedMps[i-1]) / (float64(step) / 1e9)
	}
	return out, nil
}
