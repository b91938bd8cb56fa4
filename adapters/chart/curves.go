// Package chart renders group-mean curves of a tagged long panel as a
// static PNG (gonum/plot) or an interactive HTML page (go-echarts).
package chart

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/signal"
)

// Curve is the mean value of one group at each Time index. Mean is NaN
// where no subject of the group has data.
type Curve struct {
	Group signal.Group
	Time  []int
	Mean  []float64
}

// GroupCurves averages records per group and Time, experts first
func GroupCurves(records []signal.TaggedRecord) []Curve {
	maxT := -1
	for _, r := range records {
		if r.Time > maxT {
			maxT = r.Time
		}
	}
	if maxT < 0 {
		return nil
	}

	groups := []signal.Group{signal.GroupExpert, signal.GroupNovice}
	buckets := make(map[signal.Group][][]float64, len(groups))
	for _, g := range groups {
		buckets[g] = make([][]float64, maxT+1)
	}
	for _, r := range records {
		if r.Missing() || r.Time < 0 {
			continue
		}
		byTime, ok := buckets[r.Group]
		if !ok {
			continue
		}
		byTime[r.Time] = append(byTime[r.Time], r.Value)
	}

	curves := make([]Curve, 0, len(groups))
	for _, g := range groups {
		c := Curve{Group: g, Time: make([]int, maxT+1), Mean: make([]float64, maxT+1)}
		seen := false
		for t, xs := range buckets[g] {
			c.Time[t] = t
			if len(xs) == 0 {
				c.Mean[t] = math.NaN()
				continue
			}
			seen = true
			c.Mean[t] = stat.Mean(xs, nil)
		}
		if seen {
			curves = append(curves, c)
		}
	}
	return curves
}

// eventMarks returns the start of every interval plus the final end
func eventMarks(intervals []signal.Interval) []int {
	if len(intervals) == 0 {
		return nil
	}
	marks := make([]int, 0, len(intervals)+1)
	for _, iv := range intervals {
		marks = append(marks, iv.Start)
	}
	return append(marks, intervals[len(intervals)-1].End)
}

func valueRange(curves []Curve) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, c := range curves {
		for _, v := range c.Mean {
			if math.IsNaN(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 1
	}
	return lo, hi
}
