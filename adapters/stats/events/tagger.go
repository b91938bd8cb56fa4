package events

import (
	"fmt"
	"io"
	"sort"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/core"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/signal"

	"gopkg.in/yaml.v3"
)

// Tagger labels Time indices with the event interval they fall in.
type Tagger struct {
	intervals []signal.Interval
	starts    []int
}

// NewTagger validates that intervals are non-empty, ordered, contiguous and
// non-overlapping.
func NewTagger(intervals []signal.Interval) (*Tagger, error) {
	if len(intervals) == 0 {
		return nil, core.NewInvalidIntervalsError(0, "table is empty")
	}

	starts := make([]int, len(intervals))
	for i, iv := range intervals {
		if iv.End <= iv.Start {
			return nil, core.NewInvalidIntervalsError(i, fmt.Sprintf("%q has end %d <= start %d", iv.Label, iv.End, iv.Start))
		}
		if i > 0 && iv.Start != intervals[i-1].End {
			return nil, core.NewInvalidIntervalsError(i, fmt.Sprintf("%q starts at %d, previous ends at %d", iv.Label, iv.Start, intervals[i-1].End))
		}
		starts[i] = iv.Start
	}

	return &Tagger{
		intervals: append([]signal.Interval(nil), intervals...),
		starts:    starts,
	}, nil
}

// Intervals returns a copy of the interval table
func (t *Tagger) Intervals() []signal.Interval {
	return append([]signal.Interval(nil), t.intervals...)
}

// Span returns the covered range [first start, last end].
func (t *Tagger) Span() (int, int) {
	return t.intervals[0].Start, t.intervals[len(t.intervals)-1].End
}

// Tag returns the label of the interval containing time. The final end is
// inclusive so the supremum belongs to the last interval.
func (t *Tagger) Tag(time int) (string, error) {
	first, last := t.Span()
	if time < first || time > last {
		return "", core.NewUnmappedTimeError(time)
	}
	if time == last {
		return t.intervals[len(t.intervals)-1].Label, nil
	}

	// index of the last interval whose start <= time
	i := sort.SearchInts(t.starts, time+1) - 1
	return t.intervals[i].Label, nil
}

// TagRecords labels every record, failing on the first unmapped Time.
func (t *Tagger) TagRecords(records []signal.Record) ([]signal.TaggedRecord, error) {
	tagged := make([]signal.TaggedRecord, len(records))
	for i, r := range records {
		label, err := t.Tag(r.Time)
		if err != nil {
			return nil, fmt.Errorf("subject %s: %w", r.Subject, err)
		}
		tagged[i] = signal.TaggedRecord{Record: r, Event: label}
	}
	return tagged, nil
}

// Covers reports whether every index in [0, n) can be tagged.
func (t *Tagger) Covers(n int) bool {
	if n == 0 {
		return true
	}
	first, last := t.Span()
	return first <= 0 && last >= n-1
}

type intervalFile struct {
	Events []signal.Interval `yaml:"events"`
}

// LoadIntervals reads an interval table from YAML:
//
//	events:
//	  - {start: 0, end: 100, label: baseline}
//	  - {start: 100, end: 300, label: A1}
func LoadIntervals(r io.Reader) ([]signal.Interval, error) {
	var f intervalFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode event intervals: %w", err)
	}
	if _, err := NewTagger(f.Events); err != nil {
		return nil, err
	}
	return f.Events, nil
}

// Uniform builds contiguous intervals of equal width, one per label.
func Uniform(width int, labels ...string) []signal.Interval {
	out := make([]signal.Interval, len(labels))
	for i, label := range labels {
		out[i] = signal.Interval{Start: i * width, End: (i + 1) * width, Label: label}
	}
	return out
}
