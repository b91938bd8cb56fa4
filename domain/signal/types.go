package signal

import (
	"math"
)

// SubjectID names one recorded participant, i.e. one column of a wide table.
type SubjectID string

func (s SubjectID) String() string { return string(s) }

// Group is the Expert/Novice classification of a subject.
type Group string

const (
	GroupExpert Group = "Expert"
	GroupNovice Group = "Novice"
)

// Table is a wide numeric table with one column per header.
// Missing cells are NaN.
type Table struct {
	Name    string
	Headers []string
	Columns map[string][]float64
}

// NewTable creates an empty table with the given headers
func NewTable(name string, headers []string) *Table {
	cols := make(map[string][]float64, len(headers))
	for _, h := range headers {
		cols[h] = nil
	}
	return &Table{Name: name, Headers: headers, Columns: cols}
}

// Column returns the values for a header
func (t *Table) Column(name string) ([]float64, bool) {
	col, ok := t.Columns[name]
	return col, ok
}

// Rows returns the length of the longest column
func (t *Table) Rows() int {
	n := 0
	for _, col := range t.Columns {
		if len(col) > n {
			n = len(col)
		}
	}
	return n
}

// TrimTrailingMissing drops trailing rows where every column is missing.
func (t *Table) TrimTrailingMissing() {
	last := -1
	for _, col := range t.Columns {
		for i := len(col) - 1; i > last; i-- {
			if !math.IsNaN(col[i]) {
				last = i
				break
			}
		}
	}
	for name, col := range t.Columns {
		if len(col) > last+1 {
			t.Columns[name] = col[:last+1]
		}
	}
}

// Pair is one segment boundary pair, already converted to 0-based offsets.
type Pair struct {
	Row   int // boundary row of the start index
	Start int
	End   int // inclusive
}

// Len returns the number of samples covered by the pair
func (p Pair) Len() int { return p.End - p.Start + 1 }

// Window is a half-open Time interval [Lo, Hi).
type Window struct {
	Lo int `mapstructure:"lo" yaml:"lo"`
	Hi int `mapstructure:"hi" yaml:"hi"`
}

// Contains reports whether t lies in [Lo, Hi)
func (w Window) Contains(t int) bool {
	return t >= w.Lo && t < w.Hi
}

// Record is one long-format observation.
type Record struct {
	Time    int
	Subject SubjectID
	Group   Group
	Value   float64 // NaN when missing
}

// Missing reports whether the value is the padding/undefined marker
func (r Record) Missing() bool { return math.IsNaN(r.Value) }

// TaggedRecord is a Record labelled with the event it falls in.
type TaggedRecord struct {
	Record
	Event string
}

// Interval is one named segment of the Time axis, [Start, End).
type Interval struct {
	Start int    `mapstructure:"start" yaml:"start"`
	End   int    `mapstructure:"end" yaml:"end"`
	Label string `mapstructure:"label" yaml:"label"`
}

// SkippedSubject records why a subject is absent from the output panel.
type SkippedSubject struct {
	Subject SubjectID
	Reason  string
	Err     error
}

// SkippedPair records a boundary pair that produced no segment.
type SkippedPair struct {
	Subject SubjectID
	Row     int
	Reason  string
}

// BaselineWarning flags a subject whose baseline window had no data.
type BaselineWarning struct {
	Subject SubjectID
	Window  Window
	Message string
}
