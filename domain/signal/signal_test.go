package signal

import (
	"errors"
	"math"
	"testing"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRosterGroupOf(t *testing.T) {
	r := Roster{ExpertPrefix: "exper", NovicePrefix: "novice"}

	assert.Equal(t, GroupExpert, r.GroupOf("exper12"))
	assert.Equal(t, GroupNovice, r.GroupOf("novice3"))
	// Anything not matching the expert prefix is a novice.
	assert.Equal(t, GroupNovice, r.GroupOf("pilot1"))
}

func TestRosterSubjectsFromCounts(t *testing.T) {
	r := Roster{ExpertPrefix: "exper", NovicePrefix: "novice", Counts: SubjectCounts{Expert: 2, Novice: 3}}

	got := r.Subjects(nil)
	assert.Equal(t, []SubjectID{"exper1", "exper2", "novice1", "novice2", "novice3"}, got)
}

func TestRosterSubjectsFromHeaders(t *testing.T) {
	r := Roster{ExpertPrefix: "E", NovicePrefix: "N"}

	got := r.Subjects([]string{"Time", "N2", "E1", "N1", "E7"})
	assert.Equal(t, []SubjectID{"E1", "E7", "N2", "N1"}, got)
}

func TestRosterSubjectsWithoutNovicePrefixKeepsOnlyExperts(t *testing.T) {
	r := Roster{ExpertPrefix: "exper"}

	got := r.Subjects([]string{"Time", "exper1", "novice1", "Speed"})
	assert.Equal(t, []SubjectID{"exper1"}, got)
}

func TestTableTrimTrailingMissing(t *testing.T) {
	nan := math.NaN()
	tbl := NewTable("boundaries", []string{"a", "b"})
	tbl.Columns["a"] = []float64{1, 5, nan, nan}
	tbl.Columns["b"] = []float64{2, 4, 9, nan}

	tbl.TrimTrailingMissing()

	assert.Len(t, tbl.Columns["a"], 3)
	assert.Len(t, tbl.Columns["b"], 3)
	assert.Equal(t, 3, tbl.Rows())
}

func TestPanelLongHasOneRowPerSubjectAndTime(t *testing.T) {
	nan := math.NaN()
	p := &Panel{
		Time:     []int{0, 1, 2},
		Subjects: []SubjectID{"exper1", "novice1"},
		Series: map[SubjectID][]float64{
			"exper1":  {0, 0.5, 1},
			"novice1": {1, 0, nan},
		},
	}

	records := p.Long(Roster{ExpertPrefix: "exper"})
	require.Len(t, records, 6)

	seen := map[SubjectID]map[int]bool{}
	for _, r := range records {
		if seen[r.Subject] == nil {
			seen[r.Subject] = map[int]bool{}
		}
		assert.False(t, seen[r.Subject][r.Time], "duplicate row %s@%d", r.Subject, r.Time)
		seen[r.Subject][r.Time] = true
	}
	assert.Equal(t, GroupExpert, records[0].Group)
	assert.Equal(t, GroupNovice, records[3].Group)
	assert.True(t, records[5].Missing())
}

func TestOptionsValidate(t *testing.T) {
	require.NoError(t, DefaultOptions().Validate())

	cases := map[string]func(o *Options){
		"points":  func(o *Options) { o.PointsPerSegment = 0 },
		"window":  func(o *Options) { o.BaselineWindow = Window{Lo: 10, Hi: 10} },
		"prefix":  func(o *Options) { o.ExpertPrefix = " " },
		"novice":  func(o *Options) { o.NovicePrefix = "" },
		"base":    func(o *Options) { o.IndexBase = 2 },
		"pairing": func(o *Options) { o.Pairing = "overlapping" },
		"workers": func(o *Options) { o.Workers = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			o := DefaultOptions()
			mutate(&o)
			err := o.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrInvalidOptions))
		})
	}
}
