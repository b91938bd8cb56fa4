package events

import (
	"errors"
	"strings"
	"testing"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/core"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/signal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTag_TotalCoverage(t *testing.T) {
	intervals := []signal.Interval{
		{Start: 0, End: 100, Label: "baseline"},
		{Start: 100, End: 150, Label: "A1"},
		{Start: 150, End: 400, Label: "space1"},
	}
	tagger, err := NewTagger(intervals)
	require.NoError(t, err)

	for tm := 0; tm < 400; tm++ {
		label, err := tagger.Tag(tm)
		require.NoError(t, err, "time %d", tm)
		switch {
		case tm < 100:
			assert.Equal(t, "baseline", label)
		case tm < 150:
			assert.Equal(t, "A1", label)
		default:
			assert.Equal(t, "space1", label)
		}
	}
}

func TestTag_SupremumBelongsToLastInterval(t *testing.T) {
	tagger, err := NewTagger(Uniform(10, "baseline", "A1"))
	require.NoError(t, err)

	label, err := tagger.Tag(20)
	require.NoError(t, err)
	assert.Equal(t, "A1", label)

	label, err = tagger.Tag(10)
	require.NoError(t, err)
	assert.Equal(t, "A1", label)
}

func TestTag_Unmapped(t *testing.T) {
	tagger, err := NewTagger([]signal.Interval{{Start: 5, End: 10, Label: "A1"}})
	require.NoError(t, err)

	for _, tm := range []int{-1, 4, 11} {
		_, err := tagger.Tag(tm)
		assert.True(t, errors.Is(err, core.ErrUnmappedTime), "time %d", tm)
	}
}

func TestNewTagger_RejectsBadTables(t *testing.T) {
	cases := map[string][]signal.Interval{
		"empty":    nil,
		"inverted": {{Start: 10, End: 5, Label: "x"}},
		"gap":      {{Start: 0, End: 5, Label: "a"}, {Start: 6, End: 9, Label: "b"}},
		"overlap":  {{Start: 0, End: 5, Label: "a"}, {Start: 4, End: 9, Label: "b"}},
	}
	for name, intervals := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewTagger(intervals)
			assert.True(t, errors.Is(err, core.ErrInvalidIntervals))
		})
	}
}

func TestTagRecords(t *testing.T) {
	tagger, err := NewTagger(Uniform(2, "baseline", "A1"))
	require.NoError(t, err)

	recs := []signal.Record{
		{Time: 0, Subject: "exper1"},
		{Time: 3, Subject: "exper1"},
		{Time: 4, Subject: "exper1"},
	}
	tagged, err := tagger.TagRecords(recs)
	require.NoError(t, err)
	assert.Equal(t, "baseline", tagged[0].Event)
	assert.Equal(t, "A1", tagged[1].Event)
	assert.Equal(t, "A1", tagged[2].Event)

	_, err = tagger.TagRecords([]signal.Record{{Time: 5, Subject: "exper1"}})
	assert.True(t, errors.Is(err, core.ErrUnmappedTime))
}

func TestCovers(t *testing.T) {
	tagger, err := NewTagger(Uniform(100, "baseline", "A1", "space1"))
	require.NoError(t, err)

	assert.True(t, tagger.Covers(300))
	assert.True(t, tagger.Covers(301))
	assert.False(t, tagger.Covers(302))
}

func TestLoadIntervals(t *testing.T) {
	doc := `
events:
  - {start: 0, end: 100, label: baseline}
  - {start: 100, end: 250, label: A1}
`
	intervals, err := LoadIntervals(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []signal.Interval{
		{Start: 0, End: 100, Label: "baseline"},
		{Start: 100, End: 250, Label: "A1"},
	}, intervals)

	_, err = LoadIntervals(strings.NewReader("events:\n  - {start: 3, end: 1, label: bad}\n"))
	assert.True(t, errors.Is(err, core.ErrInvalidIntervals))
}
