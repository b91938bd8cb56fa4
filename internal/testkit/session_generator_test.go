package testkit

import (
	"context"
	"math"
	"testing"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/adapters/excel"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/run"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/signal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionGenerator_Deterministic(t *testing.T) {
	a := NewSessionGenerator(DefaultSessionConfig()).Generate()
	b := NewSessionGenerator(DefaultSessionConfig()).Generate()

	require.Equal(t, a.Subjects, b.Subjects)
	for _, s := range a.Subjects {
		assert.Equal(t, a.Boundaries.Columns[s.String()], b.Boundaries.Columns[s.String()])
	}
}

func TestSessionGenerator_Shape(t *testing.T) {
	cfg := DefaultSessionConfig()
	session := NewSessionGenerator(cfg).Generate()

	require.Len(t, session.Subjects, cfg.Experts+cfg.Novices)
	assert.Equal(t, signal.SubjectID("exper1"), session.Subjects[0])
	assert.Equal(t, signal.SubjectID("novice1"), session.Subjects[cfg.Experts])

	for _, s := range session.Subjects {
		bounds := session.Boundaries.Columns[s.String()]
		require.Len(t, bounds, cfg.Segments+1)
		for k := 1; k < len(bounds); k++ {
			span := int(bounds[k]-bounds[k-1]) + 1
			assert.GreaterOrEqual(t, span, cfg.MinSegmentLen)
			assert.LessOrEqual(t, span, cfg.MaxSegmentLen)
		}
		values := session.Signals.Columns[s.String()]
		last := int(bounds[len(bounds)-1]) - cfg.IndexBase
		require.Greater(t, len(values), last)
		assert.False(t, math.IsNaN(values[last]))
	}
}

func TestSession_WriteCSV(t *testing.T) {
	session := NewSessionGenerator(DefaultSessionConfig()).Generate()
	sigPath, boundPath, err := session.WriteCSV(t.TempDir())
	require.NoError(t, err)

	loader := excel.NewTableLoader(excel.DefaultExcelConfig())
	signals, err := loader.LoadTable(sigPath)
	require.NoError(t, err)
	bounds, err := loader.LoadTable(boundPath)
	require.NoError(t, err)

	assert.Equal(t, session.Signals.Headers, signals.Headers)
	assert.Equal(t, session.Boundaries.Columns["exper1"], bounds.Columns["exper1"])
}

func TestInMemoryPanelRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryPanelRepository()

	m := run.NewRunManifest("segment", run.OptionParams(signal.DefaultOptions()))
	require.NoError(t, repo.SaveRun(ctx, m, signal.DefaultOptions()))
	assert.Error(t, repo.SaveRun(ctx, m, signal.DefaultOptions()), "duplicate run")

	records := []signal.TaggedRecord{{Record: signal.Record{Subject: "exper1", Value: 1}, Event: "A1"}}
	require.NoError(t, repo.SaveRecords(ctx, m.RunID, records))

	got, err := repo.LoadRecords(ctx, m.RunID)
	require.NoError(t, err)
	assert.Equal(t, records, got)

	runs, err := repo.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, m.RunID, runs[0].RunID)

	_, err = repo.LoadRecords(ctx, "missing")
	assert.Error(t, err)
}
