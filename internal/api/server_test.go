package api

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/run"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/signal"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/internal/testkit"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, dir string) *run.RunManifest {
	t.Helper()
	m := run.NewRunManifest("segment", run.OptionParams(signal.DefaultOptions()))
	m.AddInput("EDA.csv")
	m.RecordSubjects([]signal.SubjectID{"exper1", "novice1"}, nil)
	_, err := m.WriteFile(dir)
	require.NoError(t, err)
	return m
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServer_RunsFromManifests(t *testing.T) {
	dir := t.TempDir()
	m := writeManifest(t, dir)
	s := NewServer(dir, nil, nil)

	rec := get(t, s, "/runs")
	require.Equal(t, http.StatusOK, rec.Code)
	var runs []ports.RunSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, m.RunID, runs[0].RunID)
	assert.Equal(t, 2, runs[0].IncludedCount)

	rec = get(t, s, "/runs/"+m.RunID.String())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "EDA.csv")

	assert.Equal(t, http.StatusNotFound, get(t, s, "/runs/nope").Code)
	assert.Equal(t, http.StatusNotFound, get(t, s, "/runs/nope/records").Code)
}

func TestServer_Files(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "panel-long.csv"), []byte("Time,Subject\n"), 0o644))
	s := NewServer(dir, nil, nil)

	rec := get(t, s, "/files/panel-long.csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Time,Subject\n", rec.Body.String())
	assert.Equal(t, http.StatusOK, get(t, s, "/health").Code)
}

func TestServer_RecordsFromRepository(t *testing.T) {
	repo := testkit.NewInMemoryPanelRepository()
	m := run.NewRunManifest("segment", nil)
	m.AddInput("EDA.csv")
	ctx := context.Background()
	require.NoError(t, repo.SaveRun(ctx, m, signal.DefaultOptions()))
	require.NoError(t, repo.SaveRecords(ctx, m.RunID, []signal.TaggedRecord{
		{Record: signal.Record{Time: 0, Subject: "exper1", Group: signal.GroupExpert, Value: 0.25}, Event: "A1"},
		{Record: signal.Record{Time: 1, Subject: "exper1", Group: signal.GroupExpert, Value: math.NaN()}, Event: "A1"},
	}))

	s := NewServer(t.TempDir(), repo, nil)
	rec := get(t, s, "/runs/"+m.RunID.String()+"/records")
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, 0.25, rows[0]["value"])
	assert.Nil(t, rows[1]["value"])

	rec = get(t, s, "/runs")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), m.RunID.String())

	assert.Equal(t, http.StatusNotFound, get(t, s, "/runs/unknown/records").Code)
}
