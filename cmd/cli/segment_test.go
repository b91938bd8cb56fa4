package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/signal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadIntervals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.yaml")
	require.NoError(t, os.WriteFile(path, []byte("events:\n  - {start: 0, end: 100, label: baseline}\n  - {start: 100, end: 300, label: A1}\n"), 0o644))

	got, err := loadIntervals(path, 100, []string{"ignored"})
	require.NoError(t, err)
	assert.Equal(t, []signal.Interval{{Start: 0, End: 100, Label: "baseline"}, {Start: 100, End: 300, Label: "A1"}}, got)

	got, err = loadIntervals("", 50, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []signal.Interval{{Start: 0, End: 50, Label: "a"}, {Start: 50, End: 100, Label: "b"}}, got)

	got, err = loadIntervals("", 50, nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = loadIntervals(filepath.Join(t.TempDir(), "missing.yaml"), 50, nil)
	assert.Error(t, err)
}
