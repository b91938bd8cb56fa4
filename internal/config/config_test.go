package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/signal"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, signal.DefaultOptions(), cfg.Segment)
	assert.Equal(t, 320, cfg.Physio.Window)
	assert.Equal(t, 288, cfg.Physio.Overlap)
	assert.Equal(t, 64.0, cfg.Physio.SamplingRate)
	assert.Equal(t, 1920.0, cfg.Gaze.Width)
	assert.Equal(t, "Gaze point X", cfg.Gaze.XColumn)
	assert.Equal(t, "speed_mps", cfg.CAN.SpeedColumn)
	assert.Len(t, cfg.Physio.Subjects, 3)
	assert.True(t, cfg.Output.HasFormat("parquet"))
	assert.False(t, cfg.Output.HasFormat("xlsx"))
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "edd.yaml")
	content := `
segment:
  points_per_segment: 50
  pairing: disjoint
  index_base: 0
  baseline_window:
    lo: 0
    hi: 25
events:
  labels: [A1, B1]
  width: 50
output:
  formats: [csv, xlsx]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("EDD_SEGMENT_WORKERS", "2")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Segment.PointsPerSegment)
	assert.Equal(t, signal.PairDisjoint, cfg.Segment.Pairing)
	assert.Equal(t, 0, cfg.Segment.IndexBase)
	assert.Equal(t, signal.Window{Lo: 0, Hi: 25}, cfg.Segment.BaselineWindow)
	assert.Equal(t, 2, cfg.Segment.Workers)
	assert.Equal(t, []string{"A1", "B1"}, cfg.Events.Labels)
	assert.True(t, cfg.Output.HasFormat("xlsx"))
	assert.Equal(t, "exper", cfg.Segment.ExpertPrefix, "unset keys keep defaults")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())
	base, err := Load("")
	require.NoError(t, err)

	cases := map[string]func(c *Config){
		"points":        func(c *Config) { c.Segment.PointsPerSegment = 0 },
		"overlap":       func(c *Config) { c.Physio.Overlap = c.Physio.Window },
		"screen":        func(c *Config) { c.Gaze.Height = 0 },
		"database":      func(c *Config) { c.Database.Enabled = true },
		"format":        func(c *Config) { c.Output.Formats = []string{"feather"} },
		"chart":         func(c *Config) { c.Output.Charts = []string{"svg"} },
		"events width":  func(c *Config) { c.Events.Labels = []string{"A1"}; c.Events.Width = 0 },
		"sampling rate": func(c *Config) { c.Physio.SamplingRate = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := *base
			mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
