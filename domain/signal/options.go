package signal

import (
	"fmt"
	"strings"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/core"
)

// PairingMode controls how boundary rows are grouped into segments.
type PairingMode string

const (
	// PairConsecutive pairs rows (0,1), (1,2), ... so adjacent segments share
	// their boundary sample.
	PairConsecutive PairingMode = "consecutive"
	// PairDisjoint pairs rows (0,1), (2,3), ... as explicit start/end rows.
	PairDisjoint PairingMode = "disjoint"
)

// SubjectCounts fixes the roster size per group. Zero means discover
// subjects from the table headers.
type SubjectCounts struct {
	Expert int `mapstructure:"expert" yaml:"expert"`
	Novice int `mapstructure:"novice" yaml:"novice"`
}

// Options parameterizes the resample/baseline/tag procedure.
type Options struct {
	PointsPerSegment int           `mapstructure:"points_per_segment" yaml:"points_per_segment"`
	BaselineWindow   Window        `mapstructure:"baseline_window" yaml:"baseline_window"`
	ExpertPrefix     string        `mapstructure:"expert_prefix" yaml:"expert_prefix"`
	NovicePrefix     string        `mapstructure:"novice_prefix" yaml:"novice_prefix"`
	SubjectCounts    SubjectCounts `mapstructure:"subject_counts" yaml:"subject_counts"`
	IndexBase        int           `mapstructure:"index_base" yaml:"index_base"`
	Pairing          PairingMode   `mapstructure:"pairing" yaml:"pairing"`
	Workers          int           `mapstructure:"workers" yaml:"workers"`
}

// DefaultOptions mirrors the EDA study settings.
func DefaultOptions() Options {
	return Options{
		PointsPerSegment: 100,
		BaselineWindow:   Window{Lo: 0, Hi: 100},
		ExpertPrefix:     "exper",
		NovicePrefix:     "novice",
		SubjectCounts:    SubjectCounts{Expert: 19, Novice: 20},
		IndexBase:        1,
		Pairing:          PairConsecutive,
		Workers:          4,
	}
}

// Validate checks option consistency
func (o Options) Validate() error {
	if o.PointsPerSegment < 1 {
		return core.NewOptionsError("points_per_segment", "must be at least 1")
	}
	if o.BaselineWindow.Lo < 0 || o.BaselineWindow.Hi <= o.BaselineWindow.Lo {
		return core.NewOptionsError("baseline_window",
			fmt.Sprintf("must satisfy 0 <= lo < hi, got [%d, %d)", o.BaselineWindow.Lo, o.BaselineWindow.Hi))
	}
	if strings.TrimSpace(o.ExpertPrefix) == "" {
		return core.NewOptionsError("expert_prefix", "cannot be empty")
	}
	if strings.TrimSpace(o.NovicePrefix) == "" {
		return core.NewOptionsError("novice_prefix", "cannot be empty")
	}
	if o.IndexBase != 0 && o.IndexBase != 1 {
		return core.NewOptionsError("index_base", "must be 0 or 1")
	}
	switch o.Pairing {
	case PairConsecutive, PairDisjoint, "":
	default:
		return core.NewOptionsError("pairing", fmt.Sprintf("unknown mode %q", o.Pairing))
	}
	if o.SubjectCounts.Expert < 0 || o.SubjectCounts.Novice < 0 {
		return core.NewOptionsError("subject_counts", "cannot be negative")
	}
	if o.Workers < 0 {
		return core.NewOptionsError("workers", "cannot be negative")
	}
	return nil
}
