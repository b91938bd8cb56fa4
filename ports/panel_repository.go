package ports

import (
	"context"
	"time"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/core"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/run"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/signal"
)

// PanelRepository persists tagged long panels per run
type PanelRepository interface {
	SaveRun(ctx context.Context, manifest *run.RunManifest, opts signal.Options) error
	SaveRecords(ctx context.Context, runID core.RunID, records []signal.TaggedRecord) error
	LoadRecords(ctx context.Context, runID core.RunID) ([]signal.TaggedRecord, error)
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
}

// RunSummary is one row of the run listing
type RunSummary struct {
	RunID         core.RunID `db:"run_id" json:"run_id"`
	Command       string     `db:"command" json:"command"`
	ConfigHash    core.Hash  `db:"config_hash" json:"config_hash"`
	IncludedCount int        `db:"included_count" json:"included_count"`
	SkippedCount  int        `db:"skipped_count" json:"skipped_count"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}
