package testkit

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/core"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/run"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/signal"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/internal/errors"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/ports"
)

// InMemoryPanelRepository implements PanelRepository with in-memory storage
type InMemoryPanelRepository struct {
	runs    map[core.RunID]ports.RunSummary
	records map[core.RunID][]signal.TaggedRecord
	mu      sync.RWMutex
}

var _ ports.PanelRepository = (*InMemoryPanelRepository)(nil)

func NewInMemoryPanelRepository() *InMemoryPanelRepository {
	return &InMemoryPanelRepository{
		runs:    make(map[core.RunID]ports.RunSummary),
		records: make(map[core.RunID][]signal.TaggedRecord),
	}
}

func (s *InMemoryPanelRepository) SaveRun(ctx context.Context, manifest *run.RunManifest, opts signal.Options) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[manifest.RunID]; exists {
		return errors.Database("create panel run", fmt.Errorf("run %s already exists", manifest.RunID))
	}
	s.runs[manifest.RunID] = ports.RunSummary{
		RunID:         manifest.RunID,
		Command:       manifest.Command,
		ConfigHash:    manifest.ConfigHash,
		IncludedCount: len(manifest.Included),
		SkippedCount:  len(manifest.Skipped),
		CreatedAt:     manifest.CreatedAt,
	}
	return nil
}

func (s *InMemoryPanelRepository) SaveRecords(ctx context.Context, runID core.RunID, records []signal.TaggedRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[runID]; !exists {
		return errors.NotFound("panel run " + runID.String())
	}
	s.records[runID] = append(s.records[runID], records...)
	return nil
}

func (s *InMemoryPanelRepository) LoadRecords(ctx context.Context, runID core.RunID) ([]signal.TaggedRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, ok := s.records[runID]
	if !ok {
		return nil, errors.NotFound("panel run " + runID.String())
	}
	out := make([]signal.TaggedRecord, len(records))
	copy(out, records)
	return out, nil
}

func (s *InMemoryPanelRepository) ListRuns(ctx context.Context, limit int) ([]ports.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]ports.RunSummary, 0, len(s.runs))
	for _, r := range s.runs {
		runs = append(runs, r)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].CreatedAt.After(runs[j].CreatedAt) })
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
