package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/adapters/parquet"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/adapters/postgres"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/run"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/signal"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/internal"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/internal/migration"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func main() {
	logger := internal.NewDefaultLogger()
	defer logger.Sync()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: migrate <database_url> [output_dir]")
		os.Exit(2)
	}
	databaseURL := os.Args[1]

	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		logger.Error("Failed to connect to database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	runner := migration.NewRunner()
	if err := runner.Run(ctx, db); err != nil {
		logger.Error("Migration failed: %v", err)
		os.Exit(1)
	}
	logger.Info("Schema at version %s", runner.Version())

	if len(os.Args) < 3 {
		return
	}
	imported, skipped, err := importRuns(ctx, logger, postgres.NewPanelRepository(db), os.Args[2])
	if err != nil {
		logger.Error("Import failed: %v", err)
		os.Exit(1)
	}
	logger.Info("Import complete: %d imported, %d skipped", imported, skipped)
}

// importRuns loads every manifest in dir whose outputs include a parquet
// panel and stores the run with its records. Runs already in the database
// are skipped.
func importRuns(ctx context.Context, logger *internal.Logger, repo *postgres.PanelRepository, dir string) (int, int, error) {
	files, err := filepath.Glob(filepath.Join(dir, "manifest-*.yaml"))
	if err != nil {
		return 0, 0, err
	}
	logger.Info("Found %d manifests to import", len(files))

	imported, skipped := 0, 0
	for _, file := range files {
		manifest, err := loadManifest(file)
		if err != nil {
			logger.Warn("Failed to load manifest %s: %v", file, err)
			skipped++
			continue
		}

		panelPath := parquetOutput(manifest, dir)
		if panelPath == "" {
			logger.Warn("Run %s has no parquet panel, skipping", manifest.RunID)
			skipped++
			continue
		}
		records, err := parquet.ReadFile(panelPath)
		if err != nil {
			logger.Warn("Failed to read %s: %v", panelPath, err)
			skipped++
			continue
		}

		if err := repo.SaveRun(ctx, manifest, optionsFromParams(manifest.Params)); err != nil {
			logger.Warn("Failed to save run %s: %v", manifest.RunID, err)
			skipped++
			continue
		}
		if err := repo.SaveRecords(ctx, manifest.RunID, records); err != nil {
			return imported, skipped, fmt.Errorf("run %s: %w", manifest.RunID, err)
		}

		imported++
		logger.Info("Imported run %s (%d records) from %s", manifest.RunID, len(records), filepath.Base(file))
	}
	return imported, skipped, nil
}

func loadManifest(path string) (*run.RunManifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return run.Decode(f)
}

// parquetOutput finds the run's parquet panel, relative to dir when the
// recorded path no longer resolves
func parquetOutput(m *run.RunManifest, dir string) string {
	for _, out := range m.Outputs {
		if !strings.HasSuffix(out, ".parquet") {
			continue
		}
		if _, err := os.Stat(out); err == nil {
			return out
		}
		local := filepath.Join(dir, filepath.Base(out))
		if _, err := os.Stat(local); err == nil {
			return local
		}
	}
	return ""
}

// optionsFromParams recovers the stored run parameters from a manifest
func optionsFromParams(params map[string]interface{}) signal.Options {
	opts := signal.DefaultOptions()
	opts.PointsPerSegment = intParam(params, "points_per_segment", opts.PointsPerSegment)
	opts.BaselineWindow.Lo = intParam(params, "baseline_lo", opts.BaselineWindow.Lo)
	opts.BaselineWindow.Hi = intParam(params, "baseline_hi", opts.BaselineWindow.Hi)
	opts.IndexBase = intParam(params, "index_base", opts.IndexBase)
	if p, ok := params["pairing"].(string); ok {
		opts.Pairing = signal.PairingMode(p)
	}
	return opts
}

func intParam(params map[string]interface{}, key string, fallback int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return fallback
}
