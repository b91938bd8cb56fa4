package migration

import (
	"context"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.1.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createPanelRunsTable(ctx, db); err != nil {
		return errors.Database("create panel_runs table", err)
	}

	if err := r.createPanelValuesTable(ctx, db); err != nil {
		return errors.Database("create panel_values table", err)
	}

	if err := r.createSkippedSubjectsTable(ctx, db); err != nil {
		return errors.Database("create skipped_subjects table", err)
	}

	if err := r.createEventComparisonsTable(ctx, db); err != nil {
		return errors.Database("create event_comparisons table", err)
	}

	if err := r.addPanelRunsColumns(ctx, db); err != nil {
		return errors.Database("add panel_runs columns", err)
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Database("create indexes", err)
	}

	return nil
}

func (r *MigrationRunner) createPanelRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS panel_runs (
			run_id TEXT PRIMARY KEY,
			command VARCHAR(50) NOT NULL,
			config_hash VARCHAR(64) NOT NULL,
			points_per_segment INTEGER NOT NULL,
			baseline_lo INTEGER NOT NULL,
			baseline_hi INTEGER NOT NULL,
			included_count INTEGER NOT NULL DEFAULT 0,
			skipped_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createPanelValuesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS panel_values (
			run_id TEXT NOT NULL REFERENCES panel_runs(run_id) ON DELETE CASCADE,
			subject VARCHAR(64) NOT NULL,
			time_index INTEGER NOT NULL,
			group_name VARCHAR(16) NOT NULL,
			event VARCHAR(64) NOT NULL DEFAULT '',
			value DOUBLE PRECISION,
			PRIMARY KEY (run_id, subject, time_index)
		)
	`)
	return err
}

func (r *MigrationRunner) createSkippedSubjectsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS skipped_subjects (
			run_id TEXT NOT NULL REFERENCES panel_runs(run_id) ON DELETE CASCADE,
			subject VARCHAR(64) NOT NULL,
			reason TEXT NOT NULL,
			detail TEXT,
			PRIMARY KEY (run_id, subject)
		)
	`)
	return err
}

func (r *MigrationRunner) createEventComparisonsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS event_comparisons (
			run_id TEXT NOT NULL REFERENCES panel_runs(run_id) ON DELETE CASCADE,
			event VARCHAR(64) NOT NULL,
			n_expert INTEGER NOT NULL,
			n_novice INTEGER NOT NULL,
			expert_mean DOUBLE PRECISION,
			novice_mean DOUBLE PRECISION,
			t_statistic DOUBLE PRECISION,
			df DOUBLE PRECISION,
			p_value DOUBLE PRECISION,
			effect_size DOUBLE PRECISION,
			signal VARCHAR(20),
			description TEXT,
			PRIMARY KEY (run_id, event)
		)
	`)
	return err
}

func (r *MigrationRunner) addPanelRunsColumns(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		DO $$
		BEGIN
			-- Add pairing column if it doesn't exist
			IF NOT EXISTS (
				SELECT 1 FROM information_schema.columns
				WHERE table_name = 'panel_runs' AND column_name = 'pairing'
			) THEN
				ALTER TABLE panel_runs ADD COLUMN pairing VARCHAR(20) NOT NULL DEFAULT 'consecutive';
			END IF;

			-- Add index_base column if it doesn't exist
			IF NOT EXISTS (
				SELECT 1 FROM information_schema.columns
				WHERE table_name = 'panel_runs' AND column_name = 'index_base'
			) THEN
				ALTER TABLE panel_runs ADD COLUMN index_base INTEGER NOT NULL DEFAULT 1;
			END IF;
		END $$;
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		// Panel runs
		"CREATE INDEX IF NOT EXISTS idx_panel_runs_config_hash ON panel_runs(config_hash)",
		"CREATE INDEX IF NOT EXISTS idx_panel_runs_created_at ON panel_runs(created_at DESC)",

		// Panel values
		"CREATE INDEX IF NOT EXISTS idx_panel_values_run_event ON panel_values(run_id, event)",
		"CREATE INDEX IF NOT EXISTS idx_panel_values_run_group ON panel_values(run_id, group_name)",

		// Comparisons
		"CREATE INDEX IF NOT EXISTS idx_event_comparisons_p ON event_comparisons(p_value)",
	}

	for _, idx := range indexes {
		if _, err := db.ExecContext(ctx, idx); err != nil {
			return err
		}
	}
	return nil
}
