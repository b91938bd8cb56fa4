package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/adapters/stats/senses"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/core"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/run"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/signal"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/internal/errors"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/ports"

	"github.com/jmoiron/sqlx"
)

// insertBatchSize bounds the number of rows per multi-row INSERT
const insertBatchSize = 1000

// PanelRepository stores runs, long panels and group comparisons in Postgres
type PanelRepository struct {
	db *sqlx.DB
}

// NewPanelRepository creates a new panel repository
func NewPanelRepository(db *sqlx.DB) *PanelRepository {
	return &PanelRepository{db: db}
}

var _ ports.PanelRepository = (*PanelRepository)(nil)

type valueRow struct {
	RunID     string          `db:"run_id"`
	Subject   string          `db:"subject"`
	TimeIndex int             `db:"time_index"`
	GroupName string          `db:"group_name"`
	Event     string          `db:"event"`
	Value     sql.NullFloat64 `db:"value"`
}

type skippedRow struct {
	RunID   string         `db:"run_id"`
	Subject string         `db:"subject"`
	Reason  string         `db:"reason"`
	Detail  sql.NullString `db:"detail"`
}

// SaveRun inserts the run header and its skipped subjects
func (r *PanelRepository) SaveRun(ctx context.Context, manifest *run.RunManifest, opts signal.Options) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Database("begin transaction", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO panel_runs (
		run_id, command, config_hash, points_per_segment, baseline_lo, baseline_hi,
		included_count, skipped_count, pairing, index_base, created_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
	)`
	_, err = tx.ExecContext(ctx, query,
		manifest.RunID.String(), manifest.Command, manifest.ConfigHash.String(),
		opts.PointsPerSegment, opts.BaselineWindow.Lo, opts.BaselineWindow.Hi,
		len(manifest.Included), len(manifest.Skipped), string(opts.Pairing), opts.IndexBase,
		manifest.CreatedAt,
	)
	if err != nil {
		return errors.Database("create panel run", err)
	}

	if len(manifest.Skipped) > 0 {
		rows := make([]skippedRow, len(manifest.Skipped))
		for i, s := range manifest.Skipped {
			rows[i] = skippedRow{
				RunID:   manifest.RunID.String(),
				Subject: s.Subject,
				Reason:  s.Reason,
				Detail:  sql.NullString{String: s.Detail, Valid: s.Detail != ""},
			}
		}
		_, err = tx.NamedExecContext(ctx,
			`INSERT INTO skipped_subjects (run_id, subject, reason, detail)
			VALUES (:run_id, :subject, :reason, :detail)`, rows)
		if err != nil {
			return errors.Database("record skipped subjects", err)
		}
	}

	return tx.Commit()
}

// SaveRecords bulk-inserts tagged records in batches within one transaction
func (r *PanelRepository) SaveRecords(ctx context.Context, runID core.RunID, records []signal.TaggedRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Database("begin transaction", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO panel_values (run_id, subject, time_index, group_name, event, value)
		VALUES (:run_id, :subject, :time_index, :group_name, :event, :value)`

	for start := 0; start < len(records); start += insertBatchSize {
		end := min(start+insertBatchSize, len(records))
		batch := make([]valueRow, 0, end-start)
		for _, rec := range records[start:end] {
			batch = append(batch, valueRow{
				RunID:     runID.String(),
				Subject:   rec.Subject.String(),
				TimeIndex: rec.Time,
				GroupName: string(rec.Group),
				Event:     rec.Event,
				Value:     sql.NullFloat64{Float64: rec.Value, Valid: !math.IsNaN(rec.Value)},
			})
		}
		if _, err := tx.NamedExecContext(ctx, query, batch); err != nil {
			return errors.Database(fmt.Sprintf("insert panel values [%d:%d]", start, end), err)
		}
	}

	return tx.Commit()
}

// LoadRecords returns a run's records ordered subject-major, then by time
func (r *PanelRepository) LoadRecords(ctx context.Context, runID core.RunID) ([]signal.TaggedRecord, error) {
	var rows []valueRow
	err := r.db.SelectContext(ctx, &rows, `SELECT run_id, subject, time_index, group_name, event, value
		FROM panel_values
		WHERE run_id = $1
		ORDER BY subject, time_index`, runID.String())
	if err != nil {
		return nil, errors.Database("load panel values", err)
	}
	if len(rows) == 0 {
		return nil, errors.NotFound("panel run " + runID.String())
	}

	records := make([]signal.TaggedRecord, len(rows))
	for i, row := range rows {
		v := math.NaN()
		if row.Value.Valid {
			v = row.Value.Float64
		}
		records[i] = signal.TaggedRecord{
			Record: signal.Record{
				Time:    row.TimeIndex,
				Subject: signal.SubjectID(row.Subject),
				Group:   signal.Group(row.GroupName),
				Value:   v,
			},
			Event: row.Event,
		}
	}
	return records, nil
}

// ListRuns returns the most recent runs first
func (r *PanelRepository) ListRuns(ctx context.Context, limit int) ([]ports.RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	var runs []ports.RunSummary
	err := r.db.SelectContext(ctx, &runs, `SELECT run_id, command, config_hash, included_count, skipped_count, created_at
		FROM panel_runs
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Database("list panel runs", err)
	}
	return runs, nil
}

// SaveComparisons stores per-event group comparisons for a run
func (r *PanelRepository) SaveComparisons(ctx context.Context, runID core.RunID, comparisons []senses.EventComparison) error {
	query := `INSERT INTO event_comparisons (
		run_id, event, n_expert, n_novice, expert_mean, novice_mean,
		t_statistic, df, p_value, effect_size, signal, description
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
	)
	ON CONFLICT (run_id, event) DO UPDATE SET
		n_expert = EXCLUDED.n_expert,
		n_novice = EXCLUDED.n_novice,
		expert_mean = EXCLUDED.expert_mean,
		novice_mean = EXCLUDED.novice_mean,
		t_statistic = EXCLUDED.t_statistic,
		df = EXCLUDED.df,
		p_value = EXCLUDED.p_value,
		effect_size = EXCLUDED.effect_size,
		signal = EXCLUDED.signal,
		description = EXCLUDED.description`

	for _, c := range comparisons {
		_, err := r.db.ExecContext(ctx, query,
			runID.String(), c.Event, c.NExpert, c.NNovice,
			nullable(c.ExpertMean), nullable(c.NoviceMean),
			nullable(c.TStatistic), nullable(c.DF), nullable(c.PValue), nullable(c.EffectSize),
			c.Signal, c.Description,
		)
		if err != nil {
			return errors.Database("save comparison for "+c.Event, err)
		}
	}
	return nil
}

// nullable maps NaN and infinities to SQL NULL
func nullable(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: !math.IsNaN(v) && !math.IsInf(v, 0)}
}
