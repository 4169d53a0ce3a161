package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/phone-slot-api/internal/models"
)

// AnalyticsRepository persists per-entity running counters.
type AnalyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository instantiates the repository.
func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

const upsertCounterQuery = `INSERT INTO analytics_counters
        (entity_key, student_id, full_name, slot_id, grade, missed_count, late_count, last_status_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, now())
        ON CONFLICT (entity_key) DO UPDATE SET
            student_id = EXCLUDED.student_id,
            full_name = EXCLUDED.full_name,
            slot_id = EXCLUDED.slot_id,
            grade = EXCLUDED.grade,
            missed_count = analytics_counters.missed_count + EXCLUDED.missed_count,
            late_count = analytics_counters.late_count + EXCLUDED.late_count,
            last_status_at = now()`

// UpsertBatch applies every counter delta of one submission in a single
// transaction. Increments happen inside the database, so concurrent
// submissions from different sessions commute instead of losing updates.
func (r *AnalyticsRepository) UpsertBatch(ctx context.Context, deltas []models.CounterDelta) error {
	if len(deltas) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin counter batch: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, d := range deltas {
		if _, err := tx.ExecContext(ctx, upsertCounterQuery,
			d.EntityKey, d.StudentID, d.FullName, d.SlotID, d.Grade, d.MissedDelta, d.LateDelta); err != nil {
			return fmt.Errorf("upsert counter %s: %w", d.EntityKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit counter batch: %w", err)
	}
	return nil
}

// ListAll returns the full counter collection. No filtering happens here;
// the read path applies its pipeline after the fetch so that the live stream
// and the filtered view stay consistent.
func (r *AnalyticsRepository) ListAll(ctx context.Context) ([]models.CounterRow, error) {
	const query = `SELECT entity_key, student_id, full_name, slot_id, grade, missed_count, late_count, last_status_at
        FROM analytics_counters ORDER BY entity_key`
	var rows []models.CounterRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list counters: %w", err)
	}
	return rows, nil
}

// ListKeys enumerates every counter id for the bulk reset.
func (r *AnalyticsRepository) ListKeys(ctx context.Context) ([]string, error) {
	const query = `SELECT entity_key FROM analytics_counters ORDER BY entity_key`
	var keys []string
	if err := r.db.SelectContext(ctx, &keys, query); err != nil {
		return nil, fmt.Errorf("list counter keys: %w", err)
	}
	return keys, nil
}

// DeleteKeys removes one batch of counter rows.
func (r *AnalyticsRepository) DeleteKeys(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	const query = `DELETE FROM analytics_counters WHERE entity_key = ANY($1)`
	if _, err := r.db.ExecContext(ctx, query, pq.Array(keys)); err != nil {
		return fmt.Errorf("delete counter batch: %w", err)
	}
	return nil
}
