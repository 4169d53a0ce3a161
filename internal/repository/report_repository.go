package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/phone-slot-api/internal/models"
)

// ReportRepository persists immutable daily report rows.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

type reportRow struct {
	ID         string    `db:"id"`
	ReportDate string    `db:"report_date"`
	StaffName  *string   `db:"staff_name"`
	Total      int       `db:"total"`
	Absent     []byte    `db:"absent"`
	Late       []byte    `db:"late"`
	CreatedAt  time.Time `db:"created_at"`
}

func (row reportRow) toModel() (models.Report, error) {
	report := models.Report{
		ID:         row.ID,
		ReportDate: row.ReportDate,
		StaffName:  row.StaffName,
		Total:      row.Total,
		CreatedAt:  row.CreatedAt,
	}
	if len(row.Absent) > 0 {
		if err := json.Unmarshal(row.Absent, &report.Absent); err != nil {
			return report, fmt.Errorf("decode absent snapshot: %w", err)
		}
	}
	if len(row.Late) > 0 {
		if err := json.Unmarshal(row.Late, &report.Late); err != nil {
			return report, fmt.Errorf("decode late snapshot: %w", err)
		}
	}
	return report, nil
}

// Insert writes one new report row with a generated id and a server-assigned
// timestamp. Rows are never updated; repeated submissions on the same day
// each land as their own row.
func (r *ReportRepository) Insert(ctx context.Context, report *models.Report) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	absent, err := json.Marshal(report.Absent)
	if err != nil {
		return fmt.Errorf("encode absent snapshot: %w", err)
	}
	late, err := json.Marshal(report.Late)
	if err != nil {
		return fmt.Errorf("encode late snapshot: %w", err)
	}

	const query = `INSERT INTO reports (id, report_date, staff_name, total, absent, late, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, now()) RETURNING created_at`
	if err := r.db.QueryRowxContext(ctx, query,
		report.ID, report.ReportDate, report.StaffName, report.Total, absent, late).Scan(&report.CreatedAt); err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// ListByDate returns every submission recorded under one calendar day,
// oldest first.
func (r *ReportRepository) ListByDate(ctx context.Context, date string) ([]models.Report, error) {
	const query = `SELECT id, report_date, staff_name, total, absent, late, created_at
        FROM reports WHERE report_date = $1 ORDER BY created_at ASC`
	var rows []reportRow
	if err := r.db.SelectContext(ctx, &rows, query, date); err != nil {
		return nil, fmt.Errorf("list reports for %s: %w", date, err)
	}

	reports := make([]models.Report, 0, len(rows))
	for _, row := range rows {
		report, err := row.toModel()
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// ListIDs enumerates every report row id across all dates for the bulk reset.
func (r *ReportRepository) ListIDs(ctx context.Context) ([]string, error) {
	const query = `SELECT id FROM reports ORDER BY id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("list report ids: %w", err)
	}
	return ids, nil
}

// DeleteIDs removes one batch of report rows.
func (r *ReportRepository) DeleteIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	const query = `DELETE FROM reports WHERE id = ANY($1)`
	if _, err := r.db.ExecContext(ctx, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("delete report batch: %w", err)
	}
	return nil
}
