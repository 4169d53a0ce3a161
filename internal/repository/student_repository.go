package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/phone-slot-api/internal/models"
)

// StudentRepository manages persistence for roster records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindBySlot returns every roster record assigned to the canonical slot key.
// Zero rows is a valid outcome (unassigned slot); more than one row means the
// roster carries duplicate assignments, which callers surface but tolerate.
func (r *StudentRepository) FindBySlot(ctx context.Context, slotID string) ([]models.Student, error) {
	const query = `SELECT student_id, full_name, grade, qr_id, slot_id FROM students WHERE slot_id = $1 ORDER BY student_id`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, slotID); err != nil {
		return nil, fmt.Errorf("find students by slot: %w", err)
	}
	return students, nil
}

// FindByQR resolves a scan token to its roster record. Returns nil when the
// token is unknown.
func (r *StudentRepository) FindByQR(ctx context.Context, qrID string) (*models.Student, error) {
	const query = `SELECT student_id, full_name, grade, qr_id, slot_id FROM students WHERE qr_id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, qrID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find student by qr: %w", err)
	}
	return &student, nil
}

// Upsert writes one roster record keyed by its external student id.
func (r *StudentRepository) Upsert(ctx context.Context, student *models.Student) error {
	const query = `INSERT INTO students (student_id, full_name, grade, qr_id, slot_id)
        VALUES (:student_id, :full_name, :grade, :qr_id, :slot_id)
        ON CONFLICT (student_id) DO UPDATE SET
            full_name = EXCLUDED.full_name,
            grade = EXCLUDED.grade,
            qr_id = EXCLUDED.qr_id,
            slot_id = EXCLUDED.slot_id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("upsert student: %w", err)
	}
	return nil
}

// ListAssigned returns roster records that have a slot, ordered by slot key.
func (r *StudentRepository) ListAssigned(ctx context.Context, grade int) ([]models.Student, error) {
	query := `SELECT student_id, full_name, grade, qr_id, slot_id FROM students WHERE slot_id <> '' ORDER BY slot_id`
	args := []interface{}{}
	if grade > 0 {
		query = `SELECT student_id, full_name, grade, qr_id, slot_id FROM students WHERE slot_id <> '' AND grade = $1 ORDER BY slot_id`
		args = append(args, grade)
	}
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list assigned students: %w", err)
	}
	return students, nil
}
