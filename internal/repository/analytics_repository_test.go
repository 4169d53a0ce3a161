package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/phone-slot-api/internal/models"
)

func TestAnalyticsRepositoryUpsertBatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAnalyticsRepository(db)
	studentID := "s-1"
	grade := 9

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO analytics_counters")).
		WithArgs("s-1", &studentID, "Dana Reyes", "A1", &grade, 1, 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO analytics_counters")).
		WithArgs("slot:C3", nil, "(Unassigned slot)", "C3", nil, 0, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpsertBatch(context.Background(), []models.CounterDelta{
		{EntityKey: "s-1", StudentID: &studentID, FullName: "Dana Reyes", SlotID: "A1", Grade: &grade, MissedDelta: 1},
		{EntityKey: "slot:C3", FullName: "(Unassigned slot)", SlotID: "C3", LateDelta: 1},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRepositoryUpsertBatchRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAnalyticsRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO analytics_counters")).
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	err := repo.UpsertBatch(context.Background(), []models.CounterDelta{
		{EntityKey: "s-1", FullName: "Dana Reyes", SlotID: "A1", MissedDelta: 1},
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRepositoryUpsertBatchEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAnalyticsRepository(db)
	require.NoError(t, repo.UpsertBatch(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRepositoryListAll(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAnalyticsRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"entity_key", "student_id", "full_name", "slot_id", "grade", "missed_count", "late_count", "last_status_at"}).
		AddRow("s-1", "s-1", "Dana Reyes", "A1", 9, 5, 1, now).
		AddRow("slot:C3", nil, "(Unassigned slot)", "C3", nil, 2, 0, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM analytics_counters ORDER BY entity_key")).
		WillReturnRows(rows)

	counters, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, counters, 2)
	require.Equal(t, 5, counters[0].MissedCount)
	require.Nil(t, counters[1].StudentID)
}

func TestAnalyticsRepositoryDeleteKeys(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAnalyticsRepository(db)
	keys := []string{"s-1", "slot:C3"}
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM analytics_counters WHERE entity_key = ANY($1)")).
		WithArgs(pq.Array(keys)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.DeleteKeys(context.Background(), keys))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRepositoryDeleteKeysEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAnalyticsRepository(db)
	require.NoError(t, repo.DeleteKeys(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}
