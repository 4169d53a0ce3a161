package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/phone-slot-api/internal/models"
	appErrors "github.com/noah-isme/phone-slot-api/pkg/errors"
	"github.com/noah-isme/phone-slot-api/pkg/jobs"
)

type reportStoreStub struct {
	inserted  []*models.Report
	byDate    map[string][]models.Report
	insertErr error
}

func (s *reportStoreStub) Insert(ctx context.Context, report *models.Report) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	report.CreatedAt = time.Now()
	s.inserted = append(s.inserted, report)
	return nil
}

func (s *reportStoreStub) ListByDate(ctx context.Context, date string) ([]models.Report, error) {
	return s.byDate[date], nil
}

type counterWriterStub struct {
	batches [][]models.CounterDelta
	err     error
}

func (s *counterWriterStub) UpsertBatch(ctx context.Context, deltas []models.CounterDelta) error {
	if s.err != nil {
		return s.err
	}
	s.batches = append(s.batches, deltas)
	return nil
}

type feedStub struct {
	published int
}

func (s *feedStub) Publish(ctx context.Context) error {
	s.published++
	return nil
}

type memoryStub struct {
	remembered map[string]string
}

func newMemoryStub() *memoryStub {
	return &memoryStub{remembered: map[string]string{}}
}

func (s *memoryStub) RememberSubmission(ctx context.Context, session, key, reportID string) error {
	s.remembered[session+"/"+key] = reportID
	return nil
}

func (s *memoryStub) RecallSubmission(ctx context.Context, session, key string) (string, error) {
	return s.remembered[session+"/"+key], nil
}

type enqueuerStub struct {
	jobs []jobs.Job
}

func (s *enqueuerStub) Enqueue(job jobs.Job) error {
	s.jobs = append(s.jobs, job)
	return nil
}

type reportFixture struct {
	svc      *ReportService
	sweep    *SweepService
	store    *sweepStoreStub
	reports  *reportStoreStub
	counters *counterWriterStub
	feed     *feedStub
	memory   *memoryStub
	mailer   *enqueuerStub
}

func newReportFixture(students *studentReaderStub) *reportFixture {
	store := newSweepStoreStub()
	sweep := NewSweepService(store, NewRosterService(students, nil), nil)
	reports := &reportStoreStub{byDate: map[string][]models.Report{}}
	counters := &counterWriterStub{}
	feed := &feedStub{}
	memory := newMemoryStub()
	mailer := &enqueuerStub{}
	svc := NewReportService(sweep, reports, counters, nil, feed, memory, mailer, nil, nil)
	return &reportFixture{svc: svc, sweep: sweep, store: store, reports: reports,
		counters: counters, feed: feed, memory: memory, mailer: mailer}
}

func intPtr(n int) *int { return &n }

func strPtr(s string) *string { return &s }

func TestFormatEmptyList(t *testing.T) {
	assert.Equal(t, EmptySweepMessage, Format(nil, "Ms. Cho", time.Now()))
}

func TestFormatSectionsAndOrder(t *testing.T) {
	// Newest-first list: C3 was added last.
	entries := []models.SweepEntry{
		{ID: "missing:C3", FullName: models.UnassignedName, SlotID: "C3", Status: models.StatusAbsent},
		{ID: "s-2", StudentID: strPtr("s-2"), FullName: "Eli Ward", Grade: intPtr(10), SlotID: "B2", Status: models.StatusLate},
		{ID: "s-1", StudentID: strPtr("s-1"), FullName: "Dana Reyes", Grade: intPtr(9), SlotID: "A1", Status: models.StatusAbsent},
	}
	now := time.Date(2026, 9, 1, 8, 15, 0, 0, time.UTC)

	text := Format(entries, "Ms. Cho", now)

	assert.True(t, strings.HasPrefix(text, "Phone Collection Report - 2026-09-01 08:15 - Ms. Cho"))
	assert.Contains(t, text, "ABSENT (2)")
	assert.Contains(t, text, "LATE (1)")
	assert.Contains(t, text, "1. A1 - Dana Reyes (Grade 9)")
	assert.Contains(t, text, "2. C3 - (Unassigned slot)")
	assert.Contains(t, text, "1. B2 - Eli Ward (Grade 10)")
	assert.Contains(t, text, "Total: 3")
	// Oldest-added renders first within the section.
	assert.Less(t, strings.Index(text, "A1 - Dana Reyes"), strings.Index(text, "C3 -"))
}

func TestFormatOmitsEmptyLateSection(t *testing.T) {
	entries := []models.SweepEntry{
		{ID: "missing:A1", FullName: models.UnassignedName, SlotID: "A1", Status: models.StatusAbsent},
	}
	text := Format(entries, "", time.Now())
	assert.NotContains(t, text, "LATE")
}

func TestSubmitEmptySweep(t *testing.T) {
	f := newReportFixture(&studentReaderStub{})

	_, err := f.svc.Submit(context.Background(), "dev", SubmitInput{})
	assert.ErrorIs(t, err, appErrors.ErrEmptySweep)
	assert.Empty(t, f.reports.inserted)
}

func TestSubmitPersistsReportAndCounters(t *testing.T) {
	f := newReportFixture(&studentReaderStub{bySlot: map[string][]models.Student{
		"A1": {{StudentID: "s-1", FullName: "Dana Reyes", Grade: 9, SlotID: "A1"}},
	}})

	_, err := f.sweep.AddBySlot(context.Background(), "dev", "A1")
	require.NoError(t, err)
	_, err = f.sweep.AddBySlot(context.Background(), "dev", "B2")
	require.NoError(t, err)
	_, err = f.sweep.ToggleLate(context.Background(), "dev", "missing:B2")
	require.NoError(t, err)

	result, err := f.svc.Submit(context.Background(), "dev", SubmitInput{StaffName: "Ms. Cho"})
	require.NoError(t, err)

	assert.NotEmpty(t, result.ReportID)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Absent)
	assert.Equal(t, 1, result.Late)
	assert.False(t, result.Replayed)

	require.Len(t, f.reports.inserted, 1)
	report := f.reports.inserted[0]
	assert.Equal(t, "Ms. Cho", *report.StaffName)
	assert.Equal(t, time.Now().Format(models.DateLayout), report.ReportDate)

	require.Len(t, f.counters.batches, 1)
	deltas := f.counters.batches[0]
	require.Len(t, deltas, 2)
	byKey := map[string]models.CounterDelta{}
	for _, d := range deltas {
		byKey[d.EntityKey] = d
	}
	assert.Equal(t, 0, byKey["s-1"].LateDelta)
	assert.Equal(t, 1, byKey["s-1"].MissedDelta)
	assert.Equal(t, 1, byKey["slot:B2"].LateDelta)

	// The sweep is cleared and subscribers notified.
	entries, err := f.sweep.List(context.Background(), "dev")
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, 1, f.feed.published)
}

func TestSubmitCounterFailureKeepsReport(t *testing.T) {
	f := newReportFixture(&studentReaderStub{})
	f.counters.err = errors.New("tx aborted")

	_, err := f.sweep.AddBySlot(context.Background(), "dev", "A1")
	require.NoError(t, err)

	_, err = f.svc.Submit(context.Background(), "dev", SubmitInput{})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrSubmission)

	// The report row stays for audit and the sweep is untouched.
	assert.Len(t, f.reports.inserted, 1)
	entries, listErr := f.sweep.List(context.Background(), "dev")
	require.NoError(t, listErr)
	assert.Len(t, entries, 1)
}

func TestSubmitIdempotencyReplay(t *testing.T) {
	f := newReportFixture(&studentReaderStub{})

	_, err := f.sweep.AddBySlot(context.Background(), "dev", "A1")
	require.NoError(t, err)

	first, err := f.svc.Submit(context.Background(), "dev", SubmitInput{IdempotencyKey: "key-1"})
	require.NoError(t, err)

	second, err := f.svc.Submit(context.Background(), "dev", SubmitInput{IdempotencyKey: "key-1"})
	require.NoError(t, err)

	assert.True(t, second.Replayed)
	assert.Equal(t, first.ReportID, second.ReportID)
	assert.Len(t, f.reports.inserted, 1)
}

func TestSubmitEnqueuesMail(t *testing.T) {
	f := newReportFixture(&studentReaderStub{})

	_, err := f.sweep.AddBySlot(context.Background(), "dev", "A1")
	require.NoError(t, err)

	_, err = f.svc.Submit(context.Background(), "dev", SubmitInput{
		StaffName:      "Ms. Cho",
		RecipientEmail: "dean@example.edu",
	})
	require.NoError(t, err)

	require.Len(t, f.mailer.jobs, 1)
	job := f.mailer.jobs[0]
	assert.Equal(t, "report_email", job.Type)
	payload, ok := job.Payload.(ReportMailJob)
	require.True(t, ok)
	assert.Equal(t, "dean@example.edu", payload.Recipient)
	assert.Len(t, payload.Entries, 1)
}

func TestSubmitWithoutRecipientSkipsMail(t *testing.T) {
	f := newReportFixture(&studentReaderStub{})

	_, err := f.sweep.AddBySlot(context.Background(), "dev", "A1")
	require.NoError(t, err)

	_, err = f.svc.Submit(context.Background(), "dev", SubmitInput{})
	require.NoError(t, err)
	assert.Empty(t, f.mailer.jobs)
}

func TestListByDateRejectsBadDate(t *testing.T) {
	f := newReportFixture(&studentReaderStub{})

	_, err := f.svc.ListByDate(context.Background(), "01-09-2026")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestPreviewDoesNotMutate(t *testing.T) {
	f := newReportFixture(&studentReaderStub{})

	_, err := f.sweep.AddBySlot(context.Background(), "dev", "A1")
	require.NoError(t, err)

	text, err := f.svc.Preview(context.Background(), "dev", "Ms. Cho")
	require.NoError(t, err)
	assert.Contains(t, text, "Total: 1")

	entries, err := f.sweep.List(context.Background(), "dev")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Empty(t, f.reports.inserted)
}
