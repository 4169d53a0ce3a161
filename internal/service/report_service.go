package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/phone-slot-api/internal/models"
	appErrors "github.com/noah-isme/phone-slot-api/pkg/errors"
	"github.com/noah-isme/phone-slot-api/pkg/jobs"
)

// EmptySweepMessage is returned by the formatter when nothing is unaccounted.
const EmptySweepMessage = "All phones accounted for."

// ReportStore persists daily report rows.
type ReportStore interface {
	Insert(ctx context.Context, report *models.Report) error
	ListByDate(ctx context.Context, date string) ([]models.Report, error)
}

// CounterWriter applies counter upserts.
type CounterWriter interface {
	UpsertBatch(ctx context.Context, deltas []models.CounterDelta) error
}

// ChangeNotifier signals analytics mutations to live subscribers.
type ChangeNotifier interface {
	Publish(ctx context.Context) error
}

// SubmissionMemory replays idempotent submissions.
type SubmissionMemory interface {
	RememberSubmission(ctx context.Context, session, key, reportID string) error
	RecallSubmission(ctx context.Context, session, key string) (string, error)
}

// MailEnqueuer hands report emails to the background dispatcher.
type MailEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// ReportMailJob is the payload queued for asynchronous report emails.
type ReportMailJob struct {
	Recipient string
	StaffName string
	Date      string
	Entries   []models.ReportEntry
	Total     int
}

// SubmitInput carries one submission request.
type SubmitInput struct {
	StaffName      string
	RecipientEmail string
	IdempotencyKey string
}

// SubmitResult reports the outcome of a submission.
type SubmitResult struct {
	ReportID string `json:"reportId"`
	Date     string `json:"date"`
	Total    int    `json:"total"`
	Absent   int    `json:"absent"`
	Late     int    `json:"late"`
	Replayed bool   `json:"replayed,omitempty"`
}

// ReportService renders the sweep report and performs the compliance
// submission: one immutable report row plus one atomic batch of counter
// upserts.
type ReportService struct {
	sweep    *SweepService
	reports  ReportStore
	counters CounterWriter
	cache    *CacheService
	feed     ChangeNotifier
	memory   SubmissionMemory
	mailer   MailEnqueuer
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewReportService constructs a report service.
func NewReportService(sweep *SweepService, reports ReportStore, counters CounterWriter,
	cache *CacheService, feed ChangeNotifier, memory SubmissionMemory,
	mailer MailEnqueuer, metrics *MetricsService, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		sweep:    sweep,
		reports:  reports,
		counters: counters,
		cache:    cache,
		feed:     feed,
		memory:   memory,
		mailer:   mailer,
		metrics:  metrics,
		logger:   logger,
	}
}

// Format renders the entry list as the human-readable report text. Entries
// are listed oldest-added first inside each section.
func Format(entries []models.SweepEntry, staffName string, now time.Time) string {
	if len(entries) == 0 {
		return EmptySweepMessage
	}

	absent, late := partition(entries)

	var b strings.Builder
	b.WriteString("Phone Collection Report - ")
	b.WriteString(now.Format("2006-01-02 15:04"))
	if staffName != "" {
		b.WriteString(" - ")
		b.WriteString(staffName)
	}
	b.WriteString("\n\n")

	writeSection(&b, "ABSENT", absent)
	if len(late) > 0 {
		b.WriteString("\n")
		writeSection(&b, "LATE", late)
	}

	b.WriteString(fmt.Sprintf("\nTotal: %d\n", len(entries)))
	return b.String()
}

func writeSection(b *strings.Builder, label string, entries []models.SweepEntry) {
	b.WriteString(fmt.Sprintf("%s (%d)\n", label, len(entries)))
	// The list is newest-first; walk it backwards so the section reads in
	// scan order.
	line := 1
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		b.WriteString(fmt.Sprintf("  %d. %s - %s", line, e.SlotID, e.FullName))
		if e.Grade != nil {
			b.WriteString(fmt.Sprintf(" (Grade %d)", *e.Grade))
		}
		b.WriteString("\n")
		line++
	}
}

func partition(entries []models.SweepEntry) (absent, late []models.SweepEntry) {
	for _, e := range entries {
		if e.Status == models.StatusLate {
			late = append(late, e)
		} else {
			absent = append(absent, e)
		}
	}
	return absent, late
}

// Preview formats the session's current list without submitting it.
func (s *ReportService) Preview(ctx context.Context, session, staffName string) (string, error) {
	entries, err := s.sweep.List(ctx, session)
	if err != nil {
		return "", err
	}
	return Format(entries, staffName, time.Now()), nil
}

// Submit persists the current sweep as one new daily report row and applies
// all counter increments as a single atomic batch. The two writes are
// deliberately independent: a failed counter batch leaves the already-written
// report in place for audit. On success the sweep list is cleared, the
// analytics cache invalidated and live subscribers notified.
func (s *ReportService) Submit(ctx context.Context, session string, in SubmitInput) (*SubmitResult, error) {
	if in.IdempotencyKey != "" && s.memory != nil {
		replayed, err := s.memory.RecallSubmission(ctx, session, in.IdempotencyKey)
		if err != nil {
			s.logger.Warn("idempotency recall failed", zap.Error(err))
		} else if replayed != "" {
			return &SubmitResult{ReportID: replayed, Replayed: true}, nil
		}
	}

	entries, err := s.sweep.List(ctx, session)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrSubmission.Code, appErrors.ErrSubmission.Status, appErrors.ErrSubmission.Message)
	}
	if len(entries) == 0 {
		return nil, appErrors.ErrEmptySweep
	}

	absent, late := partition(entries)
	date := time.Now().Format(models.DateLayout)

	report := &models.Report{
		ID:         uuid.NewString(),
		ReportDate: date,
		Total:      len(entries),
		Absent:     models.SnapshotEntries(absent),
		Late:       models.SnapshotEntries(late),
	}
	if in.StaffName != "" {
		staff := in.StaffName
		report.StaffName = &staff
	}

	if err := s.reports.Insert(ctx, report); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrSubmission.Code, appErrors.ErrSubmission.Status, appErrors.ErrSubmission.Message)
	}

	deltas := make([]models.CounterDelta, 0, len(entries))
	for _, e := range entries {
		deltas = append(deltas, models.DeltaForEntry(e))
	}
	if err := s.counters.UpsertBatch(ctx, deltas); err != nil {
		// The report row above is already committed; surfacing the error lets
		// the operator retry while keeping the audit record.
		s.logger.Error("counter batch failed after report write",
			zap.String("report_id", report.ID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrSubmission.Code, appErrors.ErrSubmission.Status, appErrors.ErrSubmission.Message)
	}

	if err := s.sweep.Clear(ctx, session); err != nil {
		s.logger.Warn("failed to clear sweep after submission", zap.Error(err))
	}
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, "analytics:*")
	}
	if s.feed != nil {
		if err := s.feed.Publish(ctx); err != nil {
			s.logger.Warn("failed to publish analytics change", zap.Error(err))
		}
	}
	s.metrics.RecordSubmission()

	if in.IdempotencyKey != "" && s.memory != nil {
		if err := s.memory.RememberSubmission(ctx, session, in.IdempotencyKey, report.ID); err != nil {
			s.logger.Warn("idempotency remember failed", zap.Error(err))
		}
	}

	if in.RecipientEmail != "" && s.mailer != nil {
		combined := make([]models.ReportEntry, 0, len(entries))
		combined = append(combined, report.Absent...)
		combined = append(combined, report.Late...)
		job := jobs.Job{
			ID:   report.ID,
			Type: "report_email",
			Payload: ReportMailJob{
				Recipient: in.RecipientEmail,
				StaffName: in.StaffName,
				Date:      date,
				Entries:   combined,
				Total:     report.Total,
			},
		}
		if err := s.mailer.Enqueue(job); err != nil {
			s.logger.Warn("failed to enqueue report email", zap.Error(err))
		}
	}

	return &SubmitResult{
		ReportID: report.ID,
		Date:     date,
		Total:    report.Total,
		Absent:   len(report.Absent),
		Late:     len(report.Late),
	}, nil
}

// ListByDate returns the audit trail of submissions for one calendar day.
func (s *ReportService) ListByDate(ctx context.Context, date string) ([]models.Report, error) {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD")
	}
	return s.reports.ListByDate(ctx, date)
}
