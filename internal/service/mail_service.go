package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/noah-isme/phone-slot-api/internal/models"
	appErrors "github.com/noah-isme/phone-slot-api/pkg/errors"
	"github.com/noah-isme/phone-slot-api/pkg/jobs"
)

// Deliberately naive recipient check; full address-grammar validation is out
// of scope.
var recipientPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// MailSender abstracts the SendGrid client for tests.
type MailSender interface {
	Send(email *sgmail.SGMailV3) (*rest.Response, error)
}

// MailConfig configures the outbound transport identity.
type MailConfig struct {
	FromName      string
	FromEmail     string
	SubjectPrefix string
}

// MailService renders and sends the compliance report email.
type MailService struct {
	sender  MailSender
	cfg     MailConfig
	metrics *MetricsService
	logger  *zap.Logger
}

// NewMailService constructs a mail service. A nil sender disables delivery;
// sends then fail with a transport error rather than silently dropping mail.
func NewMailService(sender MailSender, cfg MailConfig, metrics *MetricsService, logger *zap.Logger) *MailService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MailService{sender: sender, cfg: cfg, metrics: metrics, logger: logger}
}

// NewSendGridSender builds the production SendGrid client. Returns nil when
// no API key is configured.
func NewSendGridSender(apiKey string) MailSender {
	if apiKey == "" {
		return nil
	}
	return sendgrid.NewSendClient(apiKey)
}

// ValidRecipient reports whether the address passes the naive pattern check.
func ValidRecipient(email string) bool {
	return recipientPattern.MatchString(email)
}

// SendReport delivers the report email listing every unaccounted student.
func (s *MailService) SendReport(ctx context.Context, recipient string, entries []models.ReportEntry, staffName string) error {
	if !ValidRecipient(recipient) {
		return appErrors.Clone(appErrors.ErrValidation, "recipient email is missing or invalid")
	}
	if len(entries) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "student data is missing or empty")
	}
	if s.sender == nil {
		s.metrics.RecordMail("disabled")
		return appErrors.Clone(appErrors.ErrMailTransport, "mail transport not configured")
	}

	subject := fmt.Sprintf("%sPhone Collection Report - %s", s.cfg.SubjectPrefix, time.Now().Format("2006-01-02"))
	from := sgmail.NewEmail(s.cfg.FromName, s.cfg.FromEmail)
	to := sgmail.NewEmail("", recipient)
	message := sgmail.NewSingleEmail(from, subject, to, plainBody(entries, staffName), htmlBody(entries, staffName))

	resp, err := s.sender.Send(message)
	if err != nil {
		s.metrics.RecordMail("error")
		return appErrors.Wrap(err, appErrors.ErrMailTransport.Code, appErrors.ErrMailTransport.Status, appErrors.ErrMailTransport.Message)
	}
	if resp != nil && resp.StatusCode >= 400 {
		s.metrics.RecordMail("error")
		return appErrors.Clone(appErrors.ErrMailTransport, fmt.Sprintf("mail provider responded with status %d", resp.StatusCode))
	}

	s.metrics.RecordMail("sent")
	s.logger.Info("report email sent", zap.String("recipient", recipient), zap.Int("students", len(entries)))
	return nil
}

// JobHandler adapts SendReport to the background queue.
func (s *MailService) JobHandler() jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		payload, ok := job.Payload.(ReportMailJob)
		if !ok {
			return fmt.Errorf("unexpected mail job payload %T", job.Payload)
		}
		return s.SendReport(ctx, payload.Recipient, payload.Entries, payload.StaffName)
	}
}

func plainBody(entries []models.ReportEntry, staffName string) string {
	var b strings.Builder
	b.WriteString("The following students had empty phone cases today:\n\n")
	for _, e := range entries {
		b.WriteString("- ")
		b.WriteString(entryLine(e))
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("\nTotal: %d\n", len(entries)))
	if staffName != "" {
		b.WriteString(fmt.Sprintf("Reported by: %s\n", staffName))
	}
	return b.String()
}

func htmlBody(entries []models.ReportEntry, staffName string) string {
	var b strings.Builder
	b.WriteString("<p>The following students had empty phone cases today:</p><ul>")
	for _, e := range entries {
		b.WriteString("<li>")
		b.WriteString(entryLine(e))
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
	b.WriteString(fmt.Sprintf("<p>Total: %d</p>", len(entries)))
	if staffName != "" {
		b.WriteString(fmt.Sprintf("<p>Reported by: %s</p>", staffName))
	}
	return b.String()
}

func entryLine(e models.ReportEntry) string {
	id := "n/a"
	if e.StudentID != nil && *e.StudentID != "" {
		id = *e.StudentID
	}
	grade := "n/a"
	if e.Grade != nil {
		grade = fmt.Sprintf("%d", *e.Grade)
	}
	return fmt.Sprintf("%s (ID: %s, Grade: %s, Slot: %s)", e.FullName, id, grade, e.SlotID)
}
