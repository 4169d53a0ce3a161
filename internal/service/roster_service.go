package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/phone-slot-api/internal/models"
)

// StudentReader describes the roster reads required by the lookup path.
type StudentReader interface {
	FindBySlot(ctx context.Context, slotID string) ([]models.Student, error)
	FindByQR(ctx context.Context, qrID string) (*models.Student, error)
}

// RosterService resolves canonical slot keys and scan tokens to sweep
// entries.
type RosterService struct {
	students StudentReader
	logger   *zap.Logger
}

// NewRosterService constructs a roster service.
func NewRosterService(students StudentReader, logger *zap.Logger) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{students: students, logger: logger}
}

// ResolveSlot maps a canonical slot key to entries. No match yields a single
// placeholder entry; multiple matches (a roster data-quality fault) are all
// returned rather than treated as a failure.
func (s *RosterService) ResolveSlot(ctx context.Context, slotID string) ([]models.SweepEntry, error) {
	students, err := s.students.FindBySlot(ctx, slotID)
	if err != nil {
		return nil, err
	}

	if len(students) == 0 {
		return []models.SweepEntry{models.PlaceholderEntry(slotID)}, nil
	}
	if len(students) > 1 {
		s.logger.Warn("duplicate roster assignment for slot",
			zap.String("slot_id", slotID), zap.Int("matches", len(students)))
	}

	entries := make([]models.SweepEntry, 0, len(students))
	for _, st := range students {
		entry := models.EntryFromStudent(st)
		entry.SlotID = slotID
		entries = append(entries, entry)
	}
	return entries, nil
}

// ResolveQR maps a scan token to its entry. Returns nil when the token is
// unknown.
func (s *RosterService) ResolveQR(ctx context.Context, qrID string) (*models.SweepEntry, error) {
	student, err := s.students.FindByQR(ctx, qrID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, nil
	}
	entry := models.EntryFromStudent(*student)
	return &entry, nil
}
