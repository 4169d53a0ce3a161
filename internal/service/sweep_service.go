package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/phone-slot-api/internal/models"
	"github.com/noah-isme/phone-slot-api/internal/slot"
	appErrors "github.com/noah-isme/phone-slot-api/pkg/errors"
)

// SweepStore persists the per-session unaccounted list.
type SweepStore interface {
	Get(ctx context.Context, session string) ([]models.SweepEntry, error)
	Save(ctx context.Context, session string, entries []models.SweepEntry) error
	Delete(ctx context.Context, session string) error
}

// SweepService owns the unaccounted list for the current sweep: adds resolved
// entries, toggles status, removes entries and clears the list. Every
// mutation is saved back to the session store so a reload resumes where the
// sweep left off.
type SweepService struct {
	store  SweepStore
	roster *RosterService
	logger *zap.Logger
}

// NewSweepService constructs a sweep service.
func NewSweepService(store SweepStore, roster *RosterService, logger *zap.Logger) *SweepService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SweepService{store: store, roster: roster, logger: logger}
}

// List returns the session's current entries.
func (s *SweepService) List(ctx context.Context, session string) ([]models.SweepEntry, error) {
	return s.store.Get(ctx, session)
}

// AddBySlot normalises the raw label, rejects duplicates, resolves the slot
// against the roster and prepends the resulting entries flagged absent.
func (s *SweepService) AddBySlot(ctx context.Context, session, raw string) ([]models.SweepEntry, error) {
	key, err := slot.Normalize(raw)
	if err != nil {
		return nil, err
	}

	entries, err := s.store.Get(ctx, session)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.SlotID == key {
			return nil, appErrors.ErrDuplicateSlot
		}
	}

	resolved, err := s.roster.ResolveSlot(ctx, key)
	if err != nil {
		return nil, err
	}

	entries = append(resolved, entries...)
	if err := s.store.Save(ctx, session, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// AddByQR resolves a scan token and prepends the matched student flagged
// absent. Unknown tokens are a lookup miss, already-scanned students a
// duplicate.
func (s *SweepService) AddByQR(ctx context.Context, session, qrID string) ([]models.SweepEntry, error) {
	entry, err := s.roster.ResolveQR(ctx, qrID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "qr code not found")
	}

	entries, err := s.store.Get(ctx, session)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.ID == entry.ID || (entry.SlotID != "" && e.SlotID == entry.SlotID) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateSlot, "student already scanned")
		}
	}

	entries = append([]models.SweepEntry{*entry}, entries...)
	if err := s.store.Save(ctx, session, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Remove deletes the entry with the matching id. Removing an absent id is a
// no-op.
func (s *SweepService) Remove(ctx context.Context, session, entryID string) ([]models.SweepEntry, error) {
	entries, err := s.store.Get(ctx, session)
	if err != nil {
		return nil, err
	}

	kept := entries[:0]
	for _, e := range entries {
		if e.ID != entryID {
			kept = append(kept, e)
		}
	}
	if err := s.store.Save(ctx, session, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

// ToggleLate flips the matching entry between absent and late. Toggling an
// unknown id is a no-op.
func (s *SweepService) ToggleLate(ctx context.Context, session, entryID string) ([]models.SweepEntry, error) {
	entries, err := s.store.Get(ctx, session)
	if err != nil {
		return nil, err
	}

	for i := range entries {
		if entries[i].ID != entryID {
			continue
		}
		if entries[i].Status == models.StatusLate {
			entries[i].Status = models.StatusAbsent
		} else {
			entries[i].Status = models.StatusLate
		}
		break
	}
	if err := s.store.Save(ctx, session, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Clear empties the session's list.
func (s *SweepService) Clear(ctx context.Context, session string) error {
	return s.store.Delete(ctx, session)
}
