package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/phone-slot-api/internal/models"
	appErrors "github.com/noah-isme/phone-slot-api/pkg/errors"
)

type sweepStoreStub struct {
	lists map[string][]models.SweepEntry
}

func newSweepStoreStub() *sweepStoreStub {
	return &sweepStoreStub{lists: map[string][]models.SweepEntry{}}
}

func (s *sweepStoreStub) Get(ctx context.Context, session string) ([]models.SweepEntry, error) {
	return s.lists[session], nil
}

func (s *sweepStoreStub) Save(ctx context.Context, session string, entries []models.SweepEntry) error {
	s.lists[session] = entries
	return nil
}

func (s *sweepStoreStub) Delete(ctx context.Context, session string) error {
	delete(s.lists, session)
	return nil
}

type studentReaderStub struct {
	bySlot map[string][]models.Student
	byQR   map[string]*models.Student
	err    error
}

func (s *studentReaderStub) FindBySlot(ctx context.Context, slotID string) ([]models.Student, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.bySlot[slotID], nil
}

func (s *studentReaderStub) FindByQR(ctx context.Context, qrID string) (*models.Student, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.byQR[qrID], nil
}

func newSweepFixture(students *studentReaderStub) (*SweepService, *sweepStoreStub) {
	store := newSweepStoreStub()
	roster := NewRosterService(students, nil)
	return NewSweepService(store, roster, nil), store
}

func TestSweepAddBySlotResolvesStudent(t *testing.T) {
	svc, _ := newSweepFixture(&studentReaderStub{bySlot: map[string][]models.Student{
		"A1": {{StudentID: "s-1", FullName: "Dana Reyes", Grade: 9, SlotID: "A1"}},
	}})

	entries, err := svc.AddBySlot(context.Background(), "dev", " a1 ")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "s-1", entries[0].ID)
	assert.Equal(t, "A1", entries[0].SlotID)
	assert.Equal(t, models.StatusAbsent, entries[0].Status)
}

func TestSweepAddBySlotUnassigned(t *testing.T) {
	svc, _ := newSweepFixture(&studentReaderStub{})

	entries, err := svc.AddBySlot(context.Background(), "dev", "B7")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.UnassignedName, entries[0].FullName)
	assert.Equal(t, "missing:B7", entries[0].ID)
	assert.Nil(t, entries[0].StudentID)
}

func TestSweepAddBySlotRejectsInvalidLabel(t *testing.T) {
	svc, _ := newSweepFixture(&studentReaderStub{})

	_, err := svc.AddBySlot(context.Background(), "dev", "Z99")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrInvalidSlot)
}

func TestSweepAddBySlotRejectsDuplicate(t *testing.T) {
	svc, _ := newSweepFixture(&studentReaderStub{})

	_, err := svc.AddBySlot(context.Background(), "dev", "C3")
	require.NoError(t, err)

	_, err = svc.AddBySlot(context.Background(), "dev", "c3")
	assert.ErrorIs(t, err, appErrors.ErrDuplicateSlot)
}

func TestSweepAddBySlotPrependsNewest(t *testing.T) {
	svc, _ := newSweepFixture(&studentReaderStub{})

	_, err := svc.AddBySlot(context.Background(), "dev", "A1")
	require.NoError(t, err)
	entries, err := svc.AddBySlot(context.Background(), "dev", "A2")
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "A2", entries[0].SlotID)
	assert.Equal(t, "A1", entries[1].SlotID)
}

func TestSweepAddBySlotDuplicateRoster(t *testing.T) {
	svc, _ := newSweepFixture(&studentReaderStub{bySlot: map[string][]models.Student{
		"D4": {
			{StudentID: "s-1", FullName: "Dana Reyes", Grade: 9, SlotID: "D4"},
			{StudentID: "s-2", FullName: "Eli Ward", Grade: 10, SlotID: "D4"},
		},
	}})

	entries, err := svc.AddBySlot(context.Background(), "dev", "D4")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSweepAddByQR(t *testing.T) {
	svc, _ := newSweepFixture(&studentReaderStub{byQR: map[string]*models.Student{
		"qr-1": {StudentID: "s-1", FullName: "Dana Reyes", Grade: 9, QRID: "qr-1", SlotID: "A1"},
	}})

	entries, err := svc.AddByQR(context.Background(), "dev", "qr-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "s-1", entries[0].ID)

	_, err = svc.AddByQR(context.Background(), "dev", "qr-1")
	assert.ErrorIs(t, err, appErrors.ErrDuplicateSlot)
}

func TestSweepAddByQRUnknownToken(t *testing.T) {
	svc, _ := newSweepFixture(&studentReaderStub{})

	_, err := svc.AddByQR(context.Background(), "dev", "qr-missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestSweepRemoveIsIdempotent(t *testing.T) {
	svc, _ := newSweepFixture(&studentReaderStub{})

	_, err := svc.AddBySlot(context.Background(), "dev", "A1")
	require.NoError(t, err)

	entries, err := svc.Remove(context.Background(), "dev", "missing:A1")
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = svc.Remove(context.Background(), "dev", "missing:A1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSweepToggleLate(t *testing.T) {
	svc, _ := newSweepFixture(&studentReaderStub{})

	_, err := svc.AddBySlot(context.Background(), "dev", "A1")
	require.NoError(t, err)

	entries, err := svc.ToggleLate(context.Background(), "dev", "missing:A1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusLate, entries[0].Status)

	entries, err = svc.ToggleLate(context.Background(), "dev", "missing:A1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAbsent, entries[0].Status)

	// Unknown ids are a no-op.
	entries, err = svc.ToggleLate(context.Background(), "dev", "nope")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAbsent, entries[0].Status)
}

func TestSweepSessionsAreIsolated(t *testing.T) {
	svc, _ := newSweepFixture(&studentReaderStub{})

	_, err := svc.AddBySlot(context.Background(), "session-a", "A1")
	require.NoError(t, err)

	entries, err := svc.List(context.Background(), "session-b")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSweepAddBySlotStoreError(t *testing.T) {
	svc, _ := newSweepFixture(&studentReaderStub{err: errors.New("db down")})

	_, err := svc.AddBySlot(context.Background(), "dev", "A1")
	require.Error(t, err)
}
