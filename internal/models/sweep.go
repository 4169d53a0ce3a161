package models

// SweepStatus classifies an unaccounted entry.
type SweepStatus string

const (
	StatusAbsent SweepStatus = "absent"
	StatusLate   SweepStatus = "late"
)

// UnassignedName labels entries for slots with no roster match.
const UnassignedName = "(Unassigned slot)"

// MissingIDPrefix prefixes the synthetic id used when a slot has no student.
const MissingIDPrefix = "missing:"

// SweepEntry is one unaccounted slot in the current sweep. The list lives in
// the session cache only; persisted state is written at submission time.
type SweepEntry struct {
	ID        string      `json:"id"`
	StudentID *string     `json:"studentId"`
	FullName  string      `json:"fullName"`
	Grade     *int        `json:"grade"`
	SlotID    string      `json:"slotId"`
	Status    SweepStatus `json:"status"`
}

// EntityKey returns the analytics identity for the entry: the student id when
// known, otherwise a slot-derived fallback key.
func (e SweepEntry) EntityKey() string {
	if e.StudentID != nil && *e.StudentID != "" {
		return *e.StudentID
	}
	return "slot:" + e.SlotID
}

// PlaceholderEntry builds the entry used when a slot has no roster match.
func PlaceholderEntry(slotID string) SweepEntry {
	return SweepEntry{
		ID:       MissingIDPrefix + slotID,
		FullName: UnassignedName,
		SlotID:   slotID,
		Status:   StatusAbsent,
	}
}

// EntryFromStudent builds an absent entry for a matched roster record.
func EntryFromStudent(s Student) SweepEntry {
	id := s.StudentID
	grade := s.Grade
	return SweepEntry{
		ID:        id,
		StudentID: &id,
		FullName:  s.FullName,
		Grade:     &grade,
		SlotID:    s.SlotID,
		Status:    StatusAbsent,
	}
}
