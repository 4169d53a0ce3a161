package models

import "time"

// Counter sort keys accepted by the analytics pipeline.
const (
	SortByMissed = "missedCount"
	SortByLate   = "lateCount"
)

// CounterRow is one persisted analytics counter. missed_count and late_count
// only ever grow; the bulk reset removes rows instead of zeroing them.
type CounterRow struct {
	EntityKey    string     `db:"entity_key" json:"id"`
	StudentID    *string    `db:"student_id" json:"studentId,omitempty"`
	FullName     string     `db:"full_name" json:"fullName"`
	SlotID       string     `db:"slot_id" json:"slotId"`
	Grade        *int       `db:"grade" json:"grade,omitempty"`
	MissedCount  int        `db:"missed_count" json:"missedCount"`
	LateCount    int        `db:"late_count" json:"lateCount"`
	LastStatusAt *time.Time `db:"last_status_at" json:"lastStatusAt,omitempty"`
}

// CounterDelta is one pending upsert: identity fields to merge plus exactly
// one of the two increments set to 1.
type CounterDelta struct {
	EntityKey   string
	StudentID   *string
	FullName    string
	SlotID      string
	Grade       *int
	MissedDelta int
	LateDelta   int
}

// DeltaForEntry maps a sweep entry to its counter delta by status.
func DeltaForEntry(e SweepEntry) CounterDelta {
	d := CounterDelta{
		EntityKey: e.EntityKey(),
		StudentID: e.StudentID,
		FullName:  e.FullName,
		SlotID:    e.SlotID,
		Grade:     e.Grade,
	}
	if e.Status == StatusLate {
		d.LateDelta = 1
	} else {
		d.MissedDelta = 1
	}
	return d
}

// AnalyticsQuery carries the shared filter/sort/limit pipeline parameters.
// Grade nil means "all"; Limit <= 0 means no truncation.
type AnalyticsQuery struct {
	Grade   *int
	Search  string
	SortKey string
	Limit   int
}
