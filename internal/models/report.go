package models

import "time"

// DateLayout is the calendar-day format used to key daily reports.
const DateLayout = "2006-01-02"

// ReportEntry is the immutable snapshot of one sweep entry inside a report.
type ReportEntry struct {
	StudentID *string `json:"studentId"`
	FullName  string  `json:"fullName"`
	Grade     *int    `json:"grade"`
	SlotID    string  `json:"slotId"`
}

// EntityKey mirrors SweepEntry.EntityKey for replayed snapshots.
func (e ReportEntry) EntityKey() string {
	if e.StudentID != nil && *e.StudentID != "" {
		return *e.StudentID
	}
	return "slot:" + e.SlotID
}

// Report is one submission event. Rows are append-only: every submission
// creates a new row under its calendar date and nothing ever updates one.
type Report struct {
	ID         string        `db:"id" json:"id"`
	ReportDate string        `db:"report_date" json:"date"`
	StaffName  *string       `db:"staff_name" json:"staffName,omitempty"`
	Total      int           `db:"total" json:"total"`
	Absent     []ReportEntry `db:"-" json:"absent"`
	Late       []ReportEntry `db:"-" json:"late"`
	CreatedAt  time.Time     `db:"created_at" json:"timestamp"`
}

// SnapshotEntries converts sweep entries into report snapshots, preserving
// list order.
func SnapshotEntries(entries []SweepEntry) []ReportEntry {
	out := make([]ReportEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, ReportEntry{
			StudentID: e.StudentID,
			FullName:  e.FullName,
			Grade:     e.Grade,
			SlotID:    e.SlotID,
		})
	}
	return out
}
