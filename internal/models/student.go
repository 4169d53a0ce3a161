package models

// Student is one roster record. Rows are written by the roster importer and
// read-only to the rest of the system; student_id is externally assigned.
type Student struct {
	StudentID string `db:"student_id" json:"studentId"`
	FullName  string `db:"full_name" json:"fullName"`
	Grade     int    `db:"grade" json:"grade"`
	QRID      string `db:"qr_id" json:"qrId"`
	SlotID    string `db:"slot_id" json:"slotId"`
}
