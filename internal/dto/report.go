package dto

// SubmitReportRequest captures POST /reports payload.
type SubmitReportRequest struct {
	StaffName      string `json:"staffName"`
	RecipientEmail string `json:"recipientEmail"`
}

// PreviewResponse carries the formatted report text.
type PreviewResponse struct {
	Text string `json:"text"`
}

// MailReportRequest captures POST /report-email payload. Students mirror the
// snapshot shape so an external caller can mail an arbitrary list.
type MailReportRequest struct {
	Recipient string              `json:"recipientEmail"`
	StaffName string              `json:"staffName"`
	Students  []MailReportStudent `json:"students"`
}

// MailReportStudent is one student line in a mail request.
type MailReportStudent struct {
	StudentID *string `json:"studentId,omitempty"`
	FullName  string  `json:"fullName"`
	Grade     *int    `json:"grade,omitempty"`
	SlotID    string  `json:"slotId"`
}
