package dto

import "github.com/noah-isme/phone-slot-api/internal/models"

// AddSlotRequest captures POST /sweep/entries payload. Input is the raw slot
// label as typed; normalisation happens server-side.
type AddSlotRequest struct {
	Input string `json:"input" binding:"required"`
}

// ScanRequest captures POST /sweep/scan payload.
type ScanRequest struct {
	QRID string `json:"qrId" binding:"required"`
}

// SweepResponse returns the session's current unaccounted list.
type SweepResponse struct {
	Entries []models.SweepEntry `json:"entries"`
	Total   int                 `json:"total"`
}

// NewSweepResponse wraps a list, normalising nil to an empty slice.
func NewSweepResponse(entries []models.SweepEntry) SweepResponse {
	if entries == nil {
		entries = []models.SweepEntry{}
	}
	return SweepResponse{Entries: entries, Total: len(entries)}
}
