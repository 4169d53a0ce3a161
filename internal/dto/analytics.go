package dto

import "github.com/noah-isme/phone-slot-api/internal/models"

// AnalyticsResponse returns counter rows plus query metadata.
type AnalyticsResponse struct {
	Rows  []models.CounterRow `json:"rows"`
	Total int                 `json:"total"`
	Mode  string              `json:"mode"`
	From  string              `json:"from,omitempty"`
	To    string              `json:"to,omitempty"`
}

// NewAnalyticsResponse wraps rows, normalising nil to an empty slice.
func NewAnalyticsResponse(rows []models.CounterRow, mode string) AnalyticsResponse {
	if rows == nil {
		rows = []models.CounterRow{}
	}
	return AnalyticsResponse{Rows: rows, Total: len(rows), Mode: mode}
}

// ResetRequest captures POST /analytics/reset payload.
type ResetRequest struct {
	Passcode string `json:"passcode" binding:"required"`
}
