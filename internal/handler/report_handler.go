package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/phone-slot-api/internal/dto"
	"github.com/noah-isme/phone-slot-api/internal/middleware"
	"github.com/noah-isme/phone-slot-api/internal/models"
	"github.com/noah-isme/phone-slot-api/internal/service"
	appErrors "github.com/noah-isme/phone-slot-api/pkg/errors"
	"github.com/noah-isme/phone-slot-api/pkg/response"
)

// ReportHandler wires HTTP endpoints to the report service.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler creates a new handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// Preview formats the current sweep without submitting it.
func (h *ReportHandler) Preview(c *gin.Context) {
	text, err := h.service.Preview(c.Request.Context(), middleware.SessionID(c), c.Query("staffName"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.PreviewResponse{Text: text})
}

// Submit persists the current sweep as a daily report and applies counter
// increments. An Idempotency-Key header makes retries safe.
func (h *ReportHandler) Submit(c *gin.Context) {
	var req dto.SubmitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report payload"))
		return
	}

	result, err := h.service.Submit(c.Request.Context(), middleware.SessionID(c), service.SubmitInput{
		StaffName:      req.StaffName,
		RecipientEmail: req.RecipientEmail,
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	if result.Replayed {
		response.JSON(c, http.StatusOK, result)
		return
	}
	response.Created(c, result)
}

// ListByDate returns every submission for one calendar day.
func (h *ReportHandler) ListByDate(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date query parameter is required"))
		return
	}

	reports, err := h.service.ListByDate(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	if reports == nil {
		reports = []models.Report{}
	}
	response.JSON(c, http.StatusOK, reports, map[string]interface{}{"date": date, "total": len(reports)})
}
