package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/phone-slot-api/internal/dto"
	"github.com/noah-isme/phone-slot-api/internal/models"
	"github.com/noah-isme/phone-slot-api/internal/service"
	appErrors "github.com/noah-isme/phone-slot-api/pkg/errors"
	"github.com/noah-isme/phone-slot-api/pkg/response"
)

// MailHandler wires the standalone report-email endpoint to the mail service.
type MailHandler struct {
	service *service.MailService
}

// NewMailHandler creates a new handler.
func NewMailHandler(svc *service.MailService) *MailHandler {
	return &MailHandler{service: svc}
}

// Send mails a report for an explicit student list. Payload validation
// failures are 400, transport failures 502.
func (h *MailHandler) Send(c *gin.Context) {
	var req dto.MailReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid mail payload"))
		return
	}

	entries := make([]models.ReportEntry, 0, len(req.Students))
	for _, s := range req.Students {
		entries = append(entries, models.ReportEntry{
			StudentID: s.StudentID,
			FullName:  s.FullName,
			Grade:     s.Grade,
			SlotID:    s.SlotID,
		})
	}

	if err := h.service.SendReport(c.Request.Context(), req.Recipient, entries, req.StaffName); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"sent": true, "recipients": 1, "students": len(entries)})
}

// MethodNotAllowed rejects non-POST access to the mail endpoint.
func MethodNotAllowed(c *gin.Context) {
	response.Error(c, appErrors.New("METHOD_NOT_ALLOWED", http.StatusMethodNotAllowed, "method not allowed"))
}
