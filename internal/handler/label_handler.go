package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/phone-slot-api/internal/models"
	"github.com/noah-isme/phone-slot-api/internal/service"
	"github.com/noah-isme/phone-slot-api/pkg/response"
)

// LabelHandler serves the printable slot label sheet.
type LabelHandler struct {
	service *service.LabelService
}

// NewLabelHandler creates a new handler.
func NewLabelHandler(svc *service.LabelService) *LabelHandler {
	return &LabelHandler{service: svc}
}

// Sheet renders the label sheet PDF, optionally filtered by grade.
func (h *LabelHandler) Sheet(c *gin.Context) {
	grade := 0
	if raw := c.Query("grade"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			grade = parsed
		}
	}

	payload, err := h.service.RenderSheet(c.Request.Context(), grade)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("labels-%s.pdf", time.Now().Format(models.DateLayout))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", payload)
}
