package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/phone-slot-api/internal/dto"
	"github.com/noah-isme/phone-slot-api/internal/middleware"
	"github.com/noah-isme/phone-slot-api/internal/service"
	appErrors "github.com/noah-isme/phone-slot-api/pkg/errors"
	"github.com/noah-isme/phone-slot-api/pkg/response"
)

// SweepHandler wires HTTP endpoints to the sweep service.
type SweepHandler struct {
	service *service.SweepService
}

// NewSweepHandler creates a new handler.
func NewSweepHandler(svc *service.SweepService) *SweepHandler {
	return &SweepHandler{service: svc}
}

// List returns the session's current unaccounted list.
func (h *SweepHandler) List(c *gin.Context) {
	entries, err := h.service.List(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewSweepResponse(entries))
}

// AddSlot adds a raw slot label to the list.
func (h *SweepHandler) AddSlot(c *gin.Context) {
	var req dto.AddSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot payload"))
		return
	}

	entries, err := h.service.AddBySlot(c.Request.Context(), middleware.SessionID(c), req.Input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewSweepResponse(entries))
}

// Scan adds a student by QR token.
func (h *SweepHandler) Scan(c *gin.Context) {
	var req dto.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid scan payload"))
		return
	}

	entries, err := h.service.AddByQR(c.Request.Context(), middleware.SessionID(c), req.QRID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewSweepResponse(entries))
}

// Remove deletes one entry from the list.
func (h *SweepHandler) Remove(c *gin.Context) {
	entries, err := h.service.Remove(c.Request.Context(), middleware.SessionID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewSweepResponse(entries))
}

// ToggleLate flips one entry between absent and late.
func (h *SweepHandler) ToggleLate(c *gin.Context) {
	entries, err := h.service.ToggleLate(c.Request.Context(), middleware.SessionID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewSweepResponse(entries))
}

// Clear empties the session's list.
func (h *SweepHandler) Clear(c *gin.Context) {
	if err := h.service.Clear(c.Request.Context(), middleware.SessionID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
