package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/phone-slot-api/internal/dto"
	"github.com/noah-isme/phone-slot-api/internal/service"
	appErrors "github.com/noah-isme/phone-slot-api/pkg/errors"
	"github.com/noah-isme/phone-slot-api/pkg/response"
)

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Unlock exchanges the shared passcode for a session token.
func (h *AuthHandler) Unlock(c *gin.Context) {
	var req dto.UnlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid unlock payload"))
		return
	}

	token, err := h.service.Unlock(req.Passcode)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, dto.UnlockResponse{Token: token})
}
