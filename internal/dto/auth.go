package dto

// UnlockRequest captures POST /auth/unlock payload.
type UnlockRequest struct {
	Passcode string `json:"passcode" binding:"required"`
}

// UnlockResponse carries the issued session token.
type UnlockResponse struct {
	Token string `json:"token"`
}
