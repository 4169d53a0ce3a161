package service

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	appErrors "github.com/noah-isme/phone-slot-api/pkg/errors"
)

// SessionClaims identifies one unlocked staff session.
type SessionClaims struct {
	SessionID string
}

// AuthService exchanges the shared app passcode for a signed session token.
// The comparison happens at the API boundary so unauthorised clients never
// reach the store.
type AuthService struct {
	appPasscode   string
	resetPasscode string
	secret        []byte
	ttl           time.Duration
}

// NewAuthService constructs an auth service.
func NewAuthService(appPasscode, resetPasscode, tokenSecret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &AuthService{
		appPasscode:   appPasscode,
		resetPasscode: resetPasscode,
		secret:        []byte(tokenSecret),
		ttl:           ttl,
	}
}

// Unlock validates the app passcode and issues a session token carrying a
// fresh session id. Each staff device gets its own sweep list under that id.
func (s *AuthService) Unlock(passcode string) (string, error) {
	if subtle.ConstantTimeCompare([]byte(passcode), []byte(s.appPasscode)) != 1 {
		return "", appErrors.ErrInvalidPasscode
	}

	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": uuid.NewString(),
		"iat": jwt.NewNumericDate(now),
		"exp": jwt.NewNumericDate(now.Add(s.ttl)),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a session token.
func (s *AuthService) ValidateToken(raw string) (*SessionClaims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired session token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, appErrors.ErrUnauthorized
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return nil, appErrors.ErrUnauthorized
	}
	return &SessionClaims{SessionID: sid}, nil
}

// CheckResetPasscode verifies the destructive-reset confirmation secret.
func (s *AuthService) CheckResetPasscode(passcode string) bool {
	return subtle.ConstantTimeCompare([]byte(passcode), []byte(s.resetPasscode)) == 1
}
