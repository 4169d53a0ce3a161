package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/phone-slot-api/pkg/errors"
)

func TestUnlockIssuesDistinctSessions(t *testing.T) {
	svc := NewAuthService("scan123", "112189", "secret", time.Hour)

	tokenA, err := svc.Unlock("scan123")
	require.NoError(t, err)
	tokenB, err := svc.Unlock("scan123")
	require.NoError(t, err)

	claimsA, err := svc.ValidateToken(tokenA)
	require.NoError(t, err)
	claimsB, err := svc.ValidateToken(tokenB)
	require.NoError(t, err)

	assert.NotEmpty(t, claimsA.SessionID)
	assert.NotEqual(t, claimsA.SessionID, claimsB.SessionID)
}

func TestUnlockRejectsWrongPasscode(t *testing.T) {
	svc := NewAuthService("scan123", "112189", "secret", time.Hour)

	_, err := svc.Unlock("SCAN123")
	assert.ErrorIs(t, err, appErrors.ErrInvalidPasscode)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService("scan123", "112189", "secret", time.Hour)

	_, err := svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	issuer := NewAuthService("scan123", "112189", "secret-a", time.Hour)
	verifier := NewAuthService("scan123", "112189", "secret-b", time.Hour)

	token, err := issuer.Unlock("scan123")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestCheckResetPasscode(t *testing.T) {
	svc := NewAuthService("scan123", "112189", "secret", time.Hour)

	assert.True(t, svc.CheckResetPasscode("112189"))
	assert.False(t, svc.CheckResetPasscode("112188"))
	assert.False(t, svc.CheckResetPasscode(""))
}
