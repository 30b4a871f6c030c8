package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "salesledger/internal/core/context"
	"salesledger/internal/core/id"
)

func TestJWT_RoundTrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret"))
	caller := appctx.Caller{
		OrganizationID: id.New(),
		UserID:         "user-1",
		UserName:       "Asha",
		Roles:          []string{"sales"},
	}

	token, expiresAt, err := svc.GenerateAccessToken(caller)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, time.Minute)

	got, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, caller, *got)
}

func TestJWT_RejectsWrongSecret(t *testing.T) {
	token, _, err := NewJWTService(DefaultJWTConfig("one")).GenerateAccessToken(appctx.Caller{
		OrganizationID: id.New(),
		UserID:         "user-1",
	})
	require.NoError(t, err)

	_, err = NewJWTService(DefaultJWTConfig("two")).ValidateToken(token)
	assert.Error(t, err)
}

func TestJWT_RejectsExpired(t *testing.T) {
	cfg := DefaultJWTConfig("secret")
	cfg.AccessTokenTTL = -time.Minute
	svc := NewJWTService(cfg)

	token, _, err := svc.GenerateAccessToken(appctx.Caller{OrganizationID: id.New(), UserID: "user-1"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWT_RequiresOrganization(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret"))
	token, _, err := svc.GenerateAccessToken(appctx.Caller{UserID: "user-1"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "organization")
}
