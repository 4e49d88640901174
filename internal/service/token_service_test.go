package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ostapkoval/photostream-api/internal/models"
	"github.com/ostapkoval/photostream-api/pkg/config"
	appErrors "github.com/ostapkoval/photostream-api/pkg/errors"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        "photostream-test",
	}
}

func TestTokenServiceRoundTrip(t *testing.T) {
	svc := NewTokenService(testJWTConfig(), nil)

	access, _, err := svc.IssueAccessToken("u1")
	require.NoError(t, err)
	refresh, _, err := svc.IssueRefreshToken("u1")
	require.NoError(t, err)

	accessClaims, err := svc.Verify(access, models.TokenKindAccess)
	require.NoError(t, err)
	assert.Equal(t, "u1", accessClaims.UserID)
	assert.Equal(t, models.TokenKindAccess, accessClaims.Kind)

	refreshClaims, err := svc.Verify(refresh, models.TokenKindRefresh)
	require.NoError(t, err)
	assert.Equal(t, "u1", refreshClaims.UserID)
	assert.Equal(t, models.TokenKindRefresh, refreshClaims.Kind)
}

func TestTokenServiceKindMismatch(t *testing.T) {
	svc := NewTokenService(testJWTConfig(), nil)

	access, _, err := svc.IssueAccessToken("u1")
	require.NoError(t, err)

	// An access token must never pass as a refresh token. The secrets
	// differ, so the signature check already fails.
	_, err = svc.Verify(access, models.TokenKindRefresh)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidToken.Code, appErrors.FromError(err).Code)
}

func TestTokenServiceKindClaimChecked(t *testing.T) {
	cfg := testJWTConfig()
	cfg.RefreshSecret = cfg.AccessSecret
	svc := NewTokenService(cfg, nil)

	access, _, err := svc.IssueAccessToken("u1")
	require.NoError(t, err)

	// Even with identical secrets the kind claim rejects the swap.
	_, err = svc.Verify(access, models.TokenKindRefresh)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidToken.Code, appErrors.FromError(err).Code)
}

func TestTokenServiceExpiry(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := issuedAt
	svc := NewTokenService(testJWTConfig(), func() time.Time { return clock })

	access, expiresAt, err := svc.IssueAccessToken("u1")
	require.NoError(t, err)
	assert.Equal(t, issuedAt.Add(15*time.Minute), expiresAt)

	clock = expiresAt.Add(-time.Second)
	_, err = svc.Verify(access, models.TokenKindAccess)
	require.NoError(t, err)

	clock = expiresAt.Add(time.Second)
	_, err = svc.Verify(access, models.TokenKindAccess)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidToken.Code, appErr.Code)
	assert.Equal(t, "token expired", appErr.Message)
}

func TestTokenServiceWrongSecret(t *testing.T) {
	svc := NewTokenService(testJWTConfig(), nil)

	other := testJWTConfig()
	other.AccessSecret = "someone-elses-secret"
	otherSvc := NewTokenService(other, nil)

	forged, _, err := otherSvc.IssueAccessToken("u1")
	require.NoError(t, err)

	_, err = svc.Verify(forged, models.TokenKindAccess)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidToken.Code, appErrors.FromError(err).Code)
}

func TestTokenServiceTokensAreUnique(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := NewTokenService(testJWTConfig(), func() time.Time { return fixed })

	first, _, err := svc.IssueRefreshToken("u1")
	require.NoError(t, err)
	second, _, err := svc.IssueRefreshToken("u1")
	require.NoError(t, err)

	// Rotation depends on the new token differing from the old one even
	// when both are issued within the same second.
	assert.NotEqual(t, first, second)
}
