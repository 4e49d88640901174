package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ostapkoval/photostream-api/internal/models"
	"github.com/ostapkoval/photostream-api/pkg/config"
	appErrors "github.com/ostapkoval/photostream-api/pkg/errors"
)

// TokenService issues and verifies the two token classes. Access and
// refresh tokens are signed with independent secrets.
type TokenService struct {
	config config.JWTConfig
	now    func() time.Time
}

// NewTokenService constructs a TokenService. A nil clock defaults to
// time.Now; tests inject a fixed clock to exercise expiry boundaries.
func NewTokenService(cfg config.JWTConfig, now func() time.Time) *TokenService {
	if now == nil {
		now = time.Now
	}
	return &TokenService{config: cfg, now: now}
}

// IssueAccessToken signs a short-lived access token for the user.
func (s *TokenService) IssueAccessToken(userID string) (string, time.Time, error) {
	return s.issue(userID, models.TokenKindAccess, s.config.AccessSecret, s.config.AccessExpiry)
}

// IssueRefreshToken signs a long-lived refresh token for the user.
func (s *TokenService) IssueRefreshToken(userID string) (string, time.Time, error) {
	return s.issue(userID, models.TokenKindRefresh, s.config.RefreshSecret, s.config.RefreshExpiry)
}

// AccessExpiry exposes the configured access token lifetime.
func (s *TokenService) AccessExpiry() time.Duration {
	return s.config.AccessExpiry
}

func (s *TokenService) issue(userID string, kind models.TokenKind, secret string, expiry time.Duration) (string, time.Time, error) {
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(expiry)
	claims := &models.TokenClaims{
		UserID: userID,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.config.Issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify parses and validates a token of the given kind. It fails on a
// malformed token, a signature from the wrong secret, a mismatched kind,
// or an elapsed expiry. Verification has no side effects.
func (s *TokenService) Verify(tokenString string, kind models.TokenKind) (*models.TokenClaims, error) {
	secret := s.config.AccessSecret
	if kind == models.TokenKindRefresh {
		secret = s.config.RefreshSecret
	}

	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrInvalidToken, "token expired")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidToken.Code, appErrors.ErrInvalidToken.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrInvalidToken, "invalid token claims")
	}
	if claims.Kind != kind {
		return nil, appErrors.Clone(appErrors.ErrInvalidToken, "wrong token kind")
	}

	return claims, nil
}
