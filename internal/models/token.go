package models

import "github.com/golang-jwt/jwt/v5"

// TokenKind distinguishes the two token classes. Each kind is signed with
// its own secret, so leaking one signing key does not compromise the other.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// TokenClaims is the JWT payload shared by access and refresh tokens.
type TokenClaims struct {
	UserID string    `json:"user_id"`
	Kind   TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// TokenPair bundles the two tokens issued on register, login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}
