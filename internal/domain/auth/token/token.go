package token

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token type discriminator carried in the "typ" claim. A refresh token is
// never accepted where an access token is required, and vice versa.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

type AccessClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"typ"`
}

type RefreshClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"typ"`
}

func (c AccessClaims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

func (c RefreshClaims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// Issuer mints and validates the signed token pair. Validate* returns the
// claims on success so subject extraction cannot happen on an unverified
// token; any malformed, mis-typed, badly signed, or expired input resolves
// to ErrInvalidToken, never a panic.
type Issuer interface {
	GenerateAccessToken(userID int64) (token string, exp time.Time, err error)
	GenerateRefreshToken(userID int64) (token string, exp time.Time, err error)
	ValidateAccessToken(token string) (AccessClaims, error)
	ValidateRefreshToken(token string) (RefreshClaims, error)
}
