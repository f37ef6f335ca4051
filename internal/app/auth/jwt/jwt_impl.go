package jwt

import (
	"strconv"
	"time"

	customErrors "github.com/lumehaven/identity/auth-service/internal/domain/auth/errors"
	domtoken "github.com/lumehaven/identity/auth-service/internal/domain/auth/token"
	"github.com/lumehaven/identity/auth-service/internal/infra/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JwtUtilImpl signs and validates tokens with a single process-wide HMAC
// secret established at startup. Access and refresh tokens share the key;
// the "typ" claim keeps them from being interchangeable.
type JwtUtilImpl struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	audience   string
}

func NewJWTUtil(cfg *config.Config) (*JwtUtilImpl, error) {
	if len(cfg.JWTSecret) == 0 {
		return nil, customErrors.NewInvalidArgument("jwt secret is empty")
	}
	return &JwtUtilImpl{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		issuer:     cfg.JWTIssuer,
		audience:   cfg.JWTAudience,
	}, nil
}

func (j *JwtUtilImpl) GenerateAccessToken(userID int64) (string, time.Time, error) {
	rc, exp := j.registeredClaims(userID, j.accessTTL)
	return j.sign(domtoken.AccessClaims{RegisteredClaims: rc, TokenType: domtoken.TypeAccess}, exp)
}

func (j *JwtUtilImpl) GenerateRefreshToken(userID int64) (string, time.Time, error) {
	rc, exp := j.registeredClaims(userID, j.refreshTTL)
	return j.sign(domtoken.RefreshClaims{RegisteredClaims: rc, TokenType: domtoken.TypeRefresh}, exp)
}

func (j *JwtUtilImpl) registeredClaims(userID int64, ttl time.Duration) (jwt.RegisteredClaims, time.Time) {
	now := time.Now()
	exp := now.Add(ttl)
	return jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		Issuer:    j.issuer,
		Audience:  jwt.ClaimStrings{j.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
		ID:        uuid.NewString(),
	}, exp
}

func (j *JwtUtilImpl) sign(claims jwt.Claims, exp time.Time) (string, time.Time, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, customErrors.WrapInternal(err, "sign token")
	}
	return signed, exp, nil
}

func (j *JwtUtilImpl) ValidateAccessToken(raw string) (domtoken.AccessClaims, error) {
	var claims domtoken.AccessClaims
	if err := j.parse(raw, &claims); err != nil {
		return domtoken.AccessClaims{}, err
	}
	if claims.TokenType != domtoken.TypeAccess {
		return domtoken.AccessClaims{}, customErrors.ErrInvalidToken
	}
	return claims, nil
}

func (j *JwtUtilImpl) ValidateRefreshToken(raw string) (domtoken.RefreshClaims, error) {
	var claims domtoken.RefreshClaims
	if err := j.parse(raw, &claims); err != nil {
		return domtoken.RefreshClaims{}, err
	}
	if claims.TokenType != domtoken.TypeRefresh {
		return domtoken.RefreshClaims{}, customErrors.ErrInvalidToken
	}
	return claims, nil
}

func (j *JwtUtilImpl) parse(raw string, claims jwt.Claims) error {
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, customErrors.ErrInvalidToken
		}
		return j.secret, nil
	}, jwt.WithIssuedAt(), jwt.WithExpirationRequired())

	if err != nil || !tok.Valid {
		return customErrors.ErrInvalidToken
	}

	if j.issuer != "" {
		iss, err := tok.Claims.GetIssuer()
		if err != nil || iss != j.issuer {
			return customErrors.ErrInvalidToken
		}
	}
	if j.audience != "" {
		aud, err := tok.Claims.GetAudience()
		if err != nil {
			return customErrors.ErrInvalidToken
		}
		found := false
		for _, a := range aud {
			if a == j.audience {
				found = true
				break
			}
		}
		if !found {
			return customErrors.ErrInvalidToken
		}
	}
	return nil
}
