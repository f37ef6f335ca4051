package repo

import (
	"context"

	"github.com/lumehaven/identity/auth-service/internal/domain/auth/model"
)

// SessionCache is the TTL key-value layer in front of the user store. It is
// NOT authoritative for identity, but it IS authoritative for refresh-token
// validity: an absent refresh token means no valid session. Get* returns
// ErrNotFound for an absent or expired entry.
type SessionCache interface {
	PutProfile(ctx context.Context, profile model.PublicUser) error

	GetProfile(ctx context.Context, userID int64) (model.PublicUser, error)

	PutRefreshToken(ctx context.Context, userID int64, token string) error

	GetRefreshToken(ctx context.Context, userID int64) (string, error)

	// Evict removes both entries for the user. Evicting an absent session
	// is not an error.
	Evict(ctx context.Context, userID int64) error
}
