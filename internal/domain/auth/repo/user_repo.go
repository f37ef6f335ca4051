package repo

import (
	"context"

	"github.com/lumehaven/identity/auth-service/internal/domain/auth/model"
)

// UserRepo is the durable store. It is the source of truth for identity and
// credentials and must enforce username/email uniqueness at the storage
// level as the ultimate backstop for the register-time pre-checks.
type UserRepo interface {
	CreateUser(ctx context.Context, u model.User) (model.User, error)

	GetUserByID(ctx context.Context, id int64) (model.User, error)

	GetUserByUsername(ctx context.Context, username string) (model.User, error)

	CountByUsername(ctx context.Context, username string) (int64, error)

	CountByEmail(ctx context.Context, email string) (int64, error)
}
