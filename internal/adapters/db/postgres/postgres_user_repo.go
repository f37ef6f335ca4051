package postgres

import (
	"context"
	"errors"

	customErrors "github.com/lumehaven/identity/auth-service/internal/domain/auth/errors"
	"github.com/lumehaven/identity/auth-service/internal/domain/auth/model"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type PostgresUserRepo struct {
	db *gorm.DB
}

func NewPostgresUserRepo(db *gorm.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

func (p *PostgresUserRepo) CreateUser(ctx context.Context, user model.User) (model.User, error) {
	res := p.db.WithContext(ctx).Create(&user)
	if err := res.Error; err != nil {
		// 23505: the unique constraints back-stop the workflow's
		// non-atomic duplicate pre-checks.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.User{}, customErrors.ErrAlreadyExists
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return model.User{}, customErrors.ErrAlreadyExists
		}
		return model.User{}, customErrors.WrapInternal(err, "CreateUser")
	}
	return user, nil
}

func (p *PostgresUserRepo) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	var u model.User
	res := p.db.WithContext(ctx).Where("id = ?", id).First(&u)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.User{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.User{}, customErrors.WrapInternal(err, "GetUserByID")
	}

	return u, nil
}

func (p *PostgresUserRepo) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	var u model.User
	res := p.db.WithContext(ctx).Where("username = ?", username).First(&u)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.User{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.User{}, customErrors.WrapInternal(err, "GetUserByUsername")
	}

	return u, nil
}

func (p *PostgresUserRepo) CountByUsername(ctx context.Context, username string) (int64, error) {
	var n int64
	res := p.db.WithContext(ctx).Model(&model.User{}).Where("username = ?", username).Count(&n)
	if err := res.Error; err != nil {
		return 0, customErrors.WrapInternal(err, "CountByUsername")
	}
	return n, nil
}

func (p *PostgresUserRepo) CountByEmail(ctx context.Context, email string) (int64, error) {
	var n int64
	res := p.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Count(&n)
	if err := res.Error; err != nil {
		return 0, customErrors.WrapInternal(err, "CountByEmail")
	}
	return n, nil
}
