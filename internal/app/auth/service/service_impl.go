package service

import (
	"context"
	"errors"

	"github.com/lumehaven/identity/auth-service/internal/adapters/transport/http/dto"
	"github.com/lumehaven/identity/auth-service/internal/app/auth/password"
	customErrors "github.com/lumehaven/identity/auth-service/internal/domain/auth/errors"
	"github.com/lumehaven/identity/auth-service/internal/domain/auth/model"
	"github.com/lumehaven/identity/auth-service/internal/domain/auth/repo"
	"github.com/lumehaven/identity/auth-service/internal/domain/auth/token"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type authService struct {
	userRepo repo.UserRepo
	cache    repo.SessionCache
	jwtUtil  token.Issuer
	v        *validator.Validate
	log      *zap.Logger
}

type Service interface {
	Register(context.Context, dto.RegisterDTO) (model.PublicUser, error)
	Login(context.Context, dto.LoginDTO) (model.Session, error)
	Refresh(ctx context.Context, refreshToken string) (model.Session, error)
	Logout(ctx context.Context, userID int64) error
	GetProfile(ctx context.Context, userID int64) (model.PublicUser, error)
	Authenticate(ctx context.Context, accessToken string) (userID int64, err error)
}

func New(
	ur repo.UserRepo,
	sc repo.SessionCache,
	jm token.Issuer,
	v *validator.Validate,
	log *zap.Logger,
) Service {
	return &authService{
		userRepo: ur, cache: sc, jwtUtil: jm, v: v, log: log,
	}
}

// Register pre-checks both uniqueness constraints before the insert. The
// check-then-insert pair is not atomic across concurrent registrations; the
// unique constraints in the users table are the backstop, and the repo maps
// that violation to ErrAlreadyExists as well.
func (a *authService) Register(ctx context.Context, in dto.RegisterDTO) (model.PublicUser, error) {
	if err := a.v.Struct(in); err != nil {
		return model.PublicUser{}, customErrors.NewInvalidArgument(err.Error())
	}

	n, err := a.userRepo.CountByUsername(ctx, in.Username)
	if err != nil {
		return model.PublicUser{}, customErrors.WrapInternal(err, "Register")
	}
	if n > 0 {
		return model.PublicUser{}, customErrors.NewAlreadyExists("username already taken")
	}

	n, err = a.userRepo.CountByEmail(ctx, in.Email)
	if err != nil {
		return model.PublicUser{}, customErrors.WrapInternal(err, "Register")
	}
	if n > 0 {
		return model.PublicUser{}, customErrors.NewAlreadyExists("email already registered")
	}

	hash, err := password.Hash(in.Password)
	if err != nil {
		return model.PublicUser{}, customErrors.WrapInternal(err, "Register")
	}

	user, err := a.userRepo.CreateUser(ctx, model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, customErrors.ErrAlreadyExists) {
			return model.PublicUser{}, err
		}
		return model.PublicUser{}, customErrors.WrapInternal(err, "CreateUser")
	}

	profile := user.Public()
	a.warmProfile(ctx, profile)
	return profile, nil
}

// Login deliberately reports the same ErrInvalidCredentials for an unknown
// username and for a wrong password.
func (a *authService) Login(ctx context.Context, in dto.LoginDTO) (model.Session, error) {
	if err := a.v.Struct(in); err != nil {
		return model.Session{}, customErrors.NewInvalidArgument(err.Error())
	}

	user, err := a.userRepo.GetUserByUsername(ctx, in.Username)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return model.Session{}, customErrors.ErrInvalidCredentials
	case err != nil:
		return model.Session{}, customErrors.WrapInternal(err, "Login")
	}

	if !password.Verify(in.Password, user.PasswordHash) {
		return model.Session{}, customErrors.ErrInvalidCredentials
	}

	at, _, err := a.jwtUtil.GenerateAccessToken(user.ID)
	if err != nil {
		return model.Session{}, customErrors.WrapInternal(err, "GenerateAccessToken")
	}
	rt, _, err := a.jwtUtil.GenerateRefreshToken(user.ID)
	if err != nil {
		return model.Session{}, customErrors.WrapInternal(err, "GenerateRefreshToken")
	}

	profile := user.Public()
	a.warmProfile(ctx, profile)

	// Last write wins: this overwrites whatever refresh token an earlier
	// login left behind, invalidating that session.
	if err := a.cache.PutRefreshToken(ctx, user.ID, rt); err != nil {
		a.log.Warn("cache refresh token", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	return model.Session{AccessToken: at, RefreshToken: rt, Profile: profile}, nil
}

// Refresh mints a new access token. The presented token must validate AND
// match the cached token for its subject bit for bit; the cache is the
// source of truth for refresh-token validity, so an absent entry means the
// session is gone. The refresh token itself is not rotated.
func (a *authService) Refresh(ctx context.Context, refreshToken string) (model.Session, error) {
	claims, err := a.jwtUtil.ValidateRefreshToken(refreshToken)
	if err != nil {
		return model.Session{}, customErrors.ErrInvalidToken
	}
	uid, err := claims.UserID()
	if err != nil {
		return model.Session{}, customErrors.ErrInvalidToken
	}

	cached, err := a.cache.GetRefreshToken(ctx, uid)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return model.Session{}, customErrors.ErrInvalidToken
	case err != nil:
		return model.Session{}, customErrors.WrapInternal(err, "Refresh")
	}
	if cached != refreshToken {
		return model.Session{}, customErrors.ErrInvalidToken
	}

	at, _, err := a.jwtUtil.GenerateAccessToken(uid)
	if err != nil {
		return model.Session{}, customErrors.WrapInternal(err, "GenerateAccessToken")
	}

	// Profile is returned as cached; a miss here is not a failure.
	profile, err := a.cache.GetProfile(ctx, uid)
	if err != nil && !errors.Is(err, customErrors.ErrNotFound) {
		a.log.Warn("read cached profile", zap.Int64("user_id", uid), zap.Error(err))
	}

	return model.Session{AccessToken: at, RefreshToken: refreshToken, Profile: profile}, nil
}

// Logout drops both cache entries. Evicting an already-absent session is
// fine, which makes the operation idempotent.
func (a *authService) Logout(ctx context.Context, userID int64) error {
	if err := a.cache.Evict(ctx, userID); err != nil {
		return customErrors.WrapInternal(err, "Logout")
	}
	return nil
}

// GetProfile is the read-through path: cache first, then the repository,
// repopulating the cache on a miss.
func (a *authService) GetProfile(ctx context.Context, userID int64) (model.PublicUser, error) {
	profile, err := a.cache.GetProfile(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, customErrors.ErrNotFound) {
		// Cache being down is not fatal to the read path.
		a.log.Warn("read cached profile", zap.Int64("user_id", userID), zap.Error(err))
	}

	user, err := a.userRepo.GetUserByID(ctx, userID)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return model.PublicUser{}, customErrors.ErrNotFound
	case err != nil:
		return model.PublicUser{}, customErrors.WrapInternal(err, "GetProfile")
	}

	profile = user.Public()
	a.warmProfile(ctx, profile)
	return profile, nil
}

// Authenticate resolves a bearer access token to its subject.
func (a *authService) Authenticate(_ context.Context, accessToken string) (int64, error) {
	claims, err := a.jwtUtil.ValidateAccessToken(accessToken)
	if err != nil {
		return 0, customErrors.ErrInvalidToken
	}
	uid, err := claims.UserID()
	if err != nil {
		return 0, customErrors.ErrInvalidToken
	}
	return uid, nil
}

// warmProfile writes the profile snapshot to the cache, best effort.
func (a *authService) warmProfile(ctx context.Context, profile model.PublicUser) {
	if err := a.cache.PutProfile(ctx, profile); err != nil {
		a.log.Warn("cache profile", zap.Int64("user_id", profile.ID), zap.Error(err))
	}
}
