package redis

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	customErrors "github.com/lumehaven/identity/auth-service/internal/domain/auth/errors"
	"github.com/lumehaven/identity/auth-service/internal/domain/auth/model"

	"github.com/redis/go-redis/v9"
)

// RedisSessionCache keeps two entries per user with independent TTLs:
// "user:<id>" holds the JSON profile snapshot, "refresh_token:<id>" holds
// the currently valid refresh token verbatim.
type RedisSessionCache struct {
	client     *redis.Client
	profileTTL time.Duration
	refreshTTL time.Duration
}

func NewRedisSessionCache(client *redis.Client, profileTTL, refreshTTL time.Duration) *RedisSessionCache {
	return &RedisSessionCache{
		client:     client,
		profileTTL: profileTTL,
		refreshTTL: refreshTTL,
	}
}

func profileKey(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10)
}

func refreshKey(userID int64) string {
	return "refresh_token:" + strconv.FormatInt(userID, 10)
}

func (r *RedisSessionCache) PutProfile(ctx context.Context, profile model.PublicUser) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return customErrors.WrapInternal(err, "PutProfile")
	}
	return r.client.Set(ctx, profileKey(profile.ID), payload, r.profileTTL).Err()
}

func (r *RedisSessionCache) GetProfile(ctx context.Context, userID int64) (model.PublicUser, error) {
	raw, err := r.client.Get(ctx, profileKey(userID)).Bytes()
	switch {
	case err == redis.Nil:
		return model.PublicUser{}, customErrors.ErrNotFound
	case err != nil:
		return model.PublicUser{}, err
	}

	var profile model.PublicUser
	if err := json.Unmarshal(raw, &profile); err != nil {
		// A snapshot we can no longer decode is as good as absent.
		return model.PublicUser{}, customErrors.ErrNotFound
	}
	return profile, nil
}

func (r *RedisSessionCache) PutRefreshToken(ctx context.Context, userID int64, token string) error {
	return r.client.Set(ctx, refreshKey(userID), token, r.refreshTTL).Err()
}

func (r *RedisSessionCache) GetRefreshToken(ctx context.Context, userID int64) (string, error) {
	val, err := r.client.Get(ctx, refreshKey(userID)).Result()
	switch {
	case err == redis.Nil:
		return "", customErrors.ErrNotFound
	case err != nil:
		return "", err
	}
	return val, nil
}

func (r *RedisSessionCache) Evict(ctx context.Context, userID int64) error {
	// DEL on absent keys succeeds, which keeps logout idempotent.
	return r.client.Del(ctx, profileKey(userID), refreshKey(userID)).Err()
}
