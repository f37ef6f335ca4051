package redis

import (
	"context"
	"testing"
	"time"

	customErrors "github.com/lumehaven/identity/auth-service/internal/domain/auth/errors"
	"github.com/lumehaven/identity/auth-service/internal/domain/auth/model"

	"github.com/alicebob/miniredis/v2"
	redisv9 "github.com/redis/go-redis/v9"
)

func newCache(t *testing.T) (*RedisSessionCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	t.Cleanup(mr.Close)

	client := redisv9.NewClient(&redisv9.Options{
		Addr: mr.Addr(),
	})
	return NewRedisSessionCache(client, time.Hour, time.Hour), mr
}

func TestRedisSessionCache_ProfileRoundTrip(t *testing.T) {
	cache, _ := newCache(t)
	ctx := context.Background()

	profile := model.PublicUser{ID: 1, Username: "alice", Email: "alice@x.com", CreatedAt: time.Now().UTC()}
	if err := cache.PutProfile(ctx, profile); err != nil {
		t.Fatalf("PutProfile: %v", err)
	}

	got, err := cache.GetProfile(ctx, 1)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if got.Username != "alice" || got.Email != "alice@x.com" {
		t.Fatalf("profile mismatch: %+v", got)
	}
}

func TestRedisSessionCache_ProfileAbsent(t *testing.T) {
	cache, _ := newCache(t)

	_, err := cache.GetProfile(context.Background(), 42)
	if !customErrors.IsNotFound(err) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestRedisSessionCache_RefreshTokenLastWriteWins(t *testing.T) {
	cache, _ := newCache(t)
	ctx := context.Background()

	if err := cache.PutRefreshToken(ctx, 1, "first"); err != nil {
		t.Fatalf("PutRefreshToken: %v", err)
	}
	if err := cache.PutRefreshToken(ctx, 1, "second"); err != nil {
		t.Fatalf("PutRefreshToken: %v", err)
	}

	got, err := cache.GetRefreshToken(ctx, 1)
	if err != nil {
		t.Fatalf("GetRefreshToken: %v", err)
	}
	if got != "second" {
		t.Fatalf("want the later write to win, got %q", got)
	}
}

func TestRedisSessionCache_EvictRemovesBothEntries(t *testing.T) {
	cache, _ := newCache(t)
	ctx := context.Background()

	if err := cache.PutProfile(ctx, model.PublicUser{ID: 1, Username: "alice"}); err != nil {
		t.Fatal(err)
	}
	if err := cache.PutRefreshToken(ctx, 1, "tok"); err != nil {
		t.Fatal(err)
	}

	if err := cache.Evict(ctx, 1); err != nil {
		t.Fatalf("Evict: %v", err)
	}
	if _, err := cache.GetProfile(ctx, 1); !customErrors.IsNotFound(err) {
		t.Fatal("profile should be gone after evict")
	}
	if _, err := cache.GetRefreshToken(ctx, 1); !customErrors.IsNotFound(err) {
		t.Fatal("refresh token should be gone after evict")
	}

	// evicting again is not an error
	if err := cache.Evict(ctx, 1); err != nil {
		t.Fatalf("second Evict: %v", err)
	}
}

func TestRedisSessionCache_TTLExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Cleanup(mr.Close)
	client := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
	cache := NewRedisSessionCache(client, time.Minute, time.Minute)
	ctx := context.Background()

	if err := cache.PutRefreshToken(ctx, 1, "tok"); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(2 * time.Minute)

	if _, err := cache.GetRefreshToken(ctx, 1); !customErrors.IsNotFound(err) {
		t.Fatal("token should expire with its TTL")
	}
}

func TestRedisSessionCache_CorruptProfileIsAbsent(t *testing.T) {
	cache, mr := newCache(t)

	mr.Set("user:7", "{not json")
	if _, err := cache.GetProfile(context.Background(), 7); !customErrors.IsNotFound(err) {
		t.Fatal("undecodable snapshot should read as absent")
	}
}
