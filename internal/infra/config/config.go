package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL string

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	ProfileCacheTTL time.Duration
	RefreshCacheTTL time.Duration

	HTTPAddress      string
	AllowedOrigins   []string
	AllowCredentials bool
}

// minSecretLen guards against HS256 keys shorter than the hash size.
const minSecretLen = 32

// Load reads configuration from the environment. DATABASE_URL,
// REDIS_ADDRESS and JWT_SECRET are required; everything else has a default.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	for _, key := range []string{
		"DATABASE_URL",
		"REDIS_ADDRESS",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"JWT_SECRET",
		"JWT_ISSUER",
		"JWT_AUDIENCE",
		"ACCESS_TOKEN_TTL",
		"REFRESH_TOKEN_TTL",
		"PROFILE_CACHE_TTL",
		"REFRESH_CACHE_TTL",
		"HTTP_ADDRESS",
		"ALLOWED_ORIGINS",
		"ALLOW_CREDENTIALS",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	v.SetDefault("ACCESS_TOKEN_TTL", 15*time.Minute)
	v.SetDefault("REFRESH_TOKEN_TTL", 168*time.Hour)
	v.SetDefault("PROFILE_CACHE_TTL", time.Hour)
	v.SetDefault("REFRESH_CACHE_TTL", time.Hour)
	v.SetDefault("HTTP_ADDRESS", ":8080")

	for _, key := range []string{"DATABASE_URL", "REDIS_ADDRESS", "JWT_SECRET"} {
		if v.GetString(key) == "" {
			return nil, fmt.Errorf("required environment variable %s is not set", key)
		}
	}

	secret := v.GetString("JWT_SECRET")
	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLen)
	}

	return &Config{
		DatabaseURL:      v.GetString("DATABASE_URL"),
		RedisAddress:     v.GetString("REDIS_ADDRESS"),
		RedisPassword:    v.GetString("REDIS_PASSWORD"),
		RedisDB:          v.GetInt("REDIS_DB"),
		JWTSecret:        secret,
		JWTIssuer:        v.GetString("JWT_ISSUER"),
		JWTAudience:      v.GetString("JWT_AUDIENCE"),
		AccessTokenTTL:   v.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL:  v.GetDuration("REFRESH_TOKEN_TTL"),
		ProfileCacheTTL:  v.GetDuration("PROFILE_CACHE_TTL"),
		RefreshCacheTTL:  v.GetDuration("REFRESH_CACHE_TTL"),
		HTTPAddress:      v.GetString("HTTP_ADDRESS"),
		AllowedOrigins:   v.GetStringSlice("ALLOWED_ORIGINS"),
		AllowCredentials: v.GetBool("ALLOW_CREDENTIALS"),
	}, nil
}
