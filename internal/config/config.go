package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

const devTokenKey = "dev-token-key-change-in-production"

// Config is everything the server reads from the environment.
type Config struct {
	Env         string
	Addr        string
	TLSCert     string
	TLSKey      string
	DatabaseURL string
	RedisURL    string
	TokenKey    string
	SessionTTL  time.Duration
	RateLimit   float64
	RateBurst   int
	LogLevel    string
	DataDir     string
}

func (c Config) Production() bool { return c.Env == "production" }
func (c Config) TLS() bool        { return c.TLSCert != "" && c.TLSKey != "" }

// Load reads .env files (if present) into the environment and builds the config.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading env file: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds the config from a lookup function so tests need not touch
// the process environment.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Env:         get("ENV", "development"),
		Addr:        get("ADDR", ":8080"),
		TLSCert:     get("TLS_CERT", ""),
		TLSKey:      get("TLS_KEY", ""),
		DatabaseURL: get("DATABASE_URL", ""),
		RedisURL:    get("REDIS_URL", ""),
		TokenKey:    get("TOKEN_KEY", ""),
		LogLevel:    get("LOG_LEVEL", "info"),
		DataDir:     get("DATA_DIR", ""),
	}

	var err error
	if cfg.SessionTTL, err = cast.ToDurationE(get("SESSION_TTL", "30m")); err != nil {
		return Config{}, fmt.Errorf("SESSION_TTL: %w", err)
	}
	if cfg.RateLimit, err = cast.ToFloat64E(get("RATE_LIMIT", "5")); err != nil {
		return Config{}, fmt.Errorf("RATE_LIMIT: %w", err)
	}
	if cfg.RateBurst, err = cast.ToIntE(get("RATE_BURST", "10")); err != nil {
		return Config{}, fmt.Errorf("RATE_BURST: %w", err)
	}

	if cfg.TokenKey == "" {
		if cfg.Production() {
			return Config{}, errors.New("TOKEN_KEY environment variable is not set")
		}
		cfg.TokenKey = devTokenKey
	}
	return cfg, nil
}
