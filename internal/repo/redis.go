package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const favoriteKeyPrefix = "civica:fav:"

// RedisFavorites caches favorite flags in front of another Repository. The
// wrapped repository stays the source of truth; cache errors fall through to it.
type RedisFavorites struct {
	Repository
	client *redis.Client
	ttl    time.Duration
}

func NewRedisFavorites(next Repository, client *redis.Client, ttl time.Duration) *RedisFavorites {
	return &RedisFavorites{Repository: next, client: client, ttl: ttl}
}

// DialRedis parses a redis:// URL and pings the server.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func favoriteKey(userID int, calculatorID string) string {
	return fmt.Sprintf("%s%d:%s", favoriteKeyPrefix, userID, calculatorID)
}

func (r *RedisFavorites) ToggleFavorite(ctx context.Context, userID int, f Favorite) (bool, error) {
	on, err := r.Repository.ToggleFavorite(ctx, userID, f)
	if err != nil {
		return false, err
	}
	r.store(ctx, userID, f.CalculatorID, on)
	return on, nil
}

func (r *RedisFavorites) CheckFavorite(ctx context.Context, userID int, calculatorID string) (bool, error) {
	val, err := r.client.Get(ctx, favoriteKey(userID, calculatorID)).Result()
	if err == nil {
		return val == "1", nil
	}
	if !errors.Is(err, redis.Nil) {
		// cache unavailable, ask the store
		return r.Repository.CheckFavorite(ctx, userID, calculatorID)
	}
	on, err := r.Repository.CheckFavorite(ctx, userID, calculatorID)
	if err != nil {
		return false, err
	}
	r.store(ctx, userID, calculatorID, on)
	return on, nil
}

func (r *RedisFavorites) store(ctx context.Context, userID int, calculatorID string, on bool) {
	val := "0"
	if on {
		val = "1"
	}
	_ = r.client.Set(ctx, favoriteKey(userID, calculatorID), val, r.ttl).Err()
}
