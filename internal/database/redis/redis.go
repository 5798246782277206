// Package redis stores progression states in Redis as JSON documents.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kozaktomas/makeup-coach/internal/config"
	"github.com/kozaktomas/makeup-coach/internal/database"
	"github.com/kozaktomas/makeup-coach/internal/progress"
)

const keyPrefix = "makeup-coach:progress:"

// NewClient connects to Redis and verifies the connection.
func NewClient(cfg *config.RedisConfig) (*goredis.Client, error) {
	if cfg.Address == "" {
		return nil, errors.New("redis address is required")
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// ProgressRepository keeps one JSON document per user.
type ProgressRepository struct {
	client goredis.Cmdable
}

// NewProgressRepository creates a progress repository on top of a Redis client.
func NewProgressRepository(client goredis.Cmdable) *ProgressRepository {
	return &ProgressRepository{client: client}
}

// Key returns the Redis key holding a user's state.
func Key(userID string) string {
	return keyPrefix + userID
}

// Load retrieves a user's state, returns nil if not found
func (r *ProgressRepository) Load(ctx context.Context, userID string) (*progress.State, error) {
	raw, err := r.client.Get(ctx, Key(userID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}

	var state progress.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode progress of %s: %w", userID, err)
	}
	return &state, nil
}

// Save replaces a user's state
func (r *ProgressRepository) Save(ctx context.Context, userID string, state *progress.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	if err := r.client.Set(ctx, Key(userID), raw, 0).Err(); err != nil {
		return fmt.Errorf("set progress: %w", err)
	}
	return nil
}

// Delete removes a user's state
func (r *ProgressRepository) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, Key(userID)).Err(); err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	return nil
}

var _ database.ProgressWriter = (*ProgressRepository)(nil)
