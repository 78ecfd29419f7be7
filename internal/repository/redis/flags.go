package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const flagPrefix = "flag:"

// defaultFlagTTL keeps stale session flags from accumulating forever.
const defaultFlagTTL = 30 * 24 * time.Hour

// FlagStore implements repository.FlagStore using Redis.
type FlagStore struct {
	client *redis.Client
}

// NewFlagStore creates a new Redis-backed flag store.
func NewFlagStore(client *redis.Client) *FlagStore {
	return &FlagStore{client: client}
}

// SetFlag records a per-session flag. A false value deletes the key so an
// unset and a cleared flag read identically.
func (s *FlagStore) SetFlag(ctx context.Context, sessionID, name string, value bool) error {
	key := flagPrefix + sessionID + ":" + name

	if !value {
		if err := s.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("redis del flag: %w", err)
		}
		return nil
	}

	if err := s.client.Set(ctx, key, "1", defaultFlagTTL).Err(); err != nil {
		return fmt.Errorf("redis set flag: %w", err)
	}

	return nil
}

// GetFlag reads a per-session flag. Missing keys read as false.
func (s *FlagStore) GetFlag(ctx context.Context, sessionID, name string) (bool, error) {
	key := flagPrefix + sessionID + ":" + name

	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("redis get flag: %w", err)
	}

	return val == "1", nil
}
