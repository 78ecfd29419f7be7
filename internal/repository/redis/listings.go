package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tomasherrera27/crypto-mart/internal/domain"
	apperrors "github.com/tomasherrera27/crypto-mart/pkg/errors"
)

const listingsKey = "listings:catalog"

// ListingCache implements repository.ListingCache using Redis.
type ListingCache struct {
	client *redis.Client
}

// NewListingCache creates a new Redis-backed listing cache.
func NewListingCache(client *redis.Client) *ListingCache {
	return &ListingCache{client: client}
}

// Get retrieves the cached listing set from Redis.
func (c *ListingCache) Get(ctx context.Context) ([]domain.Listing, error) {
	data, err := c.client.Get(ctx, listingsKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("listings", "catalog")
		}
		return nil, fmt.Errorf("redis get listings: %w", err)
	}

	var listings []domain.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, fmt.Errorf("unmarshal listings: %w", err)
	}

	return listings, nil
}

// Set stores the listing set in Redis with the given TTL.
func (c *ListingCache) Set(ctx context.Context, listings []domain.Listing, ttl time.Duration) error {
	data, err := json.Marshal(listings)
	if err != nil {
		return fmt.Errorf("marshal listings: %w", err)
	}

	if err := c.client.Set(ctx, listingsKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set listings: %w", err)
	}

	return nil
}
