package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomasherrera27/crypto-mart/internal/domain"
	apperrors "github.com/tomasherrera27/crypto-mart/pkg/errors"
)

func setupTestCache(t *testing.T) (*ListingCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewListingCache(client), mr
}

func sampleListings() []domain.Listing {
	return []domain.Listing{
		{
			ID:          "0xaaa",
			Name:        "Zelda Coin",
			Price:       "1500000000000000000",
			Image:       "https://img.example.com/zelda.png",
			Description: "a coin",
		},
		{
			ID:    "0xbbb",
			Name:  "Mario Star",
			Price: "2000000000000000000",
			Image: domain.FallbackImageURL,
		},
	}
}

func TestListingCache_Get_Success(t *testing.T) {
	cache, mr := setupTestCache(t)

	data, err := json.Marshal(sampleListings())
	require.NoError(t, err)
	require.NoError(t, mr.Set("listings:catalog", string(data)))

	got, err := cache.Get(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Zelda Coin", got[0].Name)
	assert.Equal(t, "1500000000000000000", got[0].Price)
	assert.Equal(t, domain.FallbackImageURL, got[1].Image)
}

func TestListingCache_Get_Cold(t *testing.T) {
	cache, _ := setupTestCache(t)

	got, err := cache.Get(context.Background())
	assert.Nil(t, got)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListingCache_Get_InvalidJSON(t *testing.T) {
	cache, mr := setupTestCache(t)

	require.NoError(t, mr.Set("listings:catalog", "{{not-valid-json"))

	got, err := cache.Get(context.Background())
	assert.Nil(t, got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal listings")
}

func TestListingCache_Set_RoundTrip(t *testing.T) {
	cache, mr := setupTestCache(t)

	err := cache.Set(context.Background(), sampleListings(), 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, mr.Exists("listings:catalog"))

	got, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestListingCache_Set_TTL(t *testing.T) {
	cache, mr := setupTestCache(t)

	err := cache.Set(context.Background(), sampleListings(), 5*time.Minute)
	require.NoError(t, err)

	ttl := mr.TTL("listings:catalog")
	assert.True(t, ttl > 4*time.Minute, "expected TTL > 4m, got %v", ttl)
	assert.True(t, ttl <= 5*time.Minute, "expected TTL <= 5m, got %v", ttl)
}

func TestListingCache_Set_ExpiryEvicts(t *testing.T) {
	cache, mr := setupTestCache(t)

	err := cache.Set(context.Background(), sampleListings(), time.Minute)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = cache.Get(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
