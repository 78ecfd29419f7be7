package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/tomasherrera27/crypto-mart/internal/domain"
)

// ListingSource fetches raw listings from an upstream marketplace.
type ListingSource interface {
	// FetchListings retrieves and normalizes the current set of listings.
	FetchListings(ctx context.Context) ([]domain.Listing, error)
}

// ListingCache caches a normalized listing set between upstream fetches.
type ListingCache interface {
	// Get returns the cached listing set, or a not-found error when the
	// cache is cold or expired.
	Get(ctx context.Context) ([]domain.Listing, error)

	// Set stores the listing set with the given TTL.
	Set(ctx context.Context, listings []domain.Listing, ttl time.Duration) error
}

// CartStore defines the interface for cart persistence operations.
type CartStore interface {
	// Get retrieves a cart by its session ID.
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)

	// Save persists a cart, overwriting any existing cart for the session.
	Save(ctx context.Context, cart *domain.Cart) error

	// Delete removes a cart from the store by the session ID.
	Delete(ctx context.Context, sessionID string) error
}

// FlagStore remembers per-session boolean flags, such as whether a wallet
// was previously connected.
type FlagStore interface {
	// SetFlag records a flag for the session.
	SetFlag(ctx context.Context, sessionID, name string, value bool) error

	// GetFlag reads a flag for the session. An unset flag reads as false.
	GetFlag(ctx context.Context, sessionID, name string) (bool, error)
}

// ProviderError is a structured failure returned by a wallet provider.
// Codes follow the provider's own numbering: 4001 means the user rejected
// the request, -32002 means a request is already pending.
type ProviderError struct {
	Code    int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

// WalletProvider is the injected wallet backend the session talks to.
type WalletProvider interface {
	// Activate prompts for a connection and returns the account addresses
	// the user granted.
	Activate(ctx context.Context) ([]string, error)

	// ActivateSilently returns already-authorized accounts without
	// prompting. An empty slice means no prior authorization exists.
	ActivateSilently(ctx context.Context) ([]string, error)

	// Reset clears any local provider session state.
	Reset(ctx context.Context) error
}

// Deactivator is an optional capability a WalletProvider may implement to
// revoke the connection on the provider side, not just locally.
type Deactivator interface {
	Deactivate(ctx context.Context) error
}
