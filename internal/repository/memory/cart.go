package memory

import (
	"context"
	"sync"

	"github.com/tomasherrera27/crypto-mart/internal/domain"
	apperrors "github.com/tomasherrera27/crypto-mart/pkg/errors"
)

// CartStore implements repository.CartStore using an in-memory map.
// Carts are session-scoped and deliberately non-durable: a process restart
// starts every session with an empty cart.
type CartStore struct {
	mu    sync.RWMutex
	carts map[string]*domain.Cart
}

// NewCartStore creates a new in-memory cart store.
func NewCartStore() *CartStore {
	return &CartStore{
		carts: make(map[string]*domain.Cart),
	}
}

// Get retrieves a cart by session ID. Returns a copy so callers can mutate
// the result without holding the store's lock.
func (s *CartStore) Get(_ context.Context, sessionID string) (*domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cart, exists := s.carts[sessionID]
	if !exists {
		return nil, apperrors.NotFound("cart", sessionID)
	}

	return cloneCart(cart), nil
}

// Save stores a copy of the cart, overwriting any existing cart for the session.
func (s *CartStore) Save(_ context.Context, cart *domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[cart.SessionID] = cloneCart(cart)
	return nil
}

// Delete removes a cart by session ID. Deleting an absent cart is not an error.
func (s *CartStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, sessionID)
	return nil
}

func cloneCart(cart *domain.Cart) *domain.Cart {
	c := *cart
	c.Items = make([]domain.CartItem, len(cart.Items))
	copy(c.Items, cart.Items)
	return &c
}
