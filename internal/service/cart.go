package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tomasherrera27/crypto-mart/internal/domain"
	"github.com/tomasherrera27/crypto-mart/internal/event"
	"github.com/tomasherrera27/crypto-mart/internal/repository"
	apperrors "github.com/tomasherrera27/crypto-mart/pkg/errors"
)

// MaxQuantityPerItem is the maximum quantity allowed for a single cart item.
const MaxQuantityPerItem = 100

// ListingFinder resolves a listing id against the current catalog.
type ListingFinder interface {
	Find(ctx context.Context, id string) (domain.Listing, error)
}

// CartService implements the business logic for cart operations. Listings
// are always resolved from the catalog so a cart can never hold an item
// that was not actually listed.
type CartService struct {
	store    repository.CartStore
	catalog  ListingFinder
	producer *event.Producer
	logger   *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(store repository.CartStore, catalog ListingFinder, producer *event.Producer, logger *slog.Logger) *CartService {
	return &CartService{
		store:    store,
		catalog:  catalog,
		producer: producer,
		logger:   logger,
	}
}

// GetCart retrieves the cart for a session. If no cart exists yet, returns
// an empty cart without persisting it.
func (s *CartService) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	cart, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.NewCart(sessionID), nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	return cart, nil
}

// AddItem adds one unit of a listing to the session's cart. Adding a
// listing that is already in the cart increments its quantity.
func (s *CartService) AddItem(ctx context.Context, sessionID, listingID string) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	if listingID == "" {
		return nil, apperrors.InvalidInput("listing id is required")
	}

	listing, err := s.catalog.Find(ctx, listingID)
	if err != nil {
		return nil, err
	}

	cart, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if item := findItem(cart, listingID); item != nil && item.Quantity >= MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	cart.AddListing(listing)
	cart.UpdatedAt = time.Now().UTC()

	if err := s.store.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	s.publishUpdated(ctx, cart)

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("session_id", sessionID),
		slog.String("listing_id", listingID),
	)

	return cart, nil
}

// RemoveItem removes a listing from the cart. Removing an absent listing
// leaves the cart unchanged and is not an error.
func (s *CartService) RemoveItem(ctx context.Context, sessionID, listingID string) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	if listingID == "" {
		return nil, apperrors.InvalidInput("listing id is required")
	}

	cart, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cart.RemoveListing(listingID)
	cart.UpdatedAt = time.Now().UTC()

	if err := s.store.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	s.publishUpdated(ctx, cart)

	s.logger.InfoContext(ctx, "item removed from cart",
		slog.String("session_id", sessionID),
		slog.String("listing_id", listingID),
	)

	return cart, nil
}

// SetQuantity sets the quantity for a listing already in the cart. A
// quantity below 1 removes the item; setting a quantity for a listing not
// in the cart never creates it.
func (s *CartService) SetQuantity(ctx context.Context, sessionID, listingID string, quantity int) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	if listingID == "" {
		return nil, apperrors.InvalidInput("listing id is required")
	}
	if quantity > MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	cart, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cart.SetQuantity(listingID, quantity)
	cart.UpdatedAt = time.Now().UTC()

	if err := s.store.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	s.publishUpdated(ctx, cart)

	s.logger.InfoContext(ctx, "cart item quantity updated",
		slog.String("session_id", sessionID),
		slog.String("listing_id", listingID),
		slog.Int("quantity", quantity),
	)

	return cart, nil
}

// ClearCart removes the session's cart entirely.
func (s *CartService) ClearCart(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperrors.InvalidInput("session id is required")
	}

	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}

	if err := s.producer.PublishCartCleared(ctx, sessionID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("session_id", sessionID),
	)

	return nil
}

// CheckoutQuote is the priced summary returned when a cart is checked out.
// No settlement happens here; the quote records what the session would pay.
type CheckoutQuote struct {
	QuoteID    string    `json:"quote_id"`
	SessionID  string    `json:"session_id"`
	TotalItems int       `json:"total_items"`
	TotalWei   string    `json:"total_wei"`
	TotalEth   string    `json:"total_eth"`
	CreatedAt  time.Time `json:"created_at"`
}

// Checkout prices the session's cart and returns an accepted quote. The
// cart must contain at least one item. The cart itself is left intact so
// the caller can retry or keep shopping.
func (s *CartService) Checkout(ctx context.Context, sessionID string) (*CheckoutQuote, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	cart, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	totalWei := cart.TotalWei()
	quote := &CheckoutQuote{
		QuoteID:    uuid.New().String(),
		SessionID:  sessionID,
		TotalItems: cart.TotalItems(),
		TotalWei:   totalWei.String(),
		TotalEth:   domain.FormatEtherWei(totalWei),
		CreatedAt:  time.Now().UTC(),
	}

	s.logger.InfoContext(ctx, "checkout quote issued",
		slog.String("session_id", sessionID),
		slog.String("quote_id", quote.QuoteID),
		slog.String("total_wei", quote.TotalWei),
	)

	return quote, nil
}

// publishUpdated emits a cart.updated event. Publish failures are logged,
// never surfaced: the cart mutation already succeeded.
func (s *CartService) publishUpdated(ctx context.Context, cart *domain.Cart) {
	if err := s.producer.PublishCartUpdated(ctx, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("session_id", cart.SessionID),
			slog.String("error", err.Error()),
		)
	}
}

func findItem(cart *domain.Cart, listingID string) *domain.CartItem {
	for i := range cart.Items {
		if cart.Items[i].ID == listingID {
			return &cart.Items[i]
		}
	}
	return nil
}
