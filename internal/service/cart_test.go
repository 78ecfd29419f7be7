package service

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tomasherrera27/crypto-mart/internal/domain"
	"github.com/tomasherrera27/crypto-mart/internal/event"
	apperrors "github.com/tomasherrera27/crypto-mart/pkg/errors"
	pkgkafka "github.com/tomasherrera27/crypto-mart/pkg/kafka"
)

// --- Mock Store ---

type mockCartStore struct {
	mock.Mock
}

func (m *mockCartStore) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockCartStore) Save(ctx context.Context, cart *domain.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *mockCartStore) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// --- Stub Catalog ---

type stubCatalog struct {
	listings map[string]domain.Listing
}

func (s *stubCatalog) Find(_ context.Context, id string) (domain.Listing, error) {
	if l, ok := s.listings[id]; ok {
		return l, nil
	}
	return domain.Listing{}, apperrors.NotFound("listing", id)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestCartService(store *mockCartStore, catalog *stubCatalog) *CartService {
	logger := newTestLogger()
	// The Kafka producer fails silently in tests (no real broker); publish
	// failures are logged, not surfaced.
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	producer := event.NewProducer(pkgkafka.NewProducer(kafkaCfg, logger), logger)
	return NewCartService(store, catalog, producer, logger)
}

func zeldaCatalog() *stubCatalog {
	return &stubCatalog{listings: map[string]domain.Listing{
		"0xaaa": {ID: "0xaaa", Name: "Zelda Coin", Price: "1500000000000000000"},
		"0xbbb": {ID: "0xbbb", Name: "Mario Star", Price: "2000000000000000000"},
	}}
}

func cartWithZelda(sessionID string) *domain.Cart {
	cart := domain.NewCart(sessionID)
	cart.AddListing(domain.Listing{ID: "0xaaa", Name: "Zelda Coin", Price: "1500000000000000000"})
	return cart
}

// --- GetCart ---

func TestGetCart_MissingSessionID(t *testing.T) {
	svc := newTestCartService(&mockCartStore{}, zeldaCatalog())

	cart, err := svc.GetCart(context.Background(), "")
	assert.Nil(t, cart)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestGetCart_NoCartReturnsEmpty(t *testing.T) {
	store := &mockCartStore{}
	store.On("Get", mock.Anything, "sess-1").Return(nil, apperrors.NotFound("cart", "sess-1"))
	svc := newTestCartService(store, zeldaCatalog())

	cart, err := svc.GetCart(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", cart.SessionID)
	assert.Empty(t, cart.Items)
	store.AssertExpectations(t)
}

// --- AddItem ---

func TestAddItem_NewListing(t *testing.T) {
	store := &mockCartStore{}
	store.On("Get", mock.Anything, "sess-1").Return(nil, apperrors.NotFound("cart", "sess-1"))
	store.On("Save", mock.Anything, mock.AnythingOfType("*domain.Cart")).Return(nil)
	svc := newTestCartService(store, zeldaCatalog())

	cart, err := svc.AddItem(context.Background(), "sess-1", "0xaaa")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "Zelda Coin", cart.Items[0].Name)
	assert.Equal(t, 1, cart.Items[0].Quantity)
	store.AssertExpectations(t)
}

func TestAddItem_ExistingListingMerges(t *testing.T) {
	store := &mockCartStore{}
	store.On("Get", mock.Anything, "sess-1").Return(cartWithZelda("sess-1"), nil)
	store.On("Save", mock.Anything, mock.AnythingOfType("*domain.Cart")).Return(nil)
	svc := newTestCartService(store, zeldaCatalog())

	cart, err := svc.AddItem(context.Background(), "sess-1", "0xaaa")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestAddItem_UnknownListing(t *testing.T) {
	store := &mockCartStore{}
	svc := newTestCartService(store, zeldaCatalog())

	cart, err := svc.AddItem(context.Background(), "sess-1", "0xnope")
	assert.Nil(t, cart)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAddItem_QuantityCap(t *testing.T) {
	full := cartWithZelda("sess-1")
	full.Items[0].Quantity = MaxQuantityPerItem

	store := &mockCartStore{}
	store.On("Get", mock.Anything, "sess-1").Return(full, nil)
	svc := newTestCartService(store, zeldaCatalog())

	cart, err := svc.AddItem(context.Background(), "sess-1", "0xaaa")
	assert.Nil(t, cart)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// --- RemoveItem ---

func TestRemoveItem_Existing(t *testing.T) {
	store := &mockCartStore{}
	store.On("Get", mock.Anything, "sess-1").Return(cartWithZelda("sess-1"), nil)
	store.On("Save", mock.Anything, mock.AnythingOfType("*domain.Cart")).Return(nil)
	svc := newTestCartService(store, zeldaCatalog())

	cart, err := svc.RemoveItem(context.Background(), "sess-1", "0xaaa")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestRemoveItem_AbsentIsNoOp(t *testing.T) {
	store := &mockCartStore{}
	store.On("Get", mock.Anything, "sess-1").Return(cartWithZelda("sess-1"), nil)
	store.On("Save", mock.Anything, mock.AnythingOfType("*domain.Cart")).Return(nil)
	svc := newTestCartService(store, zeldaCatalog())

	cart, err := svc.RemoveItem(context.Background(), "sess-1", "0xzzz")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

// --- SetQuantity ---

func TestSetQuantity_Updates(t *testing.T) {
	store := &mockCartStore{}
	store.On("Get", mock.Anything, "sess-1").Return(cartWithZelda("sess-1"), nil)
	store.On("Save", mock.Anything, mock.AnythingOfType("*domain.Cart")).Return(nil)
	svc := newTestCartService(store, zeldaCatalog())

	cart, err := svc.SetQuantity(context.Background(), "sess-1", "0xaaa", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestSetQuantity_BelowOneRemoves(t *testing.T) {
	store := &mockCartStore{}
	store.On("Get", mock.Anything, "sess-1").Return(cartWithZelda("sess-1"), nil)
	store.On("Save", mock.Anything, mock.AnythingOfType("*domain.Cart")).Return(nil)
	svc := newTestCartService(store, zeldaCatalog())

	cart, err := svc.SetQuantity(context.Background(), "sess-1", "0xaaa", 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestSetQuantity_AbsentNeverCreates(t *testing.T) {
	store := &mockCartStore{}
	store.On("Get", mock.Anything, "sess-1").Return(cartWithZelda("sess-1"), nil)
	store.On("Save", mock.Anything, mock.AnythingOfType("*domain.Cart")).Return(nil)
	svc := newTestCartService(store, zeldaCatalog())

	cart, err := svc.SetQuantity(context.Background(), "sess-1", "0xbbb", 7)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "0xaaa", cart.Items[0].ID)
}

func TestSetQuantity_OverCap(t *testing.T) {
	store := &mockCartStore{}
	svc := newTestCartService(store, zeldaCatalog())

	cart, err := svc.SetQuantity(context.Background(), "sess-1", "0xaaa", MaxQuantityPerItem+1)
	assert.Nil(t, cart)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

// --- ClearCart ---

func TestClearCart(t *testing.T) {
	store := &mockCartStore{}
	store.On("Delete", mock.Anything, "sess-1").Return(nil)
	svc := newTestCartService(store, zeldaCatalog())

	err := svc.ClearCart(context.Background(), "sess-1")
	require.NoError(t, err)
	store.AssertExpectations(t)
}

// --- Checkout ---

func TestCheckout_IssuesQuote(t *testing.T) {
	store := &mockCartStore{}
	cart := cartWithZelda("sess-1")
	cart.AddListing(domain.Listing{ID: "0xbbb", Name: "Mario Star", Price: "2000000000000000000"})
	store.On("Get", mock.Anything, "sess-1").Return(cart, nil)
	svc := newTestCartService(store, zeldaCatalog())

	quote, err := svc.Checkout(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.NotEmpty(t, quote.QuoteID)
	assert.Equal(t, "sess-1", quote.SessionID)
	assert.Equal(t, 2, quote.TotalItems)
	assert.Equal(t, "3500000000000000000", quote.TotalWei)
	assert.Equal(t, "3.5000", quote.TotalEth)
	store.AssertExpectations(t)
}

func TestCheckout_EmptyCart(t *testing.T) {
	store := &mockCartStore{}
	store.On("Get", mock.Anything, "sess-1").Return(nil, apperrors.NotFound("cart", "sess-1"))
	svc := newTestCartService(store, zeldaCatalog())

	quote, err := svc.Checkout(context.Background(), "sess-1")
	assert.Nil(t, quote)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	// No settlement or persistence happens for an empty cart.
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
