package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tomasherrera27/crypto-mart/internal/domain"
	pkgkafka "github.com/tomasherrera27/crypto-mart/pkg/kafka"
)

// Kafka topic constants for storefront domain events.
const (
	TopicCartUpdated     = "cryptomart.cart.updated"
	TopicCartCleared     = "cryptomart.cart.cleared"
	TopicWalletConnected = "cryptomart.wallet.connected"
)

// Aggregate type constants.
const (
	AggregateTypeCart   = "cart"
	AggregateTypeWallet = "wallet"
)

// Source identifier for events originating from the storefront.
const SourceStorefront = "storefront"

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	SessionID  string         `json:"session_id"`
	Items      []CartItemData `json:"items"`
	TotalItems int            `json:"total_items"`
	TotalWei   string         `json:"total_wei"`
}

// CartItemData is the item payload within cart events.
type CartItemData struct {
	ListingID string `json:"listing_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	SessionID string `json:"session_id"`
}

// WalletConnectedData is the payload for a wallet.connected event.
type WalletConnectedData struct {
	SessionID string `json:"session_id"`
	Account   string `json:"account"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the storefront.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, cart *domain.Cart) error {
	items := make([]CartItemData, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = CartItemData{
			ListingID: item.ID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	data := CartUpdatedData{
		SessionID:  cart.SessionID,
		Items:      items,
		TotalItems: cart.TotalItems(),
		TotalWei:   cart.TotalWei().String(),
	}

	event, err := pkgkafka.NewEvent(TopicCartUpdated, cart.SessionID, AggregateTypeCart, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create cart.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCartUpdated, event); err != nil {
		return fmt.Errorf("publish cart.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("session_id", cart.SessionID),
		slog.Int("total_items", cart.TotalItems()),
	)

	return nil
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, sessionID string) error {
	data := CartClearedData{SessionID: sessionID}

	event, err := pkgkafka.NewEvent(TopicCartCleared, sessionID, AggregateTypeCart, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create cart.cleared event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCartCleared, event); err != nil {
		return fmt.Errorf("publish cart.cleared event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.cleared event",
		slog.String("session_id", sessionID),
	)

	return nil
}

// PublishWalletConnected publishes a wallet.connected event.
func (p *Producer) PublishWalletConnected(ctx context.Context, sessionID, account string) error {
	data := WalletConnectedData{SessionID: sessionID, Account: account}

	event, err := pkgkafka.NewEvent(TopicWalletConnected, sessionID, AggregateTypeWallet, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create wallet.connected event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicWalletConnected, event); err != nil {
		return fmt.Errorf("publish wallet.connected event: %w", err)
	}

	p.logger.DebugContext(ctx, "published wallet.connected event",
		slog.String("session_id", sessionID),
	)

	return nil
}
