package opensea

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/tomasherrera27/crypto-mart/internal/domain"
	apperrors "github.com/tomasherrera27/crypto-mart/pkg/errors"
	"github.com/tomasherrera27/crypto-mart/pkg/httpclient"
)

const listingsPath = "/v2/orders/ethereum/seaport/listings"

// maxErrorBody caps how much of an upstream error response gets logged.
const maxErrorBody = 4 << 10

// Client fetches and normalizes marketplace listings from the OpenSea
// orders API. It implements repository.ListingSource.
type Client struct {
	http       *httpclient.CircuitBreakerClient
	baseURL    string
	apiKey     string
	assetOwner string
	logger     *slog.Logger
}

// NewClient creates a new OpenSea listings client.
func NewClient(http *httpclient.CircuitBreakerClient, baseURL, apiKey, assetOwner string, logger *slog.Logger) *Client {
	return &Client{
		http:       http,
		baseURL:    baseURL,
		apiKey:     apiKey,
		assetOwner: assetOwner,
		logger:     logger,
	}
}

// FetchListings retrieves the current order set and normalizes every record.
// The operation is all-or-nothing: a missing credential, a non-success
// upstream status, a missing "orders" key, or any malformed record fails the
// whole fetch without emitting partial results.
func (c *Client) FetchListings(ctx context.Context) ([]domain.Listing, error) {
	if c.apiKey == "" {
		return nil, apperrors.Configuration("OpenSea API key is not configured")
	}

	reqURL, err := c.buildURL()
	if err != nil {
		return nil, apperrors.Configuration(fmt.Sprintf("invalid OpenSea base URL: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create listings request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, apperrors.Upstream("marketplace request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Error("marketplace returned non-success status",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)),
		)
		return nil, apperrors.Upstream(
			fmt.Sprintf("marketplace returned status %d", resp.StatusCode), nil)
	}

	var payload orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.Upstream("decode marketplace response", err)
	}
	if payload.Orders == nil {
		return nil, apperrors.Upstream("marketplace response has no orders field", nil)
	}

	orders := *payload.Orders
	listings := make([]domain.Listing, 0, len(orders))
	for _, rec := range orders {
		listing, err := normalizeOrder(rec)
		if err != nil {
			return nil, &apperrors.AppError{
				Code:    "MALFORMED_LISTING",
				Message: "marketplace returned a malformed order record",
				Status:  http.StatusBadGateway,
				Err:     fmt.Errorf("%w: %w", apperrors.ErrUpstream, err),
			}
		}
		listings = append(listings, listing)
	}

	return listings, nil
}

func (c *Client) buildURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	u = u.JoinPath(listingsPath)

	q := u.Query()
	if c.assetOwner != "" {
		q.Set("maker", c.assetOwner)
	}
	q.Set("order_by", "created_date")
	q.Set("order_direction", "desc")
	u.RawQuery = q.Encode()

	return u.String(), nil
}
