package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tomasherrera27/crypto-mart/internal/domain"
	"github.com/tomasherrera27/crypto-mart/internal/service"
	apperrors "github.com/tomasherrera27/crypto-mart/pkg/errors"
	"github.com/tomasherrera27/crypto-mart/pkg/httputil"
)

// ListingsHandler handles HTTP requests for the listing catalog.
type ListingsHandler struct {
	catalog *service.CatalogService
	logger  *slog.Logger
}

// NewListingsHandler creates a new listings HTTP handler.
func NewListingsHandler(catalog *service.CatalogService, logger *slog.Logger) *ListingsHandler {
	return &ListingsHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// listingResponse is one listing as served to clients. The price is the
// raw base-unit amount; price_eth is the 4-decimal display rendering.
type listingResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	PriceEth    string `json:"price_eth"`
	Image       string `json:"image"`
	Description string `json:"description"`
}

// fetchErrorResponse is the error shape for the listings endpoint: a flat
// object rather than the envelope used elsewhere, because catalog clients
// expect a bare array on success.
type fetchErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// GetListings handles GET /api/nfts. Responds with a bare JSON array of
// listings, optionally narrowed by the ?search= query parameter, or 500
// with {error, details} when the fetch fails.
func (h *ListingsHandler) GetListings(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("search")

	listings, err := h.catalog.Search(r.Context(), term)
	if err != nil {
		h.writeFetchError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toListingResponses(listings))
}

// ReloadListings handles POST /api/nfts/reload. Forces a fresh upstream
// fetch and responds with the new listing set in the same bare-array shape.
func (h *ListingsHandler) ReloadListings(w http.ResponseWriter, r *http.Request) {
	listings, err := h.catalog.Reload(r.Context())
	if err != nil {
		h.writeFetchError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toListingResponses(listings))
}

func (h *ListingsHandler) writeFetchError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "listing fetch failed",
		slog.String("error", err.Error()),
		slog.String("path", r.URL.Path),
	)

	resp := fetchErrorResponse{Error: "failed to fetch listings"}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		resp.Details = appErr.Message
	} else {
		resp.Details = err.Error()
	}

	httputil.WriteJSON(w, http.StatusInternalServerError, resp)
}

func toListingResponses(listings []domain.Listing) []listingResponse {
	out := make([]listingResponse, len(listings))
	for i, l := range listings {
		out[i] = listingResponse{
			ID:          l.ID,
			Name:        l.Name,
			Price:       l.Price,
			PriceEth:    domain.FormatEther(l.Price),
			Image:       l.Image,
			Description: l.Description,
		}
	}
	return out
}
