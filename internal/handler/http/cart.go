package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomasherrera27/crypto-mart/internal/domain"
	"github.com/tomasherrera27/crypto-mart/internal/service"
	"github.com/tomasherrera27/crypto-mart/pkg/httputil"
	"github.com/tomasherrera27/crypto-mart/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding a listing to the cart.
type AddItemRequest struct {
	ListingID string `json:"listing_id" validate:"required"`
}

// UpdateQuantityRequest is the JSON request body for updating an item's quantity.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"lte=100"`
}

// cartResponse is the cart as served to clients, with derived totals.
type cartResponse struct {
	SessionID  string             `json:"session_id"`
	Items      []cartItemResponse `json:"items"`
	TotalItems int                `json:"total_items"`
	TotalWei   string             `json:"total_wei"`
	TotalEth   string             `json:"total_eth"`
}

type cartItemResponse struct {
	listingResponse
	Quantity int `json:"quantity"`
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := sessionIDFromContext(r.Context())

	cart, err := h.service.GetCart(r.Context(), sessionID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toCartResponse(cart)})
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := sessionIDFromContext(r.Context())

	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		writeBodyError(w, err)
		return
	}

	cart, err := h.service.AddItem(r.Context(), sessionID, req.ListingID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toCartResponse(cart)})
}

// UpdateItemQuantity handles PUT /api/v1/cart/items/{listingId}
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := sessionIDFromContext(r.Context())

	listingID := chi.URLParam(r, "listingId")
	if listingID == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "listingId is required"},
		})
		return
	}

	var req UpdateQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		writeBodyError(w, err)
		return
	}

	cart, err := h.service.SetQuantity(r.Context(), sessionID, listingID, req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toCartResponse(cart)})
}

// RemoveItem handles DELETE /api/v1/cart/items/{listingId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := sessionIDFromContext(r.Context())

	listingID := chi.URLParam(r, "listingId")
	if listingID == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "listingId is required"},
		})
		return
	}

	cart, err := h.service.RemoveItem(r.Context(), sessionID, listingID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toCartResponse(cart)})
}

// Checkout handles POST /api/v1/cart/checkout
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := sessionIDFromContext(r.Context())

	quote, err := h.service.Checkout(r.Context(), sessionID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{Data: quote})
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := sessionIDFromContext(r.Context())

	if err := h.service.ClearCart(r.Context(), sessionID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "cleared"}})
}

// --- Helpers ---

// writeBodyError maps request-body failures onto the envelope: tag
// violations get the field map, anything else is a malformed body.
func writeBodyError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		httputil.WriteValidationError(w, valErr)
		return
	}
	httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
		Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
	})
}

func toCartResponse(cart *domain.Cart) cartResponse {
	items := make([]cartItemResponse, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = cartItemResponse{
			listingResponse: listingResponse{
				ID:          item.ID,
				Name:        item.Name,
				Price:       item.Price,
				PriceEth:    domain.FormatEther(item.Price),
				Image:       item.Image,
				Description: item.Description,
			},
			Quantity: item.Quantity,
		}
	}

	totalWei := cart.TotalWei()
	return cartResponse{
		SessionID:  cart.SessionID,
		Items:      items,
		TotalItems: cart.TotalItems(),
		TotalWei:   totalWei.String(),
		TotalEth:   domain.FormatEtherWei(totalWei),
	}
}
