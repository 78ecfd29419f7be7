package http

import (
	"log/slog"
	"net/http"

	"github.com/tomasherrera27/crypto-mart/internal/domain"
	"github.com/tomasherrera27/crypto-mart/internal/service"
	"github.com/tomasherrera27/crypto-mart/pkg/httputil"
)

// WalletHandler handles HTTP requests for wallet session endpoints.
type WalletHandler struct {
	service *service.WalletService
	logger  *slog.Logger
}

// NewWalletHandler creates a new wallet HTTP handler.
func NewWalletHandler(svc *service.WalletService, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{
		service: svc,
		logger:  logger,
	}
}

// walletResponse is the wallet session snapshot as served to clients.
type walletResponse struct {
	Status         string              `json:"status"`
	Account        string              `json:"account,omitempty"`
	DisplayAccount string              `json:"display_account,omitempty"`
	LastError      *domain.WalletError `json:"last_error,omitempty"`
}

// GetSession handles GET /api/v1/wallet
func (h *WalletHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := sessionIDFromContext(r.Context())

	session, err := h.service.Session(r.Context(), sessionID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toWalletResponse(session)})
}

// Connect handles POST /api/v1/wallet/connect. Connect failures are part
// of the session state, not transport errors: the response is 200 with the
// classified error in last_error.
func (h *WalletHandler) Connect(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := sessionIDFromContext(r.Context())

	session, err := h.service.Connect(r.Context(), sessionID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toWalletResponse(session)})
}

// Disconnect handles DELETE /api/v1/wallet
func (h *WalletHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := sessionIDFromContext(r.Context())

	session, err := h.service.Disconnect(r.Context(), sessionID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toWalletResponse(session)})
}

func toWalletResponse(session domain.WalletSession) walletResponse {
	return walletResponse{
		Status:         string(session.Status),
		Account:        session.Account,
		DisplayAccount: session.DisplayAccount,
		LastError:      session.LastError,
	}
}
