package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomasherrera27/crypto-mart/internal/repository"
	"github.com/tomasherrera27/crypto-mart/internal/service"
)

const testAccount = "0x8f3Cf7ad23Cd3CaDbD9735AFf958023239c6A063"

// fakeWalletProvider implements repository.WalletProvider with scripted
// responses, including the Deactivator capability.
type fakeWalletProvider struct {
	activateAccounts []string
	activateErr      error
	silentAccounts   []string
	deactivateErr    error
}

func (f *fakeWalletProvider) Activate(context.Context) ([]string, error) {
	return f.activateAccounts, f.activateErr
}

func (f *fakeWalletProvider) ActivateSilently(context.Context) ([]string, error) {
	return f.silentAccounts, nil
}

func (f *fakeWalletProvider) Reset(context.Context) error { return nil }

func (f *fakeWalletProvider) Deactivate(context.Context) error { return f.deactivateErr }

type memFlags struct {
	mu    sync.Mutex
	flags map[string]bool
}

func (f *memFlags) SetFlag(_ context.Context, sessionID, name string, value bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flags[sessionID+":"+name] = value
	return nil
}

func (f *memFlags) GetFlag(_ context.Context, sessionID, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flags[sessionID+":"+name], nil
}

func setupWalletRouter(provider repository.WalletProvider) *chi.Mux {
	flags := &memFlags{flags: make(map[string]bool)}
	svc := service.NewWalletService(provider, flags, testEventProducer(), testLogger())
	handler := NewWalletHandler(svc, testLogger())

	r := chi.NewRouter()
	r.Route("/api/v1/wallet", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(SessionIDFromHeader)

		r.Get("/", handler.GetSession)
		r.Delete("/", handler.Disconnect)
		r.Post("/connect", handler.Connect)
	})
	return r
}

func decodeWallet(t *testing.T, rec *httptest.ResponseRecorder) walletResponse {
	t.Helper()
	var resp struct {
		Data walletResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Data
}

func TestWalletGetSession_DefaultDisconnected(t *testing.T) {
	router := setupWalletRouter(&fakeWalletProvider{})

	rec := doWallet(t, router, http.MethodGet, "/api/v1/wallet", "sess-1")

	assert.Equal(t, http.StatusOK, rec.Code)
	got := decodeWallet(t, rec)
	assert.Equal(t, "disconnected", got.Status)
	assert.Empty(t, got.Account)
}

func TestWalletConnect_Success(t *testing.T) {
	router := setupWalletRouter(&fakeWalletProvider{activateAccounts: []string{testAccount}})

	rec := doWallet(t, router, http.MethodPost, "/api/v1/wallet/connect", "sess-1")

	assert.Equal(t, http.StatusOK, rec.Code)
	got := decodeWallet(t, rec)
	assert.Equal(t, "connected", got.Status)
	assert.Equal(t, testAccount, got.Account)
	assert.Equal(t, "0x8f3C…A063", got.DisplayAccount)
	assert.Nil(t, got.LastError)
}

func TestWalletConnect_RejectedIsStateNotTransportError(t *testing.T) {
	router := setupWalletRouter(&fakeWalletProvider{
		activateErr: &repository.ProviderError{Code: 4001, Message: "User rejected the request."},
	})

	rec := doWallet(t, router, http.MethodPost, "/api/v1/wallet/connect", "sess-1")

	assert.Equal(t, http.StatusOK, rec.Code)
	got := decodeWallet(t, rec)
	assert.Equal(t, "disconnected", got.Status)
	require.NotNil(t, got.LastError)
	assert.Equal(t, "wallet_rejected", string(got.LastError.Kind))
}

func TestWalletDisconnect_Success(t *testing.T) {
	router := setupWalletRouter(&fakeWalletProvider{activateAccounts: []string{testAccount}})

	doWallet(t, router, http.MethodPost, "/api/v1/wallet/connect", "sess-1")
	rec := doWallet(t, router, http.MethodDelete, "/api/v1/wallet", "sess-1")

	assert.Equal(t, http.StatusOK, rec.Code)
	got := decodeWallet(t, rec)
	assert.Equal(t, "disconnected", got.Status)
	assert.Empty(t, got.Account)
}

func TestWallet_MissingSessionHeader(t *testing.T) {
	router := setupWalletRouter(&fakeWalletProvider{})

	rec := doWallet(t, router, http.MethodGet, "/api/v1/wallet", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func doWallet(t *testing.T, router *chi.Mux, method, path, sessionID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if sessionID != "" {
		req.Header.Set("X-Session-ID", sessionID)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}
