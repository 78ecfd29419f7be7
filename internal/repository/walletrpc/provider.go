package walletrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/tomasherrera27/crypto-mart/internal/repository"
	"github.com/tomasherrera27/crypto-mart/pkg/httpclient"
)

// Provider implements repository.WalletProvider (and the optional
// repository.Deactivator capability) against a JSON-RPC wallet endpoint.
type Provider struct {
	http    *httpclient.Client
	url     string
	logger  *slog.Logger
	reqID   atomic.Int64
}

// NewProvider creates a wallet provider talking JSON-RPC to the given URL.
func NewProvider(client *httpclient.Client, url string, logger *slog.Logger) *Provider {
	return &Provider{
		http:   client,
		url:    url,
		logger: logger,
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Activate prompts the wallet for a connection and returns the granted
// accounts. Provider-side refusals surface as *repository.ProviderError
// with the provider's own numeric code.
func (p *Provider) Activate(ctx context.Context) ([]string, error) {
	return p.accounts(ctx, "eth_requestAccounts")
}

// ActivateSilently returns already-authorized accounts without prompting.
func (p *Provider) ActivateSilently(ctx context.Context) ([]string, error) {
	return p.accounts(ctx, "eth_accounts")
}

// Deactivate asks the wallet to revoke the granted permission.
func (p *Provider) Deactivate(ctx context.Context) error {
	params := []any{map[string]any{"eth_accounts": map[string]any{}}}
	_, err := p.call(ctx, "wallet_revokePermissions", params)
	return err
}

// Reset clears local provider session state. The JSON-RPC transport holds
// none, so this always succeeds.
func (p *Provider) Reset(_ context.Context) error {
	return nil
}

func (p *Provider) accounts(ctx context.Context, method string) ([]string, error) {
	result, err := p.call(ctx, method, []any{})
	if err != nil {
		return nil, err
	}

	var accounts []string
	if err := json.Unmarshal(result, &accounts); err != nil {
		return nil, fmt.Errorf("decode %s result: %w", method, err)
	}
	return accounts, nil
}

func (p *Provider) call(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	reqBody, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      p.reqID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal rpc request: %w", err)
	}

	resp, err := p.http.Post(ctx, p.url, "application/json", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("wallet rpc %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wallet rpc %s: unexpected status %d", method, resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("decode rpc response: %w", err)
	}

	if rpcResp.Error != nil {
		p.logger.Debug("wallet rpc call failed",
			slog.String("method", method),
			slog.Int("code", rpcResp.Error.Code),
		)
		return nil, &repository.ProviderError{
			Code:    rpcResp.Error.Code,
			Message: rpcResp.Error.Message,
		}
	}

	return rpcResp.Result, nil
}
