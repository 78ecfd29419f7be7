package domain

// WalletStatus is the connection state of the wallet session.
type WalletStatus string

const (
	WalletDisconnected WalletStatus = "disconnected"
	WalletConnecting   WalletStatus = "connecting"
	WalletConnected    WalletStatus = "connected"
)

// WalletErrorKind classifies wallet provider failures.
type WalletErrorKind string

const (
	// WalletRejected: the user declined the connection prompt (code 4001).
	WalletRejected WalletErrorKind = "wallet_rejected"

	// WalletRequestPending: a prior request is still open in the provider
	// UI (code -32002).
	WalletRequestPending WalletErrorKind = "wallet_request_pending"

	// WalletUnavailable: no provider detected or the provider endpoint is
	// unreachable.
	WalletUnavailable WalletErrorKind = "wallet_unavailable"

	// WalletGenericError: any other provider failure.
	WalletGenericError WalletErrorKind = "wallet_error"
)

// WalletError is a classified, user-presentable wallet failure.
type WalletError struct {
	Kind    WalletErrorKind `json:"kind"`
	Message string          `json:"message"`
}

func (e *WalletError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// WalletSession is a snapshot of the wallet connection state.
type WalletSession struct {
	Status         WalletStatus `json:"status"`
	Account        string       `json:"account,omitempty"`
	DisplayAccount string       `json:"display_account,omitempty"`
	LastError      *WalletError `json:"last_error,omitempty"`
}

// TruncateAddress shortens a wallet address for display: the first 6 and
// last 4 characters joined by an ellipsis, e.g. "0xABCD…1234". Addresses
// too short to truncate are returned unchanged.
func TruncateAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
