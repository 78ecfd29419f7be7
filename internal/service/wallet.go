package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/tomasherrera27/crypto-mart/internal/domain"
	"github.com/tomasherrera27/crypto-mart/internal/event"
	"github.com/tomasherrera27/crypto-mart/internal/repository"
	apperrors "github.com/tomasherrera27/crypto-mart/pkg/errors"
)

// walletConnectedFlag is the persisted per-session "was connected" marker
// consulted for eager reconnection.
const walletConnectedFlag = "wallet_connected"

// WalletService owns per-session wallet connection state. The provider is
// injected, the service itself never reaches for a global.
type WalletService struct {
	provider repository.WalletProvider
	flags    repository.FlagStore
	producer *event.Producer
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[string]*domain.WalletSession
}

// NewWalletService creates a new wallet service.
func NewWalletService(provider repository.WalletProvider, flags repository.FlagStore, producer *event.Producer, logger *slog.Logger) *WalletService {
	return &WalletService{
		provider: provider,
		flags:    flags,
		producer: producer,
		logger:   logger,
		sessions: make(map[string]*domain.WalletSession),
	}
}

// Session returns the current wallet session snapshot. The first time a
// session is seen, a best-effort eager reconnect runs if the persisted
// "was connected" flag is set.
func (s *WalletService) Session(ctx context.Context, sessionID string) (domain.WalletSession, error) {
	if sessionID == "" {
		return domain.WalletSession{}, apperrors.InvalidInput("session id is required")
	}

	s.mu.Lock()
	state, seen := s.sessions[sessionID]
	if seen {
		snapshot := *state
		s.mu.Unlock()
		return snapshot, nil
	}
	state = &domain.WalletSession{Status: domain.WalletDisconnected}
	s.sessions[sessionID] = state
	s.mu.Unlock()

	s.tryReconnect(ctx, sessionID)

	s.mu.Lock()
	snapshot := *s.sessions[sessionID]
	s.mu.Unlock()
	return snapshot, nil
}

// Connect runs the connect state machine: disconnected -> connecting ->
// connected on success, back to disconnected with a classified lastError
// on failure. A connect issued while one is already connecting or
// connected is a guarded no-op returning the current snapshot.
func (s *WalletService) Connect(ctx context.Context, sessionID string) (domain.WalletSession, error) {
	if sessionID == "" {
		return domain.WalletSession{}, apperrors.InvalidInput("session id is required")
	}

	s.mu.Lock()
	state := s.ensureLocked(sessionID)
	if state.Status == domain.WalletConnecting || state.Status == domain.WalletConnected {
		snapshot := *state
		s.mu.Unlock()
		return snapshot, nil
	}
	state.Status = domain.WalletConnecting
	state.LastError = nil
	s.mu.Unlock()

	accounts, err := s.provider.Activate(ctx)

	s.mu.Lock()
	state = s.ensureLocked(sessionID)

	if err == nil && len(accounts) == 0 {
		err = errors.New("provider granted no accounts")
	}
	if err != nil {
		state.Status = domain.WalletDisconnected
		state.LastError = classifyWalletError(err)
		snapshot := *state
		s.mu.Unlock()

		walletConnectsTotal.WithLabelValues(string(snapshot.LastError.Kind)).Inc()
		s.logger.WarnContext(ctx, "wallet connect failed",
			slog.String("session_id", sessionID),
			slog.String("kind", string(snapshot.LastError.Kind)),
		)
		return snapshot, nil
	}

	state.Status = domain.WalletConnected
	state.Account = accounts[0]
	state.DisplayAccount = domain.TruncateAddress(accounts[0])
	state.LastError = nil
	snapshot := *state
	s.mu.Unlock()

	// Flag persistence and event publishing happen outside the lock so one
	// session's slow store or broker cannot stall every other session.
	walletConnectsTotal.WithLabelValues("success").Inc()
	if err := s.flags.SetFlag(ctx, sessionID, walletConnectedFlag, true); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist wallet connected flag",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
	if err := s.producer.PublishWalletConnected(ctx, sessionID, snapshot.Account); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish wallet.connected event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "wallet connected",
		slog.String("session_id", sessionID),
		slog.String("account", snapshot.DisplayAccount),
	)

	return snapshot, nil
}

// Disconnect revokes the provider connection, preferring the provider's
// deactivate capability and falling back to a state reset. On success the
// session returns to disconnected and the persisted flag is cleared; on
// failure the current state is retained with lastError recorded.
func (s *WalletService) Disconnect(ctx context.Context, sessionID string) (domain.WalletSession, error) {
	if sessionID == "" {
		return domain.WalletSession{}, apperrors.InvalidInput("session id is required")
	}

	var err error
	if d, ok := s.provider.(repository.Deactivator); ok {
		err = d.Deactivate(ctx)
	} else {
		err = s.provider.Reset(ctx)
	}

	s.mu.Lock()
	state := s.ensureLocked(sessionID)

	if err != nil {
		state.LastError = classifyWalletError(err)
		snapshot := *state
		s.mu.Unlock()

		s.logger.WarnContext(ctx, "wallet disconnect failed",
			slog.String("session_id", sessionID),
			slog.String("kind", string(snapshot.LastError.Kind)),
		)
		return snapshot, nil
	}

	state.Status = domain.WalletDisconnected
	state.Account = ""
	state.DisplayAccount = ""
	state.LastError = nil
	snapshot := *state
	s.mu.Unlock()

	// Clearing the flag is session-local I/O; keep it outside the lock.
	if err := s.flags.SetFlag(ctx, sessionID, walletConnectedFlag, false); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear wallet connected flag",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "wallet disconnected",
		slog.String("session_id", sessionID),
	)

	return snapshot, nil
}

// tryReconnect attempts a silent activation when the persisted flag says
// the session was previously connected. Failures are logged, never
// surfaced: startup reconnection is best-effort.
func (s *WalletService) tryReconnect(ctx context.Context, sessionID string) {
	wasConnected, err := s.flags.GetFlag(ctx, sessionID, walletConnectedFlag)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to read wallet connected flag",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		return
	}
	if !wasConnected {
		return
	}

	accounts, err := s.provider.ActivateSilently(ctx)
	if err != nil || len(accounts) == 0 {
		if err != nil {
			s.logger.InfoContext(ctx, "eager wallet reconnect failed",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.ensureLocked(sessionID)
	state.Status = domain.WalletConnected
	state.Account = accounts[0]
	state.DisplayAccount = domain.TruncateAddress(accounts[0])
	state.LastError = nil

	s.logger.InfoContext(ctx, "wallet eagerly reconnected",
		slog.String("session_id", sessionID),
		slog.String("account", state.DisplayAccount),
	)
}

// ensureLocked returns the session state, creating a disconnected one if
// missing. Callers must hold s.mu.
func (s *WalletService) ensureLocked(sessionID string) *domain.WalletSession {
	state, ok := s.sessions[sessionID]
	if !ok {
		state = &domain.WalletSession{Status: domain.WalletDisconnected}
		s.sessions[sessionID] = state
	}
	return state
}

// classifyWalletError maps provider failures onto the wallet error
// taxonomy. Coded provider errors take precedence, transport failures
// read as the provider being unavailable.
func classifyWalletError(err error) *domain.WalletError {
	var provErr *repository.ProviderError
	if errors.As(err, &provErr) {
		switch provErr.Code {
		case 4001:
			return &domain.WalletError{
				Kind:    domain.WalletRejected,
				Message: "connection request was rejected",
			}
		case -32002:
			return &domain.WalletError{
				Kind:    domain.WalletRequestPending,
				Message: "a connection request is already pending",
			}
		default:
			return &domain.WalletError{
				Kind:    domain.WalletGenericError,
				Message: provErr.Message,
			}
		}
	}

	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return &domain.WalletError{
			Kind:    domain.WalletUnavailable,
			Message: "wallet provider is unreachable",
		}
	}

	return &domain.WalletError{
		Kind:    domain.WalletGenericError,
		Message: err.Error(),
	}
}
