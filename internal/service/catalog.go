package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/tomasherrera27/crypto-mart/internal/domain"
	"github.com/tomasherrera27/crypto-mart/internal/repository"
	apperrors "github.com/tomasherrera27/crypto-mart/pkg/errors"
)

// FetchState is the lifecycle state of the listing catalog.
type FetchState string

const (
	StateNotLoaded FetchState = "not-loaded"
	StateLoading   FetchState = "loading"
	StateLoaded    FetchState = "loaded"
	StateError     FetchState = "error"
)

// CatalogService owns the listing retrieval lifecycle. It fetches listings
// from the upstream source, caches them, and exposes the current set.
//
// At most one retrieval is in flight at a time: a reload issued while one
// is running joins the in-flight call instead of starting a second upstream
// request. A retrieval that resolves after a newer one was issued is
// discarded, only the most recent request's result is kept.
type CatalogService struct {
	source repository.ListingSource
	cache  repository.ListingCache
	ttl    time.Duration
	logger *slog.Logger

	mu       sync.Mutex
	state    FetchState
	listings []domain.Listing
	loadedAt time.Time
	lastErr  error
	inflight chan struct{}
	seq      uint64
}

// NewCatalogService creates a catalog service. ttl bounds how long a loaded
// listing set is served before the next read triggers a refresh.
func NewCatalogService(source repository.ListingSource, cache repository.ListingCache, ttl time.Duration, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		source: source,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
		state:  StateNotLoaded,
	}
}

// State returns the current fetch state and, when in the error state, the
// retained fetch error.
func (s *CatalogService) State() (FetchState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.lastErr
}

// Listings returns the current listing set, fetching it first when the
// catalog is not loaded or the loaded set has gone stale.
func (s *CatalogService) Listings(ctx context.Context) ([]domain.Listing, error) {
	s.mu.Lock()
	if s.state == StateLoaded && time.Since(s.loadedAt) < s.ttl {
		listings := s.listings
		s.mu.Unlock()
		return listings, nil
	}
	s.mu.Unlock()

	return s.reload(ctx, false)
}

// Reload forces a fresh fetch from the upstream source, bypassing the cache.
// A reload issued while another fetch is in flight joins that fetch.
func (s *CatalogService) Reload(ctx context.Context) ([]domain.Listing, error) {
	return s.reload(ctx, true)
}

// Search returns the listings whose name contains term, case-insensitively.
// An empty term returns the full set.
func (s *CatalogService) Search(ctx context.Context, term string) ([]domain.Listing, error) {
	listings, err := s.Listings(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FilterByName(listings, term), nil
}

// Find returns the listing with the given id from the current set.
func (s *CatalogService) Find(ctx context.Context, id string) (domain.Listing, error) {
	listings, err := s.Listings(ctx)
	if err != nil {
		return domain.Listing{}, err
	}
	for _, l := range listings {
		if l.ID == id {
			return l, nil
		}
	}
	return domain.Listing{}, apperrors.NotFound("listing", id)
}

func (s *CatalogService) reload(ctx context.Context, bypassCache bool) ([]domain.Listing, error) {
	s.mu.Lock()
	if ch := s.inflight; ch != nil {
		// Join the in-flight fetch rather than racing it.
		s.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.state == StateLoaded {
			return s.listings, nil
		}
		return nil, s.lastErr
	}

	s.seq++
	token := s.seq
	s.state = StateLoading
	ch := make(chan struct{})
	s.inflight = ch
	s.mu.Unlock()

	// The fetch is shared with every joined caller, so it runs detached
	// from the owning request's context: one client disconnecting must not
	// fail the others or push the catalog into the error state.
	listings, err := s.fetch(context.WithoutCancel(ctx), bypassCache)
	return s.resolve(token, ch, listings, err)
}

// fetch reads through the cache unless told to bypass it, then falls back
// to the upstream source and repopulates the cache on success.
func (s *CatalogService) fetch(ctx context.Context, bypassCache bool) ([]domain.Listing, error) {
	if !bypassCache {
		cached, err := s.cache.Get(ctx)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "listing cache read failed",
				slog.String("error", err.Error()),
			)
		}
	}

	listings, err := s.source.FetchListings(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, listings, s.ttl); err != nil {
		s.logger.WarnContext(ctx, "listing cache write failed",
			slog.String("error", err.Error()),
		)
	}

	return listings, nil
}

func (s *CatalogService) resolve(token uint64, ch chan struct{}, listings []domain.Listing, err error) ([]domain.Listing, error) {
	s.mu.Lock()
	defer func() {
		close(ch)
		s.mu.Unlock()
	}()

	if s.inflight == ch {
		s.inflight = nil
	}

	if token != s.seq {
		// A newer retrieval was issued; this result is stale.
		return listings, err
	}

	if err != nil {
		listingFetchesTotal.WithLabelValues("error").Inc()
		s.state = StateError
		s.lastErr = err
		s.listings = nil
		s.logger.Error("listing fetch failed", slog.String("error", err.Error()))
		return nil, err
	}

	listingFetchesTotal.WithLabelValues("success").Inc()
	s.state = StateLoaded
	s.lastErr = nil
	s.listings = listings
	s.loadedAt = time.Now()
	s.logger.Info("listing catalog loaded", slog.Int("count", len(listings)))
	return listings, nil
}
