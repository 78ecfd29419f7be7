package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomasherrera27/crypto-mart/internal/service"
	"github.com/tomasherrera27/crypto-mart/pkg/health"
	"github.com/tomasherrera27/crypto-mart/pkg/middleware"
)

// RouterConfig bundles the dependencies for the storefront router.
type RouterConfig struct {
	Catalog       *service.CatalogService
	Cart          *service.CartService
	Wallet        *service.WalletService
	HealthHandler *health.Handler
	Logger        *slog.Logger
	CORS          middleware.CORSConfig
	PprofCIDRs    []string
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check endpoints
	r.Get("/health/live", cfg.HealthHandler.LivenessHandler())
	r.Get("/health/ready", cfg.HealthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, cfg.Logger)

	// Listing catalog. Served as a bare array, no envelope and no session
	// requirement: the catalog is the same for everyone.
	listingsHandler := NewListingsHandler(cfg.Catalog, cfg.Logger)
	r.Get("/api/nfts", listingsHandler.GetListings)
	r.Post("/api/nfts/reload", listingsHandler.ReloadListings)

	// Cart endpoints, scoped to the browsing session.
	cartHandler := NewCartHandler(cfg.Cart, cfg.Logger)
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(SessionIDFromHeader)

		r.Get("/", cartHandler.GetCart)
		r.Delete("/", cartHandler.ClearCart)

		r.Post("/items", cartHandler.AddItem)
		r.Put("/items/{listingId}", cartHandler.UpdateItemQuantity)
		r.Delete("/items/{listingId}", cartHandler.RemoveItem)

		r.Post("/checkout", cartHandler.Checkout)
	})

	// Wallet session endpoints.
	walletHandler := NewWalletHandler(cfg.Wallet, cfg.Logger)
	r.Route("/api/v1/wallet", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(SessionIDFromHeader)

		r.Get("/", walletHandler.GetSession)
		r.Delete("/", walletHandler.Disconnect)
		r.Post("/connect", walletHandler.Connect)
	})

	return r
}
