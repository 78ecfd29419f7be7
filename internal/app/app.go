package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tomasherrera27/crypto-mart/internal/config"
	"github.com/tomasherrera27/crypto-mart/internal/event"
	handler "github.com/tomasherrera27/crypto-mart/internal/handler/http"
	"github.com/tomasherrera27/crypto-mart/internal/repository/memory"
	"github.com/tomasherrera27/crypto-mart/internal/repository/opensea"
	redisrepo "github.com/tomasherrera27/crypto-mart/internal/repository/redis"
	"github.com/tomasherrera27/crypto-mart/internal/repository/walletrpc"
	"github.com/tomasherrera27/crypto-mart/internal/service"
	"github.com/tomasherrera27/crypto-mart/pkg/health"
	"github.com/tomasherrera27/crypto-mart/pkg/httpclient"
	pkgkafka "github.com/tomasherrera27/crypto-mart/pkg/kafka"
	"github.com/tomasherrera27/crypto-mart/pkg/middleware"
	"github.com/tomasherrera27/crypto-mart/pkg/tracing"
)

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "storefront",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize Redis client.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("addr", cfg.RedisAddr),
		slog.Int("db", cfg.RedisDB),
	)

	// Initialize Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Upstream marketplace client behind a circuit breaker.
	openseaHTTP := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultCircuitBreakerConfig("opensea"),
		logger,
	)
	listingSource := opensea.NewClient(openseaHTTP, cfg.OpenSeaBaseURL, cfg.OpenSeaAPIKey, cfg.OpenSeaAssetOwner, logger)

	// Wallet provider over JSON-RPC.
	walletProvider := walletrpc.NewProvider(httpclient.New(httpclient.DefaultConfig()), cfg.WalletRPCURL, logger)

	// Build the dependency graph.
	listingCache := redisrepo.NewListingCache(rdb)
	flagStore := redisrepo.NewFlagStore(rdb)
	cartStore := memory.NewCartStore()
	eventProducer := event.NewProducer(producer, logger)

	catalogService := service.NewCatalogService(listingSource, listingCache, cfg.ListingCacheTTL, logger)
	cartService := service.NewCartService(cartStore, catalogService, eventProducer, logger)
	walletService := service.NewWalletService(walletProvider, flagStore, eventProducer, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthHandler.Register("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	// CORS derives the allowed origin list from configuration.
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	corsCfg.Environment = cfg.Environment

	// HTTP router.
	router := handler.NewRouter(handler.RouterConfig{
		Catalog:       catalogService,
		Cart:          cartService,
		Wallet:        walletService,
		HealthHandler: healthHandler,
		Logger:        logger,
		CORS:          corsCfg,
		PprofCIDRs:    cfg.PprofAllowedCIDRs,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		rdb:            rdb,
		producer:       producer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	// Flush pending trace spans.
	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(shutdownCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}

	// Close Kafka producer.
	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	// Close Redis client.
	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
