package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/tomasherrera27/crypto-mart/pkg/config"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`

	// OpenSea upstream
	OpenSeaBaseURL    string        `env:"OPENSEA_BASE_URL" envDefault:"https://api.opensea.io"`
	OpenSeaAPIKey     string        `env:"OPENSEA_API_KEY" envDefault:""`
	OpenSeaAssetOwner string        `env:"OPENSEA_ASSET_OWNER" envDefault:""`
	ListingCacheTTL   time.Duration `env:"LISTING_CACHE_TTL" envDefault:"5m"`

	// Wallet provider JSON-RPC endpoint
	WalletRPCURL string `env:"WALLET_RPC_URL" envDefault:"http://localhost:8545"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// OpenTelemetry tracing
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// pprof endpoint access control
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.OpenSeaBaseURL == "" {
		return fmt.Errorf("OPENSEA_BASE_URL is required")
	}
	if c.ListingCacheTTL <= 0 {
		return fmt.Errorf("LISTING_CACHE_TTL must be positive, got %s", c.ListingCacheTTL)
	}
	if c.OTELSampleRate < 0.0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}
