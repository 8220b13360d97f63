package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"storefront-checkout/db"
)

// Cart storage backends
const (
	StoreBolt   = "bolt"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Config is the process configuration, read from the environment
type Config struct {
	Env      string `env:"ENV"       envDefault:"development"`
	Port     string `env:"PORT"      envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Currency    string `env:"STORE_CURRENCY" envDefault:"CAD"`
	CatalogPath string `env:"CATALOG_PATH"   envDefault:"catalog.json"`

	DatabaseURL string `env:"DATABASE_URL"`
	DBHost      string `env:"DB_HOST"`
	DBPort      string `env:"DB_PORT"`
	DBUser      string `env:"DB_USER"`
	DBPassword  string `env:"DB_PASSWORD"`
	DBName      string `env:"DB_NAME"`
	DBSSLMode   string `env:"DB_SSLMODE"`

	CartStore     string `env:"CART_STORE"     envDefault:"bolt"`
	CartDBPath    string `env:"CART_DB_PATH"   envDefault:"cart.db"`
	SnapshotStore string `env:"SNAPSHOT_STORE" envDefault:"memory"`
	RedisAddr     string `env:"REDIS_ADDR"`
	CartCacheSize int    `env:"CART_CACHE_SIZE" envDefault:"10000"`

	SnapshotTTL time.Duration `env:"CHECKOUT_SNAPSHOT_TTL"  envDefault:"30m"`
	QuoteTTL    time.Duration `env:"QUOTE_TTL"              envDefault:"15m"`
	QuoteSecret string        `env:"QUOTE_SIGNATURE_SECRET"`

	CheckoutAPIURL     string        `env:"CHECKOUT_API_URL"`
	CheckoutAPITimeout time.Duration `env:"CHECKOUT_API_TIMEOUT" envDefault:"10s"`
	CheckoutSuccessURL string        `env:"CHECKOUT_SUCCESS_URL"`
	CheckoutCancelURL  string        `env:"CHECKOUT_CANCEL_URL"`

	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load parses the environment into a Config and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks combinations the struct tags cannot express
func (c *Config) Validate() error {
	for name, backend := range map[string]string{"CART_STORE": c.CartStore, "SNAPSHOT_STORE": c.SnapshotStore} {
		switch backend {
		case StoreBolt, StoreRedis, StoreMemory:
		default:
			return fmt.Errorf("%s must be one of bolt, redis, memory (got %q)", name, backend)
		}
		if backend == StoreRedis && c.RedisAddr == "" {
			return fmt.Errorf("%s=redis requires REDIS_ADDR", name)
		}
	}
	if c.SnapshotStore == StoreBolt {
		return fmt.Errorf("SNAPSHOT_STORE must be session scoped: use redis or memory")
	}
	if c.IsProduction() && c.QuoteSecret == "" {
		return fmt.Errorf("QUOTE_SIGNATURE_SECRET is required in production")
	}
	return nil
}

// IsProduction reports whether ENV=production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Database returns the catalog database settings
func (c *Config) Database() db.Settings {
	return db.Settings{
		URL:      c.DatabaseURL,
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		Name:     c.DBName,
		SSLMode:  c.DBSSLMode,
	}
}
