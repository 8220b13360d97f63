package app

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"storefront-checkout/app/controller"
	"storefront-checkout/app/router"
	"storefront-checkout/checkout"
	"storefront-checkout/config"
	"storefront-checkout/db"
	"storefront-checkout/pricing"
	"storefront-checkout/repository"
	"storefront-checkout/service"
)

// App holds the wired HTTP handler and everything that must be closed on shutdown
type App struct {
	Handler http.Handler
	closers []io.Closer
	carts   *service.CartRegistry
	log     logrus.FieldLogger
}

// Initialize initializes the application
func Initialize(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*App, error) {
	a := &App{log: log}

	// Catalog: Postgres when configured, otherwise the JSON file
	catalogRepo, err := a.catalogRepository(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	cartKV, err := a.keyValueStore(ctx, cfg.CartStore, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize cart store: %w", err)
	}
	snapshotKV, err := a.keyValueStore(ctx, cfg.SnapshotStore, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize snapshot store: %w", err)
	}

	if cfg.QuoteSecret == "" {
		log.Warnf("⚠️ QUOTE_SIGNATURE_SECRET is not set, quotes are signed with an empty key")
	}

	a.carts = service.NewCartRegistry(cartKV, cfg.CartCacheSize, log)
	checkoutService := service.NewCheckoutService(service.CheckoutServiceConfig{
		Catalog:   catalogRepo,
		Engine:    pricing.NewEngine(log),
		Signer:    pricing.NewSigner(cfg.QuoteSecret, cfg.QuoteTTL, nil),
		Sessions:  service.NewCheckoutClient(cfg.CheckoutAPIURL, cfg.CheckoutAPITimeout),
		Snapshots: service.NewSnapshotStore(snapshotKV, cfg.SnapshotTTL, log),
		Redirects: checkout.Redirects{SuccessURL: cfg.CheckoutSuccessURL, CancelURL: cfg.CheckoutCancelURL},
		Log:       log,
	})

	// Create controllers
	controllers := &router.Controllers{
		Cart:     controller.NewCartController(log),
		Checkout: controller.NewCheckoutController(checkoutService, log),
	}

	a.Handler = router.SetupRoutes(controllers, router.NewShopperMiddleware(a.carts, cfg.IsProduction(), log))
	return a, nil
}

func (a *App) catalogRepository(ctx context.Context, cfg *config.Config) (repository.CatalogRepositoryInterface, error) {
	settings := cfg.Database()
	if settings.Configured() {
		if err := db.InitDB(ctx, settings, a.log); err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.closers = append(a.closers, closerFunc(db.CloseDB))
		a.log.Infof("📋 Catalog served from Postgres")
		return repository.NewCatalogRepository(cfg.Currency, a.log), nil
	}

	repo, err := repository.NewCatalogFileRepository(cfg.CatalogPath, cfg.Currency)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog file: %w", err)
	}
	a.log.Infof("📋 Catalog served from %s", cfg.CatalogPath)
	return repo, nil
}

func (a *App) keyValueStore(ctx context.Context, backend string, cfg *config.Config) (repository.KeyValueStoreInterface, error) {
	switch backend {
	case config.StoreBolt:
		store, err := repository.OpenBoltStore(cfg.CartDBPath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store)
		a.log.Infof("✓ Bolt store opened at %s", cfg.CartDBPath)
		return store, nil
	case config.StoreRedis:
		store := repository.NewRedisStore(cfg.RedisAddr)
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, err
		}
		a.closers = append(a.closers, store)
		a.log.Infof("✓ Redis store connected")
		return store, nil
	default:
		return repository.NewMemoryStore(), nil
	}
}

// Close releases open carts, stores and the database connection
func (a *App) Close() {
	if a.carts != nil {
		a.carts.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.log.Warnf("⚠️ Error during shutdown: %v", err)
		}
	}
	a.closers = nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
