package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"storefront-checkout/app"
	"storefront-checkout/config"
	"storefront-checkout/telemetry"
	"storefront-checkout/utils"
)

func main() {
	// Load .env file in development (ignores error if file doesn't exist)
	// In production, variables should be set directly
	if os.Getenv("ENV") != "production" {
		if err := godotenv.Overload(".env"); err != nil {
			logrus.Infof("No .env file loaded, using system environment variables: %v", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("❌ Invalid configuration: %v", err)
	}
	log := utils.NewLogger(cfg.LogLevel, cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.InitTracerProvider(ctx, cfg.OTLPEndpoint)
	if err != nil {
		log.Warnf("⚠️ Tracing disabled: %v", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				log.Warnf("⚠️ Error shutting down tracer provider: %v", err)
			}
		}()
	}

	// Initialize application
	application, err := app.Initialize(ctx, cfg, log)
	if err != nil {
		log.Fatal(err)
	}
	defer application.Close()

	// Listen on 0.0.0.0 to accept connections from all interfaces
	addr := "0.0.0.0:" + strings.TrimPrefix(cfg.Port, ":")
	srv := &http.Server{
		Addr:              addr,
		Handler:           application.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Infof("🚀 Server starting on %s (currency %s)", addr, cfg.Currency)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Errorf("❌ Server failed: %v", err)
	}
}
