// Package main implements the dispatch engine API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"github.com/haulcore/dispatch-engine/engine/dispatch"
	"github.com/haulcore/dispatch-engine/engine/market"
	"github.com/haulcore/dispatch-engine/pkg/fn"
	"github.com/haulcore/dispatch-engine/pkg/mid"
)

// Config holds all environment-based configuration.
type Config struct {
	Port          string
	NATSURL       string
	CORSOrigin    string
	MonitorPeriod time.Duration
	MarketSeed    int64
}

func loadConfig() Config {
	return Config{
		Port:          envOr("PORT", "8080"),
		NATSURL:       envOr("NATS_URL", ""),
		CORSOrigin:    envOr("CORS_ORIGIN", "*"),
		MonitorPeriod: envDurationOr("MONITOR_PERIOD", market.DefaultPeriod),
		MarketSeed:    envInt64Or("MARKET_SEED", 0),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envInt64Or(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func main() {
	godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := loadConfig()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Connect to NATS (optional) ---
	var nc *nats.Conn
	if cfg.NATSURL != "" {
		result := fn.Retry(ctx, fn.DefaultRetry, func(context.Context) fn.Result[*nats.Conn] {
			conn, err := nats.Connect(cfg.NATSURL, nats.Name("dispatch-api"))
			if err != nil {
				logger.Warn("nats connect failed, retrying", "url", cfg.NATSURL, "err", err)
				return fn.Err[*nats.Conn](err)
			}
			return fn.Ok(conn)
		})
		conn, err := result.Unwrap()
		if err != nil {
			return fmt.Errorf("connect nats: %w", err)
		}
		nc = conn
		defer nc.Drain()
	} else {
		logger.Info("no NATS_URL configured, running without ingestion or advisory")
	}

	// --- Build dispatch service ---
	svc := dispatch.New(dispatch.Config{
		NATS:       nc,
		Logger:     logger,
		Monitor:    market.MonitorOptions{Period: cfg.MonitorPeriod},
		MarketSeed: cfg.MarketSeed,
	})
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	if envOr("SEED_DEMO_DATA", "") == "true" {
		seedDemoData(svc, logger)
	}

	// --- Build HTTP server ---
	mux := newMux(svc, logger)

	handler := mid.Chain(mux,
		mid.Recover(logger),
		mid.RequestID(),
		mid.Logger(logger),
		mid.Metrics(svc.Metrics),
		mid.CORS(cfg.CORSOrigin),
		mid.OTel("dispatch-api"),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful shutdown ---
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}
