package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gustimaulan/fb-marketing-dash/internal/cache"
	"github.com/gustimaulan/fb-marketing-dash/internal/config"
	"github.com/gustimaulan/fb-marketing-dash/internal/dashboard"
	"github.com/gustimaulan/fb-marketing-dash/internal/database"
	"github.com/gustimaulan/fb-marketing-dash/internal/fetch"
	"github.com/gustimaulan/fb-marketing-dash/internal/httpserver"
	"github.com/gustimaulan/fb-marketing-dash/internal/metrics"
	"github.com/gustimaulan/fb-marketing-dash/internal/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg)
	defer logger.Sync()

	logger.Info("starting marketing dashboard",
		zap.String("env", cfg.Server.Env),
		zap.String("addr", cfg.Server.Addr),
		zap.String("cache_backend", cfg.Cache.Backend),
	)

	ctx := context.Background()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.NewMetrics("mkdash")
	}

	// Pick the cache store. A missing Redis or Postgres degrades to
	// the in-memory store rather than refusing to start.
	store := newCacheStore(ctx, cfg, logger)

	cacheSvc := cache.NewService(store, cfg.Cache.TTL, logger,
		cache.WithMetrics(m),
		cache.WithDedupWindow(cfg.Cache.DedupWindow),
	)

	client := fetch.NewClient(cfg.Sources.FetchTimeout, logger, m)
	dashSvc := dashboard.NewService(cfg, cacheSvc, client, logger, m)

	// Create HTTP server
	handler := httpserver.NewServer(&httpserver.Dependencies{
		Dashboard: dashSvc,
		Cache:     cacheSvc,
		Config:    cfg,
		Logger:    logger,
		Metrics:   m,
	})

	rateLimit := middleware.NewRateLimitMiddleware(cfg.RateLimit, logger)
	rateLimit.SetMetrics(m)

	var h http.Handler = handler
	h = rateLimit.Handler(h)
	h = middleware.NewLoggingMiddleware(logger, m).Handler(h)
	h = middleware.NewRecoveryMiddleware(logger).Handler(h)
	h = middleware.NewRequestIDMiddleware().Handler(h)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

// newCacheStore connects the configured cache backend, falling back to
// memory when the backend is unreachable.
func newCacheStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) cache.Store {
	switch cfg.Cache.Backend {
	case "redis":
		rdb, err := database.NewRedisDB(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis not available, using in-memory cache", zap.Error(err))
			return cache.NewMemoryStore()
		}
		return cache.NewRedisStore(rdb.Client)

	case "postgres":
		db, err := database.NewPostgresDB(ctx, cfg.Database, logger)
		if err != nil {
			logger.Warn("PostgreSQL not available, using in-memory cache", zap.Error(err))
			return cache.NewMemoryStore()
		}
		store, err := cache.NewPostgresStore(ctx, db.Pool)
		if err != nil {
			logger.Warn("cache table setup failed, using in-memory cache", zap.Error(err))
			db.Close()
			return cache.NewMemoryStore()
		}
		return store

	default:
		return cache.NewMemoryStore()
	}
}

func setupLogger(cfg *config.Config) *zap.Logger {
	var zapCfg zap.Config

	if cfg.IsDevelopment() {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	switch cfg.Log.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	logger, err := zapCfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to create logger: %v", err))
	}

	return logger
}
