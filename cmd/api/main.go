package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lbo-analyzer/internal/api"
	"lbo-analyzer/internal/api/handlers"
	"lbo-analyzer/internal/cache"
	"lbo-analyzer/internal/config"
	"lbo-analyzer/internal/lbo"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.LoadServer()
	if err != nil {
		slog.Error("invalid server configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	store, pinger, closeStore := openStore(cfg, logger)
	defer closeStore()

	router := api.NewRouter(api.Deps{
		Memo:        cache.NewMemo(lbo.New(), store, cfg.CacheTTL, logger),
		PresetDir:   cfg.PresetDir,
		GridWorkers: cfg.GridWorkers,
		CORSOrigins: cfg.CORSOrigins,
		StaticDir:   cfg.StaticDir,
		Cache:       pinger,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting API server",
			slog.String("addr", srv.Addr),
			slog.String("env", cfg.Env),
			slog.String("cache", cfg.CacheBackend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}

// openStore picks the result cache backend. A Redis backend that cannot be
// reached at startup is still used; runs fall back to computing on every miss.
func openStore(cfg *config.ServerConfig, logger *slog.Logger) (cache.Store, handlers.Pinger, func()) {
	switch cfg.CacheBackend {
	case config.CacheRedis:
		rs := cache.NewRedisStore(&redis.Options{Addr: cfg.RedisAddr}, cfg.RedisPrefix)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rs.Ping(ctx); err != nil {
			logger.Warn("redis unreachable at startup", slog.String("addr", cfg.RedisAddr), slog.Any("error", err))
		}
		return rs, rs, func() { _ = rs.Close() }
	case config.CacheNone:
		return nil, nil, func() {}
	default:
		ms := cache.NewMemoryStore(cache.DefaultCleanupInterval)
		return ms, nil, func() { _ = ms.Close() }
	}
}
