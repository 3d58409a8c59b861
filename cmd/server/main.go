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

	"restaurant-orders/config"
	"restaurant-orders/internal/cache"
	"restaurant-orders/internal/events"
	"restaurant-orders/internal/handler"
	"restaurant-orders/internal/service"
	"restaurant-orders/internal/utils"
	"restaurant-orders/pkg/database"
	"restaurant-orders/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	// 1. Load Configuration
	if err := config.LoadConfig(); err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	cfg := config.AppConfig

	log := logger.New("restaurant-orders", cfg.Server.Env)
	slog.SetDefault(log)
	cfg.LogSummary(log)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to Database
	db, err := database.Connect(cfg.Database, log, cfg.IsDevelopment())
	if err != nil {
		return err
	}

	// 3. Auto-Migrate Models
	log.Info("running migrations")
	if err := database.Migrate(db); err != nil {
		return err
	}

	// 3a. Seed Data
	if err := database.SeedAdmin(db, cfg.Defaults, log); err != nil {
		return err
	}
	if cfg.Defaults.SeedDemoData {
		if err := database.SeedDemoData(db, log); err != nil {
			return err
		}
	}

	publisher, err := events.New(cfg.Events)
	if err != nil {
		return err
	}
	defer publisher.Close()

	orderCache, closeCache, err := newOrderCache(ctx, cfg.Cache, log)
	if err != nil {
		return err
	}
	defer closeCache()

	tokens := utils.NewTokenIssuer(cfg.Server.JWTSecret, time.Duration(cfg.Server.JWTExpirationHours)*time.Hour)

	// 4. Initialize Router
	router := handler.NewRouter(handler.Services{
		Orders:  service.NewOrderService(db, publisher, orderCache, log, cfg.Defaults.OrderPrefix),
		Catalog: service.NewCatalogService(db, orderCache),
		Tables:  service.NewTableService(db, orderCache),
		Users:   service.NewUserService(db, tokens, log),
		Tokens:  tokens,
	}, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 5. Start Server
	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newOrderCache connects to Redis when REDIS_ADDR is set and falls back to
// an in-process cache otherwise.
func newOrderCache(ctx context.Context, cfg config.CacheConfig, log *slog.Logger) (cache.OrderCache, func(), error) {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR not set, using in-memory order cache")
		return cache.NewMemory(ttl), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	log.Info("redis order cache connected", slog.String("addr", cfg.RedisAddr))
	return cache.NewRedisOrderCache(client, ttl), func() { _ = client.Close() }, nil
}
