package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"docconv/internal/auth"
	"docconv/internal/config"
	"docconv/internal/http/server"
	"docconv/internal/infra/chrome"
	"docconv/internal/infra/logging"
	"docconv/internal/infra/postgres"
)

func main() {
	cfg := config.Load()
	logging.InitLogger(
		cfg.Logger.File,
		cfg.Logger.MaxSizeMB,
		cfg.Logger.MaxBackups,
		cfg.Logger.MaxAgeDays,
		cfg.Logger.Compress,
		cfg.Logger.Level,
	)
	logging.SetLogLevel(cfg.Logger.Level)

	var rdb *redis.Client
	if cfg.Cache.RedisHost != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr: cfg.Cache.RedisHost,
			DB:   cfg.Cache.ResultCacheDB,
		})
		defer rdb.Close()
	}

	idleConnsClosed := make(chan struct{})

	pg := postgres.NewDB()
	defer pg.Close()
	tokens := loadTokens(cfg, pg, idleConnsClosed)

	renderer := chrome.NewRenderer(cfg)
	defer renderer.Close()

	app := server.New(server.Deps{
		Config:   cfg,
		Redis:    rdb,
		Tokens:   tokens,
		Renderer: renderer,
	})

	startServer(app, cfg, idleConnsClosed)
	<-idleConnsClosed
}

// loadTokens returns nil when no Postgres DSN is configured, which disables
// API key auth. A failed first load leaves the store unready; the refresher
// keeps retrying.
func loadTokens(cfg config.Config, pg *postgres.DB, stop chan struct{}) *auth.Store {
	if cfg.Auth.PostgresDSN == "" {
		logging.Info("No postgres_dsn configured, API key auth disabled")
		return nil
	}
	tokens := auth.NewStore()

	db, err := pg.Get(cfg.Auth.PostgresDSN)
	if err != nil {
		logging.Error("Failed to open token database", "error", err)
		return tokens
	}
	if err := auth.EnsureSchema(context.Background(), db); err != nil {
		logging.Error("Failed to ensure tokens schema", "error", err)
	}
	if err := tokens.Load(context.Background(), db); err != nil {
		logging.Error("Failed to load API tokens", "error", err)
	}
	go tokens.RefreshPeriodically(db, cfg.Auth.TokenReloadInterval, stop)
	return tokens
}

// startServer starts the Fiber app and listens for shutdown signals
func startServer(app *fiber.App, cfg config.Config, idleConnsClosed chan struct{}) {
	go func() {
		if err := app.Listen(cfg.Server.Host + cfg.Server.Port); err != nil {
			logging.Error("Server error", "error", err)
		}
	}()

	// Listen for OS termination signals
	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
	<-sigint

	logging.Warn("Shutdown signal received, closing server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
	}

	close(idleConnsClosed)
	logging.Info("Server stopped cleanly")
}
