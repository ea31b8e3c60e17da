package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"financas/internal/amqp"
	"financas/internal/auth"
	"financas/internal/config"
	"financas/internal/currency"
	apphttp "financas/internal/http"
	"financas/internal/importer"
	"financas/internal/ledger"
	applog "financas/internal/log"
	"financas/internal/storage"
	appweb "financas/web"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	if err := storage.RunMigrations(cfg.SQLiteDBPath); err != nil {
		logger.Error("Database migration failed", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	var sessions auth.SessionStore
	switch cfg.SessionBackend {
	case "redis":
		sessions = auth.NewRedisStore(cfg.RedisAddr)
		logger.Info("Using Redis session store", "addr", cfg.RedisAddr)
	default:
		sessions = auth.NewMemoryStore()
		logger.Info("Using in-memory session store")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Auth:       auth.NewService(repo),
		Sessions:   sessions,
		Ledger:     ledger.NewService(repo),
		Stager:     repo,
		Publisher:  amqpClient,
		Registry:   importer.DefaultRegistry(),
		Money:      currency.BRL(),
		Logger:     logger,
		SessionTTL: cfg.SessionTTL,
		Templates:  appweb.TemplatesFS,
		Static:     appweb.StaticFS,
	})

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting financas server", "port", cfg.Port, "sessions", cfg.SessionBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
