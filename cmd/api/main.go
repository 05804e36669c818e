package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/klikk/verify-api/internal/application/directory"
	"github.com/klikk/verify-api/internal/application/verification"
	"github.com/klikk/verify-api/internal/config"
	"github.com/klikk/verify-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/klikk/verify-api/internal/infrastructure/jwt"
	"github.com/klikk/verify-api/internal/infrastructure/memstore"
	"github.com/klikk/verify-api/internal/infrastructure/redisstore"
	"github.com/klikk/verify-api/internal/infrastructure/sns"
	transporthttp "github.com/klikk/verify-api/internal/transport/http"
	"github.com/lmittmann/tint"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	setupLogger(cfg)

	verificationStore, accountStore := buildStores(cfg)

	// JWT provider (optional — graceful fallback if keys are missing).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		slog.Warn("JWT provider not available, checkout tokens disabled", "err", err)
	}

	// SNS SMS sender (optional — graceful fallback).
	var smsSender sns.SMSSender
	if sender, err := sns.NewSender(cfg); err == nil {
		smsSender = sender
	} else {
		slog.Warn("SNS sender not available", "err", err)
	}

	// Seed the demo shoppers so the storefront works out of the box.
	if created, err := directory.NewService(accountStore).Seed(context.Background()); err != nil {
		slog.Warn("failed to seed demo accounts", "err", err)
	} else if created > 0 {
		slog.Info("seeded demo accounts", "created", created)
	}

	deps := &transporthttp.Deps{
		VerificationStore: verificationStore,
		AccountStore:      accountStore,
		SMSSender:         smsSender,
		JWTProvider:       jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "store", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	slog.Info("server stopped")
}

// setupLogger installs the process-wide slog handler: colorized console
// output in development, JSON everywhere else.
func setupLogger(cfg *config.Config) {
	var handler slog.Handler
	if cfg.AppEnv == "development" {
		handler = tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))
}

// buildStores selects the persistence backend. In-memory is the default so a
// bare `go run ./cmd/api` serves the whole demo flow with no infrastructure.
func buildStores(cfg *config.Config) (verification.Store, directory.AccountStore) {
	switch cfg.StoreBackend {
	case "dynamo":
		client := dynamo.NewClient(cfg)
		dynamo.Bootstrap(context.Background(), client, cfg.DynamoTables)
		return dynamo.NewVerificationRepo(client, cfg.DynamoTables.VerificationCodes),
			dynamo.NewAccountRepo(client, cfg.DynamoTables.Accounts)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		// Accounts stay in memory; only the code lifecycle benefits from
		// Redis TTLs, and the directory is demo seed data anyway.
		return redisstore.New(client), memstore.NewAccountStore()
	default:
		return memstore.NewVerificationStore(), memstore.NewAccountStore()
	}
}
