package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/nano-social/backend/internal/handlers"
	"github.com/anonto42/nano-social/backend/internal/realtime"
	"github.com/anonto42/nano-social/backend/internal/router"
	"github.com/anonto42/nano-social/backend/internal/token"
	"github.com/anonto42/nano-social/backend/pkg/config"
	"github.com/anonto42/nano-social/backend/pkg/firebase"
	"github.com/anonto42/nano-social/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger.Init(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty, ServiceName: "nano-social"})
	l := logger.L()

	if err := cfg.Validate(); err != nil {
		l.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connection
	db, err := config.InitDB(cfg)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.CloseDB()

	hub := realtime.NewHub()
	defer hub.Close()

	deps := router.Dependencies{
		Repos:         router.MongoRepositories(db.Database),
		Issuer:        token.NewIssuer(cfg.JWTSecret),
		Hub:           hub,
		Emitter:       hub,
		WSRequireAuth: cfg.WSRequireAuth,
		CookieSecure:  cfg.CookieSecure,
		WSConfig:      realtime.DefaultConfig(),
		HealthChecks: map[string]handlers.Pinger{
			"mongo": func(ctx context.Context) error { return db.Mongo.Ping(ctx, nil) },
		},
	}

	// Cross-instance relay
	if cfg.RedisURL != "" {
		client, err := realtime.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			l.Fatal().Err(err).Msg("failed to initialize redis relay")
		}
		relay := realtime.NewRedisRelay(client, hub)
		defer relay.Close()
		go func() {
			if err := relay.Run(ctx); err != nil {
				l.Error().Err(err).Msg("redis relay stopped")
			}
		}()
		deps.Emitter = relay
		deps.HealthChecks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}

	// Firebase login is optional
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	switch {
	case err == nil:
		deps.FirebaseAuth = firebaseApp.AuthClient
	case errors.Is(err, firebase.ErrNotConfigured):
		l.Info().Msg("firebase login disabled")
	default:
		l.Fatal().Err(err).Msg("failed to initialize firebase")
	}

	// Create Echo instance
	e := echo.New()
	router.SetupMiddleware(e, l)
	router.SetupRoutes(e, deps)

	go func() {
		l.Info().Str("port", cfg.Port).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	l.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("server shutdown failed")
	}
}
