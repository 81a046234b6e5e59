// Battle Plan - accountability coach server
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

	"github.com/joho/godotenv"

	"github.com/ashureev/battleplan/internal/api"
	"github.com/ashureev/battleplan/internal/coach"
	"github.com/ashureev/battleplan/internal/config"
	"github.com/ashureev/battleplan/internal/llm/gemini"
	"github.com/ashureev/battleplan/internal/middleware"
	"github.com/ashureev/battleplan/web"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting server", "port", cfg.Port, "model", cfg.Model)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize dependencies.
	gen, err := gemini.NewGenerator(ctx, gemini.Config{APIKey: cfg.GoogleAPIKey})
	if err != nil {
		slog.Error("Failed to initialize Gemini client", "error", err)
		os.Exit(1)
	}

	svc, err := coach.NewService(gen, coach.Config{
		Model:             cfg.Model,
		MaxStruggleLength: cfg.MaxStruggleLength,
		GenerationTimeout: cfg.GenerationTimeout,
	}, logger)
	if err != nil {
		slog.Error("Failed to initialize coach service", "error", err)
		os.Exit(1)
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		slog.Error("Failed to parse templates", "error", err)
		os.Exit(1)
	}

	handler := api.NewHandler(svc, renderer, cfg.MaxFormBytes)

	var strategyMW []func(http.Handler) http.Handler
	if cfg.RateLimit.Enabled() {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, cfg.RateLimit.IdleTTL, cfg.RateLimit.MaxClients)
		defer limiter.Stop()
		strategyMW = append(strategyMW, limiter.Middleware(handler.RateLimited))
		slog.Info("Rate limiting enabled", "rps", cfg.RateLimit.RequestsPerSecond, "burst", cfg.RateLimit.Burst)
	}

	if cfg.TrustProxyHeaders {
		slog.Info("Trusting proxy headers for client addresses")
	}
	r := newRouter(cfg, handler, strategyMW...)

	// No WriteTimeout: generation may take as long as the client library allows.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
