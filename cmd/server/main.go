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

	"github.com/ead/authuser/internal/bootstrap"
	"github.com/ead/authuser/internal/config"
	"github.com/ead/authuser/internal/handler"
	"github.com/ead/authuser/internal/middleware"
	"github.com/ead/authuser/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Open the user store
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 30*time.Second)
	stores, err := bootstrap.OpenUserStore(connectCtx, cfg)
	cancelConnect()
	if err != nil {
		slog.Error("failed to open user store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer stores.Close()

	// Initialize services
	userService := service.NewUserService(service.UserServiceConfig{
		Store: stores.Users,
	})

	// Initialize handlers
	userHandler := handler.NewUserHandler(handler.UserHandlerConfig{
		UserService: userService,
		BaseURL:     cfg.Server.BaseURL,
	})

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Rate:   cfg.RateLimit.Rate,
		Window: cfg.RateLimit.Window,
		Burst:  cfg.RateLimit.Burst,
	})
	defer rateLimiter.Stop()

	// Create router
	mux := http.NewServeMux()

	// Health check endpoints
	mux.HandleFunc("GET /health", handler.Health)
	mux.HandleFunc("GET /ready", handler.Ready(userService))

	// User endpoints
	userHandler.RegisterRoutes(mux)

	// Metrics wrap the mux directly so requests are labelled by route
	var routed http.Handler = mux
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics := middleware.NewMetrics(registry)
		mux.Handle("GET /metrics", metrics.Handler())
		routed = metrics.Middleware(mux)
	}

	// Apply global middleware
	wrapped := middleware.Chain(
		routed,
		middleware.RequestID,
		middleware.Logger,
		middleware.Recovery,
		middleware.CORS(cfg.Server.AllowedOrigins),
		middleware.RateLimit(rateLimiter),
		middleware.Compress,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
			slog.String("backend", stores.Backend),
			slog.Bool("cache", stores.Cached),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-serverErr:
		slog.Error("server error", slog.String("error", err.Error()))
	}

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}
