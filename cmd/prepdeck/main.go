// Package main is the entry point for the PrepDeck server.
// It loads configuration, connects to Valkey, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prepdeck/internal/apiclient"
	"prepdeck/internal/cache"
	"prepdeck/internal/config"
	"prepdeck/internal/debounce"
	"prepdeck/internal/flash"
	"prepdeck/internal/handlers"
	"prepdeck/internal/middleware"
	"prepdeck/internal/pager"
	"prepdeck/internal/render"
	"prepdeck/internal/router"
	"prepdeck/internal/session"
	"prepdeck/internal/storage"
	"prepdeck/internal/store"
)

func main() {
	// Load configuration from the environment and an optional .env file.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON everywhere else.
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"api", cfg.APIBaseURL,
	)

	// Connect to Valkey (sessions and per-session state).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// In non-development environments, mark cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies, cfg.SessionTTL)
	flashes := flash.New([]byte(cfg.FlashSecret), secureCookies)
	state := store.New(cache.NewValkey(valkeyClient, "state:", cfg.SessionTTL))

	renderer, err := render.New(cfg.IsDev(), flashes)
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	// Connect to S3-compatible object storage (optional, avatars only).
	var storageClient *storage.Client
	if cfg.StorageEnabled() {
		storageClient, err = storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3Bucket, cfg.S3PublicURL,
		)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, avatar uploads disabled")
	}

	deps := handlers.Deps{
		Renderer:       renderer,
		Sessions:       sessionStore,
		Flashes:        flashes,
		API:            apiclient.New(cfg.APIBaseURL, cfg.APITimeout),
		State:          state,
		Guard:          pager.NewGuard(),
		Searches:       debounce.NewGroup(),
		PageSize:       cfg.PageSize,
		SearchDebounce: cfg.SearchDebounce,
	}

	authLimiter := middleware.NewRateLimiter(cfg.AuthRateLimit, time.Minute)
	defer authLimiter.Stop()

	// Set up the Chi router with all middleware and routes.
	r := router.New(router.Config{
		Sessions:    sessionStore,
		AuthLimiter: authLimiter,
		Secure:      secureCookies,
		Auth:        handlers.NewAuth(deps),
		Catalog:     handlers.NewCatalog(deps),
		Questions:   handlers.NewQuestions(deps),
		Profile:     handlers.NewProfile(deps, storageClient),
	})

	// WriteTimeout covers the slowest page: a backend call per list plus
	// the search debounce.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.APITimeout + 20*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
