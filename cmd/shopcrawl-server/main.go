package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"github.com/shopcrawl/shopcrawl/internal/api"
	"github.com/shopcrawl/shopcrawl/internal/browser"
	"github.com/shopcrawl/shopcrawl/internal/config"
	"github.com/shopcrawl/shopcrawl/internal/detect"
	"github.com/shopcrawl/shopcrawl/internal/events"
	"github.com/shopcrawl/shopcrawl/internal/extract"
	"github.com/shopcrawl/shopcrawl/internal/jobs"
	"github.com/shopcrawl/shopcrawl/internal/session"
	"github.com/shopcrawl/shopcrawl/internal/sites"
	"github.com/shopcrawl/shopcrawl/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// Setup logging
	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Site registry, with optional YAML override
	registry, err := sites.Load(cfg.SitesFile)
	if err != nil {
		logger.Error("failed to load site registry", "error", err, "path", cfg.SitesFile)
		os.Exit(1)
	}

	// Database connection
	db, err := storage.New(ctx, storage.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.Name,
		MaxConns: cfg.Database.MaxConns,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		logger.Error("failed to initialize schema", "error", err)
		os.Exit(1)
	}

	// Redis client for lifecycle events
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	publisher := events.NewPublisher(redisClient, logger)

	// Browser setup
	b, err := browser.New(&browser.Options{
		Headless:       cfg.Browser.Headless,
		Timeout:        cfg.Browser.Timeout,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		AcceptLanguage: cfg.Browser.AcceptLanguage,
		Locale:         cfg.Browser.Locale,
	})
	if err != nil {
		logger.Error("failed to initialize browser", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	detector := detect.NewDefault()

	// Each job gets a fresh page so leftover state from a blocked session
	// never leaks into the next one.
	runner := func(ctx context.Context, site *sites.Site, query string, sessCfg session.Config) ([]extract.Listing, error) {
		page, err := b.NewPage()
		if err != nil {
			return nil, fmt.Errorf("failed to open page: %w", err)
		}
		s := session.New(page, site, detector, sessCfg, logger)
		return s.Run(ctx, query), nil
	}

	jobManager := jobs.NewManager(db, registry, publisher, runner, sessionConfig(cfg.Session), logger)
	go jobManager.StartWorker(ctx)

	// Initialize API handlers
	handlers := api.NewHandlers(jobManager, registry, logger)

	// Setup Chi router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://localhost:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", handlers.Health)

	// API Routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/sites", handlers.ListSites)
		r.Post("/jobs", handlers.CreateJob)
		r.Get("/jobs", handlers.ListJobs)
		r.Get("/jobs/{jobID}", handlers.GetJob)
		r.Get("/jobs/{jobID}/listings", handlers.GetJobListings)
		r.Get("/stats", handlers.GetStats)
	})

	// Start server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server starting", "port", cfg.Server.Port, "sites", registry.Len())
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func sessionConfig(sc config.SessionConfig) session.Config {
	return session.Config{
		PageBudget:   sc.PageBudget,
		WaitCeiling:  sc.WaitCeiling,
		PollInterval: sc.PollInterval,
		ScrollSteps:  sc.ScrollSteps,
		ScrollPause:  sc.ScrollPause,
		SettleDelay:  sc.SettleDelay,
		SnapshotDir:  sc.SnapshotDir,
	}
}

func newLogger(lc config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch lc.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
