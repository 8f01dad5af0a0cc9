package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"skinfeed/internal/api"
	"skinfeed/internal/config"
	"skinfeed/internal/connection"
	"skinfeed/internal/dedup"
	"skinfeed/internal/enrich"
	"skinfeed/internal/event"
	"skinfeed/internal/pipeline"
	"skinfeed/internal/router"
	"skinfeed/internal/store"
	"skinfeed/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/bot.local.yaml", "path to config file")
	kindFlag := flag.String("kind", "listed", "event kind to ingest (listed, price_changed, delisted_sold)")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	kind, err := event.ParseKind(*kindFlag)
	if err != nil {
		logger.Error("invalid event kind", "kind", *kindFlag, "error", err)
		os.Exit(1)
	}

	logger.Info("starting bot",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
		"kind", kind,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"api_url", cfg.API.RestURL,
		"ws_url", cfg.API.WSURL,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to database
	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)

	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := store.EnsureSchema(ctx, pool); err != nil {
		logger.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	logger.Info("database connected")

	// Create API client
	apiClient := api.NewClient(
		cfg.API.RestURL,
		cfg.API.APIKey,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, time.Second),
	)

	// Verify the API key before opening the stream
	profile, err := apiClient.GetAccountProfile(ctx)
	if err != nil {
		logger.Error("failed to fetch account profile", "error", err)
		os.Exit(1)
	}
	logger.Info("account verified",
		"username", profile.Data.Username,
		"balance", profile.Data.Balance,
	)

	// Exchange rates
	rates := enrich.NewRateSource(apiClient, cfg.Rates.RefreshInterval, logger)
	if err := rates.Start(ctx); err != nil {
		logger.Error("failed to start rate source", "error", err)
		os.Exit(1)
	}

	// Connection manager for this instance's single channel
	mgrCfg := connection.ManagerConfig{
		WSURL:              cfg.API.WSURL,
		APIKey:             cfg.API.APIKey,
		Channel:            kind.Channel(),
		ReconnectBaseDelay: cfg.Connection.ReconnectBaseDelay,
		ReconnectMaxDelay:  cfg.Connection.ReconnectMaxDelay,
		StabilityThreshold: cfg.Connection.StabilityThreshold,
		AuthTimeout:        cfg.Connection.AuthTimeout,
		PingTimeout:        cfg.Connection.PingTimeout,
		WriteTimeout:       cfg.Connection.WriteTimeout,
		KeepAliveInterval:  cfg.Connection.KeepAliveInterval,
		FrameBufferSize:    cfg.Connection.FrameBufferSize,
	}
	mgr := connection.NewManager(mgrCfg, logger)

	// Pipeline: parse, enrich, dedupe, persist
	writerCfg := store.WriterConfig{
		MaxAttempts: cfg.Store.MaxAttempts,
		RetryDelay:  cfg.Store.RetryDelay,
	}
	writer := store.NewWriter(writerCfg, pool, logger)

	pipe := pipeline.New(
		mgr.Frames(),
		router.NewRouter(kind, logger),
		enrich.NewEnricher(rates),
		dedup.NewDeduper(cfg.Dedup.Window),
		writer,
		logger,
	)

	if err := pipe.Start(ctx); err != nil {
		logger.Error("failed to start pipeline", "error", err)
		os.Exit(1)
	}

	if err := mgr.Start(ctx); err != nil {
		logger.Error("failed to start connection manager", "error", err)
		os.Exit(1)
	}

	// Health server
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Health.Port),
		Handler: createHealthHandler(pool, mgr, pipe, writer, logger),
	}

	go func() {
		logger.Info("starting health server", "port", cfg.Health.Port)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	logger.Info("bot running",
		"instance_id", cfg.Instance.ID,
		"kind", kind,
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Health.Port),
	)

	// Wait for shutdown or a fatal session error
	exitCode := 0
	select {
	case <-ctx.Done():
	case err := <-mgr.Fatal():
		logger.Error("fatal session error", "error", err)
		exitCode = 1
		cancel()
	}

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop the manager first so the frame channel closes and the pipeline
	// can drain buffered frames into the store.
	mgr.Stop(shutdownCtx)
	pipe.Stop(shutdownCtx)
	rates.Stop(shutdownCtx)
	healthServer.Shutdown(shutdownCtx)

	logger.Info("bot stopped")
	os.Exit(exitCode)
}

// createHealthHandler creates the HTTP handler for health checks.
func createHealthHandler(
	pool *pgxpool.Pool,
	mgr connection.Manager,
	pipe *pipeline.Pipeline,
	writer *store.Writer,
	logger *slog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string                 `json:"status"`
			Components map[string]interface{} `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]interface{}),
		}

		// Check database
		if err := pool.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["postgres"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["postgres"] = "connected"
		}

		// Check session state
		mgrStats := mgr.Stats()
		health.Components["connection"] = map[string]interface{}{
			"state":            string(mgrStats.State),
			"session":          mgrStats.SessionID,
			"reconnects":       mgrStats.Reconnects,
			"frames_forwarded": mgrStats.FramesForwarded,
		}
		if mgrStats.State != connection.StateStreaming {
			health.Status = "degraded"
		}

		pipeStats := pipe.Stats()
		health.Components["pipeline"] = pipeStats
		health.Components["writer"] = writer.Stats()

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	return mux
}
