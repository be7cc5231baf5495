package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/prayerboard/internal/config"
	"github.com/JonMunkholm/prayerboard/internal/core"
	"github.com/JonMunkholm/prayerboard/internal/logging"
	"github.com/JonMunkholm/prayerboard/internal/publish"
	"github.com/JonMunkholm/prayerboard/internal/source"
	"github.com/JonMunkholm/prayerboard/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"refresh_interval", cfg.Refresh.Interval.String(),
		"rate_limit_enabled", cfg.Rate.Enabled,
		"publish_enabled", cfg.Publish.Enabled(),
	)
	slog.Debug("configuration", "config", cfg.String())

	// Build the source list; an empty list is reported on every fetch
	fetcher, err := source.NewFetcherFromConfig(&cfg.Source)
	if err != nil {
		slog.Error("failed to load schedule sources", "error", err)
		os.Exit(1)
	}
	candidates := fetcher.Candidates()
	if len(candidates) == 0 {
		slog.Warn("no schedule source configured; set SOURCE_URL, SOURCE_FALLBACK_URL or SOURCE_FILE")
	}
	for i, c := range candidates {
		slog.Info("schedule source", "order", i+1, "source", c.String(), "secret", c.Secret != "")
	}

	// Optional MQTT publishing for signage screens
	var publishers []core.Publisher
	var mqttPublisher *publish.MQTTPublisher
	if cfg.Publish.Enabled() {
		mqttPublisher, err = publish.Connect(cfg.Publish)
		if err != nil {
			slog.Error("failed to connect to mqtt broker", "error", err)
			os.Exit(1)
		}
		publishers = append(publishers, mqttPublisher)
	}

	service := core.NewService(fetcher, publishers...)

	server := web.NewServer(service, cfg)

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())

	go service.StartRefreshScheduler(jobCtx, cfg.Refresh.Interval)

	// Graceful shutdown
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		// Stop background jobs
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
		if mqttPublisher != nil {
			mqttPublisher.Close()
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-shutdownDone
	slog.Info("server stopped")
}
