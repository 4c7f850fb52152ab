// Command time-tender is the main entrypoint for the timezone bot.
// It:
//   - Loads configuration and initializes structured logging.
//   - Connects to Postgres and runs idempotent migrations.
//   - Starts the Discord event consumer and the registration web server as
//     co-equal long-lived tasks; if either exits the whole process terminates,
//     since running only one of the two is a non-useful degraded state.
//
// Shutdown is graceful on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/joho/godotenv"
	"github.com/onnwee/time-tender/bot"
	"github.com/onnwee/time-tender/config"
	"github.com/onnwee/time-tender/db"
	"github.com/onnwee/time-tender/server"
	"github.com/onnwee/time-tender/telemetry"
)

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load()

	// Configure logging (level + format). Defaults: level=info, format=text.
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "info", "":
		// keep default
	default:
		tmp := slog.New(slog.NewTextHandler(os.Stdout, nil))
		tmp.Warn("unknown LOG_LEVEL, using info", slog.String("value", os.Getenv("LOG_LEVEL")))
	}
	var handler slog.Handler
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))

	// Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}
	if err := cfg.ValidateBotReady(); err != nil {
		slog.Error("config incomplete", slog.Any("err", err))
		os.Exit(1)
	}

	// Metrics / telemetry init
	telemetry.Init()

	// Initialize OpenTelemetry tracing (optional; requires OTEL_EXPORTER_OTLP_ENDPOINT)
	shutdown, err := telemetry.InitTracing("time-tender", "1.0.0")
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer shutdown()

	// DB
	database, err := db.Connect(cfg.DBDsn)
	if err != nil {
		slog.Error("failed to open db", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("failed to close database", slog.Any("err", err))
		}
	}()

	slog.Info("running database migrations", slog.String("component", "db_migrate"))
	if err := db.Migrate(context.Background(), database); err != nil {
		slog.Error("failed to migrate db", slog.Any("err", err))
		os.Exit(1)
	}

	// Root context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := &db.Registry{DB: database}

	// The consumer and the web server supervise each other: the first one to
	// exit cancels the group context and brings the other down with it.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting discord consumer", slog.Int("guilds", len(cfg.Guilds)))
		return bot.New(cfg, registry).Run(gctx)
	})
	g.Go(func() error {
		slog.Info("starting http server", slog.String("addr", cfg.HTTPAddr))
		return server.Start(gctx, database, cfg.HTTPAddr, cfg.AppURL)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		// A cancellation during shutdown is expected, not an error.
		slog.Error("task exited with error", slog.Any("err", err))
		os.Exit(1)
	}
	slog.Info("shutting down")
}
