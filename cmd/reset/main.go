// Command reset drops every persisted table instead of starting the service.
// Operational tool for wiping a deployment's state; requires --yes to run.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/onnwee/time-tender/config"
	"github.com/onnwee/time-tender/db"
)

func main() {
	confirmed := flag.Bool("yes", false, "actually drop all tables")
	flag.Parse()

	_ = godotenv.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	if !*confirmed {
		slog.Error("refusing to drop tables without --yes")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	database, err := db.Connect(cfg.DBDsn)
	if err != nil {
		slog.Error("failed to open db", slog.Any("err", err))
		os.Exit(1)
	}
	defer database.Close()

	slog.Info("dropping all tables")
	if err := db.DropAll(context.Background(), database); err != nil {
		slog.Error("drop failed", slog.Any("err", err))
		os.Exit(1)
	}
	slog.Info("done")
}
