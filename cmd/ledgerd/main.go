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

	"ledgerchat/internal/ledgerd"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	addr := os.Getenv("LEDGERD_ADDR")
	if addr == "" {
		addr = ":8545"
	}

	var store ledgerd.Store
	if dbPath := os.Getenv("LEDGERD_DB"); dbPath != "" {
		s, err := ledgerd.NewSQLite(dbPath)
		if err != nil {
			slog.Error("Failed to open ledger database", "path", dbPath, "error", err)
			os.Exit(1)
		}
		store = s
		slog.Info("Ledger state on disk", "path", dbPath)
	} else {
		store = ledgerd.NewMemStore()
		slog.Info("Ledger state in memory; lost on exit")
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("Failed to close store", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              addr,
		Handler:           ledgerd.NewServer(store, logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Ledger daemon listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
