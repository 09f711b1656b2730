package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sdibella/leadoptions/internal/backend"
	"github.com/sdibella/leadoptions/internal/config"
	"github.com/sdibella/leadoptions/internal/journal"
	"github.com/sdibella/leadoptions/internal/platform"
	"github.com/sdibella/leadoptions/internal/server"
	"github.com/sdibella/leadoptions/internal/simulator"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	// Logging
	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	// Load config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}

	slog.Info("leadoptions platform starting",
		"addr", cfg.Addr(),
		"winRate", cfg.WinRate,
		"tradeInterval", cfg.TradeInterval,
	)

	// Context with graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	be, err := backend.Init(ctx, backend.Options{
		CredentialsFile: cfg.FirebaseCredentialsFile,
		ProjectID:       cfg.FirebaseProjectID,
		StorageBucket:   cfg.FirebaseStorageBucket,
	})
	if err != nil {
		slog.Error("backend init failed", "err", err)
		os.Exit(1)
	}
	defer be.Close()

	j, err := journal.New(cfg.JournalPath)
	if err != nil {
		slog.Error("journal init failed", "err", err)
		os.Exit(1)
	}
	defer j.Close()
	if j != nil {
		slog.Info("journal opened", "path", cfg.JournalPath)
	}

	app := platform.New(platform.Options{
		Sim: simulator.Options{
			DriftInterval: cfg.DriftInterval,
			TradeInterval: cfg.TradeInterval,
			WinRate:       cfg.WinRate,
			HistorySize:   cfg.HistorySize,
		},
		ChartInterval:       cfg.ChartInterval,
		Seed:                cfg.Seed,
		LoginAttemptsPerMin: cfg.LoginAttemptsPerMin,
		PrefsPath:           cfg.ExportPrefsPath,
	}, j)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.New(app).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "err", err)
			cancel()
		}
	}()

	if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("platform error", "err", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "err", err)
	}

	slog.Info("platform stopped")
}
