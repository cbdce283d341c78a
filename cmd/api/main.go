package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"callpulse/internal/logger"
	"callpulse/internal/server"
	"callpulse/internal/trace"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	must(initializeSystem())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig(ctx)
	must(err)

	provider := initializeProvider(ctx, cfg)
	cacheStore := initializeCache(ctx, cfg)
	transcripts := initializeFetcher(ctx, cfg)
	companies, err := initializeCompanies(ctx, cfg)
	must(err)

	analyzer := initializeAnalyzer(cfg, provider, cacheStore)

	username := os.Getenv("API_USERNAME")
	password := os.Getenv("API_PASSWORD")
	if username == "" || password == "" {
		logger.Warn(ctx, "API_USERNAME/API_PASSWORD not set - all analyze requests will be rejected")
	}

	srv := server.NewServer(cfg, analyzer, transcripts, companies, username, password)

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errc:
		logger.ErrorWithErr(ctx, "HTTP server stopped", err)
	case <-sigc:
		logger.Info(ctx, "Shutting down...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := cacheStore.Close(shutdownCtx); err != nil {
		logger.Warn(ctx, "Cache close failed", "error", err)
	}
	if err := trace.Shutdown(shutdownCtx); err != nil {
		logger.Warn(ctx, "Tracer shutdown failed", "error", err)
	}
}
