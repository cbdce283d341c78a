package main

import (
	"context"
	"fmt"
	"os"

	"callpulse/internal/analysis"
	"callpulse/internal/cache"
	"callpulse/internal/company"
	"callpulse/internal/fetcher"
	"callpulse/internal/interfaces"
	"callpulse/internal/llm/gemini"
	"callpulse/internal/llm/llmobs"
	"callpulse/internal/llm/noop"
	"callpulse/internal/llm/openai"
	"callpulse/internal/logger"
	"callpulse/internal/store"
	"callpulse/internal/trace"

	"github.com/joho/godotenv"
)

// initializeSystem initializes env, logger, and tracer
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context) (*store.Config, error) {
	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// initializeProvider initializes the generative-text provider with
// observability middleware
func initializeProvider(ctx context.Context, cfg *store.Config) interfaces.Provider {
	var provider interfaces.Provider

	switch cfg.LLM.Provider {
	case "OPENAI":
		provider = openai.NewProvider(cfg)
		logger.Info(ctx, "Using OpenAI provider", "model", cfg.LLM.Model)
	case "GEMINI":
		provider = gemini.NewProvider(cfg)
		logger.Info(ctx, "Using Gemini provider", "model", cfg.LLM.Model)
	default:
		provider = noop.NewProvider()
		logger.Warn(ctx, "No LLM provider configured - analysis requests will fail")
	}

	return llmobs.Wrap(provider)
}

// initializeCache connects the analysis cache. A missing MONGODB_URI
// degrades to an always-miss cache.
func initializeCache(ctx context.Context, cfg *store.Config) *cache.Store {
	return cache.NewStore(ctx, os.Getenv("MONGODB_URI"), cfg.Cache.Database, cfg.Cache.Collection)
}

// initializeFetcher builds the transcript fetcher from config and the
// NINJA_API_KEY credential.
func initializeFetcher(ctx context.Context, cfg *store.Config) *fetcher.Fetcher {
	apiKey := os.Getenv("NINJA_API_KEY")
	if apiKey == "" {
		logger.Warn(ctx, "NINJA_API_KEY not set - transcript fetches will be rejected upstream")
	}
	return fetcher.New(cfg.Fetcher.BaseURL, apiKey, cfg.Fetcher.DataDir)
}

// initializeCompanies loads the ticker reference table once at startup
func initializeCompanies(ctx context.Context, cfg *store.Config) (*company.Lookup, error) {
	lookup, err := company.Load(cfg.Companies.CSVPath)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "Loaded company reference table", "tickers", lookup.Len())
	return lookup, nil
}

// initializeAnalyzer wires the analysis core
func initializeAnalyzer(cfg *store.Config, provider interfaces.Provider, cacheStore *cache.Store) *analysis.Analyzer {
	return analysis.NewAnalyzer(provider, cacheStore, analysis.ConfigFromStore(cfg))
}
