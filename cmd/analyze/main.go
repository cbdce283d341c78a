package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"callpulse/internal/analysis"
	"callpulse/internal/cache"
	"callpulse/internal/fetcher"
	"callpulse/internal/interfaces"
	"callpulse/internal/llm/gemini"
	"callpulse/internal/llm/llmobs"
	"callpulse/internal/llm/noop"
	"callpulse/internal/llm/openai"
	"callpulse/internal/logger"
	"callpulse/internal/store"
	"callpulse/internal/trace"
	"callpulse/internal/types"

	"github.com/joho/godotenv"
)

// analyze runs one analysis kind over a ticker's recent transcripts and
// prints the result map as JSON. Command-line counterpart of the API server.
func main() {
	ticker := flag.String("ticker", "", "ticker symbol to analyze")
	kindFlag := flag.String("kind", "summary", "analysis kind: summary, topics, or sentiment")
	quarters := flag.Int("quarters", 0, "number of recent quarters to analyze (default from config)")
	concurrency := flag.Int("concurrency", 0, "parallel analyses (default from config)")
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if *ticker == "" {
		fmt.Fprintln(os.Stderr, "usage: analyze -ticker AMZN [-kind sentiment] [-quarters 4]")
		os.Exit(2)
	}

	_ = godotenv.Load()
	must(logger.Init())
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	ctx := context.Background()

	cfg, err := store.LoadConfig(*configPath)
	must(err)

	kind, err := types.ParseKind(*kindFlag)
	must(err)

	n := cfg.Analysis.Quarters
	if *quarters > 0 {
		n = *quarters
	}

	var provider interfaces.Provider
	switch cfg.LLM.Provider {
	case "OPENAI":
		provider = openai.NewProvider(cfg)
	case "GEMINI":
		provider = gemini.NewProvider(cfg)
	default:
		provider = noop.NewProvider()
	}
	provider = llmobs.Wrap(provider)

	cacheStore := cache.NewStore(ctx, os.Getenv("MONGODB_URI"), cfg.Cache.Database, cfg.Cache.Collection)
	defer cacheStore.Close(ctx)

	transcripts, err := fetcher.New(cfg.Fetcher.BaseURL, os.Getenv("NINJA_API_KEY"), cfg.Fetcher.DataDir).
		GetLastNQuarters(ctx, *ticker, n)
	must(err)
	if len(transcripts) == 0 {
		fmt.Fprintf(os.Stderr, "no transcripts found for %s\n", *ticker)
		os.Exit(1)
	}

	analyzer := analysis.NewAnalyzer(provider, cacheStore, analysis.ConfigFromStore(cfg))
	results, err := analyzer.AnalyzeBatch(ctx, transcripts, kind, *concurrency)
	must(err)

	rendered := make(map[string]string, len(results))
	for id, res := range results {
		rendered[id] = res.Render()
	}

	out, err := json.MarshalIndent(rendered, "", "  ")
	must(err)
	fmt.Println(string(out))
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
