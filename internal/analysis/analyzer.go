package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"callpulse/internal/interfaces"
	"callpulse/internal/logger"
	"callpulse/internal/store"
	"callpulse/internal/types"

	"github.com/cenkalti/backoff/v4"
)

// Config controls retry and fan-out behavior of the analyzer.
type Config struct {
	MaxAttempts    int           // total provider attempts per transcript
	BackoffInitial time.Duration // first retry delay; doubles per attempt, no jitter
	Concurrency    int           // default batch worker count
}

// DefaultConfig returns the standard retry/fan-out settings: 3 attempts
// with 1s and 2s waits between them, 2 parallel workers.
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts:    3,
		BackoffInitial: 1 * time.Second,
		Concurrency:    2,
	}
}

// ConfigFromStore maps the yaml config onto analyzer settings.
func ConfigFromStore(c *store.Config) *Config {
	return &Config{
		MaxAttempts:    c.Analysis.MaxAttempts,
		BackoffInitial: time.Duration(c.Analysis.BackoffInitialSeconds) * time.Second,
		Concurrency:    c.Analysis.Concurrency,
	}
}

// Result is the outcome of analyzing one transcript for one kind. Exactly
// one of Value or Err is meaningful; Report is additionally set for
// successful sentiment analyses.
type Result struct {
	Value  string
	Report *types.SentimentReport
	Err    error
}

// Failed reports whether the analysis exhausted its attempts.
func (r Result) Failed() bool { return r.Err != nil }

// Render produces the user-visible string for this result. Failures keep
// the legacy "ERROR: <detail>" encoding that API consumers check for.
func (r Result) Render() string {
	if r.Err != nil {
		return "ERROR: " + r.Err.Error()
	}
	return r.Value
}

// Analyzer runs the per-transcript analysis state machine: cache check,
// prompt build, provider call with retry, best-effort cache write. One
// Analyzer is shared by all batch workers; it holds no mutable state.
type Analyzer struct {
	provider interfaces.Provider
	cache    interfaces.AnalysisCache
	cfg      *Config
}

func NewAnalyzer(provider interfaces.Provider, cache interfaces.AnalysisCache, cfg *Config) *Analyzer {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Analyzer{provider: provider, cache: cache, cfg: cfg}
}

// AnalyzeOne analyzes a single transcript for the given kind. Provider
// failures are retried MaxAttempts times total with exponential backoff;
// after that the failure is embedded in the Result rather than raised, so
// one bad transcript never aborts a batch.
func (a *Analyzer) AnalyzeOne(ctx context.Context, tr types.TranscriptRecord, kind types.AnalysisKind) Result {
	id := tr.ID()
	key := types.CacheKey(tr.Ticker, tr.Year, tr.Quarter, kind)

	if cached, ok := a.cache.Get(ctx, key); ok {
		if res, ok := resultFromCached(ctx, kind, cached); ok {
			return res
		}
		// Unreadable cached value: fall through and regenerate.
	}

	systemPrompt, err := SystemPrompt(kind)
	if err != nil {
		return Result{Err: err}
	}
	userPrompt, err := UserPrompt(kind, tr)
	if err != nil {
		return Result{Err: err}
	}

	var value string
	var report *types.SentimentReport
	operation := func() error {
		if kind == types.KindSentiment {
			r, err := a.provider.GenerateSentiment(ctx, systemPrompt, userPrompt)
			if err != nil {
				return err
			}
			b, err := json.Marshal(r)
			if err != nil {
				return err
			}
			report = r
			value = string(b)
			return nil
		}
		out, err := a.provider.GenerateText(ctx, systemPrompt, userPrompt)
		if err != nil {
			return err
		}
		value = out
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = a.cfg.BackoffInitial
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxInterval = 1 * time.Hour
	bo.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(a.cfg.MaxAttempts-1)), ctx)

	notify := func(err error, next time.Duration) {
		logger.Warn(ctx, "Provider call failed, retrying", "transcript", id, "kind", string(kind), "retry_in", next, "error", err)
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		logger.ErrorWithErr(ctx, "Analysis failed after all attempts", err, "transcript", id, "kind", string(kind), "attempts", a.cfg.MaxAttempts)
		return Result{Err: fmt.Errorf("failed to analyze %s after %d attempts: %w", id, a.cfg.MaxAttempts, err)}
	}

	// Best-effort write: a cache failure is logged by the store and the
	// result is still returned.
	a.cache.Put(ctx, key, value)

	return Result{Value: value, Report: report}
}

// resultFromCached rebuilds a Result from a cached value. Sentiment entries
// are stored as canonical JSON and must still decode; anything else is
// treated as a miss so the analysis regenerates it.
func resultFromCached(ctx context.Context, kind types.AnalysisKind, cached string) (Result, bool) {
	if kind != types.KindSentiment {
		return Result{Value: cached}, true
	}
	var report types.SentimentReport
	if err := json.Unmarshal([]byte(cached), &report); err != nil {
		logger.Warn(ctx, "Cached sentiment entry unreadable, regenerating", "error", err)
		return Result{}, false
	}
	return Result{Value: cached, Report: &report}, true
}
