package llmobs

import (
	"context"

	"callpulse/internal/interfaces"
	"callpulse/internal/logger"
	"callpulse/internal/trace"
	"callpulse/internal/types"
)

// observableProvider wraps a Provider with observability (logging & tracing)
type observableProvider struct {
	provider interfaces.Provider
}

// Compile-time interface check
var _ interfaces.Provider = (*observableProvider)(nil)

// Wrap wraps a provider with observability middleware
func Wrap(provider interfaces.Provider) interfaces.Provider {
	return &observableProvider{provider: provider}
}

// Configured forwards the wrapped provider's configuration state so batch
// fail-fast checks see through the middleware.
func (op *observableProvider) Configured() bool {
	if c, ok := op.provider.(interface{ Configured() bool }); ok {
		return c.Configured()
	}
	return true
}

func (op *observableProvider) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "llm.GenerateText")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Requesting free-text generation", "prompt_bytes", len(userPrompt))

	out, err := op.provider.GenerateText(ctx, systemPrompt, userPrompt)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Free-text generation failed", err)
		return "", err
	}

	logger.InfoSkip(ctx, 1, "Free-text generation completed", "response_bytes", len(out))
	return out, nil
}

func (op *observableProvider) GenerateSentiment(ctx context.Context, systemPrompt, userPrompt string) (*types.SentimentReport, error) {
	ctx, span := trace.StartSpan(ctx, "llm.GenerateSentiment")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Requesting structured sentiment generation", "prompt_bytes", len(userPrompt))

	report, err := op.provider.GenerateSentiment(ctx, systemPrompt, userPrompt)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Structured sentiment generation failed", err)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Structured sentiment generation completed",
		"sentiment_score", report.SentimentScore,
		"confidence", report.ConfidenceAssessment,
	)
	return report, nil
}
