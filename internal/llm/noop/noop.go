package noop

import (
	"context"

	"callpulse/internal/llm"
	"callpulse/internal/logger"
	"callpulse/internal/types"
)

// Provider is the fallback used when no generative-text backend is
// configured. Every call fails with a ProviderError so batch invocation can
// fail fast before doing per-transcript work.
type Provider struct{}

func NewProvider() *Provider {
	return &Provider{}
}

// Configured reports that no real backend is available, letting batch
// invocations fail fast instead of producing a sentinel per transcript.
func (p *Provider) Configured() bool { return false }

func (p *Provider) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	logger.Debug(ctx, "Noop provider called - no LLM backend configured")
	return "", &llm.ProviderError{Backend: "noop", Detail: "no LLM provider configured"}
}

func (p *Provider) GenerateSentiment(ctx context.Context, systemPrompt, userPrompt string) (*types.SentimentReport, error) {
	logger.Debug(ctx, "Noop provider called - no LLM backend configured")
	return nil, &llm.ProviderError{Backend: "noop", Detail: "no LLM provider configured"}
}
