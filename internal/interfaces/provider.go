package interfaces

import (
	"context"

	"callpulse/internal/types"
)

// Provider abstracts a generative-text backend over its two response modes:
// free text for summary/topics and schema-constrained output for sentiment.
type Provider interface {
	GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	GenerateSentiment(ctx context.Context, systemPrompt, userPrompt string) (*types.SentimentReport, error)
}
