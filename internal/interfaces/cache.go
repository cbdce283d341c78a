package interfaces

import "context"

// AnalysisCache is the keyed lookup/write surface over the analysis result
// store. Implementations never fail hard: a missing or unreachable store
// behaves as an always-miss cache so analysis can still reach the provider.
// Must be safe for concurrent use.
type AnalysisCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Put(ctx context.Context, key, value string) bool
}
