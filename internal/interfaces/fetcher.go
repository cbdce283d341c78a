package interfaces

import (
	"context"

	"callpulse/internal/types"
)

// TranscriptFetcher retrieves earnings-call transcripts for a ticker.
// GetLastNQuarters walks backward from the current calendar quarter and
// returns only the quarters it could fetch; callers must not assume n
// results.
type TranscriptFetcher interface {
	GetLastNQuarters(ctx context.Context, ticker string, n int) ([]types.TranscriptRecord, error)
}
