package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"callpulse/internal/logger"
	"callpulse/internal/types"

	"github.com/google/uuid"
)

// configurable is implemented by providers that can report whether a real
// backend sits behind them. Used to fail a batch fast when no provider
// credentials were configured at all.
type configurable interface {
	Configured() bool
}

// AnalyzeBatch fans AnalyzeOne out over a transcript batch with bounded
// concurrency and merges the outcomes into one map keyed by transcript ID.
// The map always contains exactly one entry per input transcript; failed
// analyses carry their error in the Result instead of aborting the batch.
// concurrency <= 0 uses the configured default.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, transcripts []types.TranscriptRecord, kind types.AnalysisKind, concurrency int) (map[string]Result, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w %q", types.ErrInvalidKind, kind)
	}
	if a.provider == nil {
		return nil, errors.New("no provider configured")
	}
	if c, ok := a.provider.(configurable); ok && !c.Configured() {
		return nil, errors.New("no provider configured")
	}

	results := make(map[string]Result, len(transcripts))
	if len(transcripts) == 0 {
		return results, nil
	}

	if concurrency <= 0 {
		concurrency = a.cfg.Concurrency
	}
	if concurrency > len(transcripts) {
		concurrency = len(transcripts)
	}

	batchID := uuid.NewString()
	timer := logger.StartOperation(ctx, "analyze-batch",
		"batch_id", batchID,
		"kind", string(kind),
		"transcripts", len(transcripts),
		"concurrency", concurrency,
	)

	jobs := make(chan types.TranscriptRecord, len(transcripts))
	for _, tr := range transcripts {
		jobs <- tr
	}
	close(jobs)

	type keyed struct {
		id  string
		res Result
	}
	resultsChan := make(chan keyed, len(transcripts))

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for tr := range jobs {
				resultsChan <- keyed{id: tr.ID(), res: a.AnalyzeOne(ctx, tr, kind)}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	// Merge after workers complete; the single reader needs no locking.
	failed := 0
	for r := range resultsChan {
		if r.res.Failed() {
			failed++
		}
		results[r.id] = r.res
	}

	timer.End("failed", failed)
	logger.Info(ctx, "Batch analysis completed",
		"batch_id", batchID,
		"kind", string(kind),
		"total", len(results),
		"failed", failed,
	)
	return results, nil
}
