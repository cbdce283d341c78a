package analysis

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"callpulse/internal/types"
)

func batchOf(n int) []types.TranscriptRecord {
	out := make([]types.TranscriptRecord, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, types.TranscriptRecord{
			Ticker:     fmt.Sprintf("TK%02d", i),
			Year:       2024,
			Quarter:    i%4 + 1,
			Transcript: fmt.Sprintf("call %d", i),
		})
	}
	return out
}

func TestAnalyzeBatchEmptyInput(t *testing.T) {
	provider := &fakeProvider{text: "x"}
	a := NewAnalyzer(provider, newFakeCache(), testConfig())

	results, err := a.AnalyzeBatch(context.Background(), nil, types.KindSummary, 2)
	if err != nil {
		t.Fatalf("empty batch must not error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("empty batch must produce an empty map, got %d entries", len(results))
	}
	if provider.callCount() != 0 {
		t.Errorf("empty batch must not call the provider, got %d calls", provider.callCount())
	}
}

func TestAnalyzeBatchInvalidKind(t *testing.T) {
	a := NewAnalyzer(&fakeProvider{}, newFakeCache(), testConfig())
	if _, err := a.AnalyzeBatch(context.Background(), batchOf(1), types.AnalysisKind("mood"), 1); err == nil {
		t.Fatal("invalid kind must fail the whole batch")
	}
}

func TestAnalyzeBatchUnconfiguredProviderFailsFast(t *testing.T) {
	provider := &fakeProvider{unconfigured: true}
	a := NewAnalyzer(provider, newFakeCache(), testConfig())

	if _, err := a.AnalyzeBatch(context.Background(), batchOf(3), types.KindSummary, 2); err == nil {
		t.Fatal("unconfigured provider must fail the batch before any work")
	}
	if provider.callCount() != 0 {
		t.Errorf("fail-fast must not attempt analyses, got %d calls", provider.callCount())
	}
}

func TestAnalyzeBatchOneEntryPerTranscript(t *testing.T) {
	provider := &fakeProvider{text: "ok"}
	a := NewAnalyzer(provider, newFakeCache(), testConfig())
	transcripts := batchOf(10)

	results, err := a.AnalyzeBatch(context.Background(), transcripts, types.KindSummary, 3)
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if len(results) != len(transcripts) {
		t.Fatalf("got %d results for %d transcripts", len(results), len(transcripts))
	}
	for _, tr := range transcripts {
		res, ok := results[tr.ID()]
		if !ok {
			t.Errorf("missing result for %s", tr.ID())
			continue
		}
		if res.Failed() {
			t.Errorf("%s unexpectedly failed: %v", tr.ID(), res.Err)
		}
	}
}

func TestAnalyzeBatchBoundsConcurrency(t *testing.T) {
	provider := &fakeProvider{text: "ok", delay: 20 * time.Millisecond}
	a := NewAnalyzer(provider, newFakeCache(), testConfig())

	if _, err := a.AnalyzeBatch(context.Background(), batchOf(10), types.KindSummary, 2); err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if max := atomic.LoadInt32(&provider.maxInFlight); max > 2 {
		t.Errorf("observed %d concurrent provider calls, limit is 2", max)
	}
}

func TestAnalyzeBatchIsolatesFailures(t *testing.T) {
	transcripts := batchOf(4)
	// TK02 always fails; the rest succeed.
	provider := &fakeProvider{text: "ok", failOn: "TK02"}
	cfg := testConfig()
	cfg.BackoffInitial = time.Millisecond
	a := NewAnalyzer(provider, newFakeCache(), cfg)

	results, err := a.AnalyzeBatch(context.Background(), transcripts, types.KindSummary, 2)
	if err != nil {
		t.Fatalf("per-item failures must not abort the batch: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}

	failedID := transcripts[2].ID()
	for id, res := range results {
		if id == failedID {
			if !res.Failed() {
				t.Errorf("%s should have failed", id)
			}
			if !strings.HasPrefix(res.Render(), "ERROR: ") {
				t.Errorf("%s rendered as %q, want ERROR: prefix", id, res.Render())
			}
			continue
		}
		if res.Failed() {
			t.Errorf("%s should have succeeded: %v", id, res.Err)
		}
	}
}

func TestAnalyzeBatchDefaultConcurrency(t *testing.T) {
	provider := &fakeProvider{text: "ok", delay: 15 * time.Millisecond}
	cfg := testConfig() // Concurrency: 2
	a := NewAnalyzer(provider, newFakeCache(), cfg)

	if _, err := a.AnalyzeBatch(context.Background(), batchOf(6), types.KindSummary, 0); err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if max := atomic.LoadInt32(&provider.maxInFlight); max > int32(cfg.Concurrency) {
		t.Errorf("observed %d concurrent calls, configured default is %d", max, cfg.Concurrency)
	}
}
