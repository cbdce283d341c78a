package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"callpulse/internal/api"
	"callpulse/internal/interfaces"
	"callpulse/internal/logger"
	"callpulse/internal/types"
)

// Fetcher retrieves earnings-call transcripts from the transcript REST API
// and keeps a flat JSON file cache keyed by (ticker, year, quarter).
type Fetcher struct {
	client  *api.Client
	dataDir string
	now     func() time.Time
}

var _ interfaces.TranscriptFetcher = (*Fetcher)(nil)

// New creates a Fetcher against the given base URL. apiKey is sent as the
// X-Api-Key header on every request.
func New(baseURL, apiKey, dataDir string) *Fetcher {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		logger.Warn(context.Background(), "Failed to create transcript data dir", "dir", dataDir, "error", err)
	}
	return &Fetcher{
		client: api.NewClient(
			api.WithBaseURL(baseURL),
			api.WithHeader("X-Api-Key", apiKey),
			api.WithTimeout(30*time.Second),
			api.WithLogging(true),
		),
		dataDir: dataDir,
		now:     time.Now,
	}
}

// apiTranscript is the transcript API's response payload.
type apiTranscript struct {
	Transcript string `json:"transcript"`
	Date       string `json:"date"`
}

// GetTranscript returns the transcript for one quarter, from the file cache
// when present, otherwise from the API. The bool reports whether a
// transcript was found.
func (f *Fetcher) GetTranscript(ctx context.Context, ticker string, year, quarter int) (types.TranscriptRecord, bool) {
	ticker = strings.ToUpper(ticker)
	filename := f.filename(ticker, year, quarter)

	if b, err := os.ReadFile(filename); err == nil {
		var rec types.TranscriptRecord
		if err := json.Unmarshal(b, &rec); err == nil && rec.Transcript != "" {
			logger.Info(ctx, "Using cached transcript", "ticker", ticker, "year", year, "quarter", quarter)
			return rec, true
		}
		logger.Warn(ctx, "Cached transcript file unreadable, fetching fresh", "file", filename)
	}

	return f.fetchFromAPI(ctx, ticker, year, quarter)
}

// GetLastNQuarters fetches the most recent n quarters walking backward from
// the current calendar quarter. Missing quarters are skipped; the walk stops
// after 2n attempts, so callers may receive fewer than n records.
func (f *Fetcher) GetLastNQuarters(ctx context.Context, ticker string, n int) ([]types.TranscriptRecord, error) {
	ticker = strings.ToUpper(ticker)

	now := f.now()
	currentYear := now.Year()
	currentQuarter := (int(now.Month())-1)/3 + 1

	var results []types.TranscriptRecord
	attempts := 0
	for len(results) < n && attempts < n*2 {
		year := currentYear
		quarter := currentQuarter - attempts
		for quarter <= 0 {
			year--
			quarter += 4
		}

		if rec, ok := f.GetTranscript(ctx, ticker, year, quarter); ok {
			results = append(results, rec)
			logger.Info(ctx, "Found transcript", "ticker", ticker, "year", year, "quarter", quarter)
		} else {
			logger.Warn(ctx, "No transcript available", "ticker", ticker, "year", year, "quarter", quarter)
		}
		attempts++
	}

	logger.Info(ctx, "Transcript fetch completed", "ticker", ticker, "found", len(results), "requested", n)
	return results, nil
}

func (f *Fetcher) filename(ticker string, year, quarter int) string {
	return filepath.Join(f.dataDir, fmt.Sprintf("%s_%d_Q%d.json", ticker, year, quarter))
}

func (f *Fetcher) fetchFromAPI(ctx context.Context, ticker string, year, quarter int) (types.TranscriptRecord, bool) {
	query := fmt.Sprintf("?ticker=%s&year=%d&quarter=%d", url.QueryEscape(ticker), year, quarter)

	resp, err := f.client.GETWithRetry(ctx, query, nil)
	if err != nil {
		logger.ErrorWithErr(ctx, "Transcript API request failed", err, "ticker", ticker, "year", year, "quarter", quarter)
		return types.TranscriptRecord{}, false
	}

	var payload apiTranscript
	if err := resp.ParseJSON(&payload); err != nil {
		logger.ErrorWithErr(ctx, "Transcript API response unreadable", err, "ticker", ticker)
		return types.TranscriptRecord{}, false
	}
	if payload.Transcript == "" {
		logger.Warn(ctx, "Transcript API returned empty transcript", "ticker", ticker, "year", year, "quarter", quarter)
		return types.TranscriptRecord{}, false
	}

	rec := types.TranscriptRecord{
		Ticker:     ticker,
		Year:       year,
		Quarter:    quarter,
		Transcript: payload.Transcript,
		Date:       payload.Date,
		FetchDate:  f.now().Format(time.RFC3339),
	}

	if b, err := json.Marshal(rec); err == nil {
		if err := os.WriteFile(f.filename(ticker, year, quarter), b, 0o644); err != nil {
			logger.Warn(ctx, "Failed to write transcript cache file", "error", err)
		}
	}

	return rec, true
}
