package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidKind marks an analysis kind outside the known set. Callers must
// not retry on it.
var ErrInvalidKind = errors.New("invalid analysis kind")

// AnalysisKind selects which analysis is performed on a transcript.
// Each kind maps to exactly one system prompt and one result shape.
type AnalysisKind string

const (
	KindSummary   AnalysisKind = "summary"
	KindTopics    AnalysisKind = "topics"
	KindSentiment AnalysisKind = "sentiment"
)

// ParseKind converts user input into an AnalysisKind.
func ParseKind(s string) (AnalysisKind, error) {
	switch AnalysisKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindSummary:
		return KindSummary, nil
	case KindTopics:
		return KindTopics, nil
	case KindSentiment:
		return KindSentiment, nil
	}
	return "", fmt.Errorf("%w %q: must be summary, topics, or sentiment", ErrInvalidKind, s)
}

// CacheTag returns the short code used inside cache keys.
func (k AnalysisKind) CacheTag() string {
	switch k {
	case KindSummary:
		return "SUMMARY"
	case KindTopics:
		return "TOPIC"
	case KindSentiment:
		return "SENTIMENT"
	}
	return "UNKNOWN"
}

// Valid reports whether k is one of the three known kinds.
func (k AnalysisKind) Valid() bool {
	return k == KindSummary || k == KindTopics || k == KindSentiment
}

// TranscriptRecord is one earnings-call transcript for a (ticker, year,
// quarter). Records are created by the fetcher and read-only afterwards.
type TranscriptRecord struct {
	Ticker     string `json:"ticker"`
	Year       int    `json:"year"`
	Quarter    int    `json:"quarter"`
	Transcript string `json:"transcript"`
	Date       string `json:"date,omitempty"`
	FetchDate  string `json:"fetch_date,omitempty"`
}

// ID returns the external-facing transcript identifier used as the key in
// batch result maps, e.g. "AMZN_2024_Q1".
func (t TranscriptRecord) ID() string {
	return fmt.Sprintf("%s_%d_Q%d", strings.ToUpper(t.Ticker), t.Year, t.Quarter)
}

// NormalizeTicker uppercases a ticker and replaces periods with hyphens so
// share classes like BRK.B and BRK-B map to the same storage key.
func NormalizeTicker(ticker string) string {
	return strings.ReplaceAll(strings.ToUpper(ticker), ".", "-")
}

// CacheKey builds the composite cache key for one transcript/kind pair,
// e.g. "BRK-B_2024_Q1_SENTIMENT".
func CacheKey(ticker string, year, quarter int, kind AnalysisKind) string {
	return fmt.Sprintf("%s_%d_Q%d_%s", NormalizeTicker(ticker), year, quarter, kind.CacheTag())
}

// SentimentReport is the structured output of a sentiment analysis. All
// fields are required; providers that omit any of them fail schema
// validation.
type SentimentReport struct {
	SentimentScore       float64 `json:"sentiment_score"`
	SentimentExplanation string  `json:"sentiment_explanation"`

	FinancialPerformanceScore       float64 `json:"financial_performance_score"`
	FinancialPerformanceExplanation string  `json:"financial_performance_explanation"`

	ForwardGuidanceScore       float64 `json:"forward_guidance_score"`
	ForwardGuidanceExplanation string  `json:"forward_guidance_explanation"`

	ManagementConfidenceScore       float64 `json:"management_confidence_score"`
	ManagementConfidenceExplanation string  `json:"management_confidence_explanation"`

	AnalystReactionScore       float64 `json:"analyst_reaction_score"`
	AnalystReactionExplanation string  `json:"analyst_reaction_explanation"`

	StrategicDirectionScore       float64 `json:"strategic_direction_score"`
	StrategicDirectionExplanation string  `json:"strategic_direction_explanation"`

	KeySentimentIndicators []string `json:"key_sentiment_indicators"`
	SentimentShifts        []string `json:"sentiment_shifts"`
	ConfidenceAssessment   string   `json:"confidence_assessment"`
}
