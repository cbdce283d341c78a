package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"callpulse/internal/llm"
	"callpulse/internal/store"
)

func testConfig() *store.Config {
	cfg := &store.Config{}
	cfg.LLM.Model = "gemini-2.0-flash"
	cfg.LLM.MaxTokens = 256
	cfg.LLM.TimeoutSeconds = 5
	return cfg
}

func generateResponse(parts ...string) map[string]any {
	wrapped := make([]map[string]string, 0, len(parts))
	for _, p := range parts {
		wrapped = append(wrapped, map[string]string{"text": p})
	}
	return map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": wrapped}},
		},
	}
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	t.Setenv("GEMINI_API_ENDPOINT", ts.URL)
	t.Setenv("GEMINI_API_KEY", "gk-test")
	return NewProvider(testConfig())
}

func TestGenerateTextTargetsModelEndpoint(t *testing.T) {
	var captured map[string]any
	var path string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		if got := r.Header.Get("x-goog-api-key"); got != "gk-test" {
			t.Errorf("x-goog-api-key = %q", got)
		}
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_ = json.NewEncoder(w).Encode(generateResponse("part one ", "part two"))
	})

	out, err := p.GenerateText(context.Background(), "sys prompt", "user prompt")
	if err != nil {
		t.Fatal(err)
	}
	if out != "part one part two" {
		t.Errorf("output = %q, want concatenated trimmed parts", out)
	}
	if !strings.HasSuffix(path, "/gemini-2.0-flash:generateContent") {
		t.Errorf("request path = %q", path)
	}

	sys := captured["system_instruction"].(map[string]any)
	sysParts := sys["parts"].([]any)
	if sysParts[0].(map[string]any)["text"] != "sys prompt" {
		t.Errorf("system_instruction = %v", sys)
	}
	gen := captured["generationConfig"].(map[string]any)
	if _, ok := gen["responseSchema"]; ok {
		t.Error("free-text request must not declare a response schema")
	}
}

func TestGenerateSentimentDeclaresResponseSchema(t *testing.T) {
	report := map[string]any{
		"sentiment_score":                   -0.2,
		"sentiment_explanation":             "x",
		"financial_performance_score":       0.1,
		"financial_performance_explanation": "x",
		"forward_guidance_score":            0.1,
		"forward_guidance_explanation":      "x",
		"management_confidence_score":       0.1,
		"management_confidence_explanation": "x",
		"analyst_reaction_score":            0.1,
		"analyst_reaction_explanation":      "x",
		"strategic_direction_score":         0.1,
		"strategic_direction_explanation":   "x",
		"key_sentiment_indicators":          []string{"a"},
		"sentiment_shifts":                  []string{"b"},
		"confidence_assessment":             "medium",
	}
	content, _ := json.Marshal(report)

	var captured map[string]any
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_ = json.NewEncoder(w).Encode(generateResponse(string(content)))
	})

	got, err := p.GenerateSentiment(context.Background(), "sys", "user")
	if err != nil {
		t.Fatal(err)
	}
	if got.SentimentScore != -0.2 || got.ConfidenceAssessment != "medium" {
		t.Errorf("report = %+v", got)
	}

	gen := captured["generationConfig"].(map[string]any)
	if gen["responseMimeType"] != "application/json" {
		t.Errorf("responseMimeType = %v", gen["responseMimeType"])
	}
	schema, ok := gen["responseSchema"].(map[string]any)
	if !ok {
		t.Fatal("sentiment request must declare responseSchema")
	}
	if schema["type"] != "OBJECT" {
		t.Errorf("schema type = %v", schema["type"])
	}
}

func TestGenerateSentimentRejectsOutOfRangeScore(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(generateResponse(`{"sentiment_score": 7}`))
	})

	if _, err := p.GenerateSentiment(context.Background(), "sys", "user"); err == nil {
		t.Fatal("nonconforming structured response must be rejected")
	}
}

func TestMissingAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_ENDPOINT", "http://127.0.0.1:0")
	t.Setenv("GEMINI_API_KEY", "")
	p := NewProvider(testConfig())

	_, err := p.GenerateText(context.Background(), "sys", "user")
	if err == nil {
		t.Fatal("missing key must error")
	}
	var provErr *llm.ProviderError
	if !errors.As(err, &provErr) || provErr.Backend != "gemini" {
		t.Errorf("error = %v", err)
	}
}

func TestEmptyCandidates(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	})

	if _, err := p.GenerateText(context.Background(), "sys", "user"); err == nil {
		t.Fatal("empty candidates must error")
	}
}
