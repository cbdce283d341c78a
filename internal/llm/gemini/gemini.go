package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"callpulse/internal/llm"
	"callpulse/internal/store"
	"callpulse/internal/trace"
	"callpulse/internal/types"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// Provider calls the Gemini generateContent API. Sentiment requests declare
// a response schema and ask for application/json; summary and topics use
// plain text generation.
type Provider struct {
	cfg        *store.Config
	baseURL    string
	httpClient *http.Client
}

// NewProvider creates a Gemini-backed provider. The request timeout comes
// from llm.timeout_seconds in the config.
func NewProvider(cfg *store.Config) *Provider {
	baseURL := defaultBaseURL
	if ep := os.Getenv("GEMINI_API_ENDPOINT"); ep != "" {
		baseURL = ep
	}
	return &Provider{
		cfg:        cfg,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: time.Duration(cfg.LLM.TimeoutSeconds) * time.Second},
	}
}

// GenerateText performs a free-text generation for summary and topics.
func (p *Provider) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	body := p.requestBody(systemPrompt, userPrompt, nil)
	return p.generate(ctx, "gemini-generate-text", body)
}

// GenerateSentiment performs a schema-constrained generation and validates
// the response against the sentiment report schema.
func (p *Provider) GenerateSentiment(ctx context.Context, systemPrompt, userPrompt string) (*types.SentimentReport, error) {
	body := p.requestBody(systemPrompt, userPrompt, llm.SentimentResponseSchema())

	text, err := p.generate(ctx, "gemini-generate-sentiment", body)
	if err != nil {
		return nil, err
	}

	report, err := llm.ParseSentimentReport([]byte(text))
	if err != nil {
		return nil, &llm.ProviderError{Backend: "gemini", Detail: "structured response rejected", Err: err}
	}
	return report, nil
}

func (p *Provider) requestBody(systemPrompt, userPrompt string, responseSchema map[string]any) map[string]any {
	generationConfig := map[string]any{
		"temperature":     p.cfg.LLM.Temperature,
		"maxOutputTokens": p.cfg.LLM.MaxTokens,
	}
	if responseSchema != nil {
		generationConfig["responseMimeType"] = "application/json"
		generationConfig["responseSchema"] = responseSchema
	}
	return map[string]any{
		"system_instruction": map[string]any{
			"parts": []map[string]string{{"text": systemPrompt}},
		},
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": userPrompt}}},
		},
		"generationConfig": generationConfig,
	}
}

func (p *Provider) generate(ctx context.Context, spanName string, body map[string]any) (string, error) {
	ctx, span := trace.StartSpan(ctx, spanName)
	defer span.End()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return "", &llm.ProviderError{Backend: "gemini", Detail: "GEMINI_API_KEY missing"}
	}

	url := fmt.Sprintf("%s/%s:generateContent", p.baseURL, p.cfg.LLM.Model)

	bb, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(bb))
	if err != nil {
		return "", &llm.ProviderError{Backend: "gemini", Detail: "request build failed", Err: err}
	}
	req.Header.Set("x-goog-api-key", apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", &llm.ProviderError{Backend: "gemini", Detail: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(resp.Body)
		return "", &llm.ProviderError{Backend: "gemini", Detail: fmt.Sprintf("http %d: %s", resp.StatusCode, payload)}
	}

	var r struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", &llm.ProviderError{Backend: "gemini", Detail: "response decode failed", Err: err}
	}
	if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return "", &llm.ProviderError{Backend: "gemini", Detail: "no candidates in response", Err: errors.New("empty candidates")}
	}

	var sb strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}
