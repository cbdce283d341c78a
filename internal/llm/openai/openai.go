package openai

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

const defaultEndpoint = "https://api.openai.com/v1/chat/completions"

// Provider calls the OpenAI chat completions API. Sentiment requests use
// structured output with the full sentiment report schema; summary and topics use
// plain text generation.
type Provider struct {
	cfg        *store.Config
	endpoint   string
	httpClient *http.Client
}

// NewProvider creates an OpenAI-backed provider. The request timeout comes
// from llm.timeout_seconds in the config.
func NewProvider(cfg *store.Config) *Provider {
	endpoint := defaultEndpoint
	if ep := os.Getenv("OPENAI_API_ENDPOINT"); ep != "" {
		endpoint = ep
	}
	return &Provider{
		cfg:        cfg,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: time.Duration(cfg.LLM.TimeoutSeconds) * time.Second},
	}
}

// GenerateText performs a free-text completion for summary and topics.
func (p *Provider) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	body := map[string]any{
		"model": p.cfg.LLM.Model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
		"temperature": p.cfg.LLM.Temperature,
		"max_tokens":  p.cfg.LLM.MaxTokens,
	}
	return p.complete(ctx, "openai-generate-text", body)
}

// GenerateSentiment performs a structured completion constrained to the
// sentiment report schema and validates the response against it.
func (p *Provider) GenerateSentiment(ctx context.Context, systemPrompt, userPrompt string) (*types.SentimentReport, error) {
	body := map[string]any{
		"model": p.cfg.LLM.Model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
		"temperature": p.cfg.LLM.Temperature,
		"max_tokens":  p.cfg.LLM.MaxTokens,
		"response_format": map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   "sentiment_report",
				"strict": true,
				"schema": llm.SentimentJSONSchema(),
			},
		},
	}

	content, err := p.complete(ctx, "openai-generate-sentiment", body)
	if err != nil {
		return nil, err
	}

	report, err := llm.ParseSentimentReport([]byte(content))
	if err != nil {
		return nil, &llm.ProviderError{Backend: "openai", Detail: "structured response rejected", Err: err}
	}
	return report, nil
}

func (p *Provider) complete(ctx context.Context, spanName string, body map[string]any) (string, error) {
	ctx, span := trace.StartSpan(ctx, spanName)
	defer span.End()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return "", &llm.ProviderError{Backend: "openai", Detail: "OPENAI_API_KEY missing"}
	}

	bb, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, "POST", p.endpoint, bytes.NewReader(bb))
	if err != nil {
		return "", &llm.ProviderError{Backend: "openai", Detail: "request build failed", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", &llm.ProviderError{Backend: "openai", Detail: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(resp.Body)
		return "", &llm.ProviderError{Backend: "openai", Detail: fmt.Sprintf("http %d: %s", resp.StatusCode, payload)}
	}

	var r struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", &llm.ProviderError{Backend: "openai", Detail: "response decode failed", Err: err}
	}
	if len(r.Choices) == 0 {
		return "", &llm.ProviderError{Backend: "openai", Detail: "no choices in response", Err: errors.New("empty choices")}
	}

	return strings.TrimSpace(r.Choices[0].Message.Content), nil
}
