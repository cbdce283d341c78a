package llm

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func validSentimentJSON() map[string]any {
	return map[string]any{
		"sentiment_score":                   0.6,
		"sentiment_explanation":             "upbeat tone in the Q&A",
		"financial_performance_score":       0.7,
		"financial_performance_explanation": "revenue above guidance",
		"forward_guidance_score":            0.3,
		"forward_guidance_explanation":      "guidance raised modestly",
		"management_confidence_score":       0.5,
		"management_confidence_explanation": "direct answers throughout",
		"analyst_reaction_score":            0.4,
		"analyst_reaction_explanation":      "few follow-up challenges",
		"strategic_direction_score":         0.2,
		"strategic_direction_explanation":   "capex plan reiterated",
		"key_sentiment_indicators":          []string{"record revenue", "margin expansion"},
		"sentiment_shifts":                  []string{"more cautious on macro late in call"},
		"confidence_assessment":             "high",
	}
}

func TestParseSentimentReportValid(t *testing.T) {
	raw, err := json.Marshal(validSentimentJSON())
	if err != nil {
		t.Fatal(err)
	}

	report, err := ParseSentimentReport(raw)
	if err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}
	if report.SentimentScore != 0.6 {
		t.Errorf("sentiment_score = %v", report.SentimentScore)
	}
	if len(report.KeySentimentIndicators) != 2 {
		t.Errorf("key_sentiment_indicators = %v", report.KeySentimentIndicators)
	}
	if report.ConfidenceAssessment != "high" {
		t.Errorf("confidence_assessment = %q", report.ConfidenceAssessment)
	}
}

func TestParseSentimentReportMissingFields(t *testing.T) {
	for _, field := range requiredSentimentFields {
		payload := validSentimentJSON()
		delete(payload, field)
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}

		_, err = ParseSentimentReport(raw)
		if err == nil {
			t.Errorf("payload missing %s was accepted", field)
			continue
		}
		var schemaErr *SchemaError
		if !errors.As(err, &schemaErr) {
			t.Errorf("missing %s: got %T, want *SchemaError", field, err)
			continue
		}
		if len(schemaErr.Missing) != 1 || schemaErr.Missing[0] != field {
			t.Errorf("missing %s: reported %v", field, schemaErr.Missing)
		}
	}
}

func TestParseSentimentReportScoreOutOfRange(t *testing.T) {
	for _, score := range []float64{-1.5, 1.01, 42} {
		payload := validSentimentJSON()
		payload["sentiment_score"] = score
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := ParseSentimentReport(raw); err == nil {
			t.Errorf("score %v accepted, want rejection", score)
		}
	}
}

func TestParseSentimentReportNotAnObject(t *testing.T) {
	for _, raw := range []string{"", "null", `"just text"`, "[1,2,3]"} {
		if _, err := ParseSentimentReport([]byte(raw)); err == nil {
			t.Errorf("payload %q accepted", raw)
		}
	}
}

func TestSentimentJSONSchemaDeclaresAllFields(t *testing.T) {
	schema := SentimentJSONSchema()
	if schema["additionalProperties"] != false {
		t.Error("schema must close the object")
	}
	props, ok := schema["properties"].(map[string]any)
	if !ok {
		t.Fatal("schema has no properties map")
	}
	for _, field := range requiredSentimentFields {
		if _, ok := props[field]; !ok {
			t.Errorf("schema missing property %s", field)
		}
	}
}

func TestSentimentResponseSchemaUsesUppercaseTypes(t *testing.T) {
	schema := SentimentResponseSchema()
	if schema["type"] != "OBJECT" {
		t.Errorf("root type = %v", schema["type"])
	}
	props := schema["properties"].(map[string]any)
	score := props["sentiment_score"].(map[string]any)
	if score["type"] != "NUMBER" {
		t.Errorf("sentiment_score type = %v", score["type"])
	}
	indicators := props["key_sentiment_indicators"].(map[string]any)
	if indicators["type"] != "ARRAY" {
		t.Errorf("key_sentiment_indicators type = %v", indicators["type"])
	}
}

func TestProviderErrorMessages(t *testing.T) {
	wrapped := errors.New("connection refused")
	err := &ProviderError{Backend: "openai", Detail: "request failed", Err: wrapped}
	if !errors.Is(err, wrapped) {
		t.Error("ProviderError must unwrap to the underlying error")
	}
	if msg := err.Error(); !strings.Contains(msg, "openai") || !strings.Contains(msg, "connection refused") {
		t.Errorf("error message %q", msg)
	}

	bare := &ProviderError{Backend: "gemini", Detail: "empty candidates"}
	if msg := bare.Error(); !strings.Contains(msg, "gemini: empty candidates") {
		t.Errorf("error message %q", msg)
	}
}
