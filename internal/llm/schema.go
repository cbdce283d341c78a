package llm

import (
	"encoding/json"
	"fmt"

	"callpulse/internal/types"
)

// requiredSentimentFields enumerates every field a structured sentiment
// response must carry. Both backends declare this set in their request
// schema and ParseSentimentReport enforces it on the way back.
var requiredSentimentFields = []string{
	"sentiment_score",
	"sentiment_explanation",
	"financial_performance_score",
	"financial_performance_explanation",
	"forward_guidance_score",
	"forward_guidance_explanation",
	"management_confidence_score",
	"management_confidence_explanation",
	"analyst_reaction_score",
	"analyst_reaction_explanation",
	"strategic_direction_score",
	"strategic_direction_explanation",
	"key_sentiment_indicators",
	"sentiment_shifts",
	"confidence_assessment",
}

// sentimentFieldTypes maps each required field to its JSON-schema type.
var sentimentFieldTypes = map[string]string{
	"sentiment_score":                   "number",
	"sentiment_explanation":             "string",
	"financial_performance_score":       "number",
	"financial_performance_explanation": "string",
	"forward_guidance_score":            "number",
	"forward_guidance_explanation":      "string",
	"management_confidence_score":       "number",
	"management_confidence_explanation": "string",
	"analyst_reaction_score":            "number",
	"analyst_reaction_explanation":      "string",
	"strategic_direction_score":         "number",
	"strategic_direction_explanation":   "string",
	"key_sentiment_indicators":          "array",
	"sentiment_shifts":                  "array",
	"confidence_assessment":             "string",
}

// SentimentJSONSchema builds the standard JSON Schema object declared in
// OpenAI structured-output requests.
func SentimentJSONSchema() map[string]any {
	props := make(map[string]any, len(sentimentFieldTypes))
	for field, typ := range sentimentFieldTypes {
		if typ == "array" {
			props[field] = map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
			continue
		}
		props[field] = map[string]any{"type": typ}
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             requiredSentimentFields,
		"additionalProperties": false,
	}
}

// SentimentResponseSchema builds the schema in the uppercase OpenAPI style
// the Gemini generateContent API expects.
func SentimentResponseSchema() map[string]any {
	upper := map[string]string{"number": "NUMBER", "string": "STRING", "array": "ARRAY"}
	props := make(map[string]any, len(sentimentFieldTypes))
	for field, typ := range sentimentFieldTypes {
		if typ == "array" {
			props[field] = map[string]any{"type": "ARRAY", "items": map[string]any{"type": "STRING"}}
			continue
		}
		props[field] = map[string]any{"type": upper[typ]}
	}
	return map[string]any{
		"type":       "OBJECT",
		"properties": props,
		"required":   requiredSentimentFields,
	}
}

// ParseSentimentReport validates raw structured output and decodes it into a
// SentimentReport. Any missing required field or an out-of-range overall
// score is a SchemaError.
func ParseSentimentReport(raw []byte) (*types.SentimentReport, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, &SchemaError{Detail: fmt.Sprintf("not a JSON object: %v", err)}
	}

	var missing []string
	for _, f := range requiredSentimentFields {
		if _, ok := fields[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	var report types.SentimentReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, &SchemaError{Detail: fmt.Sprintf("field decode failed: %v", err)}
	}
	if report.SentimentScore < -1.0 || report.SentimentScore > 1.0 {
		return nil, &SchemaError{Detail: fmt.Sprintf("sentiment_score %.2f outside [-1.0, 1.0]", report.SentimentScore)}
	}
	return &report, nil
}
