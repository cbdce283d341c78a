package llm

import (
	"fmt"
	"strings"
)

// ProviderError is the single error surface of a provider backend. Network
// failures, rate limits, provider-side error payloads, and schema violations
// all arrive here; callers that need finer detail inspect Detail or unwrap.
type ProviderError struct {
	Backend string // "openai", "gemini"
	Detail  string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Backend, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Backend, e.Detail)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// SchemaError reports a structured response that does not conform to the
// sentiment output schema.
type SchemaError struct {
	Missing []string
	Detail  string
}

func (e *SchemaError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("sentiment output schema violation: missing fields [%s]", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("sentiment output schema violation: %s", e.Detail)
}
