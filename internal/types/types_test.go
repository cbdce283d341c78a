package types

import "testing"

func TestParseKind(t *testing.T) {
	cases := []struct {
		in      string
		want    AnalysisKind
		wantErr bool
	}{
		{"summary", KindSummary, false},
		{"topics", KindTopics, false},
		{"sentiment", KindSentiment, false},
		{"SENTIMENT", KindSentiment, false},
		{"  Summary ", KindSummary, false},
		{"", "", true},
		{"mood", "", true},
	}
	for _, tc := range cases {
		got, err := ParseKind(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseKind(%q): expected error, got %q", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseKind(%q): unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseKind(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCacheTag(t *testing.T) {
	if got := KindSummary.CacheTag(); got != "SUMMARY" {
		t.Errorf("summary tag = %q", got)
	}
	if got := KindTopics.CacheTag(); got != "TOPIC" {
		t.Errorf("topics tag = %q", got)
	}
	if got := KindSentiment.CacheTag(); got != "SENTIMENT" {
		t.Errorf("sentiment tag = %q", got)
	}
}

func TestCacheKeyNormalizesShareClasses(t *testing.T) {
	a := CacheKey("BRK.B", 2024, 1, KindSummary)
	b := CacheKey("brk-b", 2024, 1, KindSummary)
	if a != b {
		t.Fatalf("BRK.B and brk-b must share a cache key: %q vs %q", a, b)
	}
	if a != "BRK-B_2024_Q1_SUMMARY" {
		t.Errorf("unexpected key %q", a)
	}
}

func TestTranscriptID(t *testing.T) {
	tr := TranscriptRecord{Ticker: "amzn", Year: 2024, Quarter: 3}
	if got := tr.ID(); got != "AMZN_2024_Q3" {
		t.Errorf("ID() = %q, want AMZN_2024_Q3", got)
	}
	// The ID keeps the raw ticker form apart from case; only cache keys
	// normalize periods.
	dotted := TranscriptRecord{Ticker: "BRK.B", Year: 2023, Quarter: 4}
	if got := dotted.ID(); got != "BRK.B_2023_Q4" {
		t.Errorf("ID() = %q, want BRK.B_2023_Q4", got)
	}
}
