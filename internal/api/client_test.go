package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestGETAppliesBaseURLAndHeaders(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Api-Key"); got != "secret" {
			t.Errorf("X-Api-Key = %q", got)
		}
		if r.URL.RawQuery != "ticker=AMZN" {
			t.Errorf("query = %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer ts.Close()

	client := NewClient(WithBaseURL(ts.URL), WithHeader("X-Api-Key", "secret"))
	resp, err := client.GET(context.Background(), "?ticker=AMZN")
	if err != nil {
		t.Fatal(err)
	}

	var body struct {
		OK bool `json:"ok"`
	}
	if err := resp.ParseJSON(&body); err != nil {
		t.Fatal(err)
	}
	if !body.OK {
		t.Errorf("body = %s", resp.String())
	}
}

func TestGETSurfacesErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("not found"))
	}))
	defer ts.Close()

	client := NewClient(WithBaseURL(ts.URL))
	_, err := client.GET(context.Background(), "/missing")
	if err == nil {
		t.Fatal("4xx must be an error")
	}
	if !strings.Contains(err.Error(), "404") || !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %v", err)
	}
}

func TestGETWithRetryRecovers(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer ts.Close()

	client := NewClient(WithBaseURL(ts.URL))
	resp, err := client.GETWithRetry(context.Background(), "/", &RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.String() != "ok" {
		t.Errorf("body = %q", resp.String())
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("server hit %d times, want 3", got)
	}
}

func TestGETWithRetryGivesUp(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	client := NewClient(WithBaseURL(ts.URL))
	_, err := client.GETWithRetry(context.Background(), "/", &RetryConfig{
		MaxAttempts: 2,
		InitialWait: time.Millisecond,
		MaxWait:     2 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("exhausted retries must error")
	}
	if !strings.Contains(err.Error(), "2 retry attempts") {
		t.Errorf("error = %v", err)
	}
}
