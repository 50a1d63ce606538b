package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"jarvis/backend/go/internal/config"
	"jarvis/backend/go/pkg/circuitbreaker"
)

func TestClient_PostJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "echo " + in["prompt"]})
	}))
	defer ts.Close()

	c, err := NewClient(ts.URL+"/", config.CircuitBreakerConfig{})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	var out map[string]string
	if err := c.PostJSON(context.Background(), "/api/chat", map[string]string{"prompt": "hi"}, &out); err != nil {
		t.Fatalf("PostJSON() error = %v", err)
	}
	if out["text"] != "echo hi" {
		t.Errorf("Expected 'echo hi', got %q", out["text"])
	}
}

func TestClient_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"The 'prompt' field is required."}`))
	}))
	defer ts.Close()

	c, _ := NewClient(ts.URL, config.CircuitBreakerConfig{})
	err := c.GetJSON(context.Background(), "/", nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Message != "The 'prompt' field is required." {
		t.Errorf("Unexpected error %+v", apiErr)
	}
}

func TestClient_CircuitBreaker(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}))
	defer ts.Close()

	c, err := NewClient(ts.URL, config.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		SuccessThreshold: 1,
		Timeout:          "1m",
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	// First 2 requests reach the server and trip the circuit
	for i := 0; i < 2; i++ {
		err := c.GetJSON(context.Background(), "/", nil)
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusInternalServerError {
			t.Errorf("Expected 500 APIError on request %d, got %v", i+1, err)
		}
	}

	err = c.GetJSON(context.Background(), "/", nil)
	if !errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		t.Errorf("Expected ErrCircuitOpen, got %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected 2 calls to reach the server, got %d", calls)
	}
}
