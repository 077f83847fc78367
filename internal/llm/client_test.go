package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCompleteSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q", req.Model)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("messages = %+v", req.Messages)
		}
		if !strings.Contains(req.Messages[0].Content, "the prompt") {
			t.Errorf("prompt not forwarded, got %q", req.Messages[0].Content)
		}

		_ = json.NewEncoder(w).Encode(ChatResponse{
			Choices: []ChatChoice{{Message: ChatChoiceMessage{Role: "assistant", Content: "the reply"}}},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", "test-model")
	client.client = srv.Client()

	got, err := client.Complete(context.Background(), "the prompt")
	if err != nil {
		t.Fatalf("Complete() unexpected error: %v", err)
	}
	if got != "the reply" {
		t.Errorf("Complete() = %q, want %q", got, "the reply")
	}
}

func TestCompleteBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "k", "m")
	client.client = srv.Client()

	if _, err := client.Complete(context.Background(), "p"); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestCompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ChatResponse{})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "k", "m")
	client.client = srv.Client()

	if _, err := client.Complete(context.Background(), "p"); err == nil {
		t.Fatal("expected error when no choices returned")
	}
}
