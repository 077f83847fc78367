package literature

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/papers/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("query"); got != "retrieval augmentation" {
			t.Errorf("query = %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "3" {
			t.Errorf("limit = %q", got)
		}
		_ = json.NewEncoder(w).Encode(searchResponse{Papers: []Paper{
			{Title: "Paper One", Authors: []string{"Smith"}, Year: 2023},
			{Title: "Paper Two"},
		}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key")
	client.client = srv.Client()

	papers, err := client.Search(context.Background(), "retrieval augmentation", 3)
	if err != nil {
		t.Fatalf("Search() unexpected error: %v", err)
	}
	if len(papers) != 2 {
		t.Fatalf("expected 2 papers, got %d", len(papers))
	}
	if papers[0].Title != "Paper One" || papers[0].Year != 2023 {
		t.Errorf("papers[0] = %+v", papers[0])
	}
}

func TestSearchTruncatesToLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(searchResponse{Papers: []Paper{
			{Title: "One"}, {Title: "Two"}, {Title: "Three"}, {Title: "Four"},
		}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	client.client = srv.Client()

	papers, err := client.Search(context.Background(), "q", 2)
	if err != nil {
		t.Fatalf("Search() unexpected error: %v", err)
	}
	if len(papers) != 2 {
		t.Fatalf("expected result truncated to 2, got %d", len(papers))
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	client := NewClient("http://unused", "")

	if _, err := client.Search(context.Background(), "", 3); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestSearchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	client.client = srv.Client()

	if _, err := client.Search(context.Background(), "q", 3); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}
