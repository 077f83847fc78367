package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func embeddingsServer(t *testing.T, vectors [][]float64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("path = %q", r.URL.Path)
		}
		data := make([]EmbeddingData, len(vectors))
		for i, v := range vectors {
			data[i] = EmbeddingData{Embedding: v}
		}
		_ = json.NewEncoder(w).Encode(EmbeddingsResponse{Data: data})
	}))
}

func TestEmbedTextsSuccess(t *testing.T) {
	srv := embeddingsServer(t, [][]float64{{0.1, 0.2, 0.3}, {0.4, 0.5, 0.6}})
	defer srv.Close()

	client := NewEmbeddingsClient(srv.URL, "k", "m", 3)
	client.client = srv.Client()

	vecs, err := client.EmbedTexts(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("EmbedTexts() unexpected error: %v", err)
	}
	if len(vecs) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vecs))
	}
	if vecs[0][1] != float32(0.2) {
		t.Errorf("vector value = %f, want 0.2", vecs[0][1])
	}
}

func TestEmbedTextsSizeMismatch(t *testing.T) {
	srv := embeddingsServer(t, [][]float64{{0.1, 0.2}})
	defer srv.Close()

	client := NewEmbeddingsClient(srv.URL, "k", "m", 3)
	client.client = srv.Client()

	if _, err := client.EmbedTexts(context.Background(), []string{"a"}); err == nil {
		t.Fatal("expected error for wrong vector size")
	}
}

func TestEmbedTextsCountMismatch(t *testing.T) {
	srv := embeddingsServer(t, [][]float64{{0.1, 0.2, 0.3}})
	defer srv.Close()

	client := NewEmbeddingsClient(srv.URL, "k", "m", 3)
	client.client = srv.Client()

	if _, err := client.EmbedTexts(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("expected error when embedding count differs from input count")
	}
}

func TestEmbedTextsEmptyInput(t *testing.T) {
	client := NewEmbeddingsClient("http://unused", "k", "m", 3)

	if _, err := client.EmbedTexts(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestEmbedTextSingle(t *testing.T) {
	srv := embeddingsServer(t, [][]float64{{1, 0, 0}})
	defer srv.Close()

	client := NewEmbeddingsClient(srv.URL, "k", "m", 3)
	client.client = srv.Client()

	vec, err := client.EmbedText(context.Background(), "a")
	if err != nil {
		t.Fatalf("EmbedText() unexpected error: %v", err)
	}
	if len(vec) != 3 || vec[0] != 1 {
		t.Errorf("vec = %v", vec)
	}
}
