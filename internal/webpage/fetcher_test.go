package webpage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func testFetcher(srv *httptest.Server) *Fetcher {
	return &Fetcher{
		MaxAttempts:    3,
		RetryBaseDelay: time.Millisecond,
		client:         srv.Client(),
	}
}

func TestFetchTextStripsMarkup(t *testing.T) {
	page := `<html><head>
		<style>body { color: red; }</style>
		<script>console.log("hidden");</script>
	</head><body>
		<h1>Title Here</h1>
		<p>First paragraph with <b>bold</b> text.</p>
		<p>Second paragraph.</p>
		<img src="fig1.png" alt="Figure 1 overview diagram">
		<noscript>enable javascript</noscript>
	</body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	text, err := testFetcher(srv).FetchText(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchText() unexpected error: %v", err)
	}

	for _, want := range []string{"Title Here", "First paragraph with bold text.", "Second paragraph.", "Figure 1 overview diagram"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected text to contain %q, got:\n%s", want, text)
		}
	}
	for _, banned := range []string{"console.log", "color: red", "enable javascript", "<p>"} {
		if strings.Contains(text, banned) {
			t.Errorf("expected text to not contain %q, got:\n%s", banned, text)
		}
	}
}

func TestFetchTextBlockBoundaries(t *testing.T) {
	page := `<html><body><p>Alpha.</p><p>Beta.</p></body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	text, err := testFetcher(srv).FetchText(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchText() unexpected error: %v", err)
	}

	paragraphs := Segment(text, 0)
	if len(paragraphs) != 2 {
		t.Fatalf("expected block elements to produce 2 paragraphs, got %d (%q)", len(paragraphs), text)
	}
}

func TestFetchTextRetriesConflict(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusConflict)
			return
		}
		_, _ = w.Write([]byte("<html><body><p>Ready now.</p></body></html>"))
	}))
	defer srv.Close()

	text, err := testFetcher(srv).FetchText(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchText() unexpected error: %v", err)
	}
	if !strings.Contains(text, "Ready now.") {
		t.Errorf("expected retried fetch to return page text, got %q", text)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestFetchTextConflictExhaustsAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	_, err := testFetcher(srv).FetchText(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestFetchTextNoBackoffAfterFinalAttempt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	f := &Fetcher{
		MaxAttempts:    1,
		RetryBaseDelay: 300 * time.Millisecond,
		client:         srv.Client(),
	}

	start := time.Now()
	_, err := f.FetchText(context.Background(), srv.URL)
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	// A single attempt has nothing left to wait for.
	if elapsed >= f.RetryBaseDelay {
		t.Errorf("final attempt slept for %v before giving up", elapsed)
	}
}

func TestFetchTextOtherStatusNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testFetcher(srv).FetchText(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("expected a single attempt for non-conflict status, got %d", got)
	}
}

func TestCollapseWhitespace(t *testing.T) {
	in := "a   b\t\tc\n\n\n\n\nd  e"
	want := "a b c\n\nd e"

	if got := collapseWhitespace(in); got != want {
		t.Errorf("collapseWhitespace() = %q, want %q", got, want)
	}
}
