package handlers_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"docinsight/internal/handlers"
	"docinsight/internal/insights"
	"docinsight/internal/insights/mocks"
	"docinsight/internal/storage"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func postInsights(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/insights", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

const validBody = `{"documentId": "doc-1", "requesterId": "user-1", "question": "What is new?"}`

func TestInsightsHandlerSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)
	handler := handlers.NewInsightsHandler(engine)

	engine.EXPECT().
		Chat(gomock.Any(), insights.ChatRequest{
			DocumentID:  "doc-1",
			RequesterID: "user-1",
			Question:    "What is new?",
		}).
		Return(&insights.ChatResponse{
			Paragraphs: []insights.AnswerParagraph{{Content: "A new method.", ContextIDs: []string{"html-0"}}},
			References: []insights.RankedContext{{ID: "html-0", Source: insights.SourceWeb, Excerpt: "context text", Text: "secret full text"}},
			Followups:  []string{"How does it compare?"},
		}, nil)

	rec := postInsights(t, handler, validBody)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var resp handlers.InsightsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Paragraphs) != 1 || resp.Paragraphs[0].Content != "A new method." {
		t.Errorf("paragraphs = %+v", resp.Paragraphs)
	}
	if len(resp.References) != 1 || resp.References[0].ID != "html-0" {
		t.Errorf("references = %+v", resp.References)
	}
	// Full context text never leaves the API, only the excerpt.
	if strings.Contains(rec.Body.String(), "secret full text") {
		t.Error("full context text leaked into the response body")
	}
}

func TestInsightsHandlerInvalidBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	handler := handlers.NewInsightsHandler(mocks.NewMockEngine(ctrl))

	rec := postInsights(t, handler, "{not json")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestInsightsHandlerMethodNotAllowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	handler := handlers.NewInsightsHandler(mocks.NewMockEngine(ctrl))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/insights", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestInsightsHandlerErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "validation error",
			err:        &insights.ValidationError{Field: "question", Message: "cannot be empty"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "document not found",
			err:        fmt.Errorf("failed to look up document: %w", storage.ErrNotFound),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "insufficient context",
			err:        insights.ErrInsufficientContext,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "model failure",
			err:        fmt.Errorf("failed to get model response: %w: %w", insights.ErrExternalService, errors.New("connection refused")),
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "unknown failure",
			err:        errors.New("something else broke"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			engine := mocks.NewMockEngine(ctrl)
			handler := handlers.NewInsightsHandler(engine)

			engine.EXPECT().
				Chat(gomock.Any(), gomock.Any()).
				Return(nil, tt.err)

			rec := postInsights(t, handler, validBody)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var errResp handlers.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
				t.Fatalf("error body is not JSON: %v", err)
			}
			if errResp.Error == "" {
				t.Error("error body should carry a message")
			}
		})
	}
}
