package http_test

import (
	"io"
	"log/slog"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	internalhttp "docinsight/internal/http"
	"docinsight/internal/insights"
	"docinsight/internal/insights/mocks"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRouterInsightsRoute(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)
	engine.EXPECT().
		Chat(gomock.Any(), gomock.Any()).
		Return(&insights.ChatResponse{
			Paragraphs: []insights.AnswerParagraph{{Content: "ok"}},
		}, nil)

	router := internalhttp.NewRouter(&internalhttp.Deps{Engine: engine})

	body := `{"documentId": "doc-1", "requesterId": "user-1", "question": "q"}`
	req := httptest.NewRequest(nethttp.MethodPost, "/api/v1/insights", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != nethttp.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	ctrl := gomock.NewController(t)
	router := internalhttp.NewRouter(&internalhttp.Deps{Engine: mocks.NewMockEngine(ctrl)})

	req := httptest.NewRequest(nethttp.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != nethttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestRouterMethodMismatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	router := internalhttp.NewRouter(&internalhttp.Deps{Engine: mocks.NewMockEngine(ctrl)})

	req := httptest.NewRequest(nethttp.MethodGet, "/api/v1/insights", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != nethttp.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
