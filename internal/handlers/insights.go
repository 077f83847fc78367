package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"docinsight/internal/contextutil"
	"docinsight/internal/insights"
	"docinsight/internal/literature"
	"docinsight/internal/storage"
)

// InsightsHandler handles HTTP requests for document-insights questions.
type InsightsHandler struct {
	engine insights.Engine
}

// NewInsightsHandler creates a new InsightsHandler.
func NewInsightsHandler(engine insights.Engine) *InsightsHandler {
	return &InsightsHandler{engine: engine}
}

// InsightsRequest represents the HTTP request payload for an insights question.
// This mirrors insights.ChatRequest but is defined here for HTTP layer separation.
//
// swagger:model InsightsRequest
type InsightsRequest struct {
	DocumentID  string   `json:"documentId"`
	RequesterID string   `json:"requesterId"`
	Question    string   `json:"question"`
	HTMLLocator string   `json:"htmlUrl,omitempty"`
	RawContexts []string `json:"rawContexts,omitempty"`
}

// InsightsResponse represents the HTTP response payload for an insights question.
//
// swagger:model InsightsResponse
type InsightsResponse struct {
	// Paragraphs of the generated answer, in presentation order.
	Paragraphs []insights.AnswerParagraph `json:"paragraphs"`

	// References is the ranked context list the answer may cite by id.
	References []insights.RankedContext `json:"references"`

	// ExternalReferences are works the model cited beyond the retrieved contexts.
	ExternalReferences []insights.ExternalReference `json:"externalReferences,omitempty"`

	// Followups are suggested next questions.
	Followups []string `json:"followups,omitempty"`

	// RelatedPapers is the raw candidate set from the literature search.
	RelatedPapers []literature.Paper `json:"relatedPapers,omitempty"`
}

// ErrorResponse represents an error response.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP handles HTTP requests for insights questions.
//
// Ask a question about a stored document. The system gathers grounding
// contexts from the document's web rendering, its pre-chunked extraction and
// any caller-supplied raw texts, ranks them against the question, then
// generates a cited answer.
//
// swagger:route POST /api/v1/insights askInsights
//
// # Ask a question about a document
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// parameters:
//   - in: body
//     name: body
//     required: true
//     schema:
//     "$ref": "#/definitions/InsightsRequest"
//
// responses:
//
//	'200':
//	  description: Successful response with answer paragraphs and references
//	  schema:
//	    "$ref": "#/definitions/InsightsResponse"
//	'400':
//	  description: Bad request (missing documentId, requesterId or question)
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'404':
//	  description: Document not found for this requester
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'422':
//	  description: No grounding context could be assembled for the document
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'502':
//	  description: External service error (LLM or embedding service unavailable)
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'500':
//	  description: Internal server error
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *InsightsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req InsightsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	chatReq := insights.ChatRequest{
		DocumentID:      req.DocumentID,
		RequesterID:     req.RequesterID,
		Question:        req.Question,
		HTMLLocator:     req.HTMLLocator,
		RawTextContexts: req.RawContexts,
	}

	chatResp, err := h.engine.Chat(ctx, chatReq)
	if err != nil {
		h.handleEngineError(w, ctx, err)
		return
	}

	resp := InsightsResponse{
		Paragraphs:         chatResp.Paragraphs,
		References:         chatResp.References,
		ExternalReferences: chatResp.ExternalReferences,
		Followups:          chatResp.Followups,
		RelatedPapers:      chatResp.RelatedPapers,
	}
	if resp.Paragraphs == nil {
		resp.Paragraphs = []insights.AnswerParagraph{}
	}
	if resp.References == nil {
		resp.References = []insights.RankedContext{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to encode response")
		return
	}
}

// handleEngineError maps engine errors to appropriate HTTP status codes.
func (h *InsightsHandler) handleEngineError(w http.ResponseWriter, ctx context.Context, err error) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "insights engine error", "error", err)

	var validationErr *insights.ValidationError
	if errors.As(err, &validationErr) {
		h.writeError(w, http.StatusBadRequest, validationErr.Message)
		return
	}
	if errors.Is(err, storage.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "Document not found")
		return
	}
	if errors.Is(err, insights.ErrInsufficientContext) {
		h.writeError(w, http.StatusUnprocessableEntity, "No grounding context available for this document")
		return
	}

	if errors.Is(err, insights.ErrExternalService) {
		h.writeError(w, http.StatusBadGateway, "External service error")
		return
	}

	h.writeError(w, http.StatusInternalServerError, "Failed to process question")
}

// writeError writes an error response.
func (h *InsightsHandler) writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}
