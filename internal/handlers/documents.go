package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"docinsight/internal/contextutil"
	"docinsight/internal/storage"
)

// DocumentsHandler handles HTTP requests for document registration.
type DocumentsHandler struct {
	documents storage.DocumentStore
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(documents storage.DocumentStore) *DocumentsHandler {
	return &DocumentsHandler{documents: documents}
}

// RegisterDocumentRequest represents the HTTP request payload for registering
// a document.
//
// swagger:model RegisterDocumentRequest
type RegisterDocumentRequest struct {
	RequesterID string `json:"requesterId"`
	Title       string `json:"title,omitempty"`
	Authors     string `json:"authors,omitempty"`
	HTMLLocator string `json:"htmlUrl,omitempty"`
	PDFLocator  string `json:"pdfUrl,omitempty"`
}

// RegisterDocumentResponse represents the HTTP response payload for a
// registered document.
//
// swagger:model RegisterDocumentResponse
type RegisterDocumentResponse struct {
	DocumentID string `json:"documentId"`
}

// ServeHTTP handles HTTP requests for document registration.
//
// Register a document for later questions. The document is only recorded
// here; its text is ingested lazily on the first question that finds no
// stored contexts.
//
// swagger:route POST /api/v1/documents registerDocument
//
// # Register a document
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
//     "$ref": "#/definitions/RegisterDocumentRequest"
//
// responses:
//
//	'201':
//	  description: Document registered
//	  schema:
//	    "$ref": "#/definitions/RegisterDocumentResponse"
//	'400':
//	  description: Bad request (missing requesterId or both locators)
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'500':
//	  description: Internal server error
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *DocumentsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req RegisterDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.RequesterID) == "" {
		writeJSONError(w, http.StatusBadRequest, "requesterId cannot be empty")
		return
	}
	if req.HTMLLocator == "" && req.PDFLocator == "" {
		writeJSONError(w, http.StatusBadRequest, "at least one of htmlUrl or pdfUrl is required")
		return
	}

	doc := &storage.DocumentRecord{
		ID:          uuid.NewString(),
		RequesterID: req.RequesterID,
		Title:       req.Title,
		Authors:     req.Authors,
		HTMLURL:     req.HTMLLocator,
		PDFURL:      req.PDFLocator,
	}

	if err := h.documents.Insert(ctx, doc); err != nil {
		logger.ErrorContext(ctx, "failed to register document", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to register document")
		return
	}

	logger.InfoContext(ctx, "document registered", "document_id", doc.ID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(RegisterDocumentResponse{DocumentID: doc.ID}); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeJSONError writes an error response.
func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
