package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"origination-engine/internal/api/handler/dto"
	"origination-engine/internal/domain/kyc"
	"origination-engine/internal/pkg/apperrors"
)

type DocumentHandler struct {
	service kyc.DocumentService
	logger  *slog.Logger
}

func NewDocumentHandler(s kyc.DocumentService, l *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		service: s,
		logger:  l.With("component", "DocumentHandler"),
	}
}

// UploadDocument registers a KYC document for the calling profile.
//
// @Summary Upload a KYC document
// @Description Stage-2 kinds (proof_of_income, proof_of_funds) must reference a loan application; stage-1 kinds must not.
// @Tags Documents
// @Accept json
// @Produce json
// @Param request body dto.UploadDocumentRequest true "Document payload"
// @Success 201 {object} dto.DocumentResponse "Document registered"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Router /documents [post]
// @Security BearerAuth
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.UploadDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	doc, err := h.service.UploadDocument(r.Context(), actor.ID, kyc.DocumentKind(req.Kind), req.ApplicationID, req.FileRef)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, dto.NewDocumentResponse(doc))
}

// GetDocument retrieves a document.
//
// @Summary Retrieve a document
// @Tags Documents
// @Produce json
// @Param documentID path int true "Document ID"
// @Success 200 {object} dto.DocumentResponse "Document details"
// @Failure 404 {object} dto.ErrorResponse "Document not found"
// @Router /documents/{documentID} [get]
// @Security BearerAuth
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	documentID, err := idFromURL(r, "documentID")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	doc, err := h.service.GetDocument(r.Context(), documentID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewDocumentResponse(doc))
}

// ListApplicationDocuments lists the stage-2 documents of an application.
//
// @Summary List an application's documents
// @Tags Documents
// @Produce json
// @Param applicationID path int true "Application ID"
// @Success 200 {array} dto.DocumentResponse "Documents"
// @Router /applications/{applicationID}/documents [get]
// @Security BearerAuth
func (h *DocumentHandler) ListApplicationDocuments(w http.ResponseWriter, r *http.Request) {
	applicationID, err := idFromURL(r, "applicationID")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	docs, err := h.service.ListApplicationDocuments(r.Context(), applicationID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewDocumentListResponse(docs))
}

// ReviewDocument records a staff verdict on a document.
//
// @Summary Review a document
// @Description Verifies or rejects a pending document. Rejection requires a reason; verified documents are immutable.
// @Tags Documents
// @Accept json
// @Produce json
// @Param documentID path int true "Document ID"
// @Param request body dto.ReviewDocumentRequest true "Review payload"
// @Success 200 {object} dto.DocumentResponse "Review recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid verdict or missing reason"
// @Failure 403 {object} dto.ErrorResponse "Caller is not staff"
// @Failure 404 {object} dto.ErrorResponse "Document not found"
// @Router /documents/{documentID}/review [put]
// @Security BearerAuth
func (h *DocumentHandler) ReviewDocument(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}

	documentID, err := idFromURL(r, "documentID")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	var req dto.ReviewDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	doc, err := h.service.ReviewDocument(r.Context(), documentID, actor.Role, kyc.DocumentStatus(req.Verdict), req.Reason)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewDocumentResponse(doc))
}

// RefreshDocument re-checks a pending document against the verifier.
//
// @Summary Refresh a document from the verification service
// @Tags Documents
// @Produce json
// @Param documentID path int true "Document ID"
// @Success 200 {object} dto.DocumentResponse "Current verification state"
// @Failure 404 {object} dto.ErrorResponse "Document not found"
// @Router /documents/{documentID}/refresh [post]
// @Security BearerAuth
func (h *DocumentHandler) RefreshDocument(w http.ResponseWriter, r *http.Request) {
	documentID, err := idFromURL(r, "documentID")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	doc, err := h.service.RefreshFromVerifier(r.Context(), documentID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewDocumentResponse(doc))
}
