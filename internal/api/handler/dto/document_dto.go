package dto

import (
	"fmt"
	"strconv"
	"time"

	"origination-engine/internal/domain/kyc"
)

type UploadDocumentRequest struct {
	Kind          string `json:"kind"`
	ApplicationID *int64 `json:"applicationId,omitempty"`
	FileRef       string `json:"fileRef"`
}

func (r *UploadDocumentRequest) Validate() error {
	if r.Kind == "" {
		return fmt.Errorf("kind is required")
	}
	if r.FileRef == "" {
		return fmt.Errorf("fileRef is required")
	}
	return nil
}

type ReviewDocumentRequest struct {
	Verdict string `json:"verdict"`
	Reason  string `json:"reason,omitempty"`
}

func (r *ReviewDocumentRequest) Validate() error {
	switch kyc.DocumentStatus(r.Verdict) {
	case kyc.DocumentVerified, kyc.DocumentRejected:
		return nil
	}
	return fmt.Errorf("verdict must be verified or rejected")
}

type DocumentResponse struct {
	ID              string    `json:"id"`
	ProfileID       string    `json:"profileId"`
	Stage           int       `json:"stage"`
	Kind            string    `json:"kind"`
	Status          string    `json:"status"`
	RejectionReason string    `json:"rejectionReason,omitempty"`
	ApplicationID   *string   `json:"applicationId,omitempty"`
	FileRef         string    `json:"fileRef"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func NewDocumentResponse(doc *kyc.Document) DocumentResponse {
	resp := DocumentResponse{
		ID:              strconv.FormatInt(doc.ID, 10),
		ProfileID:       strconv.FormatInt(doc.ProfileID, 10),
		Stage:           int(doc.Stage),
		Kind:            string(doc.Kind),
		Status:          string(doc.Status),
		RejectionReason: doc.RejectionReason,
		FileRef:         doc.FileRef,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}
	if doc.ApplicationID != nil {
		id := strconv.FormatInt(*doc.ApplicationID, 10)
		resp.ApplicationID = &id
	}
	return resp
}

func NewDocumentListResponse(docs []*kyc.Document) []DocumentResponse {
	out := make([]DocumentResponse, len(docs))
	for i, doc := range docs {
		out[i] = NewDocumentResponse(doc)
	}
	return out
}
