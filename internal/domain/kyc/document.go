package kyc

import (
	"fmt"
	"time"

	"origination-engine/internal/pkg/apperrors"
)

type Stage int

const (
	// Stage1 is account-level identity verification.
	Stage1 Stage = 1
	// Stage2 is per-application income verification.
	Stage2 Stage = 2
)

func (s Stage) String() string {
	return fmt.Sprintf("stage%d", int(s))
}

type DocumentKind string

const (
	KindIdentityProof DocumentKind = "identity_proof"
	KindProofOfIncome DocumentKind = "proof_of_income"
	KindProofOfFunds  DocumentKind = "proof_of_funds"
)

// StageFor maps a document kind onto the stage it evidences.
func StageFor(kind DocumentKind) (Stage, error) {
	switch kind {
	case KindIdentityProof:
		return Stage1, nil
	case KindProofOfIncome, KindProofOfFunds:
		return Stage2, nil
	}
	return 0, fmt.Errorf("%w: unknown document kind %q", apperrors.ErrInvalidArgument, kind)
}

type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "pending"
	DocumentVerified DocumentStatus = "verified"
	DocumentRejected DocumentStatus = "rejected"
)

// Document is one piece of KYC evidence. A stage-2 document always references
// exactly one loan application; a stage-1 document never does. A document is
// immutable once verified.
type Document struct {
	ID              int64
	ProfileID       int64
	Stage           Stage
	Kind            DocumentKind
	Status          DocumentStatus
	RejectionReason string
	ApplicationID   *int64
	FileRef         string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func NewDocument(profileID int64, kind DocumentKind, applicationID *int64, fileRef string) (*Document, error) {
	stage, err := StageFor(kind)
	if err != nil {
		return nil, err
	}
	if stage == Stage2 && applicationID == nil {
		return nil, apperrors.NewValidationError("applicationId", "stage-2 documents must reference a loan application")
	}
	if stage == Stage1 && applicationID != nil {
		return nil, apperrors.NewValidationError("applicationId", "stage-1 documents must not reference a loan application")
	}
	if fileRef == "" {
		return nil, apperrors.NewValidationError("fileRef", "file reference cannot be empty")
	}
	return &Document{
		ProfileID:     profileID,
		Stage:         stage,
		Kind:          kind,
		Status:        DocumentPending,
		ApplicationID: applicationID,
		FileRef:       fileRef,
	}, nil
}

// ApplyReview records a single review decision. Verified documents never
// change again.
func (d *Document) ApplyReview(verdict DocumentStatus, reason string) error {
	if d.Status == DocumentVerified {
		return fmt.Errorf("%w: document %d is already verified", apperrors.ErrConflict, d.ID)
	}
	switch verdict {
	case DocumentVerified:
		d.Status = DocumentVerified
		d.RejectionReason = ""
	case DocumentRejected:
		if reason == "" {
			return apperrors.NewValidationError("reason", "rejection requires a reason")
		}
		d.Status = DocumentRejected
		d.RejectionReason = reason
	default:
		return fmt.Errorf("%w: review verdict must be verified or rejected", apperrors.ErrInvalidArgument)
	}
	return nil
}
