package kyc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"origination-engine/internal/domain/profile"
	"origination-engine/internal/pkg/apperrors"
)

// VerificationClient is the external document verification service. A
// non-response must be treated as pending, never as verified.
type VerificationClient interface {
	CheckDocument(ctx context.Context, documentID int64) (DocumentStatus, string, error)
}

type DocumentService interface {
	UploadDocument(ctx context.Context, profileID int64, kind DocumentKind, applicationID *int64, fileRef string) (*Document, error)

	GetDocument(ctx context.Context, documentID int64) (*Document, error)

	ListApplicationDocuments(ctx context.Context, applicationID int64) ([]*Document, error)

	// ReviewDocument records a manual review decision by a staff member.
	ReviewDocument(ctx context.Context, documentID int64, reviewerRole profile.Role, verdict DocumentStatus, reason string) (*Document, error)

	// RefreshFromVerifier pulls the external verifier's verdict for a pending
	// document. Verifier errors leave the document pending.
	RefreshFromVerifier(ctx context.Context, documentID int64) (*Document, error)

	// Stage1Verdict answers whether a profile may act beyond draft.
	Stage1Verdict(ctx context.Context, profileID int64) (Verdict, error)

	// Stage2Verdict answers whether an application may leave document
	// collection.
	Stage2Verdict(ctx context.Context, applicationID int64) (Verdict, error)

	// Stage2VerdictSince evaluates only documents uploaded at or after the
	// cutoff, and reports whether any such documents exist. Used to guard
	// re-submission after rejection.
	Stage2VerdictSince(ctx context.Context, applicationID int64, since time.Time) (Verdict, bool, error)
}

type documentServiceImpl struct {
	repo     Repository
	profiles profile.Repository
	verifier VerificationClient
	logger   *slog.Logger
}

func NewDocumentService(r Repository, profiles profile.Repository, verifier VerificationClient, logger *slog.Logger) DocumentService {
	return &documentServiceImpl{
		repo:     r,
		profiles: profiles,
		verifier: verifier,
		logger:   logger.With("component", "DocumentService"),
	}
}

func (s *documentServiceImpl) UploadDocument(ctx context.Context, profileID int64, kind DocumentKind, applicationID *int64, fileRef string) (*Document, error) {
	doc, err := NewDocument(profileID, kind, applicationID, fileRef)
	if err != nil {
		return nil, err
	}

	if _, err := s.profiles.GetProfileByID(ctx, profileID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: profile %d not found", apperrors.ErrValidation, profileID)
		}
		return nil, fmt.Errorf("failed to verify document owner: %w", err)
	}

	created, err := s.repo.CreateDocument(ctx, doc)
	if err != nil {
		s.logger.Error("Failed to save document", "error", err)
		return nil, fmt.Errorf("%w: failed to save document: %v", apperrors.ErrInternalServer, err)
	}

	// A fresh stage-1 upload moves the profile from not_started to pending.
	if created.Stage == Stage1 {
		if err := s.syncStage1Status(ctx, profileID); err != nil {
			s.logger.Error("Failed to update profile stage-1 status after upload", "profileID", profileID, "error", err)
		}
	}

	s.logger.Info("Document uploaded", "documentID", created.ID, "profileID", profileID, "kind", kind)
	return created, nil
}

func (s *documentServiceImpl) GetDocument(ctx context.Context, documentID int64) (*Document, error) {
	doc, err := s.repo.GetDocumentByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: document %d not found", apperrors.ErrNotFound, documentID)
		}
		return nil, fmt.Errorf("%w: failed to get document %d: %v", apperrors.ErrInternalServer, documentID, err)
	}
	return doc, nil
}

func (s *documentServiceImpl) ListApplicationDocuments(ctx context.Context, applicationID int64) ([]*Document, error) {
	docs, err := s.repo.ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list documents for application %d: %v", apperrors.ErrInternalServer, applicationID, err)
	}
	return docs, nil
}

func (s *documentServiceImpl) ReviewDocument(ctx context.Context, documentID int64, reviewerRole profile.Role, verdict DocumentStatus, reason string) (*Document, error) {
	if !reviewerRole.IsStaff() {
		return nil, fmt.Errorf("%w: role %s may not review documents", apperrors.ErrUnauthorizedActor, reviewerRole)
	}

	doc, err := s.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if err := doc.ApplyReview(verdict, reason); err != nil {
		return nil, err
	}
	return s.persistReview(ctx, doc)
}

func (s *documentServiceImpl) RefreshFromVerifier(ctx context.Context, documentID int64) (*Document, error) {
	doc, err := s.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Status != DocumentPending {
		return doc, nil
	}

	status, reason, err := s.verifier.CheckDocument(ctx, documentID)
	if err != nil {
		// Verifier unavailable: stay pending.
		s.logger.Warn("Document verifier unavailable, leaving document pending", "documentID", documentID, "error", err)
		return doc, nil
	}
	if status == DocumentPending {
		return doc, nil
	}

	if err := doc.ApplyReview(status, reason); err != nil {
		return nil, err
	}
	return s.persistReview(ctx, doc)
}

func (s *documentServiceImpl) persistReview(ctx context.Context, doc *Document) (*Document, error) {
	if err := s.repo.UpdateDocumentReview(ctx, doc); err != nil {
		s.logger.Error("Failed to persist document review", "documentID", doc.ID, "error", err)
		return nil, fmt.Errorf("%w: failed to persist review for document %d: %v", apperrors.ErrInternalServer, doc.ID, err)
	}

	if doc.Stage == Stage1 {
		if err := s.syncStage1Status(ctx, doc.ProfileID); err != nil {
			s.logger.Error("Failed to update profile stage-1 status after review", "profileID", doc.ProfileID, "error", err)
		}
	}

	s.logger.Info("Document review recorded", "documentID", doc.ID, "status", doc.Status)
	return doc, nil
}

// syncStage1Status is the only writer of a profile's stage-1 KYC fields.
func (s *documentServiceImpl) syncStage1Status(ctx context.Context, profileID int64) error {
	docs, err := s.repo.ListByProfileStage(ctx, profileID, Stage1)
	if err != nil {
		return err
	}

	status := profile.Stage1Pending
	completed := false
	switch Evaluate(Stage1, docs) {
	case VerdictApproved:
		status = profile.Stage1Verified
		completed = true
	case VerdictRejected:
		status = profile.Stage1Rejected
	default:
		if len(docs) == 0 {
			status = profile.Stage1NotStarted
		}
	}
	return s.profiles.UpdateStage1Status(ctx, profileID, status, completed)
}

func (s *documentServiceImpl) Stage1Verdict(ctx context.Context, profileID int64) (Verdict, error) {
	docs, err := s.repo.ListByProfileStage(ctx, profileID, Stage1)
	if err != nil {
		return VerdictPending, fmt.Errorf("%w: failed to load stage-1 documents for profile %d: %v", apperrors.ErrInternalServer, profileID, err)
	}
	return Evaluate(Stage1, docs), nil
}

func (s *documentServiceImpl) Stage2Verdict(ctx context.Context, applicationID int64) (Verdict, error) {
	docs, err := s.repo.ListByApplication(ctx, applicationID)
	if err != nil {
		return VerdictPending, fmt.Errorf("%w: failed to load stage-2 documents for application %d: %v", apperrors.ErrInternalServer, applicationID, err)
	}
	return Evaluate(Stage2, docs), nil
}

func (s *documentServiceImpl) Stage2VerdictSince(ctx context.Context, applicationID int64, since time.Time) (Verdict, bool, error) {
	docs, err := s.repo.ListByApplicationSince(ctx, applicationID, since)
	if err != nil {
		return VerdictPending, false, fmt.Errorf("%w: failed to load stage-2 documents for application %d: %v", apperrors.ErrInternalServer, applicationID, err)
	}
	return Evaluate(Stage2, docs), len(docs) > 0, nil
}
