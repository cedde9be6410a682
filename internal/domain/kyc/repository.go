package kyc

import (
	"context"
	"time"
)

type Repository interface {
	CreateDocument(ctx context.Context, doc *Document) (*Document, error)

	GetDocumentByID(ctx context.Context, documentID int64) (*Document, error)

	// ListByProfileStage returns all documents a profile has uploaded for a
	// stage, across every application for stage 2.
	ListByProfileStage(ctx context.Context, profileID int64, stage Stage) ([]*Document, error)

	ListByApplication(ctx context.Context, applicationID int64) ([]*Document, error)

	// ListByApplicationSince returns stage-2 documents for an application
	// uploaded at or after the given time. Used by the re-submission guard.
	ListByApplicationSince(ctx context.Context, applicationID int64, since time.Time) ([]*Document, error)

	UpdateDocumentReview(ctx context.Context, doc *Document) error
}
