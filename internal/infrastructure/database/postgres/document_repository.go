package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"origination-engine/internal/domain/kyc"
	"origination-engine/internal/infrastructure/monitoring"
	"origination-engine/internal/pkg/apperrors"
)

const documentColumns = `
    id, profile_id, stage, kind, status, rejection_reason, application_id, file_ref, created_at, updated_at`

type DocumentRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ kyc.Repository = (*DocumentRepository)(nil)

func NewDocumentRepository(db DBPool, logger *slog.Logger) *DocumentRepository {
	return &DocumentRepository{db: db, logger: logger.With("component", "DocumentRepository")}
}

func (r *DocumentRepository) CreateDocument(ctx context.Context, doc *kyc.Document) (*kyc.Document, error) {
	query := `
        INSERT INTO kyc_documents (profile_id, stage, kind, status, application_id, file_ref, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
        RETURNING ` + documentColumns

	created, err := scanDocument(r.db.QueryRow(ctx, query,
		doc.ProfileID, doc.Stage, doc.Kind, doc.Status, doc.ApplicationID, doc.FileRef))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert document", "profile_id", doc.ProfileID, "kind", doc.Kind, "error", err)
		return nil, fmt.Errorf("%w: failed to insert document: %w", apperrors.ErrDatabase, err)
	}
	r.logger.InfoContext(ctx, "Document created in DB", "document_id", created.ID, "stage", created.Stage.String())
	return created, nil
}

func (r *DocumentRepository) GetDocumentByID(ctx context.Context, documentID int64) (*kyc.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM kyc_documents WHERE id = $1`
	status := "success"
	startTime := time.Now()

	doc, err := scanDocument(r.db.QueryRow(ctx, query, documentID))

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("GetDocumentByID", status, time.Since(startTime))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Document not found", "document_id", documentID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get document by ID", "document_id", documentID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return doc, nil
}

func (r *DocumentRepository) ListByProfileStage(ctx context.Context, profileID int64, stage kyc.Stage) ([]*kyc.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM kyc_documents WHERE profile_id = $1 AND stage = $2 ORDER BY id`
	return r.queryDocuments(ctx, query, profileID, stage)
}

func (r *DocumentRepository) ListByApplication(ctx context.Context, applicationID int64) ([]*kyc.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM kyc_documents WHERE application_id = $1 ORDER BY id`
	return r.queryDocuments(ctx, query, applicationID)
}

func (r *DocumentRepository) ListByApplicationSince(ctx context.Context, applicationID int64, since time.Time) ([]*kyc.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM kyc_documents WHERE application_id = $1 AND created_at >= $2 ORDER BY id`
	return r.queryDocuments(ctx, query, applicationID, since)
}

func (r *DocumentRepository) UpdateDocumentReview(ctx context.Context, doc *kyc.Document) error {
	sql := `
        UPDATE kyc_documents
        SET status = $1, rejection_reason = $2, updated_at = NOW()
        WHERE id = $3`

	cmdTag, err := r.db.Exec(ctx, sql, doc.Status, doc.RejectionReason, doc.ID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update document review", "document_id", doc.ID, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *DocumentRepository) queryDocuments(ctx context.Context, query string, args ...any) ([]*kyc.Document, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query documents", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	docs := make([]*kyc.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan document row", "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		docs = append(docs, doc)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating document rows", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	return docs, nil
}

func scanDocument(row pgx.Row) (*kyc.Document, error) {
	var doc kyc.Document
	err := row.Scan(
		&doc.ID, &doc.ProfileID, &doc.Stage, &doc.Kind, &doc.Status,
		&doc.RejectionReason, &doc.ApplicationID, &doc.FileRef,
		&doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
