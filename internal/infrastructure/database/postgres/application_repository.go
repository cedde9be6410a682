package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pashagolub/pgxmock/v4"

	"origination-engine/internal/domain/application"
	"origination-engine/internal/domain/schedule"
	"origination-engine/internal/infrastructure/monitoring"
	"origination-engine/internal/pkg/apperrors"
)

type DBPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Acquire(ctx context.Context) (*pgxpool.Conn, error)
	Close()
}

var _ DBPool = (*pgxpool.Pool)(nil)

var _ DBPool = (pgxmock.PgxPoolIface)(nil)

var errMsgFormat = "%w: %w"

const applicationColumns = `
    id, borrower_id, amount, term_months, annual_rate_percent, monthly_installment,
    purpose, status, version, risk_score, risk_level, risk_flags, disposition,
    reviewer_id, rejection_reason, review_notes,
    submitted_at, approved_at, rejected_at, disbursed_at, created_at, updated_at`

const installmentColumns = `
    id, application_id, sequence, due_date, principal, interest, total,
    status, paid_amount, paid_at, created_at, updated_at`

type ApplicationRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ application.Repository = (*ApplicationRepository)(nil)

func NewApplicationRepository(db DBPool, logger *slog.Logger) *ApplicationRepository {
	return &ApplicationRepository{db: db, logger: logger.With("component", "ApplicationRepository")}
}

func (r *ApplicationRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to begin transaction", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return tx, nil
}

func (r *ApplicationRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		r.logger.ErrorContext(ctx, "Failed to commit transaction", "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return nil
}

func (r *ApplicationRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	err := tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		r.logger.ErrorContext(ctx, "Failed to rollback transaction", "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return nil
}

func (r *ApplicationRepository) CreateApplication(ctx context.Context, app *application.LoanApplication) (*application.LoanApplication, error) {
	query := `
        INSERT INTO loan_applications
            (borrower_id, amount, term_months, annual_rate_percent, monthly_installment,
             purpose, status, version, disposition, review_notes, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, 1, $8, $9, NOW(), NOW())
        RETURNING ` + applicationColumns

	created, err := r.scanApplication(r.db.QueryRow(ctx, query,
		app.BorrowerID, app.Amount, app.TermMonths, app.AnnualRatePercent, app.MonthlyInstallment,
		app.Purpose, app.Status, app.Disposition, app.ReviewNotes,
	))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert application", "borrower_id", app.BorrowerID, "error", err)
		return nil, fmt.Errorf("%w: failed to insert application: %w", apperrors.ErrDatabase, err)
	}
	r.logger.InfoContext(ctx, "Application created in DB", "application_id", created.ID)
	return created, nil
}

func (r *ApplicationRepository) GetApplicationByID(ctx context.Context, applicationID int64) (*application.LoanApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM loan_applications WHERE id = $1`
	status := "success"
	startTime := time.Now()

	app, err := r.scanApplication(r.db.QueryRow(ctx, query, applicationID))

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("GetApplicationByID", status, time.Since(startTime))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Application not found", "application_id", applicationID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get application by ID", "application_id", applicationID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return app, nil
}

func (r *ApplicationRepository) ListByBorrower(ctx context.Context, borrowerID int64) ([]*application.LoanApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM loan_applications WHERE borrower_id = $1 ORDER BY id`
	return r.queryApplications(ctx, query, borrowerID)
}

func (r *ApplicationRepository) ListByStatus(ctx context.Context, status application.Status) ([]*application.LoanApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM loan_applications WHERE status = $1 ORDER BY id`
	return r.queryApplications(ctx, query, status)
}

// UpdateApplication persists every mutable field, pinned to the version the
// caller read. A concurrent writer bumps the version first and this update
// matches zero rows.
func (r *ApplicationRepository) UpdateApplication(ctx context.Context, app *application.LoanApplication) error {
	cmdTag, err := r.execUpdate(ctx, r.db.Exec, app)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update application", "application_id", app.ID, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrConflictingUpdate
	}
	app.Version++
	return nil
}

func (r *ApplicationRepository) UpdateApplicationInTx(ctx context.Context, tx pgx.Tx, app *application.LoanApplication) error {
	cmdTag, err := r.execUpdate(ctx, tx.Exec, app)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update application in tx", "application_id", app.ID, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrConflictingUpdate
	}
	app.Version++
	return nil
}

type execFunc func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)

func (r *ApplicationRepository) execUpdate(ctx context.Context, exec execFunc, app *application.LoanApplication) (pgconn.CommandTag, error) {
	query := `
        UPDATE loan_applications
        SET status = $1, monthly_installment = $2,
            risk_score = $3, risk_level = $4, risk_flags = $5, disposition = $6,
            reviewer_id = $7, rejection_reason = $8, review_notes = $9,
            submitted_at = $10, approved_at = $11, rejected_at = $12, disbursed_at = $13,
            version = version + 1, updated_at = NOW()
        WHERE id = $14 AND version = $15`

	var riskScore *int
	var riskLevel *string
	var riskFlags []string
	if app.Risk != nil {
		riskScore = &app.Risk.Score
		level := string(app.Risk.Level)
		riskLevel = &level
		riskFlags = app.Risk.Flags
	}

	return exec(ctx, query,
		app.Status, app.MonthlyInstallment,
		riskScore, riskLevel, riskFlags, app.Disposition,
		app.ReviewerID, app.RejectionReason, app.ReviewNotes,
		app.SubmittedAt, app.ApprovedAt, app.RejectedAt, app.DisbursedAt,
		app.ID, app.Version,
	)
}

// DisburseWithSchedule writes the status flip and the full installment batch
// in one transaction so a partial schedule can never exist.
func (r *ApplicationRepository) DisburseWithSchedule(ctx context.Context, app *application.LoanApplication, installments []*schedule.Installment) error {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer r.RollbackTx(ctx, tx)

	if err := r.UpdateApplicationInTx(ctx, tx, app); err != nil {
		return err
	}

	insertSQL := `
        INSERT INTO payment_installments
            (application_id, sequence, due_date, principal, interest, total, status, paid_amount, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, 0, NOW(), NOW())`

	batch := &pgx.Batch{}
	for _, inst := range installments {
		batch.Queue(insertSQL, inst.ApplicationID, inst.Sequence, inst.DueDate,
			inst.Principal, inst.Interest, inst.Total, inst.Status)
	}

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < len(installments); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			r.logger.ErrorContext(ctx, "Failed executing installment batch insert", "error", err, "entry_index", i, "application_id", app.ID)
			return fmt.Errorf("%w: failed inserting installment %d: %w", apperrors.ErrDatabase, i+1, err)
		}
	}
	if err := results.Close(); err != nil {
		r.logger.ErrorContext(ctx, "Failed closing installment batch results", "error", err, "application_id", app.ID)
		return fmt.Errorf("%w: closing batch results failed: %w", apperrors.ErrDatabase, err)
	}

	if err := r.CommitTx(ctx, tx); err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "Disbursement committed", "application_id", app.ID, "num_installments", len(installments))
	return nil
}

func (r *ApplicationRepository) GetScheduleByApplicationID(ctx context.Context, applicationID int64) ([]*schedule.Installment, error) {
	query := `SELECT ` + installmentColumns + `
        FROM payment_installments
        WHERE application_id = $1
        ORDER BY sequence ASC`

	rows, err := r.db.Query(ctx, query, applicationID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query installment schedule", "application_id", applicationID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	installments := make([]*schedule.Installment, 0)
	for rows.Next() {
		inst, err := scanInstallment(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan installment row", "application_id", applicationID, "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		installments = append(installments, inst)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating installment rows", "application_id", applicationID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	return installments, nil
}

func (r *ApplicationRepository) FindOldestUnpaidInstallmentForUpdate(ctx context.Context, tx pgx.Tx, applicationID int64) (*schedule.Installment, error) {
	query := `SELECT ` + installmentColumns + `
        FROM payment_installments
        WHERE application_id = $1 AND status = 'pending'
        ORDER BY sequence ASC
        LIMIT 1
        FOR UPDATE`

	inst, err := scanInstallment(tx.QueryRow(ctx, query, applicationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.InfoContext(ctx, "No pending installment found for update", "application_id", applicationID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to find/lock oldest unpaid installment", "application_id", applicationID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return inst, nil
}

func (r *ApplicationRepository) UpdateInstallmentInTx(ctx context.Context, tx pgx.Tx, inst *schedule.Installment) error {
	sql := `
        UPDATE payment_installments
        SET paid_amount = $1, paid_at = $2, status = $3, updated_at = NOW()
        WHERE id = $4 AND application_id = $5`

	cmdTag, err := tx.Exec(ctx, sql, inst.PaidAmount, inst.PaidAt, inst.Status, inst.ID, inst.ApplicationID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update installment", "installment_id", inst.ID, "application_id", inst.ApplicationID, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() != 1 {
		r.logger.ErrorContext(ctx, "Installment update affected zero rows", "installment_id", inst.ID, "application_id", inst.ApplicationID)
		return fmt.Errorf("%w: installment update affected zero rows", apperrors.ErrDatabase)
	}
	return nil
}

func (r *ApplicationRepository) CountUnpaidInTx(ctx context.Context, tx pgx.Tx, applicationID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM payment_installments WHERE application_id = $1 AND status != 'paid'`
	if err := tx.QueryRow(ctx, query, applicationID).Scan(&count); err != nil {
		r.logger.ErrorContext(ctx, "Failed to count unpaid installments", "application_id", applicationID, "error", err)
		return 0, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return count, nil
}

func (r *ApplicationRepository) GetAllDisbursedIDs(ctx context.Context) ([]int64, error) {
	logCtx := r.logger.With(slog.String("operation", "GetAllDisbursedIDs"))
	logCtx.DebugContext(ctx, "Attempting to get all disbursed application IDs")

	query := `SELECT id FROM loan_applications WHERE status = $1 ORDER BY id`

	rows, err := r.db.Query(ctx, query, application.StatusDisbursed)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to query disbursed application IDs", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query disbursed applications: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			logCtx.ErrorContext(ctx, "Failed to scan disbursed application ID row", slog.Any("error", err))
			return nil, fmt.Errorf("%w: failed scanning disbursed application ID: %w", apperrors.ErrDatabase, err)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		logCtx.ErrorContext(ctx, "Error iterating disbursed application ID rows", slog.Any("error", err))
		return nil, fmt.Errorf("%w: error iterating disbursed application IDs: %w", apperrors.ErrDatabase, err)
	}

	logCtx.DebugContext(ctx, "Finished getting disbursed application IDs", slog.Int("count", len(ids)))
	return ids, nil
}

func (r *ApplicationRepository) queryApplications(ctx context.Context, query string, args ...any) ([]*application.LoanApplication, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query applications", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	apps := make([]*application.LoanApplication, 0)
	for rows.Next() {
		app, err := r.scanApplication(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan application row", "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		apps = append(apps, app)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating application rows", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	return apps, nil
}

func (r *ApplicationRepository) scanApplication(row pgx.Row) (*application.LoanApplication, error) {
	var app application.LoanApplication
	var riskScore *int
	var riskLevel *string
	var riskFlags []string

	err := row.Scan(
		&app.ID, &app.BorrowerID, &app.Amount, &app.TermMonths, &app.AnnualRatePercent,
		&app.MonthlyInstallment, &app.Purpose, &app.Status, &app.Version,
		&riskScore, &riskLevel, &riskFlags, &app.Disposition,
		&app.ReviewerID, &app.RejectionReason, &app.ReviewNotes,
		&app.SubmittedAt, &app.ApprovedAt, &app.RejectedAt, &app.DisbursedAt,
		&app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if riskScore != nil && riskLevel != nil {
		app.Risk = &application.RiskAssessment{
			Score: *riskScore,
			Level: application.RiskLevel(*riskLevel),
			Flags: riskFlags,
		}
	}
	return &app, nil
}

func scanInstallment(row pgx.Row) (*schedule.Installment, error) {
	var inst schedule.Installment
	err := row.Scan(
		&inst.ID, &inst.ApplicationID, &inst.Sequence, &inst.DueDate,
		&inst.Principal, &inst.Interest, &inst.Total,
		&inst.Status, &inst.PaidAmount, &inst.PaidAt,
		&inst.CreatedAt, &inst.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inst, nil
}
