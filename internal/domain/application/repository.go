package application

import (
	"context"

	"github.com/jackc/pgx/v5"

	"origination-engine/internal/domain/schedule"
)

type Repository interface {
	CreateApplication(ctx context.Context, app *LoanApplication) (*LoanApplication, error)

	GetApplicationByID(ctx context.Context, applicationID int64) (*LoanApplication, error)

	ListByBorrower(ctx context.Context, borrowerID int64) ([]*LoanApplication, error)

	ListByStatus(ctx context.Context, status Status) ([]*LoanApplication, error)

	// UpdateApplication persists the application's mutable fields, pinned to
	// the version it was read at. A lost race surfaces as
	// apperrors.ErrConflictingUpdate.
	UpdateApplication(ctx context.Context, app *LoanApplication) error

	// DisburseWithSchedule commits the status flip to disbursed and the full
	// installment batch in one transaction: either everything lands or
	// nothing does.
	DisburseWithSchedule(ctx context.Context, app *LoanApplication, installments []*schedule.Installment) error

	GetScheduleByApplicationID(ctx context.Context, applicationID int64) ([]*schedule.Installment, error)

	GetAllDisbursedIDs(ctx context.Context) ([]int64, error)

	BeginTx(ctx context.Context) (pgx.Tx, error)

	CommitTx(ctx context.Context, tx pgx.Tx) error

	RollbackTx(ctx context.Context, tx pgx.Tx) error

	FindOldestUnpaidInstallmentForUpdate(ctx context.Context, tx pgx.Tx, applicationID int64) (*schedule.Installment, error)

	UpdateInstallmentInTx(ctx context.Context, tx pgx.Tx, inst *schedule.Installment) error

	CountUnpaidInTx(ctx context.Context, tx pgx.Tx, applicationID int64) (int, error)

	UpdateApplicationInTx(ctx context.Context, tx pgx.Tx, app *LoanApplication) error
}
