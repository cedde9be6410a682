package application

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"origination-engine/internal/domain/profile"
	"origination-engine/internal/pkg/apperrors"
)

type Status string

const (
	StatusDraft                  Status = "draft"
	StatusKYCStage2Required      Status = "kyc_stage2_required"
	StatusSubmitted              Status = "submitted"
	StatusUnderReview            Status = "under_review"
	StatusPendingLoanOfficer     Status = "pending_loan_officer"
	StatusPendingFinanceDirector Status = "pending_finance_director"
	StatusApproved               Status = "approved"
	StatusDisbursed              Status = "disbursed"
	StatusCompleted              Status = "completed"
	StatusDefaulted              Status = "defaulted"
	StatusRejected               Status = "rejected"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusDefaulted
}

// Actor identifies who is requesting a transition. There is no ambient
// current-user state anywhere in the engine.
type Actor struct {
	ID   int64
	Role profile.Role
}

// System is the actor recorded for engine-driven transitions, such as the
// automatic move to completed when the last installment is paid.
var System = Actor{ID: 0, Role: profile.RoleAdmin}

// LoanApplication is the central entity. Amount and term are frozen once the
// status leaves draft; Version backs the optimistic concurrency check.
type LoanApplication struct {
	ID                 int64
	BorrowerID         int64
	Amount             decimal.Decimal
	TermMonths         int
	AnnualRatePercent  decimal.Decimal
	MonthlyInstallment decimal.Decimal
	Purpose            string
	Status             Status
	Version            int64

	Risk        *RiskAssessment
	Disposition Disposition

	ReviewerID      *int64
	RejectionReason string
	ReviewNotes     []string

	SubmittedAt *time.Time
	ApprovedAt  *time.Time
	RejectedAt  *time.Time
	DisbursedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewLoanApplication(borrowerID int64, amount decimal.Decimal, termMonths int, annualRatePercent decimal.Decimal, purpose string) (*LoanApplication, error) {
	if !amount.IsPositive() {
		return nil, apperrors.NewValidationError("amount", "amount must be positive")
	}
	if termMonths <= 0 {
		return nil, apperrors.NewValidationError("termMonths", "term must be a positive number of months")
	}
	if annualRatePercent.IsNegative() {
		return nil, apperrors.NewValidationError("annualRatePercent", "interest rate cannot be negative")
	}
	return &LoanApplication{
		BorrowerID:        borrowerID,
		Amount:            amount,
		TermMonths:        termMonths,
		AnnualRatePercent: annualRatePercent,
		Purpose:           purpose,
		Status:            StatusDraft,
	}, nil
}

// appendAuditNote records a timestamped note of a successful transition.
func (a *LoanApplication) appendAuditNote(actor Actor, from, to Status, at time.Time) {
	a.ReviewNotes = append(a.ReviewNotes, fmt.Sprintf("%s actor %d (%s): %s -> %s",
		at.UTC().Format(time.RFC3339), actor.ID, actor.Role, from, to))
}
