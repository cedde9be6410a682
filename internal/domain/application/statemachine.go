package application

import (
	"fmt"
	"time"

	"origination-engine/internal/domain/kyc"
	"origination-engine/internal/domain/profile"
	"origination-engine/internal/pkg/apperrors"
)

// successors is the canonical state graph. rejected -> submitted is the one
// sanctioned exception to monotonicity: re-submission after rejection moves
// the same application back through the stage-2 branch.
var successors = map[Status][]Status{
	StatusDraft:                  {StatusKYCStage2Required},
	StatusKYCStage2Required:      {StatusSubmitted},
	StatusSubmitted:              {StatusUnderReview},
	StatusUnderReview:            {StatusPendingLoanOfficer, StatusPendingFinanceDirector, StatusRejected},
	StatusPendingLoanOfficer:     {StatusApproved, StatusRejected},
	StatusPendingFinanceDirector: {StatusApproved, StatusRejected},
	StatusApproved:               {StatusDisbursed},
	StatusDisbursed:              {StatusCompleted, StatusDefaulted},
	StatusRejected:               {StatusSubmitted},
	StatusCompleted:              {},
	StatusDefaulted:              {},
}

// Successors returns a copy of the legal next statuses for a status.
func Successors(from Status) []Status {
	next := make([]Status, len(successors[from]))
	copy(next, successors[from])
	return next
}

func isSuccessor(from, to Status) bool {
	for _, s := range successors[from] {
		if s == to {
			return true
		}
	}
	return false
}

// minOverdueForDefault is the number of overdue installments that justifies
// marking a disbursed loan defaulted.
const minOverdueForDefault = 2

// Preconditions carries the evidence the caller gathered for the gates. The
// state machine itself performs no I/O.
type Preconditions struct {
	Stage1 kyc.Verdict
	Stage2 kyc.Verdict
	// FreshStage2Docs reports whether stage-2 documents were uploaded after
	// the application was rejected. Only consulted on re-submission.
	FreshStage2Docs bool
	// OverdueCount and AllInstallmentsPaid describe the repayment schedule
	// of a disbursed loan.
	OverdueCount        int
	AllInstallmentsPaid bool
}

// AttemptTransition validates, in order: (a) the requested status is a direct
// successor of the current one, (b) the actor holds the authority the current
// status demands, (c) the gate preconditions for the target hold. On success
// the application is mutated in place (status, timestamps, audit note); on
// failure nothing is touched and a typed error names the failed check.
func AttemptTransition(app *LoanApplication, to Status, actor Actor, now time.Time, pre Preconditions) error {
	from := app.Status
	if !isSuccessor(from, to) {
		return fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, from, to)
	}
	if err := authorize(app, actor); err != nil {
		return err
	}
	if to == StatusPendingLoanOfficer || to == StatusPendingFinanceDirector {
		// The router, not the caller, decides which pending state an
		// application of this amount enters.
		if routed := RequiredTier(app.Amount).PendingStatus(); to != routed {
			return fmt.Errorf("%w: amount %s routes to %s, not %s",
				apperrors.ErrInvalidTransition, app.Amount.StringFixed(2), routed, to)
		}
	}
	if err := checkGates(app, from, to, pre); err != nil {
		return err
	}

	applyTransition(app, from, to, actor, now)
	return nil
}

// authorize enforces the actor table for the application's current status.
// Borrowers drive only their own application through the document branch;
// review states demand the tier the approval router assigns.
func authorize(app *LoanApplication, actor Actor) error {
	switch app.Status {
	case StatusDraft, StatusKYCStage2Required, StatusRejected:
		if actor.Role != profile.RoleBorrower || actor.ID != app.BorrowerID {
			return fmt.Errorf("%w: only the owning borrower may act on a %s application",
				apperrors.ErrUnauthorizedActor, app.Status)
		}
	case StatusSubmitted, StatusUnderReview, StatusDisbursed:
		if !actor.Role.IsStaff() {
			return fmt.Errorf("%w: role %s may not act on a %s application",
				apperrors.ErrUnauthorizedActor, actor.Role, app.Status)
		}
	case StatusPendingLoanOfficer:
		if !TierLoanOfficer.Satisfies(actor.Role) {
			return fmt.Errorf("%w: role %s does not hold the loan officer tier",
				apperrors.ErrUnauthorizedActor, actor.Role)
		}
	case StatusPendingFinanceDirector:
		if !TierFinanceDirector.Satisfies(actor.Role) {
			return fmt.Errorf("%w: role %s does not hold the finance director tier",
				apperrors.ErrUnauthorizedActor, actor.Role)
		}
	case StatusApproved:
		if actor.Role != profile.RoleFinanceDirector && actor.Role != profile.RoleAdmin {
			return fmt.Errorf("%w: role %s may not disburse", apperrors.ErrUnauthorizedActor, actor.Role)
		}
	default:
		return fmt.Errorf("%w: %s is terminal", apperrors.ErrInvalidTransition, app.Status)
	}
	return nil
}

func checkGates(app *LoanApplication, from, to Status, pre Preconditions) error {
	switch to {
	case StatusKYCStage2Required:
		return gateError(pre.Stage1, "stage-1 identity verification")

	case StatusSubmitted:
		if from == StatusRejected && !pre.FreshStage2Docs {
			return fmt.Errorf("%w: re-submission requires fresh stage-2 documents", apperrors.ErrGatePending)
		}
		return gateError(pre.Stage2, "stage-2 income verification")

	case StatusPendingLoanOfficer, StatusPendingFinanceDirector:
		if app.Risk == nil {
			return fmt.Errorf("%w: no risk assessment recorded", apperrors.ErrGatePending)
		}
		if EvaluateRisk(*app.Risk) == RiskManualReview && app.Disposition != DispositionApproved {
			return fmt.Errorf("%w: risk gate holds the application for manual review", apperrors.ErrGatePending)
		}

	case StatusRejected:
		if app.RejectionReason == "" {
			return apperrors.NewValidationError("rejectionReason", "rejection requires a reason")
		}

	case StatusCompleted:
		if !pre.AllInstallmentsPaid {
			return fmt.Errorf("%w: unpaid installments remain", apperrors.ErrGatePending)
		}

	case StatusDefaulted:
		if pre.OverdueCount < minOverdueForDefault {
			return fmt.Errorf("%w: %d overdue installments, need at least %d",
				apperrors.ErrGatePending, pre.OverdueCount, minOverdueForDefault)
		}
	}
	return nil
}

func gateError(v kyc.Verdict, what string) error {
	switch v {
	case kyc.VerdictApproved:
		return nil
	case kyc.VerdictRejected:
		return fmt.Errorf("%w: %s failed", apperrors.ErrGateRejected, what)
	default:
		return fmt.Errorf("%w: %s incomplete", apperrors.ErrGatePending, what)
	}
}

func applyTransition(app *LoanApplication, from, to Status, actor Actor, now time.Time) {
	app.Status = to
	switch to {
	case StatusSubmitted:
		t := now
		app.SubmittedAt = &t
		if from == StatusRejected {
			// Re-submission clears the previous review outcome.
			app.RejectionReason = ""
			app.RejectedAt = nil
			app.Disposition = DispositionNone
		}
	case StatusApproved:
		t := now
		app.ApprovedAt = &t
	case StatusRejected:
		t := now
		app.RejectedAt = &t
	case StatusDisbursed:
		t := now
		app.DisbursedAt = &t
	}
	app.appendAuditNote(actor, from, to, now)
	app.UpdatedAt = now
}
