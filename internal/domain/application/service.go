package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"origination-engine/internal/domain/kyc"
	"origination-engine/internal/domain/profile"
	"origination-engine/internal/domain/schedule"
	"origination-engine/internal/infrastructure/monitoring"
	"origination-engine/internal/pkg/apperrors"
)

type Service interface {
	CreateApplication(ctx context.Context, actor Actor, amount decimal.Decimal, termMonths int, annualRatePercent decimal.Decimal, purpose string) (*LoanApplication, error)

	GetApplication(ctx context.Context, applicationID int64) (*LoanApplication, error)

	ListBorrowerApplications(ctx context.Context, borrowerID int64) ([]*LoanApplication, error)

	GetSchedule(ctx context.Context, applicationID int64) ([]*schedule.Installment, error)

	GetOutstanding(ctx context.Context, applicationID int64) (decimal.Decimal, error)

	// BeginKYCStage2 moves draft -> kyc_stage2_required once the borrower's
	// stage-1 identity evidence is verified.
	BeginKYCStage2(ctx context.Context, applicationID int64, actor Actor) (*LoanApplication, error)

	// Submit moves kyc_stage2_required -> submitted, or re-submits a
	// rejected application once fresh stage-2 documents are verified.
	Submit(ctx context.Context, applicationID int64, actor Actor) (*LoanApplication, error)

	// StartReview fetches the borrower's credit score and the external risk
	// assessment, then moves submitted -> under_review. A scorer failure
	// leaves the application in submitted.
	StartReview(ctx context.Context, applicationID int64, actor Actor) (*LoanApplication, error)

	// Route moves under_review into the pending state the approval router
	// picks for the amount, unless the risk gate holds the application.
	Route(ctx context.Context, applicationID int64, actor Actor) (*LoanApplication, error)

	// RecordDisposition records a reviewer's decision on a risk-held
	// application; an approved disposition routes immediately.
	RecordDisposition(ctx context.Context, applicationID int64, actor Actor, d Disposition, note string) (*LoanApplication, error)

	Approve(ctx context.Context, applicationID int64, actor Actor) (*LoanApplication, error)

	Reject(ctx context.Context, applicationID int64, actor Actor, reason string) (*LoanApplication, error)

	// Disburse validates and generates the installment schedule, then flips
	// the status and writes the batch atomically.
	Disburse(ctx context.Context, applicationID int64, actor Actor) (*LoanApplication, error)

	// RecordPayment pays the oldest unpaid installment; paying the last one
	// completes the loan in the same transaction.
	RecordPayment(ctx context.Context, applicationID int64, amount decimal.Decimal) error

	// MarkDefaulted moves disbursed -> defaulted when enough installments
	// are overdue.
	MarkDefaulted(ctx context.Context, applicationID int64, actor Actor) (*LoanApplication, error)
}

type serviceImpl struct {
	repo     Repository
	docs     kyc.DocumentService
	profiles profile.Repository
	scorer   RiskScorer
	credit   CreditScoreProvider
	audit    AuditRecorder
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(
	repo Repository,
	docs kyc.DocumentService,
	profiles profile.Repository,
	scorer RiskScorer,
	credit CreditScoreProvider,
	audit AuditRecorder,
	notifier Notifier,
	logger *slog.Logger,
) Service {
	return &serviceImpl{
		repo:     repo,
		docs:     docs,
		profiles: profiles,
		scorer:   scorer,
		credit:   credit,
		audit:    audit,
		notifier: notifier,
		logger:   logger.With("component", "ApplicationService"),
		now:      time.Now,
	}
}

func (s *serviceImpl) CreateApplication(ctx context.Context, actor Actor, amount decimal.Decimal, termMonths int, annualRatePercent decimal.Decimal, purpose string) (*LoanApplication, error) {
	if actor.Role != profile.RoleBorrower {
		return nil, fmt.Errorf("%w: only borrowers create applications", apperrors.ErrUnauthorizedActor)
	}

	owner, err := s.profiles.GetProfileByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: borrower %d not found", apperrors.ErrValidation, actor.ID)
		}
		return nil, fmt.Errorf("failed to verify borrower: %w", err)
	}
	if !owner.Active {
		return nil, fmt.Errorf("%w: borrower %d is not active", apperrors.ErrValidation, actor.ID)
	}

	app, err := NewLoanApplication(actor.ID, amount, termMonths, annualRatePercent, purpose)
	if err != nil {
		return nil, err
	}
	if termMonths > schedule.MaxTermMonths {
		return nil, apperrors.NewValidationError("termMonths", fmt.Sprintf("term cannot exceed %d months", schedule.MaxTermMonths))
	}

	created, err := s.repo.CreateApplication(ctx, app)
	if err != nil {
		s.logger.Error("Failed to save application", "error", err)
		return nil, fmt.Errorf("%w: failed to save application: %v", apperrors.ErrInternalServer, err)
	}
	s.logger.Info("Application created", "applicationID", created.ID, "borrowerID", actor.ID, "amount", amount.StringFixed(2))
	return created, nil
}

func (s *serviceImpl) GetApplication(ctx context.Context, applicationID int64) (*LoanApplication, error) {
	app, err := s.repo.GetApplicationByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: application %d not found", apperrors.ErrNotFound, applicationID)
		}
		s.logger.Error("Failed to get application", "applicationID", applicationID, "error", err)
		return nil, fmt.Errorf("%w: failed to get application %d: %v", apperrors.ErrInternalServer, applicationID, err)
	}
	return app, nil
}

func (s *serviceImpl) ListBorrowerApplications(ctx context.Context, borrowerID int64) ([]*LoanApplication, error) {
	apps, err := s.repo.ListByBorrower(ctx, borrowerID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list applications for borrower %d: %v", apperrors.ErrInternalServer, borrowerID, err)
	}
	return apps, nil
}

func (s *serviceImpl) GetSchedule(ctx context.Context, applicationID int64) ([]*schedule.Installment, error) {
	if _, err := s.GetApplication(ctx, applicationID); err != nil {
		return nil, err
	}
	installments, err := s.repo.GetScheduleByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get schedule for application %d: %v", apperrors.ErrInternalServer, applicationID, err)
	}
	return installments, nil
}

func (s *serviceImpl) GetOutstanding(ctx context.Context, applicationID int64) (decimal.Decimal, error) {
	installments, err := s.GetSchedule(ctx, applicationID)
	if err != nil {
		return decimal.Zero, err
	}
	return schedule.Outstanding(installments), nil
}

func (s *serviceImpl) BeginKYCStage2(ctx context.Context, applicationID int64, actor Actor) (*LoanApplication, error) {
	return s.transition(ctx, applicationID, StatusKYCStage2Required, actor, nil)
}

func (s *serviceImpl) Submit(ctx context.Context, applicationID int64, actor Actor) (*LoanApplication, error) {
	return s.transition(ctx, applicationID, StatusSubmitted, actor, nil)
}

func (s *serviceImpl) StartReview(ctx context.Context, applicationID int64, actor Actor) (*LoanApplication, error) {
	return s.transition(ctx, applicationID, StatusUnderReview, actor, func(ctx context.Context, app *LoanApplication) error {
		if app.Risk != nil {
			return nil
		}
		score, err := s.borrowerCreditScore(ctx, app.BorrowerID)
		if err != nil {
			return err
		}
		assessment, err := s.scorer.Score(ctx, app.ID, app.Amount, score)
		if err != nil {
			// Scorer unavailable: the application stays submitted.
			s.logger.Warn("Risk scorer unavailable", "applicationID", app.ID, "error", err)
			return fmt.Errorf("%w: risk assessment unavailable", apperrors.ErrGatePending)
		}
		if err := assessment.Validate(); err != nil {
			return err
		}
		app.Risk = &assessment
		if EvaluateRisk(assessment) == RiskManualReview {
			monitoring.Business.RiskHoldsTotal.Inc()
		}
		return nil
	})
}

func (s *serviceImpl) Route(ctx context.Context, applicationID int64, actor Actor) (*LoanApplication, error) {
	app, err := s.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	target := RequiredTier(app.Amount).PendingStatus()
	return s.transition(ctx, applicationID, target, actor, nil)
}

func (s *serviceImpl) RecordDisposition(ctx context.Context, applicationID int64, actor Actor, d Disposition, note string) (*LoanApplication, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: unknown disposition %q", apperrors.ErrInvalidArgument, d)
	}
	if !actor.Role.IsStaff() {
		return nil, fmt.Errorf("%w: role %s may not record a disposition", apperrors.ErrUnauthorizedActor, actor.Role)
	}

	app, err := s.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != StatusUnderReview {
		return nil, fmt.Errorf("%w: dispositions are recorded in %s, application is %s",
			apperrors.ErrInvalidTransition, StatusUnderReview, app.Status)
	}
	if app.Risk == nil {
		return nil, fmt.Errorf("%w: no risk assessment recorded", apperrors.ErrGatePending)
	}

	switch d {
	case DispositionRejected:
		return s.Reject(ctx, applicationID, actor, note)
	case DispositionApproved:
		app.Disposition = d
		app.ReviewerID = &actor.ID
		if note != "" {
			app.ReviewNotes = append(app.ReviewNotes, note)
		}
		target := RequiredTier(app.Amount).PendingStatus()
		from := app.Status
		if err := AttemptTransition(app, target, actor, s.now(), Preconditions{}); err != nil {
			monitoring.RecordTransition(string(from), string(target), transitionOutcome(err))
			return nil, err
		}
		return s.persistTransition(ctx, app, actor, from)
	default: // manual_review: stay put, keep the note.
		app.Disposition = d
		app.ReviewerID = &actor.ID
		if note != "" {
			app.ReviewNotes = append(app.ReviewNotes, note)
		}
		if err := s.repo.UpdateApplication(ctx, app); err != nil {
			return nil, s.wrapUpdateErr(app, err)
		}
		return app, nil
	}
}

func (s *serviceImpl) Approve(ctx context.Context, applicationID int64, actor Actor) (*LoanApplication, error) {
	return s.transition(ctx, applicationID, StatusApproved, actor, func(ctx context.Context, app *LoanApplication) error {
		installment, err := schedule.MonthlyInstallment(app.Amount, app.AnnualRatePercent, app.TermMonths)
		if err != nil {
			return err
		}
		app.MonthlyInstallment = installment
		app.ReviewerID = &actor.ID
		return nil
	})
}

func (s *serviceImpl) Reject(ctx context.Context, applicationID int64, actor Actor, reason string) (*LoanApplication, error) {
	return s.transition(ctx, applicationID, StatusRejected, actor, func(ctx context.Context, app *LoanApplication) error {
		app.RejectionReason = reason
		app.ReviewerID = &actor.ID
		return nil
	})
}

func (s *serviceImpl) Disburse(ctx context.Context, applicationID int64, actor Actor) (*LoanApplication, error) {
	app, err := s.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	// Schedule inputs are validated before the status advances; a generation
	// failure aborts the disbursement.
	installments, err := schedule.Generate(app.ID, app.Amount, app.AnnualRatePercent, app.TermMonths, now)
	if err != nil {
		monitoring.RecordTransition(string(app.Status), string(StatusDisbursed), "failure")
		return nil, err
	}

	from := app.Status
	if err := AttemptTransition(app, StatusDisbursed, actor, now, Preconditions{}); err != nil {
		monitoring.RecordTransition(string(from), string(StatusDisbursed), transitionOutcome(err))
		return nil, err
	}

	if err := s.repo.DisburseWithSchedule(ctx, app, installments); err != nil {
		return nil, s.wrapUpdateErr(app, err)
	}

	monitoring.RecordTransition(string(from), string(StatusDisbursed), "success")
	monitoring.Business.SchedulesGenerated.Inc()
	s.emitTransition(ctx, app, actor, from, StatusDisbursed)
	s.logger.Info("Application disbursed", "applicationID", app.ID, "installments", len(installments))
	return app, nil
}

func (s *serviceImpl) RecordPayment(ctx context.Context, applicationID int64, amount decimal.Decimal) (err error) {
	s.logger.Info("Recording payment", "applicationID", applicationID, "amount", amount.StringFixed(2))

	app, err := s.GetApplication(ctx, applicationID)
	if err != nil {
		return err
	}
	if app.Status != StatusDisbursed {
		monitoring.RecordPayment("failure_status")
		return fmt.Errorf("%w: payments apply to disbursed loans, application is %s", apperrors.ErrValidation, app.Status)
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("%w: could not begin transaction: %v", apperrors.ErrInternalServer, err)
	}
	defer func() {
		if err != nil {
			_ = s.repo.RollbackTx(ctx, tx)
		}
	}()

	inst, err := s.repo.FindOldestUnpaidInstallmentForUpdate(ctx, tx, applicationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			monitoring.RecordPayment("failure_fully_paid")
			return apperrors.ErrLoanFullyPaid
		}
		return fmt.Errorf("%w: could not find installment to pay: %v", apperrors.ErrInternalServer, err)
	}

	if !amount.Equal(inst.Total) {
		monitoring.RecordPayment("failure_amount")
		return fmt.Errorf("%w: payment %s does not match installment amount %s",
			apperrors.ErrInvalidPaymentAmount, amount.StringFixed(2), inst.Total.StringFixed(2))
	}

	now := s.now()
	inst.Status = schedule.InstallmentPaid
	inst.PaidAmount = amount
	inst.PaidAt = &now
	inst.UpdatedAt = now
	if err = s.repo.UpdateInstallmentInTx(ctx, tx, inst); err != nil {
		return fmt.Errorf("%w: could not update installment: %v", apperrors.ErrInternalServer, err)
	}

	unpaid, err := s.repo.CountUnpaidInTx(ctx, tx, applicationID)
	if err != nil {
		return fmt.Errorf("%w: could not check remaining installments: %v", apperrors.ErrInternalServer, err)
	}

	completed := false
	if unpaid == 0 {
		if err = AttemptTransition(app, StatusCompleted, System, now, Preconditions{AllInstallmentsPaid: true}); err != nil {
			return err
		}
		if err = s.repo.UpdateApplicationInTx(ctx, tx, app); err != nil {
			return s.wrapUpdateErr(app, err)
		}
		completed = true
	}

	if err = s.repo.CommitTx(ctx, tx); err != nil {
		return fmt.Errorf("%w: could not commit payment: %v", apperrors.ErrInternalServer, err)
	}

	monitoring.RecordPayment("success")
	if completed {
		monitoring.RecordTransition(string(StatusDisbursed), string(StatusCompleted), "success")
		s.emitTransition(ctx, app, System, StatusDisbursed, StatusCompleted)
	}
	s.logger.Info("Payment recorded", "applicationID", applicationID, "sequence", inst.Sequence, "completed", completed)
	return nil
}

func (s *serviceImpl) MarkDefaulted(ctx context.Context, applicationID int64, actor Actor) (*LoanApplication, error) {
	installments, err := s.GetSchedule(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	overdue := schedule.CountOverdue(installments, s.now())
	return s.transitionWithPre(ctx, applicationID, StatusDefaulted, actor, Preconditions{OverdueCount: overdue}, nil)
}

type mutator func(ctx context.Context, app *LoanApplication) error

// transition is the single write path for gate-driven status changes: load,
// mutate, gather gate evidence, validate, persist with the version check,
// then emit the audit event and notification.
func (s *serviceImpl) transition(ctx context.Context, applicationID int64, to Status, actor Actor, mutate mutator) (*LoanApplication, error) {
	app, err := s.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	pre, err := s.gatherPreconditions(ctx, app, to)
	if err != nil {
		return nil, err
	}
	return s.applyAndPersist(ctx, app, to, actor, pre, mutate)
}

func (s *serviceImpl) transitionWithPre(ctx context.Context, applicationID int64, to Status, actor Actor, pre Preconditions, mutate mutator) (*LoanApplication, error) {
	app, err := s.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	return s.applyAndPersist(ctx, app, to, actor, pre, mutate)
}

func (s *serviceImpl) applyAndPersist(ctx context.Context, app *LoanApplication, to Status, actor Actor, pre Preconditions, mutate mutator) (*LoanApplication, error) {
	from := app.Status
	if mutate != nil {
		if err := mutate(ctx, app); err != nil {
			monitoring.RecordTransition(string(from), string(to), transitionOutcome(err))
			return nil, err
		}
	}

	if err := AttemptTransition(app, to, actor, s.now(), pre); err != nil {
		monitoring.RecordTransition(string(from), string(to), transitionOutcome(err))
		return nil, err
	}

	return s.persistTransition(ctx, app, actor, from)
}

func (s *serviceImpl) persistTransition(ctx context.Context, app *LoanApplication, actor Actor, from Status) (*LoanApplication, error) {
	if err := s.repo.UpdateApplication(ctx, app); err != nil {
		return nil, s.wrapUpdateErr(app, err)
	}
	monitoring.RecordTransition(string(from), string(app.Status), "success")
	s.emitTransition(ctx, app, actor, from, app.Status)
	return app, nil
}

func (s *serviceImpl) wrapUpdateErr(app *LoanApplication, err error) error {
	if errors.Is(err, apperrors.ErrConflictingUpdate) {
		monitoring.Business.ConflictingUpdates.Inc()
		s.logger.Warn("Concurrent update lost the version check", "applicationID", app.ID, "version", app.Version)
		return fmt.Errorf("%w: application %d changed concurrently", apperrors.ErrConflictingUpdate, app.ID)
	}
	s.logger.Error("Failed to persist application", "applicationID", app.ID, "error", err)
	return fmt.Errorf("%w: failed to persist application %d: %v", apperrors.ErrInternalServer, app.ID, err)
}

// gatherPreconditions performs the reads the gates need for the requested
// target; everything else stays zero-valued.
func (s *serviceImpl) gatherPreconditions(ctx context.Context, app *LoanApplication, to Status) (Preconditions, error) {
	var pre Preconditions
	switch to {
	case StatusKYCStage2Required:
		verdict, err := s.docs.Stage1Verdict(ctx, app.BorrowerID)
		if err != nil {
			return pre, err
		}
		pre.Stage1 = verdict

	case StatusSubmitted:
		if app.Status == StatusRejected && app.RejectedAt != nil {
			verdict, fresh, err := s.docs.Stage2VerdictSince(ctx, app.ID, *app.RejectedAt)
			if err != nil {
				return pre, err
			}
			pre.Stage2 = verdict
			pre.FreshStage2Docs = fresh
		} else {
			verdict, err := s.docs.Stage2Verdict(ctx, app.ID)
			if err != nil {
				return pre, err
			}
			pre.Stage2 = verdict
		}

	case StatusCompleted, StatusDefaulted:
		installments, err := s.repo.GetScheduleByApplicationID(ctx, app.ID)
		if err != nil {
			return pre, fmt.Errorf("%w: failed to load schedule: %v", apperrors.ErrInternalServer, err)
		}
		now := s.now()
		pre.OverdueCount = schedule.CountOverdue(installments, now)
		pre.AllInstallmentsPaid = len(installments) > 0
		for _, inst := range installments {
			if inst.Status != schedule.InstallmentPaid {
				pre.AllInstallmentsPaid = false
				break
			}
		}
	}
	return pre, nil
}

func (s *serviceImpl) borrowerCreditScore(ctx context.Context, borrowerID int64) (int, error) {
	owner, err := s.profiles.GetProfileByID(ctx, borrowerID)
	if err != nil {
		return 0, fmt.Errorf("failed to load borrower %d: %w", borrowerID, err)
	}
	if owner.CreditScore != nil {
		return *owner.CreditScore, nil
	}

	score, err := s.credit.CreditScore(ctx, borrowerID)
	if err != nil {
		s.logger.Warn("Credit score service unavailable", "borrowerID", borrowerID, "error", err)
		return 0, fmt.Errorf("%w: credit score unavailable", apperrors.ErrGatePending)
	}
	if err := s.profiles.UpdateCreditScore(ctx, borrowerID, score); err != nil {
		s.logger.Error("Failed to cache credit score on profile", "borrowerID", borrowerID, "error", err)
	}
	return score, nil
}

// emitTransition publishes the audit event and borrower notification.
// Both are fire-and-forget: a recorder outage never unwinds a transition.
func (s *serviceImpl) emitTransition(ctx context.Context, app *LoanApplication, actor Actor, from, to Status) {
	ev := TransitionEvent{
		ID:            uuid.NewString(),
		Type:          "application.transition",
		ApplicationID: app.ID,
		ActorID:       actor.ID,
		FromState:     from,
		ToState:       to,
		Timestamp:     s.now().UTC(),
	}
	if err := s.audit.RecordTransition(ctx, ev); err != nil {
		s.logger.Error("Failed to record audit event", "applicationID", app.ID, "eventID", ev.ID, "error", err)
	}

	n := Notification{
		UserID:  app.BorrowerID,
		Title:   "Loan application update",
		Message: fmt.Sprintf("Your application #%d moved from %s to %s.", app.ID, from, to),
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Warn("Failed to deliver notification", "applicationID", app.ID, "error", err)
	}
}

func transitionOutcome(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, apperrors.ErrUnauthorizedActor):
		return "unauthorized"
	case errors.Is(err, apperrors.ErrGatePending):
		return "gate_pending"
	case errors.Is(err, apperrors.ErrGateRejected):
		return "gate_rejected"
	case errors.Is(err, apperrors.ErrConflictingUpdate):
		return "conflict"
	default:
		return "failure"
	}
}
