package application

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// RiskScorer is the external risk scoring service. Called at most once per
// application, at the under_review stage.
type RiskScorer interface {
	Score(ctx context.Context, applicationID int64, amount decimal.Decimal, creditScore int) (RiskAssessment, error)
}

// CreditScoreProvider is the external credit bureau proxy. The score is
// cached on the profile after the first fetch.
type CreditScoreProvider interface {
	CreditScore(ctx context.Context, borrowerID int64) (int, error)
}

// TransitionEvent is emitted after every successful transition. Recording it
// immutably is the ledger's job, not the engine's.
type TransitionEvent struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	ApplicationID int64     `json:"applicationId"`
	ActorID       int64     `json:"actorId"`
	FromState     Status    `json:"fromState"`
	ToState       Status    `json:"toState"`
	Timestamp     time.Time `json:"timestamp"`
}

type Notification struct {
	UserID  int64  `json:"userId"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// AuditRecorder receives transition events. Failures must never roll back
// the transition.
type AuditRecorder interface {
	RecordTransition(ctx context.Context, ev TransitionEvent) error
}

// Notifier delivers best-effort user notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
