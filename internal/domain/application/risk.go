package application

import (
	"fmt"

	"origination-engine/internal/pkg/apperrors"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// manualReviewScore is the score at and above which an application is held
// for a human reviewer regardless of amount.
const manualReviewScore = 60

// RiskAssessment is produced by the external scorer, at most once per
// application at the under_review stage. The engine never computes scores.
type RiskAssessment struct {
	Score int
	Level RiskLevel
	Flags []string
}

func (r RiskAssessment) Validate() error {
	if r.Score < 0 || r.Score > 100 {
		return fmt.Errorf("%w: risk score %d out of range [0,100]", apperrors.ErrInvalidArgument, r.Score)
	}
	switch r.Level {
	case RiskLow, RiskMedium, RiskHigh:
		return nil
	}
	return fmt.Errorf("%w: unknown risk level %q", apperrors.ErrInvalidArgument, r.Level)
}

type RiskOutcome string

const (
	// RiskProceed lets the approval router move the application into tiered
	// review automatically.
	RiskProceed RiskOutcome = "proceed"
	// RiskManualReview holds the application in under_review until a
	// reviewer records a disposition.
	RiskManualReview RiskOutcome = "manual_review"
)

// EvaluateRisk interprets an assessment against the fixed policy.
func EvaluateRisk(r RiskAssessment) RiskOutcome {
	if r.Score >= manualReviewScore || r.Level == RiskHigh {
		return RiskManualReview
	}
	return RiskProceed
}

// Disposition is the reviewer's recorded decision on a manually held
// application.
type Disposition string

const (
	DispositionNone         Disposition = ""
	DispositionApproved     Disposition = "approved"
	DispositionRejected     Disposition = "rejected"
	DispositionManualReview Disposition = "manual_review"
)

func (d Disposition) Valid() bool {
	switch d {
	case DispositionApproved, DispositionRejected, DispositionManualReview:
		return true
	}
	return false
}
