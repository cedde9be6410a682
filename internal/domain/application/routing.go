package application

import (
	"github.com/shopspring/decimal"

	"origination-engine/internal/domain/profile"
)

// Tier is the authority level required to approve or reject an application.
type Tier string

const (
	TierLoanOfficer     Tier = "loan_officer"
	TierFinanceDirector Tier = "finance_director"
)

// tierThreshold is the amount at and above which the finance director tier
// must act.
var tierThreshold = decimal.NewFromInt(10_000)

// RequiredTier routes by amount: below the threshold the loan officer tier
// acts, at or above it the finance director tier does.
func RequiredTier(amount decimal.Decimal) Tier {
	if amount.GreaterThanOrEqual(tierThreshold) {
		return TierFinanceDirector
	}
	return TierLoanOfficer
}

// PendingStatus maps a tier onto the review state an application enters when
// it leaves under_review.
func (t Tier) PendingStatus() Status {
	if t == TierFinanceDirector {
		return StatusPendingFinanceDirector
	}
	return StatusPendingLoanOfficer
}

// Satisfies reports whether a role carries a tier's authority. The managing
// director shares the loan officer tier below the threshold; the tiers are
// otherwise strictly separated in both directions.
func (t Tier) Satisfies(role profile.Role) bool {
	switch t {
	case TierLoanOfficer:
		return role == profile.RoleLoanOfficer || role == profile.RoleManagingDirector
	case TierFinanceDirector:
		return role == profile.RoleFinanceDirector
	}
	return false
}
