package schedule

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"origination-engine/internal/pkg/apperrors"
)

// MaxTermMonths is the longest supported repayment term.
const MaxTermMonths = 360

// ratePrecision is the working precision for the monthly rate and the fixed
// payment; only stored row amounts are rounded to cents.
const ratePrecision = 12

var (
	oneHundred = decimal.NewFromInt(100)
	twelve     = decimal.NewFromInt(12)
	one        = decimal.NewFromInt(1)
)

// MonthlyRate converts a nominal annual percentage rate into a monthly rate.
func MonthlyRate(annualRatePercent decimal.Decimal) decimal.Decimal {
	return annualRatePercent.DivRound(oneHundred.Mul(twelve), ratePrecision)
}

// MonthlyInstallment computes the fixed payment A for principal P, annual
// nominal rate r (percent) and term n (months), rounded to cents. A zero rate
// degenerates to a flat principal split.
func MonthlyInstallment(principal, annualRatePercent decimal.Decimal, termMonths int) (decimal.Decimal, error) {
	if err := validateTerms(principal, annualRatePercent, termMonths); err != nil {
		return decimal.Zero, err
	}
	return monthlyPayment(principal, MonthlyRate(annualRatePercent), termMonths).Round(2), nil
}

// monthlyPayment is the fixed payment carried at working precision. Schedule
// generation amortizes against this value; MonthlyInstallment rounds it to
// cents for presentation.
func monthlyPayment(principal, monthlyRate decimal.Decimal, termMonths int) decimal.Decimal {
	n := decimal.NewFromInt(int64(termMonths))
	if monthlyRate.IsZero() {
		return principal.DivRound(n, ratePrecision)
	}

	// A = P * i * (1+i)^n / ((1+i)^n - 1)
	compound := one.Add(monthlyRate).Pow(n)
	numerator := principal.Mul(monthlyRate).Mul(compound)
	denominator := compound.Sub(one)
	return numerator.DivRound(denominator, ratePrecision)
}

// Generate produces the full fixed-payment schedule: termMonths rows with
// contiguous monthly due dates starting one month after disbursement. The
// running balance is never rounded, so per-row rounding cannot compound
// through the remaining term; each stored cent amount hands its sub-cent
// residue to the next row, and the final row's principal closes the balance
// exactly while its total stays within a cent of the fixed payment.
func Generate(applicationID int64, principal, annualRatePercent decimal.Decimal, termMonths int, disbursedAt time.Time) ([]*Installment, error) {
	if err := validateTerms(principal, annualRatePercent, termMonths); err != nil {
		return nil, err
	}
	if disbursedAt.IsZero() {
		return nil, fmt.Errorf("%w: disbursement date is zero", apperrors.ErrScheduleGeneration)
	}

	i := MonthlyRate(annualRatePercent)
	payment := monthlyPayment(principal, i, termMonths)

	balance := principal
	repaid := decimal.Zero
	interestCarry := decimal.Zero
	principalCarry := decimal.Zero
	rows := make([]*Installment, 0, termMonths)

	for seq := 1; seq <= termMonths; seq++ {
		interestExact := balance.Mul(i)

		interestDue := interestExact.Add(interestCarry)
		interest := interestDue.Round(2)
		interestCarry = interestDue.Sub(interest)

		var principalPart decimal.Decimal
		if seq == termMonths {
			principalPart = principal.Sub(repaid)
		} else {
			principalDue := payment.Sub(interestExact).Add(principalCarry)
			principalPart = principalDue.Round(2)
			principalCarry = principalDue.Sub(principalPart)
		}

		if principalPart.IsNegative() {
			return nil, fmt.Errorf("%w: negative principal component at row %d", apperrors.ErrScheduleGeneration, seq)
		}

		rows = append(rows, &Installment{
			ApplicationID: applicationID,
			Sequence:      seq,
			DueDate:       disbursedAt.AddDate(0, seq, 0),
			Principal:     principalPart,
			Interest:      interest,
			Total:         principalPart.Add(interest),
			Status:        InstallmentPending,
			PaidAmount:    decimal.Zero,
		})
		repaid = repaid.Add(principalPart)
		balance = balance.Sub(payment.Sub(interestExact))
	}

	if !balance.Round(2).IsZero() {
		return nil, fmt.Errorf("%w: ending balance %s is not zero", apperrors.ErrScheduleGeneration, balance.StringFixed(2))
	}
	return rows, nil
}

func validateTerms(principal, annualRatePercent decimal.Decimal, termMonths int) error {
	if !principal.IsPositive() {
		return fmt.Errorf("%w: principal must be positive, got %s", apperrors.ErrScheduleGeneration, principal)
	}
	if annualRatePercent.IsNegative() {
		return fmt.Errorf("%w: interest rate cannot be negative, got %s", apperrors.ErrScheduleGeneration, annualRatePercent)
	}
	if termMonths < 1 || termMonths > MaxTermMonths {
		return fmt.Errorf("%w: term must be between 1 and %d months, got %d", apperrors.ErrScheduleGeneration, MaxTermMonths, termMonths)
	}
	return nil
}

// Outstanding sums the unpaid portion of a schedule.
func Outstanding(installments []*Installment) decimal.Decimal {
	total := decimal.Zero
	for _, inst := range installments {
		if inst.Status != InstallmentPaid {
			total = total.Add(inst.Total)
		}
	}
	return total
}
