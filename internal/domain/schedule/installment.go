package schedule

import (
	"time"

	"github.com/shopspring/decimal"
)

type InstallmentStatus string

const (
	InstallmentPending InstallmentStatus = "pending"
	InstallmentPaid    InstallmentStatus = "paid"
	// InstallmentOverdue is derived at read time, never stored.
	InstallmentOverdue InstallmentStatus = "overdue"
)

// Installment is one scheduled repayment unit. Count and due dates are fixed
// once the schedule exists; only the payment fields ever change.
type Installment struct {
	ID            int64
	ApplicationID int64
	Sequence      int
	DueDate       time.Time
	Principal     decimal.Decimal
	Interest      decimal.Decimal
	Total         decimal.Decimal
	Status        InstallmentStatus
	PaidAmount    decimal.Decimal
	PaidAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// EffectiveStatus classifies a pending installment past its due date as
// overdue. Stored status is untouched.
func (i *Installment) EffectiveStatus(now time.Time) InstallmentStatus {
	if i.Status == InstallmentPending && now.After(i.DueDate) {
		return InstallmentOverdue
	}
	return i.Status
}

// CountOverdue reports how many installments are overdue as of now.
func CountOverdue(installments []*Installment, now time.Time) int {
	n := 0
	for _, inst := range installments {
		if inst.EffectiveStatus(now) == InstallmentOverdue {
			n++
		}
	}
	return n
}
