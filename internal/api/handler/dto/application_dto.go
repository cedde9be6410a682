package dto

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"origination-engine/internal/domain/application"
	"origination-engine/internal/domain/schedule"
)

type CreateApplicationRequest struct {
	Amount            string `json:"amount"`
	TermMonths        int    `json:"termMonths"`
	AnnualRatePercent string `json:"annualRatePercent"`
	Purpose           string `json:"purpose"`
}

func (r *CreateApplicationRequest) Validate() error {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return fmt.Errorf("invalid numeric format for amount: %w", err)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be greater than zero")
	}
	if r.TermMonths <= 0 {
		return fmt.Errorf("termMonths must be positive")
	}
	rate, err := decimal.NewFromString(r.AnnualRatePercent)
	if err != nil {
		return fmt.Errorf("invalid numeric format for annualRatePercent: %w", err)
	}
	if rate.IsNegative() {
		return fmt.Errorf("annualRatePercent cannot be negative")
	}
	return nil
}

type TransitionRequest struct {
	Reason string `json:"reason,omitempty"`
	Note   string `json:"note,omitempty"`
}

type DispositionRequest struct {
	Disposition string `json:"disposition"`
	Note        string `json:"note,omitempty"`
}

func (r *DispositionRequest) Validate() error {
	if r.Disposition == "" {
		return fmt.Errorf("disposition is required")
	}
	return nil
}

type RecordPaymentRequest struct {
	Amount string `json:"amount"`
}

func (r *RecordPaymentRequest) Validate() error {
	if _, err := decimal.NewFromString(r.Amount); err != nil || r.Amount == "" {
		return fmt.Errorf("invalid payment amount: %w", err)
	}
	return nil
}

type RiskAssessmentResponse struct {
	Score int      `json:"score"`
	Level string   `json:"level"`
	Flags []string `json:"flags,omitempty"`
}

type ApplicationResponse struct {
	ID                 string                  `json:"id"`
	BorrowerID         string                  `json:"borrowerId"`
	Amount             string                  `json:"amount"`
	TermMonths         int                     `json:"termMonths"`
	AnnualRatePercent  string                  `json:"annualRatePercent"`
	MonthlyInstallment string                  `json:"monthlyInstallment,omitempty"`
	Purpose            string                  `json:"purpose,omitempty"`
	Status             string                  `json:"status"`
	Version            int64                   `json:"version"`
	Risk               *RiskAssessmentResponse `json:"risk,omitempty"`
	Disposition        string                  `json:"disposition,omitempty"`
	RejectionReason    string                  `json:"rejectionReason,omitempty"`
	SubmittedAt        *time.Time              `json:"submittedAt,omitempty"`
	ApprovedAt         *time.Time              `json:"approvedAt,omitempty"`
	RejectedAt         *time.Time              `json:"rejectedAt,omitempty"`
	DisbursedAt        *time.Time              `json:"disbursedAt,omitempty"`
	CreatedAt          time.Time               `json:"createdAt"`
	UpdatedAt          time.Time               `json:"updatedAt"`
}

type InstallmentResponse struct {
	ID         string     `json:"id"`
	Sequence   int        `json:"sequence"`
	DueDate    string     `json:"dueDate"`
	Principal  string     `json:"principal"`
	Interest   string     `json:"interest"`
	Total      string     `json:"total"`
	Status     string     `json:"status"`
	PaidAmount *string    `json:"paidAmount,omitempty"`
	PaidAt     *time.Time `json:"paidAt,omitempty"`
}

type ScheduleResponse struct {
	ApplicationID string                `json:"applicationId"`
	Installments  []InstallmentResponse `json:"installments"`
}

type OutstandingResponse struct {
	ApplicationID     string `json:"applicationId"`
	OutstandingAmount string `json:"outstandingAmount"`
}

type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type TokenRequest struct {
	ProfileID int64  `json:"profileId"`
	Role      string `json:"role"`
}

func NewApplicationResponse(app *application.LoanApplication) ApplicationResponse {
	resp := ApplicationResponse{
		ID:                strconv.FormatInt(app.ID, 10),
		BorrowerID:        strconv.FormatInt(app.BorrowerID, 10),
		Amount:            app.Amount.StringFixed(2),
		TermMonths:        app.TermMonths,
		AnnualRatePercent: app.AnnualRatePercent.String(),
		Purpose:           app.Purpose,
		Status:            string(app.Status),
		Version:           app.Version,
		RejectionReason:   app.RejectionReason,
		SubmittedAt:       app.SubmittedAt,
		ApprovedAt:        app.ApprovedAt,
		RejectedAt:        app.RejectedAt,
		DisbursedAt:       app.DisbursedAt,
		CreatedAt:         app.CreatedAt,
		UpdatedAt:         app.UpdatedAt,
	}
	if !app.MonthlyInstallment.IsZero() {
		resp.MonthlyInstallment = app.MonthlyInstallment.StringFixed(2)
	}
	if app.Risk != nil {
		resp.Risk = &RiskAssessmentResponse{
			Score: app.Risk.Score,
			Level: string(app.Risk.Level),
			Flags: app.Risk.Flags,
		}
	}
	if app.Disposition != application.DispositionNone {
		resp.Disposition = string(app.Disposition)
	}
	return resp
}

func NewApplicationListResponse(apps []*application.LoanApplication) []ApplicationResponse {
	out := make([]ApplicationResponse, len(apps))
	for i, app := range apps {
		out[i] = NewApplicationResponse(app)
	}
	return out
}

// NewScheduleResponse renders each installment with its effective status, so
// a pending row past its due date reads as overdue without a stored flag.
func NewScheduleResponse(applicationID int64, installments []*schedule.Installment, now time.Time) ScheduleResponse {
	resp := ScheduleResponse{
		ApplicationID: strconv.FormatInt(applicationID, 10),
		Installments:  make([]InstallmentResponse, len(installments)),
	}
	for i, inst := range installments {
		row := InstallmentResponse{
			ID:        strconv.FormatInt(inst.ID, 10),
			Sequence:  inst.Sequence,
			DueDate:   inst.DueDate.Format(time.RFC3339[:10]),
			Principal: inst.Principal.StringFixed(2),
			Interest:  inst.Interest.StringFixed(2),
			Total:     inst.Total.StringFixed(2),
			Status:    string(inst.EffectiveStatus(now)),
			PaidAt:    inst.PaidAt,
		}
		if inst.Status == schedule.InstallmentPaid {
			paid := inst.PaidAmount.StringFixed(2)
			row.PaidAmount = &paid
		}
		resp.Installments[i] = row
	}
	return resp
}
