package profile

import (
	"fmt"
	"time"

	"origination-engine/internal/pkg/apperrors"
)

type Role string

const (
	RoleBorrower         Role = "borrower"
	RoleLoanOfficer      Role = "loan_officer"
	RoleManagingDirector Role = "managing_director"
	RoleFinanceDirector  Role = "finance_director"
	RoleAdmin            Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleBorrower, RoleLoanOfficer, RoleManagingDirector, RoleFinanceDirector, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether the role belongs to back-office personnel rather
// than a borrower.
func (r Role) IsStaff() bool {
	return r.Valid() && r != RoleBorrower
}

type Stage1Status string

const (
	Stage1NotStarted Stage1Status = "not_started"
	Stage1Pending    Stage1Status = "pending"
	Stage1Verified   Stage1Status = "verified"
	Stage1Rejected   Stage1Status = "rejected"
)

// Profile is a borrower or a staff member. Role is immutable after creation;
// the stage-1 KYC fields are written only through the KYC document review
// flow, never directly.
type Profile struct {
	ID              int64
	Name            string
	Role            Role
	Stage1Status    Stage1Status
	Stage1Completed bool
	CreditScore     *int
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func NewProfile(name string, role Role) (*Profile, error) {
	if name == "" {
		return nil, apperrors.NewValidationError("name", "name cannot be empty")
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", apperrors.ErrInvalidArgument, role)
	}
	return &Profile{
		Name:         name,
		Role:         role,
		Stage1Status: Stage1NotStarted,
		Active:       true,
	}, nil
}
