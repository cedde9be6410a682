package dto

import (
	"fmt"
	"strconv"
	"time"

	"origination-engine/internal/domain/profile"
)

type CreateProfileRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

func (r *CreateProfileRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !profile.Role(r.Role).Valid() {
		return fmt.Errorf("unknown role %q", r.Role)
	}
	return nil
}

type ProfileResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Role            string    `json:"role"`
	Stage1Status    string    `json:"kycStage1Status"`
	Stage1Completed bool      `json:"kycStage1Completed"`
	CreditScore     *int      `json:"creditScore,omitempty"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func NewProfileResponse(p *profile.Profile) ProfileResponse {
	return ProfileResponse{
		ID:              strconv.FormatInt(p.ID, 10),
		Name:            p.Name,
		Role:            string(p.Role),
		Stage1Status:    string(p.Stage1Status),
		Stage1Completed: p.Stage1Completed,
		CreditScore:     p.CreditScore,
		Active:          p.Active,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func NewProfileListResponse(profiles []*profile.Profile) []ProfileResponse {
	out := make([]ProfileResponse, len(profiles))
	for i, p := range profiles {
		out[i] = NewProfileResponse(p)
	}
	return out
}
