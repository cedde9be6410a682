package profile

import "context"

type Repository interface {
	CreateProfile(ctx context.Context, p *Profile) (*Profile, error)

	GetProfileByID(ctx context.Context, profileID int64) (*Profile, error)

	ListActiveProfiles(ctx context.Context) ([]*Profile, error)

	// UpdateStage1Status is reserved for the KYC gate flow.
	UpdateStage1Status(ctx context.Context, profileID int64, status Stage1Status, completed bool) error

	UpdateCreditScore(ctx context.Context, profileID int64, score int) error

	SetActive(ctx context.Context, profileID int64, active bool) error
}
