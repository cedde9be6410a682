package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"origination-engine/internal/pkg/apperrors"
)

type ProfileService interface {
	CreateProfile(ctx context.Context, name string, role Role) (*Profile, error)

	GetProfile(ctx context.Context, profileID int64) (*Profile, error)

	ListActiveProfiles(ctx context.Context) ([]*Profile, error)

	DeactivateProfile(ctx context.Context, profileID int64) error

	ReactivateProfile(ctx context.Context, profileID int64) error
}

type profileServiceImpl struct {
	repo   Repository
	logger *slog.Logger
}

func NewProfileService(r Repository, logger *slog.Logger) ProfileService {
	return &profileServiceImpl{repo: r, logger: logger.With("component", "ProfileService")}
}

func (s *profileServiceImpl) CreateProfile(ctx context.Context, name string, role Role) (*Profile, error) {
	s.logger.Info("Creating new profile", "role", role)
	p, err := NewProfile(name, role)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.CreateProfile(ctx, p)
	if err != nil {
		s.logger.Error("Failed to save profile", "error", err)
		return nil, fmt.Errorf("%w: failed to save profile: %v", apperrors.ErrInternalServer, err)
	}
	s.logger.Info("Profile created", "profileID", created.ID, "role", created.Role)
	return created, nil
}

func (s *profileServiceImpl) GetProfile(ctx context.Context, profileID int64) (*Profile, error) {
	p, err := s.repo.GetProfileByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: profile %d not found", apperrors.ErrNotFound, profileID)
		}
		s.logger.Error("Failed to get profile", "profileID", profileID, "error", err)
		return nil, fmt.Errorf("%w: failed to get profile %d: %v", apperrors.ErrInternalServer, profileID, err)
	}
	return p, nil
}

func (s *profileServiceImpl) ListActiveProfiles(ctx context.Context) ([]*Profile, error) {
	profiles, err := s.repo.ListActiveProfiles(ctx)
	if err != nil {
		s.logger.Error("Failed to list profiles", "error", err)
		return nil, fmt.Errorf("%w: failed to list profiles: %v", apperrors.ErrInternalServer, err)
	}
	return profiles, nil
}

func (s *profileServiceImpl) DeactivateProfile(ctx context.Context, profileID int64) error {
	return s.setActive(ctx, profileID, false)
}

func (s *profileServiceImpl) ReactivateProfile(ctx context.Context, profileID int64) error {
	return s.setActive(ctx, profileID, true)
}

func (s *profileServiceImpl) setActive(ctx context.Context, profileID int64, active bool) error {
	if err := s.repo.SetActive(ctx, profileID, active); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: profile %d not found", apperrors.ErrNotFound, profileID)
		}
		s.logger.Error("Failed to update profile active flag", "profileID", profileID, "error", err)
		return fmt.Errorf("%w: failed to update profile %d: %v", apperrors.ErrInternalServer, profileID, err)
	}
	s.logger.Info("Profile active flag updated", "profileID", profileID, "active", active)
	return nil
}
