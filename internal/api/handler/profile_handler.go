package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"origination-engine/internal/api/handler/dto"
	"origination-engine/internal/domain/profile"
	"origination-engine/internal/pkg/apperrors"
)

type ProfileHandler struct {
	service profile.ProfileService
	logger  *slog.Logger
}

func NewProfileHandler(s profile.ProfileService, l *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: s,
		logger:  l.With("component", "ProfileHandler"),
	}
}

// CreateProfile registers a new profile.
//
// @Summary Create a profile
// @Tags Profiles
// @Accept json
// @Produce json
// @Param request body dto.CreateProfileRequest true "Profile payload"
// @Success 201 {object} dto.ProfileResponse "Profile created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Router /profiles [post]
// @Security BearerAuth
func (h *ProfileHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	p, err := h.service.CreateProfile(r.Context(), req.Name, profile.Role(req.Role))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, dto.NewProfileResponse(p))
}

// GetProfile retrieves a profile.
//
// @Summary Retrieve a profile
// @Tags Profiles
// @Produce json
// @Param profileID path int true "Profile ID"
// @Success 200 {object} dto.ProfileResponse "Profile details"
// @Failure 404 {object} dto.ErrorResponse "Profile not found"
// @Router /profiles/{profileID} [get]
// @Security BearerAuth
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profileID, err := idFromURL(r, "profileID")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	p, err := h.service.GetProfile(r.Context(), profileID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewProfileResponse(p))
}

// ListProfiles lists active profiles.
//
// @Summary List active profiles
// @Tags Profiles
// @Produce json
// @Success 200 {array} dto.ProfileResponse "Active profiles"
// @Router /profiles [get]
// @Security BearerAuth
func (h *ProfileHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.service.ListActiveProfiles(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewProfileListResponse(profiles))
}

// DeactivateProfile soft-deletes a profile.
//
// @Summary Deactivate a profile
// @Tags Profiles
// @Produce json
// @Param profileID path int true "Profile ID"
// @Success 200 {object} map[string]string "Profile deactivated"
// @Failure 404 {object} dto.ErrorResponse "Profile not found"
// @Router /profiles/{profileID} [delete]
// @Security BearerAuth
func (h *ProfileHandler) DeactivateProfile(w http.ResponseWriter, r *http.Request) {
	profileID, err := idFromURL(r, "profileID")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	if err := h.service.DeactivateProfile(r.Context(), profileID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Profile deactivated"})
}

// ReactivateProfile restores a deactivated profile.
//
// @Summary Reactivate a profile
// @Tags Profiles
// @Produce json
// @Param profileID path int true "Profile ID"
// @Success 200 {object} map[string]string "Profile reactivated"
// @Failure 404 {object} dto.ErrorResponse "Profile not found"
// @Router /profiles/{profileID}/reactivate [put]
// @Security BearerAuth
func (h *ProfileHandler) ReactivateProfile(w http.ResponseWriter, r *http.Request) {
	profileID, err := idFromURL(r, "profileID")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	if err := h.service.ReactivateProfile(r.Context(), profileID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Profile reactivated"})
}
