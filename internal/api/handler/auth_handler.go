package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"origination-engine/internal/api/handler/dto"
	"origination-engine/internal/config"
	"origination-engine/internal/domain/profile"
	"origination-engine/internal/pkg/apperrors"
)

type AuthHandler struct {
	cfg    config.Config
	logger *slog.Logger
}

func NewAuthHandler(cfg config.Config, l *slog.Logger) *AuthHandler {
	return &AuthHandler{
		cfg:    cfg,
		logger: l.With("component", "AuthHandler"),
	}
}

// GenerateBearerToken issues a JWT carrying the profile id and role claims
// the actor middleware reads.
//
// @Summary Generate a JWT bearer token
// @Description Issues a token for the given profile id and role.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.TokenRequest true "Profile id and role"
// @Success 200 {object} map[string]string "Token successfully generated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request parameters"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/token [post]
func (h *AuthHandler) GenerateBearerToken(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	h.logger.Info("Generating bearer token")
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request body", "error", err)
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	if req.ProfileID <= 0 {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, "profileId is required"))
		return
	}
	if !profile.Role(req.Role).Valid() {
		respondError(w, fmt.Errorf("%w: unknown role %q", apperrors.ErrInvalidArgument, req.Role))
		return
	}

	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(req.ProfileID, 10),
		"role": req.Role,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(h.cfg.Server.Auth.JWTSecret))
	if err != nil {
		h.logger.Error("failed to sign token", "error", err)
		respondError(w, fmt.Errorf("%w: failed to sign token", apperrors.ErrInternalServer))
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"token": fmt.Sprintf("Bearer %s", tokenString)})
}
