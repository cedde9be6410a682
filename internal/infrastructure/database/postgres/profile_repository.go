package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"origination-engine/internal/domain/profile"
	"origination-engine/internal/infrastructure/monitoring"
	"origination-engine/internal/pkg/apperrors"
)

const profileColumns = `
    id, name, role, stage1_status, stage1_completed, credit_score, active, created_at, updated_at`

type ProfileRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ profile.Repository = (*ProfileRepository)(nil)

func NewProfileRepository(db DBPool, logger *slog.Logger) *ProfileRepository {
	return &ProfileRepository{db: db, logger: logger.With("component", "ProfileRepository")}
}

func (r *ProfileRepository) CreateProfile(ctx context.Context, p *profile.Profile) (*profile.Profile, error) {
	query := `
        INSERT INTO profiles (name, role, stage1_status, stage1_completed, active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
        RETURNING ` + profileColumns

	created, err := scanProfile(r.db.QueryRow(ctx, query,
		p.Name, p.Role, p.Stage1Status, p.Stage1Completed, p.Active))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert profile", "name", p.Name, "error", err)
		return nil, translateProfileError(err, r.logger)
	}
	r.logger.InfoContext(ctx, "Profile created in DB", "profile_id", created.ID, "role", created.Role)
	return created, nil
}

func (r *ProfileRepository) GetProfileByID(ctx context.Context, profileID int64) (*profile.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	status := "success"
	startTime := time.Now()

	p, err := scanProfile(r.db.QueryRow(ctx, query, profileID))

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("GetProfileByID", status, time.Since(startTime))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Profile not found", "profile_id", profileID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get profile by ID", "profile_id", profileID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return p, nil
}

func (r *ProfileRepository) ListActiveProfiles(ctx context.Context) ([]*profile.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE active = TRUE ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query active profiles", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	profiles := make([]*profile.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan profile row", "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		profiles = append(profiles, p)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating profile rows", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	return profiles, nil
}

func (r *ProfileRepository) UpdateStage1Status(ctx context.Context, profileID int64, status profile.Stage1Status, completed bool) error {
	sql := `UPDATE profiles SET stage1_status = $1, stage1_completed = $2, updated_at = NOW() WHERE id = $3`
	return r.execOne(ctx, "UpdateStage1Status", sql, status, completed, profileID)
}

func (r *ProfileRepository) UpdateCreditScore(ctx context.Context, profileID int64, score int) error {
	sql := `UPDATE profiles SET credit_score = $1, updated_at = NOW() WHERE id = $2`
	return r.execOne(ctx, "UpdateCreditScore", sql, score, profileID)
}

func (r *ProfileRepository) SetActive(ctx context.Context, profileID int64, active bool) error {
	sql := `UPDATE profiles SET active = $1, updated_at = NOW() WHERE id = $2`
	return r.execOne(ctx, "SetActive", sql, active, profileID)
}

func (r *ProfileRepository) execOne(ctx context.Context, op, sql string, args ...any) error {
	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Profile update failed", "operation", op, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func scanProfile(row pgx.Row) (*profile.Profile, error) {
	var p profile.Profile
	err := row.Scan(
		&p.ID, &p.Name, &p.Role, &p.Stage1Status, &p.Stage1Completed,
		&p.CreditScore, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func translateProfileError(err error, logger *slog.Logger) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		logger.Warn("Database unique constraint violation", "detail", pgErr.Detail, "constraint", pgErr.ConstraintName)
		return fmt.Errorf("%w: %s", apperrors.ErrAlreadyExists, pgErr.ConstraintName)
	}
	return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
}
