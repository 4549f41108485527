package repositories

import (
	"context"
	"fmt"

	"github.com/edustack/trainer-portal/internal/database"
	"github.com/edustack/trainer-portal/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TrainerRepository is the single boundary where raw trainer rows are
// read into typed models. All credential reads and writes pass through it.
type TrainerRepository struct {
	pool *pgxpool.Pool
}

func NewTrainerRepository(db *database.DB) *TrainerRepository {
	return &TrainerRepository{pool: db.Pool}
}

const trainerSelect = `
	SELECT t.id, t.name, t.email, t.mobile, t.password_hash, t.temp_password,
	       t.is_temp_password, t.is_active, t.portal_access,
	       t.course_id, t.bio, t.profile_image_url, t.last_login_at,
	       c.course_name
	FROM trainer t
	LEFT JOIN course c ON t.course_id = c.id
`

// rowScanner supports both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanTrainerRow handles nullable columns and populates a Trainer model
func scanTrainerRow(scanner rowScanner) (*models.Trainer, error) {
	var trainer models.Trainer
	var passwordHash, tempPassword *string

	err := scanner.Scan(
		&trainer.ID, &trainer.Name, &trainer.Email, &trainer.Mobile,
		&passwordHash, &tempPassword,
		&trainer.IsTempPassword, &trainer.IsActive, &trainer.PortalAccess,
		&trainer.CourseID, &trainer.Bio, &trainer.ProfileImageURL, &trainer.LastLoginAt,
		&trainer.CourseName,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if passwordHash != nil {
		trainer.PasswordHash = *passwordHash
	}
	if tempPassword != nil {
		trainer.TempPassword = *tempPassword
	}

	return &trainer, nil
}

func (r *TrainerRepository) GetByEmail(ctx context.Context, email string) (*models.Trainer, error) {
	query := trainerSelect + `WHERE t.email = $1`

	trainer, err := scanTrainerRow(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		return nil, err
	}

	return trainer, nil
}

func (r *TrainerRepository) GetByID(ctx context.Context, id int64) (*models.Trainer, error) {
	query := trainerSelect + `WHERE t.id = $1`

	trainer, err := scanTrainerRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	return trainer, nil
}

// UpdatePassword stores a new permanent password hash and retires any
// temp-password or reset-token state, so a stale temp password can never
// authenticate again.
func (r *TrainerRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	query := `
		UPDATE trainer
		SET password_hash = $1, temp_password = NULL, is_temp_password = false,
		    reset_token = NULL, reset_token_expiry = NULL
		WHERE id = $2
	`

	result, err := r.pool.Exec(ctx, query, hash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", database.MapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// TouchLastLogin records a successful login. Advisory only.
func (r *TrainerRepository) TouchLastLogin(ctx context.Context, id int64) error {
	query := `UPDATE trainer SET last_login_at = NOW() WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to touch last login: %w", database.MapPostgresError(err))
	}

	return nil
}
