package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"

	"github.com/edustack/trainer-portal/internal/auth"
	"github.com/edustack/trainer-portal/internal/models"
	pkgauth "github.com/edustack/trainer-portal/pkg/auth"
	pkglogger "github.com/edustack/trainer-portal/pkg/logger"
)

// TrainerRepository defines the credential store operations the auth flow
// needs. Implemented by repositories.TrainerRepository.
type TrainerRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.Trainer, error)
	GetByID(ctx context.Context, id int64) (*models.Trainer, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
	TouchLastLogin(ctx context.Context, id int64) error
}

// AuthService orchestrates login, the temp-password transition, forced
// password set, and self-service forgot-password.
type AuthService struct {
	repo        TrainerRepository
	tm          *auth.TokenManager
	email       EmailService // nil when notifications are disabled
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

func NewAuthService(repo TrainerRepository, tm *auth.TokenManager, email EmailService, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AuthService {
	return &AuthService{
		repo:        repo,
		tm:          tm,
		email:       email,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// LoginResponse is the body returned from a successful login
type LoginResponse struct {
	Success        bool                   `json:"success"`
	Message        string                 `json:"message"`
	Token          string                 `json:"token"`
	IsTempPassword bool                   `json:"is_temp_password"`
	Trainer        *models.TrainerProfile `json:"trainer"`
}

// Login runs the authentication state machine:
// lookup → active check → portal-access check → password verify →
// touch last login → temp or full session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, models.ErrInvalidCredentials
	}

	trainer, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
				EventType:     "login_failed",
				Email:         email,
				FailureReason: "invalid_credentials",
			})
			return nil, models.ErrInvalidCredentials
		}
		s.logger.Error("failed to get trainer by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !trainer.IsActive {
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			TrainerID:     trainer.ID,
			FailureReason: "account_deactivated",
		})
		return nil, models.ErrAccountDeactivated
	}

	if !trainer.PortalAccess {
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			TrainerID:     trainer.ID,
			FailureReason: "portal_access_disabled",
		})
		return nil, models.ErrPortalAccessDisabled
	}

	if !s.verifyPassword(trainer, password) {
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			TrainerID:     trainer.ID,
			FailureReason: "wrong_credentials",
		})
		return nil, models.ErrWrongCredentials
	}

	// Advisory timestamp; a failure here must not block the login
	if err := s.repo.TouchLastLogin(ctx, trainer.ID); err != nil {
		s.logger.Warn("failed to update last_login_at",
			slog.Int64("trainer_id", trainer.ID), slog.Any("error", err))
	}

	// A trainer still on a temp password never gets a full-scope token:
	// they receive a set_password-scope token and the frontend forces the
	// set-password flow.
	if trainer.IsTempPassword {
		token, err := s.tm.Generate(trainer, models.ScopeSetPassword)
		if err != nil {
			s.logger.Error("failed to generate set-password token",
				slog.Int64("trainer_id", trainer.ID), slog.Any("error", err))
			return nil, models.ErrInternalServer
		}

		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType: "login_temp_password",
			TrainerID: trainer.ID,
			Success:   true,
		})

		return &LoginResponse{
			Success:        true,
			Message:        "Temporary password accepted. Please set your permanent password.",
			Token:          token,
			IsTempPassword: true,
			Trainer:        trainer.Profile(),
		}, nil
	}

	token, err := s.tm.Generate(trainer, models.ScopeFull)
	if err != nil {
		s.logger.Error("failed to generate access token",
			slog.Int64("trainer_id", trainer.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login_success",
		TrainerID: trainer.ID,
		Success:   true,
	})

	return &LoginResponse{
		Success:        true,
		Message:        "Login successful",
		Token:          token,
		IsTempPassword: false,
		Trainer:        trainer.Profile(),
	}, nil
}

// verifyPassword checks the permanent hash first, then falls back to the
// plaintext admin-issued temp password. The plaintext path is a known
// compatibility gap with the admin workflow.
func (s *AuthService) verifyPassword(trainer *models.Trainer, password string) bool {
	if trainer.PasswordHash != "" {
		if err := pkgauth.ComparePassword(trainer.PasswordHash, password); err == nil {
			return true
		}
	}

	if trainer.TempPassword != "" {
		return subtle.ConstantTimeCompare([]byte(password), []byte(trainer.TempPassword)) == 1
	}

	return false
}

// SetPermanentPassword hashes and stores the trainer's permanent password,
// retiring any temp-password state. The caller's token scope has already
// been checked by the guard; password policy is enforced at the boundary.
func (s *AuthService) SetPermanentPassword(ctx context.Context, trainerID int64, newPassword string) error {
	trainer, err := s.repo.GetByID(ctx, trainerID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to get trainer by id", slog.Int64("trainer_id", trainerID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	// Deactivated trainers cannot settle a password
	if !trainer.IsActive {
		return models.ErrNotFound
	}

	hash, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.repo.UpdatePassword(ctx, trainerID, hash); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to update password", slog.Int64("trainer_id", trainerID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogPasswordChange("password_set", trainerID, true)
	s.notifyPasswordChanged(ctx, trainer)

	return nil
}

// ForgotPassword is the unauthenticated self-service reset: knowledge of
// the account email is the only gate. No out-of-band verification exists.
func (s *AuthService) ForgotPassword(ctx context.Context, email, newPassword string) error {
	trainer, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to get trainer by email", slog.Any("error", err))
		return models.ErrInternalServer
	}

	hash, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.repo.UpdatePassword(ctx, trainer.ID, hash); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to update password", slog.Int64("trainer_id", trainer.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogPasswordChange("password_reset", trainer.ID, true)
	s.notifyPasswordChanged(ctx, trainer)

	return nil
}

// GetProfile returns the joined trainer+course projection. The hash and
// temp password never leave the model layer.
func (s *AuthService) GetProfile(ctx context.Context, trainerID int64) (*models.TrainerProfile, error) {
	trainer, err := s.repo.GetByID(ctx, trainerID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get trainer by id", slog.Int64("trainer_id", trainerID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return trainer.Profile(), nil
}

// notifyPasswordChanged sends a best-effort courtesy email so the account
// owner learns of any password change, including a hostile reset. Failures
// are logged and swallowed.
func (s *AuthService) notifyPasswordChanged(ctx context.Context, trainer *models.Trainer) {
	if s.email == nil {
		return
	}

	if err := s.email.SendPasswordChangedEmail(ctx, trainer.Email, trainer.Name); err != nil {
		s.logger.Warn("failed to send password-changed notification",
			slog.Int64("trainer_id", trainer.ID),
			slog.String("email", pkglogger.SanitizedEmail(trainer.Email)),
			slog.Any("error", err))
	}
}
