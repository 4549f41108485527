package handlers

import (
	"context"

	"github.com/edustack/trainer-portal/internal/models"
	"github.com/edustack/trainer-portal/internal/services"
)

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc                func(ctx context.Context, email, password string) (*services.LoginResponse, error)
	SetPermanentPasswordFunc func(ctx context.Context, trainerID int64, newPassword string) error
	ForgotPasswordFunc       func(ctx context.Context, email, newPassword string) error
	GetProfileFunc           func(ctx context.Context, trainerID int64) (*models.TrainerProfile, error)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*services.LoginResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, models.ErrInvalidCredentials
}

func (m *MockAuthService) SetPermanentPassword(ctx context.Context, trainerID int64, newPassword string) error {
	if m.SetPermanentPasswordFunc != nil {
		return m.SetPermanentPasswordFunc(ctx, trainerID, newPassword)
	}
	return nil
}

func (m *MockAuthService) ForgotPassword(ctx context.Context, email, newPassword string) error {
	if m.ForgotPasswordFunc != nil {
		return m.ForgotPasswordFunc(ctx, email, newPassword)
	}
	return nil
}

func (m *MockAuthService) GetProfile(ctx context.Context, trainerID int64) (*models.TrainerProfile, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, trainerID)
	}
	return nil, models.ErrNotFound
}
