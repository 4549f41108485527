package services

import (
	"context"

	"github.com/edustack/trainer-portal/internal/models"
	pkgauth "github.com/edustack/trainer-portal/pkg/auth"
)

// MockTrainerRepository implements TrainerRepository for testing
type MockTrainerRepository struct {
	GetByEmailFunc     func(ctx context.Context, email string) (*models.Trainer, error)
	GetByIDFunc        func(ctx context.Context, id int64) (*models.Trainer, error)
	UpdatePasswordFunc func(ctx context.Context, id int64, hash string) error
	TouchLastLoginFunc func(ctx context.Context, id int64) error
}

func (m *MockTrainerRepository) GetByEmail(ctx context.Context, email string) (*models.Trainer, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockTrainerRepository) GetByID(ctx context.Context, id int64) (*models.Trainer, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockTrainerRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, hash)
	}
	return nil
}

func (m *MockTrainerRepository) TouchLastLogin(ctx context.Context, id int64) error {
	if m.TouchLastLoginFunc != nil {
		return m.TouchLastLoginFunc(ctx, id)
	}
	return nil
}

// MockEmailService records notification sends
type MockEmailService struct {
	Sent []string
	Err  error
}

func (m *MockEmailService) SendPasswordChangedEmail(ctx context.Context, email, name string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, email)
	return nil
}

// NewTestTrainer builds an active trainer with a bcrypt hash of password.
// Pass an empty password to leave the hash unset.
func NewTestTrainer(id int64, email, password string) *models.Trainer {
	trainer := &models.Trainer{
		ID:           id,
		Name:         "Alice",
		Email:        email,
		Mobile:       "9876543210",
		IsActive:     true,
		PortalAccess: true,
	}

	if password != "" {
		hash, err := pkgauth.HashPassword(password)
		if err != nil {
			panic(err)
		}
		trainer.PasswordHash = hash
	}

	return trainer
}
