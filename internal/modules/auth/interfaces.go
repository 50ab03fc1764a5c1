package auth

import (
	"context"
	"time"

	"equiprent/internal/domain"
)

// AdminRepository is implemented by repository.AdminRepository.
type AdminRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.AdminUser, error)
	GetByID(ctx context.Context, id int64) (*domain.AdminUser, error)
	Create(ctx context.Context, a *domain.AdminUser) error
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

type jwtService interface {
	GenerateToken(adminID int64, role string) (string, error)
	TTL() time.Duration
}
