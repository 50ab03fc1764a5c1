package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"equiprent/internal/database"
	"equiprent/internal/domain"

	"gorm.io/gorm"
)

var ErrEmailTaken = errors.New("email already registered")

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	var a domain.AdminUser
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AdminRepository) GetByID(ctx context.Context, id int64) (*domain.AdminUser, error) {
	var a domain.AdminUser
	err := r.db.WithContext(ctx).First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AdminRepository) Create(ctx context.Context, a *domain.AdminUser) error {
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *AdminRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.AdminUser{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}
