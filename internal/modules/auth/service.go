package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"equiprent/internal/domain"
	"equiprent/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Service contains the back-office authentication logic
type Service struct {
	admins AdminRepository
	jwt    jwtService
	log    *zap.Logger
	now    func() time.Time
}

func NewService(admins AdminRepository, jwt jwtService, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{admins: admins, jwt: jwt, log: log, now: time.Now}
}

// Login checks the password and issues an access token.
// Unknown, inactive and wrong-password cases are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	admin, err := s.admins.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		s.log.Warn("admin login failed", zap.Int64("admin_id", admin.ID))
		return nil, ErrInvalidCredentials
	}
	if !admin.IsActive || admin.Role != domain.RoleAdmin {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(admin.ID, admin.Role)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	now := s.now().UTC()
	if err := s.admins.TouchLastLogin(ctx, admin.ID, now); err != nil {
		s.log.Warn("failed to record last login", zap.Int64("admin_id", admin.ID), zap.Error(err))
	} else {
		admin.LastLoginAt = &now
	}

	return &LoginResult{
		Admin:       toPublic(admin),
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.jwt.TTL().Seconds()),
	}, nil
}

func (s *Service) GetCurrentAdmin(ctx context.Context, adminID int64) (*AdminPublic, error) {
	if adminID == 0 {
		return nil, ErrUnauthorized
	}
	admin, err := s.admins.GetByID(ctx, adminID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, err
	}
	if !admin.IsActive {
		return nil, ErrUnauthorized
	}
	out := toPublic(admin)
	return &out, nil
}

// EnsureAdmin creates the bootstrap admin if no account with that email exists yet.
// An existing account is left untouched, including its password.
func (s *Service) EnsureAdmin(ctx context.Context, email, password, name string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return false, nil
	}

	_, err := s.admins.GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(name) == "" {
		name = "Administrator"
	}

	admin := &domain.AdminUser{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         domain.RoleAdmin,
		IsActive:     true,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return false, nil
		}
		return false, fmt.Errorf("create bootstrap admin: %w", err)
	}

	s.log.Info("bootstrap admin created", zap.String("email", email), zap.Int64("admin_id", admin.ID))
	return true, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
