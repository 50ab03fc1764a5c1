package auth

import (
	"time"

	"equiprent/internal/domain"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AdminPublic struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

type LoginResult struct {
	Admin       AdminPublic `json:"admin"`
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int64       `json:"expires_in"`
}

func toPublic(a *domain.AdminUser) AdminPublic {
	return AdminPublic{
		ID:          a.ID,
		Email:       a.Email,
		Name:        a.Name,
		Role:        a.Role,
		LastLoginAt: a.LastLoginAt,
	}
}
