package domain

import "time"

const RoleAdmin = "admin"

// AdminUser is a back-office account. Renters never log in.
type AdminUser struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	Email        string     `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"not null"`
	Name         string     `json:"name" gorm:"size:100;not null"`
	Role         string     `json:"role" gorm:"size:20;not null;default:'admin'"`
	IsActive     bool       `json:"is_active" gorm:"not null;default:true"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (AdminUser) TableName() string { return "admin_users" }
