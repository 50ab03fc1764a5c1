package domain

import (
	"fmt"
	"time"
)

type EquipmentStatus string

const (
	EquipmentAvailable   EquipmentStatus = "available"
	EquipmentUnavailable EquipmentStatus = "unavailable"
	EquipmentMaintenance EquipmentStatus = "maintenance"
	EquipmentBroken      EquipmentStatus = "broken"
)

func ParseEquipmentStatus(s string) (EquipmentStatus, error) {
	switch EquipmentStatus(s) {
	case EquipmentAvailable, EquipmentUnavailable, EquipmentMaintenance, EquipmentBroken:
		return EquipmentStatus(s), nil
	}
	return "", fmt.Errorf("unknown equipment status %q", s)
}

type Equipment struct {
	ID             int64           `json:"id" gorm:"primaryKey"`
	Name           string          `json:"name" gorm:"size:200;not null"`
	Description    string          `json:"description" gorm:"type:text"`
	Image          *string         `json:"image"`
	Status         EquipmentStatus `json:"status" gorm:"size:20;not null;default:'available';index"`
	TotalCount     int             `json:"total_count" gorm:"not null;default:0"`
	AvailableCount int             `json:"available_count" gorm:"not null;default:0"`
	SerialNumber   string          `json:"serial_number" gorm:"size:120"`
	CategoryID     *int64          `json:"category_id" gorm:"index"`
	IsPublic       bool            `json:"is_public" gorm:"not null;default:false;index"`
	Caution        *string         `json:"caution" gorm:"type:text"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (Equipment) TableName() string { return "equipment" }

// InStock reports whether at least one unit can still be handed out.
func (e *Equipment) InStock() bool {
	return e.AvailableCount > 0
}
