package domain

import "time"

type Category struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:100;not null"`
	Description *string   `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Equipment []Equipment `json:"equipment,omitempty" gorm:"foreignKey:CategoryID"`
}

func (Category) TableName() string { return "categories" }
