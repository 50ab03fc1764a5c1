package domain

import (
	"fmt"
	"time"
)

type RentalStatus string

const (
	RentalRented   RentalStatus = "rented"
	RentalPending  RentalStatus = "pending"
	RentalApproved RentalStatus = "approved"
	RentalRejected RentalStatus = "rejected"
	RentalReturned RentalStatus = "returned"
	RentalOverdue  RentalStatus = "overdue"
)

// RentalStatuses lists every status in display order.
var RentalStatuses = []RentalStatus{
	RentalRented,
	RentalPending,
	RentalApproved,
	RentalRejected,
	RentalReturned,
	RentalOverdue,
}

func ParseRentalStatus(s string) (RentalStatus, error) {
	for _, st := range RentalStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown rental status %q", s)
}

type Rental struct {
	ID          int64        `json:"id" gorm:"primaryKey"`
	EquipmentID int64        `json:"equipment_id" gorm:"not null;index"`
	RenterName  string       `json:"renter_name" gorm:"size:100;not null;index:idx_rentals_renter"`
	RenterClass string       `json:"renter_class,omitempty" gorm:"size:50"`
	StudentID   string       `json:"student_id" gorm:"size:50;not null"`
	Email       string       `json:"email,omitempty" gorm:"size:255"`
	Phone       string       `json:"phone" gorm:"size:30;not null;index:idx_rentals_renter"`
	StartDate   time.Time    `json:"start_date" gorm:"not null"`
	EndDate     time.Time    `json:"end_date" gorm:"not null;index"`
	Status      RentalStatus `json:"status" gorm:"size:20;not null;default:'rented';index"`
	CreatedAt   time.Time    `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time    `json:"updated_at"`

	Equipment *Equipment `json:"equipment,omitempty" gorm:"foreignKey:EquipmentID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (Rental) TableName() string { return "rentals" }

// IsOut reports whether the unit is still with the renter.
func (r *Rental) IsOut() bool {
	switch r.Status {
	case RentalRented, RentalApproved, RentalOverdue:
		return true
	}
	return false
}
