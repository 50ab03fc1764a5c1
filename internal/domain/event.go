package domain

import "time"

type RentalEventType string

const (
	EventRentalCreated       RentalEventType = "rental.created"
	EventRentalReturned      RentalEventType = "rental.returned"
	EventRentalStatusChanged RentalEventType = "rental.status_changed"
	EventRentalOverdue       RentalEventType = "rental.overdue"
)

// RentalEvent is pushed to the admin live feed.
type RentalEvent struct {
	Type        RentalEventType `json:"type"`
	RentalID    int64           `json:"rental_id"`
	EquipmentID int64           `json:"equipment_id"`
	Status      RentalStatus    `json:"status"`
	At          time.Time       `json:"at"`
}

func NewRentalEvent(t RentalEventType, r *Rental, at time.Time) RentalEvent {
	return RentalEvent{
		Type:        t,
		RentalID:    r.ID,
		EquipmentID: r.EquipmentID,
		Status:      r.Status,
		At:          at,
	}
}
