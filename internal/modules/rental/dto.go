package rental

import (
	"strings"
	"time"

	"equiprent/internal/domain"
)

const dateLayout = "2006-01-02"

type ApplyRequest struct {
	EquipmentID int64  `json:"equipment_id" binding:"required,gt=0"`
	RenterName  string `json:"renter_name" binding:"required,max=100"`
	RenterClass string `json:"renter_class" binding:"max=50"`
	StudentID   string `json:"student_id" binding:"required,max=50"`
	Email       string `json:"email" binding:"omitempty,email,max=255"`
	Phone       string `json:"phone" binding:"required,max=30"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date" binding:"required"`
}

type LookupQuery struct {
	Name  string `form:"name" binding:"required"`
	Phone string `form:"phone" binding:"required"`
}

// LookupResult is what a renter sees about their own open rental.
type LookupResult struct {
	ID            int64               `json:"id"`
	EquipmentName string              `json:"equipment_name"`
	StartDate     time.Time           `json:"start_date"`
	EndDate       time.Time           `json:"end_date"`
	Status        domain.RentalStatus `json:"status"`
}

type ListQuery struct {
	Status     string `form:"status"`
	CategoryID *int64 `form:"category_id" binding:"omitempty,gt=0"`
	Q          string `form:"q" binding:"max=100"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// parseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func toLookupResult(r *domain.Rental) LookupResult {
	out := LookupResult{
		ID:        r.ID,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		Status:    r.Status,
	}
	if r.Equipment != nil {
		out.EquipmentName = r.Equipment.Name
	}
	return out
}
