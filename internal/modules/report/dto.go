package report

import "equiprent/internal/domain"

type ExportQuery struct {
	Status     string `form:"status"`
	CategoryID *int64 `form:"category_id" binding:"omitempty,gt=0"`
	Q          string `form:"q" binding:"max=100"`
}

// Stats feeds the admin dashboard.
type Stats struct {
	Equipment  EquipmentStats                `json:"equipment"`
	Categories int64                         `json:"categories"`
	Rentals    map[domain.RentalStatus]int64 `json:"rentals"`
	Open       int64                         `json:"open_rentals"`
}

type EquipmentStats struct {
	Total     int64 `json:"total"`
	Public    int64 `json:"public"`
	Units     int64 `json:"units"`
	Available int64 `json:"available_units"`
}
