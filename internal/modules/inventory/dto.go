package inventory

// ---------- EQUIPMENT ----------

type ListEquipmentQuery struct {
	CategoryID *int64 `form:"category_id" binding:"omitempty,gt=0"`
	Status     string `form:"status" binding:"omitempty,oneof=available unavailable maintenance broken"`
	Q          string `form:"q" binding:"max=100"`
}

type CreateEquipmentRequest struct {
	Name         string `json:"name" binding:"required,max=200"`
	Description  string `json:"description"`
	Image        string `json:"image" binding:"max=2048"`
	TotalCount   int    `json:"total_count" binding:"gte=0"`
	SerialNumber string `json:"serial_number" binding:"max=120"`
	CategoryID   *int64 `json:"category_id" binding:"omitempty,gt=0"`
	IsPublic     *bool  `json:"is_public"`
	Caution      string `json:"caution"`
}

// UpdateEquipmentRequest is a partial update: nil fields are left untouched.
type UpdateEquipmentRequest struct {
	Name           *string `json:"name" binding:"omitempty,min=1,max=200"`
	Description    *string `json:"description"`
	Image          *string `json:"image" binding:"omitempty,max=2048"`
	TotalCount     *int    `json:"total_count" binding:"omitempty,gte=0"`
	AvailableCount *int    `json:"available_count" binding:"omitempty,gte=0"`
	Status         *string `json:"status"`
	SerialNumber   *string `json:"serial_number" binding:"omitempty,max=120"`
	CategoryID     *int64  `json:"category_id" binding:"omitempty,gt=0"`
	ClearCategory  bool    `json:"clear_category"`
	IsPublic       *bool   `json:"is_public"`
	Caution        *string `json:"caution"`
}

type VisibilityRequest struct {
	IsPublic *bool `json:"is_public" binding:"required"`
}

// ---------- CATEGORIES ----------

type CategoryRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Description *string `json:"description"`
}
