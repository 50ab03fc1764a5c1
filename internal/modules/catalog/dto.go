package catalog

type ListEquipmentQuery struct {
	CategoryID *int64 `form:"category_id" binding:"omitempty,gt=0"`
	Q          string `form:"q" binding:"max=100"`
}
