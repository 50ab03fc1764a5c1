package inventory

import "errors"

var (
	ErrInvalidRequest    = errors.New("invalid_request")
	ErrNotFound          = errors.New("equipment_not_found")
	ErrCategoryNotFound  = errors.New("category_not_found")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidCounts     = errors.New("invalid_counts")
	ErrEquipmentInUse    = errors.New("equipment_in_use")
	ErrCategoryInUse     = errors.New("category_in_use")
	ErrCategoryNameBlank = errors.New("category_name_blank")
)
