package catalog

import (
	"context"

	"equiprent/internal/domain"
	"equiprent/internal/repository"
)

// EquipmentReader is the read side of the equipment repository.
type EquipmentReader interface {
	List(ctx context.Context, f repository.EquipmentFilter) ([]domain.Equipment, error)
	GetByID(ctx context.Context, id int64) (*domain.Equipment, error)
}

// CategoryReader is the read side of the category repository.
type CategoryReader interface {
	List(ctx context.Context) ([]domain.Category, error)
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
}
