package inventory

import (
	"context"

	"equiprent/internal/domain"
	"equiprent/internal/repository"
)

type EquipmentStore interface {
	List(ctx context.Context, f repository.EquipmentFilter) ([]domain.Equipment, error)
	GetByID(ctx context.Context, id int64) (*domain.Equipment, error)
	Create(ctx context.Context, e *domain.Equipment) error
	Patch(ctx context.Context, id int64, p repository.EquipmentPatch) error
	SetVisibility(ctx context.Context, id int64, public bool) error
	Delete(ctx context.Context, id int64) error
}

type CategoryStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, c *domain.Category) error
	Update(ctx context.Context, c *domain.Category) error
	Delete(ctx context.Context, id int64) error
}
