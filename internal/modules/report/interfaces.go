package report

import (
	"context"

	"equiprent/internal/domain"
	"equiprent/internal/repository"
)

type RentalReader interface {
	List(ctx context.Context, f repository.RentalFilter) ([]domain.Rental, error)
	CountByStatus(ctx context.Context) (map[domain.RentalStatus]int64, error)
}

type EquipmentCounter interface {
	Counts(ctx context.Context) (repository.EquipmentCounts, error)
}

type CategoryCounter interface {
	Count(ctx context.Context) (int64, error)
}
