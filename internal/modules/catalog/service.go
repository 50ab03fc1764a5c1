package catalog

import (
	"context"
	"errors"
	"fmt"

	"equiprent/internal/domain"
	"equiprent/internal/repository"
)

// Service serves the public catalog. Hidden equipment never leaves it.
type Service struct {
	equipment  EquipmentReader
	categories CategoryReader
}

func NewService(equipment EquipmentReader, categories CategoryReader) *Service {
	return &Service{equipment: equipment, categories: categories}
}

func (s *Service) ListEquipment(ctx context.Context, q ListEquipmentQuery) ([]domain.Equipment, error) {
	items, err := s.equipment.List(ctx, repository.EquipmentFilter{
		PublicOnly: true,
		CategoryID: q.CategoryID,
		Query:      q.Q,
	})
	if err != nil {
		return nil, fmt.Errorf("list public equipment: %w", err)
	}
	return items, nil
}

func (s *Service) GetEquipment(ctx context.Context, id int64) (*domain.Equipment, error) {
	if id <= 0 {
		return nil, ErrInvalidRequest
	}
	e, err := s.equipment.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get equipment %d: %w", id, err)
	}
	if !e.IsPublic {
		return nil, ErrNotFound
	}
	return e, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	for i := range cats {
		cats[i].Equipment = publicOnly(cats[i].Equipment)
	}
	return cats, nil
}

func (s *Service) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	if id <= 0 {
		return nil, ErrInvalidRequest
	}
	c, err := s.categories.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category %d: %w", id, err)
	}
	c.Equipment = publicOnly(c.Equipment)
	return c, nil
}

func publicOnly(items []domain.Equipment) []domain.Equipment {
	out := make([]domain.Equipment, 0, len(items))
	for _, e := range items {
		if e.IsPublic {
			out = append(out, e)
		}
	}
	return out
}
