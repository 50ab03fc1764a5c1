package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"equiprent/internal/domain"
	"equiprent/internal/repository"

	"github.com/jinzhu/copier"
)

type Service struct {
	equipment  EquipmentStore
	categories CategoryStore
}

func NewService(equipment EquipmentStore, categories CategoryStore) *Service {
	return &Service{equipment: equipment, categories: categories}
}

/* ---------- EQUIPMENT ---------- */

func (s *Service) ListEquipment(ctx context.Context, q ListEquipmentQuery) ([]domain.Equipment, error) {
	items, err := s.equipment.List(ctx, repository.EquipmentFilter{
		CategoryID: q.CategoryID,
		Status:     q.Status,
		Query:      q.Q,
	})
	if err != nil {
		return nil, fmt.Errorf("list equipment: %w", err)
	}
	return items, nil
}

func (s *Service) GetEquipment(ctx context.Context, id int64) (*domain.Equipment, error) {
	e, err := s.equipment.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get equipment %d: %w", id, err)
	}
	return e, nil
}

// CreateEquipment registers a new item. Every unit starts on the shelf.
func (s *Service) CreateEquipment(ctx context.Context, req CreateEquipmentRequest) (*domain.Equipment, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || req.TotalCount < 0 {
		return nil, ErrInvalidRequest
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	var e domain.Equipment
	if err := copier.Copy(&e, &req); err != nil {
		return nil, fmt.Errorf("copy equipment request: %w", err)
	}
	e.Name = name
	e.Image = nilIfBlank(req.Image)
	e.Caution = nilIfBlank(req.Caution)
	e.Status = domain.EquipmentAvailable
	e.AvailableCount = req.TotalCount
	e.IsPublic = req.IsPublic != nil && *req.IsPublic

	if err := s.equipment.Create(ctx, &e); err != nil {
		return nil, fmt.Errorf("create equipment: %w", err)
	}
	return s.GetEquipment(ctx, e.ID)
}

func (s *Service) UpdateEquipment(ctx context.Context, id int64, req UpdateEquipmentRequest) (*domain.Equipment, error) {
	patch := repository.EquipmentPatch{
		Description:    req.Description,
		Image:          req.Image,
		TotalCount:     req.TotalCount,
		AvailableCount: req.AvailableCount,
		SerialNumber:   req.SerialNumber,
		ClearCategory:  req.ClearCategory,
		IsPublic:       req.IsPublic,
		Caution:        req.Caution,
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrInvalidRequest
		}
		patch.Name = &name
	}
	if req.Status != nil {
		st, err := domain.ParseEquipmentStatus(*req.Status)
		if err != nil {
			return nil, ErrInvalidStatus
		}
		patch.Status = &st
	}
	if (req.TotalCount != nil && *req.TotalCount < 0) || (req.AvailableCount != nil && *req.AvailableCount < 0) {
		return nil, ErrInvalidCounts
	}
	if !req.ClearCategory && req.CategoryID != nil {
		if err := s.checkCategory(ctx, req.CategoryID); err != nil {
			return nil, err
		}
		patch.CategoryID = req.CategoryID
	}

	if err := s.equipment.Patch(ctx, id, patch); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, repository.ErrInvalidCounts):
			return nil, ErrInvalidCounts
		}
		return nil, fmt.Errorf("update equipment %d: %w", id, err)
	}
	return s.GetEquipment(ctx, id)
}

func (s *Service) SetVisibility(ctx context.Context, id int64, public bool) (*domain.Equipment, error) {
	if err := s.equipment.SetVisibility(ctx, id, public); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("set visibility %d: %w", id, err)
	}
	return s.GetEquipment(ctx, id)
}

func (s *Service) DeleteEquipment(ctx context.Context, id int64) error {
	err := s.equipment.Delete(ctx, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrInUse):
		return ErrEquipmentInUse
	default:
		return fmt.Errorf("delete equipment %d: %w", id, err)
	}
}

func (s *Service) checkCategory(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	ok, err := s.categories.Exists(ctx, *id)
	if err != nil {
		return fmt.Errorf("check category %d: %w", *id, err)
	}
	if !ok {
		return ErrCategoryNotFound
	}
	return nil
}

/* ---------- CATEGORIES ---------- */

func (s *Service) CreateCategory(ctx context.Context, req CategoryRequest) (*domain.Category, error) {
	var c domain.Category
	if err := copier.Copy(&c, &req); err != nil {
		return nil, fmt.Errorf("copy category request: %w", err)
	}
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return nil, ErrCategoryNameBlank
	}

	if err := s.categories.Create(ctx, &c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, req CategoryRequest) (*domain.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrCategoryNameBlank
	}

	c := &domain.Category{ID: id, Name: name, Description: req.Description}
	if err := s.categories.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("update category %d: %w", id, err)
	}

	updated, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload category %d: %w", id, err)
	}
	return updated, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	err := s.categories.Delete(ctx, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrCategoryNotFound
	case errors.Is(err, repository.ErrInUse):
		return ErrCategoryInUse
	default:
		return fmt.Errorf("delete category %d: %w", id, err)
	}
}

func nilIfBlank(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
