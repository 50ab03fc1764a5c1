package repository

import (
	"context"
	"errors"
	"strings"

	"equiprent/internal/database"
	"equiprent/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EquipmentRepository struct {
	db *gorm.DB
}

func NewEquipmentRepository(db *gorm.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

// List возвращает оборудование с категорией, новые сверху.
func (r *EquipmentRepository) List(ctx context.Context, f EquipmentFilter) ([]domain.Equipment, error) {
	q := r.db.WithContext(ctx).Model(&domain.Equipment{}).Preload("Category")

	if f.PublicOnly {
		q = q.Where("is_public = ?", true)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Query != "" {
		p := likePattern(f.Query)
		q = q.Where("LOWER(name) LIKE ?"+likeEscape+" OR LOWER(description) LIKE ?"+likeEscape, p, p)
	}

	var out []domain.Equipment
	err := q.Order("created_at DESC").Order("id DESC").Find(&out).Error
	return out, err
}

func (r *EquipmentRepository) GetByID(ctx context.Context, id int64) (*domain.Equipment, error) {
	var e domain.Equipment
	err := r.db.WithContext(ctx).Preload("Category").First(&e, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EquipmentRepository) Create(ctx context.Context, e *domain.Equipment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(e).Error
}

// EquipmentPatch lists the columns an update touches; nil fields keep their stored value.
// An empty Image or Caution clears the column.
type EquipmentPatch struct {
	Name           *string
	Description    *string
	Image          *string
	Status         *domain.EquipmentStatus
	TotalCount     *int
	AvailableCount *int
	SerialNumber   *string
	CategoryID     *int64
	ClearCategory  bool
	IsPublic       *bool
	Caution        *string
}

func (p EquipmentPatch) columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Image != nil {
		cols["image"] = nullIfBlank(*p.Image)
	}
	if p.Status != nil {
		cols["status"] = *p.Status
	}
	if p.TotalCount != nil {
		cols["total_count"] = *p.TotalCount
	}
	if p.AvailableCount != nil {
		cols["available_count"] = *p.AvailableCount
	}
	if p.SerialNumber != nil {
		cols["serial_number"] = *p.SerialNumber
	}
	switch {
	case p.ClearCategory:
		cols["category_id"] = nil
	case p.CategoryID != nil:
		cols["category_id"] = *p.CategoryID
	}
	if p.IsPublic != nil {
		cols["is_public"] = *p.IsPublic
	}
	if p.Caution != nil {
		cols["caution"] = nullIfBlank(*p.Caution)
	}
	return cols
}

// Patch пишет только переданные поля. Строка блокируется, проверка
// 0 <= available_count <= total_count идёт по актуальным значениям в той же транзакции.
func (r *EquipmentRepository) Patch(ctx context.Context, id int64, p EquipmentPatch) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur domain.Equipment
		if err := lockForUpdate(tx).Select("id", "total_count", "available_count").First(&cur, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		total, available := cur.TotalCount, cur.AvailableCount
		if p.TotalCount != nil {
			total = *p.TotalCount
		}
		if p.AvailableCount != nil {
			available = *p.AvailableCount
		}
		if total < 0 || available < 0 || available > total {
			return ErrInvalidCounts
		}

		cols := p.columns()
		if len(cols) == 0 {
			return nil
		}
		return tx.Model(&domain.Equipment{}).Where("id = ?", id).Updates(cols).Error
	})
}

func nullIfBlank(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func (r *EquipmentRepository) SetVisibility(ctx context.Context, id int64, public bool) error {
	res := r.db.WithContext(ctx).Model(&domain.Equipment{}).
		Where("id = ?", id).
		Update("is_public", public)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет оборудование без заявок; при наличии заявок возвращает ErrInUse.
func (r *EquipmentRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e domain.Equipment
		if err := tx.Select("id").First(&e, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var refs int64
		if err := tx.Model(&domain.Rental{}).Where("equipment_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return ErrInUse
		}

		if err := tx.Delete(&domain.Equipment{}, id).Error; err != nil {
			if database.IsForeignKeyViolation(err) {
				return ErrInUse
			}
			return err
		}
		return nil
	})
}

type EquipmentCounts struct {
	Total  int64 `json:"total"`
	Public int64 `json:"public"`
	Units  int64 `json:"units"`
	Free   int64 `json:"free"`
}

func (r *EquipmentRepository) Counts(ctx context.Context) (EquipmentCounts, error) {
	var c EquipmentCounts
	db := r.db.WithContext(ctx).Model(&domain.Equipment{})

	if err := db.Session(&gorm.Session{}).Count(&c.Total).Error; err != nil {
		return c, err
	}
	if err := db.Session(&gorm.Session{}).Where("is_public = ?", true).Count(&c.Public).Error; err != nil {
		return c, err
	}

	var sums struct {
		Units int64
		Free  int64
	}
	err := db.Session(&gorm.Session{}).
		Select("COALESCE(SUM(total_count), 0) AS units, COALESCE(SUM(available_count), 0) AS free").
		Scan(&sums).Error
	c.Units, c.Free = sums.Units, sums.Free
	return c, err
}
