package repository

import (
	"context"
	"errors"

	"equiprent/internal/database"
	"equiprent/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// List возвращает все категории вместе с оборудованием.
func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	err := r.db.WithContext(ctx).
		Preload("Equipment", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Order("name ASC").
		Find(&out).Error
	return out, err
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	var c domain.Category
	err := r.db.WithContext(ctx).
		Preload("Equipment", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Category{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
}

// Update renames the category; a nil Description keeps the stored one.
func (r *CategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	cols := map[string]interface{}{"name": c.Name}
	if c.Description != nil {
		cols["description"] = *c.Description
	}
	res := r.db.WithContext(ctx).Model(&domain.Category{}).
		Where("id = ?", c.ID).
		Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет категорию, если на неё не ссылается оборудование.
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c domain.Category
		if err := tx.First(&c, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var refs int64
		if err := tx.Model(&domain.Equipment{}).Where("category_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return ErrInUse
		}

		if err := tx.Delete(&domain.Category{}, id).Error; err != nil {
			if database.IsForeignKeyViolation(err) {
				return ErrInUse
			}
			return err
		}
		return nil
	})
}

func (r *CategoryRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Category{}).Count(&n).Error
	return n, err
}
