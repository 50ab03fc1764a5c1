package repository

import (
	"context"
	"errors"
	"time"

	"equiprent/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RentalRepository struct {
	db *gorm.DB
}

func NewRentalRepository(db *gorm.DB) *RentalRepository {
	return &RentalRepository{db: db}
}

// Apply создаёт заявку и списывает одну единицу оборудования в одной транзакции.
func (r *RentalRepository) Apply(ctx context.Context, rental *domain.Rental) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var eq domain.Equipment
		if err := lockForUpdate(tx).First(&eq, rental.EquipmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !eq.InStock() {
			return ErrOutOfStock
		}

		rental.Status = domain.RentalRented
		if err := tx.Omit(clause.Associations).Create(rental).Error; err != nil {
			return err
		}

		res := tx.Model(&domain.Equipment{}).
			Where("id = ? AND available_count > 0", eq.ID).
			UpdateColumn("available_count", gorm.Expr("available_count - 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrOutOfStock
		}

		eq.AvailableCount--
		rental.Equipment = &eq
		return nil
	})
}

// FindActive ищет самую раннюю выданную заявку по имени и телефону арендатора.
func (r *RentalRepository) FindActive(ctx context.Context, renterName, phone string) (*domain.Rental, error) {
	var out domain.Rental
	err := r.db.WithContext(ctx).
		Preload("Equipment").
		Where("renter_name = ? AND phone = ? AND status = ?", renterName, phone, domain.RentalRented).
		Order("id ASC").
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Return закрывает заявку и возвращает единицу на склад.
func (r *RentalRepository) Return(ctx context.Context, id int64) (*domain.Rental, error) {
	var out domain.Rental
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&out, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if out.Status == domain.RentalReturned {
			return ErrAlreadyReturned
		}

		if err := setStatus(tx, out.ID, domain.RentalReturned); err != nil {
			return err
		}
		if err := restock(tx, out.EquipmentID); err != nil {
			return err
		}

		return tx.Preload("Equipment.Category").First(&out, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStatus меняет статус заявки. Переход в returned возвращает единицу на склад,
// выход из returned снова её списывает (ErrOutOfStock, если свободных нет).
// Возвращает обновлённую заявку и предыдущий статус.
func (r *RentalRepository) UpdateStatus(ctx context.Context, id int64, status domain.RentalStatus) (*domain.Rental, domain.RentalStatus, error) {
	var (
		out  domain.Rental
		prev domain.RentalStatus
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&out, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		prev = out.Status

		if err := setStatus(tx, out.ID, status); err != nil {
			return err
		}
		switch {
		case status == domain.RentalReturned && prev != domain.RentalReturned:
			if err := restock(tx, out.EquipmentID); err != nil {
				return err
			}
		case prev == domain.RentalReturned && status != domain.RentalReturned:
			if err := takeUnit(tx, out.EquipmentID); err != nil {
				return err
			}
		}

		return tx.Preload("Equipment.Category").First(&out, id).Error
	})
	if err != nil {
		return nil, "", err
	}
	return &out, prev, nil
}

// MarkOverdue переводит просроченные выдачи в overdue и возвращает их.
func (r *RentalRepository) MarkOverdue(ctx context.Context, dueBefore time.Time) ([]domain.Rental, error) {
	var out []domain.Rental
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lent := []domain.RentalStatus{domain.RentalRented, domain.RentalApproved}
		if err := lockForUpdate(tx).
			Where("status IN ? AND end_date < ?", lent, dueBefore).
			Order("id ASC").
			Find(&out).Error; err != nil {
			return err
		}
		if len(out) == 0 {
			return nil
		}

		ids := make([]int64, 0, len(out))
		for i := range out {
			ids = append(ids, out[i].ID)
		}
		if err := tx.Model(&domain.Rental{}).
			Where("id IN ? AND status IN ?", ids, lent).
			Update("status", domain.RentalOverdue).Error; err != nil {
			return err
		}

		out = out[:0]
		return tx.Where("id IN ? AND status = ?", ids, domain.RentalOverdue).
			Order("id ASC").
			Find(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// List возвращает заявки с оборудованием и категорией, новые сверху.
func (r *RentalRepository) List(ctx context.Context, f RentalFilter) ([]domain.Rental, error) {
	q := r.db.WithContext(ctx).
		Model(&domain.Rental{}).
		Select("rentals.*").
		Joins("JOIN equipment ON equipment.id = rentals.equipment_id").
		Preload("Equipment.Category")

	if f.EquipmentID != nil {
		q = q.Where("rentals.equipment_id = ?", *f.EquipmentID)
	}
	if f.CategoryID != nil {
		q = q.Where("equipment.category_id = ?", *f.CategoryID)
	}
	if f.Status != "" {
		q = q.Where("rentals.status = ?", f.Status)
	}
	if f.Query != "" {
		p := likePattern(f.Query)
		q = q.Where(
			"LOWER(rentals.renter_name) LIKE ?"+likeEscape+
				" OR LOWER(rentals.student_id) LIKE ?"+likeEscape+
				" OR LOWER(rentals.phone) LIKE ?"+likeEscape+
				" OR LOWER(equipment.name) LIKE ?"+likeEscape,
			p, p, p, p,
		)
	}

	var out []domain.Rental
	err := q.Order("rentals.created_at DESC").Order("rentals.id DESC").Find(&out).Error
	return out, err
}

// CountByStatus returns the number of rentals in each status; missing statuses are zero.
func (r *RentalRepository) CountByStatus(ctx context.Context) (map[domain.RentalStatus]int64, error) {
	var rows []struct {
		Status domain.RentalStatus
		N      int64
	}
	err := r.db.WithContext(ctx).Model(&domain.Rental{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[domain.RentalStatus]int64, len(domain.RentalStatuses))
	for _, st := range domain.RentalStatuses {
		out[st] = 0
	}
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}

func setStatus(tx *gorm.DB, id int64, status domain.RentalStatus) error {
	return tx.Model(&domain.Rental{}).Where("id = ?", id).Update("status", status).Error
}

func restock(tx *gorm.DB, equipmentID int64) error {
	return tx.Model(&domain.Equipment{}).
		Where("id = ?", equipmentID).
		UpdateColumn("available_count", gorm.Expr("available_count + 1")).Error
}

func takeUnit(tx *gorm.DB, equipmentID int64) error {
	res := tx.Model(&domain.Equipment{}).
		Where("id = ? AND available_count > 0", equipmentID).
		UpdateColumn("available_count", gorm.Expr("available_count - 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOutOfStock
	}
	return nil
}
