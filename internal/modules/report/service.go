package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"equiprent/internal/domain"
	"equiprent/internal/repository"
)

type Service struct {
	rentals    RentalReader
	equipment  EquipmentCounter
	categories CategoryCounter
	now        func() time.Time
}

func NewService(rentals RentalReader, equipment EquipmentCounter, categories CategoryCounter) *Service {
	return &Service{rentals: rentals, equipment: equipment, categories: categories, now: time.Now}
}

// ExportRentals writes the filtered rentals as an xlsx workbook to w.
func (s *Service) ExportRentals(ctx context.Context, q ExportQuery, w io.Writer) (int, error) {
	if q.Status != "" {
		if _, err := domain.ParseRentalStatus(q.Status); err != nil {
			return 0, ErrInvalidStatus
		}
	}

	rentals, err := s.rentals.List(ctx, repository.RentalFilter{
		Status:     q.Status,
		CategoryID: q.CategoryID,
		Query:      q.Q,
	})
	if err != nil {
		return 0, fmt.Errorf("load rentals: %w", err)
	}
	counts, err := s.rentals.CountByStatus(ctx)
	if err != nil {
		return 0, fmt.Errorf("count rentals: %w", err)
	}

	f, err := buildWorkbook(rentals, counts, s.now())
	if err != nil {
		return 0, fmt.Errorf("build workbook: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return 0, fmt.Errorf("write workbook: %w", err)
	}
	return len(rentals), nil
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	eq, err := s.equipment.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("equipment counts: %w", err)
	}
	cats, err := s.categories.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("category count: %w", err)
	}
	byStatus, err := s.rentals.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("rental counts: %w", err)
	}

	st := &Stats{
		Equipment: EquipmentStats{
			Total:     eq.Total,
			Public:    eq.Public,
			Units:     eq.Units,
			Available: eq.Free,
		},
		Categories: cats,
		Rentals:    byStatus,
	}
	for status, n := range byStatus {
		r := domain.Rental{Status: status}
		if r.IsOut() {
			st.Open += n
		}
	}
	return st, nil
}

// ExportFileName is the download name for an export made at t.
func ExportFileName(t time.Time) string {
	return fmt.Sprintf("rentals_%s.xlsx", t.Format("20060102_1504"))
}
