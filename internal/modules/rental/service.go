package rental

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"equiprent/internal/domain"
	"equiprent/internal/metrics"
	"equiprent/internal/repository"

	"go.uber.org/zap"
)

type Service struct {
	store Store
	pub   Publisher
	log   *zap.Logger
	now   func() time.Time
}

func NewService(store Store, pub Publisher, log *zap.Logger) *Service {
	if pub == nil {
		pub = nopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, pub: pub, log: log, now: time.Now}
}

// Apply books one unit of the equipment for the renter.
func (s *Service) Apply(ctx context.Context, req ApplyRequest) (*domain.Rental, error) {
	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, ErrInvalidDates
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return nil, ErrInvalidDates
	}
	if end.Before(start) {
		return nil, ErrInvalidDates
	}

	r := &domain.Rental{
		EquipmentID: req.EquipmentID,
		RenterName:  strings.TrimSpace(req.RenterName),
		RenterClass: strings.TrimSpace(req.RenterClass),
		StudentID:   strings.TrimSpace(req.StudentID),
		Email:       strings.TrimSpace(req.Email),
		Phone:       strings.TrimSpace(req.Phone),
		StartDate:   start,
		EndDate:     end,
	}
	if r.RenterName == "" || r.StudentID == "" || r.Phone == "" {
		return nil, ErrInvalidRequest
	}

	if err := s.store.Apply(ctx, r); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrEquipmentNotFound
		case errors.Is(err, repository.ErrOutOfStock):
			metrics.IncOutOfStock()
			return nil, ErrOutOfStock
		}
		s.log.Error("rental apply failed", zap.Int64("equipment_id", req.EquipmentID), zap.Error(err))
		return nil, fmt.Errorf("apply rental: %w", err)
	}

	metrics.IncRentalApplied()
	s.log.Info("rental created",
		zap.Int64("rental_id", r.ID),
		zap.Int64("equipment_id", r.EquipmentID),
	)
	s.pub.Publish(domain.NewRentalEvent(domain.EventRentalCreated, r, s.now()))
	return r, nil
}

// Lookup finds the renter's open rental by name and phone.
func (s *Service) Lookup(ctx context.Context, q LookupQuery) (*LookupResult, error) {
	name, phone := strings.TrimSpace(q.Name), strings.TrimSpace(q.Phone)
	if name == "" || phone == "" {
		return nil, ErrInvalidRequest
	}

	r, err := s.store.FindActive(ctx, name, phone)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup rental: %w", err)
	}

	res := toLookupResult(r)
	return &res, nil
}

// Return closes the rental and puts the unit back on the shelf.
func (s *Service) Return(ctx context.Context, id int64) (*domain.Rental, error) {
	if id <= 0 {
		return nil, ErrInvalidRequest
	}

	r, err := s.store.Return(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, repository.ErrAlreadyReturned):
			return nil, ErrAlreadyReturned
		}
		s.log.Error("rental return failed", zap.Int64("rental_id", id), zap.Error(err))
		return nil, fmt.Errorf("return rental %d: %w", id, err)
	}

	metrics.IncRentalReturned()
	s.log.Info("rental returned", zap.Int64("rental_id", r.ID), zap.Int64("equipment_id", r.EquipmentID))
	s.pub.Publish(domain.NewRentalEvent(domain.EventRentalReturned, r, s.now()))
	return r, nil
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]domain.Rental, error) {
	if q.Status != "" {
		if _, err := domain.ParseRentalStatus(q.Status); err != nil {
			return nil, ErrInvalidStatus
		}
	}

	items, err := s.store.List(ctx, repository.RentalFilter{
		Status:     q.Status,
		CategoryID: q.CategoryID,
		Query:      q.Q,
	})
	if err != nil {
		return nil, fmt.Errorf("list rentals: %w", err)
	}
	return items, nil
}

// ListForEquipment returns the rental history of one equipment item.
func (s *Service) ListForEquipment(ctx context.Context, equipmentID int64, q ListQuery) ([]domain.Rental, error) {
	if equipmentID <= 0 {
		return nil, ErrInvalidRequest
	}
	if q.Status != "" {
		if _, err := domain.ParseRentalStatus(q.Status); err != nil {
			return nil, ErrInvalidStatus
		}
	}

	items, err := s.store.List(ctx, repository.RentalFilter{
		EquipmentID: &equipmentID,
		Status:      q.Status,
		Query:       q.Q,
	})
	if err != nil {
		return nil, fmt.Errorf("list rentals for equipment %d: %w", equipmentID, err)
	}
	return items, nil
}

// UpdateStatus sets any of the rental statuses. Moving into returned restocks the unit once;
// moving back out of returned takes it again.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) (*domain.Rental, error) {
	st, err := domain.ParseRentalStatus(strings.TrimSpace(status))
	if err != nil {
		return nil, ErrInvalidStatus
	}

	r, prev, err := s.store.UpdateStatus(ctx, id, st)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, repository.ErrOutOfStock):
			return nil, ErrOutOfStock
		}
		s.log.Error("rental status update failed", zap.Int64("rental_id", id), zap.String("status", string(st)), zap.Error(err))
		return nil, fmt.Errorf("update rental %d status: %w", id, err)
	}

	metrics.IncStatusChange(string(st))
	s.log.Info("rental status changed",
		zap.Int64("rental_id", id),
		zap.String("from", string(prev)),
		zap.String("to", string(st)),
	)
	s.pub.Publish(domain.NewRentalEvent(domain.EventRentalStatusChanged, r, s.now()))
	return r, nil
}

// SweepOverdue marks rented/approved rentals whose end date is before today as overdue.
func (s *Service) SweepOverdue(ctx context.Context) (int, error) {
	now := s.now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	marked, err := s.store.MarkOverdue(ctx, startOfDay)
	if err != nil {
		return 0, fmt.Errorf("mark overdue: %w", err)
	}

	metrics.AddOverdue(len(marked))
	for i := range marked {
		s.pub.Publish(domain.NewRentalEvent(domain.EventRentalOverdue, &marked[i], now))
	}
	return len(marked), nil
}
