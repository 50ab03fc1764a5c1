package rental

import (
	"context"
	"time"

	"equiprent/internal/domain"
	"equiprent/internal/repository"
)

// Store is the persistence side of the rental workflow.
type Store interface {
	Apply(ctx context.Context, r *domain.Rental) error
	FindActive(ctx context.Context, renterName, phone string) (*domain.Rental, error)
	Return(ctx context.Context, id int64) (*domain.Rental, error)
	UpdateStatus(ctx context.Context, id int64, status domain.RentalStatus) (*domain.Rental, domain.RentalStatus, error)
	MarkOverdue(ctx context.Context, dueBefore time.Time) ([]domain.Rental, error)
	List(ctx context.Context, f repository.RentalFilter) ([]domain.Rental, error)
}

// Publisher receives rental events for the admin live feed.
type Publisher interface {
	Publish(ev domain.RentalEvent)
}

type nopPublisher struct{}

func (nopPublisher) Publish(domain.RentalEvent) {}
