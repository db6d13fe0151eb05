package services

import (
	"context"

	"github.com/senyabanana/container-rental/internal/auth"
	"github.com/senyabanana/container-rental/internal/models"
	"github.com/senyabanana/container-rental/internal/repository"

	"github.com/google/uuid"
)

type RentalService struct {
	Store repository.Store
}

// NewRentalService создаёт новый экземпляр RentalService.
func NewRentalService(store repository.Store) *RentalService {
	return &RentalService{Store: store}
}

// ListRentals возвращает аренды клиента.
func (s *RentalService) ListRentals(ctx context.Context, scope auth.Scope, limit, offset int) ([]models.Rental, error) {
	customerID, err := scope.Filter()
	if err != nil {
		return nil, err
	}
	return s.Store.Rentals().FindMany(ctx, repository.RentalFilter{
		CustomerID: customerID,
		Page:       repository.Page{Limit: limit, Offset: offset},
	})
}

// GetRental возвращает аренду клиента.
func (s *RentalService) GetRental(ctx context.Context, scope auth.Scope, rentalID uuid.UUID) (*models.Rental, error) {
	customerID, err := scope.Filter()
	if err != nil {
		return nil, err
	}
	rental, err := s.Store.Rentals().FindFirst(ctx, repository.RentalFilter{ID: rentalID, CustomerID: customerID}, repository.OrderBy{})
	if err != nil {
		return nil, err
	}
	if rental == nil {
		return nil, models.NotFoundf("rental %s not found", rentalID)
	}
	return rental, nil
}
