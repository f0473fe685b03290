package service

import (
	"context"

	"devicepool-backend/internal/domain"
	"devicepool-backend/internal/repository"
)

type rentalService struct {
	rentalRepo repository.RentalRepository
}

func NewRentalService(rentalRepo repository.RentalRepository) RentalService {
	return &rentalService{rentalRepo: rentalRepo}
}

func (s *rentalService) ListRentals(ctx context.Context) ([]domain.Rental, error) {
	return s.rentalRepo.List(ctx)
}

func (s *rentalService) ListActiveRentals(ctx context.Context) ([]domain.Rental, error) {
	return s.rentalRepo.ListByStatus(ctx, domain.RentalStatusActive)
}

func (s *rentalService) ListReturnedRentals(ctx context.Context) ([]domain.Rental, error) {
	return s.rentalRepo.ListByStatus(ctx, domain.RentalStatusReturned)
}

func (s *rentalService) GetRental(ctx context.Context, id int32) (*domain.Rental, error) {
	return s.rentalRepo.GetByID(ctx, id)
}

func (s *rentalService) ListByRenter(ctx context.Context, renterName string) ([]domain.Rental, error) {
	return s.rentalRepo.ListByRenter(ctx, renterName)
}

func (s *rentalService) ListActiveByRenter(ctx context.Context, renterName string) ([]domain.Rental, error) {
	return s.rentalRepo.ListActiveByRenter(ctx, renterName)
}

func (s *rentalService) ListByDevice(ctx context.Context, deviceID int32) ([]domain.Rental, error) {
	return s.rentalRepo.ListByDevice(ctx, deviceID)
}

func (s *rentalService) GetActiveByDevice(ctx context.Context, deviceID int32) (*domain.Rental, error) {
	return s.rentalRepo.GetActiveByDevice(ctx, deviceID)
}

func (s *rentalService) DeleteRental(ctx context.Context, id int32) error {
	return s.rentalRepo.Delete(ctx, id)
}

func (s *rentalService) GetStats(ctx context.Context) (*domain.RentalStats, error) {
	return s.rentalRepo.Stats(ctx)
}

func (s *rentalService) GetPlatformStats(ctx context.Context) (*domain.PlatformRentalStats, error) {
	return s.rentalRepo.PlatformStats(ctx)
}
