package repository

import (
	"context"

	"devicepool-backend/internal/domain"
)

type DeviceRepository interface {
	Create(ctx context.Context, device *domain.Device) error
	GetByID(ctx context.Context, id int32) (*domain.Device, error)
	Update(ctx context.Context, device *domain.Device) error
	// Delete refuses to remove a rented device.
	Delete(ctx context.Context, id int32) error
	// List returns every device, available first, then ascending by id.
	List(ctx context.Context) ([]domain.Device, error)
	ListByStatus(ctx context.Context, status domain.DeviceStatus) ([]domain.Device, error)
	ListRentedBy(ctx context.Context, renterName string) ([]domain.Device, error)

	// TryClaim atomically moves an available device to rented for the given
	// renter. Exactly one of two concurrent claims on the same device
	// succeeds; the loser gets a ConflictError.
	TryClaim(ctx context.Context, id int32, renterName string) (*domain.Device, error)
	// Release atomically moves a device back to available, but only when it
	// is currently rented by expectedRenter.
	Release(ctx context.Context, id int32, expectedRenter string) (*domain.Device, error)
}

type RentalRepository interface {
	Create(ctx context.Context, rental *domain.Rental) error
	GetByID(ctx context.Context, id int32) (*domain.Rental, error)
	// CloseActive finds the unique active rental for the device+renter pair
	// and marks it returned. A NotFoundError here signals a consistency
	// fault to the caller, not a user error.
	CloseActive(ctx context.Context, deviceID int32, renterName string) (*domain.Rental, error)
	// Delete removes a rental record; active rentals cannot be deleted.
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context) ([]domain.Rental, error)
	ListByStatus(ctx context.Context, status domain.RentalStatus) ([]domain.Rental, error)
	ListByRenter(ctx context.Context, renterName string) ([]domain.Rental, error)
	ListActiveByRenter(ctx context.Context, renterName string) ([]domain.Rental, error)
	ListByDevice(ctx context.Context, deviceID int32) ([]domain.Rental, error)
	GetActiveByDevice(ctx context.Context, deviceID int32) (*domain.Rental, error)
	Stats(ctx context.Context) (*domain.RentalStats, error)
	PlatformStats(ctx context.Context) (*domain.PlatformRentalStats, error)
}

type SystemConfigRepository interface {
	// Get returns the singleton configuration row, creating the default row
	// on first access.
	Get(ctx context.Context) (*domain.SystemConfig, error)
	Save(ctx context.Context, cfg *domain.SystemConfig) error
}
