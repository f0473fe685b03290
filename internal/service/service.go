package service

import (
	"context"

	"devicepool-backend/internal/domain"
)

// UpdateDeviceParams carries partial device edits; nil fields are left alone.
type UpdateDeviceParams struct {
	DeviceNumber         *string
	ProductName          *string
	ModelName            *string
	OSVersion            *string
	IsRootedOrJailbroken *bool
	Platform             *domain.Platform
}

// UpdateSystemConfigParams mirrors the admin config form. Nil optional
// fields clear the stored value.
type UpdateSystemConfigParams struct {
	IsTestMode    bool
	TestMessage   *string
	TestStartDate *string // RFC 3339
	TestEndDate   *string // RFC 3339
	TestType      *string
}

type DeviceService interface {
	ListDevices(ctx context.Context) ([]domain.Device, error)
	GetDevice(ctx context.Context, id int32) (*domain.Device, error)
	CreateDevice(ctx context.Context, device *domain.Device) (*domain.Device, error)
	UpdateDevice(ctx context.Context, id int32, params UpdateDeviceParams) (*domain.Device, error)
	DeleteDevice(ctx context.Context, id int32) error

	// RentDevices claims devices in order, fail-fast: the first Conflict or
	// NotFound aborts the batch but already-claimed devices stay rented.
	RentDevices(ctx context.Context, deviceIDs []int32, renterName string) ([]domain.Device, error)
	ReturnDevice(ctx context.Context, deviceID int32, renterName string) (*domain.Device, error)
	ReturnMultipleDevices(ctx context.Context, deviceIDs []int32, renterName string) ([]domain.Device, error)

	ListAvailable(ctx context.Context) ([]domain.Device, error)
	ListRented(ctx context.Context) ([]domain.Device, error)
	ListRentedBy(ctx context.Context, renterName string) ([]domain.Device, error)
}

type RentalService interface {
	ListRentals(ctx context.Context) ([]domain.Rental, error)
	ListActiveRentals(ctx context.Context) ([]domain.Rental, error)
	ListReturnedRentals(ctx context.Context) ([]domain.Rental, error)
	GetRental(ctx context.Context, id int32) (*domain.Rental, error)
	ListByRenter(ctx context.Context, renterName string) ([]domain.Rental, error)
	ListActiveByRenter(ctx context.Context, renterName string) ([]domain.Rental, error)
	ListByDevice(ctx context.Context, deviceID int32) ([]domain.Rental, error)
	GetActiveByDevice(ctx context.Context, deviceID int32) (*domain.Rental, error)
	DeleteRental(ctx context.Context, id int32) error
	GetStats(ctx context.Context) (*domain.RentalStats, error)
	GetPlatformStats(ctx context.Context) (*domain.PlatformRentalStats, error)
}

type SystemService interface {
	GetStatus(ctx context.Context) (*domain.SystemStatus, error)
	GetConfig(ctx context.Context) (*domain.SystemConfig, error)
	// UpdateConfig persists the new configuration and reports whether a
	// change event was broadcast.
	UpdateConfig(ctx context.Context, params UpdateSystemConfigParams) (*domain.SystemConfig, bool, error)
	ToggleTestMode(ctx context.Context) (*domain.SystemConfig, bool, error)

	Subscribe(ctx context.Context) (*Subscription, error)
	ActiveSubscriberCount() int
	// SyncEffectiveMode re-derives the effective test mode and broadcasts a
	// change event when a configured window opened or closed since the last
	// broadcast. Driven by the scheduler.
	SyncEffectiveMode(ctx context.Context) (bool, error)
	Close()
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	VerifyQAPassword(password string) error
}

type EmailService interface {
	SendTestModeChangeNotice(ctx context.Context, status *domain.SystemStatus) error
}
