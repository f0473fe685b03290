package service_test

import (
	"context"
	"sync"

	"devicepool-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

type MockDeviceRepo struct {
	mock.Mock
}

func (m *MockDeviceRepo) Create(ctx context.Context, device *domain.Device) error {
	args := m.Called(ctx, device)
	return args.Error(0)
}

func (m *MockDeviceRepo) GetByID(ctx context.Context, id int32) (*domain.Device, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Device), args.Error(1)
}

func (m *MockDeviceRepo) Update(ctx context.Context, device *domain.Device) error {
	args := m.Called(ctx, device)
	return args.Error(0)
}

func (m *MockDeviceRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDeviceRepo) List(ctx context.Context) ([]domain.Device, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Device), args.Error(1)
}

func (m *MockDeviceRepo) ListByStatus(ctx context.Context, status domain.DeviceStatus) ([]domain.Device, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Device), args.Error(1)
}

func (m *MockDeviceRepo) ListRentedBy(ctx context.Context, renterName string) ([]domain.Device, error) {
	args := m.Called(ctx, renterName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Device), args.Error(1)
}

func (m *MockDeviceRepo) TryClaim(ctx context.Context, id int32, renterName string) (*domain.Device, error) {
	args := m.Called(ctx, id, renterName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Device), args.Error(1)
}

func (m *MockDeviceRepo) Release(ctx context.Context, id int32, expectedRenter string) (*domain.Device, error) {
	args := m.Called(ctx, id, expectedRenter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Device), args.Error(1)
}

type MockRentalRepo struct {
	mock.Mock
}

func (m *MockRentalRepo) Create(ctx context.Context, rental *domain.Rental) error {
	args := m.Called(ctx, rental)
	return args.Error(0)
}

func (m *MockRentalRepo) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalRepo) CloseActive(ctx context.Context, deviceID int32, renterName string) (*domain.Rental, error) {
	args := m.Called(ctx, deviceID, renterName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRentalRepo) List(ctx context.Context) ([]domain.Rental, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Rental), args.Error(1)
}

func (m *MockRentalRepo) ListByStatus(ctx context.Context, status domain.RentalStatus) ([]domain.Rental, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Rental), args.Error(1)
}

func (m *MockRentalRepo) ListByRenter(ctx context.Context, renterName string) ([]domain.Rental, error) {
	args := m.Called(ctx, renterName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Rental), args.Error(1)
}

func (m *MockRentalRepo) ListActiveByRenter(ctx context.Context, renterName string) ([]domain.Rental, error) {
	args := m.Called(ctx, renterName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Rental), args.Error(1)
}

func (m *MockRentalRepo) ListByDevice(ctx context.Context, deviceID int32) ([]domain.Rental, error) {
	args := m.Called(ctx, deviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Rental), args.Error(1)
}

func (m *MockRentalRepo) GetActiveByDevice(ctx context.Context, deviceID int32) (*domain.Rental, error) {
	args := m.Called(ctx, deviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalRepo) Stats(ctx context.Context) (*domain.RentalStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalStats), args.Error(1)
}

func (m *MockRentalRepo) PlatformStats(ctx context.Context) (*domain.PlatformRentalStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PlatformRentalStats), args.Error(1)
}

// fakeConfigRepo is an in-memory SystemConfigRepository. The broadcaster
// tests need real persistence semantics rather than call expectations.
type fakeConfigRepo struct {
	mu  sync.Mutex
	cfg domain.SystemConfig
}

func newFakeConfigRepo() *fakeConfigRepo {
	return &fakeConfigRepo{cfg: domain.SystemConfig{ID: domain.SystemConfigID}}
}

func (f *fakeConfigRepo) Get(ctx context.Context) (*domain.SystemConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cfg := f.cfg
	return &cfg, nil
}

func (f *fakeConfigRepo) Save(ctx context.Context, cfg *domain.SystemConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cfg = *cfg
	return nil
}
