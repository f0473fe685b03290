package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"devicepool-backend/internal/domain"
	"devicepool-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestSystemService(t *testing.T, testMode bool) service.SystemService {
	t.Helper()
	repo := newFakeConfigRepo()
	repo.cfg.IsTestMode = testMode
	svc := service.NewSystemService(repo, nil, time.Hour, 16)
	t.Cleanup(svc.Close)
	return svc
}

func TestDeviceService_RentDevices(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		deviceRepo := new(MockDeviceRepo)
		rentalRepo := new(MockRentalRepo)
		svc := service.NewDeviceService(deviceRepo, rentalRepo, newTestSystemService(t, false))

		renter := "alice"
		for _, id := range []int32{1, 2} {
			deviceRepo.On("TryClaim", ctx, id, renter).
				Return(&domain.Device{ID: id, Status: domain.DeviceStatusRented, CurrentRenter: &renter}, nil)
		}
		rentalRepo.On("Create", ctx, mock.AnythingOfType("*domain.Rental")).Return(nil)

		devices, err := svc.RentDevices(ctx, []int32{1, 2}, renter)
		assert.NoError(t, err)
		assert.Len(t, devices, 2)
		rentalRepo.AssertNumberOfCalls(t, "Create", 2)
	})

	t.Run("ConflictAbortsButKeepsEarlierClaims", func(t *testing.T) {
		deviceRepo := new(MockDeviceRepo)
		rentalRepo := new(MockRentalRepo)
		svc := service.NewDeviceService(deviceRepo, rentalRepo, newTestSystemService(t, false))

		renter := "alice"
		deviceRepo.On("TryClaim", ctx, int32(1), renter).
			Return(&domain.Device{ID: 1, Status: domain.DeviceStatusRented, CurrentRenter: &renter}, nil)
		deviceRepo.On("TryClaim", ctx, int32(2), renter).
			Return(nil, &domain.ConflictError{Entity: "device", ID: 2, Reason: "device 11 is already rented"})
		rentalRepo.On("Create", ctx, mock.AnythingOfType("*domain.Rental")).Return(nil)

		devices, err := svc.RentDevices(ctx, []int32{1, 2, 3}, renter)
		var conflict *domain.ConflictError
		assert.ErrorAs(t, err, &conflict)
		assert.Nil(t, devices)

		// Device 1 stays rented with its ledger entry; device 3 is never touched.
		rentalRepo.AssertNumberOfCalls(t, "Create", 1)
		deviceRepo.AssertNotCalled(t, "TryClaim", ctx, int32(3), renter)
	})

	t.Run("BlockedDuringTestPeriod", func(t *testing.T) {
		deviceRepo := new(MockDeviceRepo)
		rentalRepo := new(MockRentalRepo)
		svc := service.NewDeviceService(deviceRepo, rentalRepo, newTestSystemService(t, true))

		_, err := svc.RentDevices(ctx, []int32{1}, "alice")
		var conflict *domain.ConflictError
		assert.ErrorAs(t, err, &conflict)
		deviceRepo.AssertNotCalled(t, "TryClaim", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("EmptyRenterName", func(t *testing.T) {
		svc := service.NewDeviceService(new(MockDeviceRepo), new(MockRentalRepo), newTestSystemService(t, false))

		_, err := svc.RentDevices(ctx, []int32{1}, "")
		var validation *domain.ValidationError
		assert.ErrorAs(t, err, &validation)
	})

	t.Run("EmptyDeviceList", func(t *testing.T) {
		svc := service.NewDeviceService(new(MockDeviceRepo), new(MockRentalRepo), newTestSystemService(t, false))

		_, err := svc.RentDevices(ctx, nil, "alice")
		var validation *domain.ValidationError
		assert.ErrorAs(t, err, &validation)
	})
}

func TestDeviceService_ReturnDevice(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		deviceRepo := new(MockDeviceRepo)
		rentalRepo := new(MockRentalRepo)
		svc := service.NewDeviceService(deviceRepo, rentalRepo, newTestSystemService(t, false))

		deviceRepo.On("Release", ctx, int32(1), "alice").
			Return(&domain.Device{ID: 1, Status: domain.DeviceStatusAvailable}, nil)
		rentalRepo.On("CloseActive", ctx, int32(1), "alice").
			Return(&domain.Rental{ID: 7, Status: domain.RentalStatusReturned}, nil)

		device, err := svc.ReturnDevice(ctx, 1, "alice")
		assert.NoError(t, err)
		assert.Equal(t, domain.DeviceStatusAvailable, device.Status)
	})

	t.Run("RenterMismatch", func(t *testing.T) {
		deviceRepo := new(MockDeviceRepo)
		rentalRepo := new(MockRentalRepo)
		svc := service.NewDeviceService(deviceRepo, rentalRepo, newTestSystemService(t, false))

		deviceRepo.On("Release", ctx, int32(1), "mallory").
			Return(nil, &domain.ConflictError{Entity: "device", ID: 1, Reason: "renter name does not match"})

		_, err := svc.ReturnDevice(ctx, 1, "mallory")
		var conflict *domain.ConflictError
		assert.ErrorAs(t, err, &conflict)
		rentalRepo.AssertNotCalled(t, "CloseActive", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("MissingLedgerEntryIsConsistencyFault", func(t *testing.T) {
		deviceRepo := new(MockDeviceRepo)
		rentalRepo := new(MockRentalRepo)
		svc := service.NewDeviceService(deviceRepo, rentalRepo, newTestSystemService(t, false))

		deviceRepo.On("Release", ctx, int32(1), "alice").
			Return(&domain.Device{ID: 1, Status: domain.DeviceStatusAvailable}, nil)
		rentalRepo.On("CloseActive", ctx, int32(1), "alice").
			Return(nil, &domain.NotFoundError{Entity: "active rental for device", ID: 1})

		_, err := svc.ReturnDevice(ctx, 1, "alice")
		var fault *domain.ConsistencyError
		assert.ErrorAs(t, err, &fault)
		assert.Equal(t, int32(1), fault.DeviceID)
	})
}

func TestDeviceService_ReturnMultipleDevices(t *testing.T) {
	ctx := context.Background()

	t.Run("FailFastKeepsEarlierReturns", func(t *testing.T) {
		deviceRepo := new(MockDeviceRepo)
		rentalRepo := new(MockRentalRepo)
		svc := service.NewDeviceService(deviceRepo, rentalRepo, newTestSystemService(t, false))

		deviceRepo.On("Release", ctx, int32(1), "alice").
			Return(&domain.Device{ID: 1, Status: domain.DeviceStatusAvailable}, nil)
		rentalRepo.On("CloseActive", ctx, int32(1), "alice").
			Return(&domain.Rental{ID: 7, Status: domain.RentalStatusReturned}, nil)
		deviceRepo.On("Release", ctx, int32(2), "alice").
			Return(nil, &domain.NotFoundError{Entity: "device", ID: 2})

		devices, err := svc.ReturnMultipleDevices(ctx, []int32{1, 2, 3}, "alice")
		var notFound *domain.NotFoundError
		assert.ErrorAs(t, err, &notFound)
		assert.Nil(t, devices)
		deviceRepo.AssertNotCalled(t, "Release", ctx, int32(3), "alice")
	})
}

// raceDeviceRepo is a minimal in-memory device store with the same
// one-winner claim semantics as the SQL implementation.
type raceDeviceRepo struct {
	MockDeviceRepo
	mu     sync.Mutex
	renter *string
}

func (r *raceDeviceRepo) TryClaim(ctx context.Context, id int32, renterName string) (*domain.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.renter != nil {
		return nil, &domain.ConflictError{Entity: "device", ID: id, Reason: "device is already rented"}
	}
	name := renterName
	r.renter = &name
	return &domain.Device{ID: id, Status: domain.DeviceStatusRented, CurrentRenter: &name}, nil
}

func TestDeviceService_ConcurrentClaims(t *testing.T) {
	ctx := context.Background()
	deviceRepo := &raceDeviceRepo{}
	rentalRepo := new(MockRentalRepo)
	rentalRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Rental")).Return(nil)
	svc := service.NewDeviceService(deviceRepo, rentalRepo, newTestSystemService(t, false))

	renters := []string{"alice", "bob", "carol", "dave"}
	results := make(chan error, len(renters))
	var wg sync.WaitGroup
	for _, renter := range renters {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			_, err := svc.RentDevices(ctx, []int32{1}, name)
			results <- err
		}(renter)
	}
	wg.Wait()
	close(results)

	wins, conflicts := 0, 0
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		var conflict *domain.ConflictError
		assert.ErrorAs(t, err, &conflict)
		conflicts++
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, len(renters)-1, conflicts)
	rentalRepo.AssertNumberOfCalls(t, "Create", 1)
}
