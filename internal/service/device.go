package service

import (
	"context"
	"errors"

	"devicepool-backend/internal/domain"
	"devicepool-backend/internal/logger"
	"devicepool-backend/internal/repository"
)

type deviceService struct {
	deviceRepo repository.DeviceRepository
	rentalRepo repository.RentalRepository
	systemSvc  SystemService
}

func NewDeviceService(
	deviceRepo repository.DeviceRepository,
	rentalRepo repository.RentalRepository,
	systemSvc SystemService,
) DeviceService {
	return &deviceService{
		deviceRepo: deviceRepo,
		rentalRepo: rentalRepo,
		systemSvc:  systemSvc,
	}
}

func (s *deviceService) ListDevices(ctx context.Context) ([]domain.Device, error) {
	return s.deviceRepo.List(ctx)
}

func (s *deviceService) GetDevice(ctx context.Context, id int32) (*domain.Device, error) {
	return s.deviceRepo.GetByID(ctx, id)
}

func (s *deviceService) CreateDevice(ctx context.Context, device *domain.Device) (*domain.Device, error) {
	if device.DeviceNumber == "" {
		return nil, &domain.ValidationError{Field: "deviceNumber", Detail: "must not be empty"}
	}
	if device.Platform != domain.PlatformAndroid && device.Platform != domain.PlatformIOS {
		return nil, &domain.ValidationError{Field: "platform", Detail: "must be Android or iOS"}
	}
	if err := s.deviceRepo.Create(ctx, device); err != nil {
		return nil, err
	}
	return device, nil
}

func (s *deviceService) UpdateDevice(ctx context.Context, id int32, params UpdateDeviceParams) (*domain.Device, error) {
	device, err := s.deviceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.DeviceNumber != nil {
		device.DeviceNumber = *params.DeviceNumber
	}
	if params.ProductName != nil {
		device.ProductName = *params.ProductName
	}
	if params.ModelName != nil {
		device.ModelName = *params.ModelName
	}
	if params.OSVersion != nil {
		device.OSVersion = *params.OSVersion
	}
	if params.IsRootedOrJailbroken != nil {
		device.IsRootedOrJailbroken = *params.IsRootedOrJailbroken
	}
	if params.Platform != nil {
		if *params.Platform != domain.PlatformAndroid && *params.Platform != domain.PlatformIOS {
			return nil, &domain.ValidationError{Field: "platform", Detail: "must be Android or iOS"}
		}
		device.Platform = *params.Platform
	}

	if err := s.deviceRepo.Update(ctx, device); err != nil {
		return nil, err
	}
	return device, nil
}

func (s *deviceService) DeleteDevice(ctx context.Context, id int32) error {
	return s.deviceRepo.Delete(ctx, id)
}

// RentDevices claims each device in order and records the rental. The batch
// is deliberately not all-or-nothing: a Conflict or NotFound aborts the loop
// and is returned, while devices claimed earlier in the same call stay
// rented. Callers retry or return those individually.
func (s *deviceService) RentDevices(ctx context.Context, deviceIDs []int32, renterName string) ([]domain.Device, error) {
	if renterName == "" {
		return nil, &domain.ValidationError{Field: "renterName", Detail: "must not be empty"}
	}
	if len(deviceIDs) == 0 {
		return nil, &domain.ValidationError{Field: "deviceIds", Detail: "must not be empty"}
	}

	status, err := s.systemSvc.GetStatus(ctx)
	if err != nil {
		return nil, err
	}
	if !status.CanRentDevices {
		return nil, &domain.ConflictError{Entity: "device", Reason: "rentals are disabled during the test period"}
	}

	var rented []domain.Device
	for _, id := range deviceIDs {
		device, err := s.deviceRepo.TryClaim(ctx, id, renterName)
		if err != nil {
			return nil, err
		}
		rental := &domain.Rental{
			RenterName: renterName,
			DeviceID:   device.ID,
		}
		if err := s.rentalRepo.Create(ctx, rental); err != nil {
			return nil, err
		}
		rented = append(rented, *device)
	}
	return rented, nil
}

func (s *deviceService) ReturnDevice(ctx context.Context, deviceID int32, renterName string) (*domain.Device, error) {
	device, err := s.deviceRepo.Release(ctx, deviceID, renterName)
	if err != nil {
		return nil, err
	}

	if _, err := s.rentalRepo.CloseActive(ctx, deviceID, renterName); err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			// The device was released but the ledger had no active entry.
			// The device stays available; surface the fault distinctly.
			logger.Error("active rental missing for released device",
				"device_id", deviceID, "renter", renterName)
			return nil, &domain.ConsistencyError{
				Op:       "return",
				DeviceID: deviceID,
				Detail:   "device released but no active rental record found",
			}
		}
		return nil, err
	}
	return device, nil
}

// ReturnMultipleDevices repeats ReturnDevice per id with the same
// fail-fast, no-rollback batch semantics as the rent path.
func (s *deviceService) ReturnMultipleDevices(ctx context.Context, deviceIDs []int32, renterName string) ([]domain.Device, error) {
	if len(deviceIDs) == 0 {
		return nil, &domain.ValidationError{Field: "deviceIds", Detail: "must not be empty"}
	}

	var returned []domain.Device
	for _, id := range deviceIDs {
		device, err := s.ReturnDevice(ctx, id, renterName)
		if err != nil {
			return nil, err
		}
		returned = append(returned, *device)
	}
	return returned, nil
}

func (s *deviceService) ListAvailable(ctx context.Context) ([]domain.Device, error) {
	return s.deviceRepo.ListByStatus(ctx, domain.DeviceStatusAvailable)
}

func (s *deviceService) ListRented(ctx context.Context) ([]domain.Device, error) {
	return s.deviceRepo.ListByStatus(ctx, domain.DeviceStatusRented)
}

func (s *deviceService) ListRentedBy(ctx context.Context, renterName string) ([]domain.Device, error) {
	return s.deviceRepo.ListRentedBy(ctx, renterName)
}
