package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"devicepool-backend/internal/domain"
	"devicepool-backend/internal/repository"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

const deviceColumns = `id, device_number, product_name, COALESCE(model_name, ''), os_version, is_rooted_or_jailbroken, platform, status, current_renter, created_at, updated_at`

type deviceRepository struct {
	db *sql.DB
}

func NewDeviceRepository(db *sql.DB) repository.DeviceRepository {
	return &deviceRepository{db: db}
}

func scanDevice(row interface{ Scan(...any) error }) (*domain.Device, error) {
	d := &domain.Device{}
	err := row.Scan(&d.ID, &d.DeviceNumber, &d.ProductName, &d.ModelName, &d.OSVersion,
		&d.IsRootedOrJailbroken, &d.Platform, &d.Status, &d.CurrentRenter, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *deviceRepository) Create(ctx context.Context, d *domain.Device) error {
	query := `INSERT INTO devices (device_number, product_name, model_name, os_version, is_rooted_or_jailbroken, platform, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query, d.DeviceNumber, d.ProductName, d.ModelName, d.OSVersion,
		d.IsRootedOrJailbroken, d.Platform, domain.DeviceStatusAvailable, now, now).Scan(&d.ID)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return &domain.ConflictError{Entity: "device", Reason: "device number " + d.DeviceNumber + " already exists"}
	}
	if err != nil {
		return err
	}
	d.Status = domain.DeviceStatusAvailable
	d.CreatedAt = now
	d.UpdatedAt = now
	return nil
}

func (r *deviceRepository) GetByID(ctx context.Context, id int32) (*domain.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices WHERE id = $1`
	d, err := scanDevice(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "device", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *deviceRepository) Update(ctx context.Context, d *domain.Device) error {
	query := `UPDATE devices SET device_number=$1, product_name=$2, model_name=$3, os_version=$4,
	          is_rooted_or_jailbroken=$5, platform=$6, updated_at=$7 WHERE id=$8`
	res, err := r.db.ExecContext(ctx, query, d.DeviceNumber, d.ProductName, d.ModelName, d.OSVersion,
		d.IsRootedOrJailbroken, d.Platform, time.Now(), d.ID)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return &domain.ConflictError{Entity: "device", ID: d.ID, Reason: "device number " + d.DeviceNumber + " already exists"}
	}
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &domain.NotFoundError{Entity: "device", ID: d.ID}
	}
	return nil
}

func (r *deviceRepository) Delete(ctx context.Context, id int32) error {
	// Conditional delete keeps the rented-device guard atomic.
	res, err := r.db.ExecContext(ctx, `DELETE FROM devices WHERE id = $1 AND status <> $2`, id, domain.DeviceStatusRented)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		var status domain.DeviceStatus
		err := r.db.QueryRowContext(ctx, `SELECT status FROM devices WHERE id = $1`, id).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.NotFoundError{Entity: "device", ID: id}
		}
		if err != nil {
			return err
		}
		return &domain.ConflictError{Entity: "device", ID: id, Reason: "cannot delete a rented device"}
	}
	return nil
}

func (r *deviceRepository) List(ctx context.Context) ([]domain.Device, error) {
	// Available devices first, then ascending by id.
	query := `SELECT ` + deviceColumns + ` FROM devices ORDER BY status ASC, id ASC`
	return r.queryDevices(ctx, query)
}

func (r *deviceRepository) ListByStatus(ctx context.Context, status domain.DeviceStatus) ([]domain.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices WHERE status = $1 ORDER BY id ASC`
	return r.queryDevices(ctx, query, status)
}

func (r *deviceRepository) ListRentedBy(ctx context.Context, renterName string) ([]domain.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices WHERE status = $1 AND current_renter = $2 ORDER BY id ASC`
	return r.queryDevices(ctx, query, domain.DeviceStatusRented, renterName)
}

func (r *deviceRepository) queryDevices(ctx context.Context, query string, args ...any) ([]domain.Device, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []domain.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, *d)
	}
	return devices, rows.Err()
}

// TryClaim is a single conditional update so two concurrent claims on the
// same device resolve to exactly one winner.
func (r *deviceRepository) TryClaim(ctx context.Context, id int32, renterName string) (*domain.Device, error) {
	query := `UPDATE devices SET status = $3, current_renter = $2, updated_at = NOW()
	          WHERE id = $1 AND status = $4
	          RETURNING ` + deviceColumns
	d, err := scanDevice(r.db.QueryRowContext(ctx, query, id, renterName, domain.DeviceStatusRented, domain.DeviceStatusAvailable))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.claimFailure(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// claimFailure disambiguates a missed conditional update: either the device
// does not exist or someone else holds it.
func (r *deviceRepository) claimFailure(ctx context.Context, id int32) error {
	var number string
	err := r.db.QueryRowContext(ctx, `SELECT device_number FROM devices WHERE id = $1`, id).Scan(&number)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{Entity: "device", ID: id}
	}
	if err != nil {
		return err
	}
	return &domain.ConflictError{Entity: "device", ID: id, Reason: "device " + number + " is already rented"}
}

func (r *deviceRepository) Release(ctx context.Context, id int32, expectedRenter string) (*domain.Device, error) {
	query := `UPDATE devices SET status = $3, current_renter = NULL, updated_at = NOW()
	          WHERE id = $1 AND status = $4 AND current_renter = $2
	          RETURNING ` + deviceColumns
	d, err := scanDevice(r.db.QueryRowContext(ctx, query, id, expectedRenter, domain.DeviceStatusAvailable, domain.DeviceStatusRented))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.releaseFailure(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *deviceRepository) releaseFailure(ctx context.Context, id int32) error {
	var status domain.DeviceStatus
	err := r.db.QueryRowContext(ctx, `SELECT status FROM devices WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{Entity: "device", ID: id}
	}
	if err != nil {
		return err
	}
	if status != domain.DeviceStatusRented {
		return &domain.ConflictError{Entity: "device", ID: id, Reason: "device is not currently rented"}
	}
	return &domain.ConflictError{Entity: "device", ID: id, Reason: "renter name does not match"}
}
