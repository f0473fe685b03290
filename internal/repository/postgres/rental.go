package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"devicepool-backend/internal/domain"
	"devicepool-backend/internal/repository"
)

const rentalColumns = `id, renter_name, device_id, rented_at, returned_at, status`

type rentalRepository struct {
	db *sql.DB
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

func scanRental(row interface{ Scan(...any) error }) (*domain.Rental, error) {
	rt := &domain.Rental{}
	err := row.Scan(&rt.ID, &rt.RenterName, &rt.DeviceID, &rt.RentedAt, &rt.ReturnedAt, &rt.Status)
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	query := `INSERT INTO rentals (renter_name, device_id, rented_at, status)
	          VALUES ($1, $2, $3, $4) RETURNING id`
	now := time.Now()
	if err := r.db.QueryRowContext(ctx, query, rt.RenterName, rt.DeviceID, now, domain.RentalStatusActive).Scan(&rt.ID); err != nil {
		return err
	}
	rt.RentedAt = now
	rt.Status = domain.RentalStatusActive
	return nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1`
	rt, err := scanRental(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "rental", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return rt, nil
}

// CloseActive flips the unique active rental for the device+renter pair to
// returned in one statement. No matching row means the catalog and ledger
// disagree; the caller surfaces that as a consistency fault.
func (r *rentalRepository) CloseActive(ctx context.Context, deviceID int32, renterName string) (*domain.Rental, error) {
	query := `UPDATE rentals SET status = $4, returned_at = $3
	          WHERE device_id = $1 AND renter_name = $2 AND status = $5
	          RETURNING ` + rentalColumns
	rt, err := scanRental(r.db.QueryRowContext(ctx, query, deviceID, renterName, time.Now(), domain.RentalStatusReturned, domain.RentalStatusActive))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "active rental for device", ID: deviceID}
	}
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *rentalRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rentals WHERE id = $1 AND status <> $2`, id, domain.RentalStatusActive)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		var status domain.RentalStatus
		err := r.db.QueryRowContext(ctx, `SELECT status FROM rentals WHERE id = $1`, id).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.NotFoundError{Entity: "rental", ID: id}
		}
		if err != nil {
			return err
		}
		return &domain.ConflictError{Entity: "rental", ID: id, Reason: "cannot delete an active rental"}
	}
	return nil
}

func (r *rentalRepository) List(ctx context.Context) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals ORDER BY rented_at DESC`
	return r.queryRentals(ctx, query)
}

func (r *rentalRepository) ListByStatus(ctx context.Context, status domain.RentalStatus) ([]domain.Rental, error) {
	order := "rented_at DESC"
	if status == domain.RentalStatusReturned {
		order = "returned_at DESC"
	}
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE status = $1 ORDER BY ` + order
	return r.queryRentals(ctx, query, status)
}

func (r *rentalRepository) ListByRenter(ctx context.Context, renterName string) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE renter_name = $1 ORDER BY rented_at DESC`
	return r.queryRentals(ctx, query, renterName)
}

func (r *rentalRepository) ListActiveByRenter(ctx context.Context, renterName string) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE renter_name = $1 AND status = $2 ORDER BY rented_at DESC`
	return r.queryRentals(ctx, query, renterName, domain.RentalStatusActive)
}

func (r *rentalRepository) ListByDevice(ctx context.Context, deviceID int32) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE device_id = $1 ORDER BY rented_at DESC`
	return r.queryRentals(ctx, query, deviceID)
}

func (r *rentalRepository) GetActiveByDevice(ctx context.Context, deviceID int32) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE device_id = $1 AND status = $2`
	rt, err := scanRental(r.db.QueryRowContext(ctx, query, deviceID, domain.RentalStatusActive))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "active rental for device", ID: deviceID}
	}
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *rentalRepository) Stats(ctx context.Context) (*domain.RentalStats, error) {
	stats := &domain.RentalStats{}
	query := `SELECT count(*),
	                 count(*) FILTER (WHERE status = $1),
	                 count(*) FILTER (WHERE status = $2),
	                 count(DISTINCT renter_name)
	          FROM rentals`
	err := r.db.QueryRowContext(ctx, query, domain.RentalStatusActive, domain.RentalStatusReturned).
		Scan(&stats.TotalRentals, &stats.ActiveRentals, &stats.ReturnedRentals, &stats.UniqueRenters)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *rentalRepository) PlatformStats(ctx context.Context) (*domain.PlatformRentalStats, error) {
	stats := &domain.PlatformRentalStats{}
	query := `SELECT d.platform,
	                 count(*) FILTER (WHERE r.status = $1),
	                 count(*)
	          FROM rentals r
	          JOIN devices d ON d.id = r.device_id
	          GROUP BY d.platform`
	rows, err := r.db.QueryContext(ctx, query, domain.RentalStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var platform domain.Platform
		var count domain.PlatformCount
		if err := rows.Scan(&platform, &count.Active, &count.Total); err != nil {
			return nil, err
		}
		switch platform {
		case domain.PlatformAndroid:
			stats.Android = count
		case domain.PlatformIOS:
			stats.IOS = count
		}
	}
	return stats, rows.Err()
}

func (r *rentalRepository) queryRentals(ctx context.Context, query string, args ...any) ([]domain.Rental, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *rt)
	}
	return rentals, rows.Err()
}
