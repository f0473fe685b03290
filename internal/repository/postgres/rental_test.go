package postgres_test

import (
	"context"
	"testing"
	"time"

	"devicepool-backend/internal/domain"
	"devicepool-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

var rentalCols = []string{"id", "renter_name", "device_id", "rented_at", "returned_at", "status"}

func TestRentalRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewRentalRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rental := &domain.Rental{RenterName: "alice", DeviceID: 1}

		mock.ExpectQuery("INSERT INTO rentals").
			WithArgs("alice", int32(1), sqlmock.AnyArg(), domain.RentalStatusActive).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

		err := repo.Create(ctx, rental)
		assert.NoError(t, err)
		assert.Equal(t, int32(7), rental.ID)
		assert.Equal(t, domain.RentalStatusActive, rental.Status)
		assert.False(t, rental.RentedAt.IsZero())
	})
}

func TestRentalRepository_CloseActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewRentalRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		rows := sqlmock.NewRows(rentalCols).
			AddRow(7, "alice", 1, now.Add(-time.Hour), now, domain.RentalStatusReturned)

		mock.ExpectQuery("UPDATE rentals SET status").
			WithArgs(int32(1), "alice", sqlmock.AnyArg(), domain.RentalStatusReturned, domain.RentalStatusActive).
			WillReturnRows(rows)

		rental, err := repo.CloseActive(ctx, 1, "alice")
		assert.NoError(t, err)
		assert.Equal(t, domain.RentalStatusReturned, rental.Status)
		assert.NotNil(t, rental.ReturnedAt)
	})

	t.Run("NoActiveRental", func(t *testing.T) {
		mock.ExpectQuery("UPDATE rentals SET status").
			WithArgs(int32(1), "alice", sqlmock.AnyArg(), domain.RentalStatusReturned, domain.RentalStatusActive).
			WillReturnRows(sqlmock.NewRows(rentalCols))

		_, err := repo.CloseActive(ctx, 1, "alice")
		var notFound *domain.NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})
}

func TestRentalRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewRentalRepository(db)
	ctx := context.Background()

	t.Run("RefusesActive", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM rentals WHERE id = \\$1 AND status <> \\$2").
			WithArgs(int32(7), domain.RentalStatusActive).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT status FROM rentals WHERE id = \\$1").
			WithArgs(int32(7)).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(domain.RentalStatusActive))

		err := repo.Delete(ctx, 7)
		var conflict *domain.ConflictError
		assert.ErrorAs(t, err, &conflict)
	})

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM rentals WHERE id = \\$1 AND status <> \\$2").
			WithArgs(int32(8), domain.RentalStatusActive).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(ctx, 8))
	})
}

func TestRentalRepository_Stats(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewRentalRepository(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT count").
		WithArgs(domain.RentalStatusActive, domain.RentalStatusReturned).
		WillReturnRows(sqlmock.NewRows([]string{"total", "active", "returned", "renters"}).AddRow(10, 3, 7, 4))

	stats, err := repo.Stats(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int32(10), stats.TotalRentals)
	assert.Equal(t, int32(3), stats.ActiveRentals)
	assert.Equal(t, int32(7), stats.ReturnedRentals)
	assert.Equal(t, int32(4), stats.UniqueRenters)
}

func TestRentalRepository_PlatformStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewRentalRepository(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"platform", "active", "total"}).
		AddRow("Android", 2, 6).
		AddRow("iOS", 1, 4)

	mock.ExpectQuery("SELECT d.platform").
		WithArgs(domain.RentalStatusActive).
		WillReturnRows(rows)

	stats, err := repo.PlatformStats(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int32(2), stats.Android.Active)
	assert.Equal(t, int32(6), stats.Android.Total)
	assert.Equal(t, int32(1), stats.IOS.Active)
	assert.Equal(t, int32(4), stats.IOS.Total)
}
