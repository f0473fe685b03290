package postgres

import (
	"database/sql"

	"devicepool-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.DeviceRepository
	repository.RentalRepository
	repository.SystemConfigRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		DeviceRepository:       NewDeviceRepository(db),
		RentalRepository:       NewRentalRepository(db),
		SystemConfigRepository: NewSystemConfigRepository(db),
	}
}
