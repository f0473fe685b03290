package postgres

import (
	"context"
	"database/sql"

	"devicepool-backend/internal/domain"
	"devicepool-backend/internal/logger"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS devices (
		id SERIAL PRIMARY KEY,
		device_number VARCHAR NOT NULL UNIQUE,
		product_name VARCHAR NOT NULL,
		model_name VARCHAR,
		os_version VARCHAR NOT NULL,
		is_rooted_or_jailbroken BOOLEAN NOT NULL DEFAULT false,
		platform VARCHAR NOT NULL DEFAULT 'Android',
		status VARCHAR NOT NULL DEFAULT 'available',
		current_renter VARCHAR,
		created_at TIMESTAMP NOT NULL DEFAULT now(),
		updated_at TIMESTAMP NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS rentals (
		id SERIAL PRIMARY KEY,
		renter_name VARCHAR NOT NULL,
		device_id INTEGER NOT NULL REFERENCES devices(id),
		rented_at TIMESTAMP NOT NULL DEFAULT now(),
		returned_at TIMESTAMP,
		status VARCHAR NOT NULL DEFAULT 'active'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_rentals_device_status ON rentals (device_id, status)`,
	`CREATE TABLE IF NOT EXISTS system_config (
		id INTEGER PRIMARY KEY,
		is_test_mode BOOLEAN NOT NULL DEFAULT false,
		test_message VARCHAR,
		test_start_date TIMESTAMP,
		test_end_date TIMESTAMP,
		test_type VARCHAR,
		created_at TIMESTAMP NOT NULL DEFAULT now(),
		updated_at TIMESTAMP NOT NULL DEFAULT now()
	)`,
}

// EnsureSchema creates the three tables on first start.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

type seedDevice struct {
	number   string
	product  string
	model    string
	os       string
	rooted   bool
	platform domain.Platform
}

var seedDevices = []seedDevice{
	{"8", "Galaxy Note 9", "SM-N960N", "10.0", false, domain.PlatformAndroid},
	{"11", "Galaxy Tab S6 Lite", "SM-P615N", "12.0", false, domain.PlatformAndroid},
	{"14", "Xperia Ace 2", "SO-41B", "13.0", false, domain.PlatformAndroid},
	{"21", "Galaxy S24", "SM-S921N", "15.0", false, domain.PlatformAndroid},
	{"24", "Galaxy S23", "SM-S911N", "14.0", true, domain.PlatformAndroid},
	{"26", "Pixel 8", "G9BQD", "16.0", true, domain.PlatformAndroid},
	{"I-2", "iPhone XR", "A2105", "14.6.0", true, domain.PlatformIOS},
	{"I-3", "iPhone 7", "A1778", "14.7.1", true, domain.PlatformIOS},
	{"I-5", "iPhone 12 mini", "A2399", "15.1.0", true, domain.PlatformIOS},
	{"I-14", "iPhone 14 Plus", "A2886", "18.5.0", false, domain.PlatformIOS},
}

// SeedDevices loads the initial device pool once, skipping when any devices
// already exist.
func SeedDevices(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT count(*) FROM devices`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		logger.Debug("Devices already present, skipping seed", "count", count)
		return nil
	}

	query := `INSERT INTO devices (device_number, product_name, model_name, os_version, is_rooted_or_jailbroken, platform)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	for _, d := range seedDevices {
		if _, err := db.ExecContext(ctx, query, d.number, d.product, d.model, d.os, d.rooted, d.platform); err != nil {
			return err
		}
	}
	logger.Info("Seeded initial device pool", "count", len(seedDevices))
	return nil
}
