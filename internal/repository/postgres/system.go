package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"devicepool-backend/internal/domain"
	"devicepool-backend/internal/repository"
)

const systemConfigColumns = `id, is_test_mode, test_message, test_start_date, test_end_date, test_type, created_at, updated_at`

type systemConfigRepository struct {
	db *sql.DB
}

func NewSystemConfigRepository(db *sql.DB) repository.SystemConfigRepository {
	return &systemConfigRepository{db: db}
}

func scanSystemConfig(row interface{ Scan(...any) error }) (*domain.SystemConfig, error) {
	c := &domain.SystemConfig{}
	err := row.Scan(&c.ID, &c.IsTestMode, &c.TestMessage, &c.TestStartDate, &c.TestEndDate, &c.TestType, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns the singleton row, creating the default (test mode off) on
// first access.
func (r *systemConfigRepository) Get(ctx context.Context) (*domain.SystemConfig, error) {
	query := `SELECT ` + systemConfigColumns + ` FROM system_config WHERE id = $1`
	cfg, err := scanSystemConfig(r.db.QueryRowContext(ctx, query, domain.SystemConfigID))
	if errors.Is(err, sql.ErrNoRows) {
		return r.createDefault(ctx)
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (r *systemConfigRepository) createDefault(ctx context.Context) (*domain.SystemConfig, error) {
	query := `INSERT INTO system_config (id, is_test_mode, created_at, updated_at)
	          VALUES ($1, false, $2, $2)
	          ON CONFLICT (id) DO UPDATE SET id = system_config.id
	          RETURNING ` + systemConfigColumns
	return scanSystemConfig(r.db.QueryRowContext(ctx, query, domain.SystemConfigID, time.Now()))
}

func (r *systemConfigRepository) Save(ctx context.Context, cfg *domain.SystemConfig) error {
	query := `UPDATE system_config SET is_test_mode=$1, test_message=$2, test_start_date=$3, test_end_date=$4, test_type=$5, updated_at=$6
	          WHERE id=$7`
	now := time.Now()
	res, err := r.db.ExecContext(ctx, query, cfg.IsTestMode, cfg.TestMessage, cfg.TestStartDate, cfg.TestEndDate, cfg.TestType, now, domain.SystemConfigID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &domain.NotFoundError{Entity: "system config", ID: domain.SystemConfigID}
	}
	cfg.UpdatedAt = now
	return nil
}
