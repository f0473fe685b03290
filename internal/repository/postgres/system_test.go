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

var systemCols = []string{"id", "is_test_mode", "test_message", "test_start_date", "test_end_date", "test_type", "created_at", "updated_at"}

func TestSystemConfigRepository_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewSystemConfigRepository(db)
	ctx := context.Background()

	t.Run("ExistingRow", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery("SELECT (.+) FROM system_config WHERE id = \\$1").
			WithArgs(domain.SystemConfigID).
			WillReturnRows(sqlmock.NewRows(systemCols).
				AddRow(1, true, "maintenance", nil, nil, "regression", now, now))

		cfg, err := repo.Get(ctx)
		assert.NoError(t, err)
		assert.True(t, cfg.IsTestMode)
		assert.Equal(t, "maintenance", *cfg.TestMessage)
	})

	t.Run("CreatesDefaultOnFirstAccess", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery("SELECT (.+) FROM system_config WHERE id = \\$1").
			WithArgs(domain.SystemConfigID).
			WillReturnRows(sqlmock.NewRows(systemCols))
		mock.ExpectQuery("INSERT INTO system_config").
			WithArgs(domain.SystemConfigID, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(systemCols).
				AddRow(1, false, nil, nil, nil, nil, now, now))

		cfg, err := repo.Get(ctx)
		assert.NoError(t, err)
		assert.False(t, cfg.IsTestMode)
		assert.Equal(t, domain.SystemConfigID, cfg.ID)
	})
}

func TestSystemConfigRepository_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewSystemConfigRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		msg := "load test"
		cfg := &domain.SystemConfig{ID: 1, IsTestMode: true, TestMessage: &msg}

		mock.ExpectExec("UPDATE system_config SET").
			WithArgs(true, &msg, nil, nil, nil, sqlmock.AnyArg(), domain.SystemConfigID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Save(ctx, cfg))
	})

	t.Run("MissingRow", func(t *testing.T) {
		cfg := &domain.SystemConfig{ID: 1}

		mock.ExpectExec("UPDATE system_config SET").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Save(ctx, cfg)
		var notFound *domain.NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})
}
