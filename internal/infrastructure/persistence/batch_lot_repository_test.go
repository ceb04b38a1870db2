package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/branchstock/backend/internal/domain/inventory"
	"github.com/branchstock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockBatchLotRepository creates a GormBatchLotRepository with a mocked SQL connection
func newMockBatchLotRepository(t *testing.T) (*GormBatchLotRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormBatchLotRepository(gormDB), mock, mockDB
}

func batchLotColumns() []string {
	return []string{
		"id", "tenant_id", "branch_id", "product_variant_id",
		"batch_number", "quantity_received", "quantity_remaining",
		"unit_cost", "status",
	}
}

func TestGormBatchLotRepository_FindAllocatable(t *testing.T) {
	t.Run("lists active batches in receipt order", func(t *testing.T) {
		repo, mock, mockDB := newMockBatchLotRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		branchID := uuid.New()
		variantID := uuid.New()

		rows := sqlmock.NewRows(batchLotColumns()).
			AddRow(uuid.New(), tenantID, branchID, variantID, "B1", "10", "10", "2", "active").
			AddRow(uuid.New(), tenantID, branchID, variantID, "B2", "5", "5", "3", "active")

		mock.ExpectQuery(`SELECT \* FROM "batch_lots" WHERE .*quantity_remaining > 0.*expiry_date IS NULL OR expiry_date >= .*ORDER BY created_at ASC`).
			WillReturnRows(rows)

		batches, err := repo.FindAllocatable(context.Background(), tenantID, branchID, variantID)

		assert.NoError(t, err)
		require.Len(t, batches, 2)
		assert.Equal(t, "B1", batches[0].BatchNumber)
		assert.Equal(t, "B2", batches[1].BatchNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty result is not an error", func(t *testing.T) {
		repo, mock, mockDB := newMockBatchLotRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "batch_lots"`).
			WillReturnRows(sqlmock.NewRows(batchLotColumns()))

		batches, err := repo.FindAllocatable(context.Background(), uuid.New(), uuid.New(), uuid.New())

		assert.NoError(t, err)
		assert.Empty(t, batches)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBatchLotRepository_FindByIDsForUpdate(t *testing.T) {
	t.Run("locks all requested batches", func(t *testing.T) {
		repo, mock, mockDB := newMockBatchLotRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		id1 := uuid.New()
		id2 := uuid.New()

		rows := sqlmock.NewRows(batchLotColumns()).
			AddRow(id1, tenantID, uuid.New(), uuid.New(), "B1", "10", "10", "2", "active").
			AddRow(id2, tenantID, uuid.New(), uuid.New(), "B2", "5", "5", "3", "active")

		mock.ExpectQuery(`SELECT \* FROM "batch_lots" WHERE .*id IN .* FOR UPDATE`).
			WillReturnRows(rows)

		batches, err := repo.FindByIDsForUpdate(context.Background(), tenantID, []uuid.UUID{id1, id2})

		assert.NoError(t, err)
		assert.Len(t, batches, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("fails when a batch is missing", func(t *testing.T) {
		repo, mock, mockDB := newMockBatchLotRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		id1 := uuid.New()

		rows := sqlmock.NewRows(batchLotColumns()).
			AddRow(id1, tenantID, uuid.New(), uuid.New(), "B1", "10", "10", "2", "active")

		mock.ExpectQuery(`SELECT \* FROM "batch_lots" WHERE .*id IN .* FOR UPDATE`).
			WillReturnRows(rows)

		batches, err := repo.FindByIDsForUpdate(context.Background(), tenantID, []uuid.UUID{id1, uuid.New()})

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Nil(t, batches)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no-op for empty id list", func(t *testing.T) {
		repo, mock, mockDB := newMockBatchLotRepository(t)
		defer mockDB.Close()

		batches, err := repo.FindByIDsForUpdate(context.Background(), uuid.New(), nil)

		assert.NoError(t, err)
		assert.Empty(t, batches)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBatchLotRepository_FindByBatchNumber(t *testing.T) {
	t.Run("finds by business key", func(t *testing.T) {
		repo, mock, mockDB := newMockBatchLotRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		branchID := uuid.New()
		variantID := uuid.New()

		rows := sqlmock.NewRows(batchLotColumns()).
			AddRow(uuid.New(), tenantID, branchID, variantID, "B-2026-001", "10", "8", "2", "active")

		mock.ExpectQuery(`SELECT \* FROM "batch_lots" WHERE .*batch_number = \$4`).
			WillReturnRows(rows)

		batch, err := repo.FindByBatchNumber(context.Background(), tenantID, branchID, variantID, "B-2026-001")

		assert.NoError(t, err)
		require.NotNil(t, batch)
		assert.Equal(t, "B-2026-001", batch.BatchNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for unknown key", func(t *testing.T) {
		repo, mock, mockDB := newMockBatchLotRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "batch_lots"`).
			WillReturnError(gorm.ErrRecordNotFound)

		batch, err := repo.FindByBatchNumber(context.Background(), uuid.New(), uuid.New(), uuid.New(), "MISSING")

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Nil(t, batch)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBatchLotRepository_FindExpiringSoon(t *testing.T) {
	t.Run("bounds expiry between now and the window end", func(t *testing.T) {
		repo, mock, mockDB := newMockBatchLotRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		expiry := time.Now().Add(10 * 24 * time.Hour)

		rows := sqlmock.NewRows(append(batchLotColumns(), "expiry_date")).
			AddRow(uuid.New(), tenantID, uuid.New(), uuid.New(), "SOON", "10", "10", "1", "active", expiry)

		mock.ExpectQuery(`SELECT \* FROM "batch_lots" WHERE .*expiry_date IS NOT NULL AND expiry_date >= \$2 AND expiry_date <= \$3.*ORDER BY expiry_date ASC`).
			WillReturnRows(rows)

		batches, err := repo.FindExpiringSoon(context.Background(), tenantID, 30*24*time.Hour, shared.DefaultFilter())

		assert.NoError(t, err)
		require.Len(t, batches, 1)
		assert.Equal(t, "SOON", batches[0].BatchNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBatchLotRepository_Save(t *testing.T) {
	t.Run("updates an existing batch", func(t *testing.T) {
		repo, mock, mockDB := newMockBatchLotRepository(t)
		defer mockDB.Close()

		batch, err := inventory.NewBatchLot(
			uuid.New(), uuid.New(), uuid.New(),
			"B1", "", decimal.NewFromInt(10), decimal.NewFromInt(2), nil, nil,
		)
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE "batch_lots" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Save(context.Background(), batch)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBatchLotRepository_Delete(t *testing.T) {
	t.Run("returns not found when nothing matched", func(t *testing.T) {
		repo, mock, mockDB := newMockBatchLotRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "batch_lots" SET "deleted_at"=`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), uuid.New(), uuid.New())

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
