package inventory

import (
	"context"
	"time"

	"github.com/branchstock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockLevelRepository defines persistence for the StockLevel aggregate
type StockLevelRepository interface {
	// FindByID finds a stock level by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockLevel, error)

	// FindByBranchAndVariant finds the level for a branch-variant combination
	FindByBranchAndVariant(ctx context.Context, tenantID, branchID, variantID uuid.UUID) (*StockLevel, error)

	// FindByBranchAndVariantForUpdate is FindByBranchAndVariant with a
	// pessimistic row lock. Must be called inside a transaction; the lock is
	// held until that transaction ends so concurrent movements on the same
	// branch-variant pair serialize.
	FindByBranchAndVariantForUpdate(ctx context.Context, tenantID, branchID, variantID uuid.UUID) (*StockLevel, error)

	// GetOrCreate returns the existing level or creates a zero-initialized
	// one, surviving creation races via an upsert.
	GetOrCreate(ctx context.Context, tenantID, branchID, variantID uuid.UUID) (*StockLevel, error)

	// FindAllForTenant lists stock levels for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]StockLevel, error)

	// FindByBranch lists stock levels in a branch
	FindByBranch(ctx context.Context, tenantID, branchID uuid.UUID, filter shared.Filter) ([]StockLevel, error)

	// FindLowStock lists levels at or below their reorder level
	FindLowStock(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]StockLevel, error)

	// Save creates or updates a stock level
	Save(ctx context.Context, level *StockLevel) error

	// SaveWithLock saves with an optimistic version check
	SaveWithLock(ctx context.Context, level *StockLevel) error

	// Delete soft-deletes a stock level. Levels referenced by ledger entries
	// are never hard-deleted.
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// CountForTenant counts stock levels matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}

// LedgerEntryRepository defines persistence for the append-only stock ledger.
// Entries are write-once; the only mutation path is Append. Update and Delete
// exist to give misuse a well-defined failure mode: they always return
// IMMUTABILITY_VIOLATION without touching storage.
type LedgerEntryRepository interface {
	// Append persists a new ledger entry
	Append(ctx context.Context, entry *LedgerEntry) error

	// AppendAll persists multiple entries in order
	AppendAll(ctx context.Context, entries []*LedgerEntry) error

	// FindByID finds an entry by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*LedgerEntry, error)

	// Balance recomputes the signed sum of all entries for a branch-variant
	// pair: sum(in) - sum(out) + sum(adjustment). This is the ledger's
	// independent check against the cached aggregate.
	Balance(ctx context.Context, tenantID, branchID, variantID uuid.UUID) (decimal.Decimal, error)

	// FindByVariant lists entries for a variant across branches, newest first
	FindByVariant(ctx context.Context, tenantID, variantID uuid.UUID, filter shared.Filter) ([]LedgerEntry, error)

	// FindByBranch lists entries for a branch, newest first
	FindByBranch(ctx context.Context, tenantID, branchID uuid.UUID, filter shared.Filter) ([]LedgerEntry, error)

	// FindByBatchNumber lists entries that touched a batch, newest first
	FindByBatchNumber(ctx context.Context, tenantID uuid.UUID, batchNumber string, filter shared.Filter) ([]LedgerEntry, error)

	// FindByDateRange lists entries within [start, end], newest first
	FindByDateRange(ctx context.Context, tenantID uuid.UUID, start, end time.Time, filter shared.Filter) ([]LedgerEntry, error)

	// CountForTenant counts entries matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// Update always fails with IMMUTABILITY_VIOLATION
	Update(ctx context.Context, entry *LedgerEntry) error

	// Delete always fails with IMMUTABILITY_VIOLATION
	Delete(ctx context.Context, id uuid.UUID) error
}

// BatchLotRepository defines persistence for batch lots
type BatchLotRepository interface {
	// FindByID finds a batch by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*BatchLot, error)

	// FindByIDsForUpdate loads batches by ID with pessimistic row locks.
	// Must be called inside a transaction.
	FindByIDsForUpdate(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]BatchLot, error)

	// FindAllocatable lists active, non-expired batches with remaining stock
	// for a branch-variant pair, ordered by receipt time ascending.
	FindAllocatable(ctx context.Context, tenantID, branchID, variantID uuid.UUID) ([]BatchLot, error)

	// FindByBatchNumber finds a batch by its business key
	FindByBatchNumber(ctx context.Context, tenantID, branchID, variantID uuid.UUID, batchNumber string) (*BatchLot, error)

	// FindExpiringSoon lists batches with stock expiring within the window
	FindExpiringSoon(ctx context.Context, tenantID uuid.UUID, within time.Duration, filter shared.Filter) ([]BatchLot, error)

	// FindExpired lists expired batches that still hold stock
	FindExpired(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]BatchLot, error)

	// Save creates or updates a batch lot
	Save(ctx context.Context, batch *BatchLot) error

	// SaveAll persists multiple batch lots
	SaveAll(ctx context.Context, batches []*BatchLot) error

	// Delete soft-deletes a batch lot
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
