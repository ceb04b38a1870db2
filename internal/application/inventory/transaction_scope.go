package inventory

import (
	"context"

	"github.com/branchstock/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to inventory repositories.
// When a function is executed within a transaction scope, all repository operations
// will be part of the same database transaction and will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all inventory repositories within a transaction.
// All repositories returned share the same underlying database transaction.
//
// DDD Aggregate Boundary Notes:
//   - StockLevels: Repository for the StockLevel aggregate root. Cached quantity
//     changes go through this repository, guarded by the row lock taken via
//     FindByBranchAndVariantForUpdate.
//   - Ledger: Append-only repository for stock ledger entries. Every quantity
//     movement committed through StockLevels must append its matching entries
//     in the same transaction so the ledger stays the source of truth.
//   - Batches: Repository for batch lots. Lots are separate entities keyed to
//     the same branch-variant pair; allocation commits update them alongside
//     the aggregate.
type TransactionalRepositories interface {
	// StockLevels returns the stock level repository scoped to the current transaction
	StockLevels() inventory.StockLevelRepository
	// Ledger returns the ledger entry repository scoped to the current transaction
	Ledger() inventory.LedgerEntryRepository
	// Batches returns the batch lot repository scoped to the current transaction
	Batches() inventory.BatchLotRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	stockLevels inventory.StockLevelRepository
	ledger      inventory.LedgerEntryRepository
	batches     inventory.BatchLotRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	stockLevels inventory.StockLevelRepository,
	ledger inventory.LedgerEntryRepository,
	batches inventory.BatchLotRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		stockLevels: stockLevels,
		ledger:      ledger,
		batches:     batches,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// StockLevels returns the stock level repository.
func (s *NoOpTransactionScope) StockLevels() inventory.StockLevelRepository {
	return s.stockLevels
}

// Ledger returns the ledger entry repository.
func (s *NoOpTransactionScope) Ledger() inventory.LedgerEntryRepository {
	return s.ledger
}

// Batches returns the batch lot repository.
func (s *NoOpTransactionScope) Batches() inventory.BatchLotRepository {
	return s.batches
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
