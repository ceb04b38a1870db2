package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/branchstock/backend/internal/domain/inventory"
	"github.com/branchstock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormLedgerEntryRepository implements LedgerEntryRepository using GORM.
// The ledger is append-only: this repository exposes no path that mutates a
// committed entry. Update and Delete fail with IMMUTABILITY_VIOLATION before
// reaching the database, and the entry model's GORM hooks reject any mutation
// that slips past through raw session use.
type GormLedgerEntryRepository struct {
	db *gorm.DB
}

// NewGormLedgerEntryRepository creates a new GormLedgerEntryRepository
func NewGormLedgerEntryRepository(db *gorm.DB) *GormLedgerEntryRepository {
	return &GormLedgerEntryRepository{db: db}
}

// Append persists a new ledger entry
func (r *GormLedgerEntryRepository) Append(ctx context.Context, entry *inventory.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// AppendAll persists multiple entries in order
func (r *GormLedgerEntryRepository) AppendAll(ctx context.Context, entries []*inventory.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(entries).Error
}

// FindByID finds an entry by its ID
func (r *GormLedgerEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.LedgerEntry, error) {
	var entry inventory.LedgerEntry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// Balance recomputes the signed sum of all entries for a branch-variant pair.
// in entries add, out entries subtract, adjustments carry their own sign.
func (r *GormLedgerEntryRepository) Balance(ctx context.Context, tenantID, branchID, variantID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Balance decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&inventory.LedgerEntry{}).
		Select(`COALESCE(SUM(CASE movement_type
			WHEN 'in' THEN quantity
			WHEN 'out' THEN -quantity
			WHEN 'adjustment' THEN quantity
			ELSE 0 END), 0) AS balance`).
		Where("tenant_id = ? AND branch_id = ? AND product_variant_id = ?", tenantID, branchID, variantID).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Balance, nil
}

// FindByVariant finds entries for a variant across branches, newest first
func (r *GormLedgerEntryRepository) FindByVariant(ctx context.Context, tenantID, variantID uuid.UUID, filter shared.Filter) ([]inventory.LedgerEntry, error) {
	var entries []inventory.LedgerEntry
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.LedgerEntry{}).
			Where("tenant_id = ? AND product_variant_id = ?", tenantID, variantID),
		filter,
	)

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByBranch finds entries for a branch, newest first
func (r *GormLedgerEntryRepository) FindByBranch(ctx context.Context, tenantID, branchID uuid.UUID, filter shared.Filter) ([]inventory.LedgerEntry, error) {
	var entries []inventory.LedgerEntry
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.LedgerEntry{}).
			Where("tenant_id = ? AND branch_id = ?", tenantID, branchID),
		filter,
	)

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByBatchNumber finds entries that touched a batch, newest first
func (r *GormLedgerEntryRepository) FindByBatchNumber(ctx context.Context, tenantID uuid.UUID, batchNumber string, filter shared.Filter) ([]inventory.LedgerEntry, error) {
	var entries []inventory.LedgerEntry
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.LedgerEntry{}).
			Where("tenant_id = ? AND batch_number = ?", tenantID, batchNumber),
		filter,
	)

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByDateRange finds entries within [start, end], newest first
func (r *GormLedgerEntryRepository) FindByDateRange(ctx context.Context, tenantID uuid.UUID, start, end time.Time, filter shared.Filter) ([]inventory.LedgerEntry, error) {
	var entries []inventory.LedgerEntry
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.LedgerEntry{}).
			Where("tenant_id = ? AND created_at >= ? AND created_at <= ?", tenantID, start, end),
		filter,
	)

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// CountForTenant counts entries matching the filter
func (r *GormLedgerEntryRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&inventory.LedgerEntry{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyCriteria(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Update always fails: committed entries are immutable
func (r *GormLedgerEntryRepository) Update(_ context.Context, _ *inventory.LedgerEntry) error {
	return shared.ErrImmutableLedger
}

// Delete always fails: committed entries are immutable
func (r *GormLedgerEntryRepository) Delete(_ context.Context, _ uuid.UUID) error {
	return shared.ErrImmutableLedger
}

// applyCriteria applies the filter criteria map. Callers that already
// constrain a column through their own WHERE clause remove that key from
// the map first.
func (r *GormLedgerEntryRepository) applyCriteria(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "branch_id":
			query = query.Where("branch_id = ?", value)
		case "product_variant_id":
			query = query.Where("product_variant_id = ?", value)
		case "movement_type":
			query = query.Where("movement_type = ?", value)
		case "batch_number":
			query = query.Where("batch_number = ?", value)
		case "reference_type":
			query = query.Where("reference_type = ?", value)
		case "reference_id":
			query = query.Where("reference_id = ?", value)
		case "start_date":
			query = query.Where("created_at >= ?", value)
		case "end_date":
			query = query.Where("created_at <= ?", value)
		}
	}
	return query
}

func (r *GormLedgerEntryRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyCriteria(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Ledger reads are newest first regardless of caller ordering hints
	return query.Order("created_at DESC")
}

// Ensure GormLedgerEntryRepository implements LedgerEntryRepository
var _ inventory.LedgerEntryRepository = (*GormLedgerEntryRepository)(nil)
