package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/branchstock/backend/internal/domain/inventory"
	"github.com/branchstock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBatchLotRepository implements BatchLotRepository using GORM
type GormBatchLotRepository struct {
	db *gorm.DB
}

// NewGormBatchLotRepository creates a new GormBatchLotRepository
func NewGormBatchLotRepository(db *gorm.DB) *GormBatchLotRepository {
	return &GormBatchLotRepository{db: db}
}

// FindByID finds a batch by its ID
func (r *GormBatchLotRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.BatchLot, error) {
	var batch inventory.BatchLot
	if err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// FindByIDsForUpdate loads batches by ID with pessimistic row locks
func (r *GormBatchLotRepository) FindByIDsForUpdate(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]inventory.BatchLot, error) {
	if len(ids) == 0 {
		return []inventory.BatchLot{}, nil
	}

	var batches []inventory.BatchLot
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Order("created_at ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	if len(batches) != len(ids) {
		return nil, shared.ErrNotFound
	}
	return batches, nil
}

// FindAllocatable finds active batches with remaining stock that have not
// expired, ordered by receipt time ascending. Expiry is evaluated against
// the current date so a stale stored status cannot make an expired batch
// allocatable.
func (r *GormBatchLotRepository) FindAllocatable(ctx context.Context, tenantID, branchID, variantID uuid.UUID) ([]inventory.BatchLot, error) {
	var batches []inventory.BatchLot
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND branch_id = ? AND product_variant_id = ?", tenantID, branchID, variantID).
		Where("status = ? AND quantity_remaining > 0", inventory.BatchStatusActive).
		Where("expiry_date IS NULL OR expiry_date >= ?", time.Now()).
		Order("created_at ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindByBatchNumber finds a batch by its business key
func (r *GormBatchLotRepository) FindByBatchNumber(ctx context.Context, tenantID, branchID, variantID uuid.UUID, batchNumber string) (*inventory.BatchLot, error) {
	var batch inventory.BatchLot
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND branch_id = ? AND product_variant_id = ? AND batch_number = ?",
			tenantID, branchID, variantID, batchNumber).
		First(&batch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// FindExpiringSoon finds batches with remaining stock expiring within the window
func (r *GormBatchLotRepository) FindExpiringSoon(ctx context.Context, tenantID uuid.UUID, within time.Duration, filter shared.Filter) ([]inventory.BatchLot, error) {
	now := time.Now()
	var batches []inventory.BatchLot
	query := r.db.WithContext(ctx).Model(&inventory.BatchLot{}).
		Where("tenant_id = ? AND quantity_remaining > 0", tenantID).
		Where("expiry_date IS NOT NULL AND expiry_date >= ? AND expiry_date <= ?", now, now.Add(within)).
		Order("expiry_date ASC")
	query = r.applyPagination(query, filter)

	if err := query.Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindExpired finds expired batches that still hold stock
func (r *GormBatchLotRepository) FindExpired(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.BatchLot, error) {
	var batches []inventory.BatchLot
	query := r.db.WithContext(ctx).Model(&inventory.BatchLot{}).
		Where("tenant_id = ? AND quantity_remaining > 0", tenantID).
		Where("expiry_date IS NOT NULL AND expiry_date < ?", time.Now()).
		Order("expiry_date ASC")
	query = r.applyPagination(query, filter)

	if err := query.Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// Save creates or updates a batch lot
func (r *GormBatchLotRepository) Save(ctx context.Context, batch *inventory.BatchLot) error {
	return r.db.WithContext(ctx).Save(batch).Error
}

// SaveAll persists multiple batch lots
func (r *GormBatchLotRepository) SaveAll(ctx context.Context, batches []*inventory.BatchLot) error {
	for _, batch := range batches {
		if err := r.db.WithContext(ctx).Save(batch).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete soft-deletes a batch lot
func (r *GormBatchLotRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&inventory.BatchLot{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormBatchLotRepository) applyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	return query
}

// Ensure GormBatchLotRepository implements BatchLotRepository
var _ inventory.BatchLotRepository = (*GormBatchLotRepository)(nil)
