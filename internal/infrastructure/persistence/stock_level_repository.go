package persistence

import (
	"context"
	"errors"

	"github.com/branchstock/backend/internal/domain/inventory"
	"github.com/branchstock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockLevelRepository implements StockLevelRepository using GORM
type GormStockLevelRepository struct {
	db *gorm.DB
}

// NewGormStockLevelRepository creates a new GormStockLevelRepository
func NewGormStockLevelRepository(db *gorm.DB) *GormStockLevelRepository {
	return &GormStockLevelRepository{db: db}
}

// FindByID finds a stock level by its ID
func (r *GormStockLevelRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockLevel, error) {
	var level inventory.StockLevel
	if err := r.db.WithContext(ctx).First(&level, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &level, nil
}

// FindByBranchAndVariant finds the level for a branch-variant combination
func (r *GormStockLevelRepository) FindByBranchAndVariant(ctx context.Context, tenantID, branchID, variantID uuid.UUID) (*inventory.StockLevel, error) {
	var level inventory.StockLevel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND branch_id = ? AND product_variant_id = ?", tenantID, branchID, variantID).
		First(&level).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &level, nil
}

// FindByBranchAndVariantForUpdate finds the level with a pessimistic row lock.
// Only meaningful inside a transaction; outside one the lock is released
// immediately.
func (r *GormStockLevelRepository) FindByBranchAndVariantForUpdate(ctx context.Context, tenantID, branchID, variantID uuid.UUID) (*inventory.StockLevel, error) {
	var level inventory.StockLevel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND branch_id = ? AND product_variant_id = ?", tenantID, branchID, variantID).
		First(&level).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &level, nil
}

// GetOrCreate returns the existing level or creates a zero-initialized one
func (r *GormStockLevelRepository) GetOrCreate(ctx context.Context, tenantID, branchID, variantID uuid.UUID) (*inventory.StockLevel, error) {
	// Try to find existing
	level, err := r.FindByBranchAndVariant(ctx, tenantID, branchID, variantID)
	if err == nil {
		return level, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	level, err = inventory.NewStockLevel(tenantID, branchID, variantID)
	if err != nil {
		return nil, err
	}

	// Use ON CONFLICT to handle race conditions
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "branch_id"}, {Name: "product_variant_id"}},
			DoNothing: true,
		}).
		Create(level).Error; err != nil {
		return nil, err
	}

	// If the row wasn't created (conflict), fetch the existing one
	if level.ID == uuid.Nil {
		return r.FindByBranchAndVariant(ctx, tenantID, branchID, variantID)
	}

	return level, nil
}

// FindAllForTenant finds all stock levels for a tenant
func (r *GormStockLevelRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.StockLevel, error) {
	var levels []inventory.StockLevel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockLevel{}).
			Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

// FindByBranch finds all stock levels in a branch
func (r *GormStockLevelRepository) FindByBranch(ctx context.Context, tenantID, branchID uuid.UUID, filter shared.Filter) ([]inventory.StockLevel, error) {
	var levels []inventory.StockLevel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockLevel{}).
			Where("tenant_id = ? AND branch_id = ?", tenantID, branchID),
		filter,
	)

	if err := query.Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

// FindLowStock finds levels at or below their reorder level
func (r *GormStockLevelRepository) FindLowStock(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.StockLevel, error) {
	var levels []inventory.StockLevel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockLevel{}).
			Where("tenant_id = ? AND reorder_level > 0 AND on_hand_quantity <= reorder_level", tenantID),
		filter,
	)

	if err := query.Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

// Save creates or updates a stock level
func (r *GormStockLevelRepository) Save(ctx context.Context, level *inventory.StockLevel) error {
	return r.db.WithContext(ctx).Save(level).Error
}

// SaveWithLock saves with an optimistic version check. The aggregate carries
// the version it was loaded at; the update only lands if no other transaction
// bumped it since, and the version advances by one on success.
func (r *GormStockLevelRepository) SaveWithLock(ctx context.Context, level *inventory.StockLevel) error {
	// Update through a detached model: with Model(level) GORM would write
	// the bumped version back onto the aggregate even when the UPDATE
	// fails, desyncing it from the row.
	newVersion := level.Version + 1
	result := r.db.WithContext(ctx).
		Model(&inventory.StockLevel{}).
		Where("id = ? AND version = ?", level.ID, level.Version).
		Updates(map[string]interface{}{
			"on_hand_quantity":  level.OnHandQuantity,
			"reserved_quantity": level.ReservedQuantity,
			"reorder_level":     level.ReorderLevel,
			"reorder_quantity":  level.ReorderQuantity,
			"last_stock_date":   level.LastStockDate,
			"version":           newVersion,
			"updated_at":        level.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_FAILED", "Stock level was modified by another transaction")
	}
	level.Version = newVersion
	return nil
}

// Delete soft-deletes a stock level
func (r *GormStockLevelRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&inventory.StockLevel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountForTenant counts stock levels matching the filter
func (r *GormStockLevelRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&inventory.StockLevel{}).
			Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormStockLevelRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, StockLevelSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	return query.Order(sortField + " " + sortOrder)
}

func (r *GormStockLevelRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "branch_id":
			query = query.Where("branch_id = ?", value)
		case "product_variant_id":
			query = query.Where("product_variant_id = ?", value)
		case "low_stock":
			if value == true {
				query = query.Where("reorder_level > 0 AND on_hand_quantity <= reorder_level")
			}
		case "has_stock":
			if value == true {
				query = query.Where("on_hand_quantity > 0")
			}
		case "has_reserved":
			if value == true {
				query = query.Where("reserved_quantity > 0")
			}
		}
	}

	return query
}

// Ensure GormStockLevelRepository implements StockLevelRepository
var _ inventory.StockLevelRepository = (*GormStockLevelRepository)(nil)
