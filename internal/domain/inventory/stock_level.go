package inventory

import (
	"time"

	"github.com/branchstock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockLevel is the current-state inventory row for a product variant at a
// branch. It is the aggregate root for inventory movements.
// The composite identifier is TenantID + BranchID + ProductVariantID.
//
// StockLevel is a materialized cache over the stock ledger: OnHandQuantity
// must equal the signed sum of all ledger entries for the same branch and
// variant. It is never an independent source of truth; every mutation happens
// in lockstep with a ledger write inside the same transaction.
type StockLevel struct {
	shared.BaseAggregateRoot
	TenantID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_level_branch_variant,priority:1"`
	CreatedBy        *uuid.UUID      `gorm:"type:uuid;index"`
	BranchID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_level_branch_variant,priority:2"`
	ProductVariantID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_level_branch_variant,priority:3"`
	OnHandQuantity   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReservedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReorderLevel     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReorderQuantity  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LastStockDate    *time.Time      `gorm:"type:timestamptz"`
	DeletedAt        gorm.DeletedAt  `gorm:"index"`
}

// TableName returns the table name for GORM
func (StockLevel) TableName() string {
	return "stock_levels"
}

// NewStockLevel creates a zero-initialized stock level for a branch-variant
// combination. Levels are created lazily on the first movement.
func NewStockLevel(tenantID, branchID, variantID uuid.UUID) (*StockLevel, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Branch ID cannot be empty")
	}
	if variantID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Product variant ID cannot be empty")
	}

	return &StockLevel{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TenantID:          tenantID,
		BranchID:          branchID,
		ProductVariantID:  variantID,
		OnHandQuantity:    decimal.Zero,
		ReservedQuantity:  decimal.Zero,
		ReorderLevel:      decimal.Zero,
		ReorderQuantity:   decimal.Zero,
	}, nil
}

// AvailableQuantity returns the quantity available for new commitments:
// max(0, on-hand - reserved).
func (s *StockLevel) AvailableQuantity() decimal.Decimal {
	available := s.OnHandQuantity.Sub(s.ReservedQuantity)
	if available.IsNegative() {
		return decimal.Zero
	}
	return available
}

// ApplyDelta adds a signed delta to the on-hand quantity. The persisted value
// is floored at zero: ledger math may legitimately go negative through signed
// adjustments, but a negative physical count is never stored. This is a
// deliberate divergence from the raw ledger balance; Reconcile exposes the
// drift when it happens.
func (s *StockLevel) ApplyDelta(delta decimal.Decimal) {
	s.OnHandQuantity = s.OnHandQuantity.Add(delta)
	if s.OnHandQuantity.IsNegative() {
		s.OnHandQuantity = decimal.Zero
	}
	s.UpdatedAt = time.Now()
}

// Reserve places a soft hold on available stock. Reservations are not stock
// movements and write no ledger entries.
func (s *StockLevel) Reserve(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("VALIDATION_ERROR", "Reserve quantity must be positive")
	}
	if s.AvailableQuantity().LessThan(quantity) {
		return NewInsufficientAvailableError(quantity, s.AvailableQuantity())
	}

	s.ReservedQuantity = s.ReservedQuantity.Add(quantity)
	s.UpdatedAt = time.Now()

	s.AddDomainEvent(NewStockReservedEvent(s, quantity))
	return nil
}

// Release returns a previously reserved quantity to available stock.
func (s *StockLevel) Release(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("VALIDATION_ERROR", "Release quantity must be positive")
	}
	if s.ReservedQuantity.LessThan(quantity) {
		return shared.NewDomainError("VALIDATION_ERROR", "Cannot release more than the reserved quantity")
	}

	s.ReservedQuantity = s.ReservedQuantity.Sub(quantity)
	s.UpdatedAt = time.Now()

	s.AddDomainEvent(NewStockReleasedEvent(s, quantity))
	return nil
}

// SetReorderPoint sets the reorder threshold and replenishment quantity.
func (s *StockLevel) SetReorderPoint(level, quantity decimal.Decimal) error {
	if level.IsNegative() || quantity.IsNegative() {
		return shared.NewDomainError("VALIDATION_ERROR", "Reorder level and quantity cannot be negative")
	}
	s.ReorderLevel = level
	s.ReorderQuantity = quantity
	s.UpdatedAt = time.Now()
	return nil
}

// TouchStockDate records the time of the latest stock movement.
func (s *StockLevel) TouchStockDate(at time.Time) {
	s.LastStockDate = &at
	s.UpdatedAt = time.Now()
}

// IsLowStock returns true if on-hand has fallen to or below the reorder level.
func (s *StockLevel) IsLowStock() bool {
	return s.OnHandQuantity.LessThanOrEqual(s.ReorderLevel)
}

// NeedsReorder returns true when the level is low AND a reorder threshold is
// actually configured. A zero reorder level means replenishment is unmanaged.
func (s *StockLevel) NeedsReorder() bool {
	return s.IsLowStock() && s.ReorderLevel.GreaterThan(decimal.Zero)
}

// CanFulfill returns true if the available quantity covers the request.
func (s *StockLevel) CanFulfill(quantity decimal.Decimal) bool {
	return s.AvailableQuantity().GreaterThanOrEqual(quantity)
}

// HasStock returns true if there is any on-hand stock.
func (s *StockLevel) HasStock() bool {
	return s.OnHandQuantity.GreaterThan(decimal.Zero)
}
