package inventory

import (
	"time"

	"github.com/branchstock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BatchStatus is the lifecycle state of a batch lot
type BatchStatus string

const (
	// BatchStatusActive means the batch still holds allocatable stock
	BatchStatusActive BatchStatus = "active"
	// BatchStatusExpired means the batch passed its expiry date
	BatchStatusExpired BatchStatus = "expired"
	// BatchStatusDepleted means the batch remaining quantity reached zero
	BatchStatusDepleted BatchStatus = "depleted"
)

// String returns the string representation of BatchStatus
func (s BatchStatus) String() string {
	return string(s)
}

// BatchLot is a discrete stock receipt tracked for FIFO/FEFO allocation.
// Keyed by (tenant, branch, variant, batch number). The received quantity is
// immutable after creation; the remaining quantity only decreases through
// allocation commits, except via an explicit restock. Batches are never
// hard-deleted.
type BatchLot struct {
	shared.BaseEntity
	TenantID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_batch_lot_key,priority:1"`
	BranchID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_batch_lot_key,priority:2"`
	ProductVariantID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_batch_lot_key,priority:3"`
	BatchNumber       string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_batch_lot_key,priority:4"`
	LotNumber         string          `gorm:"type:varchar(100)"`
	QuantityReceived  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantityRemaining decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ManufactureDate   *time.Time      `gorm:"type:date"`
	ExpiryDate        *time.Time      `gorm:"type:date;index"`
	Status            BatchStatus     `gorm:"type:varchar(20);not null;default:'active'"`
	DeletedAt         gorm.DeletedAt  `gorm:"index"`
}

// TableName returns the table name for GORM
func (BatchLot) TableName() string {
	return "batch_lots"
}

// NewBatchLot creates a batch lot from a stock receipt
func NewBatchLot(
	tenantID, branchID, variantID uuid.UUID,
	batchNumber, lotNumber string,
	quantity decimal.Decimal,
	unitCost decimal.Decimal,
	manufactureDate, expiryDate *time.Time,
) (*BatchLot, error) {
	if batchNumber == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Batch number cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Received quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unit cost cannot be negative")
	}

	return &BatchLot{
		BaseEntity:        shared.NewBaseEntity(),
		TenantID:          tenantID,
		BranchID:          branchID,
		ProductVariantID:  variantID,
		BatchNumber:       batchNumber,
		LotNumber:         lotNumber,
		QuantityReceived:  quantity,
		QuantityRemaining: quantity,
		UnitCost:          unitCost,
		ManufactureDate:   manufactureDate,
		ExpiryDate:        expiryDate,
		Status:            BatchStatusActive,
	}, nil
}

// IsExpired returns true if the expiry date has passed
func (b *BatchLot) IsExpired() bool {
	if b.ExpiryDate == nil {
		return false
	}
	return b.ExpiryDate.Before(time.Now())
}

// EffectiveStatus computes the current status. Expiry is time-derived and not
// necessarily persisted eagerly; an external periodic collaborator may sync
// the stored column.
func (b *BatchLot) EffectiveStatus() BatchStatus {
	if b.QuantityRemaining.LessThanOrEqual(decimal.Zero) {
		return BatchStatusDepleted
	}
	if b.IsExpired() {
		return BatchStatusExpired
	}
	return b.Status
}

// IsAllocatable returns true if the batch can supply an allocation:
// active, not expired, and with remaining stock.
func (b *BatchLot) IsAllocatable() bool {
	return b.EffectiveStatus() == BatchStatusActive && b.QuantityRemaining.GreaterThan(decimal.Zero)
}

// WillExpireWithin returns true if the batch will expire within the duration
func (b *BatchLot) WillExpireWithin(d time.Duration) bool {
	if b.ExpiryDate == nil {
		return false
	}
	return b.ExpiryDate.Before(time.Now().Add(d))
}

// Consume reduces the remaining quantity by an allocation commit. The
// remaining quantity is monotonically non-increasing through this path.
func (b *BatchLot) Consume(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("VALIDATION_ERROR", "Consume quantity must be positive")
	}
	if quantity.GreaterThan(b.QuantityRemaining) {
		return NewInsufficientStockError(quantity, b.QuantityRemaining)
	}

	b.QuantityRemaining = b.QuantityRemaining.Sub(quantity)
	if b.QuantityRemaining.IsZero() {
		b.Status = BatchStatusDepleted
	}
	b.UpdatedAt = time.Now()
	return nil
}

// Restock returns quantity to the batch (e.g. an order line returned before
// shipment). Remaining can never exceed the received quantity.
func (b *BatchLot) Restock(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("VALIDATION_ERROR", "Restock quantity must be positive")
	}
	if b.QuantityRemaining.Add(quantity).GreaterThan(b.QuantityReceived) {
		return shared.NewDomainError("VALIDATION_ERROR", "Restock would exceed the received quantity")
	}

	b.QuantityRemaining = b.QuantityRemaining.Add(quantity)
	if b.Status == BatchStatusDepleted && b.QuantityRemaining.GreaterThan(decimal.Zero) {
		b.Status = BatchStatusActive
	}
	b.UpdatedAt = time.Now()
	return nil
}

// MarkExpired persists the computed expired status
func (b *BatchLot) MarkExpired() {
	if b.Status == BatchStatusActive && b.IsExpired() {
		b.Status = BatchStatusExpired
		b.UpdatedAt = time.Now()
	}
}

// RemainingValue returns remaining quantity * unit cost
func (b *BatchLot) RemainingValue() decimal.Decimal {
	return b.QuantityRemaining.Mul(b.UnitCost)
}
