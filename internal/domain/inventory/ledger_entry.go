package inventory

import (
	"time"

	"github.com/branchstock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MovementType classifies a stock ledger entry
type MovementType string

const (
	// MovementTypeIn is stock entering a branch (receipt, transfer arrival)
	MovementTypeIn MovementType = "in"
	// MovementTypeOut is stock leaving a branch (fulfillment, transfer departure)
	MovementTypeOut MovementType = "out"
	// MovementTypeAdjustment is a signed correction (count variance, damage, write-off)
	MovementTypeAdjustment MovementType = "adjustment"
	// MovementTypeTransfer marks an inter-branch move. Transfers are persisted
	// as an out entry at the source and an in entry at the destination, both
	// referencing the transfer; this value exists for callers that classify
	// movement requests before they are split into the pair.
	MovementTypeTransfer MovementType = "transfer"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is one of the enumerated kinds
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeAdjustment, MovementTypeTransfer:
		return true
	}
	return false
}

// ReferenceType identifies the business object that originated a movement
type ReferenceType string

const (
	// ReferenceTypeOrder links a movement to a sales/service order
	ReferenceTypeOrder ReferenceType = "order"
	// ReferenceTypePurchase links a movement to a purchase receipt
	ReferenceTypePurchase ReferenceType = "purchase"
	// ReferenceTypeTransfer links a movement to an inter-branch transfer
	ReferenceTypeTransfer ReferenceType = "transfer"
	// ReferenceTypeManual marks a manual adjustment
	ReferenceTypeManual ReferenceType = "manual"
)

// String returns the string representation of ReferenceType
func (r ReferenceType) String() string {
	return string(r)
}

// LedgerEntry is one immutable record of a stock-quantity-affecting event.
// Entries are write-once: there is no update or delete path, and any attempt
// to mutate a committed entry fails with IMMUTABILITY_VIOLATION. Corrections
// are made by appending new entries.
//
// Quantity is interpreted by movement type: in/out carry unsigned magnitudes,
// adjustment carries a signed quantity.
type LedgerEntry struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_ledger_tenant_time,priority:1"`
	BranchID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_ledger_branch"`
	StockLevelID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_ledger_level"`
	ProductVariantID uuid.UUID       `gorm:"type:uuid;not null;index:idx_ledger_variant"`
	MovementType     MovementType    `gorm:"type:varchar(20);not null;index:idx_ledger_type"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReferenceType    ReferenceType   `gorm:"type:varchar(30);index:idx_ledger_ref"`
	ReferenceID      string          `gorm:"type:varchar(100);index:idx_ledger_ref"`
	BatchNumber      string          `gorm:"type:varchar(100);index"`
	LotNumber        string          `gorm:"type:varchar(100)"`
	ExpiryDate       *time.Time      `gorm:"type:date"`
	Notes            string          `gorm:"type:varchar(500)"`
	CreatedBy        *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt        time.Time       `gorm:"type:timestamptz;not null;index:idx_ledger_tenant_time,priority:2"`
}

// TableName returns the table name for GORM
func (LedgerEntry) TableName() string {
	return "stock_ledger_entries"
}

// BeforeUpdate blocks updates at the ORM layer
func (LedgerEntry) BeforeUpdate(*gorm.DB) error {
	return shared.ErrImmutableLedger
}

// BeforeDelete blocks deletes at the ORM layer
func (LedgerEntry) BeforeDelete(*gorm.DB) error {
	return shared.ErrImmutableLedger
}

// NewLedgerEntry creates a new ledger entry. The creation timestamp is
// assigned here; persistence must not touch it.
func NewLedgerEntry(
	tenantID, branchID, stockLevelID, variantID uuid.UUID,
	movementType MovementType,
	quantity decimal.Decimal,
	unitCost decimal.Decimal,
) (*LedgerEntry, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Tenant ID cannot be empty")
	}
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Branch ID cannot be empty")
	}
	if stockLevelID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Stock level ID cannot be empty")
	}
	if variantID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Product variant ID cannot be empty")
	}
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Invalid movement type")
	}
	if quantity.IsZero() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Quantity must be non-zero")
	}
	// in/out are unsigned magnitudes; only adjustments may carry a sign
	if movementType != MovementTypeAdjustment && quantity.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Quantity must be positive for this movement type")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unit cost cannot be negative")
	}

	return &LedgerEntry{
		ID:               uuid.New(),
		TenantID:         tenantID,
		BranchID:         branchID,
		StockLevelID:     stockLevelID,
		ProductVariantID: variantID,
		MovementType:     movementType,
		Quantity:         quantity,
		UnitCost:         unitCost,
		CreatedAt:        time.Now(),
	}, nil
}

// WithReference links the entry to its originating business object
func (e *LedgerEntry) WithReference(refType ReferenceType, refID string) *LedgerEntry {
	e.ReferenceType = refType
	e.ReferenceID = refID
	return e
}

// WithBatch records the batch/lot the movement touched
func (e *LedgerEntry) WithBatch(batchNumber, lotNumber string, expiryDate *time.Time) *LedgerEntry {
	e.BatchNumber = batchNumber
	e.LotNumber = lotNumber
	e.ExpiryDate = expiryDate
	return e
}

// WithNotes attaches free-form notes
func (e *LedgerEntry) WithNotes(notes string) *LedgerEntry {
	e.Notes = notes
	return e
}

// WithCreatedBy records the operator
func (e *LedgerEntry) WithCreatedBy(userID uuid.UUID) *LedgerEntry {
	e.CreatedBy = &userID
	return e
}

// SignedQuantity returns the entry's contribution to the running balance:
// +quantity for in, -quantity for out, the signed quantity as written for
// adjustments. Transfer-classified entries contribute nothing directly; the
// paired in/out entries they are persisted as carry the balance effect.
func (e *LedgerEntry) SignedQuantity() decimal.Decimal {
	switch e.MovementType {
	case MovementTypeIn:
		return e.Quantity
	case MovementTypeOut:
		return e.Quantity.Neg()
	case MovementTypeAdjustment:
		return e.Quantity
	default:
		return decimal.Zero
	}
}

// TotalCost returns |quantity| * unit cost
func (e *LedgerEntry) TotalCost() decimal.Decimal {
	return e.Quantity.Abs().Mul(e.UnitCost)
}
