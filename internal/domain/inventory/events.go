package inventory

import (
	"github.com/branchstock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeStockLevel = "StockLevel"

// Event type constants
const (
	EventTypeStockAdjusted    = "StockAdjusted"
	EventTypeStockTransferred = "StockTransferred"
	EventTypeStockReceived    = "StockReceived"
	EventTypeStockFulfilled   = "StockFulfilled"
	EventTypeStockReserved    = "StockReserved"
	EventTypeStockReleased    = "StockReleased"
	EventTypeLowStockAlert    = "LowStockAlert"
	EventTypeBatchDepleted    = "BatchDepleted"
)

// StockAdjustedEvent is raised when a signed adjustment is committed
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	StockLevelID     uuid.UUID       `json:"stock_level_id"`
	BranchID         uuid.UUID       `json:"branch_id"`
	ProductVariantID uuid.UUID       `json:"product_variant_id"`
	LedgerEntryID    uuid.UUID       `json:"ledger_entry_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	OnHandAfter      decimal.Decimal `json:"on_hand_after"`
}

// NewStockAdjustedEvent creates a new StockAdjustedEvent
func NewStockAdjustedEvent(level *StockLevel, entry *LedgerEntry) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeStockAdjusted, AggregateTypeStockLevel, level.ID, level.TenantID),
		StockLevelID:     level.ID,
		BranchID:         level.BranchID,
		ProductVariantID: level.ProductVariantID,
		LedgerEntryID:    entry.ID,
		Quantity:         entry.Quantity,
		OnHandAfter:      level.OnHandQuantity,
	}
}

// EventType returns the event type name
func (e *StockAdjustedEvent) EventType() string {
	return EventTypeStockAdjusted
}

// StockTransferredEvent is raised when an inter-branch transfer commits
type StockTransferredEvent struct {
	shared.BaseDomainEvent
	ProductVariantID uuid.UUID       `json:"product_variant_id"`
	FromBranchID     uuid.UUID       `json:"from_branch_id"`
	ToBranchID       uuid.UUID       `json:"to_branch_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	SourceOnHand     decimal.Decimal `json:"source_on_hand"`
	DestOnHand       decimal.Decimal `json:"dest_on_hand"`
}

// NewStockTransferredEvent creates a new StockTransferredEvent
func NewStockTransferredEvent(source, dest *StockLevel, quantity decimal.Decimal) *StockTransferredEvent {
	return &StockTransferredEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeStockTransferred, AggregateTypeStockLevel, source.ID, source.TenantID),
		ProductVariantID: source.ProductVariantID,
		FromBranchID:     source.BranchID,
		ToBranchID:       dest.BranchID,
		Quantity:         quantity,
		SourceOnHand:     source.OnHandQuantity,
		DestOnHand:       dest.OnHandQuantity,
	}
}

// EventType returns the event type name
func (e *StockTransferredEvent) EventType() string {
	return EventTypeStockTransferred
}

// StockReceivedEvent is raised when a stock receipt creates a batch lot
type StockReceivedEvent struct {
	shared.BaseDomainEvent
	StockLevelID     uuid.UUID       `json:"stock_level_id"`
	BranchID         uuid.UUID       `json:"branch_id"`
	ProductVariantID uuid.UUID       `json:"product_variant_id"`
	BatchID          uuid.UUID       `json:"batch_id"`
	BatchNumber      string          `json:"batch_number"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
}

// NewStockReceivedEvent creates a new StockReceivedEvent
func NewStockReceivedEvent(level *StockLevel, batch *BatchLot) *StockReceivedEvent {
	return &StockReceivedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeStockReceived, AggregateTypeStockLevel, level.ID, level.TenantID),
		StockLevelID:     level.ID,
		BranchID:         level.BranchID,
		ProductVariantID: level.ProductVariantID,
		BatchID:          batch.ID,
		BatchNumber:      batch.BatchNumber,
		Quantity:         batch.QuantityReceived,
		UnitCost:         batch.UnitCost,
	}
}

// EventType returns the event type name
func (e *StockReceivedEvent) EventType() string {
	return EventTypeStockReceived
}

// StockFulfilledEvent is raised when an outbound demand is committed
// against allocated batches
type StockFulfilledEvent struct {
	shared.BaseDomainEvent
	StockLevelID     uuid.UUID       `json:"stock_level_id"`
	BranchID         uuid.UUID       `json:"branch_id"`
	ProductVariantID uuid.UUID       `json:"product_variant_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	Policy           string          `json:"policy"`
	BatchesUsed      int             `json:"batches_used"`
}

// NewStockFulfilledEvent creates a new StockFulfilledEvent
func NewStockFulfilledEvent(level *StockLevel, plan *AllocationPlan) *StockFulfilledEvent {
	return &StockFulfilledEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeStockFulfilled, AggregateTypeStockLevel, level.ID, level.TenantID),
		StockLevelID:     level.ID,
		BranchID:         level.BranchID,
		ProductVariantID: level.ProductVariantID,
		Quantity:         plan.TotalQuantity,
		UnitCost:         plan.WeightedAverageCost,
		Policy:           string(plan.Policy),
		BatchesUsed:      len(plan.Lines),
	}
}

// EventType returns the event type name
func (e *StockFulfilledEvent) EventType() string {
	return EventTypeStockFulfilled
}

// StockReservedEvent is raised when a soft hold is placed
type StockReservedEvent struct {
	shared.BaseDomainEvent
	StockLevelID     uuid.UUID       `json:"stock_level_id"`
	BranchID         uuid.UUID       `json:"branch_id"`
	ProductVariantID uuid.UUID       `json:"product_variant_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	ReservedAfter    decimal.Decimal `json:"reserved_after"`
}

// NewStockReservedEvent creates a new StockReservedEvent
func NewStockReservedEvent(level *StockLevel, quantity decimal.Decimal) *StockReservedEvent {
	return &StockReservedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeStockReserved, AggregateTypeStockLevel, level.ID, level.TenantID),
		StockLevelID:     level.ID,
		BranchID:         level.BranchID,
		ProductVariantID: level.ProductVariantID,
		Quantity:         quantity,
		ReservedAfter:    level.ReservedQuantity,
	}
}

// EventType returns the event type name
func (e *StockReservedEvent) EventType() string {
	return EventTypeStockReserved
}

// StockReleasedEvent is raised when a soft hold is released
type StockReleasedEvent struct {
	shared.BaseDomainEvent
	StockLevelID     uuid.UUID       `json:"stock_level_id"`
	BranchID         uuid.UUID       `json:"branch_id"`
	ProductVariantID uuid.UUID       `json:"product_variant_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	ReservedAfter    decimal.Decimal `json:"reserved_after"`
}

// NewStockReleasedEvent creates a new StockReleasedEvent
func NewStockReleasedEvent(level *StockLevel, quantity decimal.Decimal) *StockReleasedEvent {
	return &StockReleasedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeStockReleased, AggregateTypeStockLevel, level.ID, level.TenantID),
		StockLevelID:     level.ID,
		BranchID:         level.BranchID,
		ProductVariantID: level.ProductVariantID,
		Quantity:         quantity,
		ReservedAfter:    level.ReservedQuantity,
	}
}

// EventType returns the event type name
func (e *StockReleasedEvent) EventType() string {
	return EventTypeStockReleased
}

// LowStockAlertEvent is raised when on-hand falls to or below the reorder
// level after a movement. Delivery is fire-and-forget; collaborators own
// retry and notification policy.
type LowStockAlertEvent struct {
	shared.BaseDomainEvent
	StockLevelID     uuid.UUID       `json:"stock_level_id"`
	BranchID         uuid.UUID       `json:"branch_id"`
	ProductVariantID uuid.UUID       `json:"product_variant_id"`
	OnHandQuantity   decimal.Decimal `json:"on_hand_quantity"`
	ReorderLevel     decimal.Decimal `json:"reorder_level"`
	ReorderQuantity  decimal.Decimal `json:"reorder_quantity"`
}

// NewLowStockAlertEvent creates a new LowStockAlertEvent
func NewLowStockAlertEvent(level *StockLevel) *LowStockAlertEvent {
	return &LowStockAlertEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeLowStockAlert, AggregateTypeStockLevel, level.ID, level.TenantID),
		StockLevelID:     level.ID,
		BranchID:         level.BranchID,
		ProductVariantID: level.ProductVariantID,
		OnHandQuantity:   level.OnHandQuantity,
		ReorderLevel:     level.ReorderLevel,
		ReorderQuantity:  level.ReorderQuantity,
	}
}

// EventType returns the event type name
func (e *LowStockAlertEvent) EventType() string {
	return EventTypeLowStockAlert
}

// BatchDepletedEvent is raised when an allocation commit empties a batch
type BatchDepletedEvent struct {
	shared.BaseDomainEvent
	BatchID          uuid.UUID `json:"batch_id"`
	BatchNumber      string    `json:"batch_number"`
	BranchID         uuid.UUID `json:"branch_id"`
	ProductVariantID uuid.UUID `json:"product_variant_id"`
}

// NewBatchDepletedEvent creates a new BatchDepletedEvent
func NewBatchDepletedEvent(batch *BatchLot) *BatchDepletedEvent {
	return &BatchDepletedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeBatchDepleted, AggregateTypeStockLevel, batch.ID, batch.TenantID),
		BatchID:          batch.ID,
		BatchNumber:      batch.BatchNumber,
		BranchID:         batch.BranchID,
		ProductVariantID: batch.ProductVariantID,
	}
}

// EventType returns the event type name
func (e *BatchDepletedEvent) EventType() string {
	return EventTypeBatchDepleted
}
