package inventory

import (
	"time"

	"github.com/branchstock/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockLevelResponse represents a stock level in API responses
type StockLevelResponse struct {
	ID                uuid.UUID       `json:"id"`
	TenantID          uuid.UUID       `json:"tenant_id"`
	BranchID          uuid.UUID       `json:"branch_id"`
	ProductVariantID  uuid.UUID       `json:"product_variant_id"`
	OnHandQuantity    decimal.Decimal `json:"on_hand_quantity"`
	ReservedQuantity  decimal.Decimal `json:"reserved_quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	ReorderLevel      decimal.Decimal `json:"reorder_level"`
	ReorderQuantity   decimal.Decimal `json:"reorder_quantity"`
	IsLowStock        bool            `json:"is_low_stock"`
	NeedsReorder      bool            `json:"needs_reorder"`
	LastStockDate     *time.Time      `json:"last_stock_date,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int             `json:"version"`
}

// StockLevelListFilter represents filter options for stock level lists
type StockLevelListFilter struct {
	BranchID         *uuid.UUID `form:"branch_id"`
	ProductVariantID *uuid.UUID `form:"product_variant_id"`
	LowStock         *bool      `form:"low_stock"`
	HasStock         *bool      `form:"has_stock"`
	Page             int        `form:"page" binding:"min=1"`
	PageSize         int        `form:"page_size" binding:"min=1,max=100"`
	OrderBy          string     `form:"order_by"`
	OrderDir         string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// AdjustStockRequest represents a request to apply a signed stock adjustment
type AdjustStockRequest struct {
	BranchID         uuid.UUID       `json:"branch_id" binding:"required"`
	ProductVariantID uuid.UUID       `json:"product_variant_id" binding:"required"`
	Quantity         decimal.Decimal `json:"quantity" binding:"required"` // signed delta
	UnitCost         decimal.Decimal `json:"unit_cost"`
	Reason           string          `json:"reason" binding:"required,min=1,max=255"`
	ReferenceID      string          `json:"reference_id"`
	OperatorID       *uuid.UUID      `json:"operator_id"`
}

// TransferStockRequest represents a request to move stock between branches
type TransferStockRequest struct {
	FromBranchID     uuid.UUID       `json:"from_branch_id" binding:"required"`
	ToBranchID       uuid.UUID       `json:"to_branch_id" binding:"required"`
	ProductVariantID uuid.UUID       `json:"product_variant_id" binding:"required"`
	Quantity         decimal.Decimal `json:"quantity" binding:"required"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	ReferenceID      string          `json:"reference_id"`
	Notes            string          `json:"notes"`
	OperatorID       *uuid.UUID      `json:"operator_id"`
}

// TransferResult carries the two ledger entries a transfer produced
type TransferResult struct {
	OutEntry    LedgerEntryResponse `json:"out_entry"`
	InEntry     LedgerEntryResponse `json:"in_entry"`
	SourceLevel StockLevelResponse  `json:"source_level"`
	DestLevel   StockLevelResponse  `json:"dest_level"`
}

// ReserveStockRequest represents a request to place a soft hold
type ReserveStockRequest struct {
	BranchID         uuid.UUID       `json:"branch_id" binding:"required"`
	ProductVariantID uuid.UUID       `json:"product_variant_id" binding:"required"`
	Quantity         decimal.Decimal `json:"quantity" binding:"required"`
	ReferenceID      string          `json:"reference_id"`
}

// ReleaseStockRequest represents a request to release a soft hold
type ReleaseStockRequest struct {
	BranchID         uuid.UUID       `json:"branch_id" binding:"required"`
	ProductVariantID uuid.UUID       `json:"product_variant_id" binding:"required"`
	Quantity         decimal.Decimal `json:"quantity" binding:"required"`
	ReferenceID      string          `json:"reference_id"`
}

// ReceiveStockRequest represents a stock receipt that creates a batch lot
type ReceiveStockRequest struct {
	BranchID         uuid.UUID       `json:"branch_id" binding:"required"`
	ProductVariantID uuid.UUID       `json:"product_variant_id" binding:"required"`
	Quantity         decimal.Decimal `json:"quantity" binding:"required"`
	UnitCost         decimal.Decimal `json:"unit_cost" binding:"required"`
	BatchNumber      string          `json:"batch_number" binding:"required,min=1,max=100"`
	LotNumber        string          `json:"lot_number"`
	ManufactureDate  *time.Time      `json:"manufacture_date"`
	ExpiryDate       *time.Time      `json:"expiry_date"`
	ReferenceID      string          `json:"reference_id"`
	Notes            string          `json:"notes"`
	OperatorID       *uuid.UUID      `json:"operator_id"`
}

// ReceiveStockResult carries the batch and ledger entry a receipt produced
type ReceiveStockResult struct {
	Batch      BatchLotResponse    `json:"batch"`
	Entry      LedgerEntryResponse `json:"entry"`
	StockLevel StockLevelResponse  `json:"stock_level"`
}

// AllocateStockRequest represents a read-only allocation planning request
type AllocateStockRequest struct {
	BranchID         uuid.UUID       `json:"branch_id" binding:"required"`
	ProductVariantID uuid.UUID       `json:"product_variant_id" binding:"required"`
	Quantity         decimal.Decimal `json:"quantity" binding:"required"`
	Policy           string          `json:"policy" binding:"required,oneof=FIFO FEFO"`
}

// FulfillStockRequest represents an atomic allocate-and-commit request
type FulfillStockRequest struct {
	BranchID         uuid.UUID       `json:"branch_id" binding:"required"`
	ProductVariantID uuid.UUID       `json:"product_variant_id" binding:"required"`
	Quantity         decimal.Decimal `json:"quantity" binding:"required"`
	Policy           string          `json:"policy" binding:"required,oneof=FIFO FEFO"`
	ReferenceID      string          `json:"reference_id"`
	ReleaseReserved  bool            `json:"release_reserved"` // also release a matching soft hold
	Notes            string          `json:"notes"`
	OperatorID       *uuid.UUID      `json:"operator_id"`
}

// FulfillStockResult carries the committed plan and resulting ledger entry
type FulfillStockResult struct {
	Plan       inventory.AllocationPlan `json:"plan"`
	Entry      LedgerEntryResponse      `json:"entry"`
	StockLevel StockLevelResponse       `json:"stock_level"`
}

// SetReorderPointRequest represents a request to set reorder thresholds
type SetReorderPointRequest struct {
	BranchID         uuid.UUID       `json:"branch_id" binding:"required"`
	ProductVariantID uuid.UUID       `json:"product_variant_id" binding:"required"`
	ReorderLevel     decimal.Decimal `json:"reorder_level"`
	ReorderQuantity  decimal.Decimal `json:"reorder_quantity"`
}

// LedgerEntryResponse represents a ledger entry in API responses
type LedgerEntryResponse struct {
	ID               uuid.UUID       `json:"id"`
	TenantID         uuid.UUID       `json:"tenant_id"`
	BranchID         uuid.UUID       `json:"branch_id"`
	StockLevelID     uuid.UUID       `json:"stock_level_id"`
	ProductVariantID uuid.UUID       `json:"product_variant_id"`
	MovementType     string          `json:"movement_type"`
	Quantity         decimal.Decimal `json:"quantity"`
	SignedQuantity   decimal.Decimal `json:"signed_quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	ReferenceType    string          `json:"reference_type,omitempty"`
	ReferenceID      string          `json:"reference_id,omitempty"`
	BatchNumber      string          `json:"batch_number,omitempty"`
	LotNumber        string          `json:"lot_number,omitempty"`
	ExpiryDate       *time.Time      `json:"expiry_date,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	CreatedBy        *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// LedgerListFilter represents filter options for ledger queries
type LedgerListFilter struct {
	BranchID         *uuid.UUID `form:"branch_id"`
	ProductVariantID *uuid.UUID `form:"product_variant_id"`
	MovementType     string     `form:"movement_type"`
	BatchNumber      string     `form:"batch_number"`
	StartDate        *time.Time `form:"start_date"`
	EndDate          *time.Time `form:"end_date"`
	Page             int        `form:"page" binding:"min=1"`
	PageSize         int        `form:"page_size" binding:"min=1,max=100"`
}

// BatchLotResponse represents a batch lot in API responses
type BatchLotResponse struct {
	ID                uuid.UUID       `json:"id"`
	TenantID          uuid.UUID       `json:"tenant_id"`
	BranchID          uuid.UUID       `json:"branch_id"`
	ProductVariantID  uuid.UUID       `json:"product_variant_id"`
	BatchNumber       string          `json:"batch_number"`
	LotNumber         string          `json:"lot_number,omitempty"`
	QuantityReceived  decimal.Decimal `json:"quantity_received"`
	QuantityRemaining decimal.Decimal `json:"quantity_remaining"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	RemainingValue    decimal.Decimal `json:"remaining_value"`
	ManufactureDate   *time.Time      `json:"manufacture_date,omitempty"`
	ExpiryDate        *time.Time      `json:"expiry_date,omitempty"`
	Status            string          `json:"status"`
	IsAllocatable     bool            `json:"is_allocatable"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// BalanceResponse is a ledger-derived balance for a branch-variant pair
type BalanceResponse struct {
	BranchID         uuid.UUID       `json:"branch_id"`
	ProductVariantID uuid.UUID       `json:"product_variant_id"`
	Balance          decimal.Decimal `json:"balance"`
}

// ReconciliationReport compares the cached on-hand quantity against the
// recomputed ledger balance for a branch-variant pair
type ReconciliationReport struct {
	BranchID         uuid.UUID       `json:"branch_id"`
	ProductVariantID uuid.UUID       `json:"product_variant_id"`
	OnHandQuantity   decimal.Decimal `json:"on_hand_quantity"`
	LedgerBalance    decimal.Decimal `json:"ledger_balance"`
	Drift            decimal.Decimal `json:"drift"`
	InSync           bool            `json:"in_sync"`
	CheckedAt        time.Time       `json:"checked_at"`
}

// ToStockLevelResponse converts a domain StockLevel to a response DTO
func ToStockLevelResponse(level *inventory.StockLevel) StockLevelResponse {
	return StockLevelResponse{
		ID:                level.ID,
		TenantID:          level.TenantID,
		BranchID:          level.BranchID,
		ProductVariantID:  level.ProductVariantID,
		OnHandQuantity:    level.OnHandQuantity,
		ReservedQuantity:  level.ReservedQuantity,
		AvailableQuantity: level.AvailableQuantity(),
		ReorderLevel:      level.ReorderLevel,
		ReorderQuantity:   level.ReorderQuantity,
		IsLowStock:        level.IsLowStock(),
		NeedsReorder:      level.NeedsReorder(),
		LastStockDate:     level.LastStockDate,
		CreatedAt:         level.CreatedAt,
		UpdatedAt:         level.UpdatedAt,
		Version:           level.Version,
	}
}

// ToStockLevelResponses converts a slice of domain StockLevels to responses
func ToStockLevelResponses(levels []inventory.StockLevel) []StockLevelResponse {
	responses := make([]StockLevelResponse, len(levels))
	for i := range levels {
		responses[i] = ToStockLevelResponse(&levels[i])
	}
	return responses
}

// ToLedgerEntryResponse converts a domain LedgerEntry to a response DTO
func ToLedgerEntryResponse(entry *inventory.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:               entry.ID,
		TenantID:         entry.TenantID,
		BranchID:         entry.BranchID,
		StockLevelID:     entry.StockLevelID,
		ProductVariantID: entry.ProductVariantID,
		MovementType:     string(entry.MovementType),
		Quantity:         entry.Quantity,
		SignedQuantity:   entry.SignedQuantity(),
		UnitCost:         entry.UnitCost,
		TotalCost:        entry.TotalCost(),
		ReferenceType:    string(entry.ReferenceType),
		ReferenceID:      entry.ReferenceID,
		BatchNumber:      entry.BatchNumber,
		LotNumber:        entry.LotNumber,
		ExpiryDate:       entry.ExpiryDate,
		Notes:            entry.Notes,
		CreatedBy:        entry.CreatedBy,
		CreatedAt:        entry.CreatedAt,
	}
}

// ToLedgerEntryResponses converts a slice of domain LedgerEntries to responses
func ToLedgerEntryResponses(entries []inventory.LedgerEntry) []LedgerEntryResponse {
	responses := make([]LedgerEntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToLedgerEntryResponse(&entries[i])
	}
	return responses
}

// ToBatchLotResponse converts a domain BatchLot to a response DTO
func ToBatchLotResponse(batch *inventory.BatchLot) BatchLotResponse {
	return BatchLotResponse{
		ID:                batch.ID,
		TenantID:          batch.TenantID,
		BranchID:          batch.BranchID,
		ProductVariantID:  batch.ProductVariantID,
		BatchNumber:       batch.BatchNumber,
		LotNumber:         batch.LotNumber,
		QuantityReceived:  batch.QuantityReceived,
		QuantityRemaining: batch.QuantityRemaining,
		UnitCost:          batch.UnitCost,
		RemainingValue:    batch.RemainingValue(),
		ManufactureDate:   batch.ManufactureDate,
		ExpiryDate:        batch.ExpiryDate,
		Status:            string(batch.EffectiveStatus()),
		IsAllocatable:     batch.IsAllocatable(),
		CreatedAt:         batch.CreatedAt,
		UpdatedAt:         batch.UpdatedAt,
	}
}

// ToBatchLotResponses converts a slice of domain BatchLots to responses
func ToBatchLotResponses(batches []inventory.BatchLot) []BatchLotResponse {
	responses := make([]BatchLotResponse, len(batches))
	for i := range batches {
		responses[i] = ToBatchLotResponse(&batches[i])
	}
	return responses
}
