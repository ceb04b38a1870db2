package inventory

import (
	"bytes"
	"context"
	"time"

	"github.com/branchstock/backend/internal/domain/inventory"
	"github.com/branchstock/backend/internal/domain/shared"
	"github.com/branchstock/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MovementService orchestrates inventory movements. Every quantity-changing
// operation runs inside a single transaction scope: the stock level row is
// locked, the aggregate is mutated, the matching ledger entries are appended,
// and batch lots are updated together. A failure at any step rolls back the
// whole movement so the ledger and the cached level never diverge.
type MovementService struct {
	stockLevelRepo inventory.StockLevelRepository
	ledgerRepo     inventory.LedgerEntryRepository
	batchRepo      inventory.BatchLotRepository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewMovementService creates a new MovementService
func NewMovementService(
	stockLevelRepo inventory.StockLevelRepository,
	ledgerRepo inventory.LedgerEntryRepository,
	batchRepo inventory.BatchLotRepository,
	txScope TransactionScope,
	logger *zap.Logger,
) *MovementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MovementService{
		stockLevelRepo: stockLevelRepo,
		ledgerRepo:     ledgerRepo,
		batchRepo:      batchRepo,
		txScope:        txScope,
		logger:         logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *MovementService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// publishDomainEvents publishes all domain events collected on the aggregate.
// Events are published after commit; errors are logged by the bus, not
// propagated, so a slow or failing handler never undoes a movement.
func (s *MovementService) publishDomainEvents(ctx context.Context, level *inventory.StockLevel) {
	if s.eventPublisher == nil {
		return
	}
	events := level.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	level.ClearDomainEvents()
}

// publishEvents publishes standalone events not collected on an aggregate
func (s *MovementService) publishEvents(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}

// checkLowStock raises a low stock alert when a movement left on-hand at or
// below the reorder level
func (s *MovementService) checkLowStock(level *inventory.StockLevel) {
	if level.NeedsReorder() {
		level.AddDomainEvent(inventory.NewLowStockAlertEvent(level))
	}
}

// Adjust applies a signed quantity adjustment to a branch-variant pair.
// A positive quantity adds stock, a negative one removes it. The persisted
// on-hand quantity is floored at zero even when the signed ledger math goes
// below it.
func (s *MovementService) Adjust(ctx context.Context, tenantID uuid.UUID, req AdjustStockRequest) (*LedgerEntryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock_movement", "adjust")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrBranchID, req.BranchID.String(),
		telemetry.SpanAttrVariantID, req.ProductVariantID.String(),
		telemetry.SpanAttrQuantity, req.Quantity.String(),
	)

	if req.Quantity.IsZero() {
		err := shared.NewDomainError("VALIDATION_ERROR", "Adjustment quantity must be non-zero")
		telemetry.RecordError(span, err)
		return nil, err
	}

	var level *inventory.StockLevel
	var entry *inventory.LedgerEntry

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		level, err = repos.StockLevels().GetOrCreate(ctx, tenantID, req.BranchID, req.ProductVariantID)
		if err != nil {
			return err
		}
		level, err = repos.StockLevels().FindByBranchAndVariantForUpdate(ctx, tenantID, req.BranchID, req.ProductVariantID)
		if err != nil {
			return err
		}

		entry, err = inventory.NewLedgerEntry(
			tenantID, req.BranchID, level.ID, req.ProductVariantID,
			inventory.MovementTypeAdjustment, req.Quantity, req.UnitCost,
		)
		if err != nil {
			return err
		}
		entry.WithReference(inventory.ReferenceTypeManual, req.ReferenceID).WithNotes(req.Reason)
		if req.OperatorID != nil {
			entry.WithCreatedBy(*req.OperatorID)
		}

		level.ApplyDelta(req.Quantity)
		level.TouchStockDate(entry.CreatedAt)

		if err := repos.Ledger().Append(ctx, entry); err != nil {
			return err
		}
		return repos.StockLevels().SaveWithLock(ctx, level)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	level.AddDomainEvent(inventory.NewStockAdjustedEvent(level, entry))
	s.checkLowStock(level)
	s.publishDomainEvents(ctx, level)

	s.logger.Info("stock adjusted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("branch_id", req.BranchID.String()),
		zap.String("variant_id", req.ProductVariantID.String()),
		zap.String("quantity", req.Quantity.String()),
		zap.String("on_hand_after", level.OnHandQuantity.String()))

	response := ToLedgerEntryResponse(entry)
	return &response, nil
}

// Transfer moves stock between two branches atomically. The movement is
// persisted as an out entry at the source and an in entry at the destination,
// both referencing the same transfer ID; either both commit or neither does.
// The source must hold enough available stock for the full quantity, so a
// transfer never drives the source negative.
func (s *MovementService) Transfer(ctx context.Context, tenantID uuid.UUID, req TransferStockRequest) (*TransferResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock_movement", "transfer")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrSourceBranchID, req.FromBranchID.String(),
		telemetry.SpanAttrDestBranchID, req.ToBranchID.String(),
		telemetry.SpanAttrVariantID, req.ProductVariantID.String(),
		telemetry.SpanAttrQuantity, req.Quantity.String(),
	)

	if req.FromBranchID == req.ToBranchID {
		err := shared.NewDomainError("VALIDATION_ERROR", "Source and destination branches must differ")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		err := shared.NewDomainError("VALIDATION_ERROR", "Transfer quantity must be positive")
		telemetry.RecordError(span, err)
		return nil, err
	}

	transferID := req.ReferenceID
	if transferID == "" {
		transferID = uuid.New().String()
	}

	var source, dest *inventory.StockLevel
	var outEntry, inEntry *inventory.LedgerEntry

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.StockLevels().GetOrCreate(ctx, tenantID, req.ToBranchID, req.ProductVariantID); err != nil {
			return err
		}

		// Lock both level rows in branch-UUID order. Opposing transfers of
		// the same variant would otherwise lock in opposite orders and
		// deadlock each other.
		first, second := req.FromBranchID, req.ToBranchID
		if bytes.Compare(second[:], first[:]) < 0 {
			first, second = second, first
		}
		locked := make(map[uuid.UUID]*inventory.StockLevel, 2)
		for _, branchID := range []uuid.UUID{first, second} {
			level, err := repos.StockLevels().FindByBranchAndVariantForUpdate(ctx, tenantID, branchID, req.ProductVariantID)
			if err != nil {
				return err
			}
			locked[branchID] = level
		}
		source = locked[req.FromBranchID]
		dest = locked[req.ToBranchID]

		if source.AvailableQuantity().LessThan(req.Quantity) {
			return inventory.NewInsufficientStockError(req.Quantity, source.AvailableQuantity())
		}

		var err error
		outEntry, err = inventory.NewLedgerEntry(
			tenantID, req.FromBranchID, source.ID, req.ProductVariantID,
			inventory.MovementTypeOut, req.Quantity, req.UnitCost,
		)
		if err != nil {
			return err
		}
		inEntry, err = inventory.NewLedgerEntry(
			tenantID, req.ToBranchID, dest.ID, req.ProductVariantID,
			inventory.MovementTypeIn, req.Quantity, req.UnitCost,
		)
		if err != nil {
			return err
		}
		for _, e := range []*inventory.LedgerEntry{outEntry, inEntry} {
			e.WithReference(inventory.ReferenceTypeTransfer, transferID).WithNotes(req.Notes)
			if req.OperatorID != nil {
				e.WithCreatedBy(*req.OperatorID)
			}
		}

		source.ApplyDelta(req.Quantity.Neg())
		source.TouchStockDate(outEntry.CreatedAt)
		dest.ApplyDelta(req.Quantity)
		dest.TouchStockDate(inEntry.CreatedAt)

		if err := repos.Ledger().AppendAll(ctx, []*inventory.LedgerEntry{outEntry, inEntry}); err != nil {
			return err
		}
		if err := repos.StockLevels().SaveWithLock(ctx, source); err != nil {
			return err
		}
		return repos.StockLevels().SaveWithLock(ctx, dest)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	source.AddDomainEvent(inventory.NewStockTransferredEvent(source, dest, req.Quantity))
	s.checkLowStock(source)
	s.publishDomainEvents(ctx, source)

	s.logger.Info("stock transferred",
		zap.String("tenant_id", tenantID.String()),
		zap.String("from_branch_id", req.FromBranchID.String()),
		zap.String("to_branch_id", req.ToBranchID.String()),
		zap.String("variant_id", req.ProductVariantID.String()),
		zap.String("quantity", req.Quantity.String()),
		zap.String("transfer_id", transferID))

	return &TransferResult{
		OutEntry:    ToLedgerEntryResponse(outEntry),
		InEntry:     ToLedgerEntryResponse(inEntry),
		SourceLevel: ToStockLevelResponse(source),
		DestLevel:   ToStockLevelResponse(dest),
	}, nil
}

// Reserve places a soft hold on available stock. Reservations write no
// ledger entries; they only move quantity from available to reserved on the
// cached level.
func (s *MovementService) Reserve(ctx context.Context, tenantID uuid.UUID, req ReserveStockRequest) (*StockLevelResponse, error) {
	var level *inventory.StockLevel

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		level, err = repos.StockLevels().FindByBranchAndVariantForUpdate(ctx, tenantID, req.BranchID, req.ProductVariantID)
		if err != nil {
			return err
		}
		if err := level.Reserve(req.Quantity); err != nil {
			return err
		}
		return repos.StockLevels().SaveWithLock(ctx, level)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, level)

	s.logger.Info("stock reserved",
		zap.String("tenant_id", tenantID.String()),
		zap.String("branch_id", req.BranchID.String()),
		zap.String("variant_id", req.ProductVariantID.String()),
		zap.String("quantity", req.Quantity.String()))

	response := ToStockLevelResponse(level)
	return &response, nil
}

// Release returns a previously reserved quantity to available stock.
func (s *MovementService) Release(ctx context.Context, tenantID uuid.UUID, req ReleaseStockRequest) (*StockLevelResponse, error) {
	var level *inventory.StockLevel

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		level, err = repos.StockLevels().FindByBranchAndVariantForUpdate(ctx, tenantID, req.BranchID, req.ProductVariantID)
		if err != nil {
			return err
		}
		if err := level.Release(req.Quantity); err != nil {
			return err
		}
		return repos.StockLevels().SaveWithLock(ctx, level)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, level)

	s.logger.Info("stock released",
		zap.String("tenant_id", tenantID.String()),
		zap.String("branch_id", req.BranchID.String()),
		zap.String("variant_id", req.ProductVariantID.String()),
		zap.String("quantity", req.Quantity.String()))

	response := ToStockLevelResponse(level)
	return &response, nil
}

// ReceiveStock records a stock receipt: it creates the batch lot, appends the
// in ledger entry, and raises the cached on-hand quantity in one transaction.
func (s *MovementService) ReceiveStock(ctx context.Context, tenantID uuid.UUID, req ReceiveStockRequest) (*ReceiveStockResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock_movement", "receive")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrBranchID, req.BranchID.String(),
		telemetry.SpanAttrVariantID, req.ProductVariantID.String(),
		telemetry.SpanAttrQuantity, req.Quantity.String(),
		telemetry.SpanAttrBatchNumber, req.BatchNumber,
	)

	var level *inventory.StockLevel
	var batch *inventory.BatchLot
	var entry *inventory.LedgerEntry

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		level, err = repos.StockLevels().GetOrCreate(ctx, tenantID, req.BranchID, req.ProductVariantID)
		if err != nil {
			return err
		}
		level, err = repos.StockLevels().FindByBranchAndVariantForUpdate(ctx, tenantID, req.BranchID, req.ProductVariantID)
		if err != nil {
			return err
		}

		existing, err := repos.Batches().FindByBatchNumber(ctx, tenantID, req.BranchID, req.ProductVariantID, req.BatchNumber)
		if err != nil && !shared.IsNotFound(err) {
			return err
		}
		if existing != nil {
			return shared.NewDomainError("VALIDATION_ERROR", "Batch number already exists for this branch and variant")
		}

		batch, err = inventory.NewBatchLot(
			tenantID, req.BranchID, req.ProductVariantID,
			req.BatchNumber, req.LotNumber,
			req.Quantity, req.UnitCost,
			req.ManufactureDate, req.ExpiryDate,
		)
		if err != nil {
			return err
		}

		entry, err = inventory.NewLedgerEntry(
			tenantID, req.BranchID, level.ID, req.ProductVariantID,
			inventory.MovementTypeIn, req.Quantity, req.UnitCost,
		)
		if err != nil {
			return err
		}
		entry.WithReference(inventory.ReferenceTypePurchase, req.ReferenceID).
			WithBatch(req.BatchNumber, req.LotNumber, req.ExpiryDate).
			WithNotes(req.Notes)
		if req.OperatorID != nil {
			entry.WithCreatedBy(*req.OperatorID)
		}

		level.ApplyDelta(req.Quantity)
		level.TouchStockDate(entry.CreatedAt)

		if err := repos.Batches().Save(ctx, batch); err != nil {
			return err
		}
		if err := repos.Ledger().Append(ctx, entry); err != nil {
			return err
		}
		return repos.StockLevels().SaveWithLock(ctx, level)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	level.AddDomainEvent(inventory.NewStockReceivedEvent(level, batch))
	s.publishDomainEvents(ctx, level)

	s.logger.Info("stock received",
		zap.String("tenant_id", tenantID.String()),
		zap.String("branch_id", req.BranchID.String()),
		zap.String("variant_id", req.ProductVariantID.String()),
		zap.String("batch_number", req.BatchNumber),
		zap.String("quantity", req.Quantity.String()))

	return &ReceiveStockResult{
		Batch:      ToBatchLotResponse(batch),
		Entry:      ToLedgerEntryResponse(entry),
		StockLevel: ToStockLevelResponse(level),
	}, nil
}

// Allocate plans a batch allocation without committing it. Planning is
// read-only: no quantities change and nothing is persisted. The plan either
// covers the full requested quantity or the call fails with the shortfall.
func (s *MovementService) Allocate(ctx context.Context, tenantID uuid.UUID, req AllocateStockRequest) (*inventory.AllocationPlan, error) {
	batches, err := s.batchRepo.FindAllocatable(ctx, tenantID, req.BranchID, req.ProductVariantID)
	if err != nil {
		return nil, err
	}
	return inventory.Allocate(inventory.AllocationPolicy(req.Policy), batches, req.Quantity)
}

// Fulfill allocates and commits in one transaction: it re-plans against
// locked batch rows, consumes the allocated quantities, appends the out
// ledger entry, and lowers the cached on-hand quantity. Re-planning inside
// the lock means a plan observed moments earlier cannot be committed against
// stock another request already took.
func (s *MovementService) Fulfill(ctx context.Context, tenantID uuid.UUID, req FulfillStockRequest) (*FulfillStockResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock_movement", "fulfill")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrBranchID, req.BranchID.String(),
		telemetry.SpanAttrVariantID, req.ProductVariantID.String(),
		telemetry.SpanAttrQuantity, req.Quantity.String(),
		telemetry.SpanAttrPolicy, string(req.Policy),
	)

	var level *inventory.StockLevel
	var entry *inventory.LedgerEntry
	var plan *inventory.AllocationPlan
	var depleted []*inventory.BatchLot

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		level, err = repos.StockLevels().FindByBranchAndVariantForUpdate(ctx, tenantID, req.BranchID, req.ProductVariantID)
		if err != nil {
			return err
		}

		candidates, err := repos.Batches().FindAllocatable(ctx, tenantID, req.BranchID, req.ProductVariantID)
		if err != nil {
			return err
		}
		plan, err = inventory.Allocate(inventory.AllocationPolicy(req.Policy), candidates, req.Quantity)
		if err != nil {
			return err
		}

		ids := make([]uuid.UUID, len(plan.Lines))
		for i, line := range plan.Lines {
			ids[i] = line.BatchID
		}
		locked, err := repos.Batches().FindByIDsForUpdate(ctx, tenantID, ids)
		if err != nil {
			return err
		}
		batches := make([]*inventory.BatchLot, len(locked))
		for i := range locked {
			batches[i] = &locked[i]
		}
		if err := inventory.ApplyAllocation(batches, plan); err != nil {
			return err
		}
		for _, b := range batches {
			if b.EffectiveStatus() == inventory.BatchStatusDepleted {
				depleted = append(depleted, b)
			}
		}

		entry, err = inventory.NewLedgerEntry(
			tenantID, req.BranchID, level.ID, req.ProductVariantID,
			inventory.MovementTypeOut, req.Quantity, plan.WeightedAverageCost,
		)
		if err != nil {
			return err
		}
		entry.WithReference(inventory.ReferenceTypeOrder, req.ReferenceID).WithNotes(req.Notes)
		if len(plan.Lines) == 1 {
			entry.WithBatch(plan.Lines[0].BatchNumber, plan.Lines[0].LotNumber, nil)
		}
		if req.OperatorID != nil {
			entry.WithCreatedBy(*req.OperatorID)
		}

		if req.ReleaseReserved {
			if err := level.Release(req.Quantity); err != nil {
				return err
			}
		}
		level.ApplyDelta(req.Quantity.Neg())
		level.TouchStockDate(entry.CreatedAt)
		level.AddDomainEvent(inventory.NewStockFulfilledEvent(level, plan))

		if err := repos.Batches().SaveAll(ctx, batches); err != nil {
			return err
		}
		if err := repos.Ledger().Append(ctx, entry); err != nil {
			return err
		}
		return repos.StockLevels().SaveWithLock(ctx, level)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.checkLowStock(level)
	s.publishDomainEvents(ctx, level)
	for _, b := range depleted {
		s.publishEvents(ctx, inventory.NewBatchDepletedEvent(b))
	}

	s.logger.Info("stock fulfilled",
		zap.String("tenant_id", tenantID.String()),
		zap.String("branch_id", req.BranchID.String()),
		zap.String("variant_id", req.ProductVariantID.String()),
		zap.String("policy", req.Policy),
		zap.String("quantity", req.Quantity.String()),
		zap.Int("batches_used", len(plan.Lines)))

	return &FulfillStockResult{
		Plan:       *plan,
		Entry:      ToLedgerEntryResponse(entry),
		StockLevel: ToStockLevelResponse(level),
	}, nil
}

// SetReorderPoint sets the reorder threshold and replenishment quantity
func (s *MovementService) SetReorderPoint(ctx context.Context, tenantID uuid.UUID, req SetReorderPointRequest) (*StockLevelResponse, error) {
	level, err := s.stockLevelRepo.GetOrCreate(ctx, tenantID, req.BranchID, req.ProductVariantID)
	if err != nil {
		return nil, err
	}
	if err := level.SetReorderPoint(req.ReorderLevel, req.ReorderQuantity); err != nil {
		return nil, err
	}
	if err := s.stockLevelRepo.SaveWithLock(ctx, level); err != nil {
		return nil, err
	}

	response := ToStockLevelResponse(level)
	return &response, nil
}

// GetStockLevel returns the stock level for a branch-variant pair
func (s *MovementService) GetStockLevel(ctx context.Context, tenantID, branchID, variantID uuid.UUID) (*StockLevelResponse, error) {
	level, err := s.stockLevelRepo.FindByBranchAndVariant(ctx, tenantID, branchID, variantID)
	if err != nil {
		return nil, err
	}
	response := ToStockLevelResponse(level)
	return &response, nil
}

// ListStockLevels lists stock levels for a tenant. The same criteria feed
// both the page query and the count so the pagination total matches the
// filtered result set.
func (s *MovementService) ListStockLevels(ctx context.Context, tenantID uuid.UUID, filter StockLevelListFilter) ([]StockLevelResponse, int64, error) {
	criteria := make(map[string]interface{})
	if filter.BranchID != nil {
		criteria["branch_id"] = *filter.BranchID
	}
	if filter.ProductVariantID != nil {
		criteria["product_variant_id"] = *filter.ProductVariantID
	}
	if filter.LowStock != nil && *filter.LowStock {
		criteria["low_stock"] = true
	}
	if filter.HasStock != nil && *filter.HasStock {
		criteria["has_stock"] = true
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  criteria,
	}

	levels, err := s.stockLevelRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.stockLevelRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToStockLevelResponses(levels), total, nil
}

// GetBalance recomputes the ledger balance for a branch-variant pair
func (s *MovementService) GetBalance(ctx context.Context, tenantID, branchID, variantID uuid.UUID) (*BalanceResponse, error) {
	balance, err := s.ledgerRepo.Balance(ctx, tenantID, branchID, variantID)
	if err != nil {
		return nil, err
	}
	return &BalanceResponse{
		BranchID:         branchID,
		ProductVariantID: variantID,
		Balance:          balance,
	}, nil
}

// Reconcile compares the cached on-hand quantity against the recomputed
// ledger balance. Drift is expected when signed adjustments drove the raw
// ledger balance negative and the cached value was floored at zero.
func (s *MovementService) Reconcile(ctx context.Context, tenantID, branchID, variantID uuid.UUID) (*ReconciliationReport, error) {
	level, err := s.stockLevelRepo.FindByBranchAndVariant(ctx, tenantID, branchID, variantID)
	if err != nil {
		return nil, err
	}
	balance, err := s.ledgerRepo.Balance(ctx, tenantID, branchID, variantID)
	if err != nil {
		return nil, err
	}

	drift := level.OnHandQuantity.Sub(balance)
	report := &ReconciliationReport{
		BranchID:         branchID,
		ProductVariantID: variantID,
		OnHandQuantity:   level.OnHandQuantity,
		LedgerBalance:    balance,
		Drift:            drift,
		InSync:           drift.IsZero(),
		CheckedAt:        time.Now(),
	}

	if !report.InSync {
		s.logger.Warn("stock level drift detected",
			zap.String("tenant_id", tenantID.String()),
			zap.String("branch_id", branchID.String()),
			zap.String("variant_id", variantID.String()),
			zap.String("on_hand", level.OnHandQuantity.String()),
			zap.String("ledger_balance", balance.String()))
	}
	return report, nil
}

// ListLedger lists ledger entries for a tenant, newest first. The primary
// criterion selects the indexed query; the remaining criteria ride along in
// the filter, and the count sees the full set so the pagination total
// matches the listed page.
func (s *MovementService) ListLedger(ctx context.Context, tenantID uuid.UUID, filter LedgerListFilter) ([]LedgerEntryResponse, int64, error) {
	criteria := make(map[string]interface{})
	if filter.BranchID != nil {
		criteria["branch_id"] = *filter.BranchID
	}
	if filter.ProductVariantID != nil {
		criteria["product_variant_id"] = *filter.ProductVariantID
	}
	if filter.MovementType != "" {
		criteria["movement_type"] = filter.MovementType
	}
	if filter.BatchNumber != "" {
		criteria["batch_number"] = filter.BatchNumber
	}
	if filter.StartDate != nil {
		criteria["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		criteria["end_date"] = *filter.EndDate
	}

	listCriteria := make(map[string]interface{}, len(criteria))
	for k, v := range criteria {
		listCriteria[k] = v
	}
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Filters:  listCriteria,
	}

	var entries []inventory.LedgerEntry
	var err error
	switch {
	case filter.StartDate != nil && filter.EndDate != nil:
		delete(listCriteria, "start_date")
		delete(listCriteria, "end_date")
		entries, err = s.ledgerRepo.FindByDateRange(ctx, tenantID, *filter.StartDate, *filter.EndDate, domainFilter)
	case filter.BatchNumber != "":
		delete(listCriteria, "batch_number")
		entries, err = s.ledgerRepo.FindByBatchNumber(ctx, tenantID, filter.BatchNumber, domainFilter)
	case filter.ProductVariantID != nil:
		delete(listCriteria, "product_variant_id")
		entries, err = s.ledgerRepo.FindByVariant(ctx, tenantID, *filter.ProductVariantID, domainFilter)
	case filter.BranchID != nil:
		delete(listCriteria, "branch_id")
		entries, err = s.ledgerRepo.FindByBranch(ctx, tenantID, *filter.BranchID, domainFilter)
	default:
		return nil, 0, shared.NewDomainError("VALIDATION_ERROR", "Ledger queries require a branch, variant, batch number or date range filter")
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.ledgerRepo.CountForTenant(ctx, tenantID, shared.Filter{Filters: criteria})
	if err != nil {
		return nil, 0, err
	}

	return ToLedgerEntryResponses(entries), total, nil
}

// ListExpiringBatches lists batches with remaining stock expiring within the window
func (s *MovementService) ListExpiringBatches(ctx context.Context, tenantID uuid.UUID, within time.Duration) ([]BatchLotResponse, error) {
	batches, err := s.batchRepo.FindExpiringSoon(ctx, tenantID, within, shared.DefaultFilter())
	if err != nil {
		return nil, err
	}
	return ToBatchLotResponses(batches), nil
}

// ListExpiredBatches lists expired batches that still hold stock
func (s *MovementService) ListExpiredBatches(ctx context.Context, tenantID uuid.UUID) ([]BatchLotResponse, error) {
	batches, err := s.batchRepo.FindExpired(ctx, tenantID, shared.DefaultFilter())
	if err != nil {
		return nil, err
	}
	return ToBatchLotResponses(batches), nil
}
