package handler

import (
	"strconv"
	"time"

	inventoryapp "github.com/branchstock/backend/internal/application/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// parseDateTime parses a datetime string in various formats
func parseDateTime(s string) (time.Time, error) {
	// Try RFC3339 first
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	// Try ISO date format
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	// Try datetime without timezone
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t, nil
	}
	// Default to RFC3339 parsing error
	return time.Parse(time.RFC3339, s)
}

// StockHandler handles stock ledger API endpoints
type StockHandler struct {
	BaseHandler
	movements *inventoryapp.MovementService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(movements *inventoryapp.MovementService) *StockHandler {
	return &StockHandler{
		movements: movements,
	}
}

// ===================== Stock Level Queries =====================

// ListStockLevels godoc
// @ID           listStockLevels
// @Summary      List stock levels
// @Description  Lists cached stock levels for the tenant, optionally filtered by branch, variant, or low-stock state
// @Tags         stock
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Success      200 {object} APIResponse[[]inventoryapp.StockLevelResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /stock/levels [get]
func (h *StockHandler) ListStockLevels(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filter := inventoryapp.StockLevelListFilter{
		Page:     1,
		PageSize: 20,
	}
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	levels, total, err := h.movements.ListStockLevels(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, levels, total, filter.Page, filter.PageSize)
}

// GetStockLevel godoc
// @ID           getStockLevel
// @Summary      Get a stock level
// @Description  Looks up the stock level for a branch-variant pair
// @Tags         stock
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        branch_id query string true "Branch ID"
// @Param        product_variant_id query string true "Product variant ID"
// @Success      200 {object} APIResponse[inventoryapp.StockLevelResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /stock/levels/lookup [get]
func (h *StockHandler) GetStockLevel(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	branchID, variantID, ok := h.branchVariantQuery(c)
	if !ok {
		return
	}

	level, err := h.movements.GetStockLevel(c.Request.Context(), tenantID, branchID, variantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, level)
}

// GetBalance godoc
// @ID           getLedgerBalance
// @Summary      Get ledger balance
// @Description  Recomputes the on-hand balance for a branch-variant pair from the stock ledger
// @Tags         stock
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        branch_id query string true "Branch ID"
// @Param        product_variant_id query string true "Product variant ID"
// @Success      200 {object} APIResponse[inventoryapp.BalanceResponse]
// @Router       /stock/ledger/balance [get]
func (h *StockHandler) GetBalance(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	branchID, variantID, ok := h.branchVariantQuery(c)
	if !ok {
		return
	}

	balance, err := h.movements.GetBalance(c.Request.Context(), tenantID, branchID, variantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, balance)
}

// Reconcile godoc
// @ID           reconcileStockLevel
// @Summary      Reconcile a stock level
// @Description  Compares the cached on-hand quantity against the recomputed ledger balance and reports drift
// @Tags         stock
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        branch_id query string true "Branch ID"
// @Param        product_variant_id query string true "Product variant ID"
// @Success      200 {object} APIResponse[inventoryapp.ReconciliationReport]
// @Router       /stock/ledger/reconcile [get]
func (h *StockHandler) Reconcile(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	branchID, variantID, ok := h.branchVariantQuery(c)
	if !ok {
		return
	}

	report, err := h.movements.Reconcile(c.Request.Context(), tenantID, branchID, variantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, report)
}

// ===================== Ledger Queries =====================

// ListLedger godoc
// @ID           listLedgerEntries
// @Summary      List ledger entries
// @Description  Lists immutable stock ledger entries filtered by branch, variant, batch number, or date range
// @Tags         stock
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Success      200 {object} APIResponse[[]inventoryapp.LedgerEntryResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /stock/ledger [get]
func (h *StockHandler) ListLedger(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filter := inventoryapp.LedgerListFilter{
		Page:     1,
		PageSize: 20,
	}
	if page := c.Query("page"); page != "" {
		if n, err := strconv.Atoi(page); err == nil && n > 0 {
			filter.Page = n
		}
	}
	if pageSize := c.Query("page_size"); pageSize != "" {
		if n, err := strconv.Atoi(pageSize); err == nil && n > 0 && n <= 100 {
			filter.PageSize = n
		}
	}
	if branchID := c.Query("branch_id"); branchID != "" {
		id, err := uuid.Parse(branchID)
		if err != nil {
			h.BadRequest(c, "Invalid branch ID format")
			return
		}
		filter.BranchID = &id
	}
	if variantID := c.Query("product_variant_id"); variantID != "" {
		id, err := uuid.Parse(variantID)
		if err != nil {
			h.BadRequest(c, "Invalid product variant ID format")
			return
		}
		filter.ProductVariantID = &id
	}
	filter.MovementType = c.Query("movement_type")
	filter.BatchNumber = c.Query("batch_number")
	if start := c.Query("start_date"); start != "" {
		t, err := parseDateTime(start)
		if err != nil {
			h.BadRequest(c, "Invalid start date format")
			return
		}
		filter.StartDate = &t
	}
	if end := c.Query("end_date"); end != "" {
		t, err := parseDateTime(end)
		if err != nil {
			h.BadRequest(c, "Invalid end date format")
			return
		}
		filter.EndDate = &t
	}

	entries, total, err := h.movements.ListLedger(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, entries, total, filter.Page, filter.PageSize)
}

// ===================== Batch Queries =====================

// ListExpiringBatches godoc
// @ID           listExpiringBatches
// @Summary      List batches expiring soon
// @Description  Lists active batch lots whose expiry date falls within the given window
// @Tags         stock
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        within_days query int false "Window in days (default 30)"
// @Success      200 {object} APIResponse[[]inventoryapp.BatchLotResponse]
// @Router       /stock/batches/expiring [get]
func (h *StockHandler) ListExpiringBatches(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	withinDays := 30
	if v := c.Query("within_days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.BadRequest(c, "within_days must be a positive integer")
			return
		}
		withinDays = n
	}

	batches, err := h.movements.ListExpiringBatches(c.Request.Context(), tenantID, time.Duration(withinDays)*24*time.Hour)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, batches)
}

// ListExpiredBatches godoc
// @ID           listExpiredBatches
// @Summary      List expired batches
// @Description  Lists batch lots whose expiry date has passed but still hold remaining quantity
// @Tags         stock
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Success      200 {object} APIResponse[[]inventoryapp.BatchLotResponse]
// @Router       /stock/batches/expired [get]
func (h *StockHandler) ListExpiredBatches(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	batches, err := h.movements.ListExpiredBatches(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, batches)
}

// ===================== Stock Movements =====================

// Adjust godoc
// @ID           adjustStock
// @Summary      Adjust stock
// @Description  Applies a signed adjustment and posts a ledger entry with the mandatory reason
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        request body inventoryapp.AdjustStockRequest true "Adjustment request"
// @Success      200 {object} APIResponse[inventoryapp.LedgerEntryResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /stock/adjust [post]
func (h *StockHandler) Adjust(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req inventoryapp.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	entry, err := h.movements.Adjust(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, entry)
}

// Transfer godoc
// @ID           transferStock
// @Summary      Transfer stock between branches
// @Description  Atomically posts an out entry at the source branch and an in entry at the destination, sharing a transfer reference
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        request body inventoryapp.TransferStockRequest true "Transfer request"
// @Success      200 {object} APIResponse[inventoryapp.TransferResult]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /stock/transfer [post]
func (h *StockHandler) Transfer(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req inventoryapp.TransferStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.movements.Transfer(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Reserve godoc
// @ID           reserveStock
// @Summary      Reserve stock
// @Description  Places a soft hold on available stock without posting a ledger entry
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        request body inventoryapp.ReserveStockRequest true "Reservation request"
// @Success      200 {object} APIResponse[inventoryapp.StockLevelResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /stock/reserve [post]
func (h *StockHandler) Reserve(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req inventoryapp.ReserveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	level, err := h.movements.Reserve(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, level)
}

// Release godoc
// @ID           releaseStock
// @Summary      Release reserved stock
// @Description  Releases a soft hold placed by a prior reservation
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        request body inventoryapp.ReleaseStockRequest true "Release request"
// @Success      200 {object} APIResponse[inventoryapp.StockLevelResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /stock/release [post]
func (h *StockHandler) Release(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req inventoryapp.ReleaseStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	level, err := h.movements.Release(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, level)
}

// Receive godoc
// @ID           receiveStock
// @Summary      Receive stock
// @Description  Records a stock receipt, creating a batch lot and posting an in entry
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        request body inventoryapp.ReceiveStockRequest true "Receipt request"
// @Success      200 {object} APIResponse[inventoryapp.ReceiveStockResult]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /stock/receive [post]
func (h *StockHandler) Receive(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req inventoryapp.ReceiveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.movements.ReceiveStock(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Allocate godoc
// @ID           allocateStock
// @Summary      Plan a batch allocation
// @Description  Computes a FIFO or FEFO allocation plan against current batch lots without committing anything
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        request body inventoryapp.AllocateStockRequest true "Allocation request"
// @Success      200 {object} APIResponse[inventory.AllocationPlan]
// @Failure      422 {object} ErrorResponse
// @Router       /stock/allocate [post]
func (h *StockHandler) Allocate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req inventoryapp.AllocateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	plan, err := h.movements.Allocate(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plan)
}

// Fulfill godoc
// @ID           fulfillStock
// @Summary      Fulfill stock
// @Description  Allocates batches under row locks, consumes them, and posts an out entry atomically
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        request body inventoryapp.FulfillStockRequest true "Fulfillment request"
// @Success      200 {object} APIResponse[inventoryapp.FulfillStockResult]
// @Failure      422 {object} ErrorResponse
// @Router       /stock/fulfill [post]
func (h *StockHandler) Fulfill(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req inventoryapp.FulfillStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.movements.Fulfill(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// SetReorderPoint godoc
// @ID           setReorderPoint
// @Summary      Set reorder thresholds
// @Description  Sets the reorder level and reorder quantity for a branch-variant pair
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        request body inventoryapp.SetReorderPointRequest true "Reorder point request"
// @Success      200 {object} APIResponse[inventoryapp.StockLevelResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /stock/reorder-point [put]
func (h *StockHandler) SetReorderPoint(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req inventoryapp.SetReorderPointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	level, err := h.movements.SetReorderPoint(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, level)
}

// branchVariantQuery parses the branch_id and product_variant_id query params
func (h *StockHandler) branchVariantQuery(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	branchID, err := uuid.Parse(c.Query("branch_id"))
	if err != nil {
		h.BadRequest(c, "Invalid branch ID format")
		return uuid.Nil, uuid.Nil, false
	}

	variantID, err := uuid.Parse(c.Query("product_variant_id"))
	if err != nil {
		h.BadRequest(c, "Invalid product variant ID format")
		return uuid.Nil, uuid.Nil, false
	}

	return branchID, variantID, true
}
