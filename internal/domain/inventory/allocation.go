package inventory

import (
	"sort"

	"github.com/branchstock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationPolicy selects the batch ordering for depleting stock
type AllocationPolicy string

const (
	// AllocationPolicyFIFO consumes the oldest receipt first
	AllocationPolicyFIFO AllocationPolicy = "FIFO"
	// AllocationPolicyFEFO consumes the earliest-expiring batch first
	AllocationPolicyFEFO AllocationPolicy = "FEFO"
)

// IsValid returns true if the policy is known
func (p AllocationPolicy) IsValid() bool {
	return p == AllocationPolicyFIFO || p == AllocationPolicyFEFO
}

// String returns the string representation
func (p AllocationPolicy) String() string {
	return string(p)
}

// AllocationLine is one batch's contribution to an allocation plan
type AllocationLine struct {
	BatchID     uuid.UUID       `json:"batch_id"`
	BatchNumber string          `json:"batch_number"`
	LotNumber   string          `json:"lot_number,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

// AllocationPlan is the ordered result of a batch allocation. On success the
// line quantities always sum to the requested quantity.
type AllocationPlan struct {
	Policy              AllocationPolicy `json:"policy"`
	Lines               []AllocationLine `json:"lines"`
	TotalQuantity       decimal.Decimal  `json:"total_quantity"`
	TotalCost           decimal.Decimal  `json:"total_cost"`
	WeightedAverageCost decimal.Decimal  `json:"weighted_average_cost"`
}

// Allocate walks allocatable batches in policy order and takes
// min(batch remaining, still needed) from each until the request is
// satisfied. Planning is read-only: batch quantities are not touched here.
// A shortfall across all candidates fails with InsufficientStock and yields
// no plan; partial allocations are never returned.
func Allocate(policy AllocationPolicy, batches []BatchLot, requested decimal.Decimal) (*AllocationPlan, error) {
	if !policy.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unknown allocation policy")
	}
	if requested.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Requested quantity must be positive")
	}

	candidates := allocatableBatches(batches)
	sortByPolicy(policy, candidates)

	lines := make([]AllocationLine, 0, len(candidates))
	remaining := requested
	totalCost := decimal.Zero

	for _, batch := range candidates {
		if remaining.IsZero() {
			break
		}
		take := decimal.Min(remaining, batch.QuantityRemaining)
		lines = append(lines, AllocationLine{
			BatchID:     batch.ID,
			BatchNumber: batch.BatchNumber,
			LotNumber:   batch.LotNumber,
			Quantity:    take,
			UnitCost:    batch.UnitCost,
		})
		totalCost = totalCost.Add(take.Mul(batch.UnitCost))
		remaining = remaining.Sub(take)
	}

	if remaining.GreaterThan(decimal.Zero) {
		return nil, NewInsufficientStockError(requested, requested.Sub(remaining))
	}

	return &AllocationPlan{
		Policy:              policy,
		Lines:               lines,
		TotalQuantity:       requested,
		TotalCost:           totalCost,
		WeightedAverageCost: totalCost.Div(requested).Round(4),
	}, nil
}

// AllocateFIFO plans an allocation ordered by receipt time, oldest first
func AllocateFIFO(batches []BatchLot, requested decimal.Decimal) (*AllocationPlan, error) {
	return Allocate(AllocationPolicyFIFO, batches, requested)
}

// AllocateFEFO plans an allocation ordered by expiry date (earliest first,
// batches without expiry last), then receipt time
func AllocateFEFO(batches []BatchLot, requested decimal.Decimal) (*AllocationPlan, error) {
	return Allocate(AllocationPolicyFEFO, batches, requested)
}

// ApplyAllocation commits a plan against the given batches, decrementing
// each batch's remaining quantity. The caller is responsible for running
// this inside the same transaction as the corresponding ledger out entry.
func ApplyAllocation(batches []*BatchLot, plan *AllocationPlan) error {
	if plan == nil {
		return shared.NewDomainError("VALIDATION_ERROR", "Allocation plan cannot be nil")
	}

	byID := make(map[uuid.UUID]*BatchLot, len(batches))
	for _, b := range batches {
		byID[b.ID] = b
	}

	for _, line := range plan.Lines {
		batch, ok := byID[line.BatchID]
		if !ok {
			return shared.NewDomainError("NOT_FOUND", "Batch not found: "+line.BatchID.String())
		}
		if err := batch.Consume(line.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// TotalAllocatable sums the remaining quantity across allocatable batches
func TotalAllocatable(batches []BatchLot) decimal.Decimal {
	total := decimal.Zero
	for _, b := range batches {
		if b.IsAllocatable() {
			total = total.Add(b.QuantityRemaining)
		}
	}
	return total
}

func allocatableBatches(batches []BatchLot) []BatchLot {
	out := make([]BatchLot, 0, len(batches))
	for _, b := range batches {
		if b.IsAllocatable() {
			out = append(out, b)
		}
	}
	return out
}

func sortByPolicy(policy AllocationPolicy, batches []BatchLot) {
	switch policy {
	case AllocationPolicyFEFO:
		sort.SliceStable(batches, func(i, j int) bool {
			// Earliest expiry first; batches without expiry sort last
			ei, ej := batches[i].ExpiryDate, batches[j].ExpiryDate
			if ei != nil && ej != nil && !ei.Equal(*ej) {
				return ei.Before(*ej)
			}
			if ei != nil && ej == nil {
				return true
			}
			if ei == nil && ej != nil {
				return false
			}
			return batches[i].CreatedAt.Before(batches[j].CreatedAt)
		})
	default:
		sort.SliceStable(batches, func(i, j int) bool {
			return batches[i].CreatedAt.Before(batches[j].CreatedAt)
		})
	}
}
