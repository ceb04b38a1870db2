package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeBatch(t *testing.T, batchNumber string, remaining int64, unitCost float64, receivedAt time.Time, expiry *time.Time) BatchLot {
	t.Helper()
	batch, err := NewBatchLot(uuid.New(), uuid.New(), uuid.New(),
		batchNumber, "", decimal.NewFromInt(remaining), decimal.NewFromFloat(unitCost), nil, expiry)
	require.NoError(t, err)
	batch.CreatedAt = receivedAt
	return *batch
}

func TestAllocate_FIFO(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("consumes oldest batch first", func(t *testing.T) {
		batches := []BatchLot{
			makeBatch(t, "B2", 5, 3.0, base.AddDate(0, 1, 0), nil),
			makeBatch(t, "B1", 10, 2.0, base, nil),
		}

		plan, err := AllocateFIFO(batches, decimal.NewFromInt(12))
		require.NoError(t, err)
		require.Len(t, plan.Lines, 2)

		assert.Equal(t, "B1", plan.Lines[0].BatchNumber)
		assert.True(t, plan.Lines[0].Quantity.Equal(decimal.NewFromInt(10)))
		assert.Equal(t, "B2", plan.Lines[1].BatchNumber)
		assert.True(t, plan.Lines[1].Quantity.Equal(decimal.NewFromInt(2)))

		assert.True(t, plan.TotalQuantity.Equal(decimal.NewFromInt(12)))
		// 10*2.0 + 2*3.0 = 26
		assert.True(t, plan.TotalCost.Equal(decimal.NewFromInt(26)))
	})

	t.Run("single batch covers the request", func(t *testing.T) {
		batches := []BatchLot{
			makeBatch(t, "B1", 10, 2.0, base, nil),
			makeBatch(t, "B2", 5, 3.0, base.AddDate(0, 1, 0), nil),
		}

		plan, err := AllocateFIFO(batches, decimal.NewFromInt(7))
		require.NoError(t, err)
		require.Len(t, plan.Lines, 1)
		assert.Equal(t, "B1", plan.Lines[0].BatchNumber)
		assert.True(t, plan.Lines[0].Quantity.Equal(decimal.NewFromInt(7)))
	})

	t.Run("shortfall yields no partial plan", func(t *testing.T) {
		batches := []BatchLot{
			makeBatch(t, "B1", 10, 2.0, base, nil),
			makeBatch(t, "B2", 5, 3.0, base.AddDate(0, 1, 0), nil),
		}

		plan, err := AllocateFIFO(batches, decimal.NewFromInt(16))
		require.Error(t, err)
		assert.Nil(t, plan)

		var insufficientErr *InsufficientStockError
		require.ErrorAs(t, err, &insufficientErr)
		assert.True(t, insufficientErr.Requested.Equal(decimal.NewFromInt(16)))
		assert.True(t, insufficientErr.Available.Equal(decimal.NewFromInt(15)))

		// Planning never mutates batch quantities
		assert.True(t, batches[0].QuantityRemaining.Equal(decimal.NewFromInt(10)))
		assert.True(t, batches[1].QuantityRemaining.Equal(decimal.NewFromInt(5)))
	})

	t.Run("skips depleted and expired batches", func(t *testing.T) {
		past := base.AddDate(-1, 0, 0)
		depleted := makeBatch(t, "B0", 5, 1.0, base, nil)
		require.NoError(t, (&depleted).Consume(decimal.NewFromInt(5)))

		batches := []BatchLot{
			depleted,
			makeBatch(t, "BX", 20, 1.0, base, &past),
			makeBatch(t, "B1", 10, 2.0, base.AddDate(0, 2, 0), nil),
		}

		plan, err := AllocateFIFO(batches, decimal.NewFromInt(8))
		require.NoError(t, err)
		require.Len(t, plan.Lines, 1)
		assert.Equal(t, "B1", plan.Lines[0].BatchNumber)
	})
}

func TestAllocate_FEFO(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	soon := time.Now().AddDate(0, 1, 0)
	later := time.Now().AddDate(0, 6, 0)

	t.Run("earliest expiry first", func(t *testing.T) {
		batches := []BatchLot{
			makeBatch(t, "LATER", 10, 2.0, base, &later),
			makeBatch(t, "SOON", 10, 3.0, base.AddDate(0, 1, 0), &soon),
		}

		plan, err := AllocateFEFO(batches, decimal.NewFromInt(12))
		require.NoError(t, err)
		require.Len(t, plan.Lines, 2)
		assert.Equal(t, "SOON", plan.Lines[0].BatchNumber)
		assert.True(t, plan.Lines[0].Quantity.Equal(decimal.NewFromInt(10)))
		assert.Equal(t, "LATER", plan.Lines[1].BatchNumber)
		assert.True(t, plan.Lines[1].Quantity.Equal(decimal.NewFromInt(2)))
	})

	t.Run("batches without expiry sort last", func(t *testing.T) {
		batches := []BatchLot{
			makeBatch(t, "NOEXP", 10, 1.0, base, nil),
			makeBatch(t, "EXP", 10, 1.0, base.AddDate(0, 1, 0), &later),
		}

		plan, err := AllocateFEFO(batches, decimal.NewFromInt(15))
		require.NoError(t, err)
		require.Len(t, plan.Lines, 2)
		assert.Equal(t, "EXP", plan.Lines[0].BatchNumber)
		assert.Equal(t, "NOEXP", plan.Lines[1].BatchNumber)
	})

	t.Run("ties break by receipt time", func(t *testing.T) {
		batches := []BatchLot{
			makeBatch(t, "NEWER", 10, 1.0, base.AddDate(0, 2, 0), &later),
			makeBatch(t, "OLDER", 10, 1.0, base, &later),
		}

		plan, err := AllocateFEFO(batches, decimal.NewFromInt(5))
		require.NoError(t, err)
		require.Len(t, plan.Lines, 1)
		assert.Equal(t, "OLDER", plan.Lines[0].BatchNumber)
	})
}

func TestAllocate_Validation(t *testing.T) {
	batches := []BatchLot{makeBatch(t, "B1", 10, 1.0, time.Now(), nil)}

	t.Run("rejects unknown policy", func(t *testing.T) {
		_, err := Allocate(AllocationPolicy("LIFO"), batches, decimal.NewFromInt(1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Unknown allocation policy")
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := AllocateFIFO(batches, decimal.Zero)
		assert.Error(t, err)
		_, err = AllocateFIFO(batches, decimal.NewFromInt(-3))
		assert.Error(t, err)
	})
}

func TestAllocate_WeightedAverageCost(t *testing.T) {
	base := time.Now()
	batches := []BatchLot{
		makeBatch(t, "B1", 10, 2.0, base, nil),
		makeBatch(t, "B2", 10, 4.0, base.Add(time.Hour), nil),
	}

	plan, err := AllocateFIFO(batches, decimal.NewFromInt(15))
	require.NoError(t, err)
	// (10*2 + 5*4) / 15 = 40/15 = 2.6667
	assert.True(t, plan.WeightedAverageCost.Equal(decimal.NewFromFloat(2.6667)))
}

func TestApplyAllocation(t *testing.T) {
	base := time.Now()

	t.Run("commits the plan against batches", func(t *testing.T) {
		b1 := makeBatch(t, "B1", 10, 2.0, base, nil)
		b2 := makeBatch(t, "B2", 5, 3.0, base.Add(time.Hour), nil)

		plan, err := AllocateFIFO([]BatchLot{b1, b2}, decimal.NewFromInt(12))
		require.NoError(t, err)

		err = ApplyAllocation([]*BatchLot{&b1, &b2}, plan)
		require.NoError(t, err)

		assert.True(t, b1.QuantityRemaining.IsZero())
		assert.Equal(t, BatchStatusDepleted, b1.Status)
		assert.True(t, b2.QuantityRemaining.Equal(decimal.NewFromInt(3)))
	})

	t.Run("fails when a planned batch is missing", func(t *testing.T) {
		b1 := makeBatch(t, "B1", 10, 2.0, base, nil)
		plan, err := AllocateFIFO([]BatchLot{b1}, decimal.NewFromInt(5))
		require.NoError(t, err)

		err = ApplyAllocation([]*BatchLot{}, plan)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Batch not found")
	})

	t.Run("rejects nil plan", func(t *testing.T) {
		assert.Error(t, ApplyAllocation(nil, nil))
	})
}

func TestTotalAllocatable(t *testing.T) {
	base := time.Now()
	past := base.AddDate(0, 0, -1)

	depleted := makeBatch(t, "B0", 5, 1.0, base, nil)
	require.NoError(t, (&depleted).Consume(decimal.NewFromInt(5)))

	batches := []BatchLot{
		makeBatch(t, "B1", 10, 1.0, base, nil),
		makeBatch(t, "B2", 7, 1.0, base, nil),
		depleted,
		makeBatch(t, "BX", 100, 1.0, base, &past),
	}

	assert.True(t, TotalAllocatable(batches).Equal(decimal.NewFromInt(17)))
}
