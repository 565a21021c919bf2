package stock

import (
	"testing"

	"glowdesk/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestReserve_AllOrNothing(t *testing.T) {
	availability := map[string]int{
		"shampoo-250": 2,
		"conditioner": 10,
	}

	// Stock at 2, order requests 5: the whole reservation fails.
	err := Reserve([]model.OrderItemRequest{
		{ProductID: "shampoo-250", Quantity: 5},
		{ProductID: "conditioner", Quantity: 1},
	}, availability)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, model.ErrCodeInsufficientStock, stockErr.DomainCode())
	require.Len(t, stockErr.Shortages, 1)
	assert.Equal(t, "shampoo-250", stockErr.Shortages[0].ProductID)
	assert.Equal(t, 5, stockErr.Shortages[0].Requested)
	assert.Equal(t, 2, stockErr.Shortages[0].Available)
}

func TestReserve_UnknownProductIsAShortage(t *testing.T) {
	err := Reserve([]model.OrderItemRequest{
		{ProductID: "ghost", Quantity: 1},
	}, map[string]int{})

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 0, stockErr.Shortages[0].Available)
}

func TestReserve_Succeeds(t *testing.T) {
	err := Reserve([]model.OrderItemRequest{
		{ProductID: "shampoo-250", Quantity: 2},
	}, map[string]int{"shampoo-250": 2})
	assert.NoError(t, err)
}

func TestApplySale(t *testing.T) {
	res := ApplySale(10, 3)
	assert.Equal(t, 7, res.NewQuantity)
	assert.Equal(t, -3, res.Delta)
	assert.False(t, res.Clamped)
}

func TestApplySale_ClampsAtZero(t *testing.T) {
	res := ApplySale(2, 5)
	assert.Equal(t, 0, res.NewQuantity)
	assert.Equal(t, -2, res.Delta, "ledger delta records what actually left the shelf")
	assert.True(t, res.Clamped)
}

func TestApplyRestock(t *testing.T) {
	cap := 10

	newQty, delta := ApplyRestock(4, 3, nil)
	assert.Equal(t, 7, newQty)
	assert.Equal(t, 3, delta)

	newQty, delta = ApplyRestock(8, 5, &cap)
	assert.Equal(t, 10, newQty)
	assert.Equal(t, 2, delta, "restock above the cap is truncated")

	newQty, delta = ApplyRestock(10, 5, &cap)
	assert.Equal(t, 10, newQty)
	assert.Equal(t, 0, delta)
}

// Property: for any sequence of sales and restocks the level never goes
// negative and always equals the running sum of the emitted ledger deltas.
func TestLedger_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		level := rapid.IntRange(0, 50).Draw(t, "initial")
		var movements []model.StockMovement

		// Seed the ledger with the opening adjustment.
		movements = append(movements, model.StockMovement{
			ProductID: "p1", Delta: level, Type: model.MovementAdjustment,
		})

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			qty := rapid.IntRange(1, 20).Draw(t, "qty")

			if rapid.Bool().Draw(t, "sale") {
				res := ApplySale(level, qty)
				level = res.NewQuantity
				movements = append(movements, model.StockMovement{
					ProductID: "p1", Delta: res.Delta, Type: model.MovementSale,
				})
			} else {
				var cap *int
				if rapid.Bool().Draw(t, "capped") {
					c := rapid.IntRange(10, 100).Draw(t, "cap")
					cap = &c
				}
				newQty, delta := ApplyRestock(level, qty, cap)
				level = newQty
				movements = append(movements, model.StockMovement{
					ProductID: "p1", Delta: delta, Type: model.MovementRefund,
				})
			}

			require.GreaterOrEqual(t, level, 0, "stock level must never go negative")
			require.Equal(t, level, Reconcile(movements), "level must equal the sum of movements")
		}
	})
}
