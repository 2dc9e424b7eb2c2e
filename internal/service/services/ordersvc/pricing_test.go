package ordersvc

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name      string
		items     []CreateOrderItem
		unitPrice string
		total     string
	}{
		{
			name: "two items",
			items: []CreateOrderItem{
				{Quantity: 2, UnitPrice: price("10")},
				{Quantity: 1, UnitPrice: price("5")},
			},
			unitPrice: "15",
			total:     "29",
		},
		{
			name:      "single free item still pays delivery",
			items:     []CreateOrderItem{{Quantity: 3, UnitPrice: price("0")}},
			unitPrice: "0",
			total:     "2",
		},
		{
			name: "fractional prices",
			items: []CreateOrderItem{
				{Quantity: 3, UnitPrice: price("0.10")},
				{Quantity: 1, UnitPrice: price("0.20")},
			},
			unitPrice: "0.3",
			total:     "4.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeTotals(tt.items)

			assert.True(t, decimal.RequireFromString(tt.unitPrice).Equal(got.UnitPrice), got.UnitPrice.String())
			assert.True(t, decimal.RequireFromString(tt.total).Equal(got.TotalPrice), got.TotalPrice.String())
			assert.True(t, DeliveryFee.Equal(got.Delivery))
		})
	}
}

func TestComputeTotalsChargesDeliveryPerItem(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))

	for range 200 {
		n := 1 + rnd.Intn(8)
		items := make([]CreateOrderItem, n)
		wantTotal := decimal.Zero
		wantUnit := decimal.Zero
		for i := range items {
			unit := decimal.New(int64(rnd.Intn(100000)), -2)
			items[i] = CreateOrderItem{
				Quantity:  1 + rnd.Intn(10),
				UnitPrice: &unit,
			}
			wantTotal = wantTotal.Add(unit.Mul(decimal.NewFromInt(int64(items[i].Quantity))))
			wantUnit = wantUnit.Add(unit)
		}
		wantTotal = wantTotal.Add(DeliveryFee.Mul(decimal.NewFromInt(int64(n))))

		got := computeTotals(items)

		assert.True(t, wantTotal.Equal(got.TotalPrice), "total %s != %s", got.TotalPrice, wantTotal)
		assert.True(t, wantUnit.Equal(got.UnitPrice), "unit %s != %s", got.UnitPrice, wantUnit)
	}
}
