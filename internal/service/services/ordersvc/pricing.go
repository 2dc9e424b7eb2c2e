package ordersvc

import "github.com/shopspring/decimal"

// DeliveryFee is the flat delivery surcharge.
var DeliveryFee = decimal.NewFromInt(2)

// MaxAmount is the exclusive upper bound of a stored amount: NUMERIC(14, 2).
var MaxAmount = decimal.New(1, 12)

type totals struct {
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
	Delivery   decimal.Decimal
}

// computeTotals adds the delivery fee once per line item, not once per order.
// unit_price is the plain sum of item unit prices.
func computeTotals(items []CreateOrderItem) totals {
	t := totals{
		UnitPrice:  decimal.Zero,
		TotalPrice: decimal.Zero,
		Delivery:   DeliveryFee,
	}

	for _, item := range items {
		t.TotalPrice = t.TotalPrice.Add(lineTotal(item)).Add(t.Delivery)
		t.UnitPrice = t.UnitPrice.Add(item.price())
	}

	return t
}

func lineTotal(item CreateOrderItem) decimal.Decimal {
	return item.price().Mul(decimal.NewFromInt(int64(item.Quantity)))
}
