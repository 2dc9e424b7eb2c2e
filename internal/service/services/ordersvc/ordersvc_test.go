package ordersvc

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/corray333/storefront-order/internal/service/models/actor"
	"github.com/corray333/storefront-order/internal/service/models/customer"
	"github.com/corray333/storefront-order/internal/service/models/event"
	"github.com/corray333/storefront-order/internal/service/models/order"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = actor.Actor{CustomerID: "cust-alice", Username: "alice", Email: "alice@example.com"}
	bob   = actor.Actor{CustomerID: "cust-bob", Username: "bob", Email: "bob@example.com"}
	root  = actor.Actor{CustomerID: "cust-root", Username: "root", Admin: true}
)

type fixture struct {
	svc     *OrderService
	store   *memStore
	auditor *memAuditor
	clock   *testClock
	idem    *memIdempotency
}

func newFixture(t *testing.T, opts ...option) *fixture {
	t.Helper()

	store := newMemStore()
	auditor := &memAuditor{}
	clock := newTestClock()
	idem := newMemIdempotency()
	customers := &memCustomerRepo{customers: map[string]customer.Customer{
		alice.CustomerID: {ID: alice.CustomerID, Username: "alice", Email: "alice@example.com"},
	}}

	base := []option{
		WithOrderRepository(&memOrderRepo{store: store}),
		WithOrderItemRepository(&memOrderItemRepo{store: store}),
		WithCustomerRepository(customers),
		WithAuditor(auditor),
		WithIdempotencyRepository(idem),
		WithUnitOfWork(func() UnitOfWork { return &memUOW{store: store} }),
		WithClock(clock.Now),
	}

	return &fixture{
		svc:     MustNewOrderService(append(base, opts...)...),
		store:   store,
		auditor: auditor,
		clock:   clock,
		idem:    idem,
	}
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)

	return &d
}

func cart() CreateOrderCommand {
	return CreateOrderCommand{
		Items: []CreateOrderItem{
			{ProductID: "p-1", Name: "Tea", Category: "drinks", Quantity: 2, UnitPrice: price("10")},
			{ProductID: "p-2", Name: "Cake", Category: "bakery", Quantity: 1, UnitPrice: price("5")},
		},
		ShippingAddress: "1 Main St",
		PaymentMethod:   "delivery",
	}
}

func (f *fixture) create(t *testing.T, a actor.Actor) order.Order {
	t.Helper()

	o, replayed, err := f.svc.CreateOrder(context.Background(), a, cart())
	require.NoError(t, err)
	require.False(t, replayed)

	return o
}

func TestCreateOrderScenario(t *testing.T) {
	f := newFixture(t)

	o := f.create(t, alice)

	assert.True(t, decimal.NewFromInt(15).Equal(o.UnitPrice), o.UnitPrice.String())
	assert.True(t, decimal.NewFromInt(29).Equal(o.TotalPrice), o.TotalPrice.String())
	assert.True(t, decimal.NewFromInt(2).Equal(o.Delivery))
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, order.PaymentStatusPending, o.PaymentStatus)
	assert.Equal(t, alice.CustomerID, o.CustomerID)
	assert.Equal(t, o.CreatedAt, o.PaymentDate)
	assert.False(t, o.Completed)
	assert.Empty(t, o.PayBy)

	_, err := ulid.ParseStrict(o.ID)
	require.NoError(t, err)

	require.Len(t, o.Items, 2)
	require.Len(t, o.ItemIDs, 2)
	for i, item := range o.Items {
		assert.Equal(t, o.ItemIDs[i], item.ID)
		assert.Equal(t, o.ID, item.OrderID)
	}
	assert.True(t, decimal.NewFromInt(20).Equal(o.Items[0].TotalPrice))
	assert.True(t, decimal.NewFromInt(5).Equal(o.Items[1].TotalPrice))

	stored := f.store.get(o.ID)
	assert.Equal(t, o.ItemIDs, stored.ItemIDs)
	assert.Equal(t, 2, f.store.itemCount())
	assert.Equal(t, []event.Type{event.TypeOrderCreated}, f.auditor.types())
}

func TestCreateOrderValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateOrderCommand)
	}{
		{"nil items", func(c *CreateOrderCommand) { c.Items = nil }},
		{"empty items", func(c *CreateOrderCommand) { c.Items = []CreateOrderItem{} }},
		{"missing address", func(c *CreateOrderCommand) { c.ShippingAddress = "" }},
		{"blank address", func(c *CreateOrderCommand) { c.ShippingAddress = "   " }},
		{"missing payment method", func(c *CreateOrderCommand) { c.PaymentMethod = "" }},
		{"unknown payment method", func(c *CreateOrderCommand) { c.PaymentMethod = "card" }},
		{"payment method case", func(c *CreateOrderCommand) { c.PaymentMethod = "Delivery" }},
		{"zero quantity", func(c *CreateOrderCommand) { c.Items[0].Quantity = 0 }},
		{"negative quantity", func(c *CreateOrderCommand) { c.Items[1].Quantity = -1 }},
		{"negative unit price", func(c *CreateOrderCommand) { c.Items[0].UnitPrice = price("-1") }},
		{"missing unit price", func(c *CreateOrderCommand) { c.Items[1].UnitPrice = nil }},
		{"sub-cent unit price", func(c *CreateOrderCommand) { c.Items[0].UnitPrice = price("0.005") }},
		{"quantity above column range", func(c *CreateOrderCommand) { c.Items[0].Quantity = 1 << 31 }},
		{"total above column range", func(c *CreateOrderCommand) { c.Items[0].UnitPrice = price("999999999999.99") }},
		{"missing product id", func(c *CreateOrderCommand) { c.Items[0].ProductID = "" }},
		{"missing name", func(c *CreateOrderCommand) { c.Items[1].Name = "" }},
		{"missing category", func(c *CreateOrderCommand) { c.Items[0].Category = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			cmd := cart()
			tt.mutate(&cmd)

			_, _, err := f.svc.CreateOrder(context.Background(), alice, cmd)

			require.ErrorIs(t, err, ErrValidation)
			assert.Zero(t, f.store.orderCount())
			assert.Zero(t, f.store.itemCount())
			assert.Empty(t, f.auditor.types())
		})
	}
}

func TestCreateOrderAcceptsPickupAndFreeItems(t *testing.T) {
	f := newFixture(t)
	cmd := cart()
	cmd.PaymentMethod = "pickup"
	cmd.Items[1].UnitPrice = price("0")

	o, _, err := f.svc.CreateOrder(context.Background(), alice, cmd)
	require.NoError(t, err)
	assert.Equal(t, "pickup", o.PaymentMethod.String())
	assert.True(t, decimal.NewFromInt(24).Equal(o.TotalPrice), o.TotalPrice.String())
}

func TestCreateOrderDecodesMissingUnitPriceAsInvalid(t *testing.T) {
	f := newFixture(t)

	var cmd CreateOrderCommand
	require.NoError(t, json.Unmarshal([]byte(
		`{"items":[{"product_id":"p","name":"n","category":"c","quantity":1}],"shipping_address":"x","payment_method":"pickup"}`,
	), &cmd))

	_, _, err := f.svc.CreateOrder(context.Background(), alice, cmd)
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "unit price required")
	assert.Zero(t, f.store.orderCount())
}

func TestCreateOrderKeepsStoredAmountsConsistent(t *testing.T) {
	f := newFixture(t)
	cmd := cart()
	cmd.Items[0].UnitPrice = price("0.10")
	cmd.Items[0].Quantity = 3
	cmd.Items[1].UnitPrice = price("19.99")

	o, _, err := f.svc.CreateOrder(context.Background(), alice, cmd)
	require.NoError(t, err)

	sum := decimal.Zero
	for _, item := range o.Items {
		assert.True(t, item.UnitPrice.Equal(item.UnitPrice.Round(2)), item.UnitPrice.String())
		assert.True(t, item.TotalPrice.Equal(item.TotalPrice.Round(2)), item.TotalPrice.String())
		sum = sum.Add(item.TotalPrice).Add(DeliveryFee)
	}
	assert.True(t, sum.Equal(o.TotalPrice), "%s != %s", sum, o.TotalPrice)
	assert.True(t, decimal.RequireFromString("24.29").Equal(o.TotalPrice), o.TotalPrice.String())
}

func TestCreateOrderRequiresCustomer(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.CreateOrder(context.Background(), actor.Actor{Username: "ghost"}, cart())
	require.ErrorIs(t, err, ErrForbidden)
}

func TestCreateOrderTwoPhaseFailureKeepsHeader(t *testing.T) {
	f := newFixture(t)
	f.store.bulkInsertErr = errors.New("connection reset")

	_, _, err := f.svc.CreateOrder(context.Background(), alice, cart())

	require.ErrorIs(t, err, ErrInternal)
	require.Equal(t, 1, f.store.orderCount())
	for _, o := range f.store.orders {
		assert.Empty(t, o.ItemIDs)
	}
	assert.Empty(t, f.auditor.types())
}

func TestCreateOrderAtomicRollsBack(t *testing.T) {
	f := newFixture(t, WithAtomicCreate(true))
	f.store.setItemsErr = errors.New("connection reset")

	_, _, err := f.svc.CreateOrder(context.Background(), alice, cart())

	require.ErrorIs(t, err, ErrInternal)
	assert.Zero(t, f.store.orderCount())
	assert.Zero(t, f.store.itemCount())
}

func TestCreateOrderAtomicCommits(t *testing.T) {
	f := newFixture(t, WithAtomicCreate(true))

	o := f.create(t, alice)

	assert.Equal(t, 1, f.store.orderCount())
	assert.Len(t, f.store.get(o.ID).ItemIDs, 2)
}

func TestCreateOrderIdempotencyReplay(t *testing.T) {
	f := newFixture(t)
	cmd := cart()
	cmd.IdempotencyKey = "req-1"

	first, replayed, err := f.svc.CreateOrder(context.Background(), alice, cmd)
	require.NoError(t, err)
	require.False(t, replayed)

	second, replayed, err := f.svc.CreateOrder(context.Background(), alice, cmd)
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, second.Items, 2)
	assert.Equal(t, 1, f.store.orderCount())
	assert.Equal(t, []event.Type{event.TypeOrderCreated}, f.auditor.types())

	// keys are scoped per customer
	other, replayed, err := f.svc.CreateOrder(context.Background(), bob, cmd)
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestCreateOrderIdempotencyInFlight(t *testing.T) {
	f := newFixture(t)
	f.idem.keys[alice.CustomerID+":req-1"] = ""
	cmd := cart()
	cmd.IdempotencyKey = "req-1"

	_, _, err := f.svc.CreateOrder(context.Background(), alice, cmd)

	require.ErrorIs(t, err, ErrConflict)
	assert.Zero(t, f.store.orderCount())
}

func TestCreateOrderIdempotencyReleasedOnFailure(t *testing.T) {
	f := newFixture(t)
	f.store.bulkInsertErr = errors.New("boom")
	cmd := cart()
	cmd.IdempotencyKey = "req-1"

	_, _, err := f.svc.CreateOrder(context.Background(), alice, cmd)

	require.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, []string{alice.CustomerID + ":req-1"}, f.idem.released)
	assert.NotContains(t, f.idem.keys, alice.CustomerID+":req-1")
}

func TestCreateOrderIgnoresKeyWithoutStore(t *testing.T) {
	f := newFixture(t, WithIdempotencyRepository(nil))
	cmd := cart()
	cmd.IdempotencyKey = "req-1"

	_, replayed, err := f.svc.CreateOrder(context.Background(), alice, cmd)
	require.NoError(t, err)
	assert.False(t, replayed)
	_, replayed, err = f.svc.CreateOrder(context.Background(), alice, cmd)
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.Equal(t, 2, f.store.orderCount())
}

func TestCreateOrderSurvivesEventFailure(t *testing.T) {
	f := newFixture(t)
	f.auditor.err = errors.New("broker down")

	o := f.create(t, alice)
	assert.Equal(t, 1, f.store.orderCount())
	assert.NotEmpty(t, o.ID)
}

func TestMustNewOrderServicePanics(t *testing.T) {
	assert.Panics(t, func() { MustNewOrderService() })

	store := newMemStore()
	assert.Panics(t, func() {
		MustNewOrderService(
			WithOrderRepository(&memOrderRepo{store: store}),
			WithOrderItemRepository(&memOrderItemRepo{store: store}),
			WithAtomicCreate(true),
		)
	})
}
