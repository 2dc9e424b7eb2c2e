package ordersvc

import (
	"context"
	"testing"

	"github.com/corray333/storefront-order/internal/service/models/actor"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrderScopedToOwner(t *testing.T) {
	f := newFixture(t)
	o := f.create(t, alice)

	got, err := f.svc.GetOrder(context.Background(), alice, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
	require.Len(t, got.Items, 2)
	assert.Equal(t, o.ItemIDs[0], got.Items[0].ID)
	assert.Equal(t, "Tea", got.Items[0].Name)

	_, err = f.svc.GetOrder(context.Background(), bob, o.ID)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.GetOrder(context.Background(), alice, ulid.Make().String())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetLastOrder(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetLastOrder(context.Background(), alice)
	require.ErrorIs(t, err, ErrNoOrders)
	require.ErrorIs(t, err, ErrNotFound)

	f.create(t, alice)
	second := f.create(t, alice)
	f.create(t, bob)

	last, err := f.svc.GetLastOrder(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, second.ID, last.ID)
	assert.Len(t, last.Items, 2)
}

func TestListOrders(t *testing.T) {
	f := newFixture(t)
	first := f.create(t, alice)
	bobs := f.create(t, bob)
	second := f.create(t, alice)

	mine, err := f.svc.ListOrders(context.Background(), alice, Page{})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)

	paged, err := f.svc.ListOrders(context.Background(), alice, Page{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, first.ID, paged[0].ID)

	_, err = f.svc.ListOrders(context.Background(), alice, Page{Limit: -1})
	require.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.ListAllOrders(context.Background(), alice, Page{})
	require.ErrorIs(t, err, ErrForbidden)

	all, err := f.svc.ListAllOrders(context.Background(), root, Page{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{second.ID, bobs.ID, first.ID}, []string{all[0].ID, all[1].ID, all[2].ID})
}

func TestGetOrderDetails(t *testing.T) {
	f := newFixture(t)
	aliceOrder := f.create(t, alice)
	bobOrder := f.create(t, bob)

	_, err := f.svc.GetOrderDetails(context.Background(), alice, aliceOrder.ID)
	require.ErrorIs(t, err, ErrForbidden)

	details, err := f.svc.GetOrderDetails(context.Background(), root, aliceOrder.ID)
	require.NoError(t, err)
	assert.Equal(t, aliceOrder.ID, details.Order.ID)
	assert.Len(t, details.Order.Items, 2)
	require.NotNil(t, details.CustomerEmail)
	assert.Equal(t, "alice@example.com", *details.CustomerEmail)

	details, err = f.svc.GetOrderDetails(context.Background(), root, bobOrder.ID)
	require.NoError(t, err)
	assert.Nil(t, details.CustomerEmail)

	_, err = f.svc.GetOrderDetails(context.Background(), root, "bad id")
	require.ErrorIs(t, err, ErrValidation)
}

func TestReadsRequireCustomer(t *testing.T) {
	f := newFixture(t)
	anon := actor.Actor{Username: "ghost", Admin: true}

	_, err := f.svc.ListOrders(context.Background(), anon, Page{})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.GetLastOrder(context.Background(), anon)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.GetOrder(context.Background(), anon, ulid.Make().String())
	assert.ErrorIs(t, err, ErrForbidden)
}
