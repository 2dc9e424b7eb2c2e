package ordersvc

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/corray333/storefront-order/internal/dal/interfaces/icustomerrepo"
	"github.com/corray333/storefront-order/internal/dal/interfaces/iidempotencyrepo"
	"github.com/corray333/storefront-order/internal/dal/interfaces/iorderitemrepo"
	"github.com/corray333/storefront-order/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/storefront-order/internal/service/models/customer"
	"github.com/corray333/storefront-order/internal/service/models/event"
	"github.com/corray333/storefront-order/internal/service/models/order"
	"github.com/corray333/storefront-order/internal/service/models/orderitem"
)

// memStore backs both fake repositories. Every method holds the lock for its
// whole duration, so Update behaves like a single conditional statement.
type memStore struct {
	mu     sync.Mutex
	orders map[string]order.Order
	items  map[string]orderitem.OrderItem

	bulkInsertErr error
	setItemsErr   error
}

func newMemStore() *memStore {
	return &memStore{
		orders: make(map[string]order.Order),
		items:  make(map[string]orderitem.OrderItem),
	}
}

func (m *memStore) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.orders)
}

func (m *memStore) itemCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.items)
}

func (m *memStore) get(id string) order.Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.orders[id]
}

type memOrderRepo struct {
	store *memStore
}

var _ iorderrepo.IOrderRepository = (*memOrderRepo)(nil)

func (r *memOrderRepo) Insert(_ context.Context, o order.Order) (order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.orders[o.ID]; ok {
		return order.Order{}, errors.New("duplicate key")
	}
	o.Items = nil
	r.store.orders[o.ID] = o

	return o, nil
}

func (r *memOrderRepo) SetItems(_ context.Context, orderID string, itemIDs []string) (order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.setItemsErr != nil {
		return order.Order{}, r.store.setItemsErr
	}

	o, ok := r.store.orders[orderID]
	if !ok {
		return order.Order{}, iorderrepo.ErrOrderNotFound
	}
	o.ItemIDs = append([]string{}, itemIDs...)
	r.store.orders[orderID] = o

	return o, nil
}

func matches(o order.Order, scope order.Scope) bool {
	return o.ID == scope.ID && (scope.CustomerID == "" || o.CustomerID == scope.CustomerID)
}

func (r *memOrderRepo) FindOne(_ context.Context, scope order.Scope) (order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	o, ok := r.store.orders[scope.ID]
	if !ok || !matches(o, scope) {
		return order.Order{}, iorderrepo.ErrOrderNotFound
	}

	return o, nil
}

func (r *memOrderRepo) Query(_ context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	result := make([]order.Order, 0)
	for _, o := range r.store.orders {
		if len(filter.CustomerIds) > 0 && !contains(filter.CustomerIds, o.CustomerID) {
			continue
		}
		if len(filter.Ids) > 0 && !contains(filter.Ids, o.ID) {
			continue
		}
		result = append(result, o)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}

		return result[i].ID > result[j].ID
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []order.Order{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}

	return result, nil
}

func (r *memOrderRepo) Update(_ context.Context, model order.UpdateModel) (order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	o, ok := r.store.orders[model.Scope.ID]
	if !ok || !matches(o, model.Scope) {
		return order.Order{}, iorderrepo.ErrOrderNotFound
	}

	g := model.Guard
	if (g.Status != "" && o.Status == g.Status) ||
		(g.PaymentStatus != "" && o.PaymentStatus == g.PaymentStatus) ||
		(g.Completed && o.Completed) {
		return order.Order{}, iorderrepo.ErrOrderNotFound
	}

	p := model.Patch
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.PaymentStatus != nil {
		o.PaymentStatus = *p.PaymentStatus
	}
	if p.PaymentDate != nil {
		o.PaymentDate = *p.PaymentDate
	}
	if p.PayBy != nil {
		o.PayBy = *p.PayBy
	}
	if p.ConfirmedBy != nil {
		o.ConfirmedBy = *p.ConfirmedBy
	}
	if p.CancelledBy != nil {
		o.CancelledBy = *p.CancelledBy
	}
	if p.DeliveryStartTime != nil {
		t := *p.DeliveryStartTime
		o.DeliveryStartTime = &t
	}
	if p.Completed != nil {
		o.Completed = *p.Completed
	}
	o.UpdatedAt = p.UpdatedAt
	r.store.orders[o.ID] = o

	return o, nil
}

type memOrderItemRepo struct {
	store *memStore
}

var _ iorderitemrepo.IOrderItemRepository = (*memOrderItemRepo)(nil)

func (r *memOrderItemRepo) BulkInsert(_ context.Context, items []orderitem.OrderItem) ([]orderitem.OrderItem, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.bulkInsertErr != nil {
		return nil, r.store.bulkInsertErr
	}
	for _, item := range items {
		r.store.items[item.ID] = item
	}

	return items, nil
}

func (r *memOrderItemRepo) Query(_ context.Context, filter *orderitem.QueryOrderItemsModel) ([]orderitem.OrderItem, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	result := make([]orderitem.OrderItem, 0)
	for _, item := range r.store.items {
		if len(filter.Ids) > 0 && !contains(filter.Ids, item.ID) {
			continue
		}
		if len(filter.OrderIds) > 0 && !contains(filter.OrderIds, item.OrderID) {
			continue
		}
		result = append(result, item)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	return result, nil
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}

	return false
}

// memUOW snapshots the store on Begin and restores it on Rollback unless committed.
type memUOW struct {
	store     *memStore
	orders    map[string]order.Order
	items     map[string]orderitem.OrderItem
	committed bool
}

func (u *memUOW) Begin(context.Context) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	u.orders = make(map[string]order.Order, len(u.store.orders))
	for k, v := range u.store.orders {
		u.orders[k] = v
	}
	u.items = make(map[string]orderitem.OrderItem, len(u.store.items))
	for k, v := range u.store.items {
		u.items[k] = v
	}

	return nil
}

func (u *memUOW) Commit(context.Context) error {
	u.committed = true

	return nil
}

func (u *memUOW) Rollback(context.Context) error {
	if u.committed {
		return nil
	}

	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	u.store.orders = u.orders
	u.store.items = u.items

	return nil
}

func (u *memUOW) OrderRepository() iorderrepo.IOrderRepository {
	return &memOrderRepo{store: u.store}
}

func (u *memUOW) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return &memOrderItemRepo{store: u.store}
}

type memCustomerRepo struct {
	customers map[string]customer.Customer
}

func (r *memCustomerRepo) FindByID(_ context.Context, id string) (customer.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return customer.Customer{}, icustomerrepo.ErrCustomerNotFound
	}

	return c, nil
}

type memAuditor struct {
	mu     sync.Mutex
	err    error
	events []event.OrderEvent
}

func (a *memAuditor) Publish(_ context.Context, evt event.OrderEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.err != nil {
		return a.err
	}
	a.events = append(a.events, evt)

	return nil
}

func (a *memAuditor) types() []event.Type {
	a.mu.Lock()
	defer a.mu.Unlock()

	types := make([]event.Type, 0, len(a.events))
	for _, evt := range a.events {
		types = append(types, evt.Type)
	}

	return types
}

type memIdempotency struct {
	mu       sync.Mutex
	keys     map[string]string
	released []string
}

func newMemIdempotency() *memIdempotency {
	return &memIdempotency{keys: make(map[string]string)}
}

func (m *memIdempotency) Reserve(_ context.Context, key string, _ time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.keys[key]
	if !ok {
		m.keys[key] = ""

		return "", nil
	}
	if value == "" {
		return "", iidempotencyrepo.ErrInProgress
	}

	return value, nil
}

func (m *memIdempotency) Complete(_ context.Context, key, orderID string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key] = orderID

	return nil
}

func (m *memIdempotency) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	m.released = append(m.released, key)

	return nil
}

// testClock advances one second per call so creation order is observable.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)

	return c.now
}
