package ordersvc

import (
	"context"
	"time"

	"github.com/corray333/storefront-order/internal/dal/interfaces/iauditrepo"
	"github.com/corray333/storefront-order/internal/dal/interfaces/icustomerrepo"
	"github.com/corray333/storefront-order/internal/dal/interfaces/iidempotencyrepo"
	"github.com/corray333/storefront-order/internal/dal/interfaces/iorderitemrepo"
	"github.com/corray333/storefront-order/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/storefront-order/internal/dal/postgres"
	"github.com/corray333/storefront-order/internal/dal/redis"
	customerrepo "github.com/corray333/storefront-order/internal/dal/repositories/customer/postgres"
	idempotencyrepo "github.com/corray333/storefront-order/internal/dal/repositories/idempotency/redis"
	orderrepo "github.com/corray333/storefront-order/internal/dal/repositories/order/postgres"
	orderitemrepo "github.com/corray333/storefront-order/internal/dal/repositories/orderitem/postgres"
	"github.com/corray333/storefront-order/internal/dal/uow"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

const defaultIdempotencyTTL = 24 * time.Hour

// OrderService is a service for managing orders.
type OrderService struct {
	orderRepo       iorderrepo.IOrderRepository
	orderItemRepo   iorderitemrepo.IOrderItemRepository
	customerRepo    icustomerrepo.ICustomerRepository
	auditor         iauditrepo.IAuditorRepository
	idempotencyRepo iidempotencyrepo.IIdempotencyRepository
	newUOW          func() UnitOfWork

	atomicCreate      bool
	strictTransitions bool
	idempotencyTTL    time.Duration

	validate     *validator.Validate
	now          func() time.Time
	newID        func() string
	newMessageID func() string
}

// UnitOfWork groups the create phases into one transaction.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorderrepo.IOrderRepository
	OrderItemRepository() iorderitemrepo.IOrderItemRepository
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService. It panics when the order
// repositories are missing or atomic create has no unit of work.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{
		idempotencyTTL: defaultIdempotencyTTL,
		validate:       newValidator(),
		now:            time.Now,
		newID:          func() string { return ulid.Make().String() },
		newMessageID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.orderRepo == nil || s.orderItemRepo == nil {
		panic("order service requires order and order item repositories")
	}
	if s.atomicCreate && s.newUOW == nil {
		panic("atomic create requires a unit of work")
	}

	return s
}

// WithPostgresClient wires every Postgres backed repository and the unit of work.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.orderRepo = orderrepo.NewPostgresOrderRepository(pgClient.Pool())
		s.orderItemRepo = orderitemrepo.NewPostgresOrderItemRepository(pgClient.Pool())
		s.customerRepo = customerrepo.NewPostgresCustomerRepository(pgClient.Pool())
		s.newUOW = func() UnitOfWork {
			return uow.NewUnitOfWork(pgClient)
		}
	}
}

// WithRedisClient enables create idempotency. A nil client leaves it disabled.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithRedisClient(client *redis.Client) option {
	return func(s *OrderService) {
		if client == nil {
			return
		}
		s.idempotencyRepo = idempotencyrepo.NewIdempotencyRepository(client.Redis())
	}
}

//goland:noinspection GoExportedFuncWithUnexportedType
func WithOrderRepository(repo iorderrepo.IOrderRepository) option {
	return func(s *OrderService) {
		s.orderRepo = repo
	}
}

//goland:noinspection GoExportedFuncWithUnexportedType
func WithOrderItemRepository(repo iorderitemrepo.IOrderItemRepository) option {
	return func(s *OrderService) {
		s.orderItemRepo = repo
	}
}

//goland:noinspection GoExportedFuncWithUnexportedType
func WithCustomerRepository(repo icustomerrepo.ICustomerRepository) option {
	return func(s *OrderService) {
		s.customerRepo = repo
	}
}

// WithAuditor sets the order event publisher.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithAuditor(auditor iauditrepo.IAuditorRepository) option {
	return func(s *OrderService) {
		s.auditor = auditor
	}
}

//goland:noinspection GoExportedFuncWithUnexportedType
func WithIdempotencyRepository(repo iidempotencyrepo.IIdempotencyRepository) option {
	return func(s *OrderService) {
		s.idempotencyRepo = repo
	}
}

//goland:noinspection GoExportedFuncWithUnexportedType
func WithIdempotencyTTL(ttl time.Duration) option {
	return func(s *OrderService) {
		if ttl > 0 {
			s.idempotencyTTL = ttl
		}
	}
}

//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWork(newUOW func() UnitOfWork) option {
	return func(s *OrderService) {
		s.newUOW = newUOW
	}
}

// WithAtomicCreate runs the create phases in one transaction.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithAtomicCreate(enabled bool) option {
	return func(s *OrderService) {
		s.atomicCreate = enabled
	}
}

// WithStrictTransitions rejects confirming a confirmed order and cancelling a
// cancelled one instead of treating them as no-ops.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithStrictTransitions(enabled bool) option {
	return func(s *OrderService) {
		s.strictTransitions = enabled
	}
}

//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(s *OrderService) {
		s.now = now
	}
}

// WithIDGenerator overrides the order and line item id source.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithIDGenerator(newID func() string) option {
	return func(s *OrderService) {
		s.newID = newID
	}
}
