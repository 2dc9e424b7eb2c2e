package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/storefront-order/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/storefront-order/internal/dal/postgres"
	"github.com/corray333/storefront-order/internal/service/models/order"
	"github.com/corray333/storefront-order/internal/service/models/paymentmethod"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var orderColumns = []string{
	"id",
	"customer_id",
	"item_ids",
	"unit_price",
	"total_price",
	"delivery",
	"shipping_address",
	"payment_method",
	"status",
	"payment_status",
	"payment_date",
	"pay_by",
	"confirmed_by",
	"cancelled_by",
	"delivery_start_time",
	"completed",
	"created_at",
	"updated_at",
}

// OrderDal represents order data access layer model.
type OrderDal struct {
	Id                string          `db:"id"`
	CustomerId        string          `db:"customer_id"`
	ItemIds           []string        `db:"item_ids"`
	UnitPrice         decimal.Decimal `db:"unit_price"`
	TotalPrice        decimal.Decimal `db:"total_price"`
	Delivery          decimal.Decimal `db:"delivery"`
	ShippingAddress   string          `db:"shipping_address"`
	PaymentMethod     string          `db:"payment_method"`
	Status            string          `db:"status"`
	PaymentStatus     string          `db:"payment_status"`
	PaymentDate       time.Time       `db:"payment_date"`
	PayBy             string          `db:"pay_by"`
	ConfirmedBy       string          `db:"confirmed_by"`
	CancelledBy       string          `db:"cancelled_by"`
	DeliveryStartTime *time.Time      `db:"delivery_start_time"`
	Completed         bool            `db:"completed"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

func (o *OrderDal) scanTargets() []any {
	return []any{
		&o.Id,
		&o.CustomerId,
		&o.ItemIds,
		&o.UnitPrice,
		&o.TotalPrice,
		&o.Delivery,
		&o.ShippingAddress,
		&o.PaymentMethod,
		&o.Status,
		&o.PaymentStatus,
		&o.PaymentDate,
		&o.PayBy,
		&o.ConfirmedBy,
		&o.CancelledBy,
		&o.DeliveryStartTime,
		&o.Completed,
		&o.CreatedAt,
		&o.UpdatedAt,
	}
}

// ToModel converts OrderDal to service layer Order model.
func (o *OrderDal) ToModel() (*order.Order, error) {
	method, err := paymentmethod.ParsePaymentMethod(o.PaymentMethod)
	if err != nil {
		return nil, err
	}

	itemIDs := o.ItemIds
	if itemIDs == nil {
		itemIDs = []string{}
	}

	return &order.Order{
		ID:                o.Id,
		CustomerID:        o.CustomerId,
		ItemIDs:           itemIDs,
		UnitPrice:         o.UnitPrice,
		TotalPrice:        o.TotalPrice,
		Delivery:          o.Delivery,
		ShippingAddress:   o.ShippingAddress,
		PaymentMethod:     method,
		Status:            order.Status(o.Status),
		PaymentStatus:     order.PaymentStatus(o.PaymentStatus),
		PaymentDate:       o.PaymentDate,
		PayBy:             o.PayBy,
		ConfirmedBy:       o.ConfirmedBy,
		CancelledBy:       o.CancelledBy,
		DeliveryStartTime: o.DeliveryStartTime,
		Completed:         o.Completed,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}, nil
}

// PostgresOrderRepository represents a Postgres order repository.
type PostgresOrderRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderRepository creates a new Postgres order repository.
func NewPostgresOrderRepository(conn postgres.Conn) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert stores the order header and returns the persisted row.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) (order.Order, error) {
	itemIDs := o.ItemIDs
	if itemIDs == nil {
		itemIDs = []string{}
	}

	sql, args, err := r.sb.Insert("orders").
		Columns(orderColumns...).
		Values(
			o.ID,
			o.CustomerID,
			itemIDs,
			o.UnitPrice,
			o.TotalPrice,
			o.Delivery,
			o.ShippingAddress,
			o.PaymentMethod.String(),
			string(o.Status),
			string(o.PaymentStatus),
			o.PaymentDate,
			o.PayBy,
			o.ConfirmedBy,
			o.CancelledBy,
			o.DeliveryStartTime,
			o.Completed,
			o.CreatedAt,
			o.UpdatedAt,
		).
		Suffix(returning()).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	return r.queryOne(ctx, sql, args...)
}

// SetItems replaces the line item references of an order.
func (r *PostgresOrderRepository) SetItems(
	ctx context.Context,
	orderID string,
	itemIDs []string,
) (order.Order, error) {
	sql, args, err := r.sb.Update("orders").
		Set("item_ids", itemIDs).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": orderID}).
		Suffix(returning()).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build update query: %w", err)
	}

	return r.queryOne(ctx, sql, args...)
}

// FindOne loads a single order by id, restricted to the owner when the scope names one.
func (r *PostgresOrderRepository) FindOne(ctx context.Context, scope order.Scope) (order.Order, error) {
	sql, args, err := r.sb.Select(orderColumns...).
		From("orders").
		Where(scopePredicate(scope)).
		Limit(1).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build select query: %w", err)
	}

	return r.queryOne(ctx, sql, args...)
}

// Query retrieves orders based on filter criteria, newest first.
func (r *PostgresOrderRepository) Query(
	ctx context.Context,
	filter *order.QueryOrdersModel,
) ([]order.Order, error) {
	query := r.sb.Select(orderColumns...).
		From("orders").
		OrderBy("created_at DESC", "id DESC")

	if len(filter.Ids) > 0 {
		query = query.Where(sq.Eq{"id": filter.Ids})
	}

	if len(filter.CustomerIds) > 0 {
		query = query.Where(sq.Eq{"customer_id": filter.CustomerIds})
	}

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	result := make([]order.Order, 0)
	for rows.Next() {
		var dal OrderDal
		if err := rows.Scan(dal.scanTargets()...); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// Update runs the guarded update as one statement, so the guard is evaluated at write time.
func (r *PostgresOrderRepository) Update(ctx context.Context, model order.UpdateModel) (order.Order, error) {
	sql, args, err := buildUpdate(r.sb, model)
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build update query: %w", err)
	}

	return r.queryOne(ctx, sql, args...)
}

func buildUpdate(sb sq.StatementBuilderType, model order.UpdateModel) (string, []any, error) {
	set := map[string]any{
		"updated_at": model.Patch.UpdatedAt,
	}

	p := model.Patch
	if p.Status != nil {
		set["status"] = string(*p.Status)
	}
	if p.PaymentStatus != nil {
		set["payment_status"] = string(*p.PaymentStatus)
	}
	if p.PaymentDate != nil {
		set["payment_date"] = *p.PaymentDate
	}
	if p.PayBy != nil {
		set["pay_by"] = *p.PayBy
	}
	if p.ConfirmedBy != nil {
		set["confirmed_by"] = *p.ConfirmedBy
	}
	if p.CancelledBy != nil {
		set["cancelled_by"] = *p.CancelledBy
	}
	if p.DeliveryStartTime != nil {
		set["delivery_start_time"] = *p.DeliveryStartTime
	}
	if p.Completed != nil {
		set["completed"] = *p.Completed
	}

	where := sq.And{scopePredicate(model.Scope)}
	if model.Guard.Status != "" {
		where = append(where, sq.NotEq{"status": string(model.Guard.Status)})
	}
	if model.Guard.PaymentStatus != "" {
		where = append(where, sq.NotEq{"payment_status": string(model.Guard.PaymentStatus)})
	}
	if model.Guard.Completed {
		where = append(where, sq.Eq{"completed": false})
	}

	return sb.Update("orders").
		SetMap(set).
		Where(where).
		Suffix(returning()).
		ToSql()
}

func scopePredicate(scope order.Scope) sq.Eq {
	predicate := sq.Eq{"id": scope.ID}
	if scope.CustomerID != "" {
		predicate["customer_id"] = scope.CustomerID
	}

	return predicate
}

func returning() string {
	sql := "RETURNING "
	for i, column := range orderColumns {
		if i > 0 {
			sql += ", "
		}
		sql += column
	}

	return sql
}

func (r *PostgresOrderRepository) queryOne(ctx context.Context, sql string, args ...any) (order.Order, error) {
	var dal OrderDal
	if err := r.conn.QueryRow(ctx, sql, args...).Scan(dal.scanTargets()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.Order{}, iorderrepo.ErrOrderNotFound
		}

		return order.Order{}, fmt.Errorf("failed to scan order: %w", err)
	}

	model, err := dal.ToModel()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to convert order dal to model: %w", err)
	}

	return *model, nil
}
