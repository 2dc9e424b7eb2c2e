package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/storefront-order/internal/dal/postgres"
	"github.com/corray333/storefront-order/internal/service/models/orderitem"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

var orderItemColumns = []string{
	"id",
	"order_id",
	"product_id",
	"name",
	"category",
	"quantity",
	"unit_price",
	"total_price",
	"created_at",
}

// OrderItemDal represents order item data access layer model.
type OrderItemDal struct {
	Id         string          `db:"id"`
	OrderId    string          `db:"order_id"`
	ProductId  string          `db:"product_id"`
	Name       string          `db:"name"`
	Category   string          `db:"category"`
	Quantity   int             `db:"quantity"`
	UnitPrice  decimal.Decimal `db:"unit_price"`
	TotalPrice decimal.Decimal `db:"total_price"`
	CreatedAt  time.Time       `db:"created_at"`
}

// ToModel converts OrderItemDal to service layer OrderItem model.
func (oi *OrderItemDal) ToModel() orderitem.OrderItem {
	return orderitem.OrderItem{
		ID:         oi.Id,
		OrderID:    oi.OrderId,
		ProductID:  oi.ProductId,
		Name:       oi.Name,
		Category:   oi.Category,
		Quantity:   oi.Quantity,
		UnitPrice:  oi.UnitPrice,
		TotalPrice: oi.TotalPrice,
		CreatedAt:  oi.CreatedAt,
	}
}

// PostgresOrderItemRepository represents a Postgres order item repository.
type PostgresOrderItemRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderItemRepository creates a new Postgres order item repository.
func NewPostgresOrderItemRepository(conn postgres.Conn) *PostgresOrderItemRepository {
	return &PostgresOrderItemRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// BulkInsert inserts multiple order items in one statement and returns them in input order.
func (r *PostgresOrderItemRepository) BulkInsert(
	ctx context.Context,
	orderItems []orderitem.OrderItem,
) ([]orderitem.OrderItem, error) {
	if len(orderItems) == 0 {
		return []orderitem.OrderItem{}, nil
	}

	query := r.sb.Insert("order_items").Columns(orderItemColumns...)
	for _, oi := range orderItems {
		query = query.Values(
			oi.ID,
			oi.OrderID,
			oi.ProductID,
			oi.Name,
			oi.Category,
			oi.Quantity,
			oi.UnitPrice,
			oi.TotalPrice,
			pgtype.Timestamptz{Time: oi.CreatedAt, Valid: true},
		)
	}

	sql, args, err := query.Suffix("RETURNING id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to bulk insert order items: %w", err)
	}
	defer rows.Close()

	inserted := make(map[string]struct{}, len(orderItems))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan order item id: %w", err)
		}
		inserted[id] = struct{}{}
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	result := make([]orderitem.OrderItem, 0, len(orderItems))
	for _, oi := range orderItems {
		if _, ok := inserted[oi.ID]; !ok {
			return nil, fmt.Errorf("order item %s was not inserted", oi.ID)
		}
		result = append(result, oi)
	}

	return result, nil
}

// Query retrieves order items based on filter criteria.
func (r *PostgresOrderItemRepository) Query(
	ctx context.Context,
	filter *orderitem.QueryOrderItemsModel,
) ([]orderitem.OrderItem, error) {
	query := r.sb.
		Select(orderItemColumns...).
		From("order_items").
		OrderBy("id ASC")

	if len(filter.Ids) > 0 {
		query = query.Where(sq.Eq{"id": filter.Ids})
	}

	if len(filter.OrderIds) > 0 {
		query = query.Where(sq.Eq{"order_id": filter.OrderIds})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	result := make([]orderitem.OrderItem, 0)
	for rows.Next() {
		var dal OrderItemDal
		var createdAt pgtype.Timestamptz

		err := rows.Scan(
			&dal.Id,
			&dal.OrderId,
			&dal.ProductId,
			&dal.Name,
			&dal.Category,
			&dal.Quantity,
			&dal.UnitPrice,
			&dal.TotalPrice,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}

		dal.CreatedAt = createdAt.Time

		result = append(result, dal.ToModel())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
