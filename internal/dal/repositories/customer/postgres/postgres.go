package postgresrepo

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/storefront-order/internal/dal/interfaces/icustomerrepo"
	"github.com/corray333/storefront-order/internal/dal/postgres"
	"github.com/corray333/storefront-order/internal/service/models/customer"
	"github.com/jackc/pgx/v5"
)

// PostgresCustomerRepository reads the customers table.
type PostgresCustomerRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewPostgresCustomerRepository creates a new Postgres customer repository.
func NewPostgresCustomerRepository(conn postgres.Conn) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// FindByID returns the customer or icustomerrepo.ErrCustomerNotFound.
func (r *PostgresCustomerRepository) FindByID(ctx context.Context, id string) (customer.Customer, error) {
	sql, args, err := r.sb.Select("id", "username", "email").
		From("customers").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return customer.Customer{}, fmt.Errorf("failed to build select query: %w", err)
	}

	var c customer.Customer
	if err := r.conn.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.Username, &c.Email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return customer.Customer{}, icustomerrepo.ErrCustomerNotFound
		}

		return customer.Customer{}, fmt.Errorf("failed to query customer: %w", err)
	}

	return c, nil
}
