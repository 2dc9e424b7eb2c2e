package postgresrepo

import (
	"strings"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/storefront-order/internal/service/models/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpdateGuardsPayment(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	paid := order.PaymentStatusPaid
	payBy := "customer:alice"

	sql, args, err := buildUpdate(sq.StatementBuilder.PlaceholderFormat(sq.Dollar), order.UpdateModel{
		Scope: order.Scope{ID: "01HZX3V9K6Q4Y8W2N5T7R1M0AB", CustomerID: "cust-alice"},
		Guard: order.Guard{PaymentStatus: order.PaymentStatusPaid},
		Patch: order.Patch{
			PaymentStatus: &paid,
			PaymentDate:   &now,
			PayBy:         &payBy,
			UpdatedAt:     now,
		},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(sql, "UPDATE orders SET "))
	assert.Contains(t, sql, "customer_id = $")
	assert.Contains(t, sql, "id = $")
	assert.Contains(t, sql, "payment_status <> $")
	assert.NotContains(t, sql, "completed = $")
	assert.Contains(t, sql, "RETURNING id, customer_id, item_ids")
	assert.Contains(t, args, "cust-alice")
	assert.Contains(t, args, "customer:alice")
	assert.Contains(t, args, "paid")
}

func TestBuildUpdateCompleteGuard(t *testing.T) {
	status := order.StatusCompleted
	completed := true

	sql, args, err := buildUpdate(sq.StatementBuilder.PlaceholderFormat(sq.Dollar), order.UpdateModel{
		Scope: order.Scope{ID: "01HZX3V9K6Q4Y8W2N5T7R1M0AB"},
		Guard: order.Guard{Completed: true},
		Patch: order.Patch{Status: &status, Completed: &completed, UpdatedAt: time.Now()},
	})
	require.NoError(t, err)

	assert.NotContains(t, sql, "customer_id = $")
	assert.NotContains(t, sql, "status <> $")
	assert.Contains(t, sql, "completed = $")
	assert.Contains(t, args, false)
}

func TestReturningListsAllColumns(t *testing.T) {
	got := returning()

	for _, column := range orderColumns {
		assert.Contains(t, got, column)
	}
	assert.Equal(t, len(orderColumns)-1, strings.Count(got, ","))
}
