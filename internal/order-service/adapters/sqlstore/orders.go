package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jcmexdev/order-fulfillment-saga/internal/order-service/domain"
)

type OrderRepository struct {
	db *sql.DB
}

// Save inserts order and returns it with its surrogate ID set.
// A second order with the same business ID violates the unique constraint.
func (r *OrderRepository) Save(ctx context.Context, order domain.Order) (domain.Order, error) {
	const q = `
		INSERT INTO orders (order_id, amount, status, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, q,
		order.OrderID,
		order.Amount.String(),
		string(order.Status),
		formatTimestamp(order.CreatedAt),
	).Scan(&order.ID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("sqlstore: save order %q: %w", order.OrderID, err)
	}
	return order, nil
}

// Invalidate marks the order CANCELLED. The row is kept.
func (r *OrderRepository) Invalidate(ctx context.Context, orderID string) error {
	const q = `UPDATE orders SET status = $1 WHERE order_id = $2`

	res, err := r.db.ExecContext(ctx, q, string(domain.StatusCancelled), orderID)
	if err != nil {
		return fmt.Errorf("sqlstore: invalidate order %q: %w", orderID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlstore: invalidate order %q: %w", orderID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	return nil
}

func (r *OrderRepository) FindByOrderID(ctx context.Context, orderID string) (domain.Order, error) {
	const q = `
		SELECT id, order_id, amount, status, created_at
		FROM   orders
		WHERE  order_id = $1`

	var (
		order           domain.Order
		amount, created string
	)
	err := r.db.QueryRowContext(ctx, q, orderID).Scan(&order.ID, &order.OrderID, &amount, &order.Status, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("sqlstore: find order %q: %w", orderID, err)
	}

	if order.Amount, err = parseAmount(amount); err != nil {
		return domain.Order{}, err
	}
	if order.CreatedAt, err = parseTimestamp(created); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}
