package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jcmexdev/order-fulfillment-saga/internal/order-service/domain"
)

type PaymentRepository struct {
	db *sql.DB
}

func (r *PaymentRepository) Save(ctx context.Context, payment domain.Payment) (domain.Payment, error) {
	const q = `
		INSERT INTO payments (order_id, amount, external_reference, status, processed_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, q,
		payment.OrderID,
		payment.Amount.String(),
		payment.ExternalReference,
		string(payment.Status),
		formatTimestamp(payment.ProcessedAt),
	).Scan(&payment.ID)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("sqlstore: save payment for %q: %w", payment.OrderID, err)
	}
	return payment, nil
}

func (r *PaymentRepository) FindByOrderID(ctx context.Context, orderID string) (domain.Payment, error) {
	const q = `
		SELECT id, order_id, amount, external_reference, status, processed_at
		FROM   payments
		WHERE  order_id = $1`

	var (
		p                 domain.Payment
		amount, processed string
	)
	err := r.db.QueryRowContext(ctx, q, orderID).Scan(&p.ID, &p.OrderID, &amount, &p.ExternalReference, &p.Status, &processed)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Payment{}, fmt.Errorf("%w: %s", ErrPaymentNotFound, orderID)
	}
	if err != nil {
		return domain.Payment{}, fmt.Errorf("sqlstore: find payment for %q: %w", orderID, err)
	}

	if p.Amount, err = parseAmount(amount); err != nil {
		return domain.Payment{}, err
	}
	if p.ProcessedAt, err = parseTimestamp(processed); err != nil {
		return domain.Payment{}, err
	}
	return p, nil
}
