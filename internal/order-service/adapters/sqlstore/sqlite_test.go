package sqlstore

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/order-fulfillment-saga/internal/coordinator/sagalog"
	"github.com/jcmexdev/order-fulfillment-saga/internal/order-service/domain"
)

func openSQLite(t *testing.T) *DB {
	t.Helper()
	store, err := Open(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "orders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLite_OrderLifecycle(t *testing.T) {
	store := openSQLite(t)
	ctx := context.Background()
	created := time.Date(2024, 5, 1, 10, 0, 0, 123, time.UTC)

	saved, err := store.Orders().Save(ctx, domain.Order{
		OrderID:   "ORD-001",
		Amount:    decimal.RequireFromString("100.00"),
		Status:    domain.StatusCreated,
		CreatedAt: created,
	})
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)

	_, err = store.Orders().Save(ctx, domain.Order{OrderID: "ORD-001", Status: domain.StatusCreated, CreatedAt: created})
	require.Error(t, err, "business id must be unique")

	got, err := store.Orders().FindByOrderID(ctx, "ORD-001")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, domain.StatusCreated, got.Status)
	assert.True(t, got.CreatedAt.Equal(created))

	require.NoError(t, store.Orders().Invalidate(ctx, "ORD-001"))
	require.NoError(t, store.Orders().Invalidate(ctx, "ORD-001"), "invalidate is idempotent")
	got, err = store.Orders().FindByOrderID(ctx, "ORD-001")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)

	require.ErrorIs(t, store.Orders().Invalidate(ctx, "ORD-404"), ErrOrderNotFound)
	_, err = store.Orders().FindByOrderID(ctx, "ORD-404")
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestSQLite_PaymentRequiresOrder(t *testing.T) {
	store := openSQLite(t)
	ctx := context.Background()

	_, err := store.Payments().Save(ctx, domain.Payment{OrderID: "ORD-404", Status: domain.PaymentApproved, ProcessedAt: time.Now()})
	require.Error(t, err)

	_, err = store.Orders().Save(ctx, domain.Order{OrderID: "ORD-001", Amount: decimal.NewFromInt(5), Status: domain.StatusCreated, CreatedAt: time.Now()})
	require.NoError(t, err)

	p, err := store.Payments().Save(ctx, domain.Payment{
		OrderID:           "ORD-001",
		Amount:            decimal.NewFromInt(5),
		ExternalReference: "ref-1",
		Status:            domain.PaymentApproved,
		ProcessedAt:       time.Now(),
	})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)

	got, err := store.Payments().FindByOrderID(ctx, "ORD-001")
	require.NoError(t, err)
	assert.Equal(t, "ref-1", got.ExternalReference)
	assert.Equal(t, domain.PaymentApproved, got.Status)

	_, err = store.Payments().FindByOrderID(ctx, "ORD-002")
	require.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestSQLite_TransactionLogIsOrderedAndConcurrentSafe(t *testing.T) {
	store := openSQLite(t)
	ctx := context.Background()
	logs := store.TransactionLogs()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, logs.Append(ctx, sagalog.NewEntry(ctx, "ORD-001", sagalog.ActionNotify, "")))
		}()
	}
	wg.Wait()
	require.NoError(t, logs.Append(ctx, sagalog.NewEntry(ctx, "ORD-002", sagalog.ActionGatewaySubmit, "")))

	entries, err := logs.ListByOrderID(ctx, "ORD-001")
	require.NoError(t, err)
	require.Len(t, entries, 10)
	for i := 1; i < len(entries); i++ {
		assert.Greater(t, entries[i].ID, entries[i-1].ID)
	}

	none, err := logs.ListByOrderID(ctx, "ORD-404")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLite_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.db")
	ctx := context.Background()

	store, err := Open(ctx, DriverSQLite, path)
	require.NoError(t, err)
	_, err = store.Orders().Save(ctx, domain.Order{OrderID: "ORD-001", Amount: decimal.NewFromInt(1), Status: domain.StatusCreated, CreatedAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Open(ctx, DriverSQLite, path)
	require.NoError(t, err)
	defer store.Close()
	_, err = store.Orders().FindByOrderID(ctx, "ORD-001")
	require.NoError(t, err)
}
